package tools

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ConserveLee/battle-idle/internal/config"

	"github.com/kbinani/screenshot"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// templateOptions maps friendly labels to the template filenames the
// battle loop resolves at runtime.
var templateOptions = []struct {
	Label string
	File  string
}{
	{"主界面定位 (Origin)", "game_pos.png"},
	{"选择队伍 (Team Select)", "select_start.png"},
	{"开始战斗 (Battle Start)", "battle_start.png"},
	{"体力不足 (Stamina Prompt)", "fatigue_value.png"},
	{"确认按钮 (OK)", "ok.png"},
	{"跳过战斗 (Skip)", "battle_skip.png"},
	{"战斗结算 (Result)", "result.png"},
	{"活动弹窗 (Event Popup)", "huodong.png"},
	{"升级弹窗 (Level Up)", "level.png"},
	{"稀有掉落 (Rare Reward)", "expensive.png"},
	{"观看广告 (Watch)", "watch.png"},
	{"继续按钮 (Continue)", "continue.png"},
}

// NewToolsPanel creates the UI panel for template capture utilities
func NewToolsPanel(win fyne.Window) fyne.CanvasObject {
	// State
	selectedDisplay := 0

	cfg, _ := config.Load("config.yaml")

	// --- UI Components ---

	// 1. Screen Selector
	numDisplays := screenshot.NumActiveDisplays()
	var displayOptions []string
	for i := 0; i < numDisplays; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		displayOptions = append(displayOptions, fmt.Sprintf("Display %d (%dx%d)", i, bounds.Dx(), bounds.Dy()))
	}
	if len(displayOptions) == 0 {
		displayOptions = []string{"Display 0 (Default)"}
	}

	displaySelect := widget.NewSelect(displayOptions, func(selected string) {
		var id int
		_, err := fmt.Sscanf(selected, "Display %d", &id)
		if err == nil {
			selectedDisplay = id
		}
	})
	if len(displayOptions) > 0 {
		displaySelect.SetSelected(displayOptions[0])
	}

	// 2. Info Label
	infoLabel := widget.NewLabel("1. 选择屏幕\n2. 点击“截取并裁切”\n3. 在弹出的窗口中框选按钮\n4. 选择模板名并保存")
	infoLabel.Alignment = fyne.TextAlignCenter

	// 3. Action Buttons
	cropBtn := widget.NewButton("截取并裁切 (Capture & Crop)", func() {
		bounds := screenshot.GetDisplayBounds(selectedDisplay)
		img, err := screenshot.CaptureRect(bounds)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}

		showCropperWindow(cfg.TemplatesDir, img)
	})
	cropBtn.Importance = widget.HighImportance

	openDirBtn := widget.NewButton("打开模板目录 (Open Templates)", func() {
		openDir(cfg.TemplatesDir)
	})

	// Layout
	content := container.NewVBox(
		widget.NewLabel("选择屏幕:"),
		displaySelect,
		widget.NewSeparator(),
		infoLabel,
		layoutSpacer(),
		cropBtn,
		layoutSpacer(),
		widget.NewSeparator(),
		openDirBtn,
	)

	return content
}

func layoutSpacer() fyne.CanvasObject {
	return widget.NewLabel("") // rudimentary spacer
}

func openDir(path string) {
	var cmd *exec.Cmd
	absPath, _ := filepath.Abs(path)

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("explorer", absPath)
	default:
		cmd = exec.Command("xdg-open", absPath)
	}
	cmd.Run()
}

func showCropperWindow(templatesDir string, fullImg image.Image) {
	w := fyne.CurrentApp().NewWindow("裁切模板 (Crop Template)")
	w.Resize(fyne.NewSize(800, 600))

	// Status label
	lbl := widget.NewLabel("请在图片上拖拽鼠标框选目标...")
	lbl.Alignment = fyne.TextAlignCenter

	saveBtn := widget.NewButton("保存选区", nil)
	saveBtn.Disable()

	var currentSelection image.Rectangle

	cropper := NewCropperWidget(fullImg, func(rect image.Rectangle) {
		currentSelection = rect
		lbl.SetText(fmt.Sprintf("已选区: %v (点击保存)", rect))
		saveBtn.Enable()
	})

	saveBtn.OnTapped = func() {
		if currentSelection.Empty() {
			return
		}

		subImg, ok := fullImg.(interface {
			SubImage(r image.Rectangle) image.Image
		})

		if !ok {
			dialog.ShowError(fmt.Errorf("image type does not support cropping"), w)
			return
		}

		finalImg := subImg.SubImage(currentSelection)

		showSaveForm(w, templatesDir, finalImg)
	}

	content := container.NewBorder(
		nil,
		container.NewVBox(lbl, saveBtn),
		nil, nil,
		cropper,
	)

	w.SetContent(content)
	w.Show()
}

func showSaveForm(win fyne.Window, templatesDir string, img image.Image) {
	// Preview
	imageObj := canvas.NewImageFromImage(img)
	imageObj.FillMode = canvas.ImageFillContain
	imageObj.SetMinSize(fyne.NewSize(100, 100))

	var labels []string
	fileFor := make(map[string]string, len(templateOptions))
	for _, opt := range templateOptions {
		label := opt.Label
		if _, err := os.Stat(filepath.Join(templatesDir, opt.File)); err == nil {
			label += " ✓"
		}
		labels = append(labels, label)
		fileFor[label] = opt.File
	}

	nameEntry := widget.NewEntry()

	tplSelect := widget.NewSelect(labels, func(s string) {
		nameEntry.SetText(fileFor[s])
	})
	tplSelect.SetSelected(labels[0])

	content := container.NewVBox(
		widget.NewLabel("确认保存此模板?"),
		container.NewCenter(imageObj),
		widget.NewLabel("模板类型 (Template):"),
		tplSelect,
		widget.NewLabel("文件名 (Filename):"),
		nameEntry,
	)

	dialog.ShowCustomConfirm("保存模板", "保存", "取消", content, func(confirm bool) {
		if !confirm {
			return
		}

		targetName := nameEntry.Text
		if targetName == "" {
			dialog.ShowError(fmt.Errorf("文件名不能为空"), win)
			return
		}

		if err := os.MkdirAll(templatesDir, 0755); err != nil {
			dialog.ShowError(err, win)
			return
		}

		targetPath := filepath.Join(templatesDir, targetName)

		f, err := os.Create(targetPath)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		defer f.Close()

		if err := png.Encode(f, img); err != nil {
			dialog.ShowError(err, win)
			return
		}

		dialog.ShowInformation("成功", fmt.Sprintf("已保存: %s", targetPath), win)
		win.Close()
	}, win)
}
