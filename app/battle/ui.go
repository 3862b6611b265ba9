package battle

import (
	"fmt"

	"github.com/ConserveLee/battle-idle/internal/config"
	engine "github.com/ConserveLee/battle-idle/internal/engine/battle"
	"github.com/ConserveLee/battle-idle/internal/engine/input"
	"github.com/ConserveLee/battle-idle/internal/engine/locate"
	"github.com/ConserveLee/battle-idle/internal/engine/screen"
	"github.com/ConserveLee/battle-idle/internal/logger"

	"github.com/kbinani/screenshot"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"
)

// NewBattlePanel creates the UI panel for the automated battle loop
func NewBattlePanel() fyne.CanvasObject {
	// --- Data Binding ---
	logData := binding.NewStringList()
	statusData := binding.NewString()
	statusData.Set("Status: Ready")

	appLogger := logger.NewAppLogger(logData)

	logCallback := func(msg string) { appLogger.Info("%s", msg) }
	statusCallback := func(msg string) { statusData.Set(msg) }
	debugCallback := func(format string, args ...interface{}) { appLogger.Debug(format, args...) }

	// --- Engine Wiring ---
	cfg, err := config.Load("config.yaml")
	if err != nil {
		appLogger.Info("Using default configuration: %v", err)
	}

	cache := screen.NewTemplateCache(cfg.TemplatesDir)
	cache.SetDebugFunc(debugCallback)

	matcher := screen.NewScreenMatcher()
	matcher.SetDebugFunc(debugCallback)

	finder := locate.NewLocator(cache, matcher, cfg, logCallback, debugCallback)

	var bot *engine.Orchestrator

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
		if err != nil {
			id = 0
		}
		matcher.SetDisplayID(id)
		appLogger.Info("Switched to Display %d", id)
	})
	if len(displayOptions) > 0 {
		displaySelect.SetSelected(displayOptions[0])
	}

	// 2. Status & Logs
	statusLabel := widget.NewLabelWithData(statusData)
	statusLabel.TextStyle = fyne.TextStyle{Bold: true}

	logList := widget.NewListWithData(
		logData,
		func() fyne.CanvasObject { return widget.NewLabel("Log entry template") },
		func(i binding.DataItem, o fyne.CanvasObject) { o.(*widget.Label).Bind(i.(binding.String)) },
	)

	// Auto-scroll
	logData.AddListener(binding.NewDataListener(func() {
		list, _ := logData.Get()
		if len(list) > 0 {
			logList.ScrollToBottom()
		}
	}))

	// 3. Buttons
	startBtn := widget.NewButton("Start Battle Loop", nil)
	stopBtn := widget.NewButton("Stop", nil)
	stopBtn.Disable()

	startBtn.OnTapped = func() {
		clicker, err := input.NewClicker(input.RobotPointer{}, debugCallback)
		if err != nil {
			appLogger.Error("Startup error: %v", err)
			return
		}
		bot = engine.NewOrchestrator(finder, clicker, cfg, logCallback, statusCallback, debugCallback)

		statusData.Set("Status: Locating origin...")
		startBtn.Disable()
		stopBtn.Enable()
		displaySelect.Disable()

		// Origin location blocks through its retry budget; keep the UI alive
		go func() {
			if err := bot.Start(); err != nil {
				appLogger.Error("Startup error: %v", err)
				statusData.Set("Status: Startup failed")
				startBtn.Enable()
				stopBtn.Disable()
				displaySelect.Enable()
			}
		}()
	}

	stopBtn.OnTapped = func() {
		if bot != nil {
			go bot.Stop() // May wait out the current cycle
		}
		stopBtn.Disable()
		startBtn.Enable()
		displaySelect.Enable()
	}

	// --- Layout ---
	controls := container.NewVBox(
		widget.NewLabel("自动战斗配置:"),
		container.NewHBox(widget.NewLabel("Screen:"), displaySelect),
		statusLabel,
		container.NewHBox(startBtn, stopBtn),
		widget.NewSeparator(),
		widget.NewLabel("运行日志:"),
	)

	return container.NewBorder(controls, nil, nil, nil, logList)
}
