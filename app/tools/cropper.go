package tools

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// CropperWidget displays a screenshot and lets the user drag out a
// rectangular region to cut a template from.
type CropperWidget struct {
	widget.BaseWidget

	// State
	originalImg image.Image
	startPos    fyne.Position
	currentPos  fyne.Position
	isDragging  bool

	// UI Elements
	raster    *canvas.Image
	selection *canvas.Rectangle

	// Callback
	OnSelected func(rect image.Rectangle)
}

func NewCropperWidget(img image.Image, onSelected func(image.Rectangle)) *CropperWidget {
	c := &CropperWidget{
		originalImg: img,
		OnSelected:  onSelected,
	}
	c.ExtendBaseWidget(c)

	c.raster = canvas.NewImageFromImage(img)
	c.raster.ScaleMode = canvas.ImageScalePixels // Crucial: No interpolation/smoothing
	c.raster.FillMode = canvas.ImageFillContain

	// Selection rectangle with semi-transparent fill
	c.selection = canvas.NewRectangle(color.RGBA{R: 255, G: 0, B: 0, A: 60})
	c.selection.StrokeColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	c.selection.StrokeWidth = 2
	c.selection.Hide()

	return c
}

func (c *CropperWidget) CreateRenderer() fyne.WidgetRenderer {
	return &cropperRenderer{
		cropper: c,
		objects: []fyne.CanvasObject{c.raster, c.selection},
	}
}

// Mouse events
func (c *CropperWidget) Dragged(e *fyne.DragEvent) {
	if !c.isDragging {
		c.isDragging = true
		c.startPos = e.Position.Subtract(e.Dragged) // Approx start
		c.selection.Show()
	}
	c.currentPos = e.Position
	c.Refresh()
}

func (c *CropperWidget) DragEnd() {
	c.isDragging = false
	c.Refresh()
	c.reportSelection()
	// Keep selection visible for the save step
}

func (c *CropperWidget) Tapped(e *fyne.PointEvent) {
	c.startPos = e.Position
	c.currentPos = e.Position
	c.selection.Hide() // Hide on click (reset)
	c.Refresh()
}

// Cursor
func (c *CropperWidget) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

// imageRect describes where the (aspect-fitted) image is drawn inside the widget.
type imageRect struct {
	Pos    fyne.Position
	Width  float32
	Height float32
}

func (c *CropperWidget) drawnImageRect() imageRect {
	wBound := c.Size().Width
	hBound := c.Size().Height

	if wBound == 0 || hBound == 0 {
		return imageRect{}
	}

	imgW := float32(c.originalImg.Bounds().Dx())
	imgH := float32(c.originalImg.Bounds().Dy())
	aspect := imgW / imgH

	viewAspect := wBound / hBound

	var drawW, drawH float32
	var offX, offY float32

	if viewAspect > aspect {
		// View is wider: Fit Height
		drawH = hBound
		drawW = drawH * aspect
		offX = (wBound - drawW) / 2
		offY = 0
	} else {
		// View is taller: Fit Width
		drawW = wBound
		drawH = drawW / aspect
		offX = 0
		offY = (hBound - drawH) / 2
	}

	return imageRect{
		Pos:    fyne.NewPos(offX, offY),
		Width:  drawW,
		Height: drawH,
	}
}

// reportSelection maps the on-screen selection back to source pixels and
// hands the rectangle to OnSelected.
func (c *CropperWidget) reportSelection() {
	if c.OnSelected == nil {
		return
	}

	imgRect := c.drawnImageRect()
	if imgRect.Width == 0 || imgRect.Height == 0 {
		return
	}

	minX := minf(c.startPos.X, c.currentPos.X)
	minY := minf(c.startPos.Y, c.currentPos.Y)
	maxX := maxf(c.startPos.X, c.currentPos.X)
	maxY := maxf(c.startPos.Y, c.currentPos.Y)

	// Intersect the selection with the drawn image area
	interX := maxf(imgRect.Pos.X, minX)
	interY := maxf(imgRect.Pos.Y, minY)
	interRight := minf(imgRect.Pos.X+imgRect.Width, maxX)
	interBottom := minf(imgRect.Pos.Y+imgRect.Height, maxY)

	interW := interRight - interX
	interH := interBottom - interY

	if interW <= 0 || interH <= 0 {
		return
	}

	// Map to pixel coordinates
	scaleX := float32(c.originalImg.Bounds().Dx()) / imgRect.Width
	scaleY := float32(c.originalImg.Bounds().Dy()) / imgRect.Height

	relX := interX - imgRect.Pos.X
	relY := interY - imgRect.Pos.Y

	finalRect := image.Rect(
		int(relX*scaleX),
		int(relY*scaleY),
		int((relX+interW)*scaleX),
		int((relY+interH)*scaleY),
	)

	// Float math can overshoot by a pixel
	finalRect = finalRect.Intersect(c.originalImg.Bounds())

	c.OnSelected(finalRect)
}

// --- Renderer ---

type cropperRenderer struct {
	cropper *CropperWidget
	objects []fyne.CanvasObject
}

func (r *cropperRenderer) Layout(s fyne.Size) {
	r.objects[0].Resize(s)
	r.objects[0].Move(fyne.NewPos(0, 0))
	r.placeSelection()
}

func (r *cropperRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *cropperRenderer) Refresh() {
	r.placeSelection()
	canvas.Refresh(r.cropper)
}

func (r *cropperRenderer) placeSelection() {
	c := r.cropper

	minX := minf(c.startPos.X, c.currentPos.X)
	minY := minf(c.startPos.Y, c.currentPos.Y)
	maxX := maxf(c.startPos.X, c.currentPos.X)
	maxY := maxf(c.startPos.Y, c.currentPos.Y)

	r.objects[1].Move(fyne.NewPos(minX, minY))
	r.objects[1].Resize(fyne.NewSize(maxX-minX, maxY-minY))
}

func (r *cropperRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *cropperRenderer) Destroy() {}

// Utils
func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
