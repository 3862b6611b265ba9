package screen

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png" // Register PNG decoder for image.Decode

	"github.com/ConserveLee/battle-idle/internal/constants"
	"github.com/kbinani/screenshot"
	"github.com/vcaesar/imgo"
)

// Searcher handles screen capturing for the selected display
type Searcher struct {
	DisplayIndex int

	debugFunc func(string, ...interface{})
}

// NewSearcher creates a new instance targeting the main display
func NewSearcher() *Searcher {
	return &Searcher{
		DisplayIndex: 0,
		debugFunc:    func(string, ...interface{}) {},
	}
}

// SetDisplayID sets the target display index for capturing
func (s *Searcher) SetDisplayID(index int) {
	s.DisplayIndex = index
}

// SetDebugFunc sets the debug logging function
func (s *Searcher) SetDebugFunc(f func(string, ...interface{})) {
	s.debugFunc = f
}

// CaptureScreen returns the current screen image
func (s *Searcher) CaptureScreen() (image.Image, error) {
	// kbinani/screenshot handles multi-monitor bounds correctly
	bounds := screenshot.GetDisplayBounds(s.DisplayIndex)

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen %d: %v", s.DisplayIndex, err)
	}
	return img, nil
}

// SaveDebugScreenshot captures the selected display and writes it to path
func (s *Searcher) SaveDebugScreenshot(path string) error {
	img, err := s.CaptureScreen()
	if err != nil {
		return err
	}
	return imgo.Save(path, img)
}

// ToGray converts any image to an 8-bit grayscale raster.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

// FindBestMatch slides the template over the screen raster and scores each
// window photometrically: score = 1 - meanAbsDiff/255. It returns the
// top-left of the best window whose score reaches the confidence threshold.
//
// Two shortcuts keep the scan fast without changing the result:
//   - three key pixels (corners + center) are compared first with a slack
//     tolerance derived from the confidence budget
//   - scoring aborts once the accumulated diff exceeds what the threshold
//     allows for the whole window
func FindBestMatch(screenImg, templateImg *image.Gray, confidence float64) (image.Point, float64, bool) {
	sBounds := screenImg.Bounds()
	tBounds := templateImg.Bounds()
	tWidth, tHeight := tBounds.Dx(), tBounds.Dy()

	if tWidth == 0 || tHeight == 0 || tWidth > sBounds.Dx() || tHeight > sBounds.Dy() {
		return image.Point{}, 0, false
	}

	totalPixels := tWidth * tHeight
	// A window passes when meanAbsDiff <= (1-confidence)*255, i.e. when the
	// summed diff stays within this budget.
	budget := (1.0 - confidence) * 255.0 * float64(totalPixels)

	keyTol := (1.0 - confidence) * 255.0 * constants.KeyPixelSlack
	if keyTol < constants.MinKeyPixelTolerance {
		keyTol = constants.MinKeyPixelTolerance
	}

	// Key pixels for quick rejection: top-left, center, bottom-right
	k0 := templateImg.GrayAt(tBounds.Min.X, tBounds.Min.Y).Y
	k1 := templateImg.GrayAt(tBounds.Min.X+tWidth/2, tBounds.Min.Y+tHeight/2).Y
	k2 := templateImg.GrayAt(tBounds.Max.X-1, tBounds.Max.Y-1).Y

	bestScore := -1.0
	var bestPos image.Point
	found := false

	for y := sBounds.Min.Y; y <= sBounds.Max.Y-tHeight; y++ {
		for x := sBounds.Min.X; x <= sBounds.Max.X-tWidth; x++ {
			if absDiff(screenImg.GrayAt(x, y).Y, k0) > keyTol {
				continue
			}
			if absDiff(screenImg.GrayAt(x+tWidth/2, y+tHeight/2).Y, k1) > keyTol {
				continue
			}
			if absDiff(screenImg.GrayAt(x+tWidth-1, y+tHeight-1).Y, k2) > keyTol {
				continue
			}

			sum, ok := windowDiff(screenImg, templateImg, x, y, budget)
			if !ok {
				continue
			}

			score := 1.0 - sum/(255.0*float64(totalPixels))
			if score > bestScore {
				bestScore = score
				bestPos = image.Point{X: x, Y: y}
				found = true
			}
		}
	}

	if !found || bestScore < confidence {
		return image.Point{}, bestScore, false
	}
	return bestPos, bestScore, true
}

// windowDiff sums the absolute pixel diffs for the window at (sx, sy),
// bailing out once the sum exceeds the allowed budget.
func windowDiff(screenImg, templateImg *image.Gray, sx, sy int, budget float64) (float64, bool) {
	tBounds := templateImg.Bounds()
	sum := 0.0

	for ty := 0; ty < tBounds.Dy(); ty++ {
		for tx := 0; tx < tBounds.Dx(); tx++ {
			tv := templateImg.GrayAt(tBounds.Min.X+tx, tBounds.Min.Y+ty).Y
			sv := screenImg.GrayAt(sx+tx, sy+ty).Y
			sum += absDiff(sv, tv)
		}
		if sum > budget {
			return sum, false
		}
	}
	return sum, true
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
