package screen

import (
	"image"

	"github.com/ConserveLee/battle-idle/internal/constants"
	"github.com/go-vgo/robotgo"
)

// ScreenMatcher implements the locate capability: capture the selected
// display, match a template against it, and translate the best match into a
// global screen coordinate (center of the matched region).
type ScreenMatcher struct {
	searcher *Searcher

	// Global coordinate offset of the selected display
	offsetX int
	offsetY int

	dumpTaken bool
}

// NewScreenMatcher creates a matcher bound to the main display
func NewScreenMatcher() *ScreenMatcher {
	return &ScreenMatcher{
		searcher: NewSearcher(),
	}
}

// SetDebugFunc sets the debug logging function
func (m *ScreenMatcher) SetDebugFunc(f func(string, ...interface{})) {
	m.searcher.SetDebugFunc(f)
}

// SetDisplayID selects which monitor to capture and records its global
// offset so returned coordinates are valid for the pointer.
func (m *ScreenMatcher) SetDisplayID(id int) {
	m.searcher.SetDisplayID(id)

	x, y, _, _ := robotgo.GetDisplayBounds(id)
	m.offsetX = x
	m.offsetY = y
}

// Match captures the screen and looks for the template at the given
// confidence. It returns the match center in global coordinates. A capture
// failure is returned as an error; "not on screen" is not an error.
func (m *ScreenMatcher) Match(tmpl *image.Gray, confidence float64) (image.Point, bool, error) {
	img, err := m.searcher.CaptureScreen()
	if err != nil {
		return image.Point{}, false, err
	}

	grayScreen := ToGray(img)
	pos, score, ok := FindBestMatch(grayScreen, tmpl, confidence)
	if !ok {
		m.searcher.debugFunc("no match: best score %.3f below %.2f", score, confidence)
		if constants.DebugDump && !m.dumpTaken {
			m.dumpTaken = true
			if err := m.searcher.SaveDebugScreenshot("debug_screen.png"); err == nil {
				m.searcher.debugFunc("saved debug_screen.png for template comparison")
			}
		}
		return image.Point{}, false, nil
	}

	tb := tmpl.Bounds()
	center := image.Point{
		X: pos.X + tb.Dx()/2 + m.offsetX,
		Y: pos.Y + tb.Dy()/2 + m.offsetY,
	}
	return center, true, nil
}
