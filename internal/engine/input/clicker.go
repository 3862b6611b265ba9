// Package input drives the pointer-synthesis capability: it turns located
// coordinates into jittered, clamped, human-paced clicks.
package input

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/ConserveLee/battle-idle/internal/constants"
	"github.com/ConserveLee/battle-idle/internal/util"
	"github.com/go-vgo/robotgo"
)

// Pointer is the pointer-synthesis capability.
type Pointer interface {
	MoveTo(x, y int, duration time.Duration) error
	Click(duration time.Duration) error
	Size() (w, h int, err error)
}

// ClickSpec describes one click before jitter and clamping are applied.
type ClickSpec struct {
	At           image.Point
	OffsetX      int
	OffsetY      int
	RandomOffset bool

	// Pre/Post override the default settle delays. Zero keeps the default,
	// a negative value suppresses the delay entirely.
	Pre  time.Duration
	Post time.Duration
}

// Clicker executes clicks. Screen bounds are read once at construction;
// failing to obtain them is a startup-fatal condition for the caller.
type Clicker struct {
	pointer Pointer
	screenW int
	screenH int

	debugFunc func(string, ...interface{})

	sleep func(time.Duration)
	rng   *rand.Rand
}

// NewClicker creates a clicker over the given pointer capability.
func NewClicker(p Pointer, debug func(string, ...interface{})) (*Clicker, error) {
	w, h, err := p.Size()
	if err != nil {
		return nil, fmt.Errorf("cannot obtain screen size: %w", err)
	}
	return &Clicker{
		pointer:   p,
		screenW:   w,
		screenH:   h,
		debugFunc: debug,
		sleep:     time.Sleep,
		rng:       util.New(0),
	}, nil
}

// Click moves the pointer to the spec's target and presses the button.
// Pointer failures are logged and reported as false, never raised.
func (c *Clicker) Click(spec ClickSpec) bool {
	c.sleep(resolveDelay(spec.Pre, constants.ClickPreDelay))

	x := spec.At.X + spec.OffsetX
	y := spec.At.Y + spec.OffsetY

	if spec.RandomOffset {
		x += c.rng.Intn(2*constants.ClickJitterPx+1) - constants.ClickJitterPx
		y += c.rng.Intn(2*constants.ClickJitterPx+1) - constants.ClickJitterPx
	}

	x = clamp(x, 0, c.screenW)
	y = clamp(y, 0, c.screenH)

	moveDur := util.Between(c.rng, constants.MoveDurationMin, constants.MoveDurationMax)
	clickDur := util.Between(c.rng, constants.ClickDurationMin, constants.ClickDurationMax)

	c.debugFunc("click (%d, %d) move=%v press=%v", x, y, moveDur, clickDur)

	ok := true
	if err := c.pointer.MoveTo(x, y, moveDur); err != nil {
		c.debugFunc("pointer move failed: %v", err)
		ok = false
	} else if err := c.pointer.Click(clickDur); err != nil {
		c.debugFunc("pointer click failed: %v", err)
		ok = false
	}

	c.sleep(resolveDelay(spec.Post, constants.ClickPostDelay))
	return ok
}

func resolveDelay(override, def time.Duration) time.Duration {
	switch {
	case override > 0:
		return override
	case override < 0:
		return 0
	default:
		return def
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RobotPointer implements Pointer with robotgo.
type RobotPointer struct{}

func (RobotPointer) MoveTo(x, y int, duration time.Duration) error {
	// robotgo has no error return for movement; pace it ourselves so no two
	// moves share identical timing.
	robotgo.MoveSmooth(x, y)
	time.Sleep(duration)
	return nil
}

func (RobotPointer) Click(duration time.Duration) error {
	if err := robotgo.Toggle("left", "down"); err != nil {
		return err
	}
	time.Sleep(duration)
	return robotgo.Toggle("left", "up")
}

func (RobotPointer) Size() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid screen size %dx%d", w, h)
	}
	return w, h, nil
}
