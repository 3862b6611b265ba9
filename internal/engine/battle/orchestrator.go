// Package battle sequences the locate and click primitives into the full
// battle cycle: team select, battle start, stamina prompt resolution, and
// the skip/normal result branches.
package battle

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ConserveLee/battle-idle/internal/config"
	"github.com/ConserveLee/battle-idle/internal/engine/input"
	"github.com/ConserveLee/battle-idle/internal/engine/locate"
)

// Template names of the battle screens
const (
	TplOrigin      = "game_pos.png"
	TplTeamSelect  = "select_start.png"
	TplBattleStart = "battle_start.png"
	TplStamina     = "fatigue_value.png"
	TplOK          = "ok.png"
	TplSkip        = "battle_skip.png"
	TplResult      = "result.png"
	TplEvent       = "huodong.png"
	TplLevelUp     = "level.png"
	TplReward      = "expensive.png"
	TplWatch       = "watch.png"
)

// Stamina prompt confirm control, relative to the prompt's match center
const (
	staminaConfirmOffsetX = 72
	staminaConfirmOffsetY = 55
)

// Overlay-dismiss and reward click targets, relative to the origin coordinate
const (
	overlayOffsetX = 200
	overlayOffsetY = 200
	rewardOffsetX  = 160
	rewardOffsetY  = 100
)

const skipSettleDelay = 3 * time.Second

// Phase is the orchestrator's program counter, reported through statusFunc.
// It is never persisted; control flow is the real state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingTeamSelect
	PhaseAwaitingBattleStart
	PhaseResolvingStaminaPrompt
	PhaseAwaitingResult
	PhaseSkipBranch
	PhaseNormalBranch
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseAwaitingTeamSelect:
		return "AwaitingTeamSelect"
	case PhaseAwaitingBattleStart:
		return "AwaitingBattleStart"
	case PhaseResolvingStaminaPrompt:
		return "ResolvingStaminaPrompt"
	case PhaseAwaitingResult:
		return "AwaitingResult"
	case PhaseSkipBranch:
		return "SkipBranch"
	case PhaseNormalBranch:
		return "NormalBranch"
	default:
		return "Unknown"
	}
}

// Finder is the retrying locate capability the orchestrator composes.
type Finder interface {
	LocateWithRetry(name string, pol locate.RetryPolicy, d locate.Delays) (image.Point, bool)
	DefaultPolicy() locate.RetryPolicy
	ProbePolicy() locate.RetryPolicy
}

// Clicker is the click capability the orchestrator composes.
type Clicker interface {
	Click(spec input.ClickSpec) bool
}

// Orchestrator runs the battle cycle until stopped. Individual locate and
// click failures degrade to branch conditions; only a failed startup
// (no origin coordinate) is fatal.
type Orchestrator struct {
	finder  Finder
	clicker Clicker
	cfg     *config.Config

	// Fixed reference point located once at startup; result-screen click
	// targets are derived from it by offset.
	origin image.Point

	logFunc    func(string)
	statusFunc func(string)
	debugFunc  func(string, ...interface{})

	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex

	sleep func(time.Duration)
}

// ErrOriginNotFound reports that the mandatory startup reference coordinate
// could not be located within its retry budget.
var ErrOriginNotFound = errors.New("failed to locate initial origin coordinate")

// NewOrchestrator creates an orchestrator over the given capabilities
func NewOrchestrator(finder Finder, clicker Clicker, cfg *config.Config, log func(string), status func(string), debug func(string, ...interface{})) *Orchestrator {
	return &Orchestrator{
		finder:     finder,
		clicker:    clicker,
		cfg:        cfg,
		logFunc:    log,
		statusFunc: status,
		debugFunc:  debug,
		stopChan:   make(chan struct{}),
		sleep:      time.Sleep,
	}
}

// Start locates the origin coordinate and launches the battle loop.
// There is no degraded mode without a valid origin: a locate failure here
// aborts startup and the loop is never entered.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil
	}
	o.mu.Unlock()

	pos, found := o.finder.LocateWithRetry(TplOrigin, o.finder.DefaultPolicy(),
		locate.Delays{Pre: time.Second, Post: time.Second})
	if !found {
		return ErrOriginNotFound
	}

	o.mu.Lock()
	o.origin = pos
	o.running = true
	o.stopChan = make(chan struct{})
	o.mu.Unlock()

	o.logFunc(fmt.Sprintf("Origin located at (%d, %d). Battle loop started.", pos.X, pos.Y))
	o.wg.Add(1)
	go o.loop()
	return nil
}

// Stop signals the loop to end after the current cycle and waits for it.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return
	}

	close(o.stopChan)
	o.wg.Wait()
	o.running = false
	o.logFunc("Battle loop stopped.")
	o.statusFunc("Status: Stopped")
}

// loop repeats the battle cycle indefinitely. The stop signal is only
// honored between cycles; the waits inside a cycle run to completion.
func (o *Orchestrator) loop() {
	defer o.wg.Done()

	for {
		select {
		case <-o.stopChan:
			return
		default:
			o.runCycle()
		}
	}
}

// runCycle is one full pass: team select, battle start, result handling.
// A missing team select entry ends the cycle without side effects.
func (o *Orchestrator) runCycle() {
	o.setPhase(PhaseAwaitingTeamSelect)

	if !o.smartClick(TplTeamSelect, o.finder.DefaultPolicy(), locate.Delays{Pre: time.Second}) {
		o.debugFunc("team select not on screen, restarting cycle")
		return
	}
	o.logFunc("Entered team select")

	if o.processBattleStart() {
		o.handleBattleResult()
	}
}

// processBattleStart clicks battle start and resolves the stamina prompt
// when it shows up. Returns true once the battle is considered started.
func (o *Orchestrator) processBattleStart() bool {
	o.setPhase(PhaseAwaitingBattleStart)

	if !o.smartClick(TplBattleStart, o.finder.DefaultPolicy(), locate.Delays{Post: 2 * time.Second}) {
		return false
	}

	o.setPhase(PhaseResolvingStaminaPrompt)
	promptPos, found := o.finder.LocateWithRetry(TplStamina, o.finder.ProbePolicy(),
		locate.Delays{Pre: 500 * time.Millisecond})
	if !found {
		// No prompt means the battle started on the first click
		return true
	}

	o.logFunc("Stamina prompt detected, confirming refill")
	o.clicker.Click(input.ClickSpec{
		At:           promptPos,
		OffsetX:      staminaConfirmOffsetX,
		OffsetY:      staminaConfirmOffsetY,
		RandomOffset: true,
		Pre:          time.Second,
	})
	o.smartClick(TplOK, o.finder.DefaultPolicy(), locate.Delays{Pre: time.Second})

	return o.smartClick(TplBattleStart, o.finder.DefaultPolicy(),
		locate.Delays{Pre: time.Second, Post: 2 * time.Second})
}

// handleBattleResult dismisses residual overlays and picks the skip or
// normal branch depending on whether the skip control is on screen.
func (o *Orchestrator) handleBattleResult() {
	o.setPhase(PhaseAwaitingResult)
	o.logFunc("Battle running, dismissing overlays")

	// Click twice in case the first one lands during a transition
	o.clickOrigin(overlayOffsetX, overlayOffsetY, time.Second)
	o.clickOrigin(overlayOffsetX, overlayOffsetY, 2*time.Second)

	if o.smartClick(TplSkip, o.finder.DefaultPolicy(), locate.Delays{Post: time.Second}) {
		o.processSkipBattle()
	} else {
		o.processNormalBattle()
	}
}

// processSkipBattle walks the scripted confirm/dismiss sequence after a
// skipped battle. Every step is best-effort; a missed click falls through
// to the next one.
func (o *Orchestrator) processSkipBattle() {
	o.setPhase(PhaseSkipBranch)
	o.logFunc("Skip available, fast-forwarding result")

	o.smartClick(TplOK, o.finder.DefaultPolicy(), locate.Delays{Post: time.Second})
	o.clickOrigin(rewardOffsetX, rewardOffsetY, 1500*time.Millisecond)
	o.smartClick(TplResult, o.finder.DefaultPolicy(), locate.Delays{Pre: time.Second})

	if _, found := o.finder.LocateWithRetry(TplEvent, o.finder.ProbePolicy(), locate.Delays{Pre: time.Second}); found {
		o.smartClick(TplOK, o.finder.ProbePolicy(), locate.Delays{Pre: time.Second})
	}
	if _, found := o.finder.LocateWithRetry(TplLevelUp, o.finder.ProbePolicy(), locate.Delays{Pre: time.Second}); found {
		o.smartClick(TplOK, o.finder.ProbePolicy(), locate.Delays{Pre: time.Second})
	}

	o.smartClick(TplResult, o.finder.DefaultPolicy(), locate.Delays{Pre: time.Second})
	o.smartClick(TplReward, o.finder.DefaultPolicy(), locate.Delays{Pre: 1500 * time.Millisecond})
	o.smartClick(TplWatch, o.finder.ProbePolicy(), locate.Delays{Pre: time.Second})

	o.sleep(skipSettleDelay)
}

// processNormalBattle waits out the fight itself; there is no automatable
// checkpoint on screen until it resolves.
func (o *Orchestrator) processNormalBattle() {
	o.setPhase(PhaseNormalBranch)
	d := o.cfg.BattleDuration()
	o.logFunc(fmt.Sprintf("No skip control, waiting out battle (%v)", d))
	o.sleep(d)
}

// smartClick locates a template under the given policy and clicks its
// center. False means "absent or click failed", which callers treat as a
// branch condition.
func (o *Orchestrator) smartClick(name string, pol locate.RetryPolicy, d locate.Delays) bool {
	pos, found := o.finder.LocateWithRetry(name, pol, d)
	if !found {
		return false
	}
	return o.clicker.Click(input.ClickSpec{At: pos, RandomOffset: true})
}

// clickOrigin clicks at a fixed offset from the startup origin coordinate.
func (o *Orchestrator) clickOrigin(dx, dy int, pre time.Duration) {
	o.clicker.Click(input.ClickSpec{
		At:           o.origin,
		OffsetX:      dx,
		OffsetY:      dy,
		RandomOffset: true,
		Pre:          pre,
	})
}

func (o *Orchestrator) setPhase(p Phase) {
	o.statusFunc("Status: " + p.String())
}
