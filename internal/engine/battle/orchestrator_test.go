package battle

import (
	"image"
	"testing"
	"time"

	"github.com/ConserveLee/battle-idle/internal/config"
	"github.com/ConserveLee/battle-idle/internal/constants"
	"github.com/ConserveLee/battle-idle/internal/engine/input"
	"github.com/ConserveLee/battle-idle/internal/engine/locate"
)

// scriptedFinder answers locate calls from a per-name script. Names without
// a script entry are never found. Results repeat once a script runs out.
type scriptedFinder struct {
	script map[string][]bool
	seen   []string
	hits   map[string]int
}

func newScriptedFinder(script map[string][]bool) *scriptedFinder {
	return &scriptedFinder{script: script, hits: make(map[string]int)}
}

func (f *scriptedFinder) LocateWithRetry(name string, pol locate.RetryPolicy, d locate.Delays) (image.Point, bool) {
	f.seen = append(f.seen, name)

	s, ok := f.script[name]
	if !ok || len(s) == 0 {
		return image.Point{}, false
	}
	idx := f.hits[name]
	if idx >= len(s) {
		idx = len(s) - 1
	}
	f.hits[name]++
	if !s[idx] {
		return image.Point{}, false
	}
	return image.Point{X: 10, Y: 20}, true
}

func (f *scriptedFinder) DefaultPolicy() locate.RetryPolicy {
	return locate.RetryPolicy{MaxAttempts: constants.DefaultMaxAttempts, BaseInterval: time.Second}
}

func (f *scriptedFinder) ProbePolicy() locate.RetryPolicy {
	return locate.RetryPolicy{MaxAttempts: constants.ProbeMaxAttempts, BaseInterval: time.Second}
}

type recordingClicker struct {
	specs []input.ClickSpec
}

func (c *recordingClicker) Click(spec input.ClickSpec) bool {
	c.specs = append(c.specs, spec)
	return true
}

func newTestOrchestrator(f Finder, c Clicker) (*Orchestrator, *[]time.Duration) {
	o := NewOrchestrator(f, c, config.Default(),
		func(string) {}, func(string) {}, func(string, ...interface{}) {})
	var sleeps []time.Duration
	o.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return o, &sleeps
}

func TestProcessBattleStartWithoutStaminaPrompt(t *testing.T) {
	f := newScriptedFinder(map[string][]bool{
		TplBattleStart: {true},
		// TplStamina absent
	})
	c := &recordingClicker{}
	o, _ := newTestOrchestrator(f, c)

	if !o.processBattleStart() {
		t.Fatal("expected battle to start")
	}
	// Exactly the initial battle start click, nothing more.
	if len(c.specs) != 1 {
		t.Fatalf("clicks = %d, want 1", len(c.specs))
	}
	if got := f.hits[TplBattleStart]; got != 1 {
		t.Errorf("battle start located %d times, want 1", got)
	}
}

func TestProcessBattleStartResolvesStaminaPrompt(t *testing.T) {
	f := newScriptedFinder(map[string][]bool{
		TplBattleStart: {true, true},
		TplStamina:     {true},
		TplOK:          {true},
	})
	c := &recordingClicker{}
	o, _ := newTestOrchestrator(f, c)

	if !o.processBattleStart() {
		t.Fatal("expected battle to start after refill")
	}
	// battle start, prompt confirm, ok, battle start again
	if len(c.specs) != 4 {
		t.Fatalf("clicks = %d, want 4", len(c.specs))
	}
	confirm := c.specs[1]
	if confirm.OffsetX != staminaConfirmOffsetX || confirm.OffsetY != staminaConfirmOffsetY {
		t.Errorf("confirm offsets = (%d, %d), want (%d, %d)",
			confirm.OffsetX, confirm.OffsetY, staminaConfirmOffsetX, staminaConfirmOffsetY)
	}
	if got := f.hits[TplBattleStart]; got != 2 {
		t.Errorf("battle start located %d times, want 2", got)
	}
}

func TestProcessBattleStartFailsWhenRetryFails(t *testing.T) {
	f := newScriptedFinder(map[string][]bool{
		TplBattleStart: {true, false},
		TplStamina:     {true},
		TplOK:          {true},
	})
	c := &recordingClicker{}
	o, _ := newTestOrchestrator(f, c)

	if o.processBattleStart() {
		t.Fatal("expected failure when the post-refill battle start is absent")
	}
}

func TestHandleBattleResultSkipBranch(t *testing.T) {
	f := newScriptedFinder(map[string][]bool{
		TplSkip:   {true},
		TplOK:     {true},
		TplResult: {true},
		TplReward: {true},
		TplWatch:  {true},
		// TplEvent and TplLevelUp absent
	})
	c := &recordingClicker{}
	o, sleeps := newTestOrchestrator(f, c)
	o.origin = image.Point{X: 50, Y: 60}

	o.handleBattleResult()

	// The normal-branch wait must never run in the skip branch.
	for _, d := range *sleeps {
		if d == o.cfg.BattleDuration() {
			t.Fatalf("skip branch slept the battle duration %v", d)
		}
	}
	if (*sleeps)[len(*sleeps)-1] != skipSettleDelay {
		t.Errorf("skip branch must end with the settle delay")
	}

	// Double overlay dismissal at origin offset comes first.
	for i := 0; i < 2; i++ {
		s := c.specs[i]
		if s.At != o.origin || s.OffsetX != overlayOffsetX || s.OffsetY != overlayOffsetY {
			t.Errorf("overlay click %d = %+v, want origin+(%d, %d)", i, s, overlayOffsetX, overlayOffsetY)
		}
	}
}

func TestHandleBattleResultNormalBranch(t *testing.T) {
	f := newScriptedFinder(map[string][]bool{
		// TplSkip absent
	})
	c := &recordingClicker{}
	o, sleeps := newTestOrchestrator(f, c)
	o.origin = image.Point{X: 50, Y: 60}

	o.handleBattleResult()

	found := false
	for _, d := range *sleeps {
		if d == o.cfg.BattleDuration() {
			found = true
		}
	}
	if !found {
		t.Fatal("normal branch must wait out the configured battle duration")
	}
	// Only the two overlay dismiss clicks, no skip-branch sequence.
	if len(c.specs) != 2 {
		t.Errorf("clicks = %d, want 2", len(c.specs))
	}
}

func TestStartFailsWithoutOrigin(t *testing.T) {
	f := newScriptedFinder(nil) // origin never found
	c := &recordingClicker{}
	o, _ := newTestOrchestrator(f, c)

	if err := o.Start(); err == nil {
		t.Fatal("expected a fatal startup error")
	}
	if len(c.specs) != 0 {
		t.Errorf("clicks = %d, want 0 (loop must not be entered)", len(c.specs))
	}
	o.mu.Lock()
	running := o.running
	o.mu.Unlock()
	if running {
		t.Error("orchestrator must not be running after a failed start")
	}
}

func TestStartAndStop(t *testing.T) {
	f := newScriptedFinder(map[string][]bool{
		TplOrigin: {true},
		// Team select never found: every cycle ends without side effects.
	})
	c := &recordingClicker{}
	o, _ := newTestOrchestrator(f, c)

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	o.Stop()

	for _, name := range f.seen {
		if name != TplOrigin && name != TplTeamSelect {
			t.Errorf("unexpected locate of %s during idle cycles", name)
		}
	}
	if len(c.specs) != 0 {
		t.Errorf("clicks = %d, want 0 when team select is absent", len(c.specs))
	}
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseIdle:                   "Idle",
		PhaseAwaitingTeamSelect:     "AwaitingTeamSelect",
		PhaseAwaitingBattleStart:    "AwaitingBattleStart",
		PhaseResolvingStaminaPrompt: "ResolvingStaminaPrompt",
		PhaseAwaitingResult:         "AwaitingResult",
		PhaseSkipBranch:             "SkipBranch",
		PhaseNormalBranch:           "NormalBranch",
		Phase(99):                   "Unknown",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}
