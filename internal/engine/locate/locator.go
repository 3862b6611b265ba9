// Package locate turns the raw matching capability into the engine's
// "is this element on screen" primitive, including the retry policy every
// phase of the battle cycle leans on.
package locate

import (
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/ConserveLee/battle-idle/internal/config"
	"github.com/ConserveLee/battle-idle/internal/constants"
	"github.com/ConserveLee/battle-idle/internal/engine/screen"
	"github.com/ConserveLee/battle-idle/internal/util"
)

// Matcher is the screen-matching capability consumed by the locator.
type Matcher interface {
	Match(tmpl *image.Gray, confidence float64) (image.Point, bool, error)
}

// RetryPolicy bounds a retrying locate. Supplied per call, never stored.
type RetryPolicy struct {
	MaxAttempts  int
	BaseInterval time.Duration
	Jitter       time.Duration
}

// Delays is the explicit pre/post wait around an operation. The zero value
// means no extra waiting.
type Delays struct {
	Pre  time.Duration
	Post time.Duration
}

// Locator resolves template names to screen coordinates. Absence is a
// normal result, not an error: every failure mode inside degrades to
// "not found".
type Locator struct {
	cache   *screen.TemplateCache
	matcher Matcher
	cfg     *config.Config

	logFunc   func(string)
	debugFunc func(string, ...interface{})

	// Injected for tests
	sleep func(time.Duration)
	rng   *rand.Rand
}

// NewLocator wires the cache and matching capability together
func NewLocator(cache *screen.TemplateCache, matcher Matcher, cfg *config.Config, log func(string), debug func(string, ...interface{})) *Locator {
	return &Locator{
		cache:     cache,
		matcher:   matcher,
		cfg:       cfg,
		logFunc:   log,
		debugFunc: debug,
		sleep:     time.Sleep,
		rng:       util.New(0),
	}
}

// DefaultPolicy returns the standard retry budget from configuration.
func (l *Locator) DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  constants.DefaultMaxAttempts,
		BaseInterval: l.cfg.RetryInterval(),
		Jitter:       constants.RetryJitter,
	}
}

// ProbePolicy returns the reduced budget used for optional elements.
func (l *Locator) ProbePolicy() RetryPolicy {
	p := l.DefaultPolicy()
	p.MaxAttempts = constants.ProbeMaxAttempts
	return p
}

// Locate performs a single matching attempt for the named template.
// A cached template miss short-circuits without touching the matcher.
func (l *Locator) Locate(name string) (image.Point, bool) {
	// Let the UI finish rendering before sampling the screen
	l.sleep(constants.LocateSettleDelay)

	tmpl, ok := l.cache.Resolve(name)
	if !ok {
		return image.Point{}, false
	}

	pos, found, err := l.matcher.Match(tmpl, l.cfg.ConfidenceFor(name))
	if err != nil {
		l.debugFunc("match error for %s: %v", name, err)
		return image.Point{}, false
	}
	return pos, found
}

// LocateWithRetry attempts Locate up to pol.MaxAttempts times with
// exponential backoff plus jitter between failures. Exhausting the budget is
// the normal "absent" signal, not an error.
func (l *Locator) LocateWithRetry(name string, pol RetryPolicy, d Delays) (image.Point, bool) {
	if pol.MaxAttempts < 1 {
		pol.MaxAttempts = 1
	}
	if pol.BaseInterval <= 0 {
		pol.BaseInterval = l.cfg.RetryInterval()
	}

	if d.Pre > 0 {
		l.sleep(d.Pre)
	}

	for attempt := 1; attempt <= pol.MaxAttempts; attempt++ {
		if pos, found := l.Locate(name); found {
			l.logFunc(fmt.Sprintf("Found [%s] (attempt %d)", name, attempt))
			if d.Post > 0 {
				l.sleep(d.Post)
			}
			return pos, true
		}

		if attempt == pol.MaxAttempts {
			break
		}

		wait := l.backoff(attempt, pol)
		l.debugFunc("%s not found, retrying in %v", name, wait)
		l.sleep(wait)
	}

	if d.Post > 0 {
		l.sleep(d.Post)
	}
	return image.Point{}, false
}

// backoff computes the wait before the next attempt: (2^attempt)*base plus
// random jitter, floored so two fast failures never spin.
func (l *Locator) backoff(attempt int, pol RetryPolicy) time.Duration {
	wait := time.Duration(1<<uint(attempt)) * pol.BaseInterval
	wait += util.Symmetric(l.rng, pol.Jitter)
	if wait < constants.MinRetryWait {
		wait = constants.MinRetryWait
	}
	return wait
}
