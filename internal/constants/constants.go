package constants

import "time"

// Battle Loop Configuration
const (
	// Locate Policy
	LocateSettleDelay  = 500 * time.Millisecond // Wait before each locate (screen transition settling)
	DefaultMaxAttempts = 3                      // Retry budget for standard locates
	ProbeMaxAttempts   = 2                      // Reduced budget for optional-element probes
	MinRetryWait       = 100 * time.Millisecond // Floor for backoff sleeps
	RetryJitter        = 200 * time.Millisecond // Random perturbation bound on backoff sleeps

	// Click Policy
	ClickPreDelay    = 300 * time.Millisecond // Wait before moving the pointer
	ClickPostDelay   = 500 * time.Millisecond // Wait after releasing the button
	ClickJitterPx    = 5                      // Random pixel offset per axis
	MoveDurationMin  = 100 * time.Millisecond
	MoveDurationMax  = 300 * time.Millisecond
	ClickDurationMin = 200 * time.Millisecond
	ClickDurationMax = 500 * time.Millisecond

	// Image Matching
	KeyPixelSlack        = 2.0 // Quick-reject tolerance multiplier over the per-pixel confidence budget
	MinKeyPixelTolerance = 8.0 // Floor so high confidences still tolerate anti-aliased edges

	// Debugging
	DebugDump = true
)
