package util

import (
	"math/rand"
	"time"
)

// New returns a dedicated rand source. Seed 0 means "seed from the clock".
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// Between returns a uniform duration in [min, max].
func Between(r *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.Int63n(int64(max-min)+1))
}

// Symmetric returns a uniform duration in [-bound, +bound].
func Symmetric(r *rand.Rand, bound time.Duration) time.Duration {
	if bound <= 0 {
		return 0
	}
	return time.Duration(r.Int63n(int64(2*bound)+1)) - bound
}
