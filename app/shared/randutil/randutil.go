// Package randutil wraps the randomness and clock sources behind small
// interfaces so chooser shuffles and buzzer timestamps are reproducible in
// tests.
package randutil

import (
	"math/rand"
	"time"
)

// Source produces shuffles. Seedable for test reproducibility.
type Source interface {
	// Shuffle runs Fisher-Yates over n elements via swap.
	Shuffle(n int, swap func(i, j int))
}

// NewSource returns a Source seeded from seed; pass time.Now().UnixNano()
// for production use.
func NewSource(seed int64) Source {
	return &randSource{rng: rand.New(rand.NewSource(seed))}
}

type randSource struct {
	rng *rand.Rand
}

func (s *randSource) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Clock supplies the server timestamps used for buzz ordering and timer end
// detection.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is a manually advanced clock for tests.
type FakeClock struct {
	Current time.Time
}

func (c *FakeClock) Now() time.Time { return c.Current }

// Advance moves the fake clock forward.
func (c *FakeClock) Advance(d time.Duration) { c.Current = c.Current.Add(d) }
