// Package testutil holds deterministic helpers shared by fixtures and tests.
package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is the first timestamp a DeterministicClock hands out.
var DefaultEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultStep is the spacing between consecutive timestamps.
const DefaultStep = time.Minute

// DeterministicClock hands out evenly spaced UTC timestamps.
//
// Fixtures that leave timestamps unset are stamped from one clock, so the
// same fixture always loads with the same times and sorts the same way.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	epoch time.Time
	step  time.Duration
	n     int64
}

// NewDeterministicClock creates a clock starting at DefaultEpoch with
// DefaultStep spacing.
//
// The first call to Next() returns DefaultEpoch.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultEpoch, DefaultStep)
}

// NewDeterministicClockAt creates a clock starting at epoch.
// A non-positive step falls back to DefaultStep.
func NewDeterministicClockAt(epoch time.Time, step time.Duration) *DeterministicClock {
	if step <= 0 {
		step = DefaultStep
	}
	return &DeterministicClock{epoch: epoch.UTC(), step: step}
}

// Next returns the next timestamp.
//
// Monotonic: each call returns the previous value plus the step.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.epoch.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Issued returns how many timestamps have been handed out.
func (c *DeterministicClock) Issued() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock so the next call to Next() returns the epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
