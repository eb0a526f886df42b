package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is the instant a FakeClock starts at when none is given.
var DefaultEpoch = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

// FakeClock is a manually advanced clock for tests.
//
// Unlike the system clock it carries no monotonic reading, so elapsed time
// is exactly the sum of Advance calls.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock at start, or at DefaultEpoch if start is zero.
func NewFakeClock(start time.Time) *FakeClock {
	if start.IsZero() {
		start = DefaultEpoch
	}
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t. Moving backwards is allowed so tests can model
// wall-clock corrections.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
