package uvtest

import (
	"sync"
	"time"
)

// Epoch is the starting time of a clock made by NewFakeClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// FakeClock is a manually driven time source. It satisfies the animation
// clock's TimeSource and is safe for concurrent use.
type FakeClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

// NewFakeClock returns a clock reading Epoch.
func NewFakeClock() *FakeClock { return NewFakeClockAt(Epoch) }

// NewFakeClockAt returns a clock reading t.
func NewFakeClockAt(t time.Time) *FakeClock {
	return &FakeClock{start: t, now: t}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock by d and returns the new reading. Negative
// durations move it backwards.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set jumps to t. Elapsed is still measured from the original start.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Elapsed returns the time moved since the clock was created.
func (c *FakeClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.start)
}
