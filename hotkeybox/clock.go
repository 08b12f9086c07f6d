package hotkeybox

import (
	"sync"
	"time"
)

// Clock is a monotonic millisecond counter. It wraps around
// after ~49 days, callers must compare with unsigned subtraction.
type Clock interface {
	Millis() uint32
}

type systemClock struct {
	t0 time.Time
}

// NewSystemClock returns a Clock counting from now.
func NewSystemClock() Clock {
	return systemClock{t0: time.Now()}
}

func (c systemClock) Millis() uint32 {
	return uint32(time.Since(c.t0) / time.Millisecond)
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu sync.Mutex
	ms uint32
}

func (c *ManualClock) Millis() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

func (c *ManualClock) Set(ms uint32) {
	c.mu.Lock()
	c.ms = ms
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.ms += uint32(d / time.Millisecond)
	c.mu.Unlock()
}

// elapsed is wraparound safe as long as less than 2^32ms passed.
func elapsed(now, start uint32) uint32 {
	return now - start
}
