package ledger

import (
	"sync"
	"time"
)

// Clock supplies the reference time for "now" queries, seeding and ids.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the time it was last set to.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// idGenerator hands out strictly increasing ids. Values track wall-clock
// milliseconds when possible so ids stay compatible with older data.
type idGenerator struct {
	last int64
}

func (g *idGenerator) Next(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe makes sure future ids stay above an existing one.
func (g *idGenerator) Observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
