package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	hits    int64
	resetAt time.Time
}

// MemoryCounter keeps windows in process memory.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryCounter constructs a counter. A nil clock uses time.Now.
func NewMemoryCounter(now func() time.Time) *MemoryCounter {
	if now == nil {
		now = time.Now
	}
	return &MemoryCounter{windows: make(map[string]*window), now: now}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, size time.Duration) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.resetAt) {
		c.sweep(now)
		w = &window{resetAt: now.Add(size)}
		c.windows[key] = w
	}
	w.hits++
	return w.hits, w.resetAt.Sub(now), nil
}

func (c *MemoryCounter) sweep(now time.Time) {
	for key, w := range c.windows {
		if !now.Before(w.resetAt) {
			delete(c.windows, key)
		}
	}
}

var _ Counter = (*MemoryCounter)(nil)
