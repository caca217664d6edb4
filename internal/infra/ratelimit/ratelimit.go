package ratelimit

import (
	"context"
	"time"
)

// Counter increments a fixed-window counter and reports the hits so far and the time until the window resets.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (hits int64, resetIn time.Duration, err error)
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter enforces a fixed number of requests per window and key.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
}

// NewLimiter constructs a limiter.
func NewLimiter(counter Counter, limit int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

// Allow counts one request for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	hits, resetIn, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, err
	}
	remaining := l.limit - int(hits)
	return Decision{
		Allowed:   hits <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(remaining, 0),
		ResetIn:   resetIn,
	}, nil
}
