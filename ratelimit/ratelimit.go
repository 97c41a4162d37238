// Package ratelimit implements fixed-window request counting. The first hit for a
// key opens a window; hits inside the window are counted and rejected once the
// count reaches the limit; the counter resets when the window elapses.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCapacityExceeded is returned by the memory limiter when it tracks too many keys
	ErrCapacityExceeded = errors.New("rate limiter capacity exceeded")
	// ErrRateLimited is reported to callers that were rejected
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Decision is the outcome of a single Allow call
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected caller should wait before the window resets
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.Before(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// Limiter counts hits per key inside a fixed window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

func unlimited(limit int) Decision {
	return Decision{Allowed: true, Limit: limit, Remaining: limit}
}
