package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/raulk/clock"
)

const defaultMaxKeys = 10000

// MemoryLimiter keeps windows in process. It is only correct for a single instance.
type MemoryLimiter struct {
	mu      sync.Mutex
	clock   clock.Clock
	windows map[string]*window
	maxKeys int
}

type window struct {
	count int
	end   time.Time
}

// NewMemoryLimiter creates an in-process limiter tracking at most maxKeys windows
func NewMemoryLimiter(c clock.Clock, maxKeys int) *MemoryLimiter {
	if c == nil {
		c = clock.New()
	}
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	return &MemoryLimiter{
		clock:   c,
		windows: make(map[string]*window),
		maxKeys: maxKeys,
	}
}

// Allow records a hit for key and reports whether it fits in the current window
func (m *MemoryLimiter) Allow(_ context.Context, key string, limit int, length time.Duration) (Decision, error) {
	if limit <= 0 {
		return unlimited(limit), nil
	}
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if ok && !now.Before(w.end) {
		delete(m.windows, key)
		ok = false
	}
	if !ok {
		if len(m.windows) >= m.maxKeys {
			m.sweep(now)
		}
		if len(m.windows) >= m.maxKeys {
			return Decision{}, ErrCapacityExceeded
		}
		w = &window{end: now.Add(length)}
		m.windows[key] = w
	}

	if w.count >= limit {
		return Decision{Allowed: false, Limit: limit, Remaining: 0, ResetAt: w.end}, nil
	}
	w.count++
	return Decision{Allowed: true, Limit: limit, Remaining: limit - w.count, ResetAt: w.end}, nil
}

// Sweep drops every expired window and returns how many were removed
func (m *MemoryLimiter) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweep(m.clock.Now())
}

func (m *MemoryLimiter) sweep(now time.Time) int {
	removed := 0
	for key, w := range m.windows {
		if !now.Before(w.end) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

// Len is the number of windows currently tracked
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
