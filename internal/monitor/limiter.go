package monitor

import (
	"sync"
	"time"
)

// Decision is the outcome of one fixed-window rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type counter struct {
	count   int
	resetAt time.Time
}

// fixedWindowLimiter counts requests per key in fixed windows. Counters
// reset when their window elapses; expired counters are removed by
// Sweep. Boundary bursts of up to twice the limit across a window edge
// are a documented characteristic of the fixed-window discipline.
type fixedWindowLimiter struct {
	mu    sync.Mutex
	items map[string]counter
}

func newFixedWindowLimiter() *fixedWindowLimiter {
	return &fixedWindowLimiter{items: make(map[string]counter)}
}

// Allow records one request for key and reports whether it stays within
// limit for the current window. The read-increment-write sequence is
// atomic per key.
func (l *fixedWindowLimiter) Allow(key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	curr, ok := l.items[key]
	if !ok || now.After(curr.resetAt) {
		curr = counter{count: 1, resetAt: now.Add(window)}
		l.items[key] = curr
		return Decision{Allowed: true, Limit: limit, Remaining: limit - 1, ResetAt: curr.resetAt}
	}

	curr.count++
	l.items[key] = curr

	remaining := limit - curr.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   curr.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   curr.resetAt,
	}
}

// Sweep drops counters whose window has elapsed. The key list is
// snapshotted up front; each removal then takes the lock on its own, so
// concurrent Allow calls are never stalled for more than one key. A
// counter refreshed between snapshot and removal is rechecked and kept.
func (l *fixedWindowLimiter) Sweep() int {
	l.mu.Lock()
	keys := make([]string, 0, len(l.items))
	for key := range l.items {
		keys = append(keys, key)
	}
	l.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, key := range keys {
		l.mu.Lock()
		if curr, ok := l.items[key]; ok && now.After(curr.resetAt) {
			delete(l.items, key)
			removed++
		}
		l.mu.Unlock()
	}
	return removed
}

func (l *fixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
