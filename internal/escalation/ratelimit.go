package escalation

import (
	"sync"
	"time"
)

// DefaultCallsPerMinute is the default escalation rate limit.
const DefaultCallsPerMinute = 20

// window is the sliding window the limiter evaluates.
const window = time.Minute

// RateLimiter counts accepted escalations over a rolling 60-second
// window. Timestamps older than the window are pruned lazily at each
// check. Safe for concurrent use.
type RateLimiter struct {
	mu             sync.Mutex
	limitPerMinute int
	calls          []time.Time
	now            func() time.Time
}

// NewRateLimiter creates a limiter allowing limitPerMinute calls per
// rolling minute. A non-positive limit falls back to the default.
func NewRateLimiter(limitPerMinute int) *RateLimiter {
	if limitPerMinute <= 0 {
		limitPerMinute = DefaultCallsPerMinute
	}
	return &RateLimiter{
		limitPerMinute: limitPerMinute,
		now:            time.Now,
	}
}

// Record registers one accepted call at the current time.
func (r *RateLimiter) Record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	r.calls = append(r.calls, r.now())
}

// Exceeds reports whether the trailing window already holds the limit.
func (r *RateLimiter) Exceeds() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	return len(r.calls) >= r.limitPerMinute
}

// InWindow returns the number of calls currently inside the window.
func (r *RateLimiter) InWindow() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	return len(r.calls)
}

// prune drops timestamps that have left the window. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-window)
	kept := r.calls[:0]
	for _, ts := range r.calls {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.calls = kept
}
