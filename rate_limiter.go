// rate_limiter.go
// ----------------
// This file defines the RateLimiter type, a sliding-window limiter bounding the
// number of outbound calls to a single service within a rolling time window.
//
// Responsibilities:
// - Tracking the timestamp of every recorded call and pruning entries that have
//   aged out of the window before any capacity decision.
// - Answering whether a new call may proceed immediately (CanMakeRequest) and
//   recording calls that were actually sent (RecordRequest).
// - Suspending a caller until capacity is expected again (WaitIfNeeded).
// - Offering an atomic prune-check-record step (TryAcquire / Acquire) so
//   concurrent callers cannot jointly exceed the cap through a check-then-act
//   race.
//
// One RateLimiter is created per logical API target and lives for the process's
// duration; all state is guarded by a single mutex.
package agentbridge

import (
	"context"
	"sync"
	"time"
)

type RateLimiter struct {
	mu         sync.Mutex
	maxCalls   int
	timeWindow time.Duration
	calls      []time.Time

	now func() time.Time // replaced in tests
}

// NewRateLimiter creates a limiter allowing at most maxCalls per rolling
// timeWindow. Non-positive values are a misconfiguration and fail fast rather
// than silently allowing zero throughput.
func NewRateLimiter(maxCalls int, timeWindow time.Duration) (*RateLimiter, error) {
	if maxCalls <= 0 {
		return nil, &ConfigError{Field: "maxCalls", Reason: "must be positive"}
	}
	if timeWindow <= 0 {
		return nil, &ConfigError{Field: "timeWindow", Reason: "must be positive"}
	}
	return &RateLimiter{
		maxCalls:   maxCalls,
		timeWindow: timeWindow,
		now:        time.Now,
	}, nil
}

// pruneLocked drops call timestamps that have aged out of the window.
// Callers must hold mu.
func (r *RateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.timeWindow)
	i := 0
	for i < len(r.calls) && !r.calls[i].After(cutoff) {
		i++
	}
	r.calls = r.calls[i:]
}

// CanMakeRequest prunes expired entries and reports whether a new call may be
// made immediately. It does not record a call.
func (r *RateLimiter) CanMakeRequest() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())
	return len(r.calls) < r.maxCalls
}

// RecordRequest records that a call was actually sent. Call it exactly once
// per outbound request, after deciding to proceed.
func (r *RateLimiter) RecordRequest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, r.now())
}

// TryAcquire atomically prunes, checks capacity, and records a call if one is
// available. Use it instead of the CanMakeRequest/RecordRequest pair when
// multiple goroutines share the limiter.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.pruneLocked(now)
	if len(r.calls) >= r.maxCalls {
		return false
	}
	r.calls = append(r.calls, now)
	return true
}

// Remaining reports how many call slots are left in the current window.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.now())
	return r.maxCalls - len(r.calls)
}

// waitDuration returns how long until the oldest retained call ages out, or
// zero if capacity is already available. The wait is computed from the oldest
// entry only; when several entries expire together this is conservative but
// never too short.
func (r *RateLimiter) waitDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.pruneLocked(now)
	if len(r.calls) < r.maxCalls {
		return 0
	}
	return r.timeWindow - now.Sub(r.calls[0])
}

// WaitIfNeeded suspends the caller until the limiter expects capacity to be
// available again. It records nothing, and it does not guarantee capacity
// after waking if other callers have consumed it in the meantime; use Acquire
// for that. Returns ctx.Err() if cancelled while waiting.
func (r *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	return sleepContext(ctx, r.waitDuration())
}

// Acquire blocks until a call slot is both available and recorded, or until
// ctx is cancelled. On cancellation no call is recorded.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		if r.TryAcquire() {
			return nil
		}
		d := r.waitDuration()
		if d <= 0 {
			// Capacity appeared between the two checks; race for it again.
			continue
		}
		if err := sleepContext(ctx, d); err != nil {
			return err
		}
	}
}
