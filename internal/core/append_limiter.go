package core

// append_limiter.go caps how many read-modify-write cycles run at once.
//
// Each append holds the whole dataset in memory twice (parsed and
// re-encoded), so the cap bounds memory under load. It is not a lock: two
// admitted appends still race on the stored object, and the write
// precondition is what keeps them from losing each other's rows.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyAppends is returned when no slot frees up within the wait limit.
var ErrTooManyAppends = errors.New("too many concurrent appends, please try again later")

// DefaultMaxConcurrentAppends is used when a non-positive cap is configured.
const DefaultMaxConcurrentAppends = 16

// DefaultMaxAppendWait is used when a non-positive wait is configured.
const DefaultMaxAppendWait = 10 * time.Second

// AppendLimiter is a counting semaphore over append cycles.
type AppendLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewAppendLimiter allows at most maxConcurrent appends; callers wait up to
// maxWait for a slot.
func NewAppendLimiter(maxConcurrent int, maxWait time.Duration) *AppendLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAppends
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxAppendWait
	}
	return &AppendLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it (use defer).
// It returns ErrTooManyAppends after maxWait, or ctx.Err() if ctx ends first.
func (l *AppendLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyAppends
	}
}

// Release returns a slot taken by Acquire.
func (l *AppendLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of appends in flight.
func (l *AppendLimiter) Active() int {
	return int(l.active.Load())
}

// WaitForDrain blocks until no appends are in flight or ctx ends.
// Used during shutdown so committed-but-unanswered appends finish.
func (l *AppendLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
