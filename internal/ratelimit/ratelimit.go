// Package ratelimit provides a minimum-interval rate limiter.
// Successive permitted calls are spaced at least MinInterval apart,
// no matter how many goroutines wait concurrently.
package ratelimit

import (
	"context"
	"sync"
	"time"

	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// Limiter enforces a minimum interval between permitted calls.
// It is safe for concurrent use.
//
// Each Wait reserves the next free slot under the mutex and then sleeps
// outside the lock until that slot arrives:
//
//	slot = max(now, last + minInterval)
//	last = slot
//
// Concurrent waiters therefore receive distinct slots, each at least
// minInterval after the previous one.
type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time // Zero until the first Wait
	now         func() time.Time
	observe     func(time.Duration)
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithObserver registers a callback receiving how long each Wait slept.
// Typically wired to a metrics histogram.
func WithObserver(fn func(time.Duration)) Option {
	return func(l *Limiter) {
		l.observe = fn
	}
}

// withClock replaces the time source. Test only.
func withClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter spacing calls at least minInterval apart.
// A zero interval disables throttling; a negative one is rejected.
//
// Example:
//
//	// At most two requests per second
//	limiter, err := ratelimit.New(500 * time.Millisecond)
func New(minInterval time.Duration, opts ...Option) (*Limiter, error) {
	if minInterval < 0 {
		return nil, domerrors.InvalidConfiguration("min interval must not be negative, got %v", minInterval)
	}
	l := &Limiter{
		minInterval: minInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// MinInterval returns the configured spacing.
func (l *Limiter) MinInterval() time.Duration {
	return l.minInterval
}

// LastCalled returns the most recently reserved slot.
// The zero time means Wait has never been called.
func (l *Limiter) LastCalled() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// NextCall returns the earliest time the next call may proceed.
func (l *Limiter) NextCall() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextLocked()
}

// Callable reports whether a call made now would proceed without waiting.
// It does not reserve anything.
func (l *Limiter) Callable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.now().Before(l.nextLocked())
}

// nextLocked must be called with mu held.
func (l *Limiter) nextLocked() time.Time {
	if l.last.IsZero() {
		return time.Time{}
	}
	return l.last.Add(l.minInterval)
}

// Wait blocks until the caller's reserved slot arrives or ctx is canceled.
// Returns ctx.Err() on cancellation; the reserved slot is then left unused.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.now()
	slot := now
	if next := l.nextLocked(); next.After(slot) {
		slot = next
	}
	l.last = slot
	l.mu.Unlock()

	delay := slot.Sub(now)
	if l.observe != nil {
		l.observe(delay)
	}
	if delay <= 0 {
		return nil
	}

	// Wait outside the lock
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
