package scraper

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// Policy describes how a fetch is retried.
//
// Attempts stop when MaxAttempts have been made or MaxElapsed has passed
// since the first attempt, whichever comes first. The delay before retry n
// (1-based) is Multiplier * 2^(n-1), clamped to [MinBackoff, MaxBackoff]:
//
//	retry 1: 4s  (1s clamped up to MinBackoff)
//	retry 2: 4s
//	retry 3: 4s
//	retry 4: 8s
//	retry 5: 16s (capped)
type Policy struct {
	MaxAttempts int           // 0 = unlimited
	MaxElapsed  time.Duration // 0 = unlimited
	Multiplier  time.Duration
	MinBackoff  time.Duration
	MaxBackoff  time.Duration

	// Jitter spreads each delay by ±Jitter (0.25 = ±25%). Zero keeps delays exact.
	Jitter float64

	// OnRetry is called before sleeping, with the failed attempt number.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns the catalog retry policy: 3 attempts or 10 seconds,
// backoff between 4 and 16 seconds.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		MaxElapsed:  10 * time.Second,
		Multiplier:  time.Second,
		MinBackoff:  4 * time.Second,
		MaxBackoff:  16 * time.Second,
	}
}

// Validate reports a configuration error for negative limits or an inverted
// backoff range.
func (p Policy) Validate() error {
	var errs []error
	if p.MaxAttempts < 0 {
		errs = append(errs, domerrors.InvalidConfiguration("max attempts must be >= 0, got %d", p.MaxAttempts))
	}
	if p.MaxElapsed < 0 || p.Multiplier < 0 || p.MinBackoff < 0 || p.MaxBackoff < 0 {
		errs = append(errs, domerrors.InvalidConfiguration("retry durations must be >= 0"))
	}
	if p.MaxBackoff > 0 && p.MinBackoff > p.MaxBackoff {
		errs = append(errs, domerrors.InvalidConfiguration("min backoff %s exceeds max backoff %s", p.MinBackoff, p.MaxBackoff))
	}
	if p.Jitter < 0 || p.Jitter >= 1 {
		errs = append(errs, domerrors.InvalidConfiguration("jitter must be in [0, 1), got %v", p.Jitter))
	}
	return errors.Join(errs...)
}

// Backoff returns the delay before the given retry (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	raw := float64(p.Multiplier) * math.Pow(2, float64(attempt-1))
	if p.MaxBackoff > 0 && raw > float64(p.MaxBackoff) {
		raw = float64(p.MaxBackoff)
	}
	delay := time.Duration(math.MaxInt64)
	if raw < float64(math.MaxInt64) {
		delay = time.Duration(raw)
	}
	if delay < p.MinBackoff {
		delay = p.MinBackoff
	}
	if p.Jitter > 0 && delay > 0 {
		spread := float64(delay) * p.Jitter
		delay = time.Duration(float64(delay) - spread + rand.Float64()*2*spread)
	}
	return delay
}

// Do calls fn until it succeeds, the policy gives up, or ctx is done.
// The last error is returned when the policy gives up. Permanent errors,
// configuration errors and context errors end the loop at once.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := p.Validate(); err != nil {
		return err
	}

	start := time.Now()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return unwrapPermanent(err)
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return err
		}
		if p.MaxElapsed > 0 && time.Since(start) >= p.MaxElapsed {
			return err
		}

		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func retryable(err error) bool {
	switch {
	case IsPermanent(err),
		errors.Is(err, domerrors.ErrInvalidConfiguration),
		errors.Is(err, domerrors.ErrNotInitialized),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// permanentError marks an error that retrying cannot fix (401/403/404).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable. Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err or anything it wraps was marked Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

func unwrapPermanent(err error) error {
	var pe *permanentError
	if errors.As(err, &pe) {
		return pe.err
	}
	return err
}

// Sleep waits for the specified duration, respecting context cancellation
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
