package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// fastPolicy keeps the shape of DefaultPolicy at millisecond scale.
func fastPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		MaxElapsed:  time.Second,
		Multiplier:  time.Millisecond,
		MinBackoff:  4 * time.Millisecond,
		MaxBackoff:  16 * time.Millisecond,
	}
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if p.MaxAttempts != 3 || p.MaxElapsed != 10*time.Second {
		t.Errorf("stop conditions = %d attempts / %s, want 3 / 10s", p.MaxAttempts, p.MaxElapsed)
	}
}

func TestPolicy_Backoff(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 4 * time.Second},
		{1, 4 * time.Second},
		{2, 4 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{6, 16 * time.Second},
		{200, 16 * time.Second},
	}
	for _, tt := range tests {
		if got := p.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestPolicy_BackoffJitter(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()
	p.Jitter = 0.25

	for range 50 {
		got := p.Backoff(4)
		if got < 6*time.Second || got > 10*time.Second {
			t.Fatalf("Backoff(4) with jitter = %s, want within 8s ±25%%", got)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"negative attempts", func(p *Policy) { p.MaxAttempts = -1 }},
		{"negative elapsed", func(p *Policy) { p.MaxElapsed = -time.Second }},
		{"inverted range", func(p *Policy) { p.MinBackoff = time.Minute }},
		{"jitter too large", func(p *Policy) { p.Jitter = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultPolicy()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, domerrors.ErrInvalidConfiguration) {
				t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestPolicy_Do_SucceedsAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	var retried []int

	p := fastPolicy()
	p.OnRetry = func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }

	err := p.Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts == 3 {
			return nil
		}
		return errors.New("temporary")
	})
	if err != nil {
		t.Fatalf("Do() = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", retried)
	}
}

func TestPolicy_Do_ReturnsLastError(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		attempts++
		return fmt.Errorf("failure %d", attempts)
	})
	if err == nil || err.Error() != "failure 3" {
		t.Errorf("Do() = %v, want the third failure", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestPolicy_Do_StopsAfterMaxElapsed(t *testing.T) {
	t.Parallel()
	p := fastPolicy()
	p.MaxAttempts = 0
	p.MaxElapsed = 30 * time.Millisecond

	attempts := 0
	start := time.Now()
	err := p.Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("slow failure")
	})
	if err == nil {
		t.Fatal("Do() = nil, want error")
	}
	if attempts < 2 {
		t.Errorf("attempts = %d, want at least 2 before the deadline", attempts)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Do() ran %s, want it to stop near MaxElapsed", elapsed)
	}
}

func TestPolicy_Do_NotRetried(t *testing.T) {
	t.Parallel()
	notFound := domerrors.NewScraperError("https://example.test/detail", 404, errors.New("not found"))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permanent", Permanent(notFound), notFound},
		{"invalid configuration", domerrors.InvalidConfiguration("bad"), domerrors.ErrInvalidConfiguration},
		{"not initialized", domerrors.ErrNotInitialized, domerrors.ErrNotInitialized},
		{"canceled", context.Canceled, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			attempts := 0
			err := fastPolicy().Do(context.Background(), func(context.Context) error {
				attempts++
				return tt.err
			})
			if attempts != 1 {
				t.Errorf("attempts = %d, want 1", attempts)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Do() = %v, want %v", err, tt.want)
			}
			if IsPermanent(err) {
				t.Error("permanent marker should be stripped from the returned error")
			}
		})
	}
}

func TestPolicy_Do_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	p := fastPolicy()
	p.MinBackoff = time.Second
	p.MaxBackoff = time.Second

	attempts := 0
	err := p.Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("error")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestPermanent(t *testing.T) {
	t.Parallel()
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	base := errors.New("gone")
	wrapped := fmt.Errorf("fetch: %w", Permanent(base))
	if !IsPermanent(wrapped) {
		t.Error("IsPermanent() should see through wrapping")
	}
	if !errors.Is(wrapped, base) {
		t.Error("permanent error should unwrap to its cause")
	}
	if IsPermanent(base) {
		t.Error("plain error reported as permanent")
	}
}

func TestSleep(t *testing.T) {
	t.Parallel()

	start := time.Now()
	if err := Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep() = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Sleep returned after %s, want ~20ms", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	if err := Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("canceled Sleep waited %s", elapsed)
	}
}
