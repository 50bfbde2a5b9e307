package scraper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_SingleExecution(t *testing.T) {
	t.Parallel()
	var g Group[string]
	var calls, sharedCount atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			v, shared, err := g.Do(context.Background(), "0505001", func(context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "detail", nil
			})
			if err != nil || v != "detail" {
				t.Errorf("Do() = %q, %v", v, err)
			}
			if shared {
				sharedCount.Add(1)
			}
		})
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fn ran %d times, want 1", got)
	}
	if got := sharedCount.Load(); got != 10 {
		t.Errorf("%d callers saw shared=true, want 10", got)
	}
}

func TestGroup_DifferentKeys(t *testing.T) {
	t.Parallel()
	var g Group[int]
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Go(func() {
			key := string(rune('A' + i))
			v, _, err := g.Do(context.Background(), key, func(context.Context) (int, error) {
				calls.Add(1)
				return i, nil
			})
			if err != nil || v != i {
				t.Errorf("Do(%s) = %d, %v", key, v, err)
			}
		})
	}
	wg.Wait()

	if got := calls.Load(); got != 5 {
		t.Errorf("fn ran %d times, want 5", got)
	}
}

func TestGroup_Error(t *testing.T) {
	t.Parallel()
	var g Group[*int]
	want := errors.New("detail failed")

	v, _, err := g.Do(context.Background(), "k", func(context.Context) (*int, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Errorf("Do() error = %v, want %v", err, want)
	}
	if v != nil {
		t.Errorf("Do() value = %v, want nil", v)
	}
}

func TestGroup_ContextCanceled(t *testing.T) {
	t.Parallel()
	var g Group[string]

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := g.Do(ctx, "k", func(context.Context) (string, error) {
		t.Error("fn should not run with a canceled context")
		return "", nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestGroup_WaiterStopsOnCancel(t *testing.T) {
	t.Parallel()
	var g Group[string]
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := g.Do(ctx, "slow", func(context.Context) (string, error) {
		<-release
		return "late", nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() = %v, want context.DeadlineExceeded", err)
	}
}

// waitForWaiters blocks until key has n callers waiting.
func waitForWaiters[T any](t *testing.T, g *Group[T], key string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		g.mu.Lock()
		f, ok := g.flights[key]
		got := 0
		if ok {
			got = f.waiters
		}
		g.mu.Unlock()
		if got == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("key %q never had %d waiters", key, n)
}

func TestGroup_FirstCallerCanceled(t *testing.T) {
	t.Parallel()
	var g Group[string]
	release := make(chan struct{})
	fnErr := make(chan error, 1)

	fn := func(ctx context.Context) (string, error) {
		select {
		case <-release:
			return "detail", nil
		case <-ctx.Done():
			fnErr <- ctx.Err()
			return "", ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, _, err := g.Do(firstCtx, "0505001", fn)
		firstDone <- err
	}()
	waitForWaiters(t, &g, "0505001", 1)

	type result struct {
		v      string
		shared bool
		err    error
	}
	secondDone := make(chan result, 1)
	go func() {
		v, shared, err := g.Do(context.Background(), "0505001", fn)
		secondDone <- result{v, shared, err}
	}()
	waitForWaiters(t, &g, "0505001", 2)

	cancelFirst()
	if err := <-firstDone; !errors.Is(err, context.Canceled) {
		t.Errorf("first Do() = %v, want context.Canceled", err)
	}
	waitForWaiters(t, &g, "0505001", 1)

	close(release)
	got := <-secondDone
	if got.err != nil || got.v != "detail" {
		t.Errorf("second Do() = %q, %v; want detail", got.v, got.err)
	}
	select {
	case err := <-fnErr:
		t.Errorf("shared call was canceled: %v", err)
	default:
	}
}

func TestGroup_AllCallersCanceled(t *testing.T) {
	t.Parallel()
	var g Group[string]
	fnErr := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := g.Do(ctx, "k", func(ctx context.Context) (string, error) {
			<-ctx.Done()
			fnErr <- ctx.Err()
			return "", ctx.Err()
		})
		done <- err
	}()
	waitForWaiters(t, &g, "k", 1)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
	select {
	case err := <-fnErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("call context error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("abandoned call was not canceled")
	}

	// A later caller starts a fresh call instead of joining the canceled one.
	v, _, err := g.Do(context.Background(), "k", func(context.Context) (string, error) {
		return "fresh", nil
	})
	if err != nil || v != "fresh" {
		t.Errorf("Do() after abandon = %q, %v; want fresh", v, err)
	}
}

func TestGroup_Forget(t *testing.T) {
	t.Parallel()
	var g Group[string]
	var calls atomic.Int32
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		return "ok", nil
	}

	if _, _, err := g.Do(context.Background(), "k", fn); err != nil {
		t.Fatal(err)
	}
	g.Forget("k")
	if _, _, err := g.Do(context.Background(), "k", fn); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("fn ran %d times, want 2", got)
	}
}
