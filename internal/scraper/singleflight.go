package scraper

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Group collapses concurrent fetches of the same key into one call.
// The zero value is ready to use.
type Group[T any] struct {
	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context a shared call runs under, alive while any caller waits.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Do runs fn once per in-flight key and hands its result to every caller.
// shared reports whether the result was delivered to more than one caller.
//
// fn runs under a context that keeps the first caller's values and is
// canceled only when every waiting caller has gone. A caller whose ctx ends
// stops waiting; the call keeps going for the others.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (v T, shared bool, err error) {
	if err := ctx.Err(); err != nil {
		return v, false, err
	}

	f := g.join(ctx, key)
	defer g.leave(key, f)

	ch := g.group.DoChan(key, func() (any, error) {
		return fn(f.ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return v, res.Shared, res.Err
		}
		return res.Val.(T), res.Shared, nil
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}

func (g *Group[T]) join(ctx context.Context, key string) *flight {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.flights == nil {
		g.flights = make(map[string]*flight)
	}
	f, ok := g.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		g.flights[key] = f
	}
	f.waiters++
	return f
}

// leave cancels an abandoned call and forgets it, so later callers start
// afresh instead of joining a call that is unwinding.
func (g *Group[T]) leave(key string, f *flight) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if g.flights[key] == f {
		delete(g.flights, key)
	}
	g.group.Forget(key)
}

// Forget drops key so the next Do starts a fresh call.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}
