// Package singleflight coalesces concurrent loads of the same cache key.
package singleflight

import (
	"context"
	"fmt"
	"sync"

	"emperror.dev/errors"
)

// ErrLeaderPanicked is returned to waiters whose leader panicked inside fn.
const ErrLeaderPanicked = errors.Sentinel("singleflight: leader panicked")

// Group runs at most one fn per key at a time; callers arriving while a
// call is in flight wait for its result instead of starting their own.
//
// A waiter whose ctx ends stops waiting and returns ctx.Err(); the leader's
// fn keeps running. Thread ctx into fn if the work itself must stop.
type Group[K comparable, V any] struct {
	mu    sync.Mutex
	calls map[K]*call[V]
}

type call[V any] struct {
	done  chan struct{} // closed after val/err are written
	val   V
	err   error
	waits int
}

// Do returns fn's result for key. shared is true when the result came from
// a call started by another goroutine.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[K]*call[V])
	}
	if c, ok := g.calls[key]; ok {
		c.waits++
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, true, ctx.Err()
		}
	}
	c := &call[V]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)
	return c.val, false, c.err
}

// InFlight returns the number of keys currently being loaded.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// Waiting returns how many callers are blocked on the in-flight call for
// key, not counting the one running fn.
func (g *Group[K, V]) Waiting(key K) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.calls[key]; ok {
		return c.waits
	}
	return 0
}

func (g *Group[K, V]) run(key K, c *call[V], fn func() (V, error)) {
	finished := false
	defer func() {
		if !finished {
			// fn panicked: release the waiters, then let the panic continue.
			c.err = errors.WithDetails(ErrLeaderPanicked, "key", fmt.Sprint(key))
		}
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
		close(c.done)
	}()
	c.val, c.err = fn()
	finished = true
}
