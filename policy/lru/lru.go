// Package lru implements the Least-Recently-Used eviction policy.
package lru

import (
	"sync"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/internal/arena"
)

// Cache is a "move-to-back" LRU cache. The order list runs from the least
// recently used entry (front) to the most recently used one (back); reads
// and writes both count as use.
type Cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	items map[K]arena.Handle
	nodes *arena.Arena[K, V]
	order *arena.List

	capacity int
	obs      *cache.Observer[K, V]
}

var _ cache.Cache[string, int] = (*Cache[string, int])(nil)

// New returns an empty LRU cache holding at most opt.Capacity entries.
func New[K comparable, V any](opt cache.Options[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		capacity: opt.Capacity,
		obs:      cache.NewObserver(opt, "lru"),
	}
	c.obs.WarnIfDisabled(c.capacity)
	c.resetLocked()
	return c
}

// Put inserts or updates k→v and marks it most recently used.
// At capacity, the least recently used entry is evicted first.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(k, v)
}

// Update stores fn(old, ok) under k in one critical section and returns
// the stored value. ok reports whether k was resident. On a cache with no
// capacity nothing is stored and fn(zero, false) is returned.
func (c *Cache[K, V]) Update(k K, fn func(old V, ok bool) V) V {
	if c.capacity <= 0 {
		var zero V
		return fn(zero, false)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var old V
	h, ok := c.items[k]
	if ok {
		old = c.nodes.Value(h)
	}
	v := fn(old, ok)
	c.putLocked(k, v)
	return v
}

// Get returns the value for k and promotes it to most recently used.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.items[k]
	if !ok {
		c.obs.Miss()
		var zero V
		return zero, false
	}
	c.touchLocked(h)
	c.obs.Hit()
	return c.nodes.Value(h), true
}

// Value returns the value for k, or the zero V on a miss.
func (c *Cache[K, V]) Value(k K) V {
	v, _ := c.Get(k)
	return v
}

// Peek returns the value for k without changing its recency or the stats.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.items[k]; ok {
		return c.nodes.Value(h), true
	}
	var zero V
	return zero, false
}

// Remove deletes k if present.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.items[k]
	if !ok {
		return false
	}
	c.unlinkLocked(k, h)
	c.obs.Size(len(c.items))
	return true
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.obs.WantsPurged() {
		c.nodes.Each(c.order, func(h arena.Handle) bool {
			c.obs.Evict(c.nodes.Key(h), c.nodes.Value(h), cache.EvictPurge)
			return true
		})
	}
	c.resetLocked()
	c.obs.Size(0)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Stats returns the instance counters.
func (c *Cache[K, V]) Stats() cache.Snapshot { return c.obs.Snapshot() }

// Keys returns the resident keys from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]K, 0, len(c.items))
	c.nodes.Each(c.order, func(h arena.Handle) bool {
		out = append(out, c.nodes.Key(h))
		return true
	})
	return out
}

// -------------------- internals (mu held) --------------------

func (c *Cache[K, V]) putLocked(k K, v V) {
	if h, ok := c.items[k]; ok {
		c.nodes.SetValue(h, v)
		c.touchLocked(h)
		return
	}
	if len(c.items) >= c.capacity {
		c.evictLocked()
	}
	h := c.nodes.Alloc(k, v)
	c.nodes.PushBack(c.order, h)
	c.items[k] = h
	c.obs.Size(len(c.items))
}

// touchLocked counts an access and moves h to the most recent end.
func (c *Cache[K, V]) touchLocked(h arena.Handle) {
	c.nodes.SetFreq(h, c.nodes.Freq(h)+1)
	c.nodes.MoveToBack(c.order, h)
}

func (c *Cache[K, V]) evictLocked() {
	h, ok := c.nodes.Front(c.order)
	if !ok {
		return
	}
	k, v := c.nodes.Key(h), c.nodes.Value(h)
	c.unlinkLocked(k, h)
	c.obs.Evict(k, v, cache.EvictCapacity)
}

func (c *Cache[K, V]) unlinkLocked(k K, h arena.Handle) {
	c.nodes.Remove(c.order, h)
	c.nodes.Free(h)
	delete(c.items, k)
}

func (c *Cache[K, V]) resetLocked() {
	size := arena.SizeHint(c.capacity)
	if c.nodes == nil {
		c.nodes = arena.New[K, V](c.capacity)
	} else {
		c.nodes.Reset()
	}
	c.order = c.nodes.NewList()
	c.items = make(map[K]arena.Handle, size)
}
