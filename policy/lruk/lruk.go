// Package lruk implements LRU-K admission: a key enters the primary cache
// only after it has been seen K times.
//
// Access counts live in a bounded LRU "history" that stores no values, so
// tracking whether a key is hot costs little and is capped independently of
// the primary capacity. One-off and scan-like accesses therefore churn the
// history instead of evicting hot entries from the primary cache.
//
// A Put below the threshold only counts: its value is not kept anywhere and
// must be supplied again by the Put that reaches K. Get counts too but never
// promotes.
package lruk

import (
	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/policy/lru"
)

// Cache wraps a primary policy with an LRU-K admission gate.
//
// The wrapper holds no lock of its own: history and primary are independent
// instances, each locked for the duration of its own call, and a wrapper
// operation takes them one after the other (history first), never nested.
type Cache[K comparable, V any] struct {
	primary cache.Cache[K, V]
	history *lru.Cache[K, int]
	k       int
	obs     *cache.Observer[K, V]
}

var _ cache.Cache[string, int] = (*Cache[string, int])(nil)

// New builds an LRU-K cache over an LRU primary of opt.Capacity entries,
// with a history of historyCapacity keys and promotion threshold k.
func New[K comparable, V any](opt cache.Options[K, V], historyCapacity, k int) *Cache[K, V] {
	return Wrap[K, V](lru.New(opt), historyCapacity, k, opt)
}

// Wrap puts an LRU-K admission gate in front of any primary policy.
// opt supplies the metrics and logger for promotions; its Capacity is
// ignored in favour of primary.Cap(). k < 1 is treated as 1.
func Wrap[K comparable, V any](primary cache.Cache[K, V], historyCapacity, k int, opt cache.Options[K, V]) *Cache[K, V] {
	if k < 1 {
		k = 1
	}
	// The primary reports its own capacity; the gate has none to warn about.
	opt.Capacity = primary.Cap()
	obs := cache.NewObserver(opt, "lruk")

	return &Cache[K, V]{
		primary: primary,
		history: lru.New(cache.Options[K, int]{
			Capacity: historyCapacity,
			Logger:   obs.Logger().WithName("history"),
		}),
		k:   k,
		obs: obs,
	}
}

// Put counts an access of k and, once the count reaches K, drops k from the
// history and stores k→v in the primary cache.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.count(k) < c.k {
		return
	}
	c.history.Remove(k)
	c.obs.Promote()
	c.obs.Logger().V(1).Info("promoted", "key", k, "threshold", c.k)
	c.primary.Put(k, v)
}

// Get counts an access of k, then looks it up in the primary cache.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.count(k)
	return c.primary.Get(k)
}

// Value returns the value for k, or the zero V on a miss.
func (c *Cache[K, V]) Value(k K) V {
	v, _ := c.Get(k)
	return v
}

// Remove deletes k from the history and from the primary cache.
func (c *Cache[K, V]) Remove(k K) bool {
	c.history.Remove(k)
	return c.primary.Remove(k)
}

// Purge clears the history and the primary cache.
func (c *Cache[K, V]) Purge() {
	c.history.Purge()
	c.primary.Purge()
}

// Len returns the number of entries in the primary cache.
func (c *Cache[K, V]) Len() int { return c.primary.Len() }

// Cap returns the primary capacity.
func (c *Cache[K, V]) Cap() int { return c.primary.Cap() }

// K returns the promotion threshold.
func (c *Cache[K, V]) K() int { return c.k }

// Count returns the access count recorded in the history for k, without
// counting an access.
func (c *Cache[K, V]) Count(k K) (int, bool) { return c.history.Peek(k) }

// HistoryLen returns the number of keys tracked in the history.
func (c *Cache[K, V]) HistoryLen() int { return c.history.Len() }

// Stats returns the primary counters plus the promotion count.
func (c *Cache[K, V]) Stats() cache.Snapshot {
	s := c.primary.Stats()
	s.Promotions += c.obs.Snapshot().Promotions
	return s
}

// count bumps k's history counter and returns the new value. With no
// history capacity nothing is recorded and every call returns 1.
func (c *Cache[K, V]) count(k K) int {
	return c.history.Update(k, func(n int, _ bool) int { return n + 1 })
}
