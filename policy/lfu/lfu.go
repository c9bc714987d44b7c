// Package lfu implements the Least-Frequently-Used eviction policy with
// frequency aging.
//
// Entries live in frequency buckets: one list per access frequency, ordered
// by the time each entry entered the bucket. Eviction takes the oldest entry
// of the lowest non-empty bucket, so ties between equally frequent entries
// are broken in LRU order.
//
// Counters only grow on access, so a once-hot entry could stay resident
// forever. To let such entries cool down, the cache tracks the average
// frequency of resident entries and, when it rises above
// Aging.MaxAverageFreq, runs a decay pass that lowers every frequency with
// Aging.Decay and rebuilds the buckets.
package lfu

import (
	"slices"
	"sync"

	"emperror.dev/errors"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/internal/arena"
)

// DefaultMaxAverageFreq is the decay trigger used when Aging leaves it unset.
const DefaultMaxAverageFreq = 10

// ErrEmptyMinBucket is raised (as a panic) when the tracked minimum
// frequency points at an empty bucket while entries are resident.
const ErrEmptyMinBucket = errors.Sentinel("lfu: minimum frequency bucket is empty")

// Aging configures frequency decay.
type Aging struct {
	// MaxAverageFreq triggers a decay pass when the average frequency of
	// resident entries exceeds it. <= 0 => DefaultMaxAverageFreq.
	MaxAverageFreq int

	// Decay maps an entry's frequency to its decayed value. Results are
	// clamped to [1, freq]. nil => SubtractBy(MaxAverageFreq/2).
	Decay func(freq int) int
}

// SubtractBy returns a decay that lowers every frequency by n (n >= 1).
func SubtractBy(n int) func(int) int {
	if n < 1 {
		n = 1
	}
	return func(f int) int { return f - n }
}

// Halve is a decay that divides every frequency by two.
func Halve(f int) int { return f / 2 }

// Cache is an LFU cache. All methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu      sync.Mutex
	items   map[K]arena.Handle
	nodes   *arena.Arena[K, V]
	buckets map[int]*arena.List // created on first use, pruned by decay
	minFreq int                 // 0 when empty
	total   int                 // sum of resident frequencies

	capacity int
	maxAvg   int
	decay    func(int) int
	obs      *cache.Observer[K, V]
}

var _ cache.Cache[string, int] = (*Cache[string, int])(nil)

// New returns an empty LFU cache holding at most opt.Capacity entries.
func New[K comparable, V any](opt cache.Options[K, V], aging Aging) *Cache[K, V] {
	if aging.MaxAverageFreq <= 0 {
		aging.MaxAverageFreq = DefaultMaxAverageFreq
	}
	if aging.Decay == nil {
		aging.Decay = SubtractBy(aging.MaxAverageFreq / 2)
	}
	c := &Cache[K, V]{
		capacity: opt.Capacity,
		maxAvg:   aging.MaxAverageFreq,
		decay:    aging.Decay,
		obs:      cache.NewObserver(opt, "lfu"),
	}
	c.obs.WarnIfDisabled(c.capacity)
	c.resetLocked()
	return c
}

// Put inserts k→v at frequency 1, or updates the value of a resident key
// and counts the update as an access. At capacity, the oldest entry of the
// lowest frequency is evicted first.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.items[k]; ok {
		c.nodes.SetValue(h, v)
		c.accessLocked(h)
		return
	}
	if len(c.items) >= c.capacity {
		c.evictLocked()
	}
	h := c.nodes.Alloc(k, v)
	c.nodes.PushBack(c.bucketLocked(1), h)
	c.items[k] = h
	c.minFreq = 1
	c.total++
	c.obs.Size(len(c.items))
}

// Get returns the value for k and bumps its frequency.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.items[k]
	if !ok {
		c.obs.Miss()
		var zero V
		return zero, false
	}
	c.obs.Hit()
	v := c.nodes.Value(h)
	c.accessLocked(h)
	return v, true
}

// Value returns the value for k, or the zero V on a miss.
func (c *Cache[K, V]) Value(k K) V {
	v, _ := c.Get(k)
	return v
}

// Freq returns the current frequency of k without counting an access.
func (c *Cache[K, V]) Freq(k K) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.items[k]; ok {
		return c.nodes.Freq(h), true
	}
	return 0, false
}

// Remove deletes k if present.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.items[k]
	if !ok {
		return false
	}
	f := c.nodes.Freq(h)
	c.unlinkLocked(k, h)
	if f == c.minFreq && c.buckets[f].Len() == 0 {
		c.minFreq = c.lowestFreqLocked()
	}
	c.obs.Size(len(c.items))
	return true
}

// Purge drops every entry and all frequency buckets.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.obs.WantsPurged() {
		for _, f := range c.freqsLocked() {
			c.nodes.Each(c.buckets[f], func(h arena.Handle) bool {
				c.obs.Evict(c.nodes.Key(h), c.nodes.Value(h), cache.EvictPurge)
				return true
			})
		}
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

// -------------------- internals (mu held) --------------------

// accessLocked moves h from bucket f to bucket f+1 and runs the aging check.
func (c *Cache[K, V]) accessLocked(h arena.Handle) {
	f := c.nodes.Freq(h)
	from := c.buckets[f]
	c.nodes.Remove(from, h)
	if f == c.minFreq && from.Len() == 0 {
		c.minFreq++
	}
	c.nodes.SetFreq(h, f+1)
	c.nodes.PushBack(c.bucketLocked(f+1), h)
	c.total++

	if c.averageLocked() > c.maxAvg {
		c.decayLocked()
	}
}

func (c *Cache[K, V]) evictLocked() {
	if len(c.items) == 0 {
		return
	}
	b, ok := c.buckets[c.minFreq]
	if !ok {
		panic(errors.WithDetails(ErrEmptyMinBucket, "minFreq", c.minFreq, "entries", len(c.items)))
	}
	h, ok := c.nodes.Front(b)
	if !ok {
		panic(errors.WithDetails(ErrEmptyMinBucket, "minFreq", c.minFreq, "entries", len(c.items)))
	}
	k, v := c.nodes.Key(h), c.nodes.Value(h)
	c.unlinkLocked(k, h)
	c.obs.Evict(k, v, cache.EvictCapacity)
}

// unlinkLocked removes h from its bucket, the map and the arena.
func (c *Cache[K, V]) unlinkLocked(k K, h arena.Handle) {
	f := c.nodes.Freq(h)
	c.nodes.Remove(c.buckets[f], h)
	c.nodes.Free(h)
	delete(c.items, k)
	c.total -= f
}

func (c *Cache[K, V]) averageLocked() int {
	if len(c.items) == 0 {
		return 0
	}
	return c.total / len(c.items)
}

// decayLocked lowers every resident frequency and rebuilds the buckets.
// Buckets are processed in ascending order and entries keep their relative
// order, so an entry never overtakes one that was older at a lower
// frequency.
func (c *Cache[K, V]) decayLocked() {
	before := c.averageLocked()
	for _, f := range c.freqsLocked() {
		if f == 1 {
			continue
		}
		nf := c.decay(f)
		if nf < 1 {
			nf = 1
		}
		if nf >= f {
			continue
		}
		from, to := c.buckets[f], c.bucketLocked(nf)
		for _, h := range c.nodes.Handles(from) {
			c.nodes.Remove(from, h)
			c.nodes.SetFreq(h, nf)
			c.nodes.PushBack(to, h)
		}
	}

	for f, b := range c.buckets {
		if b.Len() == 0 {
			c.nodes.DropList(b)
			delete(c.buckets, f)
		}
	}

	c.total = 0
	for _, h := range c.items {
		c.total += c.nodes.Freq(h)
	}
	c.minFreq = c.lowestFreqLocked()

	c.obs.Decay()
	c.obs.Logger().V(1).Info("frequency decay",
		"entries", len(c.items), "avgBefore", before, "avgAfter", c.averageLocked(), "minFreq", c.minFreq)
}

// freqsLocked returns the frequencies of non-empty buckets in ascending order.
func (c *Cache[K, V]) freqsLocked() []int {
	out := make([]int, 0, len(c.buckets))
	for f, b := range c.buckets {
		if b.Len() > 0 {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}

// lowestFreqLocked scans the buckets for the smallest non-empty frequency.
func (c *Cache[K, V]) lowestFreqLocked() int {
	lowest := 0
	for f, b := range c.buckets {
		if b.Len() > 0 && (lowest == 0 || f < lowest) {
			lowest = f
		}
	}
	return lowest
}

func (c *Cache[K, V]) bucketLocked(f int) *arena.List {
	b, ok := c.buckets[f]
	if !ok {
		b = c.nodes.NewList()
		c.buckets[f] = b
	}
	return b
}

func (c *Cache[K, V]) resetLocked() {
	size := arena.SizeHint(c.capacity)
	if c.nodes == nil {
		c.nodes = arena.New[K, V](c.capacity)
	} else {
		c.nodes.Reset()
	}
	c.items = make(map[K]arena.Handle, size)
	c.buckets = make(map[int]*arena.List)
	c.minFreq = 0
	c.total = 0
}
