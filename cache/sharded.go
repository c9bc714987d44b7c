package cache

import (
	"math"

	"github.com/IvanBrykalov/evictcache/internal/util"
)

// Sharded splits a key space over independent policy instances to reduce
// lock contention. Each key always maps to the same shard; eviction order
// holds per shard only, not across the whole cache.
type Sharded[K comparable, V any] struct {
	shards []Cache[K, V]
	hash   func(K) uint64
}

var _ Cache[string, int] = (*Sharded[string, int])(nil)

// NewSharded builds a sharded cache holding roughly capacity entries.
//
// Defaults:
//   - shards <= 0 -> util.ReasonableShardCount()
//   - shards is rounded up to a power of two, then halved while it exceeds
//     a positive capacity so that no shard is left with zero room
//
// newShard is called once per shard with ceil(capacity/shards). A
// non-positive capacity is passed through unchanged, so every shard
// degrades the way its policy does.
//
// Keys are routed with util.Hash64; key types it does not support panic
// on first use.
func NewSharded[K comparable, V any](shards, capacity int, newShard func(capacity int) Cache[K, V]) *Sharded[K, V] {
	n := shards
	if n <= 0 {
		n = util.ReasonableShardCount()
	}
	n = int(util.NextPow2(uint64(n)))
	for n > 1 && capacity > 0 && n > capacity {
		n /= 2
	}

	per := capacity
	if capacity > 0 {
		per = capacity / n
		if capacity%n != 0 {
			per++
		}
	}
	s := &Sharded[K, V]{
		shards: make([]Cache[K, V], n),
		hash:   util.Hash64[K],
	}
	for i := range s.shards {
		s.shards[i] = newShard(per)
	}
	return s
}

func (s *Sharded[K, V]) Put(k K, v V) { s.shard(k).Put(k, v) }

func (s *Sharded[K, V]) Get(k K) (V, bool) { return s.shard(k).Get(k) }

func (s *Sharded[K, V]) Value(k K) V { return s.shard(k).Value(k) }

func (s *Sharded[K, V]) Remove(k K) bool { return s.shard(k).Remove(k) }

// Purge purges every shard in turn. It is not atomic across shards.
func (s *Sharded[K, V]) Purge() {
	for _, sh := range s.shards {
		sh.Purge()
	}
}

// Len returns the total number of resident entries across all shards.
func (s *Sharded[K, V]) Len() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.Len()
	}
	return total
}

// Cap returns the sum of shard capacities, which may round capacity up.
// The sum saturates at math.MaxInt.
func (s *Sharded[K, V]) Cap() int {
	total := 0
	for _, sh := range s.shards {
		c := sh.Cap()
		if c > 0 && total > math.MaxInt-c {
			return math.MaxInt
		}
		total += c
	}
	return total
}

// Stats sums the counters of all shards.
func (s *Sharded[K, V]) Stats() Snapshot {
	var out Snapshot
	for _, sh := range s.shards {
		out = out.Add(sh.Stats())
	}
	return out
}

// Shards returns the number of shards.
func (s *Sharded[K, V]) Shards() int { return len(s.shards) }

// ShardOf returns the index of the shard that owns k.
func (s *Sharded[K, V]) ShardOf(k K) int {
	return util.ShardIndex(s.hash(k), len(s.shards))
}

func (s *Sharded[K, V]) shard(k K) Cache[K, V] {
	return s.shards[s.ShardOf(k)]
}
