package cache

import "github.com/IvanBrykalov/evictcache/internal/util"

// Stats holds per-instance counters. They are updated under the instance
// lock but read without it, hence atomics; each counter sits on its own
// cache line so shards updated from different cores do not false-share.
type Stats struct {
	hits       util.PaddedAtomicUint64
	misses     util.PaddedAtomicUint64
	evictions  util.PaddedAtomicUint64
	decays     util.PaddedAtomicUint64
	promotions util.PaddedAtomicUint64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Decays     uint64
	Promotions uint64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Evictions:  s.evictions.Load(),
		Decays:     s.decays.Load(),
		Promotions: s.promotions.Load(),
	}
}

// HitRate returns hits/(hits+misses), or 0 before the first lookup.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Add returns the field-wise sum of s and o.
func (s Snapshot) Add(o Snapshot) Snapshot {
	return Snapshot{
		Hits:       s.Hits + o.Hits,
		Misses:     s.Misses + o.Misses,
		Evictions:  s.Evictions + o.Evictions,
		Decays:     s.Decays + o.Decays,
		Promotions: s.Promotions + o.Promotions,
	}
}
