package cache

import "github.com/go-logr/logr"

// EvictReason explains why an entry left the cache without an explicit Remove.
type EvictReason int

const (
	// EvictCapacity: removed by the active policy to make room for a Put.
	EvictCapacity EvictReason = iota
	// EvictPurge: dropped by Purge.
	EvictPurge
)

// String returns a stable lower-case name, suitable as a metric label.
func (r EvictReason) String() string {
	switch r {
	case EvictPurge:
		return "purge"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
	// Decay is reported once per LFU aging pass.
	Decay()
	// Promote is reported each time LRU-K admits a key into its primary cache.
	Promote()
}

// Options configures a policy instance. Zero values are safe;
// defaults are applied by the constructors:
//   - nil Metrics  => NoopMetrics
//   - zero Logger  => logr.Discard()
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. A non-positive capacity turns Put
	// into a permanent no-op, so Get and Remove always miss.
	Capacity int

	// OnEvict is called under the instance lock for every capacity eviction
	// and for every entry dropped by Purge; keep callbacks lightweight and
	// never call back into the same cache.
	OnEvict func(k K, v V, reason EvictReason)

	Metrics Metrics
	Logger  logr.Logger
}
