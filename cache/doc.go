// Package cache defines the contract shared by the evictcache policies and
// the pieces every policy is built from: Options, Metrics hooks, Stats
// counters and the Observer that fans events out to them. It also provides
// two wrappers that work over any policy, Sharded and Loading.
//
// Design
//
//   - Policies: LRU (package policy/lru), LFU with frequency aging
//     (policy/lfu) and LRU-K admission (policy/lruk). Every policy
//     implements Cache[K, V], so callers and wrappers never depend on a
//     concrete policy.
//
//   - Concurrency: each policy instance is guarded by one mutex held for the
//     whole operation. Sharded splits the key space over N independent
//     instances to cut contention; eviction order then holds per shard.
//
//   - Storage: policies keep their entries in an index-addressed arena
//     (internal/arena) with a free list, so eviction and Purge do not
//     allocate and Purge is O(1) apart from reporting.
//
//   - Capacity: an entry count. A non-positive capacity turns the instance
//     into a no-op (logged once); nothing is ever stored.
//
//   - GetOrLoad: Loading coalesces concurrent loads for the same key using
//     singleflight. Without a LoadFunc, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size/Decay/Promote
//     signals. NoopMetrics is the default; metrics/prom exports them to
//     Prometheus.
//
//   - Callbacks: Options.OnEvict(k, v, reason) is called for every capacity
//     eviction and every entry dropped by Purge.
//
// Basic usage
//
//	c := lru.New[string, []byte](cache.Options[string, []byte]{Capacity: 10_000})
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// LFU with aging
//
//	c := lfu.New[string, int](cache.Options[string, int]{Capacity: 1024},
//	    lfu.Aging{MaxAverageFreq: 10, Decay: lfu.Halve})
//
// LRU-K in front of LFU
//
//	primary := lfu.New[string, int](cache.Options[string, int]{Capacity: 1024}, lfu.Aging{})
//	c := lruk.Wrap[string, int](primary, 4096 /* history */, 2 /* K */, cache.Options[string, int]{})
//
// Sharded with read-through loading
//
//	c := cache.NewLoading[string, string](
//	    cache.NewSharded(0, 50_000, func(n int) cache.Cache[string, string] {
//	        return lru.New(cache.Options[string, string]{Capacity: n})
//	    }),
//	    func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil // e.g. fetch from DB
//	    })
//	v, err := c.GetOrLoad(ctx, "key")
//
// Exporting metrics
//
//	m := prom.New(nil, "evictcache", "demo", nil) // implements Metrics
//	c := lru.New[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    Metrics:  m,
//	})
package cache
