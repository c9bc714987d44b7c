package cache

import "github.com/go-logr/logr"

// Observer fans policy events out to Metrics, the OnEvict callback, the
// logger and the instance Stats. Policies create one per instance with
// NewObserver and call it while holding their own lock.
type Observer[K comparable, V any] struct {
	metrics Metrics
	onEvict func(K, V, EvictReason)
	log     logr.Logger
	stats   Stats
}

// NewObserver applies Options defaults and returns an observer whose
// logger is named after the owning policy. opt.Capacity is not inspected;
// policies that own storage call WarnIfDisabled.
func NewObserver[K comparable, V any](opt Options[K, V], name string) *Observer[K, V] {
	o := &Observer[K, V]{
		metrics: opt.Metrics,
		onEvict: opt.OnEvict,
		log:     opt.Logger,
	}
	if o.metrics == nil {
		o.metrics = NoopMetrics{}
	}
	if o.log.GetSink() == nil {
		o.log = logr.Discard()
	}
	o.log = o.log.WithName(name)
	return o
}

// WarnIfDisabled logs once that a non-positive capacity turns the policy
// into a no-op. Wrappers without storage of their own skip it.
func (o *Observer[K, V]) WarnIfDisabled(capacity int) {
	if capacity <= 0 {
		o.log.Info("non-positive capacity, cache will store nothing", "capacity", capacity)
	}
}

func (o *Observer[K, V]) Hit() {
	o.stats.hits.Add(1)
	o.metrics.Hit()
}

func (o *Observer[K, V]) Miss() {
	o.stats.misses.Add(1)
	o.metrics.Miss()
}

// Evict reports an entry leaving the cache. Only capacity evictions are
// counted in Stats; purged entries reach Metrics and OnEvict only.
func (o *Observer[K, V]) Evict(k K, v V, reason EvictReason) {
	if reason == EvictCapacity {
		o.stats.evictions.Add(1)
	}
	o.metrics.Evict(reason)
	if o.onEvict != nil {
		o.onEvict(k, v, reason)
	}
}

// WantsPurged reports whether Purge has to walk its entries to report them.
func (o *Observer[K, V]) WantsPurged() bool {
	if o.onEvict != nil {
		return true
	}
	_, noop := o.metrics.(NoopMetrics)
	return !noop
}

func (o *Observer[K, V]) Size(entries int) { o.metrics.Size(entries) }

func (o *Observer[K, V]) Decay() {
	o.stats.decays.Add(1)
	o.metrics.Decay()
}

func (o *Observer[K, V]) Promote() {
	o.stats.promotions.Add(1)
	o.metrics.Promote()
}

// Logger returns the policy-scoped logger.
func (o *Observer[K, V]) Logger() logr.Logger { return o.log }

// Snapshot returns the instance counters.
func (o *Observer[K, V]) Snapshot() Snapshot { return o.stats.Snapshot() }
