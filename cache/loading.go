package cache

import (
	"context"
	"fmt"

	"emperror.dev/errors"

	"github.com/IvanBrykalov/evictcache/internal/singleflight"
)

// ErrNoLoader is returned by GetOrLoad when no LoadFunc was configured.
const ErrNoLoader = errors.Sentinel("cache: no loader provided")

// LoadFunc fetches the value for a missing key, e.g. from a database.
type LoadFunc[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Loading adds read-through loading to any Cache. All Cache methods are
// passed to the wrapped instance unchanged.
type Loading[K comparable, V any] struct {
	Cache[K, V]

	load LoadFunc[K, V]
	sf   singleflight.Group[K, V]
}

// NewLoading wraps c with load. A nil load is accepted; GetOrLoad then
// returns ErrNoLoader on every miss.
func NewLoading[K comparable, V any](c Cache[K, V], load LoadFunc[K, V]) *Loading[K, V] {
	return &Loading[K, V]{Cache: c, load: load}
}

// GetOrLoad returns the value for k; on a miss it calls the loader,
// coalescing concurrent loads of the same key into one call, and stores a
// successful result with Put. Whether the stored value stays resident is up
// to the wrapped policy: an LRU-K cache may decline to admit it yet.
func (l *Loading[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if v, ok := l.Get(k); ok {
		return v, nil
	}
	if l.load == nil {
		var zero V
		return zero, ErrNoLoader
	}

	v, _, err := l.sf.Do(ctx, k, func() (V, error) {
		// A flight that finished between our Get and Do already stored k.
		if v, ok := l.Get(k); ok {
			return v, nil
		}
		v, err := l.load(ctx, k)
		if err != nil {
			return v, errors.WrapWithDetails(err, "cache: load failed", "key", fmt.Sprint(k))
		}
		l.Put(k, v)
		return v, nil
	})
	return v, err
}

// Loads returns the number of keys currently being loaded.
func (l *Loading[K, V]) Loads() int { return l.sf.InFlight() }
