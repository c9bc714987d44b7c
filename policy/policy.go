// Package policy builds eviction policies by name, for callers that pick
// one from configuration.
package policy

import (
	"math"
	"strings"

	"emperror.dev/errors"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/policy/lfu"
	"github.com/IvanBrykalov/evictcache/policy/lru"
	"github.com/IvanBrykalov/evictcache/policy/lruk"
)

// ErrUnknownKind is returned for a policy name ParseKind does not know.
const ErrUnknownKind = errors.Sentinel("policy: unknown kind")

// Kind names an eviction policy.
type Kind string

const (
	LRU  Kind = "lru"
	LFU  Kind = "lfu"
	LRUK Kind = "lruk"
	// LRUKOverLFU puts the LRU-K admission gate in front of an LFU primary.
	LRUKOverLFU Kind = "lruk-lfu"
)

// Kinds lists every supported policy.
func Kinds() []Kind { return []Kind{LRU, LFU, LRUK, LRUKOverLFU} }

// ParseKind accepts a policy name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", errors.WithDetails(ErrUnknownKind, "kind", s)
}

// Config carries the policy-specific knobs. Zero values are safe:
//   - Aging zero      => lfu defaults
//   - HistoryCapacity <= 0 => 4 x Options.Capacity (saturating)
//   - K <= 0          => 2
type Config struct {
	Aging           lfu.Aging
	HistoryCapacity int
	K               int
}

// Build returns a new instance of kind configured with opt and cfg.
func Build[K comparable, V any](kind Kind, cfg Config, opt cache.Options[K, V]) (cache.Cache[K, V], error) {
	history := cfg.HistoryCapacity
	if history <= 0 {
		history = opt.Capacity
		if history <= math.MaxInt/4 {
			history *= 4
		}
	}
	k := cfg.K
	if k <= 0 {
		k = 2
	}

	switch kind {
	case LRU:
		return lru.New(opt), nil
	case LFU:
		return lfu.New(opt, cfg.Aging), nil
	case LRUK:
		return lruk.New(opt, history, k), nil
	case LRUKOverLFU:
		// Metrics and OnEvict go to the primary; the wrapper reports promotions.
		return lruk.Wrap[K, V](lfu.New(opt, cfg.Aging), history, k, cache.Options[K, V]{
			Metrics: opt.Metrics,
			Logger:  opt.Logger,
		}), nil
	default:
		return nil, errors.WithDetails(ErrUnknownKind, "kind", string(kind))
	}
}
