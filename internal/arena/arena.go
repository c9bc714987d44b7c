// Package arena stores cache nodes in a slice addressed by stable indices
// and threads intrusive doubly linked lists through it.
//
// Links are Handle pairs rather than pointers, so a list never owns its
// nodes and there are no reference cycles to untangle on eviction. Freed
// slots go to a free list and are reused by the next Alloc. Reset drops the
// whole arena at once, which makes a cache purge O(1).
//
// An Arena is not safe for concurrent use; callers guard it with their own
// lock.
package arena

import "emperror.dev/errors"

// Handle addresses a slot in an Arena.
type Handle int32

// None is the handle of no slot.
const None Handle = -1

// Invariant violations. They are programmer errors and are raised as
// panics carrying one of these sentinels plus details.
const (
	ErrLinked    = errors.Sentinel("arena: slot is already linked into a list")
	ErrNotLinked = errors.Sentinel("arena: slot is not linked into this list")
	ErrFreed     = errors.Sentinel("arena: handle does not address a live data slot")
)

type slotState uint8

const (
	stateFree slotState = iota
	stateData
	stateSentinel
)

type slot[K comparable, V any] struct {
	key  K
	val  V
	freq int

	prev, next Handle
	// owner is the list the slot is linked into, nil when detached.
	owner *List
	state slotState
}

// Arena owns every node of one cache instance.
type Arena[K comparable, V any] struct {
	slots []slot[K, V]
	free  []Handle
	live  int
}

// MaxPrealloc caps how many slots a caller may reserve up front. Larger
// caches grow on demand, so a huge capacity costs nothing until it fills.
const MaxPrealloc = 1024

// SizeHint clamps a configured capacity to [0, MaxPrealloc] for use as an
// initial slice or map size.
func SizeHint(capacity int) int {
	return max(0, min(capacity, MaxPrealloc))
}

// New returns an arena with room for SizeHint(capacity) data nodes before
// growing.
func New[K comparable, V any](capacity int) *Arena[K, V] {
	return &Arena[K, V]{slots: make([]slot[K, V], 0, SizeHint(capacity)+2)}
}

// Alloc stores k→v in a detached slot with frequency 1.
func (a *Arena[K, V]) Alloc(k K, v V) Handle {
	h := a.take()
	a.slots[h] = slot[K, V]{key: k, val: v, freq: 1, prev: None, next: None, state: stateData}
	a.live++
	return h
}

// Free releases a detached data slot for reuse.
func (a *Arena[K, V]) Free(h Handle) {
	s := a.data(h)
	if s.owner != nil {
		panic(errors.WithDetails(ErrLinked, "op", "free", "handle", h))
	}
	*s = slot[K, V]{prev: None, next: None, state: stateFree}
	a.free = append(a.free, h)
	a.live--
}

// Reset forgets every slot. Lists created before Reset are invalid afterwards.
func (a *Arena[K, V]) Reset() {
	a.slots = nil
	a.free = nil
	a.live = 0
}

// Len returns the number of live data slots (sentinels excluded).
func (a *Arena[K, V]) Len() int { return a.live }

// Key returns the key stored at h.
func (a *Arena[K, V]) Key(h Handle) K { return a.data(h).key }

// Value returns the value stored at h.
func (a *Arena[K, V]) Value(h Handle) V { return a.data(h).val }

// SetValue replaces the value stored at h.
func (a *Arena[K, V]) SetValue(h Handle, v V) { a.data(h).val = v }

// Freq returns the policy counter stored at h (access count or frequency).
func (a *Arena[K, V]) Freq(h Handle) int { return a.data(h).freq }

// SetFreq replaces the policy counter stored at h.
func (a *Arena[K, V]) SetFreq(h Handle, f int) { a.data(h).freq = f }

// Linked reports whether h is currently linked into some list.
func (a *Arena[K, V]) Linked(h Handle) bool { return a.data(h).owner != nil }

func (a *Arena[K, V]) take() Handle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		return h
	}
	a.slots = append(a.slots, slot[K, V]{})
	return Handle(len(a.slots) - 1)
}

func (a *Arena[K, V]) data(h Handle) *slot[K, V] {
	if h < 0 || int(h) >= len(a.slots) || a.slots[h].state != stateData {
		panic(errors.WithDetails(ErrFreed, "handle", h))
	}
	return &a.slots[h]
}
