package arena

import "emperror.dev/errors"

// List is a doubly linked sequence of arena slots delimited by two sentinel
// slots. The front is the least recent end, the back the most recent one.
type List struct {
	head, tail Handle
	n          int
}

// Len returns the number of data slots linked into l.
func (l *List) Len() int { return l.n }

// NewList allocates the sentinels of an empty list.
func (a *Arena[K, V]) NewList() *List {
	head, tail := a.take(), a.take()
	a.slots[head] = slot[K, V]{prev: None, next: tail, state: stateSentinel}
	a.slots[tail] = slot[K, V]{prev: head, next: None, state: stateSentinel}
	l := &List{head: head, tail: tail}
	a.slots[head].owner = l
	a.slots[tail].owner = l
	return l
}

// PushBack links the detached slot h at the most recent end of l.
func (a *Arena[K, V]) PushBack(l *List, h Handle) {
	s := a.data(h)
	if s.owner != nil {
		panic(errors.WithDetails(ErrLinked, "op", "push", "handle", h))
	}
	last := a.slots[l.tail].prev
	s.prev, s.next, s.owner = last, l.tail, l
	a.slots[last].next = h
	a.slots[l.tail].prev = h
	l.n++
}

// Remove unlinks h from l. h must currently be linked into l.
func (a *Arena[K, V]) Remove(l *List, h Handle) {
	s := a.data(h)
	if s.owner != l {
		panic(errors.WithDetails(ErrNotLinked, "op", "remove", "handle", h))
	}
	a.slots[s.prev].next = s.next
	a.slots[s.next].prev = s.prev
	s.prev, s.next, s.owner = None, None, nil
	l.n--
}

// MoveToBack makes h the most recent slot of l.
func (a *Arena[K, V]) MoveToBack(l *List, h Handle) {
	if a.slots[l.tail].prev == h && a.data(h).owner == l {
		return
	}
	a.Remove(l, h)
	a.PushBack(l, h)
}

// Front returns the least recent slot of l.
func (a *Arena[K, V]) Front(l *List) (Handle, bool) {
	h := a.slots[l.head].next
	if h == l.tail {
		return None, false
	}
	return h, true
}

// Each calls fn for every slot of l from the front, stopping when fn
// returns false. fn must not modify l.
func (a *Arena[K, V]) Each(l *List, fn func(h Handle) bool) {
	for h := a.slots[l.head].next; h != l.tail; h = a.slots[h].next {
		if !fn(h) {
			return
		}
	}
}

// Handles returns the slots of l from the front. Use it instead of Each
// when the caller is about to relink them.
func (a *Arena[K, V]) Handles(l *List) []Handle {
	out := make([]Handle, 0, l.n)
	a.Each(l, func(h Handle) bool {
		out = append(out, h)
		return true
	})
	return out
}

// DropList releases the sentinels of an empty list. l must not be used again.
func (a *Arena[K, V]) DropList(l *List) {
	if l.n != 0 {
		panic(errors.WithDetails(ErrLinked, "op", "drop", "entries", l.n))
	}
	for _, h := range [2]Handle{l.head, l.tail} {
		a.slots[h] = slot[K, V]{prev: None, next: None, state: stateFree}
		a.free = append(a.free, h)
	}
	l.head, l.tail = None, None
}
