package cache

// Cache is the contract shared by every eviction policy (LRU, LFU, LRU-K)
// and by the sharded and loading wrappers.
//
// All methods are safe for concurrent use by multiple goroutines. Each
// instance guards its state with a single mutex held for the full duration
// of an operation, so operations on one instance are totally ordered.
// Nothing blocks on I/O; the only waiting is brief lock contention.
type Cache[K comparable, V any] interface {
	// Put inserts or updates k→v and records it as an access according to
	// the policy. It is a no-op when the capacity is not positive.
	Put(k K, v V)

	// Get returns the value for k and a boolean flag indicating presence.
	// On a miss the returned value is the zero V. A hit counts as an access.
	Get(k K) (V, bool)

	// Value is Get without the presence flag: it returns the zero V on a miss.
	// Use Get to tell a stored zero value from a miss.
	Value(k K) V

	// Remove deletes k if present and reports whether it was present.
	Remove(k K) bool

	// Purge drops every entry and resets the policy's internal state.
	Purge()

	// Len returns the number of resident entries.
	Len() int

	// Cap returns the configured entry capacity.
	Cap() int

	// Stats returns a point-in-time copy of the instance counters.
	Stats() Snapshot
}
