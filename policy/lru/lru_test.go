package lru

import (
	"math/rand"
	"testing"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/internal/arena"
	"github.com/stretchr/testify/require"
)

// checkInvariants verifies |map| == |linked data nodes| == |live arena slots|.
func checkInvariants[K comparable, V any](t *testing.T, c *Cache[K, V]) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	linked := 0
	c.nodes.Each(c.order, func(h arena.Handle) bool {
		linked++
		require.Equal(t, h, c.items[c.nodes.Key(h)], "map must resolve to the linked node")
		return true
	})
	require.Equal(t, len(c.items), linked)
	require.Equal(t, len(c.items), c.order.Len())
	require.Equal(t, len(c.items), c.nodes.Len())
	require.LessOrEqual(t, len(c.items), c.capacity)
}

// Capacity 3; put(1),(2),(3); put(4) => 1 is evicted (first inserted).
func TestLRU_EvictsFirstInserted(t *testing.T) {
	t.Parallel()

	c := New[int, string](cache.Options[int, string]{Capacity: 3})
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	c.Put(4, "d")

	_, ok := c.Get(1)
	require.False(t, ok, "1 must be evicted")
	for _, k := range []int{2, 3, 4} {
		_, ok := c.Get(k)
		require.True(t, ok, "key %d must survive", k)
	}
	require.Equal(t, uint64(1), c.Stats().Evictions)
	checkInvariants(t, c)
}

// Reads after the fill change the victim: get(1) leaves 2 as least recent.
func TestLRU_ReadAfterFillShiftsVictim(t *testing.T) {
	t.Parallel()

	c := New[int, int](cache.Options[int, int]{Capacity: 3})
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(3, 3)
	c.Get(1)
	c.Put(4, 4)

	_, ok := c.Get(2)
	require.False(t, ok, "2 must be evicted")
	for _, k := range []int{1, 3, 4} {
		_, ok := c.Get(k)
		require.True(t, ok)
	}
}

// Capacity 2; put(1),(2); get(1); put(3) => 2 evicted, 1 survives.
func TestLRU_TouchOnRead(t *testing.T) {
	t.Parallel()

	c := New[int, int](cache.Options[int, int]{Capacity: 2})
	c.Put(1, 10)
	c.Put(2, 20)
	v, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, 10, v)
	c.Put(3, 30)

	_, ok = c.Get(2)
	require.False(t, ok, "2 must be evicted")
	require.Equal(t, 10, c.Value(1))
	require.Equal(t, 30, c.Value(3))
	checkInvariants(t, c)
}

func TestLRU_UpdateTouches(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 2})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 11) // update promotes a
	c.Put("c", 3)  // evicts b

	require.Equal(t, []string{"a", "c"}, c.Keys())
	require.Equal(t, 11, c.Value("a"))
	require.Equal(t, 2, c.Len())
}

func TestLRU_ValueReturnsZeroOnMiss(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 2})
	require.Equal(t, 0, c.Value("missing"))

	c.Put("zero", 0)
	v, ok := c.Get("zero")
	require.True(t, ok, "a stored zero value is still a hit")
	require.Equal(t, 0, v)
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 2})
	c.Put("a", 1)

	require.True(t, c.Remove("a"))
	require.False(t, c.Remove("a"), "second remove is a no-op")
	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
	checkInvariants(t, c)
}

func TestLRU_PurgeResetsState(t *testing.T) {
	t.Parallel()

	var purged []string
	c := New[string, int](cache.Options[string, int]{
		Capacity: 3,
		OnEvict: func(k string, _ int, r cache.EvictReason) {
			if r == cache.EvictPurge {
				purged = append(purged, k)
			}
		},
	})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Purge()

	require.ElementsMatch(t, []string{"a", "b"}, purged)
	require.Equal(t, 0, c.Len())
	for _, k := range []string{"a", "b"} {
		_, ok := c.Get(k)
		require.False(t, ok)
	}
	checkInvariants(t, c)

	// Behaves like a fresh cache afterwards.
	c.Put("x", 1)
	c.Put("y", 2)
	c.Put("z", 3)
	c.Put("w", 4)
	require.Equal(t, []string{"y", "z", "w"}, c.Keys())
	require.Equal(t, uint64(1), c.Stats().Evictions, "purged entries are not counted as evictions")
}

func TestLRU_ZeroCapacityIsNoop(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		c := New[string, int](cache.Options[string, int]{Capacity: capacity})
		c.Put("a", 1)
		_, ok := c.Get("a")
		require.False(t, ok)
		require.False(t, c.Remove("a"))
		require.Equal(t, 0, c.Len())
		require.Equal(t, 7, c.Update("a", func(int, bool) int { return 7 }))
		require.Equal(t, 0, c.Len())
	}
}

func TestLRU_UpdateIsReadModifyWrite(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 2})
	inc := func(old int, _ bool) int { return old + 1 }

	require.Equal(t, 1, c.Update("k", inc))
	require.Equal(t, 2, c.Update("k", inc))
	v, ok := c.Peek("k")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestLRU_PeekDoesNotTouch(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 2})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Peek("a")
	c.Put("c", 3)

	_, ok := c.Peek("a")
	require.False(t, ok, "peek must not protect a from eviction")
	require.Equal(t, uint64(0), c.Stats().Hits)
}

func TestLRU_AccessCountTracked(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 2})
	c.Put("a", 1)
	c.Get("a")
	c.Put("a", 2)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Equal(t, 3, c.nodes.Freq(c.items["a"]))
}

// Map/index cardinality invariant after every operation of a random sequence.
func TestLRU_RandomOpsKeepInvariants(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(42))
	c := New[int, int](cache.Options[int, int]{Capacity: 8})
	for i := 0; i < 2_000; i++ {
		k := r.Intn(20)
		switch r.Intn(10) {
		case 0:
			c.Remove(k)
		case 1:
			if r.Intn(20) == 0 {
				c.Purge()
			}
		case 2, 3, 4:
			c.Get(k)
		default:
			c.Put(k, i)
		}
		checkInvariants(t, c)
	}
}
