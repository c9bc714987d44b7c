package lfu

import (
	"math/rand"
	"testing"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/internal/arena"
	"github.com/stretchr/testify/require"
)

// checkInvariants verifies the bucket table: every node's freq equals its
// bucket key, |map| == |linked nodes|, totalFreq is the sum of frequencies
// and minFreq names the lowest non-empty bucket.
func checkInvariants[K comparable, V any](t *testing.T, c *Cache[K, V]) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	linked, sum, lowest := 0, 0, 0
	for f, b := range c.buckets {
		c.nodes.Each(b, func(h arena.Handle) bool {
			linked++
			sum += c.nodes.Freq(h)
			require.Equal(t, f, c.nodes.Freq(h), "node frequency must match its bucket")
			require.Equal(t, h, c.items[c.nodes.Key(h)])
			return true
		})
		if b.Len() > 0 && (lowest == 0 || f < lowest) {
			lowest = f
		}
	}
	require.Equal(t, len(c.items), linked)
	require.Equal(t, len(c.items), c.nodes.Len())
	require.Equal(t, sum, c.total)
	require.Equal(t, lowest, c.minFreq)
	require.LessOrEqual(t, len(c.items), c.capacity)
}

func newLFU(capacity int) *Cache[int, string] {
	return New[int, string](cache.Options[int, string]{Capacity: capacity}, Aging{})
}

// Capacity 3; get(2) twice, get(3) once; put(4) evicts 1 (minFreq).
func TestLFU_EvictsLowestFrequency(t *testing.T) {
	t.Parallel()

	c := newLFU(3)
	c.Put(1, "one")
	c.Put(2, "two")
	c.Put(3, "three")
	c.Get(2)
	c.Get(2)
	c.Get(3)

	f, _ := c.Freq(2)
	require.Equal(t, 3, f)
	f, _ = c.Freq(3)
	require.Equal(t, 2, f)

	c.Put(4, "four")

	_, ok := c.Get(1)
	require.False(t, ok, "1 must be evicted")
	for _, k := range []int{2, 3, 4} {
		_, ok := c.Get(k)
		require.True(t, ok, "key %d must survive", k)
	}
	checkInvariants(t, c)
}

// Two keys share the minimum frequency: the earlier one in that bucket goes first.
func TestLFU_TieBreakWithinBucket(t *testing.T) {
	t.Parallel()

	c := newLFU(3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	c.Get(1) // 1 -> freq 2; bucket 1 is now [2, 3]
	c.Put(4, "d")

	_, ok := c.Get(2)
	require.False(t, ok, "2 entered bucket 1 before 3 and must be evicted")
	require.Equal(t, "c", c.Value(3))

	// Same rule at a raised frequency: 20 reached freq 2 after 10 did.
	c2 := newLFU(2)
	c2.Put(10, "x")
	c2.Put(20, "y")
	c2.Get(10)
	c2.Get(20)
	c2.Put(30, "z") // minFreq is 2 and 10 is the oldest there
	_, ok = c2.Freq(10)
	require.False(t, ok)
	_, ok = c2.Freq(20)
	require.True(t, ok)
	checkInvariants(t, c2)
}

func TestLFU_PutExistingCountsAsAccess(t *testing.T) {
	t.Parallel()

	c := newLFU(2)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(1, "a2")

	f, ok := c.Freq(1)
	require.True(t, ok)
	require.Equal(t, 2, f)
	require.Equal(t, "a2", c.Value(1))

	c.Put(3, "c")
	_, ok = c.Freq(2)
	require.False(t, ok, "2 stayed at freq 1 and must be evicted")
	checkInvariants(t, c)
}

func TestLFU_RemoveRecomputesMinFreq(t *testing.T) {
	t.Parallel()

	c := newLFU(3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Get(2)
	c.Get(2)

	require.True(t, c.Remove(1))
	checkInvariants(t, c)
	c.mu.Lock()
	require.Equal(t, 3, c.minFreq)
	c.mu.Unlock()

	require.False(t, c.Remove(1))
	require.True(t, c.Remove(2))
	checkInvariants(t, c)
	require.Equal(t, 0, c.Len())
}

func TestLFU_DecayLowersFrequencies(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 4}, Aging{MaxAverageFreq: 2})
	c.Put("a", 1)
	c.Get("a") // freq 2, avg 2
	require.Equal(t, uint64(0), c.Stats().Decays)

	c.Get("a") // freq 3, avg 3 > 2 -> decay by 1
	f, _ := c.Freq("a")
	require.Equal(t, 2, f)
	require.Equal(t, uint64(1), c.Stats().Decays)
	checkInvariants(t, c)
}

// A formerly hot key cools down and becomes evictable after decay.
func TestLFU_DecayLetsHotKeysCool(t *testing.T) {
	t.Parallel()

	c := New[string, int](cache.Options[string, int]{Capacity: 2}, Aging{MaxAverageFreq: 3, Decay: Halve})
	c.Put("hot", 1)
	for i := 0; i < 20; i++ {
		c.Get("hot")
	}
	hot, _ := c.Freq("hot")
	require.LessOrEqual(t, hot, 4, "decay must keep the average bounded")

	c.Put("new", 2)
	for i := 0; i < 10; i++ {
		c.Get("new")
	}
	c.Put("third", 3)
	checkInvariants(t, c)
	require.Greater(t, c.Stats().Decays, uint64(1))
	require.Equal(t, 2, c.Len())
}

func TestLFU_DecayPreservesOrderAndFloorsAtOne(t *testing.T) {
	t.Parallel()

	c := New[int, int](cache.Options[int, int]{Capacity: 3}, Aging{
		MaxAverageFreq: 100,
		Decay:          func(int) int { return -5 },
	})
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(3, 3)
	c.Get(3)
	c.Get(2)

	c.mu.Lock()
	c.decayLocked()
	c.mu.Unlock()
	checkInvariants(t, c)

	for _, k := range []int{1, 2, 3} {
		f, _ := c.Freq(k)
		require.Equal(t, 1, f)
	}
	// Bucket 1 keeps 1 first, then nodes moved down in ascending source order.
	c.Put(4, 4)
	_, ok := c.Freq(1)
	require.False(t, ok, "1 was oldest in bucket 1")
	c.Put(5, 5)
	_, ok = c.Freq(3)
	require.False(t, ok, "3 entered bucket 2 before 2 did")
}

func TestLFU_PurgeResetsState(t *testing.T) {
	t.Parallel()

	c := newLFU(3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Get(1)
	c.Purge()

	require.Equal(t, 0, c.Len())
	for _, k := range []int{1, 2} {
		_, ok := c.Get(k)
		require.False(t, ok)
	}
	checkInvariants(t, c)

	c.Put(7, "x")
	f, ok := c.Freq(7)
	require.True(t, ok)
	require.Equal(t, 1, f, "post-purge inserts start fresh")
	checkInvariants(t, c)
}

func TestLFU_ZeroCapacityIsNoop(t *testing.T) {
	t.Parallel()

	c := newLFU(0)
	c.Put(1, "a")
	_, ok := c.Get(1)
	require.False(t, ok)
	require.Equal(t, "", c.Value(1))
	require.False(t, c.Remove(1))
	require.Equal(t, 0, c.Len())
}

func TestLFU_RandomOpsKeepInvariants(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	c := New[int, int](cache.Options[int, int]{Capacity: 6}, Aging{MaxAverageFreq: 4})
	for i := 0; i < 3_000; i++ {
		k := r.Intn(15)
		switch r.Intn(10) {
		case 0:
			c.Remove(k)
		case 1:
			if r.Intn(30) == 0 {
				c.Purge()
			}
		case 2, 3, 4, 5:
			c.Get(k)
		default:
			c.Put(k, i)
		}
		checkInvariants(t, c)
	}
	require.Greater(t, c.Stats().Decays, uint64(0))
}
