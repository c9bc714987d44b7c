package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/policy/lfu"
	"github.com/IvanBrykalov/evictcache/policy/lru"
	"github.com/IvanBrykalov/evictcache/policy/lruk"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"lru", LRU, true},
		{" LFU ", LFU, true},
		{"LruK", LRUK, true},
		{"lruk-lfu", LRUKOverLFU, true},
		{"2q", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if !tc.ok {
			require.ErrorIs(t, err, ErrUnknownKind, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	opt := cache.Options[string, int]{Capacity: 8}

	c, err := Build(LRU, Config{}, opt)
	require.NoError(t, err)
	require.IsType(t, &lru.Cache[string, int]{}, c)

	c, err = Build(LFU, Config{Aging: lfu.Aging{MaxAverageFreq: 3}}, opt)
	require.NoError(t, err)
	require.IsType(t, &lfu.Cache[string, int]{}, c)

	c, err = Build(LRUK, Config{}, opt)
	require.NoError(t, err)
	w, ok := c.(*lruk.Cache[string, int])
	require.True(t, ok)
	require.Equal(t, 2, w.K(), "K defaults to 2")

	c, err = Build(LRUKOverLFU, Config{K: 3, HistoryCapacity: 16}, opt)
	require.NoError(t, err)
	require.Equal(t, 8, c.Cap())
	for i := 0; i < 3; i++ {
		c.Put("a", i)
	}
	require.Equal(t, 2, c.Value("a"))
	require.Equal(t, uint64(1), c.Stats().Promotions)

	_, err = Build[string, int]("arc", Config{}, opt)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuild_HugeCapacity(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		c, err := Build(kind, Config{K: 1}, cache.Options[int, int]{Capacity: math.MaxInt})
		require.NoError(t, err, "kind %s", kind)
		c.Put(1, 1)
		require.Equal(t, 1, c.Value(1), "kind %s", kind)
	}

	// The default history is 4 x capacity and must not wrap around.
	c, err := Build(LRUK, Config{K: 2}, cache.Options[int, int]{Capacity: math.MaxInt / 2})
	require.NoError(t, err)
	c.Put(7, 7)
	c.Put(7, 7)
	require.Equal(t, 7, c.Value(7), "a negative history would never promote")
}
