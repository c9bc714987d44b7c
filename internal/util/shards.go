package util

import (
	"math/bits"
	"runtime"
)

// MaxShards bounds the automatic shard count.
const MaxShards = 256

// NextPow2 returns the smallest power of two >= x (1 for x <= 1).
// Values above 1<<63 are clamped to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	n := bits.Len64(x - 1)
	if n >= 64 {
		return 1 << 63
	}
	return 1 << n
}

// ReasonableShardCount returns nextPow2(2*GOMAXPROCS) clamped to [1, MaxShards].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(2 * p)))
	if n > MaxShards {
		n = MaxShards
	}
	return n
}

// ShardIndex maps a hash onto [0, shards). Power-of-two counts use a mask.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if shards&(shards-1) == 0 {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
