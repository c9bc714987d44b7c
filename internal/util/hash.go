// Package util contains internal helpers for sharding: key hashing,
// power-of-two sizing and cache-line padded counters.
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hash64 hashes common comparable key types with xxHash64.
// Supported: string, []byte-like fixed arrays, every int/uint width, uintptr,
// bool and fmt.Stringer. Any other key type panics: a silent fallback would
// route every key to the same shard.
func Hash64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case int:
		return hashUint(uint64(v))
	case int8:
		return hashUint(uint64(uint8(v)))
	case int16:
		return hashUint(uint64(uint16(v)))
	case int32:
		return hashUint(uint64(uint32(v)))
	case int64:
		return hashUint(uint64(v))
	case uint:
		return hashUint(uint64(v))
	case uint8:
		return hashUint(uint64(v))
	case uint16:
		return hashUint(uint64(v))
	case uint32:
		return hashUint(uint64(v))
	case uint64:
		return hashUint(v)
	case uintptr:
		return hashUint(uint64(v))
	case bool:
		if v {
			return hashUint(1)
		}
		return hashUint(0)
	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("util.Hash64: unsupported key type %T; use a string or integer key", k))
	}
}

func hashUint(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}
