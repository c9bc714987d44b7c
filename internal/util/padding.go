package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is the padding unit; 64 bytes fits current amd64 and arm64 cores.
const CacheLineSize = 64

// PaddedAtomicUint64 is an atomic counter occupying a full cache line, so
// neighbouring counters written from different cores do not false-share.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// Compile-time size check: exactly one cache line.
var _ [CacheLineSize - int(unsafe.Sizeof(PaddedAtomicUint64{}))]byte
