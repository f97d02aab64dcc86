package cache

// hasher.go declares the Hasher contract: a reusable builder yielding
// 64-bit hashes, safe to call concurrently. The default implementation
// type-switches over hash/maphash, with a single shared hasher reused
// by every shard (each call opens its own maphash.Hash from the shared
// Seed, which is itself immutable and safe to copy across goroutines).
//
// © 2025 also-cache authors. MIT License.

import (
	"hash/maphash"
	"unsafe"

	"github.com/andude10/also-cache/internal/unsafehelpers"
)

// Hasher yields a 64-bit hash for a key. Implementations must be
// thread-safe and deterministic for a given cache instance, so that a
// key's shard assignment is stable for the cache's lifetime.
type Hasher[K comparable] interface {
	Hash(key K) uint64
}

// maphashHasher is the default Hasher, built once per Cache at
// construction from a single maphash.Seed shared by all shards.
type maphashHasher[K comparable] struct {
	seed maphash.Seed
}

func newMaphashHasher[K comparable]() *maphashHasher[K] {
	return &maphashHasher[K]{seed: maphash.MakeSeed()}
}

// Hash implements Hasher. Type-switches on common key shapes to avoid
// reflection; falls back to an unsafe byte view of the key's memory
// representation for scalar types.
func (h *maphashHasher[K]) Hash(key K) uint64 {
	var mh maphash.Hash
	mh.SetSeed(h.seed)
	switch k := any(key).(type) {
	case string:
		mh.WriteString(k)
	case []byte:
		mh.Write(k)
	default:
		ptr := unsafe.Pointer(&key)
		size := unsafe.Sizeof(key)
		mh.Write(unsafehelpers.ByteSliceFrom(ptr, size))
	}
	return mh.Sum64()
}
