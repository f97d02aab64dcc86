// Package hashindex implements the shard's hash→slot mapping: an
// open-addressed table (a builtin map bucketed by hash) from a 64-bit
// hash to the arena slot(s) sharing that hash. Collisions are resolved
// by an equality closure supplied by the caller at lookup time, since
// the index itself has no notion of the key type.
//
// © 2025 also-cache authors. MIT License.
package hashindex

// Index maps a 64-bit hash to the arena slot indices that currently
// hash to it. Multiple slots may share a bucket on hash collision;
// Get walks the bucket applying eq to disambiguate.
type Index struct {
	buckets map[uint64][]uint32
}

// New returns an empty index with capacity reserved for n entries.
func New(n int) *Index {
	return &Index{buckets: make(map[uint64][]uint32, n)}
}

// Get returns the slot index whose key (per eq) matches, if any. eq
// receives a candidate slot index and reports whether its key equals
// the sought key.
func (ix *Index) Get(hash uint64, eq func(slot uint32) bool) (uint32, bool) {
	for _, slot := range ix.buckets[hash] {
		if eq(slot) {
			return slot, true
		}
	}
	return 0, false
}

// Put records that hash maps to slot. Does not check for an existing
// entry with the same key; callers must Get first if replace-in-place
// semantics are required.
func (ix *Index) Put(hash uint64, slot uint32) {
	ix.buckets[hash] = append(ix.buckets[hash], slot)
}

// Remove deletes the (hash, slot) pair by slot identity, not by
// re-deriving the key, since the key side-table entry for slot may already
// have been overwritten by a later insert reusing the slot, so
// identity is the only safe removal key.
func (ix *Index) Remove(hash uint64, slot uint32) {
	b := ix.buckets[hash]
	for i, s := range b {
		if s == slot {
			b[i] = b[len(b)-1]
			b = b[:len(b)-1]
			break
		}
	}
	if len(b) == 0 {
		delete(ix.buckets, hash)
	} else {
		ix.buckets[hash] = b
	}
}
