// Package s3fifo implements the S3-FIFO admission and eviction state
// machine for a single shard: three queues (Small, Main, Ghost)
// threaded through an internal/arena.Arena via internal/list, an
// internal/hashindex.Index from key hash to arena slot, and the
// eviction cascade that keeps each queue's byte-weight within its
// threshold.
//
// A Shard is not concurrency-safe; the caller (pkg.shard) serializes
// all access behind a single lock per spec, held for the full
// duration of one get/insert/delete.
//
// © 2025 also-cache authors. MIT License.
package s3fifo

import (
	"go.uber.org/zap"

	"github.com/andude10/also-cache/internal/arena"
	"github.com/andude10/also-cache/internal/hashindex"
	"github.com/andude10/also-cache/internal/list"
)

// Ratios fixing the three thresholds relative to a shard's total byte
// budget. Fixed by design (spec ratios); not runtime-tunable.
const (
	smallRatio = 0.10
	mainRatio  = 0.90
	ghostRatio = 0.60
)

// Shard is the S3-FIFO core for one partition of the overall cache.
// Generic over the key type only; values are opaque bytes, erased of
// their original type by the codec one layer up.
type Shard[K comparable] struct {
	ar  *arena.Arena
	idx *hashindex.Index

	// key side-table: slot -> key. An entry is deleted whenever its
	// slot is freed, so the map holds exactly the live slots (Len
	// relies on this).
	keys map[uint32]K

	smallHead, mainHead, ghostHead                uint32
	smallSize, mainSize, ghostSize                 int
	smallThreshold, mainThreshold, ghostThreshold int

	// hashFn recomputes a key's hash during eviction, where the
	// original call's precomputed hash is out of scope. Installed via
	// SetHashFn before first use.
	hashFn func(K) uint64

	// evictions counts slots freed (not promoted) out of Ghost or
	// Main overflow, the ambient eviction-count metric surfaced via
	// Evictions(). Not part of the core's correctness contract.
	evictions int

	log *zap.Logger
}

// New returns a Shard sized for a per-shard byte budget. estimatedItems,
// if > 0, reserves internal map/slice capacity up front.
func New[K comparable](budgetBytes int, estimatedItems int, log *zap.Logger) *Shard[K] {
	if log == nil {
		log = zap.NewNop()
	}
	small := int(float64(budgetBytes) * smallRatio)
	main := int(float64(budgetBytes) * mainRatio)
	ghost := int(float64(budgetBytes) * ghostRatio)
	if small < 1 {
		small = 1
	}
	if main < 1 {
		main = 1
	}
	if ghost < 1 {
		ghost = 1
	}
	return &Shard[K]{
		ar:             arena.New(estimatedItems),
		idx:            hashindex.New(estimatedItems),
		keys:           make(map[uint32]K, estimatedItems),
		smallHead:      arena.NilIndex,
		mainHead:       arena.NilIndex,
		ghostHead:      arena.NilIndex,
		smallThreshold: small,
		mainThreshold:  main,
		ghostThreshold: ghost,
		log:            log,
	}
}

func (s *Shard[K]) eq(key K) func(slot uint32) bool {
	return func(slot uint32) bool {
		k, ok := s.keys[slot]
		return ok && k == key
	}
}

// fail reports a corrupted arena: an invariant that must hold at
// every operation boundary was found violated. Per spec this is a
// programmer defect, not a runtime condition, and the process aborts.
func (s *Shard[K]) fail(msg string) {
	s.log.Error("also-cache: arena invariant violated", zap.String("reason", msg))
	panic("also-cache: " + msg)
}

// Get looks up key by its precomputed hash. A hit on a Small or Main
// node returns its data; a hit on a Ghost node bumps freq but reports
// a miss, since Ghost entries carry no data. Returns (nil, false) on
// complete absence or a Ghost hit.
func (s *Shard[K]) Get(hash uint64, key K) ([]byte, bool) {
	slot, found := s.idx.Get(hash, s.eq(key))
	if !found {
		return nil, false
	}
	n := s.ar.At(slot)
	if n.Freq < 3 {
		n.Freq++
	}
	if len(n.Data) == 0 {
		return nil, false
	}
	return n.Data, true
}

// Insert admits or updates key with the given weighed data, then runs
// the eviction cascade. A hit on a live (Small/Main) slot updates data
// and weight in place. A hit on a Ghost slot promotes it to Main
// immediately (Open Question 1 decision), with its new data and
// weight. A miss allocates a new slot, admits it to Small.
func (s *Shard[K]) Insert(hash uint64, key K, data []byte, weight int) {
	slot, found := s.idx.Get(hash, s.eq(key))
	if found {
		n := s.ar.At(slot)
		if n.Freq < 3 {
			n.Freq++
		}
		switch n.Queue {
		case arena.Small:
			s.smallSize += weight - n.Weight
			n.Data, n.Weight = data, weight
		case arena.Main:
			s.mainSize += weight - n.Weight
			n.Data, n.Weight = data, weight
		case arena.Ghost:
			s.ghostSize -= n.Weight
			list.Remove(s.ar, &s.ghostHead, slot)
			n.Data, n.Weight, n.Freq = data, weight, 0
			n.Queue = arena.Main
			list.LinkAfterHead(s.ar, slot, s.mainHead)
			if s.mainHead == arena.NilIndex {
				s.mainHead = slot
			}
			s.mainSize += weight
		default:
			s.fail("hash index points at a slot outside {Small, Main, Ghost}")
		}
	} else {
		slot = s.ar.Allocate(data, weight, arena.Small)
		list.LinkAfterHead(s.ar, slot, s.smallHead)
		if s.smallHead == arena.NilIndex {
			s.smallHead = slot
		}
		s.smallSize += weight
		s.keys[slot] = key
		s.idx.Put(hash, slot)
	}
	s.evict()
}

// Delete removes key, returning false if absent. Works for entries in
// any of the three live queues, including Ghost.
func (s *Shard[K]) Delete(hash uint64, key K) bool {
	slot, found := s.idx.Get(hash, s.eq(key))
	if !found {
		return false
	}
	n := s.ar.At(slot)
	switch n.Queue {
	case arena.Small:
		s.smallSize -= n.Weight
		list.Remove(s.ar, &s.smallHead, slot)
	case arena.Main:
		s.mainSize -= n.Weight
		list.Remove(s.ar, &s.mainHead, slot)
	case arena.Ghost:
		s.ghostSize -= n.Weight
		list.Remove(s.ar, &s.ghostHead, slot)
	default:
		s.fail("delete target slot outside {Small, Main, Ghost}")
	}
	s.idx.Remove(hash, slot)
	delete(s.keys, slot)
	s.ar.Free(slot)
	return true
}

// evict runs the cascade in the mandated order (Small, Ghost, Main),
// each looping while its queue's byte-weight exceeds its threshold.
func (s *Shard[K]) evict() {
	for s.smallSize > s.smallThreshold {
		s.evictSmallOnce()
	}
	for s.ghostSize > s.ghostThreshold {
		s.evictGhostOnce()
	}
	for s.mainSize > s.mainThreshold {
		s.evictMainOnce()
	}
}

func (s *Shard[K]) evictSmallOnce() {
	slot, ok := list.PopHead(s.ar, &s.smallHead)
	if !ok {
		s.fail("small overflow but small queue is empty")
	}
	n := s.ar.At(slot)
	s.smallSize -= n.Weight
	if n.Freq > 0 {
		n.Freq = 0
		n.Queue = arena.Main
		list.LinkAfterHead(s.ar, slot, s.mainHead)
		if s.mainHead == arena.NilIndex {
			s.mainHead = slot
		}
		s.mainSize += n.Weight
	} else {
		n.Queue = arena.Ghost
		list.LinkAfterHead(s.ar, slot, s.ghostHead)
		if s.ghostHead == arena.NilIndex {
			s.ghostHead = slot
		}
		s.ghostSize += n.Weight
		n.Data = nil // demote: free the value bytes, weight preserved
	}
}

func (s *Shard[K]) evictGhostOnce() {
	slot, ok := list.PopHead(s.ar, &s.ghostHead)
	if !ok {
		s.fail("ghost overflow but ghost queue is empty")
	}
	n := s.ar.At(slot)
	weight := n.Weight
	s.ghostSize -= weight
	if n.Freq > 0 && len(n.Data) > 0 {
		n.Queue = arena.Main
		list.LinkAfterHead(s.ar, slot, s.mainHead)
		if s.mainHead == arena.NilIndex {
			s.mainHead = slot
		}
		s.mainSize += weight
		return
	}
	hash := s.hashOf(slot)
	s.idx.Remove(hash, slot)
	delete(s.keys, slot)
	s.ar.Free(slot)
	s.evictions++
}

func (s *Shard[K]) evictMainOnce() {
	slot, ok := list.PopHead(s.ar, &s.mainHead)
	if !ok {
		s.fail("main overflow but main queue is empty")
	}
	n := s.ar.At(slot)
	if n.Freq > 0 {
		n.Freq--
		list.LinkAfterHead(s.ar, slot, s.mainHead)
		if s.mainHead == arena.NilIndex {
			s.mainHead = slot
		}
		return
	}
	s.mainSize -= n.Weight
	hash := s.hashOf(slot)
	s.idx.Remove(hash, slot)
	delete(s.keys, slot)
	s.ar.Free(slot)
	s.evictions++
}

// hashOf re-derives the hash used to index slot, needed only on the
// eviction path where the original call's hash is out of scope. The
// key side-table still holds the key (it is only overwritten on slot
// reuse, which cannot happen mid-cascade), so the caller-supplied
// Hasher is invoked again.
//
// Shard does not own a Hasher itself (callers pass precomputed hashes
// to Get/Insert/Delete so a single hash computation serves routing and
// lookup); eviction instead asks the caller for it via hashFn.
func (s *Shard[K]) hashOf(slot uint32) uint64 {
	return s.hashFn(s.keys[slot])
}

// SetHashFn installs the hash function Shard uses internally during
// eviction to remove hash-index entries for keys it no longer has a
// precomputed hash for. Must be called once before any mutating
// operation.
func (s *Shard[K]) SetHashFn(fn func(K) uint64) {
	s.hashFn = fn
}

// QueueStats reports a snapshot of one queue's size, threshold and
// live member count for diagnostics (Snapshot in the public surface).
type QueueStats struct {
	Size, Threshold, Count int
}

// Stats returns a snapshot of all three queues' current state.
func (s *Shard[K]) Stats() (small, main, ghost QueueStats) {
	small = QueueStats{s.smallSize, s.smallThreshold, countQueue(s.ar, s.smallHead)}
	main = QueueStats{s.mainSize, s.mainThreshold, countQueue(s.ar, s.mainHead)}
	ghost = QueueStats{s.ghostSize, s.ghostThreshold, countQueue(s.ar, s.ghostHead)}
	return
}

func countQueue(a *arena.Arena, head uint32) int {
	if head == arena.NilIndex {
		return 0
	}
	n := 1
	for cur := a.At(head).Next; cur != head; cur = a.At(cur).Next {
		n++
	}
	return n
}

// Len returns the number of live (non-free) slots across all three
// queues.
func (s *Shard[K]) Len() int {
	return len(s.keys)
}

// Evictions returns the cumulative count of slots freed (rather than
// promoted) out of Ghost or Main overflow.
func (s *Shard[K]) Evictions() int {
	return s.evictions
}
