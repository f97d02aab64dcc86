package cache

// shard.go wraps one internal/s3fifo.Shard with a mutual-exclusion
// lock held for the full duration of one get/insert/delete, never
// shared across shards. The S3-FIFO state machine itself is entirely
// delegated to internal/s3fifo; this file only adds concurrency,
// metrics, and a copy-out-before-unlock policy for returned value
// bytes.
//
// © 2025 also-cache authors. MIT License.

import (
	"sync"

	"go.uber.org/zap"

	"github.com/andude10/also-cache/internal/s3fifo"
)

type shard[K comparable] struct {
	mu    sync.Mutex
	core  *s3fifo.Shard[K]
	index int
	mx    metricsSink
}

func newShard[K comparable](budgetBytes, estimatedItems, index int, mx metricsSink, hashFn func(K) uint64, log *zap.Logger) *shard[K] {
	core := s3fifo.New[K](budgetBytes, estimatedItems, log)
	core.SetHashFn(hashFn)
	return &shard[K]{core: core, index: index, mx: mx}
}

// get returns a copy of the entry's bytes, so the caller may use them
// after the shard lock is released.
func (s *shard[K]) get(hash uint64, key K) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.core.Get(hash, key)
	if !ok {
		s.mx.incMiss(s.index)
		return nil, false
	}
	s.mx.incHit(s.index)
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

func (s *shard[K]) insert(hash uint64, key K, data []byte, weight int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.core.Evictions()
	s.core.Insert(hash, key, data, weight)
	if after := s.core.Evictions(); after > before {
		for i := before; i < after; i++ {
			s.mx.incEvict(s.index)
		}
		small, main, ghost := s.core.Stats()
		s.mx.setQueueBytes(s.index, "small", int64(small.Size))
		s.mx.setQueueBytes(s.index, "main", int64(main.Size))
		s.mx.setQueueBytes(s.index, "ghost", int64(ghost.Size))
	}
}

func (s *shard[K]) delete(hash uint64, key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Delete(hash, key)
}

func (s *shard[K]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Len()
}

// snapshot returns the shard's queue stats, briefly holding the lock.
func (s *shard[K]) snapshot() (small, main, ghost s3fifo.QueueStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Stats()
}
