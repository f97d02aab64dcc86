// Package cache is the public surface of also-cache: a sharded,
// in-process S3-FIFO cache. The core eviction engine lives in
// internal/s3fifo and knows only about keys and opaque weighted
// bytes; this package adds the codec boundary, configuration,
// sharded routing, and the convenience operations layered on top of
// get/insert/delete.
//
// © 2025 also-cache authors. MIT License.
package cache

import (
	"context"
	"errors"
	"fmt"
)

// Cache is a bounded-size, sharded key-value cache. The zero value is
// not usable; construct with New.
type Cache[K comparable] struct {
	shards   []*shard[K]
	mask     uint64 // len(shards)-1; shards is always a power of two
	hasher   Hasher[K]
	weighter Weighter[K]
	loaders  *loaderGroup[K]
}

// New constructs a Cache with the given total byte budget, using the
// default hasher and byte-length weighter. Pass WithWeighter and WithHasher
// to override them, and additionally WithEstimatedItems to reserve
// internal capacity up front.
func New[K comparable](totalBudget int, opts ...Option[K]) (*Cache[K], error) {
	cfg := defaultConfig[K](totalBudget)
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}

	mx := newMetricsSink(cfg.shards, cfg.registry)
	perShardBudget := cfg.totalBudget / cfg.shards
	perShardItems := cfg.estimatedItems / cfg.shards

	c := &Cache[K]{
		shards:   make([]*shard[K], cfg.shards),
		mask:     uint64(cfg.shards - 1),
		hasher:   cfg.hasher,
		weighter: cfg.weighter,
	}
	for i := range c.shards {
		c.shards[i] = newShard[K](perShardBudget, perShardItems, i, mx, cfg.hasher.Hash, cfg.logger)
	}
	c.loaders = newLoaderGroup[K]()
	return c, nil
}

func (c *Cache[K]) shardFor(hash uint64) *shard[K] {
	return c.shards[hash&c.mask]
}

// Get returns the decoded value for key, or ErrKeyNotFound if it has
// no live entry (a key resolving only to a Ghost slot also reports
// ErrKeyNotFound). A decode failure returns ErrDecode; the entry is
// left in the cache.
func Get[K comparable, V any](c *Cache[K], key K) (V, error) {
	var zero V
	hash := c.hasher.Hash(key)
	data, ok := c.shardFor(hash).get(hash, key)
	if !ok {
		return zero, ErrKeyNotFound
	}
	return decode[V](data)
}

// Insert encodes value and admits it under key, weighted by the
// configured Weighter. Returns ErrEncode (wrapped) on a codec failure,
// leaving the cache unmodified: encoding happens before any shard is
// touched.
func Insert[K comparable, V any](c *Cache[K], key K, value V) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	hash := c.hasher.Hash(key)
	weight := c.weighter(key, data)
	c.shardFor(hash).insert(hash, key, data, weight)
	return nil
}

// Delete removes key, reporting whether it was present. Works for
// entries resident in Small, Main, or Ghost.
func (c *Cache[K]) Delete(key K) bool {
	hash := c.hasher.Hash(key)
	return c.shardFor(hash).delete(hash, key)
}

// GetOrLoad performs Get, and on ErrKeyNotFound invokes loader exactly
// once per key even under concurrent callers, then Inserts and
// returns the loaded value. Implemented entirely atop Get/Insert; it
// adds no core state.
func GetOrLoad[K comparable, V any](ctx context.Context, c *Cache[K], key K, loader LoaderFunc[K, V]) (V, error) {
	var zero V
	if v, err := Get[K, V](c, key); err == nil {
		return v, nil
	} else if !errors.Is(err, ErrKeyNotFound) {
		return zero, err
	}
	v, err, _ := doLoad(c.loaders, ctx, c.hasher.Hash(key), key, func(ctx context.Context, key K) (V, error) {
		if v, err := Get[K, V](c, key); err == nil {
			return v, nil
		}
		v, err := loader(ctx, key)
		if err != nil {
			return zero, err
		}
		if ierr := Insert(c, key, v); ierr != nil {
			return zero, fmt.Errorf("also-cache: loaded value could not be cached: %w", ierr)
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Len returns the total number of live entries (Small + Main + Ghost)
// across all shards.
func (c *Cache[K]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// ShardSnapshot reports one shard's queue sizes/thresholds/counts.
type ShardSnapshot struct {
	Small, Main, Ghost QueueSnapshot
}

// QueueSnapshot is one queue's live byte-weight, threshold, and member count.
type QueueSnapshot struct {
	Bytes, Threshold, Count int
}

// Snapshot is a read-only introspection operation: it briefly takes
// each shard's lock to report its current queue state, for
// diagnostics. It never mutates cache state.
func (c *Cache[K]) Snapshot() []ShardSnapshot {
	out := make([]ShardSnapshot, len(c.shards))
	for i, s := range c.shards {
		small, main, ghost := s.snapshot()
		out[i] = ShardSnapshot{
			Small: QueueSnapshot{small.Size, small.Threshold, small.Count},
			Main:  QueueSnapshot{main.Size, main.Threshold, main.Count},
			Ghost: QueueSnapshot{ghost.Size, ghost.Threshold, ghost.Count},
		}
	}
	return out
}
