package cache

// config.go defines the functional-options configuration object
// passed to New[K]. Defaults live in defaultConfig, options capture
// plain values (shard count, capacity hint) or external collaborators
// (registry, logger, weighter, hasher), and validation is centralised in applyOptions so
// New returns one descriptive error rather than panicking on a bad
// argument.
//
// © 2025 also-cache authors. MIT License.

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// maxShards and minShardBytes bound automatic shard-count derivation:
// shard count never exceeds maxShards, and a shard's slice of the
// total budget is never asked to be smaller than minShardBytes unless
// the whole budget is, in which case a single shard is used.
const (
	maxShards     = 64
	minShardBytes = 8 << 10 // 8 KiB
)

// Option configures a Cache[K] at construction. Generic because
// WithWeighter and WithHasher refer to the concrete key type K.
type Option[K comparable] func(*config[K])

type config[K comparable] struct {
	totalBudget    int
	shards         int // 0 means "derive automatically"
	estimatedItems int

	weighter Weighter[K]
	hasher   Hasher[K]

	registry *prometheus.Registry
	logger   *zap.Logger
}

func defaultConfig[K comparable](totalBudget int) *config[K] {
	return &config[K]{
		totalBudget: totalBudget,
		weighter:    defaultWeighter[K],
		hasher:      newMaphashHasher[K](),
		logger:      zap.NewNop(),
	}
}

// WithWeighter overrides the default byte-length weigher. fn must be
// cheap and deterministic; it runs on every Insert.
func WithWeighter[K comparable](fn Weighter[K]) Option[K] {
	return func(c *config[K]) {
		if fn != nil {
			c.weighter = fn
		}
	}
}

// WithHasher overrides the default hash/maphash-based Hasher.
// Collision resistance does not affect S3-FIFO correctness, only
// eviction quality.
func WithHasher[K comparable](h Hasher[K]) Option[K] {
	return func(c *config[K]) {
		if h != nil {
			c.hasher = h
		}
	}
}

// WithEstimatedItems reserves internal map/slice capacity for roughly
// n items up front.
func WithEstimatedItems[K comparable](n int) Option[K] {
	return func(c *config[K]) {
		if n > 0 {
			c.estimatedItems = n
		}
	}
}

// WithShards overrides automatic shard-count derivation. Must be a
// power of two; validated in applyOptions.
func WithShards[K comparable](n int) Option[K] {
	return func(c *config[K]) {
		c.shards = n
	}
}

// WithLogger plugs an external zap.Logger. The cache never logs on
// the hot path; only an invariant violation immediately before its
// mandated abort is logged (see internal/s3fifo).
func WithLogger[K comparable](l *zap.Logger) Option[K] {
	return func(c *config[K]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables the optional Prometheus sink (pkg/metrics.go).
// Passing nil leaves metrics disabled (the default).
func WithMetrics[K comparable](reg *prometheus.Registry) Option[K] {
	return func(c *config[K]) {
		c.registry = reg
	}
}

// applyOptions runs opts over cfg, validates the result, and derives
// the shard count if the caller did not fix one with WithShards.
func applyOptions[K comparable](cfg *config[K], opts []Option[K]) error {
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.totalBudget <= 0 {
		return errInvalidBudget
	}
	if cfg.shards == 0 {
		cfg.shards = deriveShardCount(cfg.totalBudget)
	} else if cfg.shards < 0 || cfg.shards&(cfg.shards-1) != 0 {
		return errInvalidShards
	}
	return nil
}

// deriveShardCount picks the largest power of two satisfying both
// S ≤ min(2×cpu_count, maxShards) and S·minShardBytes ≤ totalBudget,
// or 1 when totalBudget is below minShardBytes and no S satisfies both.
func deriveShardCount(totalBudget int) int {
	upperBound := 2 * runtime.NumCPU()
	if upperBound > maxShards {
		upperBound = maxShards
	}
	byBudget := totalBudget / minShardBytes
	if byBudget < upperBound {
		upperBound = byBudget
	}
	if upperBound < 1 {
		upperBound = 1
	}
	s := 1
	for s*2 <= upperBound {
		s *= 2
	}
	return s
}
