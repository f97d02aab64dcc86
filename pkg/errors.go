package cache

// errors.go declares every sentinel error the public surface returns.
// Callers distinguish error kinds with errors.Is; the cache never
// raises a panic across this boundary except for the core's
// programmer-defect aborts documented in internal/s3fifo.
//
// © 2025 also-cache authors. MIT License.

import "errors"

var (
	// ErrKeyNotFound is returned by Get when the key has no live entry
	// (including a key whose only trace is a Ghost slot).
	ErrKeyNotFound = errors.New("also-cache: key not found")

	// ErrEncode wraps a codec failure during Insert. The cache state is
	// left unmodified: encoding happens before any shard is touched.
	ErrEncode = errors.New("also-cache: encode failed")

	// ErrDecode wraps a codec failure during Get. The entry remains in
	// the cache; only the caller's decode attempt failed.
	ErrDecode = errors.New("also-cache: decode failed")

	errInvalidBudget = errors.New("also-cache: total budget must be > 0")
	errInvalidShards = errors.New("also-cache: shards must be a power of two and > 0")
)
