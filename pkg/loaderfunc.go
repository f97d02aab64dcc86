package cache

// loaderfunc.go defines LoaderFunc, the user-supplied callback that
// produces a value when GetOrLoad misses. Kept in its own file so it
// can be referenced from cache.go and loader.go without import
// cycles.
//
// GetOrLoad holds no shard lock while the loader runs, so the loader
// may call Get or Insert on the same Cache. It must not call GetOrLoad
// for the same key on the same Cache: that call waits on the load
// already in flight, which is its own caller, and deadlocks. It should
// honour ctx for cancellation. The same
// LoaderFunc instance may be invoked concurrently for different keys
// and must be thread-safe.
//
// © 2025 also-cache authors. MIT License.

import "context"

// LoaderFunc is invoked by GetOrLoad when a key is absent.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)
