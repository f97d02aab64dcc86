package cache

// loader.go implements the singleflight-based de-duplication layer
// backing GetOrLoad: when many goroutines miss on the same key
// concurrently, only one of them runs the loader; the rest share its
// result. Keys are reduced to their precomputed 64-bit hash (already
// computed once for shard routing) to form the singleflight key.
//
// loaderGroup is generic only over K: singleflight.Group's Do returns
// `any`, and Go methods cannot introduce their own type parameters, so
// the V-typed decode happens in the free function doLoad instead.
//
// © 2025 also-cache authors. MIT License.

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"
)

type loaderGroup[K comparable] struct {
	g singleflight.Group
}

func newLoaderGroup[K comparable]() *loaderGroup[K] {
	return &loaderGroup[K]{}
}

// doLoad runs fn exactly once per keyHash across all concurrent
// callers. Every waiter receives the same (value, error); shared
// reports whether this goroutine received another goroutine's result
// rather than running fn itself.
func doLoad[K comparable, V any](lg *loaderGroup[K], ctx context.Context, keyHash uint64, key K, fn LoaderFunc[K, V]) (v V, err error, shared bool) {
	k := strconv.FormatUint(keyHash, 16)
	res, err, shared := lg.g.Do(k, func() (any, error) {
		return fn(ctx, key)
	})
	if err != nil {
		var zero V
		return zero, err, shared
	}
	return res.(V), nil, shared
}
