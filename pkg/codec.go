package cache

// codec.go implements the value codec: a compact, versioned binary
// encoding over a broad type system (integers, variable-length
// sequences, product and sum types). msgpack supplies the compact
// encoding over that broad type system; this file adds the version
// byte msgpack itself does not carry, so a future change to the wire
// format can be detected on decode rather than silently
// misinterpreted.
//
// © 2025 also-cache authors. MIT License.

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// codecVersion is prepended to every encoded value. Bump it if the
// wire representation changes in a way old decoders could misread.
const codecVersion byte = 1

// encode serializes v to a versioned byte slice. Returns ErrEncode
// (wrapped) on failure; the cache is guaranteed unmodified by the
// caller, since Insert always encodes before touching any shard.
func encode[V any](v V) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	out := make([]byte, 1+len(body))
	out[0] = codecVersion
	copy(out[1:], body)
	return out, nil
}

// decode reverses encode. Returns ErrDecode (wrapped) on a version
// mismatch or a msgpack failure; the entry is left in the cache
// regardless, since decode failures never mutate shard state.
func decode[V any](data []byte) (V, error) {
	var zero V
	if len(data) < 1 {
		return zero, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if data[0] != codecVersion {
		return zero, fmt.Errorf("%w: unsupported codec version %d", ErrDecode, data[0])
	}
	var v V
	if err := msgpack.Unmarshal(data[1:], &v); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return v, nil
}
