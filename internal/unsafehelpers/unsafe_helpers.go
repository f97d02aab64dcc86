// Package unsafehelpers centralizes the few unavoidable uses of the
// unsafe package so the rest of also-cache stays ordinary Go: zero-copy
// string/[]byte conversions, and a raw pointer-to-slice view
// (ByteSliceFrom) used when hashing scalar keys whose memory layout is
// not known until instantiation. Only ByteSliceFrom has a caller
// outside this package (pkg/hasher.go).
//
// Not part of the public API; callers must uphold the preconditions
// documented on each function or risk data races or GC corruption.
//
// © 2025 also-cache authors. MIT License.
package unsafehelpers

import "unsafe"

// BytesToString views b as a string without copying. The caller must
// not mutate b for as long as the returned string is reachable.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// StringToBytes views s as a []byte without copying. The result must
// never be written to: string backing storage is immutable and the
// runtime may place it in read-only memory.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// PtrSlice views n contiguous T values starting at ptr as a []T
// without copying. ptr must be non-nil whenever n > 0.
func PtrSlice[T any](ptr *T, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice(ptr, n)
}

// ByteSliceFrom views length bytes of raw memory starting at ptr as a
// []byte. Used for hashing scalar keys by their in-memory
// representation. The caller must ensure the region is at least length
// bytes and remains valid for the slice's lifetime.
func ByteSliceFrom(ptr unsafe.Pointer, length uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), length)
}

// AlignUp rounds x up to the nearest multiple of align, which must be
// a power of two.
func AlignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// IsPowerOfTwo reports whether x has exactly one bit set.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}
