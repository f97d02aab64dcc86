package cache

import "testing"

func TestMaphashHasherIsDeterministicWithinInstance(t *testing.T) {
	h := newMaphashHasher[string]()
	a := h.Hash("some-key")
	b := h.Hash("some-key")
	if a != b {
		t.Fatalf("same hasher instance produced different hashes for the same key: %d != %d", a, b)
	}
}

func TestMaphashHasherDiffersAcrossKeys(t *testing.T) {
	h := newMaphashHasher[string]()
	if h.Hash("a") == h.Hash("b") {
		t.Fatal("distinct keys hashed to the same value (possible, but astronomically unlikely for short distinct strings)")
	}
}

func TestMaphashHasherHandlesByteSliceKeys(t *testing.T) {
	h := newMaphashHasher[any]()
	a := h.Hash([]byte("xyz"))
	b := h.Hash([]byte("xyz"))
	if a != b {
		t.Fatalf("[]byte key hashing not deterministic: %d != %d", a, b)
	}
}

func TestMaphashHasherHandlesScalarKeys(t *testing.T) {
	h := newMaphashHasher[int]()
	a := h.Hash(12345)
	b := h.Hash(12345)
	if a != b {
		t.Fatalf("int key hashing not deterministic: %d != %d", a, b)
	}
	if h.Hash(12345) == h.Hash(54321) {
		t.Fatal("distinct int keys hashed to the same value")
	}
}
