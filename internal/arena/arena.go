// Package arena implements the node arena: a slotted vector of
// fixed-shape nodes with a freelist, addressed by stable 32-bit
// indices. It is the memory layout every queue in internal/s3fifo is
// threaded through; see internal/list for the link/unlink primitives
// that operate on the Next/Prev fields below.
//
// © 2025 also-cache authors. MIT License.
package arena

import "math"

// Queue identifies which list, if any, currently holds a node.
type Queue uint8

const (
	// None marks a free slot: not a member of any queue.
	None Queue = iota
	Small
	Main
	Ghost
)

// NilIndex marks the absence of a neighbour or head. No valid node
// ever occupies this index.
const NilIndex uint32 = math.MaxUint32

// Node is a single arena slot. Data is empty for free slots and for
// Ghost entries; Next/Prev thread the node through whichever circular
// list Queue names. Freq is a saturating counter in [0,3].
type Node struct {
	Data   []byte
	Weight int
	Next   uint32
	Prev   uint32
	Freq   uint8
	Queue  Queue
}

// Arena is a slotted vector of Node records plus a freelist of
// previously freed indices. It never shrinks; freed slots are
// recycled by Allocate before the backing slice grows.
type Arena struct {
	nodes    []Node
	freelist []uint32
}

// New returns an empty arena with capacity pre-reserved for n nodes.
func New(n int) *Arena {
	return &Arena{
		nodes:    make([]Node, 0, n),
		freelist: make([]uint32, 0),
	}
}

// Allocate returns the index of a slot initialized with the given
// data, weight, and queue membership, freq=0. Amortized O(1): pops the
// freelist if non-empty, otherwise appends to the backing slice.
func (a *Arena) Allocate(data []byte, weight int, queue Queue) uint32 {
	n := Node{Data: data, Weight: weight, Next: NilIndex, Prev: NilIndex, Freq: 0, Queue: queue}
	if len(a.freelist) > 0 {
		idx := a.freelist[len(a.freelist)-1]
		a.freelist = a.freelist[:len(a.freelist)-1]
		a.nodes[idx] = n
		return idx
	}
	a.nodes = append(a.nodes, n)
	return uint32(len(a.nodes) - 1)
}

// Free resets idx to the sentinel free state and pushes it onto the
// freelist. Any subsequent dereference of a stale idx after Free
// returns a slot with Next=Prev=NilIndex and Queue=None, which
// internal/list and internal/s3fifo treat as a programmer error if
// dereferenced as if still live.
func (a *Arena) Free(idx uint32) {
	a.nodes[idx] = Node{Next: NilIndex, Prev: NilIndex, Queue: None}
	a.freelist = append(a.freelist, idx)
}

// At returns a pointer to the node at idx for in-place mutation.
func (a *Arena) At(idx uint32) *Node {
	return &a.nodes[idx]
}

// Len returns the number of slots ever allocated, live or freed.
func (a *Arena) Len() int {
	return len(a.nodes)
}
