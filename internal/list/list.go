// Package list implements the circular doubly-linked list primitives
// that thread the three S3-FIFO queues through an internal/arena.Arena.
// A queue is represented purely by a head index stored by the caller
// (internal/s3fifo); these functions never allocate or free nodes,
// only relink Next/Prev fields.
//
// The head of a list is its oldest member, i.e. the eviction
// candidate. New nodes are spliced in immediately after the head
// (between head and head.Next), so walking Next from the head visits
// members in reverse insertion order among everything after the
// head, which is exactly what makes head.Prev a direct, O(1)
// pointer to the second-oldest member: the longest-resident node
// other than the head itself, since every later insertion lands
// between the head and it, never past it.
//
// © 2025 also-cache authors. MIT License.
package list

import "github.com/andude10/also-cache/internal/arena"

// LinkAfterHead splices idx into the circular list whose current head
// is head, placing it immediately after head (between head and
// head.Next). If head is arena.NilIndex the list is empty and idx
// becomes a singleton list (Next == Prev == idx); the caller is
// responsible for recording idx as the new head in that case. idx
// must not already be linked into any list.
func LinkAfterHead(a *arena.Arena, idx uint32, head uint32) {
	n := a.At(idx)
	if head == arena.NilIndex {
		n.Next = idx
		n.Prev = idx
		return
	}
	h := a.At(head)
	oldNext := h.Next
	n.Next = oldNext
	n.Prev = head
	h.Next = idx
	a.At(oldNext).Prev = idx
}

// Unlink removes idx from whatever list it is threaded through and
// resets its Next/Prev to point to itself. The caller must update its
// own head reference beforehand if idx was the head (see PopHead).
func Unlink(a *arena.Arena, idx uint32) {
	n := a.At(idx)
	prev, next := n.Prev, n.Next
	if prev == idx && next == idx {
		// singleton: already isolated
		return
	}
	a.At(prev).Next = next
	a.At(next).Prev = prev
	n.Next = idx
	n.Prev = idx
}

// PopHead removes and returns the current head of a list, updating
// *head to the new head (the second-oldest member, head.Prev before
// unlinking), or to arena.NilIndex if the list becomes empty. Returns
// (arena.NilIndex, false) if *head is already arena.NilIndex.
func PopHead(a *arena.Arena, head *uint32) (uint32, bool) {
	old := *head
	if old == arena.NilIndex {
		return arena.NilIndex, false
	}
	n := a.At(old)
	if n.Next == old {
		// singleton
		*head = arena.NilIndex
		Unlink(a, old)
		return old, true
	}
	*head = n.Prev
	Unlink(a, old)
	return old, true
}

// Remove detaches idx from the list headed by *head, regardless of
// whether idx is currently the head. Used when a node must leave its
// queue out of head order (e.g. promoting a Ghost entry on re-insert
// before it would naturally reach the Ghost head).
func Remove(a *arena.Arena, head *uint32, idx uint32) {
	if *head == idx {
		n := a.At(idx)
		if n.Next == idx {
			*head = arena.NilIndex
		} else {
			*head = n.Prev
		}
	}
	Unlink(a, idx)
}
