// Package tree provides arena-backed storage for ordered trees addressed by
// compact integer identifiers.
//
// Nodes are never reached through pointers held by other nodes. Parent and
// child links are identifiers resolved through the arena, so a stale link can
// at worst resolve to "not found", never to a dangling pointer.
//
// Slots are recycled: [Tree.Remove] pushes the slot onto a free list and the
// next [Tree.Insert] reuses it. Callers that keep identifiers outside the tree
// (schedulers, caches, dependency sets) must drop them before removing the
// node.
package tree

import (
	"fmt"
	"iter"

	"github.com/go-drift/framecore/pkg/errors"
)

// ID identifies a node stored in a [Tree].
//
// The value of a live ID is one plus the index of its slot. The zero value is
// [None] and never identifies a node.
type ID uint32

// None is the absent identifier.
const None ID = 0

// IsNone reports whether id is the absent identifier.
func (id ID) IsNone() bool {
	return id == None
}

// String implements [fmt.Stringer].
func (id ID) String() string {
	if id == None {
		return "#none"
	}
	return fmt.Sprintf("#%d", uint32(id))
}

func (id ID) index() int {
	return int(id) - 1
}

type slot[T any] struct {
	value    T
	parent   ID
	children []ID
	depth    int
	live     bool
}

// Tree stores values of type T together with parent, children and depth
// bookkeeping. A zero Tree is empty and ready to use.
//
// Tree is not safe for concurrent use.
type Tree[T any] struct {
	slots []slot[T]
	free  []ID
	live  int
}

// Insert stores value as a detached node at depth 0 and returns its id.
// Existing identifiers remain valid.
func (t *Tree[T]) Insert(value T) ID {
	var id ID
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot[T]{})
		id = ID(len(t.slots))
	}
	t.slots[id.index()] = slot[T]{value: value, live: true}
	t.live++
	return id
}

// Contains reports whether id refers to a live node.
func (t *Tree[T]) Contains(id ID) bool {
	if id == None || id.index() >= len(t.slots) {
		return false
	}
	return t.slots[id.index()].live
}

// Len returns the number of live nodes.
func (t *Tree[T]) Len() int {
	return t.live
}

// Get returns the value stored at id. The boolean is false when id does not
// refer to a live node.
func (t *Tree[T]) Get(id ID) (T, bool) {
	if !t.Contains(id) {
		var zero T
		return zero, false
	}
	return t.slots[id.index()].value, true
}

// MustGet returns the value stored at id and panics when id is not live.
func (t *Tree[T]) MustGet(id ID) T {
	return t.mustSlot("tree.MustGet", id).value
}

// Set replaces the value stored at id.
func (t *Tree[T]) Set(id ID, value T) {
	t.mustSlot("tree.Set", id).value = value
}

func (t *Tree[T]) mustSlot(op string, id ID) *slot[T] {
	if !t.Contains(id) {
		errors.Violation(errors.KindLifecycle, op, "node %v is not live", id)
	}
	return &t.slots[id.index()]
}

// Parent returns the parent of id, or [None] for a root or detached node.
func (t *Tree[T]) Parent(id ID) ID {
	return t.mustSlot("tree.Parent", id).parent
}

// Depth returns the number of ancestors of id.
func (t *Tree[T]) Depth(id ID) int {
	return t.mustSlot("tree.Depth", id).depth
}

// ChildCount returns the number of children of id.
func (t *Tree[T]) ChildCount(id ID) int {
	return len(t.mustSlot("tree.ChildCount", id).children)
}

// ChildAt returns the child of id at index.
func (t *Tree[T]) ChildAt(id ID, index int) ID {
	s := t.mustSlot("tree.ChildAt", id)
	if index < 0 || index >= len(s.children) {
		errors.Violation(errors.KindHierarchy, "tree.ChildAt", "index %d out of range for %v with %d children", index, id, len(s.children))
	}
	return s.children[index]
}

// ChildIDs returns a copy of the ordered children of id.
func (t *Tree[T]) ChildIDs(id ID) []ID {
	s := t.mustSlot("tree.ChildIDs", id)
	out := make([]ID, len(s.children))
	copy(out, s.children)
	return out
}

// SetParent records parent as the parent of id and recomputes depths for the
// subtree rooted at id. It does not modify the child list of either the old
// or the new parent; use [Tree.SetChildren] to keep both sides consistent.
func (t *Tree[T]) SetParent(id, parent ID) {
	s := t.mustSlot("tree.SetParent", id)
	depth := 0
	if parent != None {
		if parent == id {
			errors.Violation(errors.KindHierarchy, "tree.SetParent", "node %v cannot be its own parent", id)
		}
		depth = t.mustSlot("tree.SetParent", parent).depth + 1
	}
	s.parent = parent
	t.setDepth(id, depth)
}

func (t *Tree[T]) setDepth(id ID, depth int) {
	s := &t.slots[id.index()]
	if s.depth == depth {
		return
	}
	s.depth = depth
	for _, child := range s.children {
		t.setDepth(child, depth+1)
	}
}

// SetChildren replaces the ordered child list of parent. Every child gets
// parent as its parent. Children that were listed before and are not listed
// any more keep their parent link until they are re-parented or removed.
//
// A child that is already attached to a different live parent is a hierarchy
// violation.
func (t *Tree[T]) SetChildren(parent ID, children []ID) {
	s := t.mustSlot("tree.SetChildren", parent)
	for _, child := range children {
		cs := t.mustSlot("tree.SetChildren", child)
		if cs.parent != None && cs.parent != parent && t.Contains(cs.parent) && t.lists(cs.parent, child) {
			errors.Violation(errors.KindHierarchy, "tree.SetChildren", "node %v is already a child of %v", child, cs.parent)
		}
	}
	s.children = append(s.children[:0], children...)
	for _, child := range children {
		t.SetParent(child, parent)
	}
}

func (t *Tree[T]) lists(parent, child ID) bool {
	for _, c := range t.slots[parent.index()].children {
		if c == child {
			return true
		}
	}
	return false
}

// Remove frees the slot of id and returns the stored value. The node must not
// have children. The caller is responsible for dropping id from its parent's
// child list beforehand.
func (t *Tree[T]) Remove(id ID) T {
	s := t.mustSlot("tree.Remove", id)
	if len(s.children) > 0 {
		errors.Violation(errors.KindHierarchy, "tree.Remove", "node %v still has %d children", id, len(s.children))
	}
	value := s.value
	*s = slot[T]{children: s.children[:0]}
	t.free = append(t.free, id)
	t.live--
	return value
}

// Children yields the children of id in order. The sequence reads the child
// list lazily and may be iterated more than once.
func (t *Tree[T]) Children(id ID) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		if !t.Contains(id) {
			return
		}
		for i := 0; i < len(t.slots[id.index()].children); i++ {
			if !yield(t.slots[id.index()].children[i]) {
				return
			}
		}
	}
}

// Ancestors yields the parent of id, then its parent, up to the root.
func (t *Tree[T]) Ancestors(id ID) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		if !t.Contains(id) {
			return
		}
		for p := t.slots[id.index()].parent; p != None && t.Contains(p); p = t.slots[p.index()].parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Descendants yields every node below id in depth-first pre-order. id itself
// is not included.
func (t *Tree[T]) Descendants(id ID) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		if !t.Contains(id) {
			return
		}
		t.walk(id, yield)
	}
}

func (t *Tree[T]) walk(id ID, yield func(ID) bool) bool {
	for _, child := range t.slots[id.index()].children {
		if !yield(child) {
			return false
		}
		if !t.walk(child, yield) {
			return false
		}
	}
	return true
}

// IsAncestor reports whether ancestor is a proper ancestor of id.
func (t *Tree[T]) IsAncestor(ancestor, id ID) bool {
	for p := range t.Ancestors(id) {
		if p == ancestor {
			return true
		}
	}
	return false
}
