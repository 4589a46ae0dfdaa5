package layout

import (
	"iter"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
)

// ArityKind tags how many children a render node has.
type ArityKind uint8

const (
	// ArityNone is a leaf.
	ArityNone ArityKind = iota
	// ArityOne has exactly one child.
	ArityOne
	// ArityMany has an ordered list of any length.
	ArityMany
)

func (k ArityKind) String() string {
	switch k {
	case ArityNone:
		return "none"
	case ArityOne:
		return "one"
	default:
		return "many"
	}
}

// Arity is the set of child accessors a [RenderBox] can be written against.
// The accessor type decides at compile time which child operations exist:
// [NoChildren] has none, [OneChild] addresses exactly one child, and
// [ManyChildren] exposes an ordered sequence with no notion of "the" child.
type Arity interface {
	NoChildren | OneChild | ManyChildren
}

// RenderBox is the layout and paint logic of one render node.
//
// PerformLayout must return a size within c, computed after every child it
// queried has returned. Paint records draw operations in local coordinates
// through ctx; the node's top-left corner is the origin.
type RenderBox[A Arity] interface {
	PerformLayout(c Constraints, children A) graphics.Size
	Paint(ctx *PaintContext, children A)
}

// IntrinsicDimension selects an intrinsic size query.
type IntrinsicDimension uint8

const (
	// MinIntrinsicWidth is the smallest width that paints correctly for a
	// given height.
	MinIntrinsicWidth IntrinsicDimension = iota
	// MaxIntrinsicWidth is the width beyond which more width does not
	// reduce the height, for a given height.
	MaxIntrinsicWidth
	// MinIntrinsicHeight is the smallest height for a given width.
	MinIntrinsicHeight
	// MaxIntrinsicHeight is the height beyond which more height is unused,
	// for a given width.
	MaxIntrinsicHeight
)

// IsWidth reports whether the query asks for a width.
func (d IntrinsicDimension) IsWidth() bool {
	return d == MinIntrinsicWidth || d == MaxIntrinsicWidth
}

// IntrinsicSizer is implemented by boxes that answer intrinsic queries
// without a full layout. Boxes that do not implement it are measured with a
// dry layout at the relevant constraint.
type IntrinsicSizer[A Arity] interface {
	IntrinsicSize(dim IntrinsicDimension, extent float64, children A) float64
}

// HitTester is implemented by boxes that route hit tests to children
// themselves, for example because they paint children transformed. position
// is in the box's local coordinates.
type HitTester[A Arity] interface {
	HitTestChildren(result *HitTestResult, position graphics.Offset, children A) bool
}

// SelfHitTester is implemented by boxes that can be hit themselves.
type SelfHitTester interface {
	HitTestSelf(position graphics.Offset) bool
}

// RepaintBoundary is implemented by boxes whose subtree is painted into a
// retained layer.
type RepaintBoundary interface {
	IsRepaintBoundary() bool
}

// NoChildren is the accessor of leaf boxes. It has no operations.
type NoChildren struct{}

// OneChild is the accessor of boxes with exactly one child.
type OneChild struct {
	Child
}

// ManyChildren is the accessor of boxes with an ordered list of children.
// Its length is authoritative.
type ManyChildren struct {
	scope *scope
}

// Len returns the number of children.
func (m ManyChildren) Len() int {
	return len(m.scope.node.children)
}

// At returns the child at index i.
func (m ManyChildren) At(i int) Child {
	if i < 0 || i >= len(m.scope.node.children) {
		errors.Violation(errors.KindHierarchy, "ManyChildren.At", "index %d out of range for %s with %d children",
			i, m.scope.node.label, len(m.scope.node.children))
	}
	return Child{scope: m.scope, index: i}
}

// All yields every child with its index, in order.
func (m ManyChildren) All() iter.Seq2[int, Child] {
	return func(yield func(int, Child) bool) {
		for i := range m.scope.node.children {
			if !yield(i, Child{scope: m.scope, index: i}) {
				return
			}
		}
	}
}

// Intrinsics answers the same intrinsic query for every child. Children are
// measured concurrently when the owner enables parallel layout.
func (m ManyChildren) Intrinsics(dim IntrinsicDimension, extent float64) []float64 {
	out := make([]float64, len(m.scope.node.children))
	m.scope.measureEach(func(i int, child *RenderNode, run *layoutRun) {
		out[i] = run.intrinsic(child, dim, extent)
	})
	return out
}

// Measure returns the size every child would choose under c, without laying
// any of them out. Children are measured concurrently when the owner
// enables parallel layout.
func (m ManyChildren) Measure(c Constraints) []graphics.Size {
	out := make([]graphics.Size, len(m.scope.node.children))
	m.scope.measureEach(func(i int, child *RenderNode, run *layoutRun) {
		out[i] = run.dryLayout(child, c)
	})
	return out
}

// Child is a handle to one child of the box being laid out, painted or hit
// tested. It is only valid for the duration of the call it was passed to.
type Child struct {
	scope *scope
	index int
}

func (c Child) node() *RenderNode {
	return c.scope.node.children[c.index]
}

// Layout lays the child out under constraints and returns its size. It may
// only be called from PerformLayout.
func (c Child) Layout(constraints Constraints) graphics.Size {
	if c.scope.run == nil {
		errors.Violation(errors.KindLifecycle, "Child.Layout", "child of %s laid out outside PerformLayout", c.scope.node.label)
	}
	size := c.scope.run.layoutChild(c.node(), constraints)
	c.scope.frame.record(c.index, constraints, size)
	return size
}

// Size returns the size chosen by the child's most recent layout.
func (c Child) Size() graphics.Size {
	if f := c.scope.frame; f != nil && f.laidOut[c.index] {
		return f.placements[c.index].Size
	}
	return c.node().size
}

// SetOffset positions the child relative to the parent's top-left corner.
func (c Child) SetOffset(offset graphics.Offset) {
	if f := c.scope.frame; f != nil {
		f.placements[c.index].Offset = offset
	}
	if c.scope.run != nil && !c.scope.run.dry {
		c.node().setOffset(offset)
	}
}

// Offset returns the child's position relative to the parent.
func (c Child) Offset() graphics.Offset {
	if f := c.scope.frame; f != nil && f.laidOut[c.index] {
		return f.placements[c.index].Offset
	}
	return c.node().offset
}

// ParentData returns the layout metadata attached to the child by a
// parent-data element, or nil.
func (c Child) ParentData() any {
	return c.node().parentData
}

// Paint paints the child at offset in the parent's local coordinates.
func (c Child) Paint(ctx *PaintContext, offset graphics.Offset) {
	if ctx == nil {
		errors.Violation(errors.KindLifecycle, "Child.Paint", "child of %s painted outside Paint", c.scope.node.label)
	}
	ctx.paintChild(c.node(), offset)
}

// HitTest tests the child at position, given in the parent's local
// coordinates.
func (c Child) HitTest(result *HitTestResult, position graphics.Offset) bool {
	n := c.node()
	return n.HitTest(position.Sub(n.offset), result)
}

// Intrinsic answers an intrinsic size query for the child.
func (c Child) Intrinsic(dim IntrinsicDimension, extent float64) float64 {
	return c.scope.dryRun().intrinsic(c.node(), dim, extent)
}

// MinIntrinsicWidth is shorthand for Intrinsic(MinIntrinsicWidth, height).
func (c Child) MinIntrinsicWidth(height float64) float64 {
	return c.Intrinsic(MinIntrinsicWidth, height)
}

// MaxIntrinsicWidth is shorthand for Intrinsic(MaxIntrinsicWidth, height).
func (c Child) MaxIntrinsicWidth(height float64) float64 {
	return c.Intrinsic(MaxIntrinsicWidth, height)
}

// MinIntrinsicHeight is shorthand for Intrinsic(MinIntrinsicHeight, width).
func (c Child) MinIntrinsicHeight(width float64) float64 {
	return c.Intrinsic(MinIntrinsicHeight, width)
}

// MaxIntrinsicHeight is shorthand for Intrinsic(MaxIntrinsicHeight, width).
func (c Child) MaxIntrinsicHeight(width float64) float64 {
	return c.Intrinsic(MaxIntrinsicHeight, width)
}

// DryLayout returns the size the child would choose under constraints
// without laying it out.
func (c Child) DryLayout(constraints Constraints) graphics.Size {
	return c.scope.dryRun().dryLayout(c.node(), constraints)
}

// scope is what a child accessor can reach during one call on its parent.
type scope struct {
	node  *RenderNode
	run   *layoutRun // nil outside PerformLayout and intrinsic queries
	frame *frame     // nil outside PerformLayout
}

// dryRun returns a measuring run that never mutates render nodes.
func (s *scope) dryRun() *layoutRun {
	if s.run != nil && s.run.dry {
		return s.run
	}
	return &layoutRun{owner: s.node.owner, dry: true}
}

func (s *scope) measureEach(fn func(i int, child *RenderNode, run *layoutRun)) {
	run := s.dryRun()
	children := s.node.children
	if run.owner == nil || !run.owner.parallel || len(children) < parallelThreshold {
		for i, child := range children {
			fn(i, child, run)
		}
		return
	}
	run.owner.measureParallel(children, fn)
}

// makeAccessor builds the accessor of type A for node within s.
func makeAccessor[A Arity](s *scope) A {
	var a A
	switch p := any(&a).(type) {
	case *NoChildren:
	case *OneChild:
		p.Child = Child{scope: s}
	case *ManyChildren:
		p.scope = s
	}
	return a
}

// arityOf returns the tag for accessor type A.
func arityOf[A Arity]() ArityKind {
	var a A
	switch any(a).(type) {
	case NoChildren:
		return ArityNone
	case OneChild:
		return ArityOne
	default:
		return ArityMany
	}
}
