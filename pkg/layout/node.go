package layout

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/tree"
)

// epochs is a process-wide counter so that a recycled element id paired with
// a fresh render node never reproduces an old cache fingerprint.
var epochs atomic.Uint64

func nextEpoch() uint64 {
	return epochs.Add(1)
}

// RenderNode is the heterogeneous storage form of a [RenderBox]. The set of
// node shapes is closed: a RenderNode can only be built by [New], which
// records the box's arity.
type RenderNode struct {
	impl  boxImpl
	label string
	owner *PipelineOwner

	id       tree.ID
	parent   *RenderNode
	children []*RenderNode
	depth    int

	size           graphics.Size
	constraints    Constraints
	hasConstraints bool
	offset         graphics.Offset
	parentData     any

	needsLayout bool
	needsPaint  bool
	epoch       uint64
	disposed    bool

	layoutFailed bool
	paintFailed  bool

	// layer is the retained layer of a repaint boundary.
	layer *compositor.Layer
}

// New wraps box in a render node. The node starts dirty for layout and
// paint.
func New[A Arity](box RenderBox[A]) *RenderNode {
	if box == nil {
		errors.Violation(errors.KindLifecycle, "layout.New", "nil render box")
	}
	return &RenderNode{
		impl:        &boxAdapter[A]{box: box},
		label:       typeLabel(box),
		needsLayout: true,
		needsPaint:  true,
		epoch:       nextEpoch(),
	}
}

func typeLabel(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Arity returns the node's arity tag.
func (n *RenderNode) Arity() ArityKind {
	return n.impl.arity()
}

// Box returns the wrapped render box.
func (n *RenderNode) Box() any {
	return n.impl.value()
}

// Label returns a short description used in logs and layer dumps.
func (n *RenderNode) Label() string {
	if n.id != tree.None {
		return n.label + n.id.String()
	}
	return n.label
}

// ID returns the identifier of the element that owns the node, or [tree.None].
func (n *RenderNode) ID() tree.ID {
	return n.id
}

// SetID records the identifier of the owning element. It is the node's
// identity in layout cache keys.
func (n *RenderNode) SetID(id tree.ID) {
	n.id = id
}

// Attach connects the node to owner. Children inherit the owner when they
// are attached below it.
func (n *RenderNode) Attach(owner *PipelineOwner) {
	n.owner = owner
	for _, c := range n.children {
		c.Attach(owner)
	}
	if owner != nil {
		if n.needsLayout {
			n.MarkNeedsLayout()
		}
		if n.needsPaint {
			n.MarkNeedsPaint()
		}
	}
}

// Owner returns the pipeline owner, or nil when detached.
func (n *RenderNode) Owner() *PipelineOwner {
	return n.owner
}

// Parent returns the parent node, or nil for a root or detached node.
func (n *RenderNode) Parent() *RenderNode {
	return n.parent
}

// Depth returns the number of render ancestors.
func (n *RenderNode) Depth() int {
	return n.depth
}

// ChildCount returns the number of children.
func (n *RenderNode) ChildCount() int {
	return len(n.children)
}

// ChildAt returns the child at index i.
func (n *RenderNode) ChildAt(i int) *RenderNode {
	if i < 0 || i >= len(n.children) {
		errors.Violation(errors.KindHierarchy, "RenderNode.ChildAt", "index %d out of range for %s with %d children", i, n.Label(), len(n.children))
	}
	return n.children[i]
}

// Size returns the size chosen by the most recent layout.
func (n *RenderNode) Size() graphics.Size {
	return n.size
}

// Constraints returns the constraints of the most recent layout.
func (n *RenderNode) Constraints() Constraints {
	return n.constraints
}

// Offset returns the position assigned by the parent.
func (n *RenderNode) Offset() graphics.Offset {
	return n.offset
}

// NeedsLayout reports whether the node must run layout before its size can
// be trusted.
func (n *RenderNode) NeedsLayout() bool {
	return n.needsLayout
}

// NeedsPaint reports whether the node must repaint.
func (n *RenderNode) NeedsPaint() bool {
	return n.needsPaint
}

// Failed reports whether the most recent layout or paint of the node failed.
func (n *RenderNode) Failed() bool {
	return n.layoutFailed || n.paintFailed
}

// Epoch returns the node's layout epoch. It changes every time the node is
// marked for layout.
func (n *RenderNode) Epoch() uint64 {
	return n.epoch
}

// Layer returns the retained layer of a repaint boundary, or nil.
func (n *RenderNode) Layer() *compositor.Layer {
	return n.layer
}

// IsRepaintBoundary reports whether the node paints into a retained layer.
// The root of a render tree always does.
func (n *RenderNode) IsRepaintBoundary() bool {
	if n.parent == nil {
		return true
	}
	rb, ok := n.impl.value().(RepaintBoundary)
	return ok && rb.IsRepaintBoundary()
}

// ParentData returns the layout metadata attached by a parent-data element.
func (n *RenderNode) ParentData() any {
	return n.parentData
}

// SetParentData replaces the layout metadata. A change marks the parent for
// layout since it consumes the data.
func (n *RenderNode) SetParentData(data any) {
	if reflect.DeepEqual(n.parentData, data) {
		return
	}
	n.parentData = data
	if n.parent != nil {
		n.parent.MarkNeedsLayout()
	}
}

func (n *RenderNode) setOffset(offset graphics.Offset) {
	if n.offset == offset {
		return
	}
	n.offset = offset
	if n.parent != nil {
		n.parent.MarkNeedsPaint()
	}
}

// SetChildren replaces the ordered children. The number of children must
// match the node's arity: none for leaves and exactly one for one-child
// nodes. Restructuring is only allowed outside the layout and paint phases.
func (n *RenderNode) SetChildren(children []*RenderNode) {
	if n.owner != nil && (n.owner.phase == PhaseLayout || n.owner.phase == PhasePaint) {
		errors.Violation(errors.KindLifecycle, "RenderNode.SetChildren", "%s restructured during %s", n.Label(), n.owner.phase)
	}
	switch n.Arity() {
	case ArityNone:
		if len(children) != 0 {
			errors.Violation(errors.KindHierarchy, "RenderNode.SetChildren", "leaf %s given %d children", n.Label(), len(children))
		}
	case ArityOne:
		if len(children) != 1 {
			errors.Violation(errors.KindHierarchy, "RenderNode.SetChildren", "single-child %s given %d children", n.Label(), len(children))
		}
	}
	if sameNodes(n.children, children) {
		return
	}
	for _, c := range children {
		if c == nil {
			errors.Violation(errors.KindHierarchy, "RenderNode.SetChildren", "nil child for %s", n.Label())
		}
		if c == n || c.isAncestorOf(n) {
			errors.Violation(errors.KindHierarchy, "RenderNode.SetChildren", "%s cannot adopt its ancestor %s", n.Label(), c.Label())
		}
		if c.parent != nil && c.parent != n && c.parent.hasChild(c) {
			errors.Violation(errors.KindHierarchy, "RenderNode.SetChildren", "%s is already a child of %s", c.Label(), c.parent.Label())
		}
	}
	for _, old := range n.children {
		if old.parent == n && !containsNode(children, old) {
			old.parent = nil
			old.setDepth(0)
		}
	}
	n.children = append(n.children[:0:0], children...)
	for _, c := range n.children {
		if c.parent != n {
			c.parent = n
			c.hasConstraints = false
			c.layer = nil
		}
		c.setDepth(n.depth + 1)
		if c.owner != n.owner {
			c.Attach(n.owner)
		}
	}
	n.MarkNeedsLayout()
	n.MarkNeedsPaint()
}

func (n *RenderNode) setDepth(depth int) {
	n.depth = depth
	for _, c := range n.children {
		c.setDepth(depth + 1)
	}
}

func (n *RenderNode) hasChild(c *RenderNode) bool {
	return containsNode(n.children, c)
}

func (n *RenderNode) isAncestorOf(other *RenderNode) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func containsNode(list []*RenderNode, n *RenderNode) bool {
	for _, c := range list {
		if c == n {
			return true
		}
	}
	return false
}

func sameNodes(a, b []*RenderNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MarkNeedsLayout records that the node's layout inputs changed. The node's
// epoch advances, and the mark travels up to the nearest relayout boundary:
// the root, or a node laid out under tight constraints whose size therefore
// cannot change. The boundary is scheduled with the owner.
func (n *RenderNode) MarkNeedsLayout() {
	for node := n; node != nil; node = node.parent {
		node.epoch = nextEpoch()
		node.needsLayout = true
		if node.isRelayoutBoundary() {
			if node.owner != nil {
				node.owner.scheduleLayout(node)
			}
			return
		}
	}
}

func (n *RenderNode) isRelayoutBoundary() bool {
	return n.parent == nil || (n.hasConstraints && n.constraints.IsTight())
}

// MarkNeedsPaint records that the node's paint output changed. The mark
// travels up to the nearest repaint boundary, which is scheduled with the
// owner. A change of boundary status also repaints the parent.
func (n *RenderNode) MarkNeedsPaint() {
	for node := n; node != nil; node = node.parent {
		node.needsPaint = true
		isBoundary := node.IsRepaintBoundary()
		if !isBoundary && node.layer != nil {
			node.layer = nil
			continue
		}
		if isBoundary {
			if node.owner != nil {
				node.owner.schedulePaint(node)
			}
			if node.layer == nil && node.parent != nil {
				// a new boundary needs a wrapper in its parent's layer
				node.parent.MarkNeedsPaint()
			}
			return
		}
	}
}

// Dispose detaches the node from its parent and owner and drops its
// retained layer. A disposed node is skipped by every pending flush, and its
// layout cache entries are dropped by the owner's next SweepCache.
func (n *RenderNode) Dispose() {
	if n.parent != nil && !n.parent.disposed && n.parent.hasChild(n) {
		errors.Violation(errors.KindHierarchy, "RenderNode.Dispose", "%s is still a child of %s", n.Label(), n.parent.Label())
	}
	n.disposed = true
	if n.owner != nil {
		n.owner.retire(n.id)
	}
	n.parent = nil
	n.layer = nil
	n.owner = nil
	if d, ok := n.impl.value().(interface{ Dispose() }); ok {
		d.Dispose()
	}
}

// Disposed reports whether Dispose was called.
func (n *RenderNode) Disposed() bool {
	return n.disposed
}

func (n *RenderNode) String() string {
	return fmt.Sprintf("%s(%s, %gx%g)", n.Label(), n.Arity(), n.size.Width, n.size.Height)
}

// boxImpl is the type-erased view of a RenderBox[A]. boxAdapter is its only
// implementation.
type boxImpl interface {
	arity() ArityKind
	value() any
	performLayout(s *scope, c Constraints) graphics.Size
	paint(ctx *PaintContext, s *scope)
	intrinsic(s *scope, dim IntrinsicDimension, extent float64) (float64, bool)
	hitTestChildren(s *scope, result *HitTestResult, position graphics.Offset) (hit, handled bool)
}

type boxAdapter[A Arity] struct {
	box RenderBox[A]
}

func (b *boxAdapter[A]) arity() ArityKind {
	return arityOf[A]()
}

func (b *boxAdapter[A]) value() any {
	return b.box
}

func (b *boxAdapter[A]) performLayout(s *scope, c Constraints) graphics.Size {
	return b.box.PerformLayout(c, makeAccessor[A](s))
}

func (b *boxAdapter[A]) paint(ctx *PaintContext, s *scope) {
	b.box.Paint(ctx, makeAccessor[A](s))
}

func (b *boxAdapter[A]) intrinsic(s *scope, dim IntrinsicDimension, extent float64) (float64, bool) {
	sizer, ok := b.box.(IntrinsicSizer[A])
	if !ok {
		return 0, false
	}
	return sizer.IntrinsicSize(dim, extent, makeAccessor[A](s)), true
}

func (b *boxAdapter[A]) hitTestChildren(s *scope, result *HitTestResult, position graphics.Offset) (bool, bool) {
	tester, ok := b.box.(HitTester[A])
	if !ok {
		return false, false
	}
	return tester.HitTestChildren(result, position, makeAccessor[A](s)), true
}
