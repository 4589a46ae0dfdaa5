package core

import (
	"testing"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/tree"
)

// harness drives an element tree through build frames.
type harness struct {
	owner    *BuildOwner
	pipeline *layout.PipelineOwner
	elements *ElementTree
}

func newHarness() *harness {
	owner := NewBuildOwner()
	pipeline := layout.NewPipelineOwner()
	return &harness{owner: owner, pipeline: pipeline, elements: NewElementTree(owner, pipeline)}
}

// pump sets root and runs one build frame.
func (h *harness) pump(root Widget) tree.ID {
	h.owner.BuildScope(func() {
		h.elements.SetRoot(root)
		h.owner.FlushBuild()
	})
	h.owner.LockState(h.owner.FinalizeTree)
	return h.elements.Root()
}

// frame runs one build frame without touching the root.
func (h *harness) frame() {
	h.owner.BuildScope(h.owner.FlushBuild)
	h.owner.LockState(h.owner.FinalizeTree)
}

func (h *harness) layout(w, ht float64) {
	h.pipeline.FlushLayout(h.elements.RootRenderNode(), layout.Loose(graphics.Size{Width: w, Height: ht}))
}

// find returns the first element, in depth-first order, whose description
// satisfies pred.
func (h *harness) find(pred func(Widget) bool) *Element {
	if h.elements.Root() == tree.None {
		return nil
	}
	for id := range h.elements.Descendants(h.elements.Root()) {
		e, _ := h.elements.Get(id)
		if pred(e.Widget()) {
			return e
		}
	}
	return nil
}

func (h *harness) named(name string) *Element {
	return h.find(func(w Widget) bool {
		p, ok := w.(tracer)
		return ok && p.name == name
	})
}

// leaf is a fixed-size render leaf.
type leaf struct {
	RenderObjectBase
	w, h float64
}

func (l leaf) CreateRenderObject(BuildContext) *layout.RenderNode {
	return layout.New[layout.NoChildren](&leafBox{size: graphics.Size{Width: l.w, Height: l.h}})
}

func (l leaf) UpdateRenderObject(_ BuildContext, node *layout.RenderNode) {
	b := node.Box().(*leafBox)
	if size := (graphics.Size{Width: l.w, Height: l.h}); b.size != size {
		b.size = size
		node.MarkNeedsLayout()
	}
}

// keyedLeaf is a leaf with an explicit key.
type keyedLeaf struct {
	key string
	w   float64
}

func (l keyedLeaf) Key() any { return l.key }

func (l keyedLeaf) CreateRenderObject(ctx BuildContext) *layout.RenderNode {
	return leaf{w: l.w, h: 1}.CreateRenderObject(ctx)
}

func (l keyedLeaf) UpdateRenderObject(ctx BuildContext, node *layout.RenderNode) {
	leaf{w: l.w, h: 1}.UpdateRenderObject(ctx, node)
}

type leafBox struct {
	size graphics.Size
}

func (b *leafBox) PerformLayout(c layout.Constraints, _ layout.NoChildren) graphics.Size {
	return c.Constrain(b.size)
}

func (b *leafBox) Paint(*layout.PaintContext, layout.NoChildren) {}

// column stacks its children vertically.
type column struct {
	RenderObjectBase
	children []Widget
}

func (c column) ChildWidgets() []Widget { return c.children }

func (column) CreateRenderObject(BuildContext) *layout.RenderNode {
	return layout.New[layout.ManyChildren](columnBox{})
}

func (column) UpdateRenderObject(BuildContext, *layout.RenderNode) {}

type columnBox struct{}

func (columnBox) PerformLayout(c layout.Constraints, children layout.ManyChildren) graphics.Size {
	var w, y float64
	for _, child := range children.All() {
		s := child.Layout(layout.Constraints{MaxWidth: c.MaxWidth, MaxHeight: layout.Unbounded})
		child.SetOffset(graphics.Offset{Y: y})
		y += s.Height
		w = max(w, s.Width)
	}
	return c.Constrain(graphics.Size{Width: w, Height: y})
}

func (columnBox) Paint(ctx *layout.PaintContext, children layout.ManyChildren) {
	for _, child := range children.All() {
		child.Paint(ctx, child.Offset())
	}
}

// wrap is a one-child render widget that sizes to its child.
type wrap struct {
	RenderObjectBase
	child Widget
}

func (w wrap) ChildWidget() Widget { return w.child }

func (wrap) CreateRenderObject(BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](wrapBox{})
}

func (wrap) UpdateRenderObject(BuildContext, *layout.RenderNode) {}

type wrapBox struct{}

func (wrapBox) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	return child.Layout(c)
}

func (wrapBox) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	child.Paint(ctx, child.Offset())
}

// tracer is a composition that counts its builds and optionally panics.
type tracer struct {
	StatelessBase
	name  string
	log   *[]string
	fail  *bool
	child Widget
}

func (p tracer) Build(BuildContext) Widget {
	if p.log != nil {
		*p.log = append(*p.log, p.name)
	}
	if p.fail != nil && *p.fail {
		panic("tracer " + p.name + " failed")
	}
	return p.child
}

// counter is a stateful widget rendering its count as a leaf width.
type counter struct {
	StatefulBase
	log *[]string
}

func (c counter) CreateState() State { return &counterState{} }

type counterState struct {
	StateBase
	count *Managed[int]
}

func (s *counterState) logf(event string) {
	if w, ok := s.Element().Widget().(counter); ok && w.log != nil {
		*w.log = append(*w.log, event)
	}
}

func (s *counterState) InitState() {
	s.count = NewManaged(s, 1)
	s.logf("init")
}

func (s *counterState) DidUpdateWidget(StatefulWidget) { s.logf("update") }

func (s *counterState) Dispose() {
	s.logf("dispose")
	s.StateBase.Dispose()
}

func (s *counterState) Build(BuildContext) Widget {
	s.logf("build")
	return leaf{w: float64(s.count.Value()), h: 1}
}

// tag attaches parent data to its child's render node.
type tag struct {
	data  string
	child Widget
}

func (tag) Key() any              { return nil }
func (t tag) ChildWidget() Widget { return t.child }
func (t tag) ParentData() any     { return t.data }

// recordingHandler captures boundary errors.
type recordingHandler struct {
	boundary []*errors.BoundaryError
	panics   []*errors.PanicError
}

func (h *recordingHandler) HandleError(*errors.DriftError) {}
func (h *recordingHandler) HandlePanic(err *errors.PanicError) {
	h.panics = append(h.panics, err)
}
func (h *recordingHandler) HandleBoundaryError(err *errors.BoundaryError) {
	h.boundary = append(h.boundary, err)
}

func captureErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

func expectViolation(t *testing.T, kind errors.ErrorKind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		inv, ok := errors.AsInvariant(recover())
		if !ok {
			t.Fatalf("expected %s violation", kind)
		}
		if inv.Kind != kind {
			t.Fatalf("violation kind = %s, want %s (%v)", inv.Kind, kind, inv)
		}
	}()
	fn()
}

func renderIDs(n *layout.RenderNode) []tree.ID {
	ids := make([]tree.ID, n.ChildCount())
	for i := range ids {
		ids[i] = n.ChildAt(i).ID()
	}
	return ids
}
