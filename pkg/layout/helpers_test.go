package layout

import (
	"sync"
	"testing"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
)

// leafBox is a fixed-size leaf that paints a filled rectangle.
type leafBox struct {
	size       graphics.Size
	color      graphics.Color
	layouts    int
	paints     int
	failLayout bool
	failPaint  bool
	nonFinite  bool
	hittable   bool
	mu         sync.Mutex
}

func newLeaf(w, h float64) *leafBox {
	return &leafBox{size: graphics.Size{Width: w, Height: h}, color: graphics.ColorBlue, hittable: true}
}

func (b *leafBox) PerformLayout(c Constraints, _ NoChildren) graphics.Size {
	b.mu.Lock()
	b.layouts++
	b.mu.Unlock()
	if b.failLayout {
		panic("leaf layout failed")
	}
	if b.nonFinite {
		return graphics.Size{Width: Unbounded, Height: 1}
	}
	return c.Constrain(b.size)
}

func (b *leafBox) Paint(ctx *PaintContext, _ NoChildren) {
	b.paints++
	compositor.DrawRect(ctx.Canvas(), graphics.RectFromLTWH(0, 0, b.size.Width, b.size.Height), graphics.Fill(b.color))
	if b.failPaint {
		panic("leaf paint failed")
	}
}

func (b *leafBox) HitTestSelf(graphics.Offset) bool {
	return b.hittable
}

// columnBox stacks children vertically.
type columnBox struct {
	layouts int
	paints  int
}

func (b *columnBox) PerformLayout(c Constraints, children ManyChildren) graphics.Size {
	b.layouts++
	var w, y float64
	for _, child := range children.All() {
		s := child.Layout(Constraints{MaxWidth: c.MaxWidth, MaxHeight: Unbounded})
		child.SetOffset(graphics.Offset{Y: y})
		y += s.Height
		w = max(w, s.Width)
	}
	return c.Constrain(graphics.Size{Width: w, Height: y})
}

func (b *columnBox) Paint(ctx *PaintContext, children ManyChildren) {
	b.paints++
	for _, child := range children.All() {
		child.Paint(ctx, child.Offset())
	}
}

// stackBox places every child at the origin.
type stackBox struct{}

func (stackBox) PerformLayout(c Constraints, children ManyChildren) graphics.Size {
	size := c.Smallest()
	for _, child := range children.All() {
		s := child.Layout(c.Loosen())
		size.Width = max(size.Width, s.Width)
		size.Height = max(size.Height, s.Height)
	}
	return c.Constrain(size)
}

func (stackBox) Paint(ctx *PaintContext, children ManyChildren) {
	for _, child := range children.All() {
		child.Paint(ctx, child.Offset())
	}
}

// paddingBox insets its single child.
type paddingBox struct {
	pad      float64
	boundary bool
	layouts  int
	paints   int
}

func (b *paddingBox) PerformLayout(c Constraints, child OneChild) graphics.Size {
	b.layouts++
	s := child.Layout(c.Deflate(EdgeInsetsAll(b.pad)))
	child.SetOffset(graphics.Offset{X: b.pad, Y: b.pad})
	return c.Constrain(graphics.Size{Width: s.Width + 2*b.pad, Height: s.Height + 2*b.pad})
}

func (b *paddingBox) Paint(ctx *PaintContext, child OneChild) {
	b.paints++
	child.Paint(ctx, child.Offset())
}

func (b *paddingBox) IsRepaintBoundary() bool {
	return b.boundary
}

// recordingHandler captures boundary errors.
type recordingHandler struct {
	boundary []*errors.BoundaryError
}

func (h *recordingHandler) HandleError(*errors.DriftError) {}
func (h *recordingHandler) HandlePanic(*errors.PanicError) {}
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
		r := recover()
		inv, ok := errors.AsInvariant(r)
		if !ok {
			t.Fatalf("expected invariant violation, got %v", r)
		}
		if inv.Kind != kind {
			t.Fatalf("violation kind = %s, want %s (%v)", inv.Kind, kind, inv)
		}
	}()
	fn()
}

// attach builds root with children under a fresh owner.
func attach(owner *PipelineOwner, root *RenderNode, children ...*RenderNode) *RenderNode {
	root.Attach(owner)
	if root.Arity() != ArityNone {
		root.SetChildren(children)
	}
	return root
}
