package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// SizedBox constrains its child to a specific width and/or height.
//
// A zero Width or Height leaves that axis to the incoming constraints. The
// requested size is clamped into the parent's constraints, so a SizedBox
// never overflows its parent.
//
//	SizedBox{Width: 120, Height: 48, Child: button}
//	SizedBox{Height: 16} // vertical gap
//
// Without a child, SizedBox takes the requested size and paints nothing.
type SizedBox struct {
	core.RenderObjectBase
	Width  float64
	Height float64
	Child  core.Widget
}

// ChildWidget returns the child widget.
func (s SizedBox) ChildWidget() core.Widget {
	return s.Child
}

// CreateRenderObject creates the renderSizedBox.
func (s SizedBox) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](&renderSizedBox{width: s.Width, height: s.Height})
}

// UpdateRenderObject updates the renderSizedBox.
func (s SizedBox) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	r := node.Box().(*renderSizedBox)
	if r.width != s.Width || r.height != s.Height {
		r.width, r.height = s.Width, s.Height
		node.MarkNeedsLayout()
	}
}

type renderSizedBox struct {
	width, height float64
}

func (r *renderSizedBox) childConstraints(c layout.Constraints) layout.Constraints {
	w, h := -1.0, -1.0
	if r.width > 0 {
		w = r.width
	}
	if r.height > 0 {
		h = r.height
	}
	return c.Tighten(w, h)
}

func (r *renderSizedBox) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	inner := r.childConstraints(c)
	size := child.Layout(inner)
	return inner.Constrain(size)
}

func (r *renderSizedBox) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	child.Paint(ctx, graphics.Offset{})
}

func (r *renderSizedBox) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, child layout.OneChild) float64 {
	if dim.IsWidth() && r.width > 0 {
		return r.width
	}
	if !dim.IsWidth() && r.height > 0 {
		return r.height
	}
	return child.Intrinsic(dim, extent)
}
