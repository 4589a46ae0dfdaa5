package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// Padding adds empty space around its child widget.
//
// The child is constrained to the remaining space after padding is applied.
// If no child is provided, Padding takes the size of the padding itself.
//
// Use [layout.EdgeInsets] helpers to create padding values:
//
//	Padding{Padding: layout.EdgeInsetsAll(16), Child: child}
//	Padding{Padding: layout.EdgeInsetsSymmetric(24, 12), Child: child}
type Padding struct {
	core.RenderObjectBase
	Padding layout.EdgeInsets
	Child   core.Widget
}

// ChildWidget returns the child widget.
func (p Padding) ChildWidget() core.Widget {
	return p.Child
}

// CreateRenderObject creates the renderPadding.
func (p Padding) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](&renderPadding{padding: p.Padding})
}

// UpdateRenderObject updates the renderPadding.
func (p Padding) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	r := node.Box().(*renderPadding)
	if r.padding != p.Padding {
		r.padding = p.Padding
		node.MarkNeedsLayout()
	}
}

type renderPadding struct {
	padding layout.EdgeInsets
}

func (r *renderPadding) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	childSize := child.Layout(c.Deflate(r.padding))
	child.SetOffset(r.padding.TopLeft())
	return c.Constrain(graphics.Size{
		Width:  childSize.Width + r.padding.Horizontal(),
		Height: childSize.Height + r.padding.Vertical(),
	})
}

func (r *renderPadding) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	child.Paint(ctx, child.Offset())
}

func (r *renderPadding) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, child layout.OneChild) float64 {
	h, v := r.padding.Horizontal(), r.padding.Vertical()
	if dim.IsWidth() {
		return child.Intrinsic(dim, max(0, extent-v)) + h
	}
	return child.Intrinsic(dim, max(0, extent-h)) + v
}
