package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// ClipRect clips its child to its own bounds.
//
// ClipRect takes the child's size. Painting outside that size, for example
// by a child that overflows or is transformed, is cut off, and hit tests
// outside the bounds never reach the child.
//
//	ClipRect{Child: Transform{Transform: graphics.Translation(40, 0), Child: banner}}
type ClipRect struct {
	core.RenderObjectBase
	Child core.Widget
}

// ChildWidget returns the child widget.
func (c ClipRect) ChildWidget() core.Widget {
	return c.Child
}

// CreateRenderObject creates the renderClipRect.
func (c ClipRect) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](renderClipRect{})
}

// UpdateRenderObject is a no-op; ClipRect has no configuration.
func (c ClipRect) UpdateRenderObject(core.BuildContext, *layout.RenderNode) {}

type renderClipRect struct{}

func (renderClipRect) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	return c.Constrain(child.Layout(c))
}

func (renderClipRect) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	size := ctx.Size()
	if size.IsEmpty() {
		return
	}
	ctx.PushClipRect(graphics.RectFromLTWH(0, 0, size.Width, size.Height), func(ctx *layout.PaintContext) {
		child.Paint(ctx, graphics.Offset{})
	})
}

func (renderClipRect) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, child layout.OneChild) float64 {
	return child.Intrinsic(dim, extent)
}
