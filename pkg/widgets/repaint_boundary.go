package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// RepaintBoundary isolates its subtree into a separate paint layer.
// This allows the subtree to be cached and reused when it doesn't change,
// which can significantly improve performance for static content next to
// frequently changing content.
//
// A paint change inside the boundary repaints only the boundary's layer;
// a paint change outside it reuses the retained layer as is.
type RepaintBoundary struct {
	core.RenderObjectBase
	Child core.Widget
}

// ChildWidget returns the child widget.
func (r RepaintBoundary) ChildWidget() core.Widget {
	return r.Child
}

// CreateRenderObject creates the renderRepaintBoundary.
func (r RepaintBoundary) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](renderRepaintBoundary{})
}

// UpdateRenderObject is a no-op; RepaintBoundary has no configuration.
func (r RepaintBoundary) UpdateRenderObject(core.BuildContext, *layout.RenderNode) {}

type renderRepaintBoundary struct{}

// IsRepaintBoundary returns true - this IS a repaint boundary.
func (renderRepaintBoundary) IsRepaintBoundary() bool {
	return true
}

func (renderRepaintBoundary) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	return c.Constrain(child.Layout(c))
}

func (renderRepaintBoundary) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	child.Paint(ctx, graphics.Offset{})
}

func (renderRepaintBoundary) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, child layout.OneChild) float64 {
	return child.Intrinsic(dim, extent)
}
