package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// Opacity applies transparency to its child widget.
//
// # Creation Pattern
//
// Use struct literal:
//
//	widgets.Opacity{
//	    Opacity: 0.5,
//	    Child:   content,
//	}
//
// The Opacity value should be between 0.0 (fully transparent) and 1.0 (fully
// opaque). When Opacity is 0.0, the child is not painted at all. When
// Opacity is 1.0, the child is painted directly with no extra layer.
// Intermediate values push an opacity layer that the compositor blends as
// a group.
type Opacity struct {
	core.RenderObjectBase
	// Opacity is the transparency value (0.0 to 1.0).
	Opacity float64
	// Child is the widget to which opacity is applied.
	Child core.Widget
}

// ChildWidget returns the child widget.
func (o Opacity) ChildWidget() core.Widget {
	return o.Child
}

// CreateRenderObject creates the renderOpacity.
func (o Opacity) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](&renderOpacity{opacity: o.Opacity})
}

// UpdateRenderObject updates the renderOpacity.
func (o Opacity) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	r := node.Box().(*renderOpacity)
	if r.opacity != o.Opacity {
		r.opacity = o.Opacity
		node.MarkNeedsPaint()
	}
}

type renderOpacity struct {
	opacity float64
}

func (r *renderOpacity) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	return c.Constrain(child.Layout(c))
}

func (r *renderOpacity) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	switch {
	case r.opacity <= 0:
	case r.opacity >= 1:
		child.Paint(ctx, graphics.Offset{})
	default:
		ctx.PushOpacity(r.opacity, func(ctx *layout.PaintContext) {
			child.Paint(ctx, graphics.Offset{})
		})
	}
}

// HitTestChildren ignores fully transparent content.
func (r *renderOpacity) HitTestChildren(result *layout.HitTestResult, position graphics.Offset, child layout.OneChild) bool {
	if r.opacity <= 0 {
		return false
	}
	return child.HitTest(result, position)
}

func (r *renderOpacity) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, child layout.OneChild) float64 {
	return child.Intrinsic(dim, extent)
}
