package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// Transform paints its child with a matrix applied.
//
// The transform affects painting and hit testing only: layout is done as if
// the transform were absent, so siblings do not move out of the way of a
// scaled or translated child.
//
//	Transform{Transform: graphics.Scaling(2, 2), Child: icon}
//
// A zero Transform is treated as the identity.
type Transform struct {
	core.RenderObjectBase
	Transform graphics.Matrix
	Child     core.Widget
}

// ChildWidget returns the child widget.
func (t Transform) ChildWidget() core.Widget {
	return t.Child
}

func (t Transform) matrix() graphics.Matrix {
	if t.Transform == (graphics.Matrix{}) {
		return graphics.Identity()
	}
	return t.Transform
}

// CreateRenderObject creates the renderTransform.
func (t Transform) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](&renderTransform{matrix: t.matrix()})
}

// UpdateRenderObject updates the renderTransform.
func (t Transform) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	r := node.Box().(*renderTransform)
	if m := t.matrix(); r.matrix != m {
		r.matrix = m
		node.MarkNeedsPaint()
	}
}

type renderTransform struct {
	matrix graphics.Matrix
}

func (r *renderTransform) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	return c.Constrain(child.Layout(c))
}

func (r *renderTransform) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	if r.matrix.IsIdentity() {
		child.Paint(ctx, graphics.Offset{})
		return
	}
	ctx.PushTransform(r.matrix, func(ctx *layout.PaintContext) {
		child.Paint(ctx, graphics.Offset{})
	})
}

// HitTestChildren maps position into the child's untransformed space. A
// singular matrix collapses the child, which then cannot be hit.
func (r *renderTransform) HitTestChildren(result *layout.HitTestResult, position graphics.Offset, child layout.OneChild) bool {
	inverse, ok := r.matrix.Invert()
	if !ok {
		return false
	}
	return child.HitTest(result, inverse.Apply(position))
}

func (r *renderTransform) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, child layout.OneChild) float64 {
	return child.Intrinsic(dim, extent)
}
