// Package testbed provides internal test widgets for the testing framework.
package testbed

import (
	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// LayoutBox is a fixed-size colored leaf for layout testing.
type LayoutBox struct {
	core.RenderObjectBase
	Width  float64
	Height float64
	Color  graphics.Color
}

func (b LayoutBox) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.NoChildren](&renderLayoutBox{
		width:  b.Width,
		height: b.Height,
		color:  b.Color,
	})
}

func (b LayoutBox) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	box := node.Box().(*renderLayoutBox)
	if box.width != b.Width || box.height != b.Height {
		box.width, box.height = b.Width, b.Height
		node.MarkNeedsLayout()
	}
	if box.color != b.Color {
		box.color = b.Color
		node.MarkNeedsPaint()
	}
}

type renderLayoutBox struct {
	width  float64
	height float64
	color  graphics.Color
}

func (r *renderLayoutBox) PerformLayout(c layout.Constraints, _ layout.NoChildren) graphics.Size {
	return c.Constrain(graphics.Size{Width: r.width, Height: r.height})
}

func (r *renderLayoutBox) Paint(ctx *layout.PaintContext, _ layout.NoChildren) {
	if r.color != 0 {
		size := ctx.Size()
		compositor.DrawRect(ctx.Canvas(), graphics.RectFromLTWH(0, 0, size.Width, size.Height), graphics.Fill(r.color))
	}
}

func (r *renderLayoutBox) HitTestSelf(graphics.Offset) bool {
	return true
}
