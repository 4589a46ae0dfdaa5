package widgets

import (
	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// ColoredBox fills its bounds with Color and paints its child on top.
//
// ColoredBox sizes itself to its child. Without a child it takes the
// smallest size its constraints allow, so pair it with [SizedBox] or an
// [Expanded] to get a visible swatch:
//
//	SizedBox{Width: 40, Height: 40, Child: ColoredBox{Color: graphics.ColorRed}}
//
// ColoredBox is hit by positions inside its bounds even where the child is
// not.
type ColoredBox struct {
	core.RenderObjectBase
	Color graphics.Color
	Child core.Widget
}

// ChildWidget returns the child widget.
func (b ColoredBox) ChildWidget() core.Widget {
	return b.Child
}

// CreateRenderObject creates the renderColoredBox.
func (b ColoredBox) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](&renderColoredBox{color: b.Color})
}

// UpdateRenderObject updates the renderColoredBox.
func (b ColoredBox) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	r := node.Box().(*renderColoredBox)
	if r.color != b.Color {
		r.color = b.Color
		node.MarkNeedsPaint()
	}
}

type renderColoredBox struct {
	color graphics.Color
}

func (r *renderColoredBox) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	return c.Constrain(child.Layout(c))
}

func (r *renderColoredBox) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	if size := ctx.Size(); !size.IsEmpty() && r.color.Alpha() > 0 {
		compositor.DrawRect(ctx.Canvas(), graphics.RectFromLTWH(0, 0, size.Width, size.Height), graphics.Fill(r.color))
	}
	child.Paint(ctx, graphics.Offset{})
}

func (r *renderColoredBox) HitTestSelf(graphics.Offset) bool {
	return true
}
