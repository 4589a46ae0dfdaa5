package widgets

import (
	"math"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// Alignment is a point within a rectangle. X and Y range from -1 (left or
// top edge) to 1 (right or bottom edge); (0, 0) is the center.
type Alignment struct {
	X, Y float64
}

// Common alignments.
var (
	AlignmentTopLeft     = Alignment{X: -1, Y: -1}
	AlignmentTopCenter   = Alignment{X: 0, Y: -1}
	AlignmentTopRight    = Alignment{X: 1, Y: -1}
	AlignmentCenterLeft  = Alignment{X: -1, Y: 0}
	AlignmentCenter      = Alignment{X: 0, Y: 0}
	AlignmentCenterRight = Alignment{X: 1, Y: 0}
	AlignmentBottomLeft  = Alignment{X: -1, Y: 1}
	AlignmentBottom      = Alignment{X: 0, Y: 1}
	AlignmentBottomRight = Alignment{X: 1, Y: 1}
)

// WithinRect returns the top-left offset that places a box of size child at
// this alignment inside rect.
func (a Alignment) WithinRect(rect graphics.Rect, child graphics.Size) graphics.Offset {
	freeX := rect.Width() - child.Width
	freeY := rect.Height() - child.Height
	return graphics.Offset{
		X: rect.Left + freeX*(a.X+1)/2,
		Y: rect.Top + freeY*(a.Y+1)/2,
	}
}

// Align positions its child within itself according to the given alignment.
//
// Align expands to fill available space, then positions the child within
// that space according to the Alignment field. The child is given loose
// constraints, allowing it to size itself. On an unbounded axis Align
// shrinks to the child instead.
//
// Example:
//
//	Align{
//	    Alignment: AlignmentBottomRight,
//	    Child:     badge,
//	}
//
// See also [Center], which is Align with [AlignmentCenter].
type Align struct {
	core.RenderObjectBase
	Child     core.Widget
	Alignment Alignment
}

// ChildWidget returns the child widget.
func (a Align) ChildWidget() core.Widget {
	return a.Child
}

// CreateRenderObject creates the renderAlign.
func (a Align) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](&renderAlign{alignment: a.Alignment})
}

// UpdateRenderObject updates the renderAlign.
func (a Align) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	r := node.Box().(*renderAlign)
	if r.alignment != a.Alignment {
		r.alignment = a.Alignment
		node.MarkNeedsLayout()
	}
}

// Center centers its child within itself.
//
//	Center{Child: content}
type Center struct {
	core.RenderObjectBase
	Child core.Widget
}

// ChildWidget returns the child widget.
func (c Center) ChildWidget() core.Widget {
	return c.Child
}

// CreateRenderObject creates a centered renderAlign.
func (c Center) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](&renderAlign{alignment: AlignmentCenter})
}

// UpdateRenderObject is a no-op; Center has no configuration.
func (c Center) UpdateRenderObject(core.BuildContext, *layout.RenderNode) {}

type renderAlign struct {
	alignment Alignment
}

func (r *renderAlign) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	childSize := child.Layout(c.Loosen())
	width, height := c.MaxWidth, c.MaxHeight
	if math.IsInf(width, 1) {
		width = childSize.Width
	}
	if math.IsInf(height, 1) {
		height = childSize.Height
	}
	size := c.Constrain(graphics.Size{Width: width, Height: height})
	child.SetOffset(r.alignment.WithinRect(graphics.RectFromLTWH(0, 0, size.Width, size.Height), childSize))
	return size
}

func (r *renderAlign) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	child.Paint(ctx, child.Offset())
}

func (r *renderAlign) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, child layout.OneChild) float64 {
	return child.Intrinsic(dim, extent)
}
