package layout

import (
	"image/color"
	"testing"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/raster"
)

func TestRepaintBoundaryLayerIsRetained(t *testing.T) {
	owner := NewPipelineOwner()
	col := &columnBox{}
	inner := newLeaf(10, 10)
	innerNode := New[NoChildren](inner)
	boundary := New[OneChild](&paddingBox{boundary: true})
	sibling := newLeaf(10, 10)
	siblingNode := New[NoChildren](sibling)
	root := attach(owner, New[ManyChildren](col), boundary, siblingNode)
	boundary.SetChildren([]*RenderNode{innerNode})

	owner.FlushLayout(root, Loose(graphics.Size{Width: 100, Height: 100}))
	first := owner.FlushPaint(root)

	if first == nil || !first.Boundary {
		t.Fatal("root did not produce a boundary layer")
	}
	retained := boundary.Layer()
	if retained == nil {
		t.Fatal("repaint boundary has no layer")
	}
	if first.Children[0] != retained {
		t.Fatal("root layer does not reference the boundary layer")
	}
	if inner.paints != 1 || sibling.paints != 1 {
		t.Fatalf("paints = %d/%d, want 1/1", inner.paints, sibling.paints)
	}

	// Repainting the root reuses the clean boundary's layer.
	siblingNode.MarkNeedsPaint()
	second := owner.FlushPaint(root)
	if second != first {
		t.Error("root layer identity changed")
	}
	if boundary.Layer() != retained || second.Children[0] != retained {
		t.Error("clean boundary layer was replaced")
	}
	if inner.paints != 1 || sibling.paints != 2 {
		t.Errorf("paints = %d/%d, want 1/2", inner.paints, sibling.paints)
	}

	// Repainting inside the boundary leaves the root alone.
	innerNode.MarkNeedsPaint()
	owner.FlushPaint(root)
	if col.paints != 2 {
		t.Errorf("root painted %d times, want 2", col.paints)
	}
	if inner.paints != 2 {
		t.Errorf("inner painted %d times, want 2", inner.paints)
	}
	if boundary.Layer() != retained || first.Children[0] != retained {
		t.Error("boundary layer was not repainted in place")
	}
	if owner.NeedsPaint() {
		t.Error("paint still scheduled")
	}
}

func TestPaintOffsetsAndEffects(t *testing.T) {
	owner := NewPipelineOwner()
	leaf := newLeaf(4, 4)
	leaf.color = graphics.ColorGreen
	fx := &effectBox{}
	root := attach(owner, New[ManyChildren](&columnBox{}), New[NoChildren](newLeaf(8, 8)), New[OneChild](fx))
	fx.node = root.ChildAt(1)
	fx.node.SetChildren([]*RenderNode{New[NoChildren](leaf)})

	owner.FlushLayout(root, Loose(graphics.Size{Width: 20, Height: 20}))
	layer := owner.FlushPaint(root)

	var effects []string
	layer.Walk(func(l *compositor.Layer, _ int) bool {
		if l.Effect != nil {
			effects = append(effects, l.Effect.String())
		}
		return true
	})
	want := []string{"translate(0,8)", "opacity(0.5)", "clip(0,0 2x2)"}
	if len(effects) != len(want) {
		t.Fatalf("effects = %v, want %v", effects, want)
	}
	for i := range want {
		if effects[i] != want[i] {
			t.Errorf("effect %d = %s, want %s", i, effects[i], want[i])
		}
	}

	canvas := raster.New(20, 20)
	compositor.New().Composite(layer, canvas)
	if px := canvas.Image().RGBAAt(1, 9); px.G == 0 || px.A == 255 {
		t.Errorf("pixel inside clip = %v, want translucent green", px)
	}
	if px := canvas.Image().RGBAAt(3, 11); px != (color.RGBA{}) {
		t.Errorf("pixel outside clip = %v, want transparent", px)
	}
}

// effectBox paints its child at half opacity, clipped to 2x2.
type effectBox struct {
	node *RenderNode
}

func (b *effectBox) PerformLayout(c Constraints, child OneChild) graphics.Size {
	return child.Layout(c)
}

func (b *effectBox) Paint(ctx *PaintContext, child OneChild) {
	ctx.PushOpacity(0.5, func(ctx *PaintContext) {
		ctx.PushClipRect(graphics.RectFromLTWH(0, 0, 2, 2), func(ctx *PaintContext) {
			child.Paint(ctx, child.Offset())
		})
	})
}

func TestPaintFailureRollsBack(t *testing.T) {
	h := captureErrors(t)
	owner := NewPipelineOwner()
	good := newLeaf(10, 10)
	good.color = graphics.ColorGreen
	bad := newLeaf(10, 10)
	bad.failPaint = true
	badNode := New[NoChildren](bad)
	root := attach(owner, New[ManyChildren](&columnBox{}), New[NoChildren](good), badNode)

	owner.FlushLayout(root, Loose(graphics.Size{Width: 100, Height: 100}))
	layer := owner.FlushPaint(root)

	if len(h.boundary) != 1 || h.boundary[0].Phase != "paint" {
		t.Fatalf("boundary errors = %v", h.boundary)
	}
	if !badNode.Failed() || !badNode.NeedsPaint() || !owner.NeedsPaint() {
		t.Error("failed paint must stay scheduled")
	}

	canvas := raster.New(20, 30)
	compositor.New().Composite(layer, canvas)
	if px := canvas.Image().RGBAAt(5, 5); px != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("sibling pixel = %v, want green", px)
	}
	if px := canvas.Image().RGBAAt(5, 15); px.B > 100 || px.R < 100 {
		t.Errorf("failed node pixel = %v, want the error box", px)
	}

	bad.failPaint = false
	layer = owner.FlushPaint(root)
	if badNode.Failed() {
		t.Error("node still failed after successful repaint")
	}
	canvas = raster.New(20, 30)
	compositor.New().Composite(layer, canvas)
	if px := canvas.Image().RGBAAt(5, 15); px != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("repainted pixel = %v, want blue", px)
	}
}

func TestRecorderRewindAcrossFinishedPictures(t *testing.T) {
	owner := NewPipelineOwner()
	layer := &compositor.Layer{}
	ctx := newPaintContext(owner, layer)
	compositor.DrawRect(ctx.Canvas(), graphics.RectFromLTWH(0, 0, 1, 1), graphics.Fill(graphics.ColorRed))
	m := ctx.mark()

	ctx.PushOpacity(0.5, func(ctx *PaintContext) {
		compositor.DrawRect(ctx.Canvas(), graphics.RectFromLTWH(0, 0, 1, 1), graphics.Fill(graphics.ColorBlue))
	})
	if len(layer.Children) != 2 {
		t.Fatalf("children = %d, want picture and opacity container", len(layer.Children))
	}

	ctx.rollback(m)
	ctx.finishPicture()
	if len(layer.Children) != 1 {
		t.Fatalf("children after rollback = %d, want 1", len(layer.Children))
	}
	if got := layer.Children[0].Picture.Len(); got != 3 {
		t.Errorf("restored picture has %d ops, want save, rect, restore", got)
	}
}
