package layout

import (
	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
)

// errorColor fills nodes whose layout or paint failed.
var errorColor = graphics.RGBA(0xd3, 0x2f, 0x2f, 0.6)

// PaintContext records the paint output of one repaint boundary.
//
// Drawing goes to [PaintContext.Canvas] in the local coordinates of the node
// being painted. The canvas may change after a child is painted or a layer
// is pushed, so Save and Restore calls must be balanced between those points
// and clipping of children must use [PaintContext.PushClipRect].
type PaintContext struct {
	owner *PipelineOwner
	layer *compositor.Layer
	rec   *compositor.Recorder

	// node is the node whose Paint is running.
	node *RenderNode
	// origin is the painted node's position in layer coordinates.
	origin graphics.Offset
	// recOrigin is the translation the recorder currently has applied.
	recOrigin graphics.Offset
	recSaved  bool
}

func newPaintContext(owner *PipelineOwner, layer *compositor.Layer) *PaintContext {
	return &PaintContext{owner: owner, layer: layer, rec: &compositor.Recorder{}}
}

// Size returns the laid out size of the node being painted.
func (ctx *PaintContext) Size() graphics.Size {
	if ctx.node == nil {
		return graphics.Size{}
	}
	return ctx.node.size
}

// Canvas returns the painter for the node being painted.
func (ctx *PaintContext) Canvas() compositor.Painter {
	if !ctx.recSaved || ctx.recOrigin != ctx.origin {
		if ctx.recSaved {
			ctx.rec.Restore()
		}
		ctx.rec.Save()
		if !ctx.origin.IsZero() {
			ctx.rec.Translate(ctx.origin.X, ctx.origin.Y)
		}
		ctx.recSaved, ctx.recOrigin = true, ctx.origin
	}
	return ctx.rec
}

// finishPicture closes the current recording into a picture layer.
func (ctx *PaintContext) finishPicture() {
	if ctx.recSaved {
		ctx.rec.Restore()
		ctx.recSaved = false
	}
	if ctx.rec.Empty() {
		return
	}
	pic := ctx.rec.Finish()
	if pic.Bounds().IsEmpty() {
		return
	}
	ctx.layer.Append(compositor.NewPictureLayer(pic))
}

// PushOpacity paints fn's content composited at alpha.
func (ctx *PaintContext) PushOpacity(alpha float64, fn func(ctx *PaintContext)) {
	ctx.push(compositor.Opacity{Alpha: alpha}, fn)
}

// PushClipRect paints fn's content clipped to rect, in local coordinates.
func (ctx *PaintContext) PushClipRect(rect graphics.Rect, fn func(ctx *PaintContext)) {
	ctx.push(compositor.Clip{Rect: rect}, fn)
}

// PushTransform paints fn's content transformed by m, in local coordinates.
func (ctx *PaintContext) PushTransform(m graphics.Matrix, fn func(ctx *PaintContext)) {
	ctx.push(compositor.Transform{Matrix: m}, fn)
}

func (ctx *PaintContext) push(effect compositor.Effect, fn func(ctx *PaintContext)) {
	ctx.finishPicture()
	container := compositor.NewContainer(effect)
	if ctx.origin.IsZero() {
		ctx.layer.Append(container)
	} else {
		ctx.layer.Append(compositor.NewContainer(
			compositor.Transform{Matrix: graphics.Translation(ctx.origin.X, ctx.origin.Y)}, container))
	}
	outer, origin := ctx.layer, ctx.origin
	defer func() {
		ctx.layer, ctx.origin = outer, origin
	}()
	ctx.layer, ctx.origin = container, graphics.Offset{}
	fn(ctx)
	ctx.finishPicture()
}

// paintChild paints child at offset from the node being painted. A repaint
// boundary contributes its retained layer, repainted first if dirty.
func (ctx *PaintContext) paintChild(child *RenderNode, offset graphics.Offset) {
	pos := ctx.origin.Add(offset)
	if !child.IsRepaintBoundary() {
		ctx.paintNode(child, pos)
		return
	}
	ctx.finishPicture()
	if child.needsPaint || child.layer == nil {
		ctx.owner.repaintBoundary(child)
	}
	if pos.IsZero() {
		ctx.layer.Append(child.layer)
		return
	}
	ctx.layer.Append(compositor.NewContainer(
		compositor.Transform{Matrix: graphics.Translation(pos.X, pos.Y)}, child.layer))
}

// repaintBoundary records n's subtree into n's retained layer. The layer is
// cleared in place so that every parent layer referencing it stays valid.
func (p *PipelineOwner) repaintBoundary(n *RenderNode) {
	if n.layer == nil {
		n.layer = &compositor.Layer{Boundary: true}
	}
	n.layer.Owner = n.Label()
	n.layer.Children = nil
	ctx := newPaintContext(p, n.layer)
	ctx.paintNode(n, graphics.Offset{})
	ctx.finishPicture()
}

type paintMark struct {
	layer     *compositor.Layer
	children  int
	rec       compositor.Mark
	recSaved  bool
	recOrigin graphics.Offset
}

func (ctx *PaintContext) mark() paintMark {
	return paintMark{
		layer:     ctx.layer,
		children:  len(ctx.layer.Children),
		rec:       ctx.rec.Mark(),
		recSaved:  ctx.recSaved,
		recOrigin: ctx.recOrigin,
	}
}

// rollback drops everything painted since m.
func (ctx *PaintContext) rollback(m paintMark) {
	ctx.layer = m.layer
	clear(ctx.layer.Children[m.children:])
	ctx.layer.Children = ctx.layer.Children[:m.children]
	ctx.rec.Rewind(m.rec)
	ctx.recSaved, ctx.recOrigin = m.recSaved, m.recOrigin
}

// paintNode paints n at origin. A failure inside the box's Paint discards
// its partial output, paints an error box instead and leaves n dirty so the
// next frame tries again.
func (ctx *PaintContext) paintNode(n *RenderNode, origin graphics.Offset) {
	saved, savedNode := ctx.origin, ctx.node
	ctx.origin, ctx.node = origin, n
	defer func() { ctx.origin, ctx.node = saved, savedNode }()

	n.needsPaint = false
	if n.layoutFailed {
		ctx.paintError(n)
		return
	}
	m := ctx.mark()
	if failure := ctx.tryPaint(n); failure != nil {
		ctx.rollback(m)
		ctx.origin = origin
		ctx.paintError(n)
		n.paintFailed = true
		ctx.owner.stats.Failures++
		errors.ReportBoundaryError(failure)
		n.MarkNeedsPaint()
		return
	}
	n.paintFailed = false
	ctx.owner.stats.Paints++
}

func (ctx *PaintContext) tryPaint(n *RenderNode) (failure *errors.BoundaryError) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := errors.AsInvariant(rec); ok {
				panic(rec)
			}
			failure = &errors.BoundaryError{
				Phase:      "paint",
				Widget:     n.label,
				Element:    n.id.String(),
				Recovered:  rec,
				StackTrace: errors.CaptureStack(),
			}
		}
	}()
	n.impl.paint(ctx, &scope{node: n})
	return nil
}

func (ctx *PaintContext) paintError(n *RenderNode) {
	if n.size.IsEmpty() {
		return
	}
	rect := graphics.RectFromOffsetSize(graphics.Offset{}, n.size)
	canvas := ctx.Canvas()
	compositor.DrawRect(canvas, rect, graphics.Fill(errorColor))
	compositor.DrawRect(canvas, rect, graphics.Stroke(graphics.ColorRed, 1))
}
