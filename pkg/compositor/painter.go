// Package compositor holds the paint output of a frame: a tree of layers
// carrying recorded draw operations and effects, and the machinery that walks
// that tree into a backend [Painter].
//
// A backend only needs the five primitives of [Painter]. Rectangles, circles,
// lines and rounded rectangles are tessellated into meshes by the helpers in
// this package unless the backend implements the matching optional interface.
package compositor

import "github.com/go-drift/framecore/pkg/graphics"

// Painter is the minimal capability set a painting backend provides.
//
// Save and Restore bracket changes to the transform and clip stack. Transform
// pre-multiplies the current matrix. ClipRect intersects the current clip with
// rect, given in current local coordinates.
type Painter interface {
	Save()
	Restore()
	Transform(m graphics.Matrix)
	ClipRect(rect graphics.Rect)
	DrawMesh(mesh graphics.Mesh, paint graphics.Paint)
}

// RectPainter is implemented by backends that draw rectangles natively.
type RectPainter interface {
	DrawRect(rect graphics.Rect, paint graphics.Paint)
}

// RRectPainter is implemented by backends that draw rounded rectangles natively.
type RRectPainter interface {
	DrawRRect(rrect graphics.RRect, paint graphics.Paint)
}

// CirclePainter is implemented by backends that draw circles natively.
type CirclePainter interface {
	DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint)
}

// LinePainter is implemented by backends that draw line segments natively.
type LinePainter interface {
	DrawLine(p0, p1 graphics.Offset, paint graphics.Paint)
}

// AlphaLayerPainter is implemented by backends that can composite a group of
// draws with a uniform opacity. The group is closed by the matching Restore.
// Backends without it get per-draw alpha modulation, which differs only where
// draws inside the group overlap.
type AlphaLayerPainter interface {
	SaveLayerAlpha(bounds graphics.Rect, alpha float64)
}

// alphaPainter scales the alpha of every paint passed through it.
type alphaPainter struct {
	Painter
	alpha float64
}

func (p alphaPainter) DrawMesh(mesh graphics.Mesh, paint graphics.Paint) {
	paint.Color = paint.Color.ScaleAlpha(p.alpha)
	p.Painter.DrawMesh(mesh, paint)
}

// withAlpha returns a painter that draws through p at the given opacity.
// Nested calls multiply.
func withAlpha(p Painter, alpha float64) Painter {
	if ap, ok := p.(alphaPainter); ok {
		return alphaPainter{Painter: ap.Painter, alpha: ap.alpha * alpha}
	}
	return alphaPainter{Painter: p, alpha: alpha}
}
