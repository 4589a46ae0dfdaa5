package compositor

import (
	"math"

	"github.com/go-drift/framecore/pkg/graphics"
)

// circleSegments is the number of edges used to approximate a full circle.
const circleSegments = 48

// DrawRect draws rect through p, natively when p is a [RectPainter].
func DrawRect(p Painter, rect graphics.Rect, paint graphics.Paint) {
	if rp, ok := p.(RectPainter); ok {
		rp.DrawRect(rect, paint)
		return
	}
	if paint.Style == graphics.PaintStyleStroke {
		p.DrawMesh(StrokeRectMesh(rect, paint.StrokeWidth), fillOf(paint))
		return
	}
	p.DrawMesh(RectMesh(rect), paint)
}

// DrawRRect draws a rounded rectangle through p.
func DrawRRect(p Painter, rrect graphics.RRect, paint graphics.Paint) {
	if rp, ok := p.(RRectPainter); ok {
		rp.DrawRRect(rrect, paint)
		return
	}
	if rrect.Radius.X <= 0 || rrect.Radius.Y <= 0 {
		DrawRect(p, rrect.Rect, paint)
		return
	}
	outline := RRectOutline(rrect)
	if paint.Style == graphics.PaintStyleStroke {
		p.DrawMesh(StrokePolylineMesh(outline, paint.StrokeWidth, true), fillOf(paint))
		return
	}
	p.DrawMesh(graphics.Mesh{Vertices: outline}, paint)
}

// DrawCircle draws a circle through p.
func DrawCircle(p Painter, center graphics.Offset, radius float64, paint graphics.Paint) {
	if cp, ok := p.(CirclePainter); ok {
		cp.DrawCircle(center, radius, paint)
		return
	}
	if radius <= 0 {
		return
	}
	outline := CircleOutline(center, radius, circleSegments)
	if paint.Style == graphics.PaintStyleStroke {
		p.DrawMesh(StrokePolylineMesh(outline, paint.StrokeWidth, true), fillOf(paint))
		return
	}
	p.DrawMesh(graphics.Mesh{Vertices: outline}, paint)
}

// DrawLine draws a line segment through p. The paint's stroke width is used
// regardless of its style.
func DrawLine(p Painter, p0, p1 graphics.Offset, paint graphics.Paint) {
	if lp, ok := p.(LinePainter); ok {
		lp.DrawLine(p0, p1, paint)
		return
	}
	p.DrawMesh(StrokePolylineMesh([]graphics.Offset{p0, p1}, paint.StrokeWidth, false), fillOf(paint))
}

func fillOf(paint graphics.Paint) graphics.Paint {
	paint.Style = graphics.PaintStyleFill
	return paint
}

// RectMesh returns two triangles covering rect.
func RectMesh(rect graphics.Rect) graphics.Mesh {
	return graphics.Mesh{
		Vertices: []graphics.Offset{
			{X: rect.Left, Y: rect.Top},
			{X: rect.Right, Y: rect.Top},
			{X: rect.Right, Y: rect.Bottom},
			{X: rect.Left, Y: rect.Bottom},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// StrokeRectMesh returns the band of the given width centered on the edges of
// rect, as four non-overlapping quads.
func StrokeRectMesh(rect graphics.Rect, width float64) graphics.Mesh {
	if width <= 0 {
		width = 1
	}
	h := width / 2
	outer := graphics.Rect{Left: rect.Left - h, Top: rect.Top - h, Right: rect.Right + h, Bottom: rect.Bottom + h}
	inner := graphics.Rect{Left: rect.Left + h, Top: rect.Top + h, Right: rect.Right - h, Bottom: rect.Bottom - h}
	if inner.IsEmpty() {
		return RectMesh(outer)
	}
	bands := []graphics.Rect{
		{Left: outer.Left, Top: outer.Top, Right: outer.Right, Bottom: inner.Top},
		{Left: outer.Left, Top: inner.Bottom, Right: outer.Right, Bottom: outer.Bottom},
		{Left: outer.Left, Top: inner.Top, Right: inner.Left, Bottom: inner.Bottom},
		{Left: inner.Right, Top: inner.Top, Right: outer.Right, Bottom: inner.Bottom},
	}
	var mesh graphics.Mesh
	for _, b := range bands {
		appendMesh(&mesh, RectMesh(b))
	}
	return mesh
}

// CircleOutline returns segments points evenly spaced on a circle.
func CircleOutline(center graphics.Offset, radius float64, segments int) []graphics.Offset {
	if segments < 3 {
		segments = 3
	}
	out := make([]graphics.Offset, segments)
	for i := range out {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		out[i] = graphics.Offset{X: center.X + radius*cos, Y: center.Y + radius*sin}
	}
	return out
}

// RRectOutline returns the outline of a rounded rectangle as a closed polygon.
func RRectOutline(rrect graphics.RRect) []graphics.Offset {
	r := rrect.Rect
	rx := math.Min(rrect.Radius.X, r.Width()/2)
	ry := math.Min(rrect.Radius.Y, r.Height()/2)
	const perCorner = circleSegments / 4
	corners := [4]struct {
		cx, cy, start float64
	}{
		{r.Right - rx, r.Top + ry, -math.Pi / 2},
		{r.Right - rx, r.Bottom - ry, 0},
		{r.Left + rx, r.Bottom - ry, math.Pi / 2},
		{r.Left + rx, r.Top + ry, math.Pi},
	}
	out := make([]graphics.Offset, 0, 4*(perCorner+1))
	for _, c := range corners {
		for i := 0; i <= perCorner; i++ {
			sin, cos := math.Sincos(c.start + (math.Pi/2)*float64(i)/perCorner)
			out = append(out, graphics.Offset{X: c.cx + rx*cos, Y: c.cy + ry*sin})
		}
	}
	return out
}

// StrokePolylineMesh returns quads of the given width along each segment of
// points. When closed is true the last point connects back to the first.
func StrokePolylineMesh(points []graphics.Offset, width float64, closed bool) graphics.Mesh {
	if width <= 0 {
		width = 1
	}
	var mesh graphics.Mesh
	n := len(points)
	segments := n - 1
	if closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		a, b := points[i], points[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*width/2, dx/length*width/2
		appendMesh(&mesh, graphics.Mesh{
			Vertices: []graphics.Offset{
				{X: a.X + nx, Y: a.Y + ny},
				{X: b.X + nx, Y: b.Y + ny},
				{X: b.X - nx, Y: b.Y - ny},
				{X: a.X - nx, Y: a.Y - ny},
			},
			Indices: []uint32{0, 1, 2, 0, 2, 3},
		})
	}
	return mesh
}

// appendMesh appends src to dst, rebasing indices. Polygon meshes are fanned
// into indexed triangles.
func appendMesh(dst *graphics.Mesh, src graphics.Mesh) {
	base := uint32(len(dst.Vertices))
	dst.Vertices = append(dst.Vertices, src.Vertices...)
	if len(src.Indices) == 0 {
		for i := 1; i+1 < len(src.Vertices); i++ {
			dst.Indices = append(dst.Indices, base, base+uint32(i), base+uint32(i+1))
		}
		return
	}
	for _, idx := range src.Indices {
		dst.Indices = append(dst.Indices, base+idx)
	}
}
