// Package raster is a software painting backend that draws compositor output
// into an *image.RGBA using golang.org/x/image/vector.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/go-drift/framecore/pkg/graphics"
)

// Canvas implements compositor.Painter, compositor.RectPainter and
// compositor.AlphaLayerPainter over an RGBA image.
//
// Clips are kept as device-space rectangles; a clip under rotation is
// approximated by its bounding box.
type Canvas struct {
	dst   *image.RGBA
	ras   vector.Rasterizer
	state state
	stack []state

	meshes int
}

type state struct {
	m    f64.Aff3
	clip image.Rectangle
	// layer is non-nil for entries pushed by SaveLayerAlpha. Restoring such
	// an entry composites layer onto the target below at alpha.
	layer *image.RGBA
	alpha float64
}

// New returns a canvas drawing into a new transparent image of the given size.
func New(width, height int) *Canvas {
	return NewFor(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewFor returns a canvas drawing into dst.
func NewFor(dst *image.RGBA) *Canvas {
	return &Canvas{
		dst: dst,
		state: state{
			m:    toAff3(graphics.Identity()),
			clip: dst.Bounds(),
		},
	}
}

// Image returns the destination image.
func (c *Canvas) Image() *image.RGBA {
	return c.dst
}

// Meshes returns the number of meshes rasterized so far.
func (c *Canvas) Meshes() int {
	return c.meshes
}

// Clear fills the whole image with col, ignoring clip and transform.
func (c *Canvas) Clear(col graphics.Color) {
	draw.Draw(c.target(), c.target().Bounds(), image.NewUniform(col.NRGBA()), image.Point{}, draw.Src)
}

// EncodePNG writes the destination image as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.dst)
}

// target is the offscreen layer of the innermost open alpha group, or the
// destination image.
func (c *Canvas) target() *image.RGBA {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].layer != nil {
			return c.stack[i].layer
		}
	}
	return c.dst
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.state)
}

// SaveLayerAlpha starts an offscreen group that is composited at alpha by the
// matching Restore.
func (c *Canvas) SaveLayerAlpha(_ graphics.Rect, alpha float64) {
	c.Save()
	c.stack[len(c.stack)-1].layer = image.NewRGBA(c.dst.Bounds())
	c.stack[len(c.stack)-1].alpha = alpha
}

func (c *Canvas) Restore() {
	n := len(c.stack)
	if n == 0 {
		return
	}
	top := c.stack[n-1]
	c.stack = c.stack[:n-1]
	if top.layer != nil {
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(clamp01(top.alpha) * 255))})
		draw.DrawMask(c.target(), top.clip, top.layer, top.clip.Min, mask, image.Point{}, draw.Over)
	}
	top.layer = nil
	c.state = top
}

func (c *Canvas) Transform(m graphics.Matrix) {
	c.state.m = mul(c.state.m, toAff3(m))
}

func (c *Canvas) ClipRect(rect graphics.Rect) {
	b := fromAff3(c.state.m).TransformRect(rect)
	r := image.Rect(int(math.Floor(b.Left)), int(math.Floor(b.Top)), int(math.Ceil(b.Right)), int(math.Ceil(b.Bottom)))
	c.state.clip = c.state.clip.Intersect(r)
}

func (c *Canvas) DrawMesh(mesh graphics.Mesh, paint graphics.Paint) {
	clip := c.state.clip
	if clip.Empty() || paint.Color.Alpha() == 0 || len(mesh.Vertices) < 3 {
		return
	}
	c.ras.Reset(clip.Dx(), clip.Dy())
	c.ras.DrawOp = draw.Over
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	m := c.state.m
	drew := false
	mesh.Triangles(func(a, b, d graphics.Offset) {
		a, b, d = apply(m, a), apply(m, b), apply(m, d)
		c.ras.MoveTo(float32(a.X-ox), float32(a.Y-oy))
		c.ras.LineTo(float32(b.X-ox), float32(b.Y-oy))
		c.ras.LineTo(float32(d.X-ox), float32(d.Y-oy))
		c.ras.ClosePath()
		drew = true
	})
	if !drew {
		return
	}
	c.ras.Draw(c.target(), clip, image.NewUniform(paint.Color.NRGBA()), image.Point{})
	c.meshes++
}

// DrawRect fills axis-aligned rectangles without rasterizing when the current
// transform has no rotation. Strokes and rotated rectangles go through
// tessellation.
func (c *Canvas) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	m := c.state.m
	if paint.Style == graphics.PaintStyleStroke || m[1] != 0 || m[3] != 0 {
		c.drawRectMesh(rect, paint)
		return
	}
	b := fromAff3(m).TransformRect(rect)
	if b.Left != math.Trunc(b.Left) || b.Top != math.Trunc(b.Top) || b.Right != math.Trunc(b.Right) || b.Bottom != math.Trunc(b.Bottom) {
		c.drawRectMesh(rect, paint)
		return
	}
	r := image.Rect(int(b.Left), int(b.Top), int(b.Right), int(b.Bottom)).Intersect(c.state.clip)
	if r.Empty() || paint.Color.Alpha() == 0 {
		return
	}
	draw.Draw(c.target(), r, image.NewUniform(paint.Color.NRGBA()), image.Point{}, draw.Over)
	c.meshes++
}

func (c *Canvas) drawRectMesh(rect graphics.Rect, paint graphics.Paint) {
	if paint.Style == graphics.PaintStyleStroke {
		paint.Style = graphics.PaintStyleFill
		c.DrawMesh(strokeRect(rect, paint.StrokeWidth), paint)
		return
	}
	c.DrawMesh(graphics.Mesh{Vertices: []graphics.Offset{
		{X: rect.Left, Y: rect.Top}, {X: rect.Right, Y: rect.Top},
		{X: rect.Right, Y: rect.Bottom}, {X: rect.Left, Y: rect.Bottom},
	}}, paint)
}

// strokeRect returns the outline band of rect as a mesh of four quads.
func strokeRect(rect graphics.Rect, width float64) graphics.Mesh {
	if width <= 0 {
		width = 1
	}
	h := width / 2
	o := graphics.Rect{Left: rect.Left - h, Top: rect.Top - h, Right: rect.Right + h, Bottom: rect.Bottom + h}
	i := graphics.Rect{Left: rect.Left + h, Top: rect.Top + h, Right: rect.Right - h, Bottom: rect.Bottom - h}
	bands := []graphics.Rect{
		{Left: o.Left, Top: o.Top, Right: o.Right, Bottom: i.Top},
		{Left: o.Left, Top: i.Bottom, Right: o.Right, Bottom: o.Bottom},
		{Left: o.Left, Top: i.Top, Right: i.Left, Bottom: i.Bottom},
		{Left: i.Right, Top: i.Top, Right: o.Right, Bottom: i.Bottom},
	}
	var mesh graphics.Mesh
	for _, b := range bands {
		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices,
			graphics.Offset{X: b.Left, Y: b.Top}, graphics.Offset{X: b.Right, Y: b.Top},
			graphics.Offset{X: b.Right, Y: b.Bottom}, graphics.Offset{X: b.Left, Y: b.Bottom})
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

// toAff3 converts m to the row-major f64.Aff3 layout
// [A C E; B D F].
func toAff3(m graphics.Matrix) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

func fromAff3(a f64.Aff3) graphics.Matrix {
	return graphics.Matrix{A: a[0], C: a[1], E: a[2], B: a[3], D: a[4], F: a[5]}
}

// mul returns a × b (b applied first).
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func apply(m f64.Aff3, p graphics.Offset) graphics.Offset {
	return graphics.Offset{X: m[0]*p.X + m[1]*p.Y + m[2], Y: m[3]*p.X + m[4]*p.Y + m[5]}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
