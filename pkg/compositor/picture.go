package compositor

import "github.com/go-drift/framecore/pkg/graphics"

// Picture is an immutable list of drawing operations. It can be replayed onto
// any [Painter].
type Picture struct {
	ops    []drawOp
	bounds graphics.Rect
}

// Replay executes the recorded operations on p.
func (pic *Picture) Replay(p Painter) {
	if pic == nil {
		return
	}
	for _, op := range pic.ops {
		op.execute(p)
	}
}

// Len returns the number of recorded operations.
func (pic *Picture) Len() int {
	if pic == nil {
		return 0
	}
	return len(pic.ops)
}

// Bounds returns the union of the drawn geometry in the picture's own
// coordinate space, clipped by any clip recorded before each draw.
func (pic *Picture) Bounds() graphics.Rect {
	if pic == nil {
		return graphics.Rect{}
	}
	return pic.bounds
}

// Recorder records drawing commands into a [Picture]. It implements [Painter]
// and every optional painter interface, so higher-level shapes survive
// recording and reach backends that draw them natively.
//
// The zero value is ready to record.
type Recorder struct {
	ops    []drawOp
	bounds graphics.Rect
	state  recordState
	stack  []recordState
}

type recordState struct {
	matrix  graphics.Matrix
	clip    graphics.Rect
	clipped bool
}

// Finish returns the recorded picture and resets the recorder. The picture
// takes ownership of the recorded operations.
func (r *Recorder) Finish() *Picture {
	pic := &Picture{ops: r.ops, bounds: r.bounds}
	r.ops = nil
	r.bounds = graphics.Rect{}
	r.state = recordState{}
	r.stack = nil
	return pic
}

// Mark is a position in a recording that [Recorder.Rewind] can return to.
type Mark struct {
	ops    []drawOp
	bounds graphics.Rect
	state  recordState
	stack  []recordState
}

// Mark captures the current position. Pictures finished after the mark do
// not affect it.
func (r *Recorder) Mark() Mark {
	return Mark{
		ops:    r.ops[:len(r.ops):len(r.ops)],
		bounds: r.bounds,
		state:  r.state,
		stack:  append([]recordState(nil), r.stack...),
	}
}

// Rewind discards everything recorded since m was taken, including
// operations already handed to a picture by Finish.
func (r *Recorder) Rewind(m Mark) {
	r.ops = m.ops
	r.bounds = m.bounds
	r.state = m.state
	r.stack = append(r.stack[:0:0], m.stack...)
}

// Empty reports whether nothing has been recorded since the last Finish.
func (r *Recorder) Empty() bool {
	return len(r.ops) == 0
}

func (r *Recorder) matrix() graphics.Matrix {
	if r.state.matrix == (graphics.Matrix{}) {
		return graphics.Identity()
	}
	return r.state.matrix
}

func (r *Recorder) grow(local graphics.Rect) {
	b := r.matrix().TransformRect(local)
	if r.state.clipped {
		b = b.Intersect(r.state.clip)
	}
	r.bounds = r.bounds.Union(b)
}

func (r *Recorder) Save() {
	r.stack = append(r.stack, r.state)
	r.ops = append(r.ops, opSave{})
}

func (r *Recorder) Restore() {
	if n := len(r.stack); n > 0 {
		r.state = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
	r.ops = append(r.ops, opRestore{})
}

func (r *Recorder) Transform(m graphics.Matrix) {
	r.state.matrix = r.matrix().Multiply(m)
	r.ops = append(r.ops, opTransform{m: m})
}

// Translate is shorthand for Transform(graphics.Translation(dx, dy)).
func (r *Recorder) Translate(dx, dy float64) {
	r.Transform(graphics.Translation(dx, dy))
}

func (r *Recorder) ClipRect(rect graphics.Rect) {
	clip := r.matrix().TransformRect(rect)
	if r.state.clipped {
		clip = clip.Intersect(r.state.clip)
	}
	r.state.clip = clip
	r.state.clipped = true
	r.ops = append(r.ops, opClipRect{rect: rect})
}

func (r *Recorder) DrawMesh(mesh graphics.Mesh, paint graphics.Paint) {
	r.grow(mesh.Bounds())
	r.ops = append(r.ops, opMesh{mesh: mesh, paint: paint})
}

func (r *Recorder) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	r.grow(strokeBounds(rect, paint))
	r.ops = append(r.ops, opRect{rect: rect, paint: paint})
}

func (r *Recorder) DrawRRect(rrect graphics.RRect, paint graphics.Paint) {
	r.grow(strokeBounds(rrect.Rect, paint))
	r.ops = append(r.ops, opRRect{rrect: rrect, paint: paint})
}

func (r *Recorder) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	r.grow(strokeBounds(graphics.Rect{Left: center.X - radius, Top: center.Y - radius, Right: center.X + radius, Bottom: center.Y + radius}, paint))
	r.ops = append(r.ops, opCircle{center: center, radius: radius, paint: paint})
}

func (r *Recorder) DrawLine(p0, p1 graphics.Offset, paint graphics.Paint) {
	h := paint.StrokeWidth / 2
	r.grow(graphics.Rect{
		Left: min(p0.X, p1.X) - h, Top: min(p0.Y, p1.Y) - h,
		Right: max(p0.X, p1.X) + h, Bottom: max(p0.Y, p1.Y) + h,
	})
	r.ops = append(r.ops, opLine{p0: p0, p1: p1, paint: paint})
}

func strokeBounds(rect graphics.Rect, paint graphics.Paint) graphics.Rect {
	if paint.Style != graphics.PaintStyleStroke {
		return rect
	}
	h := paint.StrokeWidth / 2
	return graphics.Rect{Left: rect.Left - h, Top: rect.Top - h, Right: rect.Right + h, Bottom: rect.Bottom + h}
}

type drawOp interface {
	execute(p Painter)
}

type opSave struct{}

func (opSave) execute(p Painter) {
	p.Save()
}

type opRestore struct{}

func (opRestore) execute(p Painter) {
	p.Restore()
}

type opTransform struct {
	m graphics.Matrix
}

func (op opTransform) execute(p Painter) {
	p.Transform(op.m)
}

type opClipRect struct {
	rect graphics.Rect
}

func (op opClipRect) execute(p Painter) {
	p.ClipRect(op.rect)
}

type opMesh struct {
	mesh  graphics.Mesh
	paint graphics.Paint
}

func (op opMesh) execute(p Painter) {
	p.DrawMesh(op.mesh, op.paint)
}

type opRect struct {
	rect  graphics.Rect
	paint graphics.Paint
}

func (op opRect) execute(p Painter) {
	DrawRect(p, op.rect, op.paint)
}

type opRRect struct {
	rrect graphics.RRect
	paint graphics.Paint
}

func (op opRRect) execute(p Painter) {
	DrawRRect(p, op.rrect, op.paint)
}

type opCircle struct {
	center graphics.Offset
	radius float64
	paint  graphics.Paint
}

func (op opCircle) execute(p Painter) {
	DrawCircle(p, op.center, op.radius, op.paint)
}

type opLine struct {
	p0, p1 graphics.Offset
	paint  graphics.Paint
}

func (op opLine) execute(p Painter) {
	DrawLine(p, op.p0, op.p1, op.paint)
}
