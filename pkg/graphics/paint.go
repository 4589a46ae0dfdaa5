package graphics

// PaintStyle selects between filling and stroking.
type PaintStyle int

const (
	// PaintStyleFill fills the interior of the shape.
	PaintStyleFill PaintStyle = iota
	// PaintStyleStroke draws the outline of the shape.
	PaintStyleStroke
)

// Paint describes how a shape or mesh is drawn.
type Paint struct {
	Color       Color
	Style       PaintStyle
	StrokeWidth float64
}

// Fill returns a fill paint of the given color.
func Fill(c Color) Paint {
	return Paint{Color: c}
}

// Stroke returns a stroke paint of the given color and width.
func Stroke(c Color, width float64) Paint {
	return Paint{Color: c, Style: PaintStyleStroke, StrokeWidth: width}
}

// Mesh is a list of vertices and triangle indices. Every three consecutive
// indices name one triangle. A mesh with no indices is treated as a single
// closed polygon over its vertices in order.
type Mesh struct {
	Vertices []Offset
	Indices  []uint32
}

// Triangles calls fn for every triangle of the mesh. Polygon meshes are fanned
// from their first vertex.
func (m Mesh) Triangles(fn func(a, b, c Offset)) {
	if len(m.Indices) == 0 {
		for i := 1; i+1 < len(m.Vertices); i++ {
			fn(m.Vertices[0], m.Vertices[i], m.Vertices[i+1])
		}
		return
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(m.Vertices) || int(b) >= len(m.Vertices) || int(c) >= len(m.Vertices) {
			continue
		}
		fn(m.Vertices[a], m.Vertices[b], m.Vertices[c])
	}
}

// Bounds returns the axis-aligned bounds of all vertices.
func (m Mesh) Bounds() Rect {
	if len(m.Vertices) == 0 {
		return Rect{}
	}
	out := Rect{Left: m.Vertices[0].X, Top: m.Vertices[0].Y, Right: m.Vertices[0].X, Bottom: m.Vertices[0].Y}
	for _, v := range m.Vertices[1:] {
		out.Left = min(out.Left, v.X)
		out.Top = min(out.Top, v.Y)
		out.Right = max(out.Right, v.X)
		out.Bottom = max(out.Bottom, v.Y)
	}
	return out
}

// Transform returns a copy of the mesh with every vertex transformed by m.
func (mesh Mesh) Transform(m Matrix) Mesh {
	out := Mesh{Vertices: make([]Offset, len(mesh.Vertices)), Indices: mesh.Indices}
	for i, v := range mesh.Vertices {
		out.Vertices[i] = m.Apply(v)
	}
	return out
}
