package graphics

import "math"

// Matrix is a 2D affine transform in row-major order:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
//
// The zero value is not the identity; use [Identity].
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translation returns a transform that moves by (dx, dy).
func Translation(dx, dy float64) Matrix {
	return Matrix{A: 1, D: 1, E: dx, F: dy}
}

// Scaling returns a transform that scales by (sx, sy).
func Scaling(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotation returns a transform that rotates by radians around the origin.
func Rotation(radians float64) Matrix {
	sin, cos := math.Sincos(radians)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Multiply returns m × other: other is applied first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

// Apply transforms a point.
func (m Matrix) Apply(p Offset) Offset {
	return Offset{X: m.A*p.X + m.C*p.Y + m.E, Y: m.B*p.X + m.D*p.Y + m.F}
}

// Invert returns the inverse transform. The boolean is false when m is
// singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-12 {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}

// IsIdentity reports whether m is (approximately) the identity.
func (m Matrix) IsIdentity() bool {
	return floatEqual(m.A, 1) && floatEqual(m.B, 0) && floatEqual(m.C, 0) &&
		floatEqual(m.D, 1) && floatEqual(m.E, 0) && floatEqual(m.F, 0)
}

// TransformRect returns the axis-aligned bounds of r after transformation.
func (m Matrix) TransformRect(r Rect) Rect {
	corners := [4]Offset{
		m.Apply(Offset{X: r.Left, Y: r.Top}),
		m.Apply(Offset{X: r.Right, Y: r.Top}),
		m.Apply(Offset{X: r.Right, Y: r.Bottom}),
		m.Apply(Offset{X: r.Left, Y: r.Bottom}),
	}
	out := Rect{Left: corners[0].X, Top: corners[0].Y, Right: corners[0].X, Bottom: corners[0].Y}
	for _, c := range corners[1:] {
		out.Left = math.Min(out.Left, c.X)
		out.Top = math.Min(out.Top, c.Y)
		out.Right = math.Max(out.Right, c.X)
		out.Bottom = math.Max(out.Bottom, c.Y)
	}
	return out
}
