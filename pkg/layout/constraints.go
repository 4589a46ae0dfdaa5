package layout

import (
	"fmt"
	"math"

	"github.com/go-drift/framecore/pkg/graphics"
)

// Unbounded is the maximum extent of an axis without a limit.
var Unbounded = math.Inf(1)

// Constraints describe the sizes a render node may choose from. A parent
// passes constraints down; the child answers with a size that satisfies them.
type Constraints struct {
	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
}

// Tight returns constraints that allow exactly size.
func Tight(size graphics.Size) Constraints {
	return Constraints{MinWidth: size.Width, MaxWidth: size.Width, MinHeight: size.Height, MaxHeight: size.Height}
}

// TightFor is Tight for explicit width and height.
func TightFor(width, height float64) Constraints {
	return Tight(graphics.Size{Width: width, Height: height})
}

// Loose returns constraints that allow any size up to size.
func Loose(size graphics.Size) Constraints {
	return Constraints{MaxWidth: size.Width, MaxHeight: size.Height}
}

// Expand returns constraints with unbounded maximums.
func Expand() Constraints {
	return Constraints{MaxWidth: Unbounded, MaxHeight: Unbounded}
}

// Constrain clamps size to the constraints.
func (c Constraints) Constrain(size graphics.Size) graphics.Size {
	return graphics.Size{
		Width:  clamp(size.Width, c.MinWidth, c.MaxWidth),
		Height: clamp(size.Height, c.MinHeight, c.MaxHeight),
	}
}

// IsTight reports whether exactly one size satisfies the constraints.
func (c Constraints) IsTight() bool {
	return c.MinWidth >= c.MaxWidth && c.MinHeight >= c.MaxHeight
}

// HasBoundedWidth reports whether MaxWidth is finite.
func (c Constraints) HasBoundedWidth() bool {
	return !math.IsInf(c.MaxWidth, 1)
}

// HasBoundedHeight reports whether MaxHeight is finite.
func (c Constraints) HasBoundedHeight() bool {
	return !math.IsInf(c.MaxHeight, 1)
}

// IsNormalized reports whether min <= max on both axes and no bound is
// negative or NaN.
func (c Constraints) IsNormalized() bool {
	return c.MinWidth >= 0 && c.MinHeight >= 0 &&
		c.MinWidth <= c.MaxWidth && c.MinHeight <= c.MaxHeight
}

// Smallest returns the smallest size that satisfies the constraints.
func (c Constraints) Smallest() graphics.Size {
	return graphics.Size{Width: c.MinWidth, Height: c.MinHeight}
}

// Biggest returns the largest size that satisfies the constraints. Unbounded
// axes fall back to their minimum.
func (c Constraints) Biggest() graphics.Size {
	w, h := c.MaxWidth, c.MaxHeight
	if math.IsInf(w, 1) {
		w = c.MinWidth
	}
	if math.IsInf(h, 1) {
		h = c.MinHeight
	}
	return graphics.Size{Width: w, Height: h}
}

// Loosen drops the minimums.
func (c Constraints) Loosen() Constraints {
	return Constraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// Tighten pins each axis whose value is non-negative, clamped into range.
// Pass a negative value to leave an axis as is.
func (c Constraints) Tighten(width, height float64) Constraints {
	if width >= 0 {
		w := clamp(width, c.MinWidth, c.MaxWidth)
		c.MinWidth, c.MaxWidth = w, w
	}
	if height >= 0 {
		h := clamp(height, c.MinHeight, c.MaxHeight)
		c.MinHeight, c.MaxHeight = h, h
	}
	return c
}

// Deflate shrinks the constraints by insets, never below zero.
func (c Constraints) Deflate(insets EdgeInsets) Constraints {
	h := insets.Horizontal()
	v := insets.Vertical()
	minW := math.Max(0, c.MinWidth-h)
	minH := math.Max(0, c.MinHeight-v)
	return Constraints{
		MinWidth:  minW,
		MaxWidth:  math.Max(minW, c.MaxWidth-h),
		MinHeight: minH,
		MaxHeight: math.Max(minH, c.MaxHeight-v),
	}
}

func (c Constraints) String() string {
	if c.IsTight() {
		return fmt.Sprintf("Constraints(tight %gx%g)", c.MinWidth, c.MinHeight)
	}
	return fmt.Sprintf("Constraints(w %g..%g, h %g..%g)", c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EdgeInsets represents padding on each side.
type EdgeInsets struct {
	Left, Top, Right, Bottom float64
}

// EdgeInsetsAll returns equal insets on every side.
func EdgeInsetsAll(v float64) EdgeInsets {
	return EdgeInsets{Left: v, Top: v, Right: v, Bottom: v}
}

// EdgeInsetsSymmetric returns insets with equal horizontal and equal vertical
// values.
func EdgeInsetsSymmetric(horizontal, vertical float64) EdgeInsets {
	return EdgeInsets{Left: horizontal, Top: vertical, Right: horizontal, Bottom: vertical}
}

// Horizontal returns Left + Right.
func (e EdgeInsets) Horizontal() float64 {
	return e.Left + e.Right
}

// Vertical returns Top + Bottom.
func (e EdgeInsets) Vertical() float64 {
	return e.Top + e.Bottom
}

// TopLeft returns the offset of the inner box.
func (e EdgeInsets) TopLeft() graphics.Offset {
	return graphics.Offset{X: e.Left, Y: e.Top}
}
