package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/layout"
)

// Centered wraps a child in a Center widget.
func Centered(child core.Widget) Center {
	return Center{Child: child}
}

// Padded wraps a child with the specified padding.
func Padded(padding layout.EdgeInsets, child core.Widget) Padding {
	return Padding{Padding: padding, Child: child}
}

// VSpace creates a fixed-height vertical spacer.
func VSpace(height float64) SizedBox {
	return SizedBox{Height: height}
}

// HSpace creates a fixed-width horizontal spacer.
func HSpace(width float64) SizedBox {
	return SizedBox{Width: width}
}

// PaddingAll wraps a child with uniform padding on all sides.
func PaddingAll(value float64, child core.Widget) Padding {
	return Padding{Padding: layout.EdgeInsetsAll(value), Child: child}
}

// PaddingSym wraps a child with symmetric horizontal and vertical padding.
func PaddingSym(horizontal, vertical float64, child core.Widget) Padding {
	return Padding{Padding: layout.EdgeInsetsSymmetric(horizontal, vertical), Child: child}
}

// Spacer fills remaining space along the main axis of a [Row] or [Column].
// It is equivalent to Expanded{Child: SizedBox{}}.
func Spacer() Expanded {
	return Expanded{Child: SizedBox{}}
}

// Keyed gives child an identity that survives reordering among its
// siblings. Elements below a Keyed are matched by key, not position.
type Keyed struct {
	ItemKey any
	Child   core.Widget
}

// Key returns the item key.
func (k Keyed) Key() any {
	return k.ItemKey
}

// Build returns the child.
func (k Keyed) Build(core.BuildContext) core.Widget {
	return k.Child
}
