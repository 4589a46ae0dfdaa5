// Package widgets provides the reference widgets that exercise the core
// pipeline: layout widgets (Row, Column, Flex, Align, Center, Padding,
// SizedBox), paint widgets (ColoredBox, Opacity, ClipRect, Transform) and
// RepaintBoundary.
//
// # Widget Construction
//
// Widgets are plain values. Use struct literals for full control:
//
//	Padding{
//	    Padding: layout.EdgeInsetsAll(16),
//	    Child:   ColoredBox{Color: graphics.ColorBlue},
//	}
//
// Layout helpers cover the common cases:
//
//	col := ColumnOf(
//	    MainAxisAlignmentCenter,
//	    CrossAxisAlignmentCenter,
//	    MainAxisSizeMin,
//	    child1, VSpace(8), child2,
//	)
//
// Also: RowOf, HSpace, Centered, Padded, PaddingAll, PaddingSym, Spacer.
//
// # Flexible Layout
//
// [Flexible] and [Expanded] are parent-data widgets: they do not create a
// render node but attach [FlexParentData] to the render node of their child,
// which the enclosing [Row], [Column] or [Flex] reads during layout.
//
// # Render Objects
//
// Every render widget here creates a [layout.RenderNode] around a private
// box type whose arity matches the widget's child shape: Row and Column are
// many-children boxes, the single-child wrappers are one-child boxes. A nil
// Child is replaced by an empty leaf, so one-child boxes always have exactly
// one child.
package widgets
