package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
)

// FlexFit controls how a flexible child fills the space allocated to it.
type FlexFit int

const (
	// FlexFitLoose lets the child be smaller than its allocated space.
	FlexFitLoose FlexFit = iota
	// FlexFitTight forces the child to fill its allocated space.
	FlexFitTight
)

// String returns a human-readable representation of the fit.
func (f FlexFit) String() string {
	if f == FlexFitTight {
		return "tight"
	}
	return "loose"
}

// FlexParentData is the layout metadata a [Flex] reads from its children.
// It is attached by [Flexible] and [Expanded].
type FlexParentData struct {
	Flex int
	Fit  FlexFit
}

// Flexible allows its child to participate in flex space distribution within
// a [Row] or [Column] without requiring the child to fill all allocated space.
//
// # Fit Behavior
//
// By default (zero value), Flexible uses [FlexFitLoose], which allows the child
// to be smaller than its allocated space. Set Fit to [FlexFitTight] for
// behavior equivalent to [Expanded].
//
// # Example
//
// Distribute space proportionally while allowing children to be smaller:
//
//	Row{
//	    MainAxisSize: MainAxisSizeMax,
//	    Children: []core.Widget{
//	        Flexible{Flex: 1, Child: smallWidget},  // Gets up to 1/3 of space
//	        Flexible{Flex: 2, Child: largeWidget},  // Gets up to 2/3 of space
//	    },
//	}
//
// Flexible does not create a render node of its own; it attaches
// [FlexParentData] to the nearest render node below it.
type Flexible struct {
	// Child is the widget to display within the flexible space.
	Child core.Widget

	// Flex determines the ratio of space allocated to this child relative to
	// other flexible children. Defaults to 1 if not set or <= 0.
	Flex int

	// Fit controls whether the child must fill its allocated space.
	Fit FlexFit
}

// Key returns nil (no key).
func (f Flexible) Key() any {
	return nil
}

// ChildWidget returns the child widget.
func (f Flexible) ChildWidget() core.Widget {
	return f.Child
}

// ParentData returns the flex metadata for the child.
func (f Flexible) ParentData() any {
	return FlexParentData{Flex: effectiveFlex(f.Flex), Fit: f.Fit}
}

// Expanded makes its child fill the remaining space along the main axis of
// a [Row] or [Column].
//
// Expanded is [Flexible] with [FlexFitTight]. The parent must use
// [MainAxisSizeMax] for there to be remaining space.
type Expanded struct {
	Child core.Widget
	// Flex defaults to 1 if not set or <= 0.
	Flex int
}

// Key returns nil (no key).
func (e Expanded) Key() any {
	return nil
}

// ChildWidget returns the child widget.
func (e Expanded) ChildWidget() core.Widget {
	return e.Child
}

// ParentData returns tight flex metadata for the child.
func (e Expanded) ParentData() any {
	return FlexParentData{Flex: effectiveFlex(e.Flex), Fit: FlexFitTight}
}

func effectiveFlex(flex int) int {
	if flex <= 0 {
		return 1
	}
	return flex
}
