package widgets

import (
	"fmt"
	"math"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/logging"
)

// Axis represents the layout direction.
// AxisVertical is the zero value.
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// String returns a human-readable representation of the axis.
func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "vertical"
	case AxisHorizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// MainAxisAlignment controls how children are positioned along the main axis
// (horizontal for [Row], vertical for [Column]).
type MainAxisAlignment int

const (
	// MainAxisAlignmentStart places children at the start (left for Row, top for Column).
	MainAxisAlignmentStart MainAxisAlignment = iota
	// MainAxisAlignmentEnd places children at the end (right for Row, bottom for Column).
	MainAxisAlignmentEnd
	// MainAxisAlignmentCenter centers children along the main axis.
	MainAxisAlignmentCenter
	// MainAxisAlignmentSpaceBetween distributes free space evenly between children.
	// No space before the first or after the last child.
	MainAxisAlignmentSpaceBetween
	// MainAxisAlignmentSpaceAround distributes free space evenly, with half-sized
	// spaces at the start and end.
	MainAxisAlignmentSpaceAround
	// MainAxisAlignmentSpaceEvenly distributes free space evenly, including
	// equal space before the first and after the last child.
	MainAxisAlignmentSpaceEvenly
)

// String returns a human-readable representation of the main axis alignment.
func (a MainAxisAlignment) String() string {
	switch a {
	case MainAxisAlignmentStart:
		return "start"
	case MainAxisAlignmentEnd:
		return "end"
	case MainAxisAlignmentCenter:
		return "center"
	case MainAxisAlignmentSpaceBetween:
		return "space_between"
	case MainAxisAlignmentSpaceAround:
		return "space_around"
	case MainAxisAlignmentSpaceEvenly:
		return "space_evenly"
	default:
		return fmt.Sprintf("MainAxisAlignment(%d)", int(a))
	}
}

// CrossAxisAlignment controls how children are positioned along the cross axis
// (vertical for [Row], horizontal for [Column]).
type CrossAxisAlignment int

const (
	// CrossAxisAlignmentStart places children at the start of the cross axis.
	CrossAxisAlignmentStart CrossAxisAlignment = iota
	// CrossAxisAlignmentEnd places children at the end of the cross axis.
	CrossAxisAlignmentEnd
	// CrossAxisAlignmentCenter centers children along the cross axis.
	CrossAxisAlignmentCenter
	// CrossAxisAlignmentStretch stretches children to fill the cross axis.
	CrossAxisAlignmentStretch
)

// String returns a human-readable representation of the cross axis alignment.
func (a CrossAxisAlignment) String() string {
	switch a {
	case CrossAxisAlignmentStart:
		return "start"
	case CrossAxisAlignmentEnd:
		return "end"
	case CrossAxisAlignmentCenter:
		return "center"
	case CrossAxisAlignmentStretch:
		return "stretch"
	default:
		return fmt.Sprintf("CrossAxisAlignment(%d)", int(a))
	}
}

// MainAxisSize controls how much space the flex container takes along its main axis.
type MainAxisSize int

const (
	// MainAxisSizeMin sizes the container to fit its children (shrink-wrap).
	MainAxisSizeMin MainAxisSize = iota
	// MainAxisSizeMax expands to fill all available space along the main axis.
	// This is required for [Expanded] children to receive space.
	MainAxisSizeMax
)

// String returns a human-readable representation of the main axis size.
func (s MainAxisSize) String() string {
	switch s {
	case MainAxisSizeMin:
		return "min"
	case MainAxisSizeMax:
		return "max"
	default:
		return fmt.Sprintf("MainAxisSize(%d)", int(s))
	}
}

// Flex lays out children in a single run along Direction.
//
// [Row] and [Column] are Flex with a fixed direction and are usually what
// you want. Children wrapped in [Flexible] or [Expanded] share the space
// left over after the other children are laid out, in proportion to their
// flex factors.
type Flex struct {
	core.RenderObjectBase
	Direction          Axis
	Children           []core.Widget
	MainAxisAlignment  MainAxisAlignment
	CrossAxisAlignment CrossAxisAlignment
	MainAxisSize       MainAxisSize
}

// ChildWidgets returns the children.
func (f Flex) ChildWidgets() []core.Widget {
	return f.Children
}

// CreateRenderObject creates the renderFlex.
func (f Flex) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	r := &renderFlex{}
	f.configure(r)
	return layout.New[layout.ManyChildren](r)
}

// UpdateRenderObject updates the renderFlex.
func (f Flex) UpdateRenderObject(_ core.BuildContext, node *layout.RenderNode) {
	r := node.Box().(*renderFlex)
	if f.configure(r) {
		node.MarkNeedsLayout()
	}
}

func (f Flex) configure(r *renderFlex) bool {
	next := renderFlex{
		direction:      f.Direction,
		alignment:      f.MainAxisAlignment,
		crossAlignment: f.CrossAxisAlignment,
		axisSize:       f.MainAxisSize,
	}
	if r.direction == next.direction && r.alignment == next.alignment &&
		r.crossAlignment == next.crossAlignment && r.axisSize == next.axisSize {
		return false
	}
	r.direction, r.alignment, r.crossAlignment, r.axisSize =
		next.direction, next.alignment, next.crossAlignment, next.axisSize
	return true
}

// Row lays out children horizontally from left to right.
//
// Row is a flex container where the main axis is horizontal. Children are
// laid out in a single horizontal run and do not wrap.
//
// # Sizing Behavior
//
// By default (MainAxisSizeMin), Row shrinks to fit its children. Set
// MainAxisSizeMax to expand and fill available horizontal space - this is
// required when using [Expanded] children.
//
// # Flexible Children
//
// Wrap children in [Expanded] to make them share remaining space proportionally:
//
//	Row{
//	    MainAxisSize: MainAxisSizeMax,
//	    Children: []core.Widget{
//	        SizedBox{Width: 24},
//	        Expanded{Child: content}, // Takes remaining space
//	        SizedBox{Width: 24},
//	    },
//	}
//
// For vertical layout, use [Column].
type Row struct {
	core.RenderObjectBase
	Children           []core.Widget
	MainAxisAlignment  MainAxisAlignment
	CrossAxisAlignment CrossAxisAlignment
	MainAxisSize       MainAxisSize
}

// RowOf creates a horizontal layout with the specified alignments and sizing behavior.
func RowOf(alignment MainAxisAlignment, crossAlignment CrossAxisAlignment, size MainAxisSize, children ...core.Widget) Row {
	return Row{
		Children:           children,
		MainAxisAlignment:  alignment,
		CrossAxisAlignment: crossAlignment,
		MainAxisSize:       size,
	}
}

func (r Row) flex() Flex {
	return Flex{
		Direction:          AxisHorizontal,
		Children:           r.Children,
		MainAxisAlignment:  r.MainAxisAlignment,
		CrossAxisAlignment: r.CrossAxisAlignment,
		MainAxisSize:       r.MainAxisSize,
	}
}

// ChildWidgets returns the children.
func (r Row) ChildWidgets() []core.Widget {
	return r.Children
}

// CreateRenderObject creates a horizontal renderFlex.
func (r Row) CreateRenderObject(ctx core.BuildContext) *layout.RenderNode {
	return r.flex().CreateRenderObject(ctx)
}

// UpdateRenderObject updates the renderFlex.
func (r Row) UpdateRenderObject(ctx core.BuildContext, node *layout.RenderNode) {
	r.flex().UpdateRenderObject(ctx, node)
}

// Column lays out children vertically from top to bottom.
//
// Column is a flex container where the main axis is vertical. Children are
// laid out in a single vertical run and do not wrap.
//
// # Sizing Behavior
//
// By default (MainAxisSizeMin), Column shrinks to fit its children. Set
// MainAxisSizeMax to expand and fill available vertical space - this is
// required when using [Expanded] children.
//
// # Alignment
//
// Use MainAxisAlignment to control vertical spacing (Start, End, Center,
// SpaceBetween, SpaceAround, SpaceEvenly). Use CrossAxisAlignment to control
// horizontal alignment (Start, End, Center, Stretch).
//
// For horizontal layout, use [Row].
type Column struct {
	core.RenderObjectBase
	Children           []core.Widget
	MainAxisAlignment  MainAxisAlignment
	CrossAxisAlignment CrossAxisAlignment
	MainAxisSize       MainAxisSize
}

// ColumnOf creates a vertical layout with the specified alignments and sizing behavior.
func ColumnOf(alignment MainAxisAlignment, crossAlignment CrossAxisAlignment, size MainAxisSize, children ...core.Widget) Column {
	return Column{
		Children:           children,
		MainAxisAlignment:  alignment,
		CrossAxisAlignment: crossAlignment,
		MainAxisSize:       size,
	}
}

func (c Column) flex() Flex {
	return Flex{
		Direction:          AxisVertical,
		Children:           c.Children,
		MainAxisAlignment:  c.MainAxisAlignment,
		CrossAxisAlignment: c.CrossAxisAlignment,
		MainAxisSize:       c.MainAxisSize,
	}
}

// ChildWidgets returns the children.
func (c Column) ChildWidgets() []core.Widget {
	return c.Children
}

// CreateRenderObject creates a vertical renderFlex.
func (c Column) CreateRenderObject(ctx core.BuildContext) *layout.RenderNode {
	return c.flex().CreateRenderObject(ctx)
}

// UpdateRenderObject updates the renderFlex.
func (c Column) UpdateRenderObject(ctx core.BuildContext, node *layout.RenderNode) {
	c.flex().UpdateRenderObject(ctx, node)
}

type renderFlex struct {
	direction      Axis
	alignment      MainAxisAlignment
	crossAlignment CrossAxisAlignment
	axisSize       MainAxisSize

	// unboundedFlexWarned is a one-shot flag to avoid log spam.
	unboundedFlexWarned bool
}

func (r *renderFlex) mainAxis(size graphics.Size) float64 {
	if r.direction == AxisHorizontal {
		return size.Width
	}
	return size.Height
}

func (r *renderFlex) crossAxis(size graphics.Size) float64 {
	if r.direction == AxisHorizontal {
		return size.Height
	}
	return size.Width
}

func (r *renderFlex) makeSize(main, cross float64) graphics.Size {
	if r.direction == AxisHorizontal {
		return graphics.Size{Width: main, Height: cross}
	}
	return graphics.Size{Width: cross, Height: main}
}

func (r *renderFlex) makeOffset(main, cross float64) graphics.Offset {
	if r.direction == AxisHorizontal {
		return graphics.Offset{X: main, Y: cross}
	}
	return graphics.Offset{X: cross, Y: main}
}

func (r *renderFlex) PerformLayout(c layout.Constraints, children layout.ManyChildren) graphics.Size {
	maxSize := graphics.Size{Width: c.MaxWidth, Height: c.MaxHeight}
	maxMain := r.mainAxis(maxSize)
	bounded := !math.IsInf(maxMain, 1)

	mainSize := 0.0
	crossSize := 0.0
	totalFlex := 0
	factors := make([]int, children.Len())

	for i, child := range children.All() {
		if data, _ := child.ParentData().(FlexParentData); data.Flex > 0 {
			if bounded {
				factors[i] = data.Flex
				totalFlex += data.Flex
				continue
			}
			if !r.unboundedFlexWarned {
				logging.Logger().Warn("flex children used with unbounded main axis; laying them out inflexibly",
					"direction", r.direction.String())
				r.unboundedFlexWarned = true
			}
		}
		childSize := child.Layout(r.looseConstraints(maxSize))
		mainSize += r.mainAxis(childSize)
		crossSize = math.Max(crossSize, r.crossAxis(childSize))
	}

	remaining := max(maxMain-mainSize, 0)
	if r.axisSize != MainAxisSizeMax {
		remaining = 0
	}

	for i, child := range children.All() {
		if factors[i] == 0 {
			continue
		}
		allocated := remaining * float64(factors[i]) / float64(totalFlex)
		fit := child.ParentData().(FlexParentData).Fit
		childSize := child.Layout(r.flexConstraints(c, allocated, fit))
		mainSize += r.mainAxis(childSize)
		crossSize = math.Max(crossSize, r.crossAxis(childSize))
	}

	finalMain := mainSize
	if r.axisSize == MainAxisSizeMax && bounded {
		finalMain = maxMain
	}
	size := c.Constrain(r.makeSize(finalMain, crossSize))

	freeSpace := math.Max(0, r.mainAxis(size)-mainSize)
	spacing, cursor := r.computeSpacing(freeSpace, children.Len())
	for _, child := range children.All() {
		childSize := child.Size()
		child.SetOffset(r.makeOffset(cursor, r.crossAxisOffset(size, childSize)))
		cursor += r.mainAxis(childSize) + spacing
	}
	return size
}

func (r *renderFlex) looseConstraints(maxSize graphics.Size) layout.Constraints {
	if r.crossAlignment != CrossAxisAlignmentStretch {
		return layout.Loose(maxSize)
	}
	if r.direction == AxisHorizontal {
		return layout.Constraints{
			MinWidth:  0,
			MaxWidth:  maxSize.Width,
			MinHeight: maxSize.Height,
			MaxHeight: maxSize.Height,
		}
	}
	return layout.Constraints{
		MinWidth:  maxSize.Width,
		MaxWidth:  maxSize.Width,
		MinHeight: 0,
		MaxHeight: maxSize.Height,
	}
}

func (r *renderFlex) flexConstraints(c layout.Constraints, mainSize float64, fit FlexFit) layout.Constraints {
	minMain := 0.0
	if fit == FlexFitTight {
		minMain = mainSize
	}
	if r.direction == AxisHorizontal {
		minHeight := 0.0
		if r.crossAlignment == CrossAxisAlignmentStretch {
			minHeight = c.MaxHeight
		}
		return layout.Constraints{
			MinWidth:  minMain,
			MaxWidth:  mainSize,
			MinHeight: minHeight,
			MaxHeight: c.MaxHeight,
		}
	}
	minWidth := 0.0
	if r.crossAlignment == CrossAxisAlignmentStretch {
		minWidth = c.MaxWidth
	}
	return layout.Constraints{
		MinWidth:  minWidth,
		MaxWidth:  c.MaxWidth,
		MinHeight: minMain,
		MaxHeight: mainSize,
	}
}

func (r *renderFlex) crossAxisOffset(size, childSize graphics.Size) float64 {
	freeSpace := r.crossAxis(size) - r.crossAxis(childSize)
	if freeSpace <= 0 {
		return 0
	}
	switch r.crossAlignment {
	case CrossAxisAlignmentEnd:
		return freeSpace
	case CrossAxisAlignmentCenter:
		return freeSpace * 0.5
	default:
		return 0
	}
}

func (r *renderFlex) computeSpacing(freeSpace float64, n int) (spacing, offset float64) {
	switch r.alignment {
	case MainAxisAlignmentEnd:
		offset = freeSpace
	case MainAxisAlignmentCenter:
		offset = freeSpace * 0.5
	case MainAxisAlignmentSpaceBetween:
		if n > 1 {
			spacing = freeSpace / float64(n-1)
		}
	case MainAxisAlignmentSpaceAround:
		if n > 0 {
			spacing = freeSpace / float64(n)
			offset = spacing * 0.5
		}
	case MainAxisAlignmentSpaceEvenly:
		if n > 0 {
			spacing = freeSpace / float64(n+1)
			offset = spacing
		}
	}
	return
}

func (r *renderFlex) Paint(ctx *layout.PaintContext, children layout.ManyChildren) {
	for _, child := range children.All() {
		child.Paint(ctx, child.Offset())
	}
}

// IntrinsicSize sums the children along the main axis and takes the largest
// child across it.
func (r *renderFlex) IntrinsicSize(dim layout.IntrinsicDimension, extent float64, children layout.ManyChildren) float64 {
	values := children.Intrinsics(dim, extent)
	alongMain := dim.IsWidth() == (r.direction == AxisHorizontal)
	total := 0.0
	for _, v := range values {
		if alongMain {
			total += v
		} else {
			total = math.Max(total, v)
		}
	}
	return total
}
