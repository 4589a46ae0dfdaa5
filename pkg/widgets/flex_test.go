package widgets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	fctest "github.com/go-drift/framecore/pkg/testing"
	"github.com/go-drift/framecore/pkg/widgets"
)

func newTester(t *testing.T, width, height float64) *fctest.WidgetTester {
	t.Helper()
	tester := fctest.NewWidgetTesterWithT(t)
	tester.SetSize(graphics.Size{Width: width, Height: height})
	return tester
}

// boxOffsets returns the offsets of every SizedBox in tree order.
func boxOffsets(tester *fctest.WidgetTester) []graphics.Offset {
	var out []graphics.Offset
	for _, e := range tester.Find(fctest.ByType[widgets.SizedBox]()).All() {
		out = append(out, e.RenderNode().Offset())
	}
	return out
}

func TestRow_MainAxisAlignment(t *testing.T) {
	tests := []struct {
		alignment widgets.MainAxisAlignment
		first     float64
		second    float64
	}{
		{widgets.MainAxisAlignmentStart, 0, 30},
		{widgets.MainAxisAlignmentEnd, 130, 160},
		{widgets.MainAxisAlignmentCenter, 65, 95},
		{widgets.MainAxisAlignmentSpaceBetween, 0, 160},
		{widgets.MainAxisAlignmentSpaceAround, 32.5, 127.5},
		{widgets.MainAxisAlignmentSpaceEvenly, 130.0 / 3, 30 + 2*130.0/3},
	}
	for _, tt := range tests {
		t.Run(tt.alignment.String(), func(t *testing.T) {
			tester := newTester(t, 200, 100)
			require.NoError(t, tester.PumpWidget(widgets.Row{
				MainAxisAlignment: tt.alignment,
				Children: []core.Widget{
					widgets.SizedBox{Width: 30, Height: 10},
					widgets.SizedBox{Width: 40, Height: 20},
				},
			}))

			offsets := boxOffsets(tester)
			require.Len(t, offsets, 2)
			assert.InDelta(t, tt.first, offsets[0].X, 1e-9)
			assert.InDelta(t, tt.second, offsets[1].X, 1e-9)
		})
	}
}

func TestRow_CrossAxisAlignment(t *testing.T) {
	tests := []struct {
		alignment widgets.CrossAxisAlignment
		first     float64
		second    float64
	}{
		{widgets.CrossAxisAlignmentStart, 0, 0},
		{widgets.CrossAxisAlignmentCenter, 45, 40},
		{widgets.CrossAxisAlignmentEnd, 90, 80},
	}
	for _, tt := range tests {
		t.Run(tt.alignment.String(), func(t *testing.T) {
			tester := newTester(t, 200, 100)
			require.NoError(t, tester.PumpWidget(widgets.RowOf(
				widgets.MainAxisAlignmentStart, tt.alignment, widgets.MainAxisSizeMin,
				widgets.SizedBox{Width: 30, Height: 10},
				widgets.SizedBox{Width: 40, Height: 20},
			)))

			offsets := boxOffsets(tester)
			require.Len(t, offsets, 2)
			assert.Equal(t, tt.first, offsets[0].Y)
			assert.Equal(t, tt.second, offsets[1].Y)
		})
	}
}

func TestRow_CrossAxisStretch(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Row{
		CrossAxisAlignment: widgets.CrossAxisAlignmentStretch,
		Children: []core.Widget{
			widgets.SizedBox{Width: 30, Height: 10},
		},
	}))

	size := tester.Find(fctest.ByType[widgets.SizedBox]()).RenderNode().Size()
	assert.Equal(t, graphics.Size{Width: 30, Height: 100}, size)
}

func TestColumn_StacksVertically(t *testing.T) {
	tester := newTester(t, 100, 200)
	require.NoError(t, tester.PumpWidget(widgets.ColumnOf(
		widgets.MainAxisAlignmentStart, widgets.CrossAxisAlignmentStart, widgets.MainAxisSizeMin,
		widgets.SizedBox{Width: 10, Height: 20},
		widgets.VSpace(5),
		widgets.SizedBox{Width: 10, Height: 30},
	)))

	offsets := boxOffsets(tester)
	require.Len(t, offsets, 3)
	assert.Equal(t, graphics.Offset{X: 0, Y: 0}, offsets[0])
	assert.Equal(t, graphics.Offset{X: 0, Y: 20}, offsets[1])
	assert.Equal(t, graphics.Offset{X: 0, Y: 25}, offsets[2])
}

func TestExpanded_FillsRemainingSpace(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Row{
		MainAxisSize: widgets.MainAxisSizeMax,
		Children: []core.Widget{
			widgets.SizedBox{Width: 30, Height: 10},
			widgets.Expanded{Child: widgets.ColoredBox{Color: graphics.ColorRed}},
			widgets.SizedBox{Width: 40, Height: 10},
		},
	}))

	filler := tester.Find(fctest.ByType[widgets.ColoredBox]()).RenderNode()
	assert.Equal(t, 130.0, filler.Size().Width)
	assert.Equal(t, graphics.Offset{X: 30}, filler.Offset())

	offsets := boxOffsets(tester)
	require.Len(t, offsets, 2)
	assert.Equal(t, 160.0, offsets[1].X)
}

func TestExpanded_FlexFactors(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Row{
		MainAxisSize: widgets.MainAxisSizeMax,
		Children: []core.Widget{
			widgets.Expanded{Flex: 1, Child: widgets.ColoredBox{Color: graphics.ColorRed}},
			widgets.Expanded{Flex: 3, Child: widgets.ColoredBox{Color: graphics.ColorBlue}},
		},
	}))

	boxes := tester.Find(fctest.ByType[widgets.ColoredBox]())
	require.Equal(t, 2, boxes.Count())
	assert.Equal(t, 50.0, boxes.At(0).RenderNode().Size().Width)
	assert.Equal(t, 150.0, boxes.At(1).RenderNode().Size().Width)
	assert.Equal(t, 50.0, boxes.At(1).RenderNode().Offset().X)
}

func TestExpanded_NoSpaceUnderMainAxisSizeMin(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Centered(widgets.Row{
		Children: []core.Widget{
			widgets.SizedBox{Width: 30, Height: 10},
			widgets.Expanded{Child: widgets.ColoredBox{Color: graphics.ColorRed}},
		},
	})))

	filler := tester.Find(fctest.ByType[widgets.ColoredBox]()).RenderNode()
	assert.Equal(t, 0.0, filler.Size().Width)
	row := tester.Find(fctest.ByType[widgets.Row]()).RenderNode()
	assert.Equal(t, 30.0, row.Size().Width)
}

func TestSpacer_PushesSiblingsApart(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Row{
		MainAxisSize: widgets.MainAxisSizeMax,
		Children: []core.Widget{
			widgets.SizedBox{Width: 30, Height: 10},
			widgets.Spacer(),
			widgets.SizedBox{Width: 40, Height: 10},
		},
	}))

	offsets := boxOffsets(tester)
	require.Len(t, offsets, 3)
	assert.Equal(t, 0.0, offsets[0].X)
	assert.Equal(t, 160.0, offsets[2].X)
}

func TestFlexible_LooseFit(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Row{
		MainAxisSize: widgets.MainAxisSizeMax,
		Children: []core.Widget{
			widgets.Flexible{Child: widgets.SizedBox{Width: 20, Height: 10}},
		},
	}))

	size := tester.Find(fctest.ByType[widgets.SizedBox]()).RenderNode().Size()
	assert.Equal(t, graphics.Size{Width: 20, Height: 10}, size)
}

func TestRow_ReorderKeepsKeyedState(t *testing.T) {
	tester := newTester(t, 200, 100)
	pump := func(keys ...string) {
		children := make([]core.Widget, len(keys))
		for i, k := range keys {
			children[i] = widgets.Keyed{ItemKey: k, Child: widgets.SizedBox{Width: 10, Height: 10}}
		}
		require.NoError(t, tester.PumpWidget(widgets.Row{Children: children}))
	}

	pump("a", "b", "c")
	before := map[any]*core.Element{}
	for _, k := range []string{"a", "b", "c"} {
		before[k] = tester.Find(fctest.ByKey(k)).First()
	}

	pump("c", "a", "b")
	for _, k := range []string{"a", "b", "c"} {
		assert.Same(t, before[k], tester.Find(fctest.ByKey(k)).First(), "key %s", k)
	}
	assert.Equal(t, 0.0, tester.Find(fctest.ByKey("c")).RenderNode().Offset().X)
	assert.Equal(t, 10.0, tester.Find(fctest.ByKey("a")).RenderNode().Offset().X)
}
