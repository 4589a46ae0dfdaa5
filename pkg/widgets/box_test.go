package widgets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	fctest "github.com/go-drift/framecore/pkg/testing"
	"github.com/go-drift/framecore/pkg/widgets"
)

func TestSizedBox_ClampedToParent(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Centered(widgets.SizedBox{Width: 500, Height: 50})))

	n := tester.Find(fctest.ByType[widgets.SizedBox]()).RenderNode()
	assert.Equal(t, graphics.Size{Width: 200, Height: 50}, n.Size())
	assert.Equal(t, graphics.Offset{X: 0, Y: 25}, n.Offset())
}

func TestSizedBox_TightensChild(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Centered(widgets.SizedBox{
		Width:  40,
		Height: 30,
		Child:  widgets.ColoredBox{Color: graphics.ColorRed},
	})))

	n := tester.Find(fctest.ByType[widgets.ColoredBox]()).RenderNode()
	assert.Equal(t, graphics.Size{Width: 40, Height: 30}, n.Size())
}

func TestPadding_InsetsChild(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.Centered(
		widgets.PaddingAll(10, widgets.SizedBox{Width: 20, Height: 20}),
	)))

	padding := tester.Find(fctest.ByType[widgets.Padding]()).RenderNode()
	assert.Equal(t, graphics.Size{Width: 40, Height: 40}, padding.Size())
	assert.Equal(t, graphics.Offset{X: 80, Y: 30}, padding.Offset())

	rect, err := tester.GlobalRect(fctest.ByType[widgets.SizedBox]())
	require.NoError(t, err)
	assert.Equal(t, graphics.RectFromLTWH(90, 40, 20, 20), rect)
}

func TestPadding_Symmetric(t *testing.T) {
	tester := newTester(t, 200, 100)
	require.NoError(t, tester.PumpWidget(widgets.PaddingSym(30, 5, widgets.ColoredBox{Color: graphics.ColorBlue})))

	n := tester.Find(fctest.ByType[widgets.ColoredBox]()).RenderNode()
	assert.Equal(t, graphics.Size{Width: 140, Height: 90}, n.Size())
	assert.Equal(t, graphics.Offset{X: 30, Y: 5}, n.Offset())
}

func TestAlign_Positions(t *testing.T) {
	tests := []struct {
		name      string
		alignment widgets.Alignment
		want      graphics.Offset
	}{
		{"top left", widgets.AlignmentTopLeft, graphics.Offset{X: 0, Y: 0}},
		{"center", widgets.AlignmentCenter, graphics.Offset{X: 90, Y: 40}},
		{"bottom right", widgets.AlignmentBottomRight, graphics.Offset{X: 180, Y: 80}},
		{"center right", widgets.AlignmentCenterRight, graphics.Offset{X: 180, Y: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tester := newTester(t, 200, 100)
			require.NoError(t, tester.PumpWidget(widgets.Align{
				Alignment: tt.alignment,
				Child:     widgets.SizedBox{Width: 20, Height: 20},
			}))

			n := tester.Find(fctest.ByType[widgets.SizedBox]()).RenderNode()
			assert.Equal(t, tt.want, n.Offset())
		})
	}
}

func TestAlign_UpdateMovesChild(t *testing.T) {
	tester := newTester(t, 200, 100)
	child := widgets.SizedBox{Width: 20, Height: 20}
	require.NoError(t, tester.PumpWidget(widgets.Align{Alignment: widgets.AlignmentTopLeft, Child: child}))
	node := tester.Find(fctest.ByType[widgets.SizedBox]()).RenderNode()

	require.NoError(t, tester.PumpWidget(widgets.Align{Alignment: widgets.AlignmentBottomRight, Child: child}))
	assert.Same(t, node, tester.Find(fctest.ByType[widgets.SizedBox]()).RenderNode())
	assert.Equal(t, graphics.Offset{X: 180, Y: 80}, node.Offset())
}

func TestColoredBox_HitTest(t *testing.T) {
	tester := newTester(t, 100, 100)
	require.NoError(t, tester.PumpWidget(widgets.Centered(widgets.ColoredBox{
		Color: graphics.ColorRed,
		Child: widgets.SizedBox{Width: 20, Height: 20},
	})))

	hit, err := tester.HitTarget(fctest.ByType[widgets.ColoredBox]())
	require.NoError(t, err)
	assert.IsType(t, widgets.ColoredBox{}, hit.Widget())

	assert.Empty(t, tester.HitTestAt(graphics.Offset{X: 5, Y: 5}))
}

func TestTransform_HitTestUsesInverse(t *testing.T) {
	tester := newTester(t, 100, 100)
	require.NoError(t, tester.PumpWidget(widgets.Align{
		Alignment: widgets.AlignmentTopLeft,
		Child: widgets.Transform{
			Transform: graphics.Translation(10, 0),
			Child: widgets.ColoredBox{
				Color: graphics.ColorRed,
				Child: widgets.SizedBox{Width: 20, Height: 20},
			},
		},
	}))

	hits := tester.HitTestAt(graphics.Offset{X: 15, Y: 5})
	require.NotEmpty(t, hits)
	assert.IsType(t, widgets.ColoredBox{}, hits[0].Widget())

	assert.Empty(t, tester.HitTestAt(graphics.Offset{X: 5, Y: 5}))
}

func TestTransform_ZeroIsIdentity(t *testing.T) {
	tester := newTester(t, 50, 50)
	require.NoError(t, tester.PumpWidget(widgets.Transform{
		Child: widgets.ColoredBox{Color: graphics.ColorRed},
	}))

	for _, op := range tester.CaptureSnapshot().DisplayOps {
		assert.NotEqual(t, "transform", op.Op)
	}
	hits := tester.HitTestAt(graphics.Offset{X: 1, Y: 1})
	require.NotEmpty(t, hits)
	assert.IsType(t, widgets.ColoredBox{}, hits[0].Widget())
}

// maxWidth sizes its child to the child's max intrinsic width.
type maxWidth struct {
	core.RenderObjectBase
	Child core.Widget
}

func (m maxWidth) ChildWidget() core.Widget { return m.Child }

func (m maxWidth) CreateRenderObject(core.BuildContext) *layout.RenderNode {
	return layout.New[layout.OneChild](renderMaxWidth{})
}

func (m maxWidth) UpdateRenderObject(core.BuildContext, *layout.RenderNode) {}

type renderMaxWidth struct{}

func (renderMaxWidth) PerformLayout(c layout.Constraints, child layout.OneChild) graphics.Size {
	w := child.Intrinsic(layout.MaxIntrinsicWidth, c.MaxHeight)
	return c.Constrain(child.Layout(c.Tighten(w, -1)))
}

func (renderMaxWidth) Paint(ctx *layout.PaintContext, child layout.OneChild) {
	child.Paint(ctx, graphics.Offset{})
}

func TestIntrinsics_RowSumsChildren(t *testing.T) {
	tester := newTester(t, 300, 100)
	require.NoError(t, tester.PumpWidget(widgets.Align{
		Alignment: widgets.AlignmentTopLeft,
		Child: maxWidth{Child: widgets.Row{
			MainAxisSize: widgets.MainAxisSizeMax,
			Children: []core.Widget{
				widgets.SizedBox{Width: 30, Height: 10},
				widgets.PaddingAll(5, widgets.SizedBox{Width: 20, Height: 10}),
			},
		}}},
	))

	row := tester.Find(fctest.ByType[widgets.Row]()).RenderNode()
	assert.Equal(t, 60.0, row.Size().Width)
}

func TestIntrinsics_ColumnTakesWidest(t *testing.T) {
	tester := newTester(t, 300, 100)
	require.NoError(t, tester.PumpWidget(widgets.Align{
		Alignment: widgets.AlignmentTopLeft,
		Child: maxWidth{Child: widgets.Column{
			CrossAxisAlignment: widgets.CrossAxisAlignmentStretch,
			Children: []core.Widget{
				widgets.SizedBox{Width: 30, Height: 10},
				widgets.SizedBox{Width: 70, Height: 10},
			},
		}}},
	))

	column := tester.Find(fctest.ByType[widgets.Column]()).RenderNode()
	assert.Equal(t, 70.0, column.Size().Width)
	for _, e := range tester.Find(fctest.ByType[widgets.SizedBox]()).All() {
		assert.Equal(t, 70.0, e.RenderNode().Size().Width)
	}
}
