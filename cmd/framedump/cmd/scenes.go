package cmd

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/widgets"
)

// scene is a demo widget tree. Build returns the root and, for animated
// scenes, a tick function that advances it by one step.
type scene struct {
	Name  string
	Short string
	Build func() (core.Widget, func())
}

var scenes = map[string]scene{
	"flex": {
		Name:  "flex",
		Short: "rows and columns with flexible children",
		Build: func() (core.Widget, func()) { return flexScene(), nil },
	},
	"layers": {
		Name:  "layers",
		Short: "opacity, clip, transform and repaint boundaries",
		Build: func() (core.Widget, func()) { return layersScene(), nil },
	},
	"ticker": {
		Name:  "ticker",
		Short: "a stateful bar driven through a provider, one step per frame",
		Build: tickerScene,
	},
	"error": {
		Name:  "error",
		Short: "a subtree whose build fails next to healthy siblings",
		Build: func() (core.Widget, func()) { return errorScene(), nil },
	},
}

func lookupScene(name string) (scene, error) {
	s, ok := scenes[name]
	if !ok {
		return scene{}, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(sceneNames(), ", "))
	}
	return s, nil
}

func sceneNames() []string {
	return slices.Sorted(maps.Keys(scenes))
}

var palette = []graphics.Color{
	graphics.RGB(0xe5, 0x39, 0x35),
	graphics.RGB(0xfb, 0x8c, 0x00),
	graphics.RGB(0xfd, 0xd8, 0x35),
	graphics.RGB(0x43, 0xa0, 0x47),
	graphics.RGB(0x1e, 0x88, 0xe5),
	graphics.RGB(0x8e, 0x24, 0xaa),
}

func swatch(i int, width, height float64) core.Widget {
	return widgets.SizedBox{
		Width:  width,
		Height: height,
		Child:  widgets.ColoredBox{Color: palette[i%len(palette)]},
	}
}

func flexScene() core.Widget {
	return widgets.ColoredBox{
		Color: graphics.RGB(0xfa, 0xfa, 0xfa),
		Child: widgets.PaddingAll(16, widgets.Column{
			MainAxisSize:       widgets.MainAxisSizeMax,
			MainAxisAlignment:  widgets.MainAxisAlignmentSpaceBetween,
			CrossAxisAlignment: widgets.CrossAxisAlignmentStretch,
			Children: []core.Widget{
				widgets.Row{
					MainAxisSize: widgets.MainAxisSizeMax,
					Children: []core.Widget{
						swatch(0, 48, 48),
						widgets.HSpace(8),
						widgets.Expanded{Child: swatch(1, 0, 48)},
						widgets.HSpace(8),
						swatch(2, 48, 48),
					},
				},
				widgets.RowOf(widgets.MainAxisAlignmentCenter, widgets.CrossAxisAlignmentEnd, widgets.MainAxisSizeMax,
					swatch(3, 32, 24), swatch(4, 32, 48), swatch(5, 32, 72),
				),
				widgets.Row{
					MainAxisSize: widgets.MainAxisSizeMax,
					Children: []core.Widget{
						widgets.Expanded{Flex: 1, Child: swatch(4, 0, 32)},
						widgets.Expanded{Flex: 2, Child: swatch(5, 0, 32)},
						widgets.Spacer(),
					},
				},
			},
		}),
	}
}

func layersScene() core.Widget {
	return widgets.Row{
		MainAxisSize:       widgets.MainAxisSizeMax,
		MainAxisAlignment:  widgets.MainAxisAlignmentSpaceEvenly,
		CrossAxisAlignment: widgets.CrossAxisAlignmentCenter,
		Children: []core.Widget{
			widgets.Opacity{Opacity: 0.5, Child: swatch(0, 64, 64)},
			widgets.SizedBox{Width: 64, Height: 64, Child: widgets.ClipRect{
				Child: widgets.Align{Alignment: widgets.AlignmentTopLeft, Child: widgets.Transform{
					Transform: graphics.Translation(32, 32),
					Child:     swatch(1, 64, 64),
				}},
			}},
			widgets.Transform{
				Transform: graphics.Translation(32, 32).
					Multiply(graphics.Rotation(math.Pi / 4)).
					Multiply(graphics.Translation(-32, -32)),
				Child: swatch(2, 64, 64),
			},
			widgets.RepaintBoundary{Child: widgets.PaddingAll(8, swatch(3, 48, 48))},
		},
	}
}

// level is provided to the ticker bar; bars depend on it and rebuild when it
// changes.
type level struct {
	core.ProviderBase
	Value int
	Child core.Widget
}

func (l level) ChildWidget() core.Widget { return l.Child }

func (l level) UpdateShouldNotify(old core.ProviderWidget) bool {
	return l.Value != old.(level).Value
}

type levelBar struct {
	core.StatelessBase
	Index int
}

func (b levelBar) Build(ctx core.BuildContext) core.Widget {
	lvl, err := core.DependOn[level](ctx)
	if err != nil {
		panic(err)
	}
	height := 8 + float64((lvl.Value+b.Index*7)%40)*4
	return swatch(b.Index, 24, height)
}

// ticker holds the level in state; tick advances it.
type ticker struct {
	core.StatefulBase
	Bars   int
	handle *tickerHandle
}

type tickerHandle struct {
	state *tickerState
}

func (h *tickerHandle) tick() {
	if h.state == nil || h.state.IsDisposed() {
		return
	}
	h.state.SetState(func() { h.state.value++ })
}

func (t ticker) CreateState() core.State {
	return &tickerState{}
}

type tickerState struct {
	core.StateBase
	value int
}

func (s *tickerState) InitState() {
	s.Element().Widget().(ticker).handle.state = s
}

func (s *tickerState) Build(core.BuildContext) core.Widget {
	w := s.Element().Widget().(ticker)
	bars := make([]core.Widget, w.Bars)
	for i := range bars {
		bars[i] = widgets.Keyed{ItemKey: i, Child: levelBar{Index: i}}
	}
	return level{
		Value: s.value,
		Child: widgets.Centered(widgets.RowOf(
			widgets.MainAxisAlignmentCenter, widgets.CrossAxisAlignmentEnd, widgets.MainAxisSizeMin,
			slices.Insert(bars, 0, core.Widget(widgets.HSpace(4)))...,
		)),
	}
}

func tickerScene() (core.Widget, func()) {
	handle := &tickerHandle{}
	return ticker{Bars: 12, handle: handle}, handle.tick
}

type exploding struct {
	core.StatelessBase
}

func (exploding) Build(core.BuildContext) core.Widget {
	panic("demo build failure")
}

func errorScene() core.Widget {
	return widgets.PaddingAll(16, widgets.Row{
		MainAxisSize:       widgets.MainAxisSizeMax,
		CrossAxisAlignment: widgets.CrossAxisAlignmentStretch,
		Children: []core.Widget{
			widgets.Expanded{Child: swatch(3, 0, 0)},
			widgets.HSpace(16),
			widgets.Expanded{Child: exploding{}},
			widgets.HSpace(16),
			widgets.Expanded{Child: widgets.Padded(layout.EdgeInsetsSymmetric(8, 24), swatch(4, 0, 0))},
		},
	})
}
