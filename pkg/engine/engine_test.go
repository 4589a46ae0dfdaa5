package engine

import (
	stderrors "errors"
	"image/color"
	"math"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/framecore/pkg/config"
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/raster"
	"github.com/go-drift/framecore/pkg/tree"
	"github.com/go-drift/framecore/pkg/widgets"
)

type counter struct {
	core.StatefulBase
	state **counterState
}

func (c counter) CreateState() core.State {
	s := &counterState{}
	if c.state != nil {
		*c.state = s
	}
	return s
}

type counterState struct {
	core.StateBase
	count int
}

func (s *counterState) Build(core.BuildContext) core.Widget {
	return widgets.SizedBox{Width: float64(10 + s.count), Height: 10}
}

func redSquare() core.Widget {
	return widgets.Centered(widgets.SizedBox{
		Width:  10,
		Height: 10,
		Child:  widgets.ColoredBox{Color: graphics.ColorRed},
	})
}

func findElement[W core.Widget](t *testing.T, e *Engine) tree.ID {
	t.Helper()
	elements := e.Elements()
	for id := range elements.Descendants(elements.Root()) {
		el, _ := elements.Get(id)
		if _, ok := el.Widget().(W); ok {
			return id
		}
	}
	var zero W
	t.Fatalf("no %s element", reflect.TypeOf(zero))
	return tree.None
}

func TestStepFrameRunsAllPhases(t *testing.T) {
	e := New(nil)
	e.SetRoot(redSquare())

	snap, err := e.StepFrame(graphics.Size{Width: 40, Height: 30})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Frame)
	assert.Equal(t, graphics.Size{Width: 40, Height: 30}, snap.Size)
	require.NotNil(t, snap.Layer)

	stats := snap.Stats
	assert.Positive(t, stats.Mounted)
	assert.Equal(t, stats.Mounted, stats.Elements)
	assert.Positive(t, stats.Layout.Layouts)
	assert.Positive(t, stats.Layout.Paints)
	assert.Zero(t, stats.BuildFailures)
	assert.Equal(t, snap.Layer.Count(), stats.Layers)
	assert.Equal(t, stats, e.LastStats())

	root := e.Elements().RootRenderNode()
	require.NotNil(t, root)
	assert.Equal(t, graphics.Size{Width: 40, Height: 30}, root.Size())
	assert.False(t, e.NeedsFrame())
}

func TestStepFrameRejectsInvalidSize(t *testing.T) {
	e := New(nil)
	for _, size := range []graphics.Size{
		{Width: -1, Height: 10},
		{Width: math.Inf(1), Height: 10},
		{Width: 10, Height: math.NaN()},
	} {
		_, err := e.StepFrame(size)
		var de *errors.DriftError
		require.True(t, stderrors.As(err, &de), "size %v", size)
		assert.Equal(t, errors.KindLayout, de.Kind)
	}
}

func TestRenderFrame(t *testing.T) {
	e := New(nil)

	_, err := e.RenderFrame(raster.New(1, 1))
	require.Error(t, err, "no frame stepped yet")
	_, err = e.RenderFrame(nil)
	require.Error(t, err)

	e.SetRoot(redSquare())
	_, err = e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)

	canvas := raster.New(20, 20)
	stats, err := e.RenderFrame(canvas)
	require.NoError(t, err)
	assert.Positive(t, stats.Ops)
	assert.Equal(t, stats, e.LastStats().Composite)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, canvas.Image().RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{}, canvas.Image().RGBAAt(2, 2))
}

func TestSetStateSchedulesFrame(t *testing.T) {
	var requests atomic.Int32
	e := New(nil, WithScheduleFrame(func() { requests.Add(1) }))

	var state *counterState
	e.SetRoot(widgets.Centered(counter{state: &state}))
	_, err := e.StepFrame(graphics.Size{Width: 100, Height: 100})
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.False(t, e.NeedsFrame())

	before := requests.Load()
	state.SetState(func() { state.count = 5 })
	assert.Greater(t, requests.Load(), before)
	assert.True(t, e.NeedsFrame())

	snap, err := e.StepFrame(graphics.Size{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Stats.Build.Rebuilt)
	assert.Zero(t, snap.Stats.Mounted, "rebuild updates in place")

	box := e.Elements().RenderNode(findElement[widgets.SizedBox](t, e))
	assert.Equal(t, graphics.Size{Width: 15, Height: 10}, box.Size())
}

func TestDispatchRunsBeforeBuild(t *testing.T) {
	e := New(nil)
	var state *counterState
	e.SetRoot(widgets.Centered(counter{state: &state}))
	_, err := e.StepFrame(graphics.Size{Width: 50, Height: 50})
	require.NoError(t, err)

	e.Dispatch(nil)
	assert.False(t, e.NeedsFrame(), "nil callbacks are dropped")

	done := make(chan struct{})
	go func() {
		e.Dispatch(func() { state.SetState(func() { state.count = 1 }) })
		close(done)
	}()
	<-done
	assert.True(t, e.NeedsFrame())

	snap, err := e.StepFrame(graphics.Size{Width: 50, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Stats.Build.Rebuilt, "dispatched SetState is built in the same frame")
}

func TestSetRootNilUnmounts(t *testing.T) {
	e := New(nil)
	e.SetRoot(redSquare())
	_, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)
	mounted := e.Elements().Len()

	e.SetRoot(nil)
	snap, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)
	assert.Nil(t, snap.Layer)
	assert.Zero(t, e.Elements().Len())
	assert.Equal(t, mounted, snap.Stats.Destroyed)
	assert.Nil(t, e.Layer())
}

func TestReplacingRootReusesMatchingElements(t *testing.T) {
	e := New(nil)
	e.SetRoot(redSquare())
	_, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)
	box := findElement[widgets.ColoredBox](t, e)

	e.SetRoot(widgets.Centered(widgets.SizedBox{
		Width:  10,
		Height: 10,
		Child:  widgets.ColoredBox{Color: graphics.ColorBlue},
	}))
	snap, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)
	assert.Zero(t, snap.Stats.Mounted)
	assert.Equal(t, box, findElement[widgets.ColoredBox](t, e))
}

func TestHitTest(t *testing.T) {
	e := New(nil)
	_, ok := e.HitTest(graphics.Offset{X: 1, Y: 1})
	assert.False(t, ok, "nothing mounted")

	e.SetRoot(redSquare())
	_, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)

	id, ok := e.HitTest(graphics.Offset{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, findElement[widgets.ColoredBox](t, e), id)

	_, ok = e.HitTest(graphics.Offset{X: 1, Y: 1})
	assert.False(t, ok, "the centering box is not hit-testable itself")

	path := e.HitTestPath(graphics.Offset{X: 10, Y: 10})
	require.NotEmpty(t, path)
	assert.Equal(t, id, path[0])
}

func TestConfigWiresLayoutCache(t *testing.T) {
	cfg := config.Default()
	cfg.LayoutCache.Enabled = false
	assert.Nil(t, New(cfg).Cache())
	assert.Nil(t, New(cfg).Pipeline().Cache())

	cfg.LayoutCache.Enabled = true
	cfg.LayoutCache.Capacity = 8
	e := New(cfg)
	require.NotNil(t, e.Cache())
	assert.Same(t, e.Cache(), e.Pipeline().Cache())
	assert.Equal(t, 8, e.Cache().Stats().Capacity)

	e.SetRoot(redSquare())
	snap, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Stats.Cache.Capacity)
}

func TestBatchWindowCoalescesScheduling(t *testing.T) {
	var requests atomic.Int32
	cfg := config.Default()
	cfg.Build.BatchWindow = 50 * time.Millisecond
	e := New(cfg, WithScheduleFrame(func() { requests.Add(1) }))

	var state *counterState
	e.SetRoot(counter{state: &state})
	_, err := e.StepFrame(graphics.Size{Width: 50, Height: 50})
	require.NoError(t, err)
	requests.Store(0)

	state.SetState(nil)
	state.SetState(nil)
	assert.True(t, e.NeedsFrame())
	assert.Eventually(t, func() bool { return requests.Load() == 1 }, time.Second, 5*time.Millisecond)

	snap, err := e.StepFrame(graphics.Size{Width: 50, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Stats.Build.Rebuilt, "duplicate requests collapse")
	assert.Equal(t, int32(1), requests.Load())
}

func TestFrameTrace(t *testing.T) {
	e := New(nil, WithFrameTrace(2, time.Hour))
	require.NotNil(t, e.Trace())
	assert.Nil(t, New(nil).Trace())

	e.SetRoot(redSquare())
	for range 3 {
		e.RequestFrame()
		_, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
		require.NoError(t, err)
	}

	timeline := e.Trace().Snapshot()
	require.Len(t, timeline.Samples, 2)
	assert.Equal(t, uint64(2), timeline.Samples[0].Frame)
	assert.Equal(t, uint64(3), timeline.Samples[1].Frame)
	assert.Zero(t, timeline.DroppedFrames)
	assert.Equal(t, float64(time.Hour/time.Millisecond), timeline.ThresholdMs)
}

func TestBuildFailureIsIsolated(t *testing.T) {
	e := New(nil)
	e.SetRoot(widgets.Centered(core.Builder{Fn: func(core.BuildContext) core.Widget {
		panic("boom")
	}}))

	snap, err := e.StepFrame(graphics.Size{Width: 20, Height: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Stats.BuildFailures)
	findElement[widgets.ErrorWidget](t, e)
	assert.NotNil(t, snap.Layer)
}

func TestStepFrameSweepsCacheOfDisposedNodes(t *testing.T) {
	e := New(nil)
	row := func(widths ...float64) core.Widget {
		children := make([]core.Widget, len(widths))
		for i, w := range widths {
			children[i] = widgets.Keyed{ItemKey: w, Child: widgets.SizedBox{Width: w, Height: 10}}
		}
		return widgets.Row{Children: children}
	}
	size := graphics.Size{Width: 200, Height: 50}

	e.SetRoot(row(10, 20, 30))
	_, err := e.StepFrame(size)
	require.NoError(t, err)

	var removed tree.ID
	elements := e.Elements()
	for id := range elements.Descendants(elements.Root()) {
		el, _ := elements.Get(id)
		if box, ok := el.Widget().(widgets.SizedBox); ok && box.Width == 30 {
			removed = id
		}
	}
	require.NotEqual(t, tree.None, removed)
	inCache := func(id tree.ID) int {
		n := 0
		e.Cache().Sweep(func(k layout.CacheKey) bool {
			if k.Node == id {
				n++
			}
			return false
		})
		return n
	}
	require.Positive(t, inCache(removed))

	e.SetRoot(row(10, 20))
	snap, err := e.StepFrame(size)
	require.NoError(t, err)
	assert.Positive(t, snap.Stats.Layout.CacheSwept)
	assert.Zero(t, inCache(removed), "entries of the disposed node are dropped")
}

func TestStepFramePurgesExpiredCacheEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	cfg := config.Default()
	cfg.LayoutCache.TTL = time.Second
	e := New(cfg, WithCacheClock(func() time.Time { return now }))
	e.SetRoot(redSquare())

	_, err := e.StepFrame(graphics.Size{Width: 40, Height: 30})
	require.NoError(t, err)
	stored := e.Cache().Len()
	require.Positive(t, stored)

	now = now.Add(2 * time.Second)
	snap, err := e.StepFrame(graphics.Size{Width: 40, Height: 30})
	require.NoError(t, err)
	assert.Equal(t, stored, snap.Stats.Layout.CacheSwept)
	assert.Zero(t, e.Cache().Len(), "a clean tree adds no entries after the purge")
}
