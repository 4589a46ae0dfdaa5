package engine

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/config"
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/layoutcache"
	"github.com/go-drift/framecore/pkg/logging"
)

// Option configures an Engine.
type Option func(*Engine)

// WithScheduleFrame registers a callback the engine invokes when a new frame
// is needed, enabling on-demand scheduling instead of continuous polling.
// The callback may run on any goroutine and must not call back into the
// engine synchronously.
func WithScheduleFrame(fn func()) Option {
	return func(e *Engine) {
		e.scheduleFrame = fn
	}
}

// WithFrameTrace records per-frame samples into a ring buffer of the given
// capacity. Frames slower than threshold count as dropped.
func WithFrameTrace(capacity int, threshold time.Duration) Option {
	return func(e *Engine) {
		e.trace = NewFrameTraceBuffer(capacity, threshold)
	}
}

// WithCacheClock replaces time.Now for layout cache expiry, for tests.
func WithCacheClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.cacheClock = now
	}
}

// Engine drives frames: it owns the element tree, the build owner, the
// pipeline owner and the compositor, and runs the phases of a frame in
// order.
//
// StepFrame, RenderFrame and HitTest must not run concurrently with each
// other; the engine serializes them. SetRoot, Dispatch and RequestFrame are
// safe to call from any goroutine.
type Engine struct {
	// frameLock protects the element tree, the render tree and the last
	// layer tree.
	frameLock sync.Mutex

	owner      *core.BuildOwner
	pipeline   *layout.PipelineOwner
	elements   *core.ElementTree
	compositor *compositor.Compositor
	cache      *layoutcache.Cache[layout.CacheKey, layout.Result]
	cfg        config.Config

	rootMu      sync.Mutex
	rootWidget  core.Widget
	rootChanged bool

	dispatchMu    sync.Mutex
	dispatchQueue []func()

	pendingFrameRequest atomic.Bool
	scheduleFrame       func()

	layer      *compositor.Layer
	frames     uint64
	lastStats  FrameStats
	trace      *FrameTraceBuffer
	cacheClock func() time.Time
}

// New creates an engine configured by cfg. A nil cfg uses [config.Default].
//
// The configuration is applied once: it sizes the layout cache, enables
// parallel intrinsic measurement, sets the build batch window and the
// global debug mode.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{cfg: *cfg, compositor: compositor.New()}
	for _, opt := range opts {
		opt(e)
	}

	pipelineOpts := []layout.Option{layout.WithParallelLayout(cfg.Pipeline.ParallelLayout)}
	if cfg.LayoutCache.Enabled {
		cacheOpts := []layoutcache.Option{
			layoutcache.WithCapacity(cfg.LayoutCache.Capacity),
			layoutcache.WithTTL(cfg.LayoutCache.TTL),
		}
		if e.cacheClock != nil {
			cacheOpts = append(cacheOpts, layoutcache.WithClock(e.cacheClock))
		}
		e.cache = layoutcache.New[layout.CacheKey, layout.Result](cacheOpts...)
		pipelineOpts = append(pipelineOpts, layout.WithCache(e.cache))
	}
	e.pipeline = layout.NewPipelineOwner(pipelineOpts...)

	e.owner = core.NewBuildOwner()
	e.owner.SetBatchWindow(cfg.Build.BatchWindow)
	// Wire up frame scheduling so SetState triggers a frame under on-demand scheduling
	e.owner.OnBuildScheduled(e.RequestFrame)
	e.elements = core.NewElementTree(e.owner, e.pipeline)

	core.SetDebugMode(cfg.Pipeline.Debug)
	return e
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Elements returns the element tree. It must only be inspected between
// frames.
func (e *Engine) Elements() *core.ElementTree {
	return e.elements
}

// BuildOwner returns the build owner.
func (e *Engine) BuildOwner() *core.BuildOwner {
	return e.owner
}

// Pipeline returns the pipeline owner.
func (e *Engine) Pipeline() *layout.PipelineOwner {
	return e.pipeline
}

// Cache returns the layout cache, or nil when it is disabled.
func (e *Engine) Cache() *layoutcache.Cache[layout.CacheKey, layout.Result] {
	return e.cache
}

// Trace returns the frame trace buffer, or nil when tracing is disabled.
func (e *Engine) Trace() *FrameTraceBuffer {
	return e.trace
}

// SetRoot replaces the root description. It takes effect in the next frame,
// where it is reconciled against the current root like any other child.
// Passing nil unmounts the tree.
func (e *Engine) SetRoot(root core.Widget) {
	e.rootMu.Lock()
	e.rootWidget = root
	e.rootChanged = true
	e.rootMu.Unlock()
	e.RequestFrame()
}

func (e *Engine) takeRoot() (core.Widget, bool) {
	e.rootMu.Lock()
	defer e.rootMu.Unlock()
	changed := e.rootChanged
	e.rootChanged = false
	return e.rootWidget, changed
}

// Dispatch schedules a callback to run on the frame goroutine at the start
// of the next frame, before the build phase. It is safe to call from any
// goroutine.
func (e *Engine) Dispatch(callback func()) {
	if callback == nil {
		return
	}
	e.dispatchMu.Lock()
	e.dispatchQueue = append(e.dispatchQueue, callback)
	e.dispatchMu.Unlock()
	e.RequestFrame()
}

func (e *Engine) drainDispatchQueue() []func() {
	e.dispatchMu.Lock()
	callbacks := e.dispatchQueue
	e.dispatchQueue = nil
	e.dispatchMu.Unlock()
	return callbacks
}

// RequestFrame asks for a new frame even if nothing is dirty.
func (e *Engine) RequestFrame() {
	e.pendingFrameRequest.Store(true)
	if e.scheduleFrame != nil {
		e.scheduleFrame()
	}
}

// NeedsFrame reports whether a new frame would do any work.
func (e *Engine) NeedsFrame() bool {
	if e.pendingFrameRequest.Load() {
		return true
	}
	e.dispatchMu.Lock()
	hasCallbacks := len(e.dispatchQueue) > 0
	e.dispatchMu.Unlock()
	if hasCallbacks || e.owner.HasPending() {
		return true
	}
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.pipeline.NeedsLayout() || e.pipeline.NeedsPaint()
}

// StepFrame runs one frame up to and including paint: dispatched
// callbacks, build, finalize, layout and paint. The resulting layer tree is
// kept for [Engine.RenderFrame] and returned in the snapshot.
//
// Failures in user build, layout and paint logic are isolated by the phases
// themselves and reported through the error handler. Invariant violations
// are programming errors and propagate as panics.
func (e *Engine) StepFrame(size graphics.Size) (*FrameSnapshot, error) {
	if !validSize(size) {
		return nil, &errors.DriftError{
			Op:   "Engine.StepFrame",
			Kind: errors.KindLayout,
			Err:  fmt.Errorf("invalid frame size %gx%g", size.Width, size.Height),
		}
	}

	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	e.pendingFrameRequest.Store(false)

	frameStart := time.Now()
	e.owner.ResetStats()
	e.pipeline.ResetStats()
	treeBefore := e.elements.Stats()
	stats := FrameStats{Frame: e.frames + 1}

	// Dispatch
	phaseStart := time.Now()
	for _, callback := range e.drainDispatchQueue() {
		callback()
	}
	stats.DispatchDuration = time.Since(phaseStart)

	// Build
	phaseStart = time.Now()
	e.build()
	stats.BuildDuration = time.Since(phaseStart)

	// Finalize
	phaseStart = time.Now()
	e.owner.LockState(e.owner.FinalizeTree)
	e.pipeline.SweepCache()
	stats.FinalizeDuration = time.Since(phaseStart)

	root := e.elements.RootRenderNode()
	if root != nil {
		// Layout
		phaseStart = time.Now()
		e.pipeline.FlushLayout(root, layout.Tight(size))
		stats.LayoutDuration = time.Since(phaseStart)

		// Paint
		phaseStart = time.Now()
		e.layer = e.pipeline.FlushPaint(root)
		stats.PaintDuration = time.Since(phaseStart)
	} else {
		e.layer = nil
	}

	treeAfter := e.elements.Stats()
	stats.Build = e.owner.Stats()
	stats.Layout = e.pipeline.Stats()
	stats.Elements = e.elements.Len()
	stats.Mounted = treeAfter.Mounted - treeBefore.Mounted
	stats.Destroyed = treeAfter.Destroyed - treeBefore.Destroyed
	stats.BuildFailures = treeAfter.BuildFailures - treeBefore.BuildFailures
	if e.cache != nil {
		stats.Cache = e.cache.Stats()
	}
	if e.layer != nil {
		stats.Layers = e.layer.Count()
	}
	stats.Duration = time.Since(frameStart)

	e.frames++
	e.lastStats = stats
	if e.trace != nil {
		e.trace.Add(newFrameSample(frameStart, stats), stats.Duration)
	}
	logging.Logger().Debug("frame",
		"frame", stats.Frame,
		"build", stats.BuildDuration,
		"finalize", stats.FinalizeDuration,
		"layout", stats.LayoutDuration,
		"paint", stats.PaintDuration,
		"rebuilt", stats.Build.Rebuilt,
		"layouts", stats.Layout.Layouts,
		"cache_hits", stats.Layout.CacheHits,
		"cache_swept", stats.Layout.CacheSwept,
	)

	return &FrameSnapshot{Frame: stats.Frame, Size: size, Layer: e.layer, Stats: stats}, nil
}

// build runs the build phase inside a build scope, reconciling a new root
// first when one was set.
func (e *Engine) build() {
	e.pipeline.SetPhase(layout.PhaseBuild)
	defer e.pipeline.SetPhase(layout.PhaseIdle)
	e.owner.BuildScope(func() {
		if root, changed := e.takeRoot(); changed {
			e.elements.SetRoot(root)
		}
		e.owner.FlushBuild()
	})
}

// RenderFrame composites the layer tree of the last StepFrame through p.
// Must be called after a successful StepFrame.
func (e *Engine) RenderFrame(p compositor.Painter) (compositor.Stats, error) {
	if p == nil {
		return compositor.Stats{}, &errors.DriftError{Op: "Engine.RenderFrame", Kind: errors.KindPaint, Err: fmt.Errorf("nil painter")}
	}
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	if e.frames == 0 {
		return compositor.Stats{}, &errors.DriftError{Op: "Engine.RenderFrame", Kind: errors.KindLifecycle, Err: fmt.Errorf("no frame has been stepped")}
	}
	e.pipeline.SetPhase(layout.PhaseComposite)
	defer e.pipeline.SetPhase(layout.PhaseIdle)
	stats := e.compositor.Composite(e.layer, p)
	e.lastStats.Composite = stats
	return stats, nil
}

// LastStats returns the statistics of the most recent frame.
func (e *Engine) LastStats() FrameStats {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.lastStats
}

// Layer returns the layer tree of the most recent frame, or nil.
func (e *Engine) Layer() *compositor.Layer {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()
	return e.layer
}

func validSize(size graphics.Size) bool {
	return size.Width >= 0 && size.Height >= 0 &&
		!math.IsInf(size.Width, 0) && !math.IsInf(size.Height, 0) &&
		!math.IsNaN(size.Width) && !math.IsNaN(size.Height)
}
