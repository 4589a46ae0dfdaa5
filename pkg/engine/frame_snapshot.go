package engine

import (
	"time"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/layoutcache"
)

// FrameStats describes the work done by one frame.
type FrameStats struct {
	// Frame is the 1-based frame number.
	Frame uint64

	Build  core.BuildStats
	Layout layout.Stats
	// Cache is a snapshot of the layout cache counters, which accumulate
	// across frames. It is zero when the cache is disabled.
	Cache layoutcache.Stats
	// Composite is filled in by RenderFrame.
	Composite compositor.Stats

	// Elements is the number of live elements after finalize.
	Elements      int
	Mounted       int
	Destroyed     int
	BuildFailures int
	Layers        int

	DispatchDuration time.Duration
	BuildDuration    time.Duration
	FinalizeDuration time.Duration
	LayoutDuration   time.Duration
	PaintDuration    time.Duration
	Duration         time.Duration
}

// FrameSnapshot is the result of [Engine.StepFrame].
type FrameSnapshot struct {
	Frame uint64
	Size  graphics.Size
	// Layer is the root of the painted layer tree, or nil when nothing is
	// mounted. Retained boundary layers inside it are shared with later
	// frames and must not be mutated.
	Layer *compositor.Layer
	Stats FrameStats
}
