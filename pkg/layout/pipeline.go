package layout

import (
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/layoutcache"
	"github.com/go-drift/framecore/pkg/logging"
	"github.com/go-drift/framecore/pkg/tree"
)

// parallelThreshold is the smallest number of siblings measured on several
// goroutines when parallel layout is enabled.
const parallelThreshold = 4

// Phase is the pipeline stage currently running.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseBuild
	PhaseLayout
	PhasePaint
	PhaseComposite
)

func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseLayout:
		return "layout"
	case PhasePaint:
		return "paint"
	case PhaseComposite:
		return "composite"
	default:
		return "idle"
	}
}

// Stats counts the work done by the most recent FlushLayout and FlushPaint.
type Stats struct {
	// Layouts is the number of PerformLayout calls.
	Layouts int
	// CacheHits counts layouts answered from the layout cache.
	CacheHits int
	// CacheMisses counts cache lookups that found nothing.
	CacheMisses int
	// SkippedClean counts clean nodes whose constraints did not change.
	SkippedClean int
	// Paints is the number of Paint calls.
	Paints int
	// Failures counts isolated layout and paint failures.
	Failures int
	// CacheSwept counts cache entries dropped by SweepCache.
	CacheSwept int
}

// Option configures a PipelineOwner.
type Option func(*PipelineOwner)

// WithCache enables the layout cache.
func WithCache(cache *layoutcache.Cache[CacheKey, Result]) Option {
	return func(p *PipelineOwner) {
		p.cache = cache
	}
}

// WithParallelLayout measures the children of many-children nodes on several
// goroutines during intrinsic and dry layout queries.
func WithParallelLayout(enabled bool) Option {
	return func(p *PipelineOwner) {
		p.parallel = enabled
	}
}

// PipelineOwner tracks render nodes that need layout or paint and runs the
// layout and paint phases.
//
// Layout scheduling works with relayout boundaries: MarkNeedsLayout walks up
// to the nearest boundary, marking each node on the way, and the boundary is
// scheduled here. FlushLayout lays out from the root, then from any boundary
// still dirty, parents first.
//
// A PipelineOwner is used from a single goroutine.
type PipelineOwner struct {
	phase Phase

	dirtyLayout    []*RenderNode
	dirtyLayoutSet map[*RenderNode]struct{}
	dirtyPaint     map[*RenderNode]struct{}

	// failed holds nodes whose layout failed this frame. They are marked
	// again at the start of the next FlushLayout.
	failed []*RenderNode

	cache    *layoutcache.Cache[CacheKey, Result]
	retired  []tree.ID
	parallel bool
	workers  int

	stats Stats
}

// NewPipelineOwner returns an idle owner.
func NewPipelineOwner(opts ...Option) *PipelineOwner {
	p := &PipelineOwner{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Phase returns the running phase.
func (p *PipelineOwner) Phase() Phase {
	return p.phase
}

// SetPhase records the running phase. The frame driver calls it for phases
// this package does not run itself.
func (p *PipelineOwner) SetPhase(phase Phase) {
	p.phase = phase
}

// Cache returns the layout cache, or nil when caching is disabled.
func (p *PipelineOwner) Cache() *layoutcache.Cache[CacheKey, Result] {
	return p.cache
}

// Stats returns the counters of the current frame.
func (p *PipelineOwner) Stats() Stats {
	return p.stats
}

// SweepCache drops the cache entries of nodes disposed since the last sweep,
// together with expired entries, and returns how many were dropped. Layout
// epochs are never reused, so those entries could not hit again. The frame
// driver calls it once per frame, after the element tree is finalized and
// before the ids of disposed nodes are handed out again.
func (p *PipelineOwner) SweepCache() int {
	retired := p.retired
	p.retired = nil
	if p.cache == nil || (len(retired) == 0 && p.cache.TTL() <= 0) {
		return 0
	}
	var match func(CacheKey) bool
	if len(retired) > 0 {
		gone := make(map[tree.ID]struct{}, len(retired))
		for _, id := range retired {
			gone[id] = struct{}{}
		}
		match = func(k CacheKey) bool {
			_, ok := gone[k.Node]
			return ok
		}
	}
	removed, expired := p.cache.Sweep(match)
	p.stats.CacheSwept += removed + expired
	return removed + expired
}

func (p *PipelineOwner) retire(id tree.ID) {
	if p.cache != nil && id != tree.None {
		p.retired = append(p.retired, id)
	}
}

// ResetStats zeroes the frame counters.
func (p *PipelineOwner) ResetStats() {
	p.stats = Stats{}
}

func (p *PipelineOwner) scheduleLayout(n *RenderNode) {
	if p.dirtyLayoutSet == nil {
		p.dirtyLayoutSet = make(map[*RenderNode]struct{})
	}
	if _, ok := p.dirtyLayoutSet[n]; ok {
		return
	}
	p.dirtyLayoutSet[n] = struct{}{}
	p.dirtyLayout = append(p.dirtyLayout, n)
}

func (p *PipelineOwner) schedulePaint(n *RenderNode) {
	if p.dirtyPaint == nil {
		p.dirtyPaint = make(map[*RenderNode]struct{})
	}
	p.dirtyPaint[n] = struct{}{}
}

// NeedsLayout reports whether any relayout boundary is scheduled.
func (p *PipelineOwner) NeedsLayout() bool {
	return len(p.dirtyLayout) > 0 || len(p.failed) > 0
}

// NeedsPaint reports whether any repaint boundary is scheduled.
func (p *PipelineOwner) NeedsPaint() bool {
	return len(p.dirtyPaint) > 0
}

// FlushLayout lays out the tree under root with constraints. Clean subtrees
// whose constraints did not change are skipped.
func (p *PipelineOwner) FlushLayout(root *RenderNode, constraints Constraints) {
	if root == nil {
		return
	}
	if p.phase == PhaseLayout || p.phase == PhasePaint {
		errors.Violation(errors.KindLifecycle, "PipelineOwner.FlushLayout", "re-entered during %s", p.phase)
	}
	if !constraints.IsNormalized() {
		errors.Violation(errors.KindLifecycle, "PipelineOwner.FlushLayout", "invalid root %v", constraints)
	}
	prev := p.phase
	p.phase = PhaseLayout
	defer func() { p.phase = prev }()

	retry := p.failed
	p.failed = nil
	for _, n := range retry {
		if !n.disposed {
			n.layoutFailed = false
			n.MarkNeedsLayout()
		}
	}

	run := &layoutRun{owner: p}
	run.layoutNode(root, constraints)
	p.flushDirtyBoundaries(run)
	logging.Logger().Debug("layout flushed",
		"layouts", p.stats.Layouts, "hits", p.stats.CacheHits, "skipped", p.stats.SkippedClean, "failures", p.stats.Failures)
}

// flushDirtyBoundaries lays out boundaries still dirty after the root pass,
// parents first. A parent's layout usually cleans its scheduled descendants,
// which are then skipped.
func (p *PipelineOwner) flushDirtyBoundaries(run *layoutRun) {
	for len(p.dirtyLayout) > 0 {
		dirty := p.dirtyLayout
		p.dirtyLayout = nil
		p.dirtyLayoutSet = nil
		slices.SortStableFunc(dirty, func(a, b *RenderNode) int {
			return a.depth - b.depth
		})
		for _, n := range dirty {
			if n.disposed || n.owner != p || !n.needsLayout || !n.hasConstraints || n.layoutFailed {
				continue
			}
			run.layoutNode(n, n.constraints)
		}
	}
}

// FlushPaint repaints every dirty repaint boundary under root, parents
// first, and returns the root layer. Clean boundaries keep their layer.
func (p *PipelineOwner) FlushPaint(root *RenderNode) *compositor.Layer {
	if root == nil {
		return nil
	}
	if p.phase == PhaseLayout || p.phase == PhasePaint {
		errors.Violation(errors.KindLifecycle, "PipelineOwner.FlushPaint", "re-entered during %s", p.phase)
	}
	prev := p.phase
	p.phase = PhasePaint
	defer func() { p.phase = prev }()

	dirty := make([]*RenderNode, 0, len(p.dirtyPaint)+1)
	for n := range p.dirtyPaint {
		dirty = append(dirty, n)
	}
	p.dirtyPaint = nil
	if root.layer == nil {
		dirty = append(dirty, root)
	}
	slices.SortFunc(dirty, func(a, b *RenderNode) int {
		return a.depth - b.depth
	})
	for _, n := range dirty {
		if n.disposed || n.owner != p || (!n.needsPaint && n.layer != nil) || !n.IsRepaintBoundary() {
			continue
		}
		if n != root && !n.isDescendantOf(root) {
			continue
		}
		p.repaintBoundary(n)
	}
	return root.layer
}

func (n *RenderNode) isDescendantOf(root *RenderNode) bool {
	for a := n.parent; a != nil; a = a.parent {
		if a == root {
			return true
		}
	}
	return false
}

// measureParallel runs fn for every child on a bounded set of goroutines.
// Only dry runs are handed out, so no render node is written. A panic on a
// worker is re-raised on the caller's goroutine.
func (p *PipelineOwner) measureParallel(children []*RenderNode, fn func(i int, child *RenderNode, run *layoutRun)) {
	var g errgroup.Group
	g.SetLimit(max(1, p.workers))
	for i, child := range children {
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = &workerPanic{value: rec}
				}
			}()
			fn(i, child, &layoutRun{owner: p, dry: true})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var wp *workerPanic
		if errors.As(err, &wp) {
			panic(wp.value)
		}
	}
}

type workerPanic struct {
	value any
}

func (w *workerPanic) Error() string {
	return fmt.Sprintf("measure worker panicked: %v", w.value)
}
