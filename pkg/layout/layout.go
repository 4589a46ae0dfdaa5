package layout

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/tree"
)

// Placement is where one child ended up during its parent's layout.
type Placement struct {
	Constraints Constraints
	Size        graphics.Size
	Offset      graphics.Offset
	// LaidOut is false for children the parent never laid out.
	LaidOut bool
}

// Result is the cached outcome of one PerformLayout call.
type Result struct {
	Size     graphics.Size
	Children []Placement
}

// CacheKey identifies a layout result. Fingerprint hashes the node's layout
// epoch together with the ids and epochs of its children, so any change to
// the node or its child list produces a different key.
type CacheKey struct {
	Node        tree.ID
	Constraints Constraints
	ChildCount  int
	Fingerprint uint64
}

// cacheKey builds the key for laying n out under c.
func (n *RenderNode) cacheKey(c Constraints) CacheKey {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(n.epoch)
	write(uint64(len(n.children)))
	for _, child := range n.children {
		write(uint64(child.id))
		write(child.epoch)
	}
	return CacheKey{Node: n.id, Constraints: c, ChildCount: len(n.children), Fingerprint: h.Sum64()}
}

// frame records child placements during one PerformLayout call.
type frame struct {
	laidOut    []bool
	placements []Placement
}

func newFrame(children int) *frame {
	return &frame{laidOut: make([]bool, children), placements: make([]Placement, children)}
}

func (f *frame) record(index int, c Constraints, size graphics.Size) {
	if f == nil {
		return
	}
	f.laidOut[index] = true
	f.placements[index].Constraints = c
	f.placements[index].Size = size
	f.placements[index].LaidOut = true
}

// layoutRun is one layout traversal. A dry run measures without writing to
// any render node and may run on several goroutines at once.
type layoutRun struct {
	owner *PipelineOwner
	dry   bool
}

func (r *layoutRun) layoutChild(n *RenderNode, c Constraints) graphics.Size {
	if !c.IsNormalized() {
		panic(fmt.Errorf("%s laid out with invalid %v", n.Label(), c))
	}
	if r.dry {
		return r.dryLayout(n, c)
	}
	return r.layoutNode(n, c)
}

// layoutNode lays n out under c. A clean node whose constraints did not
// change keeps its size without running anything. Otherwise the layout
// cache is consulted; a hit replays the recorded child placements.
func (r *layoutRun) layoutNode(n *RenderNode, c Constraints) graphics.Size {
	p := r.owner
	if !n.needsLayout && n.hasConstraints && n.constraints == c {
		p.stats.SkippedClean++
		return n.size
	}
	n.constraints, n.hasConstraints = c, true

	key := n.cacheKey(c)
	var (
		res Result
		hit bool
	)
	if p.cache != nil {
		res, hit = p.cache.Get(key)
	}
	if hit {
		p.stats.CacheHits++
		r.replay(n, res)
	} else {
		if p.cache != nil {
			p.stats.CacheMisses++
		}
		p.stats.Layouts++
		var failure *errors.BoundaryError
		res, failure = r.perform(n, c)
		if failure != nil {
			p.stats.Failures++
			n.size = c.Smallest()
			n.layoutFailed = true
			p.failed = append(p.failed, n)
			errors.ReportBoundaryError(failure)
			n.MarkNeedsPaint()
			return n.size
		}
		if p.cache != nil {
			p.cache.Set(key, res)
		}
	}
	n.size = res.Size
	n.needsLayout = false
	n.layoutFailed = false
	n.MarkNeedsPaint()
	return n.size
}

// replay positions n's children exactly as a cached result recorded them.
// Children are laid out again under their recorded constraints, which is a
// no-op for clean children.
func (r *layoutRun) replay(n *RenderNode, res Result) {
	for i, child := range n.children {
		if i >= len(res.Children) {
			break
		}
		pl := res.Children[i]
		if pl.LaidOut {
			r.layoutNode(child, pl.Constraints)
		}
		child.setOffset(pl.Offset)
	}
}

// perform runs the box's PerformLayout and isolates any failure to n.
func (r *layoutRun) perform(n *RenderNode, c Constraints) (res Result, failure *errors.BoundaryError) {
	f := newFrame(len(n.children))
	s := &scope{node: n, run: r, frame: f}
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := errors.AsInvariant(rec); ok {
				panic(rec)
			}
			failure = &errors.BoundaryError{
				Phase:      "layout",
				Widget:     n.label,
				Element:    n.id.String(),
				Recovered:  rec,
				StackTrace: errors.CaptureStack(),
			}
		}
	}()
	size := n.impl.performLayout(s, c)
	if !size.IsFinite() {
		return Result{}, &errors.BoundaryError{
			Phase:   "layout",
			Widget:  n.label,
			Element: n.id.String(),
			Err:     fmt.Errorf("non-finite size %gx%g under %v", size.Width, size.Height, c),
		}
	}
	for i := range f.placements {
		f.placements[i].LaidOut = f.laidOut[i]
	}
	return Result{Size: c.Constrain(size), Children: f.placements}, nil
}

// dryLayout computes the size n would choose under c without touching n or
// its descendants. Failures yield the smallest size and are not reported;
// the real layout reports them.
func (r *layoutRun) dryLayout(n *RenderNode, c Constraints) graphics.Size {
	if !n.needsLayout && n.hasConstraints && n.constraints == c {
		return n.size
	}
	var key CacheKey
	if r.owner != nil && r.owner.cache != nil {
		key = n.cacheKey(c)
		if res, ok := r.owner.cache.Get(key); ok {
			return res.Size
		}
	}
	res, failure := r.perform(n, c)
	if failure != nil {
		return c.Smallest()
	}
	if r.owner != nil && r.owner.cache != nil {
		r.owner.cache.Set(key, res)
	}
	return res.Size
}

// intrinsic answers an intrinsic query. Boxes without an IntrinsicSizer are
// measured by a dry layout with the queried axis unbounded and the other
// axis limited to extent.
func (r *layoutRun) intrinsic(n *RenderNode, dim IntrinsicDimension, extent float64) (v float64) {
	dry := r
	if !r.dry {
		dry = &layoutRun{owner: r.owner, dry: true}
	}
	answered := false
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				if _, ok := errors.AsInvariant(rec); ok {
					panic(rec)
				}
				v, answered = 0, true
			}
		}()
		v, answered = n.impl.intrinsic(&scope{node: n, run: dry}, dim, extent)
	}()
	if answered {
		return v
	}
	if dim.IsWidth() {
		return dry.dryLayout(n, Constraints{MaxWidth: Unbounded, MaxHeight: extent}).Width
	}
	return dry.dryLayout(n, Constraints{MaxWidth: extent, MaxHeight: Unbounded}).Height
}
