package core

import (
	"container/heap"
	"sync"
	"time"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/logging"
	"github.com/go-drift/framecore/pkg/tree"
)

// BuildState is the scheduling state of a [BuildOwner].
type BuildState uint8

const (
	StateIdle BuildState = iota
	// StateInBuildScope allows tree mutation and [BuildOwner.FlushBuild].
	StateInBuildScope
	// StateLocked rejects tree mutation. Build requests are queued until
	// the lock is released.
	StateLocked
)

func (s BuildState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInBuildScope:
		return "in-build-scope"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// BuildStats counts the work done by [BuildOwner.FlushBuild].
type BuildStats struct {
	Scheduled int
	Rebuilt   int
	Retried   int
	Finalized int
}

type buildEntry struct {
	id      tree.ID
	depth   int
	seq     uint64
	force   bool
	removed bool
	index   int
}

// buildQueue orders entries by depth, then by scheduling order.
type buildQueue []*buildEntry

func (q buildQueue) Len() int { return len(q) }

func (q buildQueue) Less(i, j int) bool {
	if q[i].depth != q[j].depth {
		return q[i].depth < q[j].depth
	}
	return q[i].seq < q[j].seq
}

func (q buildQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *buildQueue) Push(x any) {
	e := x.(*buildEntry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *buildQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

type buildRequest struct {
	id    tree.ID
	depth int
	force bool
}

// BuildOwner schedules element rebuilds and guards when the element tree
// may be mutated.
//
// ScheduleBuildFor is safe to call from any goroutine. Everything else must
// run on the UI goroutine.
type BuildOwner struct {
	mu       sync.Mutex
	state    BuildState
	queue    buildQueue
	pending  map[tree.ID]*buildEntry
	queued   []buildRequest
	deferred []buildRequest
	seq      uint64
	stats    BuildStats

	onScheduled func()
	batchWindow time.Duration
	batchArmed  bool

	tree *ElementTree
}

// NewBuildOwner creates an idle build owner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{pending: make(map[tree.ID]*buildEntry)}
}

// OnBuildScheduled registers fn to be called whenever the pending set goes
// from empty to non-empty. The callback runs on the scheduling goroutine.
func (b *BuildOwner) OnBuildScheduled(fn func()) {
	b.mu.Lock()
	b.onScheduled = fn
	b.mu.Unlock()
}

// SetBatchWindow coalesces OnBuildScheduled calls so that at most one fires
// per window. Zero disables batching.
func (b *BuildOwner) SetBatchWindow(d time.Duration) {
	b.mu.Lock()
	b.batchWindow = d
	b.mu.Unlock()
}

// State returns the current scheduling state.
func (b *BuildOwner) State() BuildState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns the counters accumulated since the last ResetStats.
func (b *BuildOwner) Stats() BuildStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// ResetStats clears the counters.
func (b *BuildOwner) ResetStats() {
	b.mu.Lock()
	b.stats = BuildStats{}
	b.mu.Unlock()
}

// HasPending reports whether rebuilds are waiting, including requests
// queued during a lock and retries deferred to the next flush.
func (b *BuildOwner) HasPending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) > 0 || len(b.queued) > 0 || len(b.deferred) > 0
}

// ScheduleBuildFor requests a rebuild of the element id at the given depth.
// Duplicate requests collapse into one. While the owner is locked the
// request is queued and applied when the lock is released.
func (b *BuildOwner) ScheduleBuildFor(id tree.ID, depth int) {
	b.schedule(id, depth, true)
}

func (b *BuildOwner) schedule(id tree.ID, depth int, force bool) {
	if id == tree.None {
		return
	}
	b.mu.Lock()
	if b.state == StateLocked {
		b.queued = append(b.queued, buildRequest{id: id, depth: depth, force: force})
		b.mu.Unlock()
		logging.Logger().Debug("build request queued while locked", "element", id)
		return
	}
	wasEmpty := len(b.pending) == 0
	added := b.push(id, depth, force)
	b.mu.Unlock()
	if added && wasEmpty {
		b.notify()
	}
}

// push adds an entry; b.mu must be held.
func (b *BuildOwner) push(id tree.ID, depth int, force bool) bool {
	if e, ok := b.pending[id]; ok {
		e.force = e.force || force
		return false
	}
	b.seq++
	e := &buildEntry{id: id, depth: depth, seq: b.seq, force: force}
	b.pending[id] = e
	heap.Push(&b.queue, e)
	b.stats.Scheduled++
	return true
}

func (b *BuildOwner) notify() {
	b.mu.Lock()
	fn := b.onScheduled
	window := b.batchWindow
	if fn == nil {
		b.mu.Unlock()
		return
	}
	if window <= 0 {
		b.mu.Unlock()
		fn()
		return
	}
	if b.batchArmed {
		b.mu.Unlock()
		return
	}
	b.batchArmed = true
	b.mu.Unlock()
	time.AfterFunc(window, func() {
		b.mu.Lock()
		b.batchArmed = false
		b.mu.Unlock()
		fn()
	})
}

// retry schedules id for the flush after the current one.
func (b *BuildOwner) retry(id tree.ID, depth int) {
	b.mu.Lock()
	b.deferred = append(b.deferred, buildRequest{id: id, depth: depth, force: true})
	b.mu.Unlock()
	b.notify()
}

// forget drops every request for a destroyed element so that a recycled id
// never receives a stale rebuild.
func (b *BuildOwner) forget(id tree.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.pending[id]; ok {
		e.removed = true
		delete(b.pending, id)
	}
	b.queued = dropRequests(b.queued, id)
	b.deferred = dropRequests(b.deferred, id)
}

func dropRequests(reqs []buildRequest, id tree.ID) []buildRequest {
	out := reqs[:0]
	for _, r := range reqs {
		if r.id != id {
			out = append(out, r)
		}
	}
	return out
}

// BuildScope runs fn with tree mutation enabled. Entering a build scope
// from inside another one, or while locked, is a lifecycle violation.
func (b *BuildOwner) BuildScope(fn func()) {
	b.mu.Lock()
	if b.state != StateIdle {
		state := b.state
		b.mu.Unlock()
		errors.Violation(errors.KindLifecycle, "BuildOwner.BuildScope", "cannot enter a build scope while %s", state)
	}
	b.state = StateInBuildScope
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.state = StateIdle
		b.mu.Unlock()
	}()
	fn()
}

// FlushBuild rebuilds pending elements until none are left. The shallowest
// pending element is always rebuilt first; elements scheduled while the
// flush runs join the same queue.
func (b *BuildOwner) FlushBuild() {
	b.requireScope("BuildOwner.FlushBuild")
	if b.tree == nil {
		return
	}

	b.mu.Lock()
	deferred := b.deferred
	b.deferred = nil
	for _, r := range deferred {
		b.push(r.id, r.depth, r.force)
	}
	b.stats.Retried += len(deferred)
	b.mu.Unlock()

	for {
		b.mu.Lock()
		var next *buildEntry
		for b.queue.Len() > 0 {
			e := heap.Pop(&b.queue).(*buildEntry)
			if !e.removed {
				next = e
				delete(b.pending, e.id)
				break
			}
		}
		if next != nil {
			b.stats.Rebuilt++
		}
		b.mu.Unlock()
		if next == nil {
			return
		}
		b.tree.rebuildScheduled(next.id, next.force)
	}
}

// LockState runs fn with tree mutation disabled. Build requests made while
// locked are applied afterwards.
func (b *BuildOwner) LockState(fn func()) {
	b.mu.Lock()
	if b.state != StateIdle {
		state := b.state
		b.mu.Unlock()
		errors.Violation(errors.KindLifecycle, "BuildOwner.LockState", "cannot lock while %s", state)
	}
	b.state = StateLocked
	b.mu.Unlock()
	defer b.unlock()
	fn()
}

func (b *BuildOwner) unlock() {
	b.mu.Lock()
	b.state = StateIdle
	queued := b.queued
	b.queued = nil
	wasEmpty := len(b.pending) == 0
	added := false
	for _, r := range queued {
		if b.push(r.id, r.depth, r.force) {
			added = true
		}
	}
	b.mu.Unlock()
	if added && wasEmpty {
		b.notify()
	}
}

// FinalizeTree destroys the elements deactivated during the last build:
// it runs their Dispose hooks, disposes their render nodes and frees their
// ids. It must be called inside LockState.
func (b *BuildOwner) FinalizeTree() {
	if state := b.State(); state != StateLocked {
		errors.Violation(errors.KindLifecycle, "BuildOwner.FinalizeTree", "owner is %s, want %s", state, StateLocked)
	}
	if b.tree == nil {
		return
	}
	n := b.tree.finalize()
	b.mu.Lock()
	b.stats.Finalized += n
	b.mu.Unlock()
}

func (b *BuildOwner) requireScope(op string) {
	if state := b.State(); state != StateInBuildScope {
		errors.Violation(errors.KindLifecycle, op, "owner is %s, want %s", state, StateInBuildScope)
	}
}
