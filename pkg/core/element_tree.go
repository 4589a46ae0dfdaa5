package core

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/logging"
	"github.com/go-drift/framecore/pkg/tree"
)

// TreeStats counts element lifecycle events since the tree was created.
type TreeStats struct {
	Mounted       int
	Updated       int
	Rebuilt       int
	Deactivated   int
	Destroyed     int
	BuildFailures int
}

// ElementTree owns every mounted element. Elements are addressed by
// [tree.ID]; an id is only recycled after [BuildOwner.FinalizeTree]
// destroyed its element.
//
// ElementTree is not safe for concurrent use. Mutations happen inside a
// build scope of its [BuildOwner].
type ElementTree struct {
	arena    tree.Tree[*Element]
	owner    *BuildOwner
	pipeline *layout.PipelineOwner
	root     tree.ID
	inactive []tree.ID
	stats    TreeStats
}

// NewElementTree creates an empty tree driven by owner. Render nodes created
// for render elements are attached to pipeline.
func NewElementTree(owner *BuildOwner, pipeline *layout.PipelineOwner) *ElementTree {
	if owner == nil {
		owner = NewBuildOwner()
	}
	if pipeline == nil {
		pipeline = layout.NewPipelineOwner()
	}
	t := &ElementTree{owner: owner, pipeline: pipeline}
	owner.tree = t
	return t
}

// Owner returns the build owner driving the tree.
func (t *ElementTree) Owner() *BuildOwner { return t.owner }

// Pipeline returns the pipeline owner render nodes are attached to.
func (t *ElementTree) Pipeline() *layout.PipelineOwner { return t.pipeline }

// Root returns the root element id, or [tree.None] when nothing is mounted.
func (t *ElementTree) Root() tree.ID { return t.root }

// Len returns the number of elements that have not been destroyed yet,
// including inactive ones.
func (t *ElementTree) Len() int { return t.arena.Len() }

// Stats returns the lifecycle counters.
func (t *ElementTree) Stats() TreeStats { return t.stats }

// SetRoot reconciles the root element against w. It must be called inside a
// build scope. A nil description unmounts the whole tree.
func (t *ElementTree) SetRoot(w Widget) tree.ID {
	t.owner.requireScope("ElementTree.SetRoot")
	t.root = t.updateChild(tree.None, t.root, w, Slot{})
	return t.root
}

// Get returns the element stored under id.
func (t *ElementTree) Get(id tree.ID) (*Element, bool) {
	return t.arena.Get(id)
}

// Lookup returns the element stored under id, or an error wrapping
// [errors.ErrNotFound].
func (t *ElementTree) Lookup(id tree.ID) (*Element, error) {
	e, ok := t.arena.Get(id)
	if !ok {
		return nil, &errors.DriftError{Op: "ElementTree.Lookup", Kind: errors.KindHierarchy, Err: fmt.Errorf("element %v: %w", id, errors.ErrNotFound)}
	}
	return e, nil
}

// Parent returns the parent of id.
func (t *ElementTree) Parent(id tree.ID) tree.ID { return t.arena.Parent(id) }

// Depth returns the depth of id.
func (t *ElementTree) Depth(id tree.ID) int { return t.arena.Depth(id) }

// Children yields the children of id in order.
func (t *ElementTree) Children(id tree.ID) iter.Seq[tree.ID] { return t.arena.Children(id) }

// ChildIDs returns a copy of the child list of id.
func (t *ElementTree) ChildIDs(id tree.ID) []tree.ID { return t.arena.ChildIDs(id) }

// Descendants yields id and every element below it in depth-first order.
func (t *ElementTree) Descendants(id tree.ID) iter.Seq[tree.ID] { return t.arena.Descendants(id) }

// Ancestors yields the ancestors of id, nearest first.
func (t *ElementTree) Ancestors(id tree.ID) iter.Seq[tree.ID] { return t.arena.Ancestors(id) }

// RenderNode returns the nearest render node at or below id, or nil.
func (t *ElementTree) RenderNode(id tree.ID) *layout.RenderNode {
	for id != tree.None {
		e, ok := t.arena.Get(id)
		if !ok {
			return nil
		}
		if v, ok := e.variant.(*RenderElement); ok {
			return v.node
		}
		if t.arena.ChildCount(id) == 0 {
			return nil
		}
		id = t.arena.ChildAt(id, 0)
	}
	return nil
}

// RootRenderNode returns the render node of the root, or nil.
func (t *ElementTree) RootRenderNode() *layout.RenderNode {
	return t.RenderNode(t.root)
}

// Dump writes an indented outline of the tree to w.
func (t *ElementTree) Dump(w io.Writer) error {
	if t.root == tree.None {
		_, err := io.WriteString(w, "<empty>\n")
		return err
	}
	var sb strings.Builder
	for id := range t.arena.Descendants(t.root) {
		e := t.element(id)
		sb.WriteString(strings.Repeat("  ", e.Depth()))
		fmt.Fprintf(&sb, "%s [%s]", e, e.Kind())
		if v, ok := e.variant.(*RenderElement); ok {
			s := v.node.Size()
			fmt.Fprintf(&sb, " %gx%g", s.Width, s.Height)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *ElementTree) element(id tree.ID) *Element {
	return t.arena.MustGet(id)
}

// inflate mounts a new element for w under parent and builds its subtree.
func (t *ElementTree) inflate(parent tree.ID, w Widget, slot Slot) tree.ID {
	e := &Element{tree: t, widget: w, slot: slot, variant: newVariant(mustKind(w))}
	e.id = t.arena.Insert(e)
	if parent != tree.None {
		t.arena.SetParent(e.id, parent)
	}
	e.lifecycle = LifecycleActive
	t.stats.Mounted++

	switch v := e.variant.(type) {
	case *StatefulNode:
		v.state = w.(StatefulWidget).CreateState()
		if v.state == nil {
			errors.Violation(errors.KindLifecycle, "core.mount", "%s created a nil state", e)
		}
		if sb, ok := v.state.(stateBase); ok {
			sb.state().element = e
		}
		t.guard(e, v.state.InitState)
	case *RenderElement:
		rw := w.(RenderWidget)
		node := rw.CreateRenderObject(e)
		if node == nil {
			errors.Violation(errors.KindLifecycle, "core.mount", "%s created a nil render node", e)
		}
		if want := renderShape(rw); node.Arity() != want {
			errors.Violation(errors.KindHierarchy, "core.mount", "%s creates a %s node but describes %s children", e, node.Arity(), want)
		}
		node.SetID(e.id)
		node.Attach(t.pipeline)
		v.node = node
	}

	e.dirty = true
	t.rebuild(e, false)
	return e.id
}

// update stores w in e, runs the kind's update hook and rebuilds e.
func (t *ElementTree) update(e *Element, w Widget) {
	old := e.widget
	e.widget = w
	t.stats.Updated++

	switch v := e.variant.(type) {
	case *StatefulNode:
		t.guard(e, func() { v.state.DidUpdateWidget(old.(StatefulWidget)) })
	case *ProviderNode:
		if w.(ProviderWidget).UpdateShouldNotify(old.(ProviderWidget)) {
			t.notifyDependents(v)
		}
	case *RenderElement:
		t.guard(e, func() { w.(RenderWidget).UpdateRenderObject(e, v.node) })
	}

	e.dirty = true
	t.rebuild(e, false)
}

// rebuild reconciles the children of a dirty element. When syncUp is set the
// nearest render ancestor re-reads its render children afterwards; callers
// reconciling e as part of their own rebuild do that themselves.
func (t *ElementTree) rebuild(e *Element, syncUp bool) {
	if e.lifecycle != LifecycleActive || !e.dirty {
		return
	}
	e.dirty = false
	t.stats.Rebuilt++

	switch v := e.variant.(type) {
	case *CompositionNode:
		t.dropDependencies(e)
		t.updateSingleChild(e, t.build(e, e.widget.(StatelessWidget).Build))
	case *StatefulNode:
		t.dropDependencies(e)
		if v.depsChanged {
			v.depsChanged = false
			t.guard(e, v.state.DidChangeDependencies)
		}
		t.updateSingleChild(e, t.build(e, v.state.Build))
	case *ProviderNode:
		t.updateSingleChild(e, e.widget.(ProviderWidget).ChildWidget())
	case *ParentDataNode:
		t.updateSingleChild(e, e.widget.(ParentDataWidget).ChildWidget())
		t.applyParentData(e)
	case *RenderElement:
		switch w := e.widget.(type) {
		case MultiChildRenderWidget:
			t.updateChildren(e, w.ChildWidgets())
		case SingleChildRenderWidget:
			t.updateSingleChild(e, w.ChildWidget())
		}
		t.syncRenderChildren(e, v)
		return
	}
	if syncUp {
		t.syncAncestors(e)
	}
}

// rebuildScheduled is called by the build owner for every popped entry.
func (t *ElementTree) rebuildScheduled(id tree.ID, force bool) {
	e, ok := t.arena.Get(id)
	if !ok || e.lifecycle != LifecycleActive {
		return
	}
	if force {
		e.dirty = true
	}
	t.rebuild(e, true)
}

// syncRenderChildren points the render node of e at the nearest render
// nodes of its element children.
func (t *ElementTree) syncRenderChildren(e *Element, v *RenderElement) {
	if v.node.Arity() == layout.ArityNone {
		return
	}
	ids := t.arena.ChildIDs(e.id)
	nodes := make([]*layout.RenderNode, 0, len(ids))
	for _, id := range ids {
		if n := t.RenderNode(id); n != nil {
			nodes = append(nodes, n)
		}
	}
	v.node.SetChildren(nodes)
}

// syncAncestors re-applies parent data and render children above a
// non-render element whose render node may have changed.
func (t *ElementTree) syncAncestors(e *Element) {
	for id := t.arena.Parent(e.id); id != tree.None; id = t.arena.Parent(id) {
		a := t.element(id)
		switch v := a.variant.(type) {
		case *ParentDataNode:
			t.applyParentData(a)
		case *RenderElement:
			t.syncRenderChildren(a, v)
			return
		}
	}
}

func (t *ElementTree) applyParentData(e *Element) {
	if n := t.RenderNode(e.id); n != nil {
		n.SetParentData(e.widget.(ParentDataWidget).ParentData())
	}
}

// build runs a Build method. A panic is isolated to e: it is reported, the
// error widget takes the place of the result and e is retried next frame.
func (t *ElementTree) build(e *Element, fn func(BuildContext) Widget) (w Widget) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := errors.AsInvariant(r); ok {
				panic(r)
			}
			w = t.buildFailed(e, &errors.BoundaryError{Recovered: r, StackTrace: errors.CaptureStack()})
		}
	}()
	return fn(e)
}

func (t *ElementTree) buildFailed(e *Element, err *errors.BoundaryError) Widget {
	err.Phase = "build"
	err.Widget = widgetName(e.widget)
	err.Element = e.id.String()
	err.Timestamp = time.Now()
	t.stats.BuildFailures++
	errors.ReportBoundaryError(err)
	t.owner.retry(e.id, e.Depth())
	return errorWidget(err)
}

// guard runs a lifecycle hook of e, reporting a panic instead of unwinding
// the build.
func (t *ElementTree) guard(e *Element, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := errors.AsInvariant(r); ok {
				panic(r)
			}
			t.stats.BuildFailures++
			errors.ReportBoundaryError(&errors.BoundaryError{
				Phase:      "build",
				Widget:     widgetName(e.widget),
				Element:    e.id.String(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
			})
		}
	}()
	fn()
}

// deactivate takes id and its subtree out of the tree. The elements stay in
// the arena until FinalizeTree.
func (t *ElementTree) deactivate(id tree.ID) {
	e := t.element(id)
	if e.lifecycle != LifecycleActive {
		errors.Violation(errors.KindLifecycle, "core.deactivate", "%s is %s", e, e.lifecycle)
	}
	e.lifecycle = LifecycleInactive
	e.dirty = false
	t.inactive = append(t.inactive, id)
	t.stats.Deactivated++

	t.dropDependencies(e)

	for _, child := range t.arena.ChildIDs(id) {
		t.deactivate(child)
	}
}

// dropDependencies unregisters e from every provider it depends on. Builds
// start from an empty set so that only the providers read by the latest
// build can rebuild e.
func (t *ElementTree) dropDependencies(e *Element) {
	for pid := range e.dependencies {
		if p, ok := t.arena.Get(pid); ok {
			if pv, ok := p.variant.(*ProviderNode); ok {
				delete(pv.dependents, e.id)
			}
		}
	}
	e.dependencies = nil
}

// finalize destroys every element deactivated since the last call. Parents
// precede their descendants in the inactive list.
func (t *ElementTree) finalize() int {
	inactive := t.inactive
	t.inactive = nil
	for _, id := range inactive {
		e := t.element(id)
		switch v := e.variant.(type) {
		case *StatefulNode:
			disposeState(v.state)
		case *RenderElement:
			v.node.Dispose()
		}
		e.lifecycle = LifecycleDefunct
	}
	for _, id := range inactive {
		t.arena.SetChildren(id, nil)
		t.arena.Remove(id)
		t.owner.forget(id)
		t.stats.Destroyed++
	}
	if len(inactive) > 0 {
		logging.Logger().Debug("finalized elements", "count", len(inactive), "live", t.arena.Len())
	}
	return len(inactive)
}

func disposeState(s State) {
	defer errors.Recover("State.Dispose")
	s.Dispose()
}
