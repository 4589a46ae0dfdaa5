package core

import (
	"fmt"

	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/tree"
)

// Lifecycle tracks where an element is in its life.
type Lifecycle uint8

const (
	LifecycleInitial Lifecycle = iota
	LifecycleActive
	// LifecycleInactive elements were removed from the tree during the
	// current build and are destroyed by [BuildOwner.FinalizeTree].
	LifecycleInactive
	LifecycleDefunct
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleInitial:
		return "initial"
	case LifecycleActive:
		return "active"
	case LifecycleInactive:
		return "inactive"
	case LifecycleDefunct:
		return "defunct"
	default:
		return "unknown"
	}
}

// Slot is an element's position in its parent's child list. Previous is the
// id of the preceding sibling and is only meaningful for lookups.
type Slot struct {
	Index    int
	Previous tree.ID
}

// BuildContext is the handle passed to Build methods. It is implemented by
// *Element only.
type BuildContext interface {
	ID() tree.ID
	Widget() Widget
	Depth() int
	element() *Element
}

// Variant holds the kind-specific part of an element. The set of variants
// is closed: *CompositionNode, *StatefulNode, *ProviderNode, *RenderElement
// and *ParentDataNode.
type Variant interface {
	kind() Kind
}

// CompositionNode is the variant of a [StatelessWidget].
type CompositionNode struct{}

// StatefulNode is the variant of a [StatefulWidget].
type StatefulNode struct {
	state       State
	depsChanged bool
}

// State returns the node's state object.
func (v *StatefulNode) State() State { return v.state }

// ProviderNode is the variant of a [ProviderWidget]. It records which
// elements depend on it.
type ProviderNode struct {
	dependents map[tree.ID]struct{}
}

// Dependents returns the number of elements depending on the provider.
func (v *ProviderNode) Dependents() int { return len(v.dependents) }

// RenderElement is the variant of a [RenderWidget]. It exclusively owns a
// render node.
type RenderElement struct {
	node *layout.RenderNode
}

// Node returns the owned render node.
func (v *RenderElement) Node() *layout.RenderNode { return v.node }

// ParentDataNode is the variant of a [ParentDataWidget].
type ParentDataNode struct{}

func (*CompositionNode) kind() Kind { return KindComposition }
func (*StatefulNode) kind() Kind    { return KindStateful }
func (*ProviderNode) kind() Kind    { return KindProvider }
func (*RenderElement) kind() Kind   { return KindRender }
func (*ParentDataNode) kind() Kind  { return KindParentData }

func newVariant(k Kind) Variant {
	switch k {
	case KindComposition:
		return &CompositionNode{}
	case KindStateful:
		return &StatefulNode{}
	case KindProvider:
		return &ProviderNode{dependents: make(map[tree.ID]struct{})}
	case KindRender:
		return &RenderElement{}
	case KindParentData:
		return &ParentDataNode{}
	default:
		panic(fmt.Sprintf("core: unknown kind %d", k))
	}
}

// Element is a mounted description. Its parent, children and depth live in
// the [ElementTree] arena, addressed by its id.
type Element struct {
	tree         *ElementTree
	id           tree.ID
	widget       Widget
	slot         Slot
	lifecycle    Lifecycle
	dirty        bool
	variant      Variant
	dependencies map[tree.ID]struct{}
}

func (e *Element) element() *Element { return e }

// ID returns the element's arena id.
func (e *Element) ID() tree.ID { return e.id }

// Widget returns the description the element currently holds.
func (e *Element) Widget() Widget { return e.widget }

// Depth returns the number of ancestors of the element.
func (e *Element) Depth() int { return e.tree.arena.Depth(e.id) }

// Parent returns the parent id, or [tree.None] for the root.
func (e *Element) Parent() tree.ID { return e.tree.arena.Parent(e.id) }

// Slot returns the element's position in its parent.
func (e *Element) Slot() Slot { return e.slot }

// Lifecycle returns the element's lifecycle state.
func (e *Element) Lifecycle() Lifecycle { return e.lifecycle }

// Dirty reports whether the element waits for a rebuild.
func (e *Element) Dirty() bool { return e.dirty }

// Variant returns the kind-specific part of the element.
func (e *Element) Variant() Variant { return e.variant }

// Kind returns the element's kind.
func (e *Element) Kind() Kind { return e.variant.kind() }

// RenderNode returns the nearest render node at or below the element.
func (e *Element) RenderNode() *layout.RenderNode {
	return e.tree.RenderNode(e.id)
}

// MarkNeedsBuild schedules the element for a rebuild. Calls on elements
// that are not active are ignored.
func (e *Element) MarkNeedsBuild() {
	if e.lifecycle != LifecycleActive || e.dirty {
		return
	}
	e.dirty = true
	e.tree.owner.schedule(e.id, e.Depth(), false)
}

func (e *Element) String() string {
	return fmt.Sprintf("%s%s", widgetName(e.widget), e.id)
}
