package core

import (
	"reflect"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/layout"
)

// Widget is an immutable description of part of the UI.
//
// A description does nothing by itself. The kind interface it implements
// decides which element variant is mounted for it:
//
//   - [RenderWidget] mounts a [RenderElement] that owns a render node.
//   - [StatefulWidget] mounts a [StatefulNode] holding a [State].
//   - [ProviderWidget] mounts a [ProviderNode] that descendants can depend on.
//   - [ParentDataWidget] mounts a [ParentDataNode] that tags its child's
//     render node with layout data for the enclosing render parent.
//   - [StatelessWidget] mounts a [CompositionNode] that builds a subtree.
//
// Key returns nil for unkeyed descriptions. Non-nil keys must be comparable
// and unique among siblings.
type Widget interface {
	Key() any
}

// StatelessWidget composes other descriptions.
type StatelessWidget interface {
	Widget
	Build(ctx BuildContext) Widget
}

// StatefulWidget creates a [State] that survives rebuilds of its parent.
type StatefulWidget interface {
	Widget
	CreateState() State
}

// ProviderWidget exposes a value to descendants that call [DependOn].
type ProviderWidget interface {
	Widget
	ChildWidget() Widget
	// UpdateShouldNotify reports whether dependents must rebuild after the
	// provider was updated from old.
	UpdateShouldNotify(old ProviderWidget) bool
}

// ParentDataWidget attaches layout data to the render node of its child.
type ParentDataWidget interface {
	Widget
	ChildWidget() Widget
	ParentData() any
}

// RenderWidget creates and configures a render node. A render widget
// without children must create a node of arity [layout.ArityNone]; widgets
// that also implement [SingleChildRenderWidget] or [MultiChildRenderWidget]
// must create nodes of arity [layout.ArityOne] or [layout.ArityMany].
type RenderWidget interface {
	Widget
	CreateRenderObject(ctx BuildContext) *layout.RenderNode
	UpdateRenderObject(ctx BuildContext, node *layout.RenderNode)
}

// SingleChildRenderWidget is a render widget with exactly one child. A nil
// child is replaced by an empty leaf.
type SingleChildRenderWidget interface {
	RenderWidget
	ChildWidget() Widget
}

// MultiChildRenderWidget is a render widget with an ordered child list. Nil
// entries are skipped.
type MultiChildRenderWidget interface {
	RenderWidget
	ChildWidgets() []Widget
}

// Kind identifies the element variant mounted for a description.
type Kind uint8

const (
	KindComposition Kind = iota + 1
	KindStateful
	KindProvider
	KindRender
	KindParentData
)

func (k Kind) String() string {
	switch k {
	case KindComposition:
		return "composition"
	case KindStateful:
		return "stateful"
	case KindProvider:
		return "provider"
	case KindRender:
		return "render"
	case KindParentData:
		return "parent-data"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of w. A description that implements more than one
// kind interface resolves in the order render, stateful, provider,
// parent-data, composition.
func KindOf(w Widget) Kind {
	switch w.(type) {
	case RenderWidget:
		return KindRender
	case StatefulWidget:
		return KindStateful
	case ProviderWidget:
		return KindProvider
	case ParentDataWidget:
		return KindParentData
	case StatelessWidget:
		return KindComposition
	default:
		return 0
	}
}

func mustKind(w Widget) Kind {
	k := KindOf(w)
	if k == 0 {
		errors.Violation(errors.KindHierarchy, "core.mount", "%s implements no widget kind", widgetName(w))
	}
	return k
}

// renderShape returns the arity a render widget's node must have.
func renderShape(w RenderWidget) layout.ArityKind {
	switch w.(type) {
	case MultiChildRenderWidget:
		return layout.ArityMany
	case SingleChildRenderWidget:
		return layout.ArityOne
	default:
		return layout.ArityNone
	}
}

func widgetName(w Widget) string {
	if w == nil {
		return "<nil>"
	}
	return reflect.TypeOf(w).String()
}
