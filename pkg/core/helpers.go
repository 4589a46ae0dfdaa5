package core

// StatelessBase provides an unkeyed Key implementation for stateless
// widgets:
//
//	type Greeting struct {
//	    core.StatelessBase
//	    Name string
//	}
//
//	func (g Greeting) Build(ctx core.BuildContext) core.Widget { ... }
type StatelessBase struct{}

// Key returns nil (no key).
func (StatelessBase) Key() any { return nil }

// StatefulBase provides an unkeyed Key implementation for stateful widgets:
//
//	type Counter struct {
//	    core.StatefulBase
//	}
//
//	func (Counter) CreateState() core.State { return &counterState{} }
type StatefulBase struct{}

// Key returns nil (no key).
func (StatefulBase) Key() any { return nil }

// ProviderBase provides an unkeyed Key implementation for providers. Embed
// it along with a Child field and implement ChildWidget and
// UpdateShouldNotify:
//
//	type ThemeScope struct {
//	    core.ProviderBase
//	    Theme *Theme
//	    Child core.Widget
//	}
//
//	func (s ThemeScope) ChildWidget() core.Widget { return s.Child }
//
//	func (s ThemeScope) UpdateShouldNotify(old core.ProviderWidget) bool {
//	    return s.Theme != old.(ThemeScope).Theme
//	}
type ProviderBase struct{}

// Key returns nil (no key).
func (ProviderBase) Key() any { return nil }

// RenderObjectBase provides an unkeyed Key implementation for render
// widgets.
type RenderObjectBase struct{}

// Key returns nil (no key).
func (RenderObjectBase) Key() any { return nil }

// Builder is a stateless widget that delegates Build to a function.
type Builder struct {
	// ItemKey is returned by Key.
	ItemKey any
	Fn      func(ctx BuildContext) Widget
}

func (b Builder) Key() any { return b.ItemKey }

func (b Builder) Build(ctx BuildContext) Widget {
	if b.Fn == nil {
		return nil
	}
	return b.Fn(ctx)
}
