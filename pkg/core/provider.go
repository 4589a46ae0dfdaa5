package core

import (
	"fmt"
	"reflect"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/tree"
)

// DependOn returns the nearest provider of type T above ctx and registers
// ctx as its dependent: when the provider is updated and its
// UpdateShouldNotify reports true, ctx is rebuilt. Without such a provider
// it returns an error wrapping [errors.ErrNoProvider].
func DependOn[T ProviderWidget](ctx BuildContext) (T, error) {
	e := ctx.element()
	p, w, err := findProvider[T](e, "core.DependOn")
	if err != nil {
		return w, err
	}
	p.variant.(*ProviderNode).dependents[e.id] = struct{}{}
	if e.dependencies == nil {
		e.dependencies = make(map[tree.ID]struct{})
	}
	e.dependencies[p.id] = struct{}{}
	return w, nil
}

// LookupProvider returns the nearest provider of type T above ctx without
// registering a dependency.
func LookupProvider[T ProviderWidget](ctx BuildContext) (T, error) {
	_, w, err := findProvider[T](ctx.element(), "core.LookupProvider")
	return w, err
}

func findProvider[T ProviderWidget](e *Element, op string) (*Element, T, error) {
	var zero T
	t := e.tree
	for id := range t.arena.Ancestors(e.id) {
		a := t.element(id)
		if _, ok := a.variant.(*ProviderNode); !ok {
			continue
		}
		if w, ok := a.widget.(T); ok {
			return a, w, nil
		}
	}
	name := reflect.TypeFor[T]().String()
	return nil, zero, &errors.DriftError{Op: op, Kind: errors.KindHierarchy, Err: fmt.Errorf("%s above %s: %w", name, e, errors.ErrNoProvider)}
}

func (t *ElementTree) notifyDependents(v *ProviderNode) {
	for id := range v.dependents {
		d, ok := t.arena.Get(id)
		if !ok || d.lifecycle != LifecycleActive {
			continue
		}
		if sv, ok := d.variant.(*StatefulNode); ok {
			sv.depsChanged = true
		}
		d.MarkNeedsBuild()
	}
}
