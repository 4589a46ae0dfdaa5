package core

import (
	"reflect"
	"testing"

	"github.com/go-drift/framecore/pkg/errors"
)

type themeScope struct {
	ProviderBase
	color   string
	version int
	child   Widget
}

func (s themeScope) ChildWidget() Widget { return s.child }

func (s themeScope) UpdateShouldNotify(old ProviderWidget) bool {
	return s.color != old.(themeScope).color
}

// themed records the color of the nearest theme on every build.
type themed struct {
	StatefulBase
	seen *[]string
}

func (themed) CreateState() State { return &themedState{} }

type themedState struct {
	StateBase
	changes int
}

func (s *themedState) DidChangeDependencies() { s.changes++ }

func (s *themedState) Build(ctx BuildContext) Widget {
	seen := s.Element().Widget().(themed).seen
	theme, err := DependOn[themeScope](ctx)
	if err != nil {
		*seen = append(*seen, "none")
		return nil
	}
	*seen = append(*seen, theme.color)
	return leaf{w: 1, h: 1}
}

func TestDependOnRebuildsDependents(t *testing.T) {
	h := newHarness()
	var seen []string
	content := wrap{child: themed{seen: &seen}}
	h.pump(themeScope{color: "red", child: content})

	provider, _ := h.elements.Get(h.elements.Root())
	if got := provider.Variant().(*ProviderNode).Dependents(); got != 1 {
		t.Fatalf("dependents = %d, want 1", got)
	}

	h.pump(themeScope{color: "blue", child: content})
	if want := []string{"red", "blue"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
	el := h.find(func(w Widget) bool { _, ok := w.(themed); return ok })
	if got := el.Variant().(*StatefulNode).State().(*themedState).changes; got != 1 {
		t.Errorf("DidChangeDependencies calls = %d, want 1", got)
	}

	h.pump(themeScope{color: "blue", version: 2, child: content})
	if len(seen) != 2 {
		t.Errorf("dependent rebuilt without notification: %v", seen)
	}
}

func TestDependOnWithoutProvider(t *testing.T) {
	h := newHarness()
	var err error
	h.pump(Builder{Fn: func(ctx BuildContext) Widget {
		_, err = DependOn[themeScope](ctx)
		return nil
	}})
	if !errors.Is(err, errors.ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
	var de *errors.DriftError
	if !errors.As(err, &de) || de.Op != "core.DependOn" {
		t.Errorf("err = %#v", err)
	}
}

func TestLookupProviderDoesNotDepend(t *testing.T) {
	h := newHarness()
	var color string
	h.pump(themeScope{color: "green", child: Builder{Fn: func(ctx BuildContext) Widget {
		theme, err := LookupProvider[themeScope](ctx)
		if err == nil {
			color = theme.color
		}
		return nil
	}}})
	if color != "green" {
		t.Errorf("color = %q", color)
	}
	provider, _ := h.elements.Get(h.elements.Root())
	if got := provider.Variant().(*ProviderNode).Dependents(); got != 0 {
		t.Errorf("dependents = %d, want 0", got)
	}
}

func TestDependentsDroppedOnDeactivate(t *testing.T) {
	h := newHarness()
	var seen []string
	h.pump(themeScope{color: "red", child: wrap{child: themed{seen: &seen}}})
	h.pump(themeScope{color: "red", child: wrap{child: leaf{w: 1, h: 1}}})

	provider, _ := h.elements.Get(h.elements.Root())
	if got := provider.Variant().(*ProviderNode).Dependents(); got != 0 {
		t.Errorf("dependents = %d after the dependent was removed", got)
	}
	h.pump(themeScope{color: "blue", child: wrap{child: leaf{w: 1, h: 1}}})
	if len(seen) != 1 {
		t.Errorf("removed dependent rebuilt: %v", seen)
	}
}

// optionalTheme reads the theme only while follow is set.
type optionalTheme struct {
	StatelessBase
	follow bool
	builds *int
}

func (o optionalTheme) Build(ctx BuildContext) Widget {
	*o.builds++
	if o.follow {
		if _, err := DependOn[themeScope](ctx); err != nil {
			panic(err)
		}
	}
	return leaf{w: 1, h: 1}
}

func TestDependencyDroppedWhenNoLongerRead(t *testing.T) {
	h := newHarness()
	builds := 0
	h.pump(themeScope{color: "red", child: wrap{child: optionalTheme{follow: true, builds: &builds}}})
	provider, _ := h.elements.Get(h.elements.Root())
	dependents := func() int { return provider.Variant().(*ProviderNode).Dependents() }
	if got := dependents(); got != 1 {
		t.Fatalf("dependents = %d, want 1", got)
	}

	h.pump(themeScope{color: "red", child: wrap{child: optionalTheme{follow: false, builds: &builds}}})
	if got := dependents(); got != 0 {
		t.Errorf("dependents = %d after the build stopped reading the theme", got)
	}
	el := h.find(func(w Widget) bool { _, ok := w.(optionalTheme); return ok })
	if len(el.dependencies) != 0 {
		t.Errorf("element still records %d dependencies", len(el.dependencies))
	}

	before := builds
	h.pump(themeScope{color: "blue", child: wrap{child: optionalTheme{follow: false, builds: &builds}}})
	if builds != before {
		t.Errorf("builds = %d, want %d: former dependent rebuilt on notification", builds, before)
	}
}

func TestDependencyKeptAcrossRebuilds(t *testing.T) {
	h := newHarness()
	var seen []string
	content := wrap{child: themed{seen: &seen}}
	h.pump(themeScope{color: "red", child: content})

	el := h.find(func(w Widget) bool { _, ok := w.(themed); return ok })
	el.MarkNeedsBuild()
	h.frame()
	provider, _ := h.elements.Get(h.elements.Root())
	if got := provider.Variant().(*ProviderNode).Dependents(); got != 1 {
		t.Fatalf("dependents = %d after a rebuild, want 1", got)
	}

	h.pump(themeScope{color: "green", child: content})
	if want := []string{"red", "red", "green"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}
