package core

import (
	"reflect"
	"testing"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/tree"
)

func TestCanUpdate(t *testing.T) {
	tests := []struct {
		name     string
		old, new Widget
		want     bool
	}{
		{"same type", leaf{w: 1}, leaf{w: 2}, true},
		{"different type", leaf{}, wrap{}, false},
		{"same key", keyedLeaf{key: "a", w: 1}, keyedLeaf{key: "a", w: 2}, true},
		{"different key", keyedLeaf{key: "a"}, keyedLeaf{key: "b"}, false},
		{"key on one side", Builder{ItemKey: "a"}, Builder{}, false},
		{"nil", nil, leaf{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanUpdate(tt.old, tt.new); got != tt.want {
				t.Errorf("CanUpdate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyedReorderKeepsIdentity(t *testing.T) {
	h := newHarness()
	root := h.pump(column{children: []Widget{keyedLeaf{key: "k1", w: 1}, keyedLeaf{key: "k2", w: 2}}})
	before := h.elements.ChildIDs(root)
	mounted := h.elements.Stats().Mounted

	h.pump(column{children: []Widget{keyedLeaf{key: "k2", w: 2}, keyedLeaf{key: "k1", w: 1}}})
	after := h.elements.ChildIDs(root)

	if after[0] != before[1] || after[1] != before[0] {
		t.Fatalf("children = %v, want %v swapped", after, before)
	}
	if got := h.elements.Stats().Mounted; got != mounted {
		t.Errorf("mounted %d new elements", got-mounted)
	}
	for i, id := range after {
		e, _ := h.elements.Get(id)
		if e.Slot().Index != i {
			t.Errorf("%v slot index = %d, want %d", e, e.Slot().Index, i)
		}
	}
	first, _ := h.elements.Get(after[1])
	if first.Slot().Previous != after[0] {
		t.Errorf("previous sibling = %v, want %v", first.Slot().Previous, after[0])
	}
	if got := renderIDs(h.elements.RootRenderNode()); !reflect.DeepEqual(got, after) {
		t.Errorf("render order = %v, want %v", got, after)
	}
}

func TestKeyedRemoveAndInsert(t *testing.T) {
	h := newHarness()
	root := h.pump(column{children: []Widget{
		keyedLeaf{key: "a"}, keyedLeaf{key: "b"}, keyedLeaf{key: "c"},
	}})
	ids := h.elements.ChildIDs(root)

	h.pump(column{children: []Widget{
		keyedLeaf{key: "c"}, keyedLeaf{key: "new"}, keyedLeaf{key: "a"},
	}})
	got := h.elements.ChildIDs(root)
	if got[0] != ids[2] || got[2] != ids[0] {
		t.Errorf("keyed survivors moved ids: %v -> %v", ids, got)
	}
	if got[1] == ids[1] {
		t.Error("new key reused the removed element")
	}
	if _, ok := h.elements.Get(ids[1]); ok {
		t.Error("removed element still live")
	}
	if s := h.elements.Stats(); s.Destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", s.Destroyed)
	}
}

func TestUnkeyedMatchByTypeInOrder(t *testing.T) {
	h := newHarness()
	root := h.pump(column{children: []Widget{leaf{w: 1}, wrap{}, leaf{w: 2}}})
	ids := h.elements.ChildIDs(root)

	h.pump(column{children: []Widget{wrap{}, leaf{w: 3}, leaf{w: 4}, leaf{w: 5}}})
	got := h.elements.ChildIDs(root)
	if got[0] != ids[1] || got[1] != ids[0] || got[2] != ids[2] {
		t.Errorf("children = %v, want reuse of %v in type order", got, ids)
	}
	e, _ := h.elements.Get(got[1])
	if e.Widget().(leaf).w != 3 {
		t.Errorf("reused leaf holds %v", e.Widget())
	}
}

func TestMixedKeyedAndUnkeyed(t *testing.T) {
	h := newHarness()
	root := h.pump(column{children: []Widget{leaf{w: 1}, keyedLeaf{key: "x"}, leaf{w: 2}}})
	ids := h.elements.ChildIDs(root)

	h.pump(column{children: []Widget{keyedLeaf{key: "x"}, leaf{w: 1}}})
	got := h.elements.ChildIDs(root)
	if got[0] != ids[1] || got[1] != ids[0] {
		t.Errorf("children = %v from %v", got, ids)
	}
	if h.elements.Len() != 3 {
		t.Errorf("elements = %d, want 3", h.elements.Len())
	}
}

func TestDuplicateKeysAreHierarchyViolation(t *testing.T) {
	h := newHarness()
	expectViolation(t, errors.KindHierarchy, func() {
		h.pump(column{children: []Widget{keyedLeaf{key: "same"}, keyedLeaf{key: "same"}}})
	})
}

func TestNonComparableKeysAreHierarchyViolation(t *testing.T) {
	t.Run("CanUpdate", func(t *testing.T) {
		expectViolation(t, errors.KindHierarchy, func() {
			CanUpdate(Builder{ItemKey: []int{1}}, Builder{ItemKey: []int{1}})
		})
	})
	t.Run("comparable type holding a slice", func(t *testing.T) {
		expectViolation(t, errors.KindHierarchy, func() {
			CanUpdate(Builder{ItemKey: [1]any{[]int{1}}}, Builder{ItemKey: [1]any{[]int{1}}})
		})
	})
	t.Run("child list", func(t *testing.T) {
		h := newHarness()
		expectViolation(t, errors.KindHierarchy, func() {
			h.pump(column{children: []Widget{
				Builder{ItemKey: []int{1}, Fn: func(BuildContext) Widget { return leaf{w: 1, h: 1} }},
			}})
		})
	})
	t.Run("different key types never match", func(t *testing.T) {
		if CanUpdate(Builder{ItemKey: 1}, Builder{ItemKey: int64(1)}) {
			t.Error("CanUpdate matched keys of different types")
		}
	})
}

func TestKeyChangeRemounts(t *testing.T) {
	h := newHarness()
	var log []string
	h.pump(wrap{child: Builder{ItemKey: 1, Fn: func(BuildContext) Widget { return counter{log: &log} }}})
	h.pump(wrap{child: Builder{ItemKey: 2, Fn: func(BuildContext) Widget { return counter{log: &log} }}})
	want := []string{"init", "build", "init", "build", "dispose"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("hooks = %v, want %v", log, want)
	}
}

func TestReconciliationIsIdempotent(t *testing.T) {
	h := newHarness()
	desc := func() Widget {
		return column{children: []Widget{
			tracer{name: "a", child: leaf{w: 1, h: 1}},
			keyedLeaf{key: "k"},
			counter{},
			tag{data: "d", child: wrap{child: leaf{w: 2, h: 2}}},
		}}
	}
	h.pump(desc())
	before := h.elements.Stats()
	var ids []tree.ID
	for id := range h.elements.Descendants(h.elements.Root()) {
		ids = append(ids, id)
	}

	h.pump(desc())
	after := h.elements.Stats()
	if after.Mounted != before.Mounted || after.Deactivated != before.Deactivated || after.Destroyed != before.Destroyed {
		t.Errorf("stats changed: %+v -> %+v", before, after)
	}
	var again []tree.ID
	for id := range h.elements.Descendants(h.elements.Root()) {
		again = append(again, id)
	}
	if !reflect.DeepEqual(ids, again) {
		t.Errorf("ids = %v, want %v", again, ids)
	}
}

func TestReplacementMountsBeforeDeactivating(t *testing.T) {
	h := newHarness()
	root := h.pump(wrap{child: leaf{w: 1, h: 1}})
	old := h.elements.ChildIDs(root)[0]

	var replacement tree.ID
	h.owner.BuildScope(func() {
		h.elements.SetRoot(wrap{child: counter{}})
		replacement = h.elements.ChildIDs(root)[0]

		e, ok := h.elements.Get(old)
		if !ok || e.Lifecycle() != LifecycleInactive {
			t.Errorf("old element = %v, want inactive until finalize", e)
		}
		if replacement == old {
			t.Error("replacement aliases the old id")
		}
	})
	h.owner.LockState(h.owner.FinalizeTree)
	if _, ok := h.elements.Get(old); ok {
		t.Error("old element survived finalize")
	}
	if _, ok := h.elements.Get(replacement); !ok {
		t.Error("replacement missing")
	}
}

func TestSiblingSubtreeUntouched(t *testing.T) {
	h := newHarness()
	var builds []string
	sibling := tracer{name: "sibling", log: &builds, child: leaf{w: 1, h: 1}}
	h.pump(wrap{child: column{children: []Widget{leaf{w: 1, h: 1}, sibling}}})
	builds = nil

	h.pump(wrap{child: column{children: []Widget{leaf{w: 2, h: 2}, sibling}}})
	if len(builds) != 0 {
		t.Errorf("sibling rebuilt: %v", builds)
	}
}
