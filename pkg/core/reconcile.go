package core

import (
	"reflect"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/tree"
)

// CanUpdate reports whether an element mounted for old can be updated in
// place to describe new. Kinds and declared types must match, and when
// either description carries a key both keys must be equal. A key that is
// not comparable is a hierarchy violation.
func CanUpdate(old, new Widget) bool {
	if old == nil || new == nil {
		return false
	}
	if reflect.TypeOf(old) != reflect.TypeOf(new) || KindOf(old) != KindOf(new) {
		return false
	}
	oldKey, newKey := old.Key(), new.Key()
	if oldKey == nil && newKey == nil {
		return true
	}
	if oldKey == nil || newKey == nil {
		return false
	}
	return keysEqual(oldKey, newKey)
}

func keysEqual(a, b any) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	checkKey("core.CanUpdate", a)
	checkKey("core.CanUpdate", b)
	return a == b
}

// checkKey fails fast on keys that cannot be compared or hashed, including
// comparable types holding a non-comparable dynamic value.
func checkKey(op string, k any) {
	if !reflect.ValueOf(k).Comparable() {
		errors.Violation(errors.KindHierarchy, op, "key %v of type %T is not comparable", k, k)
	}
}

// sameWidget reports whether new is the very description old already
// mounted. Such children are left untouched by their parent's rebuild.
func sameWidget(old, new Widget) (same bool) {
	t := reflect.TypeOf(old)
	if t != reflect.TypeOf(new) || !t.Comparable() {
		return false
	}
	// Comparable structs may still hold non-comparable dynamic values.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return old == new
}

// updateChild reconciles the child currently at old against w and returns
// the id now occupying the slot.
func (t *ElementTree) updateChild(parent, old tree.ID, w Widget, slot Slot) tree.ID {
	if w == nil {
		if old != tree.None {
			t.deactivate(old)
		}
		return tree.None
	}
	if old != tree.None {
		e := t.element(old)
		if sameWidget(e.widget, w) {
			e.slot = slot
			return old
		}
		if CanUpdate(e.widget, w) {
			e.slot = slot
			t.update(e, w)
			return old
		}
		// The replacement is mounted before the old subtree goes inactive.
		id := t.inflate(parent, w, slot)
		t.deactivate(old)
		return id
	}
	return t.inflate(parent, w, slot)
}

// updateSingleChild reconciles the only child of e.
func (t *ElementTree) updateSingleChild(e *Element, w Widget) {
	if w == nil {
		w = Empty{}
	}
	old := tree.None
	if t.arena.ChildCount(e.id) > 0 {
		old = t.arena.ChildAt(e.id, 0)
	}
	id := t.updateChild(e.id, old, w, Slot{})
	t.arena.SetChildren(e.id, []tree.ID{id})
}

// updateChildren reconciles the child list of e against widgets. Keyed
// descriptions are matched by key, unkeyed ones by declared type in
// positional order. The resulting order equals the order of widgets.
func (t *ElementTree) updateChildren(e *Element, widgets []Widget) {
	descs := make([]Widget, 0, len(widgets))
	seen := make(map[any]struct{})
	for _, w := range widgets {
		if w == nil {
			continue
		}
		if k := w.Key(); k != nil {
			checkKey("core.updateChildren", k)
			if _, dup := seen[k]; dup {
				errors.Violation(errors.KindHierarchy, "core.updateChildren", "duplicate key %v among children of %s", k, e)
			}
			seen[k] = struct{}{}
		}
		descs = append(descs, w)
	}

	oldIDs := t.arena.ChildIDs(e.id)
	keyed := make(map[any]tree.ID)
	unkeyed := make(map[reflect.Type][]tree.ID)
	for _, id := range oldIDs {
		w := t.element(id).widget
		if k := w.Key(); k != nil {
			keyed[k] = id
		} else {
			typ := reflect.TypeOf(w)
			unkeyed[typ] = append(unkeyed[typ], id)
		}
	}

	matched := make(map[tree.ID]struct{}, len(oldIDs))
	newIDs := make([]tree.ID, 0, len(descs))
	prev := tree.None
	for i, w := range descs {
		old := tree.None
		if k := w.Key(); k != nil {
			if id, ok := keyed[k]; ok && CanUpdate(t.element(id).widget, w) {
				old = id
				delete(keyed, k)
			}
		} else if queue := unkeyed[reflect.TypeOf(w)]; len(queue) > 0 {
			old = queue[0]
			unkeyed[reflect.TypeOf(w)] = queue[1:]
		}
		if old != tree.None {
			matched[old] = struct{}{}
		}

		slot := Slot{Index: i, Previous: prev}
		var id tree.ID
		switch {
		case old == tree.None:
			id = t.inflate(e.id, w, slot)
		default:
			id = t.updateChild(e.id, old, w, slot)
		}
		newIDs = append(newIDs, id)
		prev = id
	}

	for _, id := range oldIDs {
		if _, ok := matched[id]; !ok {
			t.deactivate(id)
		}
	}
	t.arena.SetChildren(e.id, newIDs)
}
