package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/layout"
)

// Finder locates elements in the element tree.
type Finder interface {
	// Evaluate returns all matching elements at or under root (depth-first pre-order).
	Evaluate(elements *core.ElementTree, root *core.Element) []*core.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*core.Element
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *core.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.description()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *core.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *core.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), r.description()))
	}
	return r.elements[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*core.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

// Widget returns the widget of the first matched element. Panics if no matches.
func (r FinderResult) Widget() core.Widget {
	return r.First().Widget()
}

// RenderNode returns the nearest render node at or below the first matched
// element, or nil. Panics if no matches.
func (r FinderResult) RenderNode() *layout.RenderNode {
	return r.First().RenderNode()
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// --- Concrete finders ---

// typeFinder matches elements whose widget is of the specified type.
type typeFinder struct {
	widgetType reflect.Type
}

func (f *typeFinder) Evaluate(elements *core.ElementTree, root *core.Element) []*core.Element {
	return collectMatches(elements, root, func(e *core.Element) bool {
		return reflect.TypeOf(e.Widget()) == f.widgetType
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.widgetType)
}

// ByType returns a finder that matches elements whose widget is type T.
func ByType[T core.Widget]() Finder {
	return &typeFinder{widgetType: reflect.TypeFor[T]()}
}

// keyFinder matches elements whose widget key equals the given key.
type keyFinder struct {
	key any
}

func (f *keyFinder) Evaluate(elements *core.ElementTree, root *core.Element) []*core.Element {
	return collectMatches(elements, root, func(e *core.Element) bool {
		k := e.Widget().Key()
		if k == nil || f.key == nil {
			return k == nil && f.key == nil
		}
		// Guard against non-comparable types (slices, maps, funcs).
		if !reflect.TypeOf(k).Comparable() || !reflect.TypeOf(f.key).Comparable() {
			return reflect.DeepEqual(k, f.key)
		}
		return k == f.key
	})
}

func (f *keyFinder) Description() string {
	return fmt.Sprintf("ByKey(%v)", f.key)
}

// ByKey returns a finder that matches elements whose widget key equals key.
func ByKey(key any) Finder {
	return &keyFinder{key: key}
}

// kindFinder matches elements of one variant.
type kindFinder struct {
	kind core.Kind
}

func (f *kindFinder) Evaluate(elements *core.ElementTree, root *core.Element) []*core.Element {
	return collectMatches(elements, root, func(e *core.Element) bool {
		return e.Kind() == f.kind
	})
}

func (f *kindFinder) Description() string {
	return fmt.Sprintf("ByKind(%s)", f.kind)
}

// ByKind returns a finder that matches elements of the given kind, such as
// every [core.KindRender] element.
func ByKind(kind core.Kind) Finder {
	return &kindFinder{kind: kind}
}

// predicateFinder matches elements satisfying a predicate.
type predicateFinder struct {
	fn   func(*core.Element) bool
	desc string
}

func (f *predicateFinder) Evaluate(elements *core.ElementTree, root *core.Element) []*core.Element {
	return collectMatches(elements, root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(*core.Element) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds elements matching 'matching' that are descendants
// of elements matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(elements *core.ElementTree, root *core.Element) []*core.Element {
	var results []*core.Element
	seen := make(map[*core.Element]bool)
	for _, ancestor := range f.of.Evaluate(elements, root) {
		// Search within each ancestor's subtree (skip the ancestor itself)
		for child := range elements.Children(ancestor.ID()) {
			c, _ := elements.Get(child)
			for _, match := range f.matching.Evaluate(elements, c) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches elements satisfying 'matching'
// that are descendants of elements matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds elements matching 'matching' that are ancestors
// of elements matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(elements *core.ElementTree, root *core.Element) []*core.Element {
	descendants := f.of.Evaluate(elements, root)
	if len(descendants) == 0 {
		return nil
	}
	candidates := f.matching.Evaluate(elements, root)
	var results []*core.Element
	for _, candidate := range candidates {
		for _, desc := range descendants {
			if isAncestorOf(elements, candidate, desc) {
				results = append(results, candidate)
				break
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches elements satisfying 'matching'
// that are ancestors of elements matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// isAncestorOf reports whether ancestor strictly contains descendant.
func isAncestorOf(elements *core.ElementTree, ancestor, descendant *core.Element) bool {
	for id := range elements.Ancestors(descendant.ID()) {
		if id == ancestor.ID() {
			return true
		}
	}
	return false
}

// collectMatches performs depth-first pre-order traversal, collecting
// elements that satisfy the predicate.
func collectMatches(elements *core.ElementTree, root *core.Element, predicate func(*core.Element) bool) []*core.Element {
	var results []*core.Element
	for id := range elements.Descendants(root.ID()) {
		e, ok := elements.Get(id)
		if ok && predicate(e) {
			results = append(results, e)
		}
	}
	return results
}
