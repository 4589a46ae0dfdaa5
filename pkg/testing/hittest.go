package testing

import (
	"fmt"

	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// GlobalRect returns the bounds of the first element matched by finder in
// root coordinates. Only layout offsets are applied; paint transforms are
// not.
func (t *WidgetTester) GlobalRect(finder Finder) (graphics.Rect, error) {
	result := t.Find(finder)
	if !result.Exists() {
		return graphics.Rect{}, fmt.Errorf("GlobalRect: finder matched no elements: %s", finder.Description())
	}
	n := result.RenderNode()
	if n == nil {
		return graphics.Rect{}, fmt.Errorf("GlobalRect: element has no render node: %s", finder.Description())
	}
	return graphics.RectFromOffsetSize(globalOffset(n), n.Size()), nil
}

// HitTestAt returns the elements whose render nodes are under pos, deepest
// first.
func (t *WidgetTester) HitTestAt(pos graphics.Offset) []*core.Element {
	elements := t.engine.Elements()
	var hits []*core.Element
	for _, id := range t.engine.HitTestPath(pos) {
		if e, ok := elements.Get(id); ok {
			hits = append(hits, e)
		}
	}
	return hits
}

// HitTarget hit-tests the center of the first element matched by finder and
// returns the deepest element hit there, or an error if nothing is.
func (t *WidgetTester) HitTarget(finder Finder) (*core.Element, error) {
	rect, err := t.GlobalRect(finder)
	if err != nil {
		return nil, err
	}
	hits := t.HitTestAt(rect.Center())
	if len(hits) == 0 {
		return nil, fmt.Errorf("HitTarget: nothing hit at %v: %s", rect.Center(), finder.Description())
	}
	return hits[0], nil
}

func globalOffset(n *layout.RenderNode) graphics.Offset {
	var offset graphics.Offset
	for ; n != nil; n = n.Parent() {
		offset = offset.Add(n.Offset())
	}
	return offset
}
