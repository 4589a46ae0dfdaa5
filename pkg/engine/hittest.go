package engine

import (
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/tree"
)

// HitTest returns the element owning the deepest render node under point,
// in root coordinates, as laid out by the last frame.
func (e *Engine) HitTest(point graphics.Offset) (tree.ID, bool) {
	path := e.HitTestPath(point)
	if len(path) == 0 {
		return tree.None, false
	}
	return path[0], true
}

// HitTestPath returns the elements owning every render node under point,
// deepest first.
func (e *Engine) HitTestPath(point graphics.Offset) []tree.ID {
	e.frameLock.Lock()
	defer e.frameLock.Unlock()

	root := e.elements.RootRenderNode()
	if root == nil {
		return nil
	}
	var result layout.HitTestResult
	if !root.HitTest(point, &result) {
		return nil
	}
	return result.Path()
}
