package layout

import (
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/tree"
)

// HitTestResult collects the nodes under a position, deepest first.
type HitTestResult struct {
	Entries []*RenderNode
}

// Add appends a hit node.
func (h *HitTestResult) Add(n *RenderNode) {
	h.Entries = append(h.Entries, n)
}

// Deepest returns the innermost hit node, or nil.
func (h *HitTestResult) Deepest() *RenderNode {
	if len(h.Entries) == 0 {
		return nil
	}
	return h.Entries[0]
}

// Path returns the element ids of the hit nodes, deepest first. Nodes not
// owned by an element are left out.
func (h *HitTestResult) Path() []tree.ID {
	ids := make([]tree.ID, 0, len(h.Entries))
	for _, n := range h.Entries {
		if n.id != tree.None {
			ids = append(ids, n.id)
		}
	}
	return ids
}

// HitTest reports whether position, in n's local coordinates, hits n or one
// of its descendants, and records every hit node in result. Children are
// tested in reverse paint order so the topmost one wins.
func (n *RenderNode) HitTest(position graphics.Offset, result *HitTestResult) bool {
	if !n.size.Contains(position) {
		return false
	}
	hit, handled := n.impl.hitTestChildren(&scope{node: n}, result, position)
	if !handled {
		for i := len(n.children) - 1; i >= 0; i-- {
			child := n.children[i]
			if child.HitTest(position.Sub(child.offset), result) {
				hit = true
				break
			}
		}
	}
	if !hit {
		if st, ok := n.impl.value().(SelfHitTester); ok {
			hit = st.HitTestSelf(position)
		}
	}
	if hit {
		result.Add(n)
	}
	return hit
}
