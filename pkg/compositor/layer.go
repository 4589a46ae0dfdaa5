package compositor

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-drift/framecore/pkg/graphics"
)

// Effect is applied by the compositor before descending into a layer's
// content. The set of effects is closed: [Opacity], [Clip] and [Transform].
type Effect interface {
	effect()
	String() string
}

// Opacity composites the layer's content at Alpha (0-1).
type Opacity struct {
	Alpha float64
}

// Clip restricts the layer's content to Rect, in the layer's coordinates.
type Clip struct {
	Rect graphics.Rect
}

// Transform applies Matrix to the layer's content.
type Transform struct {
	Matrix graphics.Matrix
}

func (Opacity) effect()   {}
func (Clip) effect()      {}
func (Transform) effect() {}

func (e Opacity) String() string {
	return fmt.Sprintf("opacity(%.3g)", e.Alpha)
}

func (e Clip) String() string {
	r := e.Rect
	return fmt.Sprintf("clip(%g,%g %gx%g)", r.Left, r.Top, r.Width(), r.Height())
}

func (e Transform) String() string {
	m := e.Matrix
	if m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1 {
		return fmt.Sprintf("translate(%g,%g)", m.E, m.F)
	}
	return fmt.Sprintf("transform(%g %g %g %g %g %g)", m.A, m.B, m.C, m.D, m.E, m.F)
}

// Layer is one node of the paint output tree.
//
// The compositor applies Effect, then replays Picture, then composites
// Children in order. A layer with Boundary set belongs to a repaint boundary
// and may be reused across frames while its subtree is clean.
type Layer struct {
	Picture  *Picture
	Children []*Layer
	Effect   Effect
	Boundary bool
	// Owner labels the layer in dumps. It is informational only.
	Owner string
}

// NewPictureLayer returns a leaf layer holding pic.
func NewPictureLayer(pic *Picture) *Layer {
	return &Layer{Picture: pic}
}

// NewContainer returns a layer that applies effect to children.
func NewContainer(effect Effect, children ...*Layer) *Layer {
	return &Layer{Effect: effect, Children: children}
}

// Append adds child after the existing children. Nil children are ignored.
func (l *Layer) Append(child *Layer) {
	if child == nil {
		return
	}
	l.Children = append(l.Children, child)
}

// IsEmpty reports whether compositing l would draw nothing.
func (l *Layer) IsEmpty() bool {
	if l == nil {
		return true
	}
	if op, ok := l.Effect.(Opacity); ok && op.Alpha <= 0 {
		return true
	}
	if l.Picture.Len() > 0 {
		return false
	}
	for _, c := range l.Children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Bounds returns the area l draws into, in the coordinate space of its parent.
func (l *Layer) Bounds() graphics.Rect {
	if l == nil {
		return graphics.Rect{}
	}
	b := l.Picture.Bounds()
	for _, c := range l.Children {
		b = b.Union(c.Bounds())
	}
	switch e := l.Effect.(type) {
	case Clip:
		b = b.Intersect(e.Rect)
	case Transform:
		if !b.IsEmpty() {
			b = e.Matrix.TransformRect(b)
		}
	}
	return b
}

// Walk calls fn for l and every descendant in compositing order. Returning
// false from fn skips the layer's children.
func (l *Layer) Walk(fn func(layer *Layer, depth int) bool) {
	l.walk(fn, 0)
}

func (l *Layer) walk(fn func(*Layer, int) bool, depth int) {
	if l == nil || !fn(l, depth) {
		return
	}
	for _, c := range l.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of layers in the tree rooted at l.
func (l *Layer) Count() int {
	n := 0
	l.Walk(func(*Layer, int) bool {
		n++
		return true
	})
	return n
}

// Dump writes an indented description of the layer tree to w.
func (l *Layer) Dump(w io.Writer) {
	l.Walk(func(layer *Layer, depth int) bool {
		var parts []string
		if layer.Owner != "" {
			parts = append(parts, layer.Owner)
		}
		if layer.Effect != nil {
			parts = append(parts, layer.Effect.String())
		}
		if layer.Boundary {
			parts = append(parts, "boundary")
		}
		if n := layer.Picture.Len(); n > 0 {
			parts = append(parts, fmt.Sprintf("picture(%d ops)", n))
		}
		if len(parts) == 0 {
			parts = append(parts, "container")
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), strings.Join(parts, " "))
		return true
	})
}

// String returns the output of [Layer.Dump].
func (l *Layer) String() string {
	var sb strings.Builder
	l.Dump(&sb)
	return sb.String()
}
