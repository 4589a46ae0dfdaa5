package testing

import (
	"fmt"
	"math"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/graphics"
)

// DisplayOp represents a serialized painter operation.
type DisplayOp struct {
	Op     string         `json:"op"`
	Params map[string]any `json:"params,omitempty"`
}

// serializingPainter implements compositor.Painter and every optional
// painter interface, and records calls as DisplayOp.
type serializingPainter struct {
	ops []DisplayOp
}

var (
	_ compositor.Painter           = (*serializingPainter)(nil)
	_ compositor.RectPainter       = (*serializingPainter)(nil)
	_ compositor.RRectPainter      = (*serializingPainter)(nil)
	_ compositor.CirclePainter     = (*serializingPainter)(nil)
	_ compositor.LinePainter       = (*serializingPainter)(nil)
	_ compositor.AlphaLayerPainter = (*serializingPainter)(nil)
)

func (c *serializingPainter) Save() {
	c.ops = append(c.ops, DisplayOp{Op: "save"})
}

func (c *serializingPainter) SaveLayerAlpha(bounds graphics.Rect, alpha float64) {
	c.ops = append(c.ops, DisplayOp{
		Op:     "saveLayerAlpha",
		Params: sortedMap("bounds", serializeRect(bounds), "alpha", round2(alpha)),
	})
}

func (c *serializingPainter) Restore() {
	c.ops = append(c.ops, DisplayOp{Op: "restore"})
}

func (c *serializingPainter) Transform(m graphics.Matrix) {
	if dx, dy, ok := translationOf(m); ok {
		c.ops = append(c.ops, DisplayOp{
			Op:     "translate",
			Params: sortedMap("dx", round2(dx), "dy", round2(dy)),
		})
		return
	}
	c.ops = append(c.ops, DisplayOp{
		Op: "transform",
		Params: sortedMap(
			"a", round2(m.A), "b", round2(m.B), "c", round2(m.C),
			"d", round2(m.D), "e", round2(m.E), "f", round2(m.F),
		),
	})
}

func (c *serializingPainter) ClipRect(rect graphics.Rect) {
	c.ops = append(c.ops, DisplayOp{
		Op:     "clipRect",
		Params: sortedMap("rect", serializeRect(rect)),
	})
}

func (c *serializingPainter) DrawMesh(mesh graphics.Mesh, paint graphics.Paint) {
	c.ops = append(c.ops, DisplayOp{
		Op:     "drawMesh",
		Params: sortedMap("vertices", len(mesh.Vertices), "color", serializeColor(paint.Color)),
	})
}

func (c *serializingPainter) DrawRect(rect graphics.Rect, paint graphics.Paint) {
	c.ops = append(c.ops, DisplayOp{
		Op:     "drawRect",
		Params: paintParams(paint, "rect", serializeRect(rect)),
	})
}

func (c *serializingPainter) DrawRRect(rrect graphics.RRect, paint graphics.Paint) {
	c.ops = append(c.ops, DisplayOp{
		Op: "drawRRect",
		Params: paintParams(paint,
			"rect", serializeRect(rrect.Rect),
			"radius", sortedMap("x", round2(rrect.Radius.X), "y", round2(rrect.Radius.Y)),
		),
	})
}

func (c *serializingPainter) DrawCircle(center graphics.Offset, radius float64, paint graphics.Paint) {
	c.ops = append(c.ops, DisplayOp{
		Op: "drawCircle",
		Params: paintParams(paint,
			"cx", round2(center.X),
			"cy", round2(center.Y),
			"radius", round2(radius),
		),
	})
}

func (c *serializingPainter) DrawLine(start, end graphics.Offset, paint graphics.Paint) {
	c.ops = append(c.ops, DisplayOp{
		Op: "drawLine",
		Params: paintParams(paint,
			"x1", round2(start.X), "y1", round2(start.Y),
			"x2", round2(end.X), "y2", round2(end.Y),
		),
	})
}

// serializeLayers composites a layer tree through the serializing painter.
func serializeLayers(root *compositor.Layer) []DisplayOp {
	if root == nil {
		return nil
	}
	painter := &serializingPainter{}
	compositor.New().Composite(root, painter)
	return painter.ops
}

// --- Serialization helpers ---

func translationOf(m graphics.Matrix) (dx, dy float64, ok bool) {
	if m.A != 1 || m.B != 0 || m.C != 0 || m.D != 1 {
		return 0, 0, false
	}
	return m.E, m.F, true
}

func paintParams(paint graphics.Paint, kvs ...any) map[string]any {
	m := sortedMap(kvs...)
	m["color"] = serializeColor(paint.Color)
	if paint.Style == graphics.PaintStyleStroke {
		m["strokeWidth"] = round2(paint.StrokeWidth)
	}
	return m
}

func serializeRect(r graphics.Rect) map[string]any {
	return sortedMap(
		"left", round2(r.Left),
		"top", round2(r.Top),
		"right", round2(r.Right),
		"bottom", round2(r.Bottom),
	)
}

func serializeColor(c graphics.Color) string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// round2 rounds a float64 to 2 decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// sortedMap creates a map from alternating key-value pairs. Key order is
// restored by the JSON encoder, which sorts map keys.
func sortedMap(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		m[kvs[i].(string)] = kvs[i+1]
	}
	return m
}
