package testing

import (
	"errors"
	"image"
	"math"
	"testing"
	"time"

	"github.com/go-drift/framecore/pkg/config"
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/engine"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
	"github.com/go-drift/framecore/pkg/raster"
)

const (
	// DefaultTestWidth is the default logical width for the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default logical height for the test surface.
	DefaultTestHeight = 600
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: framework did not settle")

// ErrNoFrame is returned by Render before the first pump.
var ErrNoFrame = errors.New("no frame has been pumped")

// WidgetTester provides isolated widget testing without a display.
// It drives a real engine through the build, layout and paint phases, with
// a fake clock behind the layout cache and an in-memory raster for pixels.
type WidgetTester struct {
	engine *engine.Engine
	clock  *FakeClock
	size   graphics.Size
	frame  *engine.FrameSnapshot
}

// NewWidgetTester creates a tester with the default configuration.
// Call Cleanup() when done, or use NewWidgetTesterWithT() instead.
func NewWidgetTester() *WidgetTester {
	return NewWidgetTesterWithConfig(config.Default())
}

// NewWidgetTesterWithConfig creates a tester whose engine uses cfg.
func NewWidgetTesterWithConfig(cfg *config.Config) *WidgetTester {
	clk := NewFakeClock()
	return &WidgetTester{
		engine: engine.New(cfg, engine.WithCacheClock(clk.Now)),
		clock:  clk,
		size:   graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
	}
}

// NewWidgetTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree so every state is disposed.
func (t *WidgetTester) Cleanup() {
	if t.engine.Elements().Len() == 0 {
		return
	}
	t.engine.SetRoot(nil)
	t.Pump()
}

// SetSize sets the logical surface size used by the next pump.
func (t *WidgetTester) SetSize(size graphics.Size) {
	t.size = size
}

// Clock returns the fake clock driving layout cache expiry.
func (t *WidgetTester) Clock() *FakeClock {
	return t.clock
}

// Engine returns the engine under test.
func (t *WidgetTester) Engine() *engine.Engine {
	return t.engine
}

// PumpWidget sets widget as the root and runs one full frame. The new root
// is reconciled against the previous one, so matching elements keep their
// state.
func (t *WidgetTester) PumpWidget(widget core.Widget) error {
	t.engine.SetRoot(widget)
	return t.Pump()
}

// Pump runs a single frame: dispatches, build, finalize, layout, paint.
func (t *WidgetTester) Pump() error {
	frame, err := t.engine.StepFrame(t.size)
	if err != nil {
		return err
	}
	t.frame = frame
	return nil
}

// PumpAndSettle runs frames until the engine is idle or the timeout
// is reached. Each frame advances the fake clock by frameDuration (16ms).
// Returns ErrSettleTimeout if the framework does not settle within timeout.
func (t *WidgetTester) PumpAndSettle(timeout time.Duration) error {
	const frameDuration = 16 * time.Millisecond
	var elapsed time.Duration
	for elapsed < timeout {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.engine.NeedsFrame() {
			return nil
		}
		t.clock.Advance(frameDuration)
		elapsed += frameDuration
	}
	return ErrSettleTimeout
}

// Dispatch queues a callback for the next frame, mirroring engine.Dispatch.
func (t *WidgetTester) Dispatch(fn func()) {
	t.engine.Dispatch(fn)
}

// LastFrame returns the snapshot of the last pumped frame, or nil.
func (t *WidgetTester) LastFrame() *engine.FrameSnapshot {
	return t.frame
}

// Elements returns the element tree.
func (t *WidgetTester) Elements() *core.ElementTree {
	return t.engine.Elements()
}

// RootElement returns the root element of the mounted tree, or nil.
func (t *WidgetTester) RootElement() *core.Element {
	elements := t.engine.Elements()
	root, _ := elements.Get(elements.Root())
	return root
}

// RootRenderNode returns the root render node of the mounted tree.
func (t *WidgetTester) RootRenderNode() *layout.RenderNode {
	return t.engine.Elements().RootRenderNode()
}

// Find evaluates a finder against the current element tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	root := t.RootElement()
	if root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.engine.Elements(), root),
		finder:   finder,
	}
}

// Render composites the last frame into a new image of the surface size,
// rounded up to whole pixels.
func (t *WidgetTester) Render() (*image.RGBA, error) {
	if t.frame == nil {
		return nil, ErrNoFrame
	}
	canvas := raster.New(int(math.Ceil(t.frame.Size.Width)), int(math.Ceil(t.frame.Size.Height)))
	if _, err := t.engine.RenderFrame(canvas); err != nil {
		return nil, err
	}
	return canvas.Image(), nil
}
