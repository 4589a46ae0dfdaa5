package core

import (
	"sync"

	"github.com/go-drift/framecore/pkg/compositor"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/layout"
)

// ErrorWidgetBuilder creates the description shown in place of a subtree
// whose build failed. Returning nil selects [ErrorPlaceholder].
type ErrorWidgetBuilder func(err *errors.BoundaryError) Widget

var (
	errorWidgetBuilder ErrorWidgetBuilder
	errorBuilderMu     sync.RWMutex
)

// SetErrorWidgetBuilder configures the global error widget builder.
// Pass nil to restore the default placeholder.
func SetErrorWidgetBuilder(builder ErrorWidgetBuilder) {
	errorBuilderMu.Lock()
	defer errorBuilderMu.Unlock()
	errorWidgetBuilder = builder
}

// GetErrorWidgetBuilder returns the current error widget builder, or nil.
func GetErrorWidgetBuilder() ErrorWidgetBuilder {
	errorBuilderMu.RLock()
	defer errorBuilderMu.RUnlock()
	return errorWidgetBuilder
}

func errorWidget(err *errors.BoundaryError) Widget {
	if builder := GetErrorWidgetBuilder(); builder != nil {
		if w := builder(err); w != nil {
			return w
		}
	}
	return ErrorPlaceholder{Err: err}
}

// ErrorPlaceholder is the inert leaf mounted where a build failed. It takes
// the smallest size its constraints allow and, in debug mode, paints a red
// marker over it.
type ErrorPlaceholder struct {
	Err *errors.BoundaryError
}

func (ErrorPlaceholder) Key() any { return nil }

func (p ErrorPlaceholder) CreateRenderObject(BuildContext) *layout.RenderNode {
	return layout.New[layout.NoChildren](&placeholderBox{err: p.Err})
}

func (p ErrorPlaceholder) UpdateRenderObject(_ BuildContext, node *layout.RenderNode) {
	node.Box().(*placeholderBox).err = p.Err
}

type placeholderBox struct {
	err *errors.BoundaryError
}

var placeholderColor = graphics.RGBA(0xb7, 0x1c, 0x1c, 1)

func (b *placeholderBox) PerformLayout(c layout.Constraints, _ layout.NoChildren) graphics.Size {
	return c.Smallest()
}

func (b *placeholderBox) Paint(ctx *layout.PaintContext, _ layout.NoChildren) {
	if !DebugMode() {
		return
	}
	size := ctx.Size()
	if size.IsEmpty() {
		return
	}
	compositor.DrawRect(ctx.Canvas(), graphics.RectFromLTWH(0, 0, size.Width, size.Height), graphics.Stroke(placeholderColor, 2))
}

// Empty is the inert leaf used wherever a child is required but none was
// described.
type Empty struct{}

func (Empty) Key() any { return nil }

func (Empty) CreateRenderObject(BuildContext) *layout.RenderNode {
	return layout.New[layout.NoChildren](emptyBox{})
}

func (Empty) UpdateRenderObject(BuildContext, *layout.RenderNode) {}

type emptyBox struct{}

func (emptyBox) PerformLayout(c layout.Constraints, _ layout.NoChildren) graphics.Size {
	return c.Smallest()
}

func (emptyBox) Paint(*layout.PaintContext, layout.NoChildren) {}
