package widgets

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/graphics"
)

func init() {
	// Register the default error widget builder
	core.SetErrorWidgetBuilder(func(err *errors.BoundaryError) core.Widget {
		return ErrorWidget{Error: err}
	})
}

var (
	errorBackground      = graphics.RGB(0xb7, 0x1c, 0x1c)
	errorBackgroundQuiet = graphics.RGB(0x42, 0x42, 0x42)
	errorMarker          = graphics.ColorWhite
)

// ErrorWidget is shown in place of a subtree whose build failed.
// It fills the available space with a red background and a white marker in
// debug mode, or a neutral gray background otherwise.
//
// Importing this package registers ErrorWidget as the default error widget
// builder; call [core.SetErrorWidgetBuilder] to replace it.
type ErrorWidget struct {
	// Error is the build error that occurred.
	Error *errors.BoundaryError
	// Verbose overrides DebugMode for this widget instance.
	// If not explicitly set, defaults to core.DebugMode().
	Verbose *bool
}

// Key returns nil (no key).
func (e ErrorWidget) Key() any {
	return nil
}

// Build returns the error indicator.
func (e ErrorWidget) Build(core.BuildContext) core.Widget {
	verbose := core.DebugMode()
	if e.Verbose != nil {
		verbose = *e.Verbose
	}
	if !verbose {
		return ColoredBox{Color: errorBackgroundQuiet}
	}
	return ColoredBox{
		Color: errorBackground,
		Child: Center{Child: SizedBox{
			Width:  8,
			Height: 24,
			Child:  ColoredBox{Color: errorMarker},
		}},
	}
}
