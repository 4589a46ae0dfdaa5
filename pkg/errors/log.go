package errors

import (
	"github.com/go-drift/framecore/pkg/logging"
)

// LogHandler is an ErrorHandler that writes to the logger configured with
// [logging.SetLogger].
type LogHandler struct {
	// Verbose attaches stack traces to log records.
	Verbose bool
}

// HandleError logs a DriftError.
func (h *LogHandler) HandleError(err *DriftError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	logging.Logger().Error("framecore error", attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	logging.Logger().Error("framecore panic", attrs...)
}

// HandleBoundaryError logs a BoundaryError.
func (h *LogHandler) HandleBoundaryError(err *BoundaryError) {
	if err == nil {
		return
	}
	attrs := []any{"phase", err.Phase, "widget", err.Widget, "element", err.Element, "err", err.Error()}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	logging.Logger().Error("framecore boundary error", attrs...)
}
