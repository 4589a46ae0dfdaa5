// Package errors provides structured error handling for the frame pipeline.
//
// Three classes of failure are distinguished:
//
//   - Invariant violations (lifecycle and hierarchy) are framework defects.
//     They are raised with panic via [Violation] and never returned as values.
//   - Failures inside user-supplied build, layout or paint logic are recovered
//     per element, wrapped in a [BoundaryError] and reported through the
//     global [ErrorHandler]. The offending element is replaced for one frame.
//   - Lookups for things that no longer exist return [ErrNotFound] or
//     [ErrNoProvider] and let the caller decide.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindLifecycle indicates an operation on an element or render node in
	// the wrong lifecycle state, or a phase-ordering violation.
	KindLifecycle
	// KindHierarchy indicates an inconsistent parent/child relation or an
	// out-of-range child access.
	KindHierarchy
	// KindBuild indicates a failure in a build function.
	KindBuild
	// KindLayout indicates a failure in a layout function.
	KindLayout
	// KindPaint indicates a failure in a paint function.
	KindPaint
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindLifecycle:
		return "lifecycle"
	case KindHierarchy:
		return "hierarchy"
	case KindBuild:
		return "build"
	case KindLayout:
		return "layout"
	case KindPaint:
		return "paint"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound is returned when an element, render node or cache entry no
	// longer exists.
	ErrNotFound = stderrors.New("not found")
	// ErrNoProvider is returned when a context lookup finds no provider of
	// the requested type above the caller.
	ErrNoProvider = stderrors.New("no provider above element")
)

// DriftError represents a structured, recoverable error.
type DriftError struct {
	// Op is the operation that failed (e.g. "config.Load").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *DriftError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic outside of element boundaries.
type PanicError struct {
	// Op is the operation that panicked (e.g. "engine.Frame").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BoundaryError is a failure in user-supplied build, layout or paint logic
// that was isolated to a single element.
type BoundaryError struct {
	// Phase is "build", "layout" or "paint".
	Phase string
	// Widget is the type name of the description involved.
	Widget string
	// Element is the identifier of the element that failed, formatted.
	Element string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BoundaryError) Error() string {
	subject := e.Widget
	if subject == "" {
		subject = "element"
	}
	if e.Element != "" {
		subject += " " + e.Element
	}
	switch {
	case e.Recovered != nil:
		return fmt.Sprintf("panic during %s of %s: %v", e.Phase, subject, e.Recovered)
	case e.Err != nil:
		return fmt.Sprintf("error during %s of %s: %v", e.Phase, subject, e.Err)
	default:
		return fmt.Sprintf("unknown error during %s of %s", e.Phase, subject)
	}
}

func (e *BoundaryError) Unwrap() error {
	return e.Err
}

// InvariantError describes a broken framework invariant. It is only ever
// carried by a panic.
type InvariantError struct {
	Kind   ErrorKind
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s violation in %s: %s", e.Kind, e.Op, e.Detail)
}

// Violation panics with an [InvariantError]. Continuing after a lifecycle
// or hierarchy violation would corrupt the tree, so there is no way to
// return it as a value.
func Violation(kind ErrorKind, op, format string, args ...any) {
	panic(&InvariantError{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)})
}

// AsInvariant extracts an [InvariantError] from a recovered panic value.
func AsInvariant(recovered any) (*InvariantError, bool) {
	err, ok := recovered.(*InvariantError)
	return err, ok
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}

// ErrorHandler receives errors reported by the pipeline.
type ErrorHandler interface {
	// HandleError is called when a recoverable error occurs.
	HandleError(err *DriftError)
	// HandlePanic is called when a panic is recovered outside an element.
	HandlePanic(err *PanicError)
	// HandleBoundaryError is called when a build, layout or paint function
	// fails and its element is replaced by a placeholder.
	HandleBoundaryError(err *BoundaryError)
}
