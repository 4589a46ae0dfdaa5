package core

// Disposable is implemented by controllers that hold resources.
type Disposable interface {
	Dispose()
}

// UseController creates a controller and registers it for automatic disposal.
// The controller will be disposed when the state is disposed.
//
//	func (s *tickerState) InitState() {
//	    s.ticker = core.UseController(s, newTicker)
//	}
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(controller.Dispose)
	return controller
}

// Managed holds a value and triggers rebuilds when it changes.
//
// Managed is NOT thread-safe. It must only be accessed from the UI goroutine.
// To update from a background goroutine, hand the result back with
// engine.Dispatch:
//
//	go func() {
//	    result := load()
//	    eng.Dispatch(func() { s.data.Set(result) })
//	}()
type Managed[T any] struct {
	base  *StateBase
	value T
}

// NewManaged creates a new managed state value.
func NewManaged[T any](s stateBase, initial T) *Managed[T] {
	return &Managed[T]{
		base:  s.state(),
		value: initial,
	}
}

// Value returns the current value.
func (m *Managed[T]) Value() T {
	return m.value
}

// Set updates the value and triggers a rebuild.
func (m *Managed[T]) Set(value T) {
	m.value = value
	m.base.SetState(nil)
}

// Update applies a transformation to the current value and triggers a rebuild.
func (m *Managed[T]) Update(transform func(T) T) {
	m.value = transform(m.value)
	m.base.SetState(nil)
}
