package core

import "sync"

// State is the mutable half of a [StatefulWidget]. It lives as long as its
// element.
type State interface {
	// InitState runs once after the element is mounted.
	InitState()
	Build(ctx BuildContext) Widget
	// DidUpdateWidget runs when the element was updated in place with a new
	// description.
	DidUpdateWidget(old StatefulWidget)
	// DidChangeDependencies runs before a rebuild caused by a provider the
	// state depends on.
	DidChangeDependencies()
	// Dispose runs when the element is destroyed.
	Dispose()
}

// stateBase is satisfied by any struct that embeds StateBase.
// Hooks and NewManaged accept stateBase so callers can pass s directly.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// StateBase provides common functionality for stateful widget states.
// Embed this struct in your state to eliminate boilerplate.
//
//	type counterState struct {
//	    core.StateBase
//	    count int
//	}
type StateBase struct {
	element   *Element
	disposers []func()
	disposed  bool
	mu        sync.Mutex
}

// Element returns the element associated with this state, or nil before it
// is mounted.
func (s *StateBase) Element() *Element {
	return s.element
}

// SetState executes fn and schedules a rebuild of the element.
// Safe to call after disposal (becomes a no-op).
//
// SetState is NOT thread-safe. It must only be called from the UI goroutine.
// Work finished on another goroutine is handed back with engine.Dispatch.
func (s *StateBase) SetState(fn func()) {
	if s.IsDisposed() {
		return
	}
	if fn != nil {
		fn()
	}
	if s.element != nil {
		s.element.MarkNeedsBuild()
	}
}

// OnDispose registers a cleanup function to be called when the state is disposed.
// Returns an unregister function that can be called to remove the disposer.
func (s *StateBase) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		cleanup()
		return func() {}
	}
	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// RunDisposers executes all registered disposers in reverse order.
// This is called automatically by Dispose().
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}

// Dispose runs the registered disposers. States overriding it must call
// s.StateBase.Dispose().
func (s *StateBase) Dispose() {
	s.RunDisposers()
}

// InitState is a no-op default implementation.
func (s *StateBase) InitState() {}

// DidChangeDependencies is a no-op default implementation.
func (s *StateBase) DidChangeDependencies() {}

// DidUpdateWidget is a no-op default implementation.
func (s *StateBase) DidUpdateWidget(StatefulWidget) {}

// IsDisposed returns true if this state has been disposed.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
