package testbed

import (
	"github.com/go-drift/framecore/pkg/core"
	"github.com/go-drift/framecore/pkg/graphics"
)

// Counter is a stateful widget that renders a LayoutBox Step pixels wide
// per count. Tests drive it through a CounterHandle.
type Counter struct {
	core.StatefulBase
	Initial int
	Step    float64
	Handle  *CounterHandle
}

// CounterHandle exposes the state of a mounted Counter.
type CounterHandle struct {
	state *counterState
}

// Increment bumps the count and schedules a rebuild.
func (h *CounterHandle) Increment() {
	h.state.SetState(func() {
		h.state.count++
	})
}

// Count returns the current count.
func (h *CounterHandle) Count() int {
	return h.state.count
}

func (c Counter) CreateState() core.State {
	return &counterState{}
}

type counterState struct {
	core.StateBase
	count int
}

func (s *counterState) InitState() {
	w := s.Element().Widget().(Counter)
	s.count = w.Initial
	if w.Handle != nil {
		w.Handle.state = s
	}
}

func (s *counterState) Build(core.BuildContext) core.Widget {
	w := s.Element().Widget().(Counter)
	step := w.Step
	if step == 0 {
		step = 10
	}
	return LayoutBox{Width: float64(s.count) * step, Height: 10, Color: graphics.ColorBlue}
}

func (s *counterState) DidUpdateWidget(core.StatefulWidget) {
	if w := s.Element().Widget().(Counter); w.Handle != nil {
		w.Handle.state = s
	}
}
