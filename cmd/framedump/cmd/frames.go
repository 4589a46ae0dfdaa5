package cmd

import (
	"flag"
	"fmt"

	"github.com/go-drift/framecore/pkg/engine"
	"github.com/go-drift/framecore/pkg/graphics"
)

// frameFlags are the flags shared by every command that drives frames.
type frameFlags struct {
	scene  string
	width  int
	height int
	frames int
}

func (f *frameFlags) register(fs *flag.FlagSet, defaultScene string) {
	fs.StringVar(&f.scene, "scene", defaultScene, "demo scene to mount")
	fs.IntVar(&f.width, "width", 480, "surface width in logical pixels")
	fs.IntVar(&f.height, "height", 320, "surface height in logical pixels")
	fs.IntVar(&f.frames, "frames", 1, "number of frames to step before output")
}

func (f *frameFlags) size() graphics.Size {
	return graphics.Size{Width: float64(f.width), Height: float64(f.height)}
}

func (f *frameFlags) validate() error {
	if f.width <= 0 || f.height <= 0 {
		return fmt.Errorf("surface size must be positive, got %dx%d", f.width, f.height)
	}
	if f.frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", f.frames)
	}
	return nil
}

// mount creates an engine for the scene and sets its root. The returned tick
// is nil for static scenes.
func mount(env *Env, f *frameFlags, opts ...engine.Option) (*engine.Engine, func(), error) {
	s, err := lookupScene(f.scene)
	if err != nil {
		return nil, nil, err
	}
	root, tick := s.Build()
	e := engine.New(env.Config, opts...)
	e.SetRoot(root)
	return e, tick, nil
}

// stepFrames runs n frames, dispatching tick before every frame after the
// first.
func stepFrames(e *engine.Engine, size graphics.Size, tick func(), n int) (*engine.FrameSnapshot, error) {
	var frame *engine.FrameSnapshot
	for i := range n {
		if i > 0 && tick != nil {
			e.Dispatch(tick)
		}
		var err error
		if frame, err = e.StepFrame(size); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func newFlagSet(env *Env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	return fs
}
