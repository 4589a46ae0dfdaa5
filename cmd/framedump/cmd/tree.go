package cmd

import (
	"fmt"
	"io"

	"github.com/go-drift/framecore/pkg/engine"
)

func init() {
	RegisterCommand(&Command{
		Name:  "tree",
		Short: "Print the element and layer trees of a scene",
		Long: `Mount a demo scene, step one or more frames and print the element
tree. With --layers the layer tree of the last frame follows, and with
--stats the frame counters.

Flags:
  --scene NAME   Scene to mount (default: flex)
  --width N      Surface width (default: 480)
  --height N     Surface height (default: 320)
  --frames N     Frames to step first
  --layers       Also print the layer tree
  --stats        Also print frame statistics`,
		Usage: "framedump tree [--scene NAME] [--frames N] [--layers] [--stats]",
		Run:   runTree,
	})
}

func runTree(env *Env, args []string) error {
	var (
		f         frameFlags
		layers    bool
		showStats bool
	)
	fs := newFlagSet(env, "tree")
	f.register(fs, "flex")
	fs.BoolVar(&layers, "layers", false, "print the layer tree")
	fs.BoolVar(&showStats, "stats", false, "print frame statistics")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := f.validate(); err != nil {
		return err
	}

	e, tick, err := mount(env, &f)
	if err != nil {
		return err
	}
	frame, err := stepFrames(e, f.size(), tick, f.frames)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, "Elements:")
	if err := e.Elements().Dump(env.Stdout); err != nil {
		return err
	}
	if layers && frame.Layer != nil {
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Layers:")
		frame.Layer.Dump(env.Stdout)
	}
	if showStats {
		fmt.Fprintln(env.Stdout)
		printStats(env.Stdout, frame.Stats)
	}
	return nil
}

func printStats(w io.Writer, s engine.FrameStats) {
	fmt.Fprintf(w, "Frame %d (%s)\n", s.Frame, s.Duration)
	fmt.Fprintf(w, "  %-14s %d rebuilt, %d retried\n", "build:", s.Build.Rebuilt, s.Build.Retried)
	fmt.Fprintf(w, "  %-14s %d elements, %d mounted, %d destroyed, %d failed\n", "tree:",
		s.Elements, s.Mounted, s.Destroyed, s.BuildFailures)
	fmt.Fprintf(w, "  %-14s %d layouts, %d cache hits, %d skipped\n", "layout:",
		s.Layout.Layouts, s.Layout.CacheHits, s.Layout.SkippedClean)
	fmt.Fprintf(w, "  %-14s %d paints, %d layers\n", "paint:", s.Layout.Paints, s.Layers)
	fmt.Fprintf(w, "  %-14s %d/%d entries, %.0f%% hit rate\n", "cache:",
		s.Cache.Len, s.Cache.Capacity, s.Cache.HitRate()*100)
}
