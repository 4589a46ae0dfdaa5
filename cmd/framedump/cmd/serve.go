package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/framecore/pkg/engine"
	"github.com/go-drift/framecore/pkg/logging"
)

func init() {
	RegisterCommand(&Command{
		Name:  "serve",
		Short: "Drive a scene continuously and serve debug endpoints",
		Long: `Mount a demo scene and step frames on demand while serving the
engine's debug endpoints over HTTP:

  /render-tree   render tree with sizes, offsets and dirty flags
  /widget-tree   element tree with kinds, keys and lifecycle
  /frames        recent frame samples (?limit=, ?min_ms=, ?failures=true)
  /stats         counters of the last frame and the layout cache
  /health        liveness probe

Animated scenes tick at --fps; a frame is only stepped when one was
requested. Stop with Ctrl+C.

Flags:
  --scene NAME   Scene to mount (default: ticker)
  --port N       Port to listen on, 0 for any free port (default: 9222)
  --fps N        Tick rate of animated scenes (default: 30)
  --width N      Surface width (default: 480)
  --height N     Surface height (default: 320)`,
		Usage: "framedump serve [--scene NAME] [--port N] [--fps N]",
		Run:   runServe,
	})
}

// frameTraceSamples is the size of the frame trace ring buffer used by serve.
const frameTraceSamples = 600

func runServe(env *Env, args []string) error {
	var (
		f    frameFlags
		port int
		fps  int
	)
	fs := newFlagSet(env, "serve")
	f.register(fs, "ticker")
	fs.IntVar(&port, "port", 9222, "port to listen on")
	fs.IntVar(&fps, "fps", 30, "tick rate of animated scenes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := f.validate(); err != nil {
		return err
	}
	if fps <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", fps)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, env, &f, port, fps)
}

// serve runs the frame loop and the debug server until ctx is done.
func serve(ctx context.Context, env *Env, f *frameFlags, port, fps int) error {
	interval := time.Second / time.Duration(fps)
	wake := make(chan struct{}, 1)
	e, tick, err := mount(env, f,
		engine.WithFrameTrace(frameTraceSamples, interval),
		engine.WithScheduleFrame(func() {
			select {
			case wake <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}
	if _, err := stepFrames(e, f.size(), nil, 1); err != nil {
		return err
	}

	server := engine.NewDebugServer(e)
	actual, err := server.Start(port)
	if err != nil {
		return err
	}
	defer server.Stop()
	fmt.Fprintf(env.Stdout, "Serving scene %q on http://localhost:%d (Ctrl+C to stop)\n", f.scene, actual)

	g, ctx := errgroup.WithContext(ctx)
	if tick != nil {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					e.Dispatch(tick)
				}
			}
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-wake:
				if _, err := e.StepFrame(f.size()); err != nil {
					return err
				}
			}
		}
	})

	err = g.Wait()
	stats := e.LastStats()
	logging.Logger().Info("serve stopped", "frames", stats.Frame, "elements", stats.Elements)
	return err
}
