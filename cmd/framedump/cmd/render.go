package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/framecore/pkg/graphics"
	"github.com/go-drift/framecore/pkg/raster"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Render a scene to PNG",
		Long: `Mount a demo scene, step one or more frames and composite the last
frame into a PNG image.

Flags:
  --scene NAME     Scene to render (default: flex)
  --width N        Surface width (default: 480)
  --height N       Surface height (default: 320)
  --frames N       Frames to step first; animated scenes tick between frames
  --out FILE       Output file (default: <scene>.png)
  --background HEX Background color as RRGGBB or AARRGGBB (default: transparent)`,
		Usage: "framedump render [--scene NAME] [--width N] [--height N] [--frames N] [--out FILE] [--background HEX]",
		Run:   runRender,
	})
}

func runRender(env *Env, args []string) error {
	var (
		f          frameFlags
		out        string
		background string
	)
	fs := newFlagSet(env, "render")
	f.register(fs, "flex")
	fs.StringVar(&out, "out", "", "output PNG file")
	fs.StringVar(&background, "background", "", "background color")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := f.validate(); err != nil {
		return err
	}
	if out == "" {
		out = f.scene + ".png"
	}
	var bg graphics.Color
	if background != "" {
		var err error
		if bg, err = parseColor(background); err != nil {
			return err
		}
	}

	e, tick, err := mount(env, &f)
	if err != nil {
		return err
	}
	frame, err := stepFrames(e, f.size(), tick, f.frames)
	if err != nil {
		return err
	}

	canvas := raster.New(f.width, f.height)
	if bg != 0 {
		canvas.Clear(bg)
	}
	stats, err := e.RenderFrame(canvas)
	if err != nil {
		return err
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := canvas.EncodePNG(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", out, err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Wrote %s (%dx%d, frame %d, %d layers, %d ops, %d meshes)\n",
		out, f.width, f.height, frame.Frame, stats.Layers, stats.Ops, canvas.Meshes())
	return nil
}

// parseColor parses RRGGBB or AARRGGBB, with an optional leading #.
func parseColor(s string) (graphics.Color, error) {
	hex := s
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var v uint32
	if _, err := fmt.Sscanf(hex, "%x", &v); err != nil || (len(hex) != 6 && len(hex) != 8) {
		return 0, fmt.Errorf("invalid color %q (want RRGGBB or AARRGGBB)", s)
	}
	if len(hex) == 6 {
		v |= 0xFF000000
	}
	return graphics.Color(v), nil
}
