package cmd

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/framecore/pkg/config"
	"github.com/go-drift/framecore/pkg/graphics"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestExecute_Help(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}, {"help"}} {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("execute(%v) error = %v", args, err)
		}
		for _, name := range []string{"render", "tree", "serve", "config"} {
			if !strings.Contains(out, name) {
				t.Errorf("help for %v does not list %q", args, name)
			}
		}
	}
}

func TestExecute_Version(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("version output %q does not contain %q", out, Version)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	if _, err := run(t, "bogus"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestExecute_CommandHelp(t *testing.T) {
	out, err := run(t, "render", "--help")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "framedump render") {
		t.Errorf("render help missing usage: %q", out)
	}
}

func TestExecute_ConfigFlagRequiresPath(t *testing.T) {
	if _, err := run(t, "--config"); err == nil {
		t.Error("expected an error for --config without a path")
	}
}

func TestConfig_PrintsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("layout_cache:\n  capacity: 64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", path, "config")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "capacity: 64") {
		t.Errorf("config output missing capacity override:\n%s", out)
	}
	if !strings.Contains(out, "debug: true") {
		t.Errorf("config output missing default debug flag:\n%s", out)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("layout_cache:\n  capacity: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--config", path, "config"); err == nil {
		t.Error("expected a validation error")
	}
}

func TestRender_WritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "flex.png")
	stdout, err := run(t, "render", "--scene", "flex", "--width", "120", "--height", "80", "--out", out, "--background", "ffffff")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Wrote") {
		t.Errorf("unexpected output %q", stdout)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("image size = %dx%d, want 120x80", b.Dx(), b.Dy())
	}
}

func TestRender_EveryScene(t *testing.T) {
	for _, name := range sceneNames() {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), name+".png")
			if _, err := run(t, "render", "--scene", name, "--frames", "3", "--out", out); err != nil {
				t.Fatal(err)
			}
			if _, err := os.Stat(out); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestRender_RejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown scene", []string{"render", "--scene", "nope"}},
		{"zero width", []string{"render", "--width", "0"}},
		{"zero frames", []string{"render", "--frames", "0"}},
		{"bad color", []string{"render", "--background", "zz"}},
		{"unknown flag", []string{"render", "--bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("execute(%v) expected an error", tt.args)
			}
		})
	}
}

func TestTree_PrintsElementsAndLayers(t *testing.T) {
	out, err := run(t, "tree", "--scene", "layers", "--layers", "--stats")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Elements:", "Layers:", "widgets.Opacity", "paint:"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}
}

func TestTree_TickerRebuildsThroughProvider(t *testing.T) {
	f := &frameFlags{scene: "ticker", width: 200, height: 200, frames: 1}
	env := &Env{Config: config.Default()}
	e, tick, err := mount(env, f)
	if err != nil {
		t.Fatal(err)
	}
	if tick == nil {
		t.Fatal("ticker scene should be animated")
	}
	if _, err := stepFrames(e, f.size(), tick, 1); err != nil {
		t.Fatal(err)
	}
	frame, err := stepFrames(e, f.size(), tick, 2)
	if err != nil {
		t.Fatal(err)
	}
	// The state rebuilds, and every bar rebuilds because the level changed.
	if got := frame.Stats.Build.Rebuilt; got < 13 {
		t.Errorf("rebuilt = %d, want at least 13", got)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	f := &frameFlags{scene: "ticker", width: 100, height: 100, frames: 1}
	env := &Env{Config: config.Default(), Stdout: &bytes.Buffer{}}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := serve(ctx, env, f, 0, 60); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Stdout.(*bytes.Buffer).String(), "Serving scene") {
		t.Error("expected a serving banner")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    graphics.Color
		wantErr bool
	}{
		{"ff0000", graphics.ColorRed, false},
		{"#0000ff", graphics.ColorBlue, false},
		{"80ffffff", graphics.Color(0x80FFFFFF), false},
		{"fff", 0, true},
		{"gggggg", 0, true},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseColor(%q) = %#x, want %#x", tt.in, uint32(got), uint32(tt.want))
		}
	}
}
