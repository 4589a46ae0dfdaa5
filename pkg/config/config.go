// Package config loads the optional framecore.yaml file that tunes the frame
// pipeline.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	drifterrors "github.com/go-drift/framecore/pkg/errors"
)

// FileName is the name of the configuration file looked up by [LoadOptional].
const FileName = "framecore.yaml"

// Config represents the framecore.yaml configuration.
type Config struct {
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Build       BuildConfig       `yaml:"build"`
	LayoutCache LayoutCacheConfig `yaml:"layout_cache"`
	Log         LogConfig         `yaml:"log"`
}

// PipelineConfig contains frame pipeline settings.
type PipelineConfig struct {
	// Debug enables placeholder error widgets with diagnostic text and
	// per-frame debug logging.
	Debug bool `yaml:"debug"`
	// ParallelLayout measures independent siblings concurrently during
	// intrinsic size queries.
	ParallelLayout bool `yaml:"parallel_layout"`
}

// BuildConfig contains build scheduling settings.
type BuildConfig struct {
	// BatchWindow coalesces build requests that arrive within the window into
	// a single frame request. Zero disables batching.
	BatchWindow time.Duration `yaml:"batch_window"`
}

// LayoutCacheConfig contains layout cache settings.
type LayoutCacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// LogConfig selects the level and format of the logger built by
// [Config.NewLogger].
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{Debug: true},
		LayoutCache: LayoutCacheConfig{
			Enabled:  true,
			Capacity: 4096,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the configuration file at path. Fields missing from
// the file keep their [Default] values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap("config.Load", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err))
	}
	return Parse(data)
}

// LoadOptional reads framecore.yaml from dir if present and returns
// [Default] otherwise.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data on top of [Default] and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, wrap("config.Parse", fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Build.BatchWindow < 0 {
		return wrap("config.Validate", fmt.Errorf("build.batch_window must not be negative, got %s", c.Build.BatchWindow))
	}
	if c.LayoutCache.Enabled && c.LayoutCache.Capacity <= 0 {
		return wrap("config.Validate", fmt.Errorf("layout_cache.capacity must be positive, got %d", c.LayoutCache.Capacity))
	}
	if c.LayoutCache.TTL < 0 {
		return wrap("config.Validate", fmt.Errorf("layout_cache.ttl must not be negative, got %s", c.LayoutCache.TTL))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return wrap("config.Validate", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return wrap("config.Validate", fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return nil
}

// NewLogger builds a slog logger writing to w at the configured level and
// format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}

// Resolved is a loaded configuration together with the project it belongs to.
type Resolved struct {
	*Config
	Root       string
	ModulePath string
}

// Resolve loads framecore.yaml from dir (if present) and reads the module
// path from dir/go.mod. A missing go.mod leaves ModulePath empty.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	path, err := modulePath(dir)
	if err != nil {
		return nil, err
	}
	return &Resolved{Config: cfg, Root: dir, ModulePath: path}, nil
}

// FindProjectRoot walks up from start to the nearest directory holding a
// go.mod or framecore.yaml file.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, marker := range []string{"go.mod", FileName} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", wrap("config.FindProjectRoot", fmt.Errorf("no go.mod or %s above %s: %w", FileName, start, drifterrors.ErrNotFound))
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", wrap("config.Resolve", fmt.Errorf("failed to read go.mod: %w", err))
	}
	return modfile.ModulePath(data), nil
}

func wrap(op string, err error) error {
	return &drifterrors.DriftError{Op: op, Kind: drifterrors.KindConfig, Err: err}
}
