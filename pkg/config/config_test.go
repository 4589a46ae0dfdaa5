package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drifterrors "github.com/go-drift/framecore/pkg/errors"
)

func TestLoadOptionalMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
build:
  batch_window: 16ms
layout_cache:
  ttl: 2s
log:
  level: debug
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, 16*time.Millisecond, cfg.Build.BatchWindow)
	assert.Equal(t, 2*time.Second, cfg.LayoutCache.TTL)
	assert.Equal(t, 4096, cfg.LayoutCache.Capacity, "unset fields keep defaults")
	assert.True(t, cfg.LayoutCache.Enabled)
	assert.True(t, cfg.Pipeline.Debug)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"negative window":  "build: {batch_window: -1s}",
		"zero capacity":    "layout_cache: {capacity: 0}",
		"negative ttl":     "layout_cache: {ttl: -5s}",
		"unknown level":    "log: {level: loud}",
		"unknown format":   "log: {format: xml}",
		"malformed yaml":   "pipeline: [",
		"wrong field type": "pipeline: {debug: maybe}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			var de *drifterrors.DriftError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, drifterrors.KindConfig, de.Kind)
		})
	}
}

func TestDisabledCacheAllowsZeroCapacity(t *testing.T) {
	cfg, err := Parse([]byte("layout_cache: {enabled: false, capacity: 0}"))
	require.NoError(t, err)
	assert.False(t, cfg.LayoutCache.Enabled)
}

func TestResolveReadsModulePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/demo\n\ngo 1.24\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("pipeline: {parallel_layout: true}\n"), 0o644))

	res, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/demo", res.ModulePath)
	assert.True(t, res.Pipeline.ParallelLayout)

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	root, err := FindProjectRoot(nested)
	require.NoError(t, err)
	want, _ := filepath.Abs(dir)
	assert.Equal(t, want, root)
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log.Level = "warn"
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
