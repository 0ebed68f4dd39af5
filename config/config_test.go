package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, renderer.ClockModeWallclock, cfg.ClockMode())
	assert.Equal(t, renderer.BackendTypeWGPU, cfg.BackendType())
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, cfg.TextColor())
	assert.Equal(t, float32(75), cfg.Scene.Fov)
	assert.Equal(t, float32(15), cfg.Scene.CameraZ)
	assert.Equal(t, float32(0.01), cfg.Shader.BlurSize)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
width = 800
height = 600

[timing]
mode = "fixed"

[render]
backend = "software"
frames = 3
scroll_offsets = [0, 900, 1800]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, "scrollscene", cfg.Window.Title, "unset keys keep their defaults")
	assert.Equal(t, renderer.ClockModeFixed, cfg.ClockMode())
	assert.Equal(t, renderer.BackendTypeSoftware, cfg.BackendType())
	assert.Equal(t, []float64{0, 900, 1800}, cfg.Render.ScrollOffsets)
	assert.Equal(t, float64(48), cfg.Text.FontSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Parse([]byte("[window]\nwidht = 10\n"))
	assert.ErrorIs(t, err, ErrInvalid, "unknown keys are rejected")

	_, err = Parse([]byte("[window\n"))
	assert.Error(t, err)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"fov too wide", func(c *Config) { c.Scene.Fov = 180 }},
		{"negative document height", func(c *Config) { c.Scene.DocumentHeight = -1 }},
		{"far before near", func(c *Config) { c.Scene.Far = 0.05 }},
		{"no font size", func(c *Config) { c.Text.FontSize = 0 }},
		{"bad colour", func(c *Config) { c.Text.Color = "#ggg" }},
		{"negative blur", func(c *Config) { c.Shader.BlurSize = -1 }},
		{"zero step", func(c *Config) { c.Timing.Step = 0 }},
		{"unknown mode", func(c *Config) { c.Timing.Mode = "realtime" }},
		{"unknown backend", func(c *Config) { c.Render.Backend = "vulkan" }},
		{"no frames", func(c *Config) { c.Render.Frames = 0 }},
		{"negative workers", func(c *Config) { c.Render.Workers = -2 }},
		{"negative offset", func(c *Config) { c.Render.ScrollOffsets = []float64{0, -1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestEncodeRoundTripsThroughParse(t *testing.T) {
	cfg := Default()
	cfg.Render.ScrollOffsets = []float64{0, 450}
	cfg.Text.Color = "#ff8800"

	data, err := cfg.Encode()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "examples", "scene.toml"))
	require.NoError(t, err)
	assert.Equal(t, "examples/index.html", cfg.Scene.Page)
	assert.True(t, cfg.Scene.WatchPage)
	assert.Equal(t, 8, cfg.Render.Frames)
}
