// Package config loads the scrollscene settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/gogpu/gg"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete set of settings. The zero value is not usable; start from Default.
type Config struct {
	Window WindowConfig `toml:"window"`
	Scene  SceneConfig  `toml:"scene"`
	Text   TextConfig   `toml:"text"`
	Shader ShaderConfig `toml:"shader"`
	Timing TimingConfig `toml:"timing"`
	Render RenderConfig `toml:"render"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type SceneConfig struct {
	// Model is the glTF or GLB file placed in the mesh slot. Empty runs without a mesh.
	Model string `toml:"model"`
	// Page is the HTML page providing the headings and sections. Empty runs with no headings.
	Page      string  `toml:"page"`
	WatchPage bool    `toml:"watch_page"`
	Fov       float32 `toml:"fov"`
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`
	CameraZ   float32 `toml:"camera_z"`

	// DocumentHeight fixes the scrollable height in pixels. Zero gives every section one viewport.
	DocumentHeight float64 `toml:"document_height"`
}

type TextConfig struct {
	FontSize float64 `toml:"font_size"`
	// Color is a hex colour: RGB, RGBA, RRGGBB or RRGGBBAA, with or without '#'.
	Color string `toml:"color"`
}

type ShaderConfig struct {
	BlurSize float32 `toml:"blur_size"`
}

type TimingConfig struct {
	// Mode is "wallclock" or "fixed".
	Mode string  `toml:"mode"`
	Step float32 `toml:"step"`
	Rate float32 `toml:"rate"`
}

type RenderConfig struct {
	// Backend is "wgpu" or "software".
	Backend              string    `toml:"backend"`
	ForceFallbackAdapter bool      `toml:"force_fallback_adapter"`
	Workers              int       `toml:"workers"`
	Frames               int       `toml:"frames"`
	OutDir               string    `toml:"out_dir"`
	ScrollOffsets        []float64 `toml:"scroll_offsets"`
}

// Default returns the settings the scene was designed with.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "scrollscene", VSync: true},
		Scene:  SceneConfig{Fov: 75, Near: 0.1, Far: 1000, CameraZ: 15},
		Text:   TextConfig{FontSize: 48, Color: "#ffffff"},
		Shader: ShaderConfig{BlurSize: 0.01},
		Timing: TimingConfig{
			Mode: renderer.ClockModeWallclock.String(),
			Step: renderer.DefaultStep,
			Rate: renderer.DefaultRate,
		},
		Render: RenderConfig{
			Backend: renderer.BackendTypeWGPU.String(),
			Frames:  1,
			OutDir:  "frames",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// Keys the file leaves out keep their default values; unknown keys are an error.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the loaded configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes the configuration as TOML.
//
// Returns:
//   - []byte: the TOML document
//   - error: an encoding error
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks every setting.
//
// Returns:
//   - error: an error wrapping ErrInvalid naming the first bad setting
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return invalid("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Scene.Fov <= 0 || c.Scene.Fov >= 180:
		return invalid("scene.fov %g must be in (0, 180)", c.Scene.Fov)
	case c.Scene.Near <= 0 || c.Scene.Far <= c.Scene.Near:
		return invalid("scene.near %g and scene.far %g need 0 < near < far", c.Scene.Near, c.Scene.Far)
	case c.Scene.DocumentHeight < 0:
		return invalid("scene.document_height %g must not be negative", c.Scene.DocumentHeight)
	case c.Text.FontSize <= 0:
		return invalid("text.font_size %g must be positive", c.Text.FontSize)
	case !validHex(c.Text.Color):
		return invalid("text.color %q is not a hex colour", c.Text.Color)
	case c.Shader.BlurSize < 0:
		return invalid("shader.blur_size %g must not be negative", c.Shader.BlurSize)
	case c.Timing.Step <= 0 || c.Timing.Rate <= 0:
		return invalid("timing.step %g and timing.rate %g must be positive", c.Timing.Step, c.Timing.Rate)
	case c.Render.Workers < 0:
		return invalid("render.workers %d must not be negative", c.Render.Workers)
	case c.Render.Frames < 1:
		return invalid("render.frames %d must be at least 1", c.Render.Frames)
	}
	if _, err := renderer.ParseClockMode(c.Timing.Mode); err != nil {
		return invalid("timing.mode: %v", err)
	}
	if _, err := renderer.ParseBackendType(c.Render.Backend); err != nil {
		return invalid("render.backend: %v", err)
	}
	for i, off := range c.Render.ScrollOffsets {
		if off < 0 {
			return invalid("render.scroll_offsets[%d] %g must not be negative", i, off)
		}
	}
	return nil
}

// ClockMode returns the parsed timing mode. Call Validate first.
func (c Config) ClockMode() renderer.ClockMode {
	mode, _ := renderer.ParseClockMode(c.Timing.Mode)
	return mode
}

// BackendType returns the parsed renderer backend. Call Validate first.
func (c Config) BackendType() renderer.RendererBackendType {
	backend, _ := renderer.ParseBackendType(c.Render.Backend)
	return backend
}

// TextColor returns the parsed heading colour. Call Validate first.
func (c Config) TextColor() color.Color {
	return gg.Hex(c.Text.Color).Color()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
