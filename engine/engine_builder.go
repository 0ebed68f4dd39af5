package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/scrollscene/engine/loader"
	"github.com/Carmen-Shannon/scrollscene/engine/page"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/Carmen-Shannon/scrollscene/engine/scroll"
	"github.com/Carmen-Shannon/scrollscene/engine/text"
	"github.com/Carmen-Shannon/scrollscene/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets the window the engine runs in. Required.
//
// Parameters:
//   - w: a GLFW or headless window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that draws the frames. Required.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene sets the scene to draw instead of a default one sized to the window.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithScrollState sets the scroll state the window drives.
//
// Parameters:
//   - s: the scroll state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScrollState(s scroll.State) EngineBuilderOption {
	return func(e *engine) {
		e.scroll = s
	}
}

// WithTextGenerator sets the generator that draws the section headings.
//
// Parameters:
//   - g: the text generator
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTextGenerator(g text.Generator) EngineBuilderOption {
	return func(e *engine) {
		e.text = g
	}
}

// WithClock sets the clock that produces the time uniform. Defaults to a wall-clock Clock.
//
// Parameters:
//   - c: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(c renderer.Clock) EngineBuilderOption {
	return func(e *engine) {
		e.clock = c
	}
}

// WithModelLoader sets the loader LoadModel reads files with.
//
// Parameters:
//   - l: the model loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithModelLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.models = l
	}
}

// WithPage sets the page whose headings and sections drive the scene.
//
// Parameters:
//   - doc: the parsed page
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPage(doc *page.Document) EngineBuilderOption {
	return func(e *engine) {
		e.doc = doc
	}
}

// WithPageWatch reloads the page from path whenever the file changes while Run is active.
//
// Parameters:
//   - path: the page file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPageWatch(path string) EngineBuilderOption {
	return func(e *engine) {
		e.pagePath = path
	}
}

// WithBlurSize sets the composite blur size. Zero keeps the shader default.
//
// Parameters:
//   - size: the blur tap scale
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBlurSize(size float32) EngineBuilderOption {
	return func(e *engine) {
		e.blurSize = size
	}
}

// WithDocumentHeight fixes the scrollable document height instead of giving
// every section one viewport.
//
// Parameters:
//   - height: the document height in pixels (values <= 0 keep the per-section height)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDocumentHeight(height float64) EngineBuilderOption {
	return func(e *engine) {
		e.docHeight = height
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithOnLoadFailed registers a callback for a mesh that fails to load. It runs
// on the frame loop after the slot has moved to Failed.
//
// Parameters:
//   - callback: receives the load error
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOnLoadFailed(callback func(error)) EngineBuilderOption {
	return func(e *engine) {
		e.onLoadFailed = callback
	}
}

// WithOnFrame registers a callback run after every presented frame. Returning an
// error stops Run with that error.
//
// Parameters:
//   - callback: receives the frame's stats
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOnFrame(callback func(FrameStats) error) EngineBuilderOption {
	return func(e *engine) {
		e.onFrame = callback
	}
}

// WithLogger sets the logger shared by the engine and the components it creates.
//
// Parameters:
//   - logger: the logger (nil discards)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}
