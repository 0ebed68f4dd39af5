package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/scrollscene/engine/asset"
	"github.com/Carmen-Shannon/scrollscene/engine/game_object"
	"github.com/Carmen-Shannon/scrollscene/engine/loader"
	"github.com/Carmen-Shannon/scrollscene/engine/page"
	"github.com/Carmen-Shannon/scrollscene/engine/profiler"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/Carmen-Shannon/scrollscene/engine/scroll"
	"github.com/Carmen-Shannon/scrollscene/engine/text"
	"github.com/Carmen-Shannon/scrollscene/engine/window"
)

// engine implements the Engine interface.
// Window events, asset completions and page reloads all reach the frame loop
// on the goroutine running the window's message loop.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene
	scroll   scroll.State
	text     text.Generator
	clock    renderer.Clock
	models   loader.Loader
	logger   *slog.Logger

	loop *loop

	profiler         *profiler.Profiler
	profilingEnabled bool

	doc          *page.Document
	pagePath     string
	blurSize     float32
	docHeight    float64
	onLoadFailed func(error)
	onFrame      func(FrameStats) error

	running  atomic.Bool
	quit     atomic.Bool
	closeOne sync.Once
}

// Engine wires a window, a renderer and the scroll scene together.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene the loop draws.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Scroll returns the scroll state driven by the window.
	//
	// Returns:
	//   - scroll.State: the scroll state
	Scroll() scroll.State

	// Loop returns the per-frame loop.
	//
	// Returns:
	//   - Loop: the loop
	Loop() Loop

	// LoadModel loads a glTF or GLB file in the background and places it in the
	// scene's mesh slot once it has loaded. The file is always re-read, so
	// calling it again after the file changed picks up the new contents.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - bool: false if a load is already in flight
	LoadModel(path string) bool

	// Run registers the window callbacks and runs the message loop, rendering one
	// frame per iteration. The shader clock restarts from zero on every run.
	// It returns when the window closes, ctx is cancelled, Quit is called or a
	// frame fails. A panic inside a frame is recovered and returned as an error.
	//
	// Parameters:
	//   - ctx: cancels the run
	//
	// Returns:
	//   - error: the first frame error, nil on a clean stop
	Run(ctx context.Context) error

	// Quit stops Run after the current frame. Safe to call multiple times.
	Quit()

	// Close releases the renderer, the text canvas and the window.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates an Engine.
// Panics if no window or no renderer is given.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the renderer cannot be sized to the window
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		clock: renderer.NewClock(renderer.ClockModeWallclock),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.window == nil {
		panic("engine: WithWindow is required")
	}
	if e.renderer == nil {
		panic("engine: WithRenderer is required")
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	width, height := e.window.Width(), e.window.Height()
	if e.scene == nil {
		e.scene = scene.NewScene("main", scene.WithViewport(width, height))
	}
	if e.scroll == nil {
		e.scroll = scroll.NewState(scroll.WithViewport(width, height))
	}
	if e.text == nil {
		e.text = text.NewGenerator(text.WithSize(width, height), text.WithLogger(e.logger))
	}
	if e.models == nil {
		e.models = loader.NewLoader(loader.WithLogger(e.logger))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(e.logger, time.Second)
	}
	if e.doc == nil {
		e.doc = &page.Document{}
	}

	e.loop = &loop{
		scene:          e.scene,
		renderer:       e.renderer,
		scroll:         e.scroll,
		text:           e.text,
		clock:          e.clock,
		assets:         asset.NewLoader[game_object.GameObject](1, e.logger),
		logger:         e.logger,
		doc:            e.doc,
		pageUpdates:    make(chan page.Update, 1),
		blurSize:       e.blurSize,
		documentHeight: e.docHeight,
		onLoadFailed:   e.onLoadFailed,
	}
	e.scroll.OnSectionChange(e.loop.onSectionChange)

	if err := e.loop.Resize(width, height); err != nil {
		return nil, fmt.Errorf("engine: size renderer to window: %w", err)
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Scroll() scroll.State {
	return e.scroll
}

func (e *engine) Loop() Loop {
	return e.loop
}

func (e *engine) LoadModel(path string) bool {
	return e.loop.LoadMesh(path, func() (game_object.GameObject, error) {
		e.models.Evict(path)
		mdl, err := e.models.Load(path)
		if err != nil {
			return nil, err
		}
		return scene.NewMeshObject(mdl), nil
	})
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: already running")
	}
	defer e.running.Store(false)
	e.clock.Reset()

	var runErr error
	stop := func(err error) {
		if runErr == nil {
			runErr = err
		}
		_ = e.window.Close()
	}

	e.window.SetResizeCallback(func(width, height int) {
		if err := e.loop.Resize(width, height); err != nil {
			stop(fmt.Errorf("engine: resize to %dx%d: %w", width, height, err))
		}
	})
	e.window.SetScrollCallback(func(ev window.ScrollEvent) {
		applyScroll(e.scroll, ev, e.window.Height())
	})

	if e.pagePath != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := page.Watch(watchCtx, e.pagePath, e.logger, e.loop.PostPage); err != nil {
				e.logger.Warn("page hot reload disabled", "path", e.pagePath, "error", err)
			}
		}()
	}

	last := time.Now()
	e.window.SetUpdateCallback(func() {
		if runErr != nil {
			return
		}
		if ctx.Err() != nil || e.quit.Load() {
			stop(nil)
			return
		}
		now := time.Now()
		dt := now.Sub(last)
		last = now

		stats, err := e.frame(dt)
		if err != nil {
			stop(errFrame(e.renderer.Frames()+1, err))
			return
		}
		if e.profilingEnabled {
			e.profiler.Tick(profiler.Sample{MeshDrawn: stats.MeshDrawn, TextUploaded: stats.TextUploaded})
		}
		if e.onFrame != nil {
			if err := e.onFrame(stats); err != nil {
				stop(err)
			}
		}
	})
	defer func() {
		e.window.SetUpdateCallback(nil)
		e.window.SetResizeCallback(nil)
		e.window.SetScrollCallback(nil)
	}()

	e.logger.Info("engine running", "backend", e.renderer.BackendType().String())
	e.window.ProcessMessages()
	e.logger.Info("engine stopped", "frames", e.renderer.Frames())
	return runErr
}

// frame renders one frame, turning a panic into an error.
func (e *engine) frame(dt time.Duration) (stats FrameStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("engine: frame panicked: %v", r)
		}
	}()
	return e.loop.RenderFrame(dt)
}

func (e *engine) Quit() {
	e.quit.Store(true)
}

func (e *engine) Close() {
	e.closeOne.Do(func() {
		e.renderer.Close()
		e.text.Close()
		if err := e.window.Close(); err != nil {
			e.logger.Debug("window close", "error", err)
		}
	})
}
