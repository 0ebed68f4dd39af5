package main

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/scrollscene/config"
	"github.com/Carmen-Shannon/scrollscene/engine"
	"github.com/Carmen-Shannon/scrollscene/engine/page"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/Carmen-Shannon/scrollscene/engine/window"
)

// sceneParts are the pieces a command assembles before handing them to the engine.
type sceneParts struct {
	cfg    config.Config
	window window.Window
	scene  scene.Scene
	doc    *page.Document
	logger *slog.Logger
}

// loadPage reads the configured page, or returns an empty one when none is set.
func loadPage(cfg config.Config) (*page.Document, error) {
	if cfg.Scene.Page == "" {
		return &page.Document{}, nil
	}
	return page.Load(cfg.Scene.Page)
}

// buildEngine creates the renderer for the window and wires it into an engine.
// The renderer is closed again if the engine cannot be created.
func buildEngine(p sceneParts, extra ...engine.EngineBuilderOption) (engine.Engine, renderer.Renderer, error) {
	width, height := p.window.Width(), p.window.Height()
	r, err := renderer.NewRenderer(p.cfg.BackendType(), p.window,
		renderer.WithSize(width, height),
		renderer.WithPresentMode(presentMode(p.cfg)),
		renderer.WithForceFallbackAdapter(p.cfg.Render.ForceFallbackAdapter),
		renderer.WithWorkers(p.cfg.Render.Workers),
		renderer.WithLogger(p.logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s renderer: %w", p.cfg.BackendType(), err)
	}

	opts := []engine.EngineBuilderOption{
		engine.WithWindow(p.window),
		engine.WithRenderer(r),
		engine.WithScene(p.scene),
		engine.WithTextGenerator(newTextGenerator(p.cfg, width, height, p.logger)),
		engine.WithClock(newClock(p.cfg)),
		engine.WithPage(p.doc),
		engine.WithBlurSize(p.cfg.Shader.BlurSize),
		engine.WithDocumentHeight(p.cfg.Scene.DocumentHeight),
		engine.WithLogger(p.logger),
	}
	if p.cfg.Scene.WatchPage && p.cfg.Scene.Page != "" {
		opts = append(opts, engine.WithPageWatch(p.cfg.Scene.Page))
	}
	eng, err := engine.NewEngine(append(opts, extra...)...)
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	return eng, r, nil
}
