package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/scrollscene/config"
	"github.com/Carmen-Shannon/scrollscene/engine"
	"github.com/Carmen-Shannon/scrollscene/engine/loader"
	"github.com/Carmen-Shannon/scrollscene/engine/page"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/Carmen-Shannon/scrollscene/engine/window"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
)

func newRenderCommand(opts *options) *cobra.Command {
	var (
		frames       int
		outDir       string
		offsets      []float64
		width        int
		height       int
		offscreen    bool
		requireModel bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render scripted scroll positions with the software renderer and write PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("frames") {
				cfg.Render.Frames = frames
			}
			if flags.Changed("out") {
				cfg.Render.OutDir = outDir
			}
			if flags.Changed("offsets") {
				cfg.Render.ScrollOffsets = offsets
			}
			if flags.Changed("width") {
				cfg.Window.Width = width
			}
			if flags.Changed("height") {
				cfg.Window.Height = height
			}
			cfg.Render.Backend = renderer.BackendTypeSoftware.String()
			cfg.Scene.WatchPage = false
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return renderFrames(cmd.Context(), cfg, logger, offscreen, requireModel)
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&frames, "frames", "n", 1, "number of frames to render")
	flags.StringVarP(&outDir, "out", "o", "frames", "output directory")
	flags.Float64SliceVar(&offsets, "offsets", nil, "scroll offset in pixels per frame (default spreads the frames over the page)")
	flags.IntVar(&width, "width", 0, "viewport width")
	flags.IntVar(&height, "height", 0, "viewport height")
	flags.BoolVar(&offscreen, "offscreen", false, "also write the offscreen target of every frame")
	flags.BoolVar(&requireModel, "require-model", false, "fail when the model cannot be loaded")
	return cmd
}

func renderFrames(ctx context.Context, cfg config.Config, logger *slog.Logger, offscreen, requireModel bool) error {
	doc, err := loadPage(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Render.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	width, height := cfg.Window.Width, cfg.Window.Height
	offsets := cfg.Render.ScrollOffsets
	if len(offsets) == 0 {
		offsets = spreadOffsets(documentHeight(cfg, doc, height), height, cfg.Render.Frames)
	}
	win := window.NewHeadlessWindow(
		window.WithHeadlessSize(width, height),
		window.WithFrames(cfg.Render.Frames),
		window.WithScrollOffsets(offsets...),
	)

	scn := newScene(cfg, width, height)
	if cfg.Scene.Model != "" {
		if err := preloadMesh(scn, cfg.Scene.Model, logger); err != nil {
			if requireModel {
				return err
			}
			logger.Warn("model failed to load, rendering without it", "model", cfg.Scene.Model, "error", err)
		}
	} else if requireModel {
		return errors.New("--require-model needs a model")
	}

	var r renderer.Renderer
	eng, r, err := buildEngine(sceneParts{cfg: cfg, window: win, scene: scn, doc: doc, logger: logger},
		engine.WithOnFrame(func(stats engine.FrameStats) error {
			return writeFrame(r, cfg.Render.OutDir, stats, offscreen, logger)
		}),
	)
	if err != nil {
		return err
	}
	defer eng.Close()
	return eng.Run(ctx)
}

// preloadMesh loads the model before the first frame so every written frame shows it.
func preloadMesh(scn scene.Scene, path string, logger *slog.Logger) error {
	slot := scn.MeshSlot()
	slot.Begin()
	mdl, err := loader.NewLoader(loader.WithLogger(logger)).Load(path)
	if err != nil {
		slot.Fail(err)
		return err
	}
	slot.Resolve(scene.NewMeshObject(mdl))
	return nil
}

func documentHeight(cfg config.Config, doc *page.Document, viewportHeight int) float64 {
	if cfg.Scene.DocumentHeight > 0 {
		return cfg.Scene.DocumentHeight
	}
	return float64(doc.DocumentHeight(viewportHeight))
}

// spreadOffsets scrolls evenly from the top of the document to the bottom over the frames.
func spreadOffsets(docHeight float64, viewportHeight, frames int) []float64 {
	maxScroll := docHeight - float64(viewportHeight)
	if frames < 2 || maxScroll <= 0 {
		return nil
	}
	offsets := make([]float64, frames)
	for i := range offsets {
		offsets[i] = maxScroll * float64(i) / float64(frames-1)
	}
	return offsets
}

func writeFrame(r renderer.Renderer, dir string, stats engine.FrameStats, offscreen bool, logger *slog.Logger) error {
	screen, off, err := r.Capture()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", stats.Frame))
	if err := gg.FromImage(screen).SavePNG(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if offscreen {
		offPath := filepath.Join(dir, fmt.Sprintf("frame-%04d-offscreen.png", stats.Frame))
		if err := gg.FromImage(off).SavePNG(offPath); err != nil {
			return fmt.Errorf("write %s: %w", offPath, err)
		}
	}
	logger.Info("frame written", "path", path, "scroll", stats.Scroll.Offset,
		"percentage", stats.Scroll.Percentage, "section", stats.Scroll.Section,
		"active_point", stats.ActivePoint, "mesh", stats.MeshDrawn)
	return nil
}
