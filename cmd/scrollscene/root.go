package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/scrollscene/config"
	"github.com/Carmen-Shannon/scrollscene/engine/camera"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/Carmen-Shannon/scrollscene/engine/text"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	logLevel   string

	model    string
	page     string
	backend  string
	timing   string
	blurSize float32
	workers  int
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "scrollscene",
		Short:         "Render a 3D model whose pose follows the page scroll position",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVarP(&opts.model, "model", "m", "", "glTF or GLB model file")
	flags.StringVarP(&opts.page, "page", "p", "", "HTML page with the section headings")
	flags.StringVar(&opts.backend, "backend", "", "renderer backend: wgpu or software")
	flags.StringVar(&opts.timing, "timing", "", "shader clock: wallclock or fixed")
	flags.Float32Var(&opts.blurSize, "blur-size", 0, "blur tap spacing in UV units")
	flags.IntVar(&opts.workers, "workers", 0, "software raster workers (0 uses one per CPU)")

	cmd.AddCommand(newRunCommand(opts), newRenderCommand(opts), newInspectCommand(opts))
	return cmd
}

// load reads the config file, if any, and applies the flags the user set.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Scene.Model = o.model
	}
	if flags.Changed("page") {
		cfg.Scene.Page = o.page
	}
	if flags.Changed("backend") {
		cfg.Render.Backend = o.backend
	}
	if flags.Changed("timing") {
		cfg.Timing.Mode = o.timing
	}
	if flags.Changed("blur-size") {
		cfg.Shader.BlurSize = o.blurSize
	}
	if flags.Changed("workers") {
		cfg.Render.Workers = o.workers
	}
	return cfg, cfg.Validate()
}

// logger builds the process logger and hands it to the 2D graphics library.
func (o *options) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(o.logLevel))); err != nil {
		return nil, fmt.Errorf("--log-level %q: %w", o.logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	gg.SetLogger(logger.With("component", "gg"))
	return logger, nil
}

func newScene(cfg config.Config, width, height int) scene.Scene {
	cam := camera.NewCamera(
		camera.WithPosition(0, 0, cfg.Scene.CameraZ),
		camera.WithFov(mgl32.DegToRad(cfg.Scene.Fov)),
		camera.WithNear(cfg.Scene.Near),
		camera.WithFar(cfg.Scene.Far),
	)
	return scene.NewScene("main", scene.WithCamera(cam), scene.WithViewport(width, height))
}

func newTextGenerator(cfg config.Config, width, height int, logger *slog.Logger) text.Generator {
	return text.NewGenerator(
		text.WithSize(width, height),
		text.WithFontSize(cfg.Text.FontSize),
		text.WithColor(cfg.TextColor()),
		text.WithLogger(logger),
	)
}

func newClock(cfg config.Config) renderer.Clock {
	return renderer.NewClock(cfg.ClockMode(),
		renderer.WithStep(cfg.Timing.Step),
		renderer.WithRate(cfg.Timing.Rate),
	)
}

func presentMode(cfg config.Config) renderer.PresentMode {
	if cfg.Window.VSync {
		return renderer.PresentModeVSync
	}
	return renderer.PresentModeUncapped
}
