package main

import (
	"github.com/Carmen-Shannon/scrollscene/engine"
	"github.com/Carmen-Shannon/scrollscene/engine/window"
	"github.com/spf13/cobra"
)

func newRunCommand(opts *options) *cobra.Command {
	var (
		profile bool
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window and render the scene until it is closed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Scene.WatchPage = watch
			}
			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			doc, err := loadPage(cfg)
			if err != nil {
				return err
			}

			win, err := window.NewWindow(
				window.WithTitle(cfg.Window.Title),
				window.WithSize(cfg.Window.Width, cfg.Window.Height),
			)
			if err != nil {
				return err
			}
			eng, _, err := buildEngine(sceneParts{
				cfg:    cfg,
				window: win,
				scene:  newScene(cfg, win.Width(), win.Height()),
				doc:    doc,
				logger: logger,
			},
				engine.WithProfiling(profile),
				engine.WithOnLoadFailed(func(err error) {
					logger.Error("model failed to load, rendering without it", "model", cfg.Scene.Model, "error", err)
				}),
			)
			if err != nil {
				_ = win.Close()
				return err
			}
			defer eng.Close()

			if cfg.Scene.Model != "" {
				eng.LoadModel(cfg.Scene.Model)
			}
			return eng.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&profile, "profile", false, "log frame and memory statistics once a second")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the page when the file changes")
	return cmd
}
