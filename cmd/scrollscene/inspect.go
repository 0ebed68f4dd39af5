package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Carmen-Shannon/scrollscene/engine/loader"
	"github.com/Carmen-Shannon/scrollscene/engine/page"
	"github.com/spf13/cobra"
)

func newInspectCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [model]",
		Short: "Describe the model and page the scene would load",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Scene.Model = args[0]
			}
			if cfg.Scene.Model == "" && cfg.Scene.Page == "" {
				return errors.New("nothing to inspect: give a model or --page")
			}
			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer out.Flush()

			if cfg.Scene.Model != "" {
				s, err := loader.NewLoader(loader.WithLogger(logger)).Inspect(cfg.Scene.Model)
				writeSummary(out, s)
				if err != nil {
					return err
				}
			}
			if cfg.Scene.Page != "" {
				doc, err := page.Load(cfg.Scene.Page)
				if err != nil {
					return err
				}
				writeDocument(out, doc, cfg.Window.Height)
			}
			return nil
		},
	}
}

func writeSummary(w io.Writer, s loader.Summary) {
	if s.Path == "" {
		return
	}
	fmt.Fprintf(w, "model\t%s\n", s.Path)
	fmt.Fprintf(w, "format\t%s\n", s.Format)
	fmt.Fprintf(w, "meshes\t%d (%d primitives)\n", s.Meshes, s.Primitives)
	fmt.Fprintf(w, "nodes\t%d\n", s.Nodes)
	fmt.Fprintf(w, "materials\t%d\n", s.Materials)
	fmt.Fprintf(w, "textures\t%d\n", s.Textures)
	if len(s.Extensions) > 0 {
		fmt.Fprintf(w, "extensions\t%s\n", strings.Join(s.Extensions, ", "))
	}
	if s.Draco {
		fmt.Fprintf(w, "draco\tyes, cannot be loaded\n")
		return
	}
	fmt.Fprintf(w, "vertices\t%d\n", s.Vertices)
	fmt.Fprintf(w, "triangles\t%d\n", s.Triangles)
	fmt.Fprintf(w, "bounds\t%v .. %v\n", s.Min, s.Max)
}

func writeDocument(w io.Writer, doc *page.Document, viewportHeight int) {
	fmt.Fprintf(w, "page\t%s\n", doc.Title)
	fmt.Fprintf(w, "sections\t%d\n", doc.Sections())
	for i, h := range doc.Headings {
		fmt.Fprintf(w, "  %d\t%q\n", i, h)
	}
	fmt.Fprintf(w, "points\t%d\n", doc.Points)
	fmt.Fprintf(w, "height\t%dpx at a %dpx viewport\n", doc.DocumentHeight(viewportHeight), viewportHeight)
}
