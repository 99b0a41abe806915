package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/hooks"
	"github.com/msalah0e/nodeweave/internal/parallel"
	"github.com/msalah0e/nodeweave/internal/render"
	"github.com/msalah0e/nodeweave/internal/scene"
	"github.com/msalah0e/nodeweave/internal/session"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) exportCmd() *cobra.Command {
	var formats, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the document as JSON, Graphviz DOT or PNG",
		Example: `  nodeweave export --format png
  nodeweave export --format json,dot,png --dir out/`,
		Args: cobra.NoArgs,
		RunE: a.view(func(cmd *cobra.Command, s *session.Session, args []string) error {
			list := a.cfg.Export.Formats
			if formats != "" {
				var err error
				if list, err = render.ParseFormats(formats); err != nil {
					return err
				}
			}
			if dir == "" {
				dir = a.cfg.Export.Dir
			}
			if dir == "" {
				dir = "."
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			doc := s.Editor.Scene.Serialize()
			opts := render.DefaultOptions()
			opts.Metrics = a.cfg.Node.Metrics()
			opts.Roundness = a.cfg.Edge.Roundness

			base := exportBase(s.Editor.Filename())
			var tasks []parallel.Task
			var paths []string
			for _, f := range list {
				path := filepath.Join(dir, exportName(base, f))
				paths = append(paths, path)
				tasks = append(tasks, exportTask(f, path, doc, opts))
			}

			ui.Banner("export " + base)
			results := parallel.Run(ctx, tasks, a.cfg.Export.Concurrency)
			if failed := parallel.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d exports failed: %w", len(failed), len(results), failed[0].Err)
			}

			if err := hooks.Run(ctx, a.cfg.Hooks, hooks.PostExport, s.Editor.Filename(), strings.Join(paths, ",")); err != nil {
				a.logger.Warn("post_export hook failed", zap.Error(err))
			}
			a.record("export", s, "formats="+strings.Join(list, ","))
			return nil
		}),
	}
	cmd.Flags().StringVar(&formats, "format", "", "Comma separated formats: json, dot, png (default from config)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	return cmd
}

func exportBase(document string) string {
	if document == "" {
		return "untitled"
	}
	name := filepath.Base(document)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// exportName keeps JSON exports from overwriting a document of the same
// base name.
func exportName(base, format string) string {
	if format == render.JSON {
		return base + ".export.json"
	}
	return base + "." + format
}

func exportTask(format, path string, doc scene.Document, opts render.Options) parallel.Task {
	return parallel.Task{
		Name: format,
		Fn: func(ctx context.Context) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			f, err := os.Create(path)
			if err != nil {
				return "", err
			}
			if err := render.Write(f, format, doc, opts); err != nil {
				f.Close()
				return "", err
			}
			if err := f.Close(); err != nil {
				return "", err
			}
			return path, nil
		},
	}
}
