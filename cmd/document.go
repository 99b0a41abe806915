package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/editor"
	"github.com/msalah0e/nodeweave/internal/hooks"
	"github.com/msalah0e/nodeweave/internal/scene"
	"github.com/msalah0e/nodeweave/internal/session"
	"github.com/msalah0e/nodeweave/internal/state"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) newCmd() *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new document, dropping the current session",
		Args:  cobra.NoArgs,
		RunE: a.edit("new", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			s.Editor.NewDocument(demo)
			s.Editor.SetFilename(a.file)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.StatusIcon(true), s.Editor.Title())
			if demo {
				return "demo", nil
			}
			return "", nil
		}),
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "Seed the sample graph")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"ls"},
		Short:   "Show the document's nodes, edges and selection",
		Args:    cobra.NoArgs,
		RunE: a.view(func(cmd *cobra.Command, s *session.Session, args []string) error {
			e := s.Editor
			if asJSON {
				data, err := scene.EncodeDocument(e.Scene.Serialize())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			showEditor(e)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the document JSON")
	return cmd
}

func showEditor(e *editor.Editor) {
	ui.Banner(e.Title())

	st := e.Scene.Stats()
	ui.KV(9, "nodes", fmt.Sprint(st.Nodes))
	ui.KV(9, "edges", fmt.Sprintf("%d (%d sockets connected)", st.Edges, st.Connected))
	ui.KV(9, "history", fmt.Sprintf("%d/%d", e.History.Pointer()+1, e.History.Len()))
	ui.KV(9, "mode", e.Controller.State().String())
	ui.KV(9, "pointer", e.Controller.LastPointer().String())

	if nodes := e.Scene.Nodes(); len(nodes) > 0 {
		fmt.Fprintln(ui.Out)
		var rows [][]string
		for _, n := range nodes {
			mark := " "
			if e.Selection.IsNodeSelected(n.ID()) {
				mark = "*"
			}
			rows = append(rows, []string{
				mark + n.ID().String(),
				n.Title(),
				n.Pos().String(),
				joinIDs(n.Inputs()),
				joinIDs(n.Outputs()),
			})
		}
		ui.Table([]string{" ID", "TITLE", "POS", "IN", "OUT"}, rows)
	}

	if edges := e.Scene.Edges(); len(edges) > 0 {
		fmt.Fprintln(ui.Out)
		var rows [][]string
		for _, edge := range edges {
			if edge.IsDangling() {
				continue
			}
			mark := " "
			if e.Selection.IsEdgeSelected(edge.ID()) {
				mark = "*"
			}
			rows = append(rows, []string{
				mark + edge.ID().String(),
				edge.Kind().String(),
				edge.Start().ID().String(),
				edge.End().ID().String(),
			})
		}
		ui.Table([]string{" ID", "KIND", "START", "END"}, rows)
	}
}

func (a *app) saveCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Write the document to disk",
		Args:  cobra.NoArgs,
		RunE: a.edit("save", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			e := s.Editor
			path := e.Filename()
			if as != "" {
				path = as
			}
			if path == "" {
				return "", fmt.Errorf("%w: use --as or --file", editor.ErrNoFilename)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := hooks.Run(ctx, a.cfg.Hooks, hooks.PreSave, path, ""); err != nil {
				return "", err
			}
			if err := e.SaveTo(path); err != nil {
				return "", err
			}
			if err := s.MoveTo(path); err != nil {
				return "", err
			}
			st := e.Scene.Stats()
			if err := state.Touch(path, st.Nodes, st.Edges); err != nil {
				a.logger.Warn("recent list not updated", zap.Error(err))
			}
			if err := hooks.Run(ctx, a.cfg.Hooks, hooks.PostSave, path, fmt.Sprintf("%d nodes", st.Nodes)); err != nil {
				a.logger.Warn("post_save hook failed", zap.Error(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s saved %s\n", ui.StatusIcon(true), path)
			return path, nil
		}),
	}
	cmd.Flags().StringVar(&as, "as", "", "Save under a new path")
	return cmd
}

func (a *app) discardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop the session, forgetting unsaved changes and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil && !errors.Is(err, session.ErrCorrupt) {
				return err
			}
			path := session.PathFor(a.file)
			if s != nil {
				path = s.Path
				a.record("discard", s, "")
			}
			if err := (&session.Session{Path: path}).Discard(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s session %s removed\n", ui.StatusIcon(true), filepath.Base(path))
			return nil
		},
	}
}
