package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/session"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) selectCmd() *cobra.Command {
	var nodes, edges []string
	var all, none bool
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Replace the selection",
		Example: `  nodeweave select --nodes 2,9
  nodeweave select --all
  nodeweave select --clear`,
		Args: cobra.NoArgs,
		RunE: a.edit("select", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			e := s.Editor
			switch {
			case all:
				e.SelectAll()
			case none:
				e.Selection.Clear()
			default:
				n, err := parseIDs(nodes...)
				if err != nil {
					return "", err
				}
				ed, err := parseIDs(edges...)
				if err != nil {
					return "", err
				}
				if err := e.Select(n, ed); err != nil {
					return "", err
				}
			}
			details := fmt.Sprintf("nodes=%v edges=%v", e.Selection.SelectedNodeIDs(), e.Selection.SelectedEdgeIDs())
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.StatusIcon(true), details)
			return details, nil
		}),
	}
	cmd.Flags().StringSliceVar(&nodes, "nodes", nil, "Node ids")
	cmd.Flags().StringSliceVar(&edges, "edges", nil, "Edge ids")
	cmd.Flags().BoolVar(&all, "all", false, "Select every node and edge")
	cmd.Flags().BoolVar(&none, "clear", false, "Select nothing")
	cmd.MarkFlagsMutuallyExclusive("all", "clear", "nodes")
	cmd.MarkFlagsMutuallyExclusive("all", "clear", "edges")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete",
		Aliases: []string{"del"},
		Short:   "Delete the selected nodes and edges",
		Args:    cobra.NoArgs,
		RunE: a.edit("delete", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			if !s.Editor.Delete() {
				fmt.Fprintln(cmd.OutOrStdout(), "  Nothing selected.")
			}
			return "", nil
		}),
	}
}

func (a *app) copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy the selection to the clipboard and print it",
		Args:  cobra.NoArgs,
		RunE: a.edit("copy", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			data, err := s.Editor.Copy()
			if err != nil {
				return "", err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return "", nil
		}),
	}
}

func (a *app) cutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cut",
		Short: "Copy the selection to the clipboard and delete it",
		Args:  cobra.NoArgs,
		RunE: a.edit("cut", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			data, err := s.Editor.Cut()
			if err != nil {
				return "", err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return "", nil
		}),
	}
}

func (a *app) pasteCmd() *cobra.Command {
	var at string
	var stdin bool
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Paste the clipboard centred on a point",
		Long: `Paste the clipboard centred on a point.

Without --at the last pointer position is used. With --stdin the payload is
read from standard input instead of the session clipboard.`,
		Args: cobra.NoArgs,
		RunE: a.edit("paste", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			var pos *geom.Point
			if at != "" {
				p, err := parsePoint(at)
				if err != nil {
					return "", err
				}
				pos = &p
			}
			before := len(s.Editor.Scene.Nodes())
			if stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return "", err
				}
				if err := s.Editor.PasteText(data, pos); err != nil {
					return "", err
				}
			} else if err := s.Editor.Paste(pos); err != nil {
				return "", err
			}
			added := len(s.Editor.Scene.Nodes()) - before
			fmt.Fprintf(cmd.OutOrStdout(), "  %s pasted %d nodes\n", ui.StatusIcon(true), added)
			return fmt.Sprintf("nodes=%d", added), nil
		}),
	}
	cmd.Flags().StringVar(&at, "at", "", "Centre point x,y")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "Read the payload from standard input")
	return cmd
}

func (a *app) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Step back one history stamp",
		Args:  cobra.NoArgs,
		RunE: a.edit("undo", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			return step(cmd, s, s.Editor.History.CanUndo(), s.Editor.Undo)
		}),
	}
}

func (a *app) redoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Step forward one history stamp",
		Args:  cobra.NoArgs,
		RunE: a.edit("redo", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			return step(cmd, s, s.Editor.History.CanRedo(), s.Editor.Redo)
		}),
	}
}

var errNothingToStep = errors.New("nothing to step to")

func step(cmd *cobra.Command, s *session.Session, can bool, fn func() error) (string, error) {
	if !can {
		return "", errNothingToStep
	}
	if err := fn(); err != nil {
		return "", err
	}
	cur, _ := s.Editor.History.Current()
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.StatusIcon(true), cur.Description)
	return cur.Description, nil
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the undo stack",
		Args:  cobra.NoArgs,
		RunE: a.view(func(cmd *cobra.Command, s *session.Session, args []string) error {
			h := s.Editor.History
			ui.Banner(fmt.Sprintf("history %d/%d", h.Pointer()+1, h.Len()))
			var rows [][]string
			for i, st := range h.Stamps() {
				mark := " "
				if i == h.Pointer() {
					mark = ">"
				}
				rows = append(rows, []string{
					mark,
					fmt.Sprint(i),
					st.Description,
					fmt.Sprint(len(st.Snapshot.Nodes)),
					fmt.Sprint(len(st.Snapshot.Edges)),
				})
			}
			ui.Table([]string{" ", "#", "DESCRIPTION", "NODES", "EDGES"}, rows)
			return nil
		}),
	}
}

func (a *app) cutlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cutline <x,y> <x,y>...",
		Short: "Cut every edge crossed by a polyline",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.edit("cutline", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			before := s.Editor.Scene.Stats().Edges
			var line []geom.Point
			for _, arg := range args {
				p, err := parsePoint(arg)
				if err != nil {
					return "", err
				}
				line = append(line, p)
			}
			s.Editor.CutLine(line)
			cut := before - s.Editor.Scene.Stats().Edges
			fmt.Fprintf(cmd.OutOrStdout(), "  %s cut %d edges\n", ui.StatusIcon(cut > 0), cut)
			return fmt.Sprintf("edges=%d", cut), nil
		}),
	}
}
