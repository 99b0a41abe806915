package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msalah0e/nodeweave/internal/scene"
	"github.com/msalah0e/nodeweave/internal/session"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) edgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Connect sockets and manage edges",
	}
	cmd.AddCommand(
		a.edgeConnectCmd(),
		a.edgeRmCmd(),
		a.edgeKindCmd(),
	)
	return cmd
}

func (a *app) edgeConnectCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "connect <start-socket> <end-socket>",
		Short: "Connect two sockets, as if dragging from start to end",
		Long: `Connect two sockets, as if dragging from start to end.

A single-edge end socket loses its current edge. Dragging from a bound
single-edge socket moves that socket's edge instead of adding one.`,
		Args: cobra.ExactArgs(2),
		RunE: a.edit("edge connect", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			start, err := parseID(args[0])
			if err != nil {
				return "", err
			}
			end, err := parseID(args[1])
			if err != nil {
				return "", err
			}
			k := a.cfg.Edge.EdgeKind()
			if kind != "" {
				if k, err = scene.ParseEdgeKind(kind); err != nil {
					return "", err
				}
			}
			edge, err := s.Editor.Connect(start, end, k)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s edge %s %s -> %s (%s)\n", ui.StatusIcon(true), edge.ID(), start, end, edge.Kind())
			return fmt.Sprintf("id=%s start=%s end=%s", edge.ID(), start, end), nil
		}),
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Edge kind: bezier or direct (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("kind", edgeKindCompletion)
	return cmd
}

func (a *app) edgeRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove edges",
		Args:    cobra.MinimumNArgs(1),
		RunE: a.edit("edge rm", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			ids, err := parseIDs(args...)
			if err != nil {
				return "", err
			}
			if err := s.Editor.Select(nil, ids); err != nil {
				return "", err
			}
			s.Editor.Delete()
			return "ids=" + strings.Join(args, ","), nil
		}),
	}
}

func (a *app) edgeKindCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "kind <id> <bezier|direct>",
		Short:             "Change how an edge is drawn",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: edgeKindCompletion,
		RunE: a.edit("edge kind", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			id, err := parseID(args[0])
			if err != nil {
				return "", err
			}
			k, err := scene.ParseEdgeKind(args[1])
			if err != nil {
				return "", err
			}
			if err := s.Editor.SetEdgeKind(id, k); err != nil {
				return "", err
			}
			return fmt.Sprintf("id=%s kind=%s", id, k), nil
		}),
	}
}
