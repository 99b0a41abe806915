package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/session"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) nodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, move, rename and remove nodes",
	}
	cmd.AddCommand(
		a.nodeAddCmd(),
		a.nodeMoveCmd(),
		a.nodeRenameCmd(),
		a.nodeRmCmd(),
	)
	return cmd
}

func (a *app) nodeAddCmd() *cobra.Command {
	var inputs, outputs, at string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a node",
		Example: `  nodeweave node add Mixer --in 0,0 --out 1 --at 200,-50
  nodeweave node add "Source" --out 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.edit("node add", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			in, err := parseKinds(inputs)
			if err != nil {
				return "", err
			}
			out, err := parseKinds(outputs)
			if err != nil {
				return "", err
			}
			var pos geom.Point
			if at != "" {
				if pos, err = parsePoint(at); err != nil {
					return "", err
				}
			}
			title := strings.Join(args, " ")
			n := s.Editor.AddNode(title, in, out, pos)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s node %s %q in=[%s] out=[%s]\n",
				ui.StatusIcon(true), n.ID(), title, joinIDs(n.Inputs()), joinIDs(n.Outputs()))
			return fmt.Sprintf("id=%s title=%s", n.ID(), title), nil
		}),
	}
	cmd.Flags().StringVar(&inputs, "in", "", "Input socket kinds, e.g. 0,0,1")
	cmd.Flags().StringVar(&outputs, "out", "", "Output socket kinds")
	cmd.Flags().StringVar(&at, "at", "", "Position x,y (default 0,0)")
	return cmd
}

func (a *app) nodeMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x,y>",
		Short: "Place a node at a position",
		Args:  cobra.ExactArgs(2),
		RunE: a.edit("node move", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			id, err := parseID(args[0])
			if err != nil {
				return "", err
			}
			pos, err := parsePoint(args[1])
			if err != nil {
				return "", err
			}
			if err := s.Editor.MoveNode(id, pos); err != nil {
				return "", err
			}
			return fmt.Sprintf("id=%s pos=%s", id, pos), nil
		}),
	}
}

func (a *app) nodeRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change a node's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.edit("node rename", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			id, err := parseID(args[0])
			if err != nil {
				return "", err
			}
			title := strings.Join(args[1:], " ")
			if err := s.Editor.RenameNode(id, title); err != nil {
				return "", err
			}
			return fmt.Sprintf("id=%s title=%s", id, title), nil
		}),
	}
}

func (a *app) nodeRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove nodes and their edges",
		Args:    cobra.MinimumNArgs(1),
		RunE: a.edit("node rm", func(cmd *cobra.Command, s *session.Session, args []string) (string, error) {
			ids, err := parseIDs(args...)
			if err != nil {
				return "", err
			}
			if err := s.Editor.Select(ids, nil); err != nil {
				return "", err
			}
			s.Editor.Delete()
			return "ids=" + strings.Join(args, ","), nil
		}),
	}
}
