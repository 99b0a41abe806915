package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msalah0e/nodeweave/internal/state"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) recentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently saved documents",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			recent := state.Recent()
			if len(recent) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  No documents saved yet.")
				return
			}
			ui.Banner("recent documents")
			var rows [][]string
			for _, d := range recent {
				rows = append(rows, []string{
					d.OpenedAt.Format("Jan 02 15:04"),
					d.Path,
					fmt.Sprint(d.Nodes),
					fmt.Sprint(d.Edges),
				})
			}
			ui.Table([]string{"SAVED", "PATH", "NODES", "EDGES"}, rows)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "forget <path>",
		Short: "Remove a document from the recent list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.Forget(args[0])
		},
	})
	return cmd
}
