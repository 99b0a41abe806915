package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msalah0e/nodeweave/internal/activity"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) actlogCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"activity"},
		Short:   "Activity log of editing commands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := activity.Read(count)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  No activity recorded yet.")
				return nil
			}
			ui.Banner("activity log")
			printEntries(entries)
			fmt.Fprintf(cmd.OutOrStdout(), "\n  Showing %d most recent entries\n", len(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of entries")

	cmd.AddCommand(
		actlogSearchCmd(),
		actlogClearCmd(),
		actlogExportCmd(),
	)
	return cmd
}

func printEntries(entries []activity.Entry) {
	var rows [][]string
	for _, e := range entries {
		session := e.Session
		if len(session) > 8 {
			session = session[:8]
		}
		rows = append(rows, []string{
			e.Timestamp.Format("Jan 02 15:04:05"),
			e.Action,
			truncateLog(e.Document, 30),
			session,
			truncateLog(e.Details, 40),
		})
	}
	ui.Table([]string{"TIME", "ACTION", "DOCUMENT", "SESSION", "DETAILS"}, rows)
}

func actlogSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search activity log entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := activity.Search(args[0], 50)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  No entries matching %q\n", args[0])
				return nil
			}
			ui.Banner("search results")
			printEntries(results)
			fmt.Fprintf(cmd.OutOrStdout(), "\n  %d results\n", len(results))
			return nil
		},
	}
}

func actlogClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := activity.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s Activity log cleared\n", ui.StatusIcon(true))
			return nil
		},
	}
}

func actlogExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export activity log as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := activity.Read(0)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func truncateLog(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
