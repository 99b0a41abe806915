package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msalah0e/nodeweave/internal/script"
	"github.com/msalah0e/nodeweave/internal/ui"
)

func (a *app) playCmd() *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "play <script.toml>",
		Short: "Replay pointer and key events from a script",
		Long: `Replay pointer and key events from a TOML script of [[event]] tables.

  [[event]]
  type = "press"          # press move release delete focus blur cancel
  at = [-170, -228]       # select undo redo copy cut paste
  modifiers = ["ctrl"]    # ctrl starts a cut line on empty canvas

The session is saved even when an event fails, keeping the events that ran.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.Load(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}

			p := script.NewPlayer(s.Editor, a.logger.Named("script"))
			p.StopOnError = !keepGoing
			results, playErr := p.Play(sc)

			var rows [][]string
			for _, r := range results {
				errText := ""
				if r.Err != nil {
					errText = r.Err.Error()
				}
				rows = append(rows, []string{fmt.Sprint(r.Index), r.Type, ui.StatusIcon(r.OK), r.State.String(), errText})
			}
			ui.Table([]string{"#", "EVENT", "OK", "STATE", "ERROR"}, rows)

			if err := s.Save(); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			a.record("play", s, fmt.Sprintf("script=%s events=%d", args[0], len(results)))
			return playErr
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue after a failing event")
	return cmd
}
