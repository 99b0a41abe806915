package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/config"
	"github.com/msalah0e/nodeweave/internal/logging"
	"github.com/msalah0e/nodeweave/internal/ui"
)

var version = "0.3.0"

// app is the state shared by every command of one invocation.
type app struct {
	file      string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "nodeweave",
		Short: "nodeweave · headless node graph editor",
		Long: ui.Brand.Sprint(ui.Mark+" nodeweave") + " · edit node graphs from the command line\n" +
			ui.Subtle.Sprint("Nodes, sockets and edges with undo history, clipboard and scripted pointer input"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetVersionTemplate("nodeweave {{ .Version }}\n")

	pf := root.PersistentFlags()
	pf.StringVarP(&a.file, "file", "f", "", "Document to edit (default $NODEWEAVE_FILE, or the scratch document)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: console or json")

	root.AddCommand(
		a.newCmd(),
		a.showCmd(),
		a.nodeCmd(),
		a.edgeCmd(),
		a.selectCmd(),
		a.deleteCmd(),
		a.copyCmd(),
		a.cutCmd(),
		a.pasteCmd(),
		a.undoCmd(),
		a.redoCmd(),
		a.historyCmd(),
		a.cutlineCmd(),
		a.playCmd(),
		a.saveCmd(),
		a.discardCmd(),
		a.exportCmd(),
		a.recentCmd(),
		a.actlogCmd(),
		a.configCmd(),
		completionCmd(),
	)
	return root
}

// setup loads .env and the config, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	cfg := config.Load()
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if a.file == "" {
		a.file = os.Getenv("NODEWEAVE_FILE")
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	ui.SetColor(cfg.UI.Color)
	ui.Out = cmd.OutOrStdout()
	a.logger.Debug("command starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("file", a.file))
	return nil
}

// Execute runs the root command.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Bad.Sprint("nodeweave:"), err)
	}
	return err
}
