package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/msalah0e/nodeweave/internal/config"
)

// Phases.
const (
	PreSave    = "pre_save"
	PostSave   = "post_save"
	PostExport = "post_export"
)

// Output receives the hook script's stdout and stderr.
var Output io.Writer = os.Stderr

// Run executes the hook script for the given phase, if configured. The
// script sees the document path and detail in NODEWEAVE_* variables.
func Run(ctx context.Context, h config.HooksConfig, phase, document, detail string) error {
	script := getHook(h, phase)
	if script == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	cmd.Env = append(os.Environ(),
		"NODEWEAVE_PHASE="+phase,
		"NODEWEAVE_DOCUMENT="+document,
		"NODEWEAVE_DETAIL="+detail,
	)
	cmd.Stdout = Output
	cmd.Stderr = Output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s hook: %w", phase, err)
	}
	return nil
}

func getHook(h config.HooksConfig, phase string) string {
	switch phase {
	case PreSave:
		return h.PreSave
	case PostSave:
		return h.PostSave
	case PostExport:
		return h.PostExport
	default:
		return ""
	}
}
