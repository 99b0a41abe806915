package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/activity"
	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/scene"
	"github.com/msalah0e/nodeweave/internal/session"
)

// editFunc changes the session's editor and returns details for the
// activity log.
type editFunc func(cmd *cobra.Command, s *session.Session, args []string) (string, error)

func (a *app) open() (*session.Session, error) {
	return session.Open(a.file, a.cfg, a.logger)
}

// edit wraps fn so that the session is opened before and saved after it.
// Nothing is saved when fn fails.
func (a *app) edit(action string, fn editFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.open()
		if err != nil {
			return err
		}
		details, err := fn(cmd, s, args)
		if err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		a.record(action, s, details)
		return nil
	}
}

// view wraps a read-only fn.
func (a *app) view(fn func(cmd *cobra.Command, s *session.Session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.open()
		if err != nil {
			return err
		}
		return fn(cmd, s, args)
	}
}

func (a *app) record(action string, s *session.Session, details string) {
	if err := activity.Log(action, s.Editor.Filename(), details, s.ID); err != nil {
		a.logger.Warn("activity log not written", zap.Error(err))
	}
}

// ─── Argument parsing ───

func parseID(s string) (ident.ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ident.ID(n), nil
}

// parseIDs accepts ids as separate arguments, comma separated, or both.
func parseIDs(args ...string) ([]ident.ID, error) {
	var ids []ident.ID
	for _, arg := range args {
		for _, f := range strings.Split(arg, ",") {
			if strings.TrimSpace(f) == "" {
				continue
			}
			id, err := parseID(f)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parsePoint(s string) (geom.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geom.Point{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return geom.Point{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	return geom.Pt(x, y), nil
}

// parseKinds reads socket kinds such as "0,0,1". Empty means no sockets.
func parseKinds(s string) ([]scene.SocketKind, error) {
	var kinds []scene.SocketKind
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid socket kind %q", f)
		}
		kinds = append(kinds, scene.SocketKind(n))
	}
	return kinds, nil
}

func joinIDs[T interface{ ID() ident.ID }](items []T) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.ID().String()
	}
	return strings.Join(parts, ",")
}
