// Package session persists an editor between command invocations: the
// document, its undo stack, the selection, the clipboard and the last
// pointer position are kept in a JSON file next to the document.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/config"
	"github.com/msalah0e/nodeweave/internal/editor"
	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/history"
	"github.com/msalah0e/nodeweave/internal/scene"
)

// Ext is appended to the document path to name its session file.
const Ext = ".nwsession"

// ErrCorrupt wraps any failure to decode or restore a session file.
var ErrCorrupt = errors.New("corrupt session file")

// State is the on-disk form of a session.
type State struct {
	ID          string           `json:"id"`
	Document    string           `json:"document,omitempty"`
	Snapshot    scene.Document   `json:"snapshot"`
	Modified    bool             `json:"modified"`
	Stamps      []history.Stamp  `json:"history"`
	Pointer     int              `json:"history_pointer"`
	Selection   history.Selected `json:"selected"`
	Clipboard   string           `json:"clipboard,omitempty"`
	LastPointer geom.Point       `json:"last_pointer"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Session is an editor bound to its session file.
type Session struct {
	ID     string
	Path   string
	Editor *editor.Editor

	logger *zap.Logger
}

// PathFor names the session file of document. Untitled documents share a
// scratch session in the config directory.
func PathFor(document string) string {
	if document == "" {
		return filepath.Join(config.ConfigDir(), "scratch"+Ext)
	}
	return document + Ext
}

// Open resumes the session of document. Without a session file the document
// is loaded from disk, or an empty one is started when it does not exist yet.
func Open(document string, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		Path:   PathFor(document),
		Editor: editor.New(cfg, logger),
		logger: logger.Named("session"),
	}

	data, err := os.ReadFile(s.Path)
	switch {
	case err == nil:
		if err := s.restore(data); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
		s.logger.Debug("session resumed", zap.String("id", s.ID), zap.String("path", s.Path))
		return s, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	s.ID = uuid.NewString()
	if document != "" {
		if _, err := os.Stat(document); err == nil {
			if err := s.Editor.Load(document); err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	s.Editor.NewDocument(false)
	s.Editor.SetFilename(document)
	s.logger.Debug("session started", zap.String("id", s.ID), zap.String("document", document))
	return s, nil
}

func (s *Session) restore(data []byte) error {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if st.ID == "" {
		return fmt.Errorf("%w: missing id", ErrCorrupt)
	}
	e := s.Editor
	for _, stamp := range st.Stamps {
		e.Scene.Reserve(stamp.Snapshot)
	}
	if err := e.Scene.Deserialize(st.Snapshot, true); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := e.History.Load(st.Stamps, st.Pointer); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	e.Selection.SetSelected(st.Selection.Nodes, st.Selection.Edges)
	e.Selection.Prune(e.Scene)
	e.Scene.SetModified(st.Modified)
	e.SetFilename(st.Document)
	if st.Clipboard != "" {
		e.SetClipboardText([]byte(st.Clipboard))
	}
	e.Controller.SetLastPointer(st.LastPointer)
	s.ID = st.ID
	return nil
}

// State captures the session as it would be saved.
func (s *Session) State() State {
	e := s.Editor
	return State{
		ID:       s.ID,
		Document: e.Filename(),
		Snapshot: e.Scene.Serialize(),
		Modified: e.Scene.Modified(),
		Stamps:   e.History.Stamps(),
		Pointer:  e.History.Pointer(),
		Selection: history.Selected{
			Nodes: e.Selection.SelectedNodeIDs(),
			Edges: e.Selection.SelectedEdgeIDs(),
		},
		Clipboard:   string(e.ClipboardText()),
		LastPointer: e.Controller.LastPointer(),
		UpdatedAt:   time.Now(),
	}
}

// Save writes the session file.
func (s *Session) Save() error {
	data, err := json.MarshalIndent(s.State(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return err
	}
	s.logger.Debug("session saved", zap.String("path", s.Path), zap.Int("stamps", s.Editor.History.Len()))
	return nil
}

// MoveTo follows the document to a new path, as after "save as". The old
// session file is removed; call Save to write the new one.
func (s *Session) MoveTo(document string) error {
	next := PathFor(document)
	if next == s.Path {
		return nil
	}
	if err := s.Discard(); err != nil {
		return err
	}
	s.Path = next
	s.Editor.SetFilename(document)
	return nil
}

// Discard removes the session file. A missing file is not an error.
func (s *Session) Discard() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
