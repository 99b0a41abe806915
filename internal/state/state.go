// Package state remembers recently opened documents across runs.
package state

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/msalah0e/nodeweave/internal/config"
)

// MaxRecent is how many documents the recent list keeps.
const MaxRecent = 10

// RecentDocument tracks a document the editor has opened or saved.
type RecentDocument struct {
	Path     string    `toml:"path"`
	OpenedAt time.Time `toml:"opened_at"`
	Nodes    int       `toml:"nodes"`
	Edges    int       `toml:"edges"`
}

// State is everything nodeweave remembers between runs.
type State struct {
	Recent []RecentDocument `toml:"recent"`
}

func statePath() string {
	return filepath.Join(config.ConfigDir(), "state.toml")
}

// Load reads the state file, returning empty state if it doesn't exist.
func Load() *State {
	s := &State{}
	data, err := os.ReadFile(statePath())
	if err != nil {
		return s
	}
	_ = toml.Unmarshal(data, s)
	return s
}

// Save writes the state file to disk.
func Save(s *State) error {
	path := statePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}

// Touch moves path to the front of the recent list with fresh counts.
func Touch(path string, nodes, edges int) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s := Load()
	list := []RecentDocument{{Path: path, OpenedAt: time.Now(), Nodes: nodes, Edges: edges}}
	for _, d := range s.Recent {
		if d.Path != path {
			list = append(list, d)
		}
	}
	if len(list) > MaxRecent {
		list = list[:MaxRecent]
	}
	s.Recent = list
	return Save(s)
}

// Forget drops path from the recent list.
func Forget(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s := Load()
	kept := s.Recent[:0]
	for _, d := range s.Recent {
		if d.Path != path {
			kept = append(kept, d)
		}
	}
	s.Recent = kept
	return Save(s)
}

// Recent returns the recent documents, most recent first.
func Recent() []RecentDocument {
	return Load().Recent
}
