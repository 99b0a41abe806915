package state

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestState(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	// Empty state
	if got := Recent(); len(got) != 0 {
		t.Errorf("expected no recent documents, got %d", len(got))
	}

	a := filepath.Join(tmpDir, "a.json")
	b := filepath.Join(tmpDir, "b.json")
	if err := Touch(a, 3, 2); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := Touch(b, 1, 0); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	recent := Recent()
	if len(recent) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(recent))
	}
	if recent[0].Path != b {
		t.Errorf("expected %q first, got %q", b, recent[0].Path)
	}
	if recent[1].Nodes != 3 || recent[1].Edges != 2 {
		t.Errorf("unexpected counts %+v", recent[1])
	}
	if recent[0].OpenedAt.IsZero() {
		t.Error("OpenedAt should be set")
	}

	// Touching again moves to front without duplicating
	Touch(a, 4, 2)
	recent = Recent()
	if len(recent) != 2 || recent[0].Path != a || recent[0].Nodes != 4 {
		t.Errorf("expected updated %q first, got %+v", a, recent)
	}

	if err := Forget(a); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	recent = Recent()
	if len(recent) != 1 || recent[0].Path != b {
		t.Errorf("expected only %q, got %+v", b, recent)
	}
}

func TestState_Cap(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	for i := 0; i < MaxRecent+3; i++ {
		Touch(filepath.Join(tmpDir, fmt.Sprintf("doc%d.json", i)), i, 0)
	}
	recent := Recent()
	if len(recent) != MaxRecent {
		t.Fatalf("expected %d documents, got %d", MaxRecent, len(recent))
	}
	if recent[0].Nodes != MaxRecent+2 {
		t.Errorf("expected newest first, got %+v", recent[0])
	}
}

func TestState_DefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	path := statePath()
	home, _ := os.UserHomeDir()
	if path != filepath.Join(home, ".config", "nodeweave", "state.toml") {
		t.Errorf("unexpected path: %q", path)
	}
}
