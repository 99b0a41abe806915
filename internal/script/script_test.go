package script

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msalah0e/nodeweave/internal/config"
	"github.com/msalah0e/nodeweave/internal/editor"
	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/scene"
)

// newEditor places A at the origin with one output at (180, 38) and B at
// (300, 0) with one input at (300, 226).
func newEditor(t *testing.T) (*editor.Editor, *scene.Node, *scene.Node) {
	t.Helper()
	e := editor.New(config.Default(), nil)
	e.NewDocument(false)
	a := e.AddNode("A", nil, []scene.SocketKind{0}, geom.Pt(0, 0))
	b := e.AddNode("B", []scene.SocketKind{0}, nil, geom.Pt(300, 0))
	return e, a, b
}

const dragAndCut = `
[[event]]
type = "press"
at = [180, 38]

[[event]]
type = "move"
at = [250, 100]

[[event]]
type = "release"
at = [300, 226]

[[event]]
type = "press"
at = [240, -100]
modifiers = ["ctrl"]

[[event]]
type = "move"
at = [240, -100]

[[event]]
type = "move"
at = [240, 400]

[[event]]
type = "release"
at = [240, 400]

[[event]]
type = "undo"
`

func TestPlayDragAndCut(t *testing.T) {
	e, _, _ := newEditor(t)
	s, err := Parse([]byte(dragAndCut))
	require.NoError(t, err)
	require.Len(t, s.Events, 8)

	results, err := NewPlayer(e, nil).Play(s)
	require.NoError(t, err)
	require.Len(t, results, 8)

	ok := make([]bool, len(results))
	for i, r := range results {
		ok[i] = r.OK
	}
	assert.Equal(t, []bool{true, true, true, true, true, true, true, true}, ok)
	assert.Equal(t, scene.ModeEdgeDrag, results[1].State)
	assert.Equal(t, scene.ModeEdgeCut, results[5].State)
	assert.Equal(t, scene.ModeIdle, results[7].State)

	// the undo brings back the edge the cut removed
	assert.Len(t, e.Scene.Edges(), 1)
}

func TestPlaySelectCopyPaste(t *testing.T) {
	e, a, b := newEditor(t)
	src := fmt.Sprintf(`
[[event]]
type = "select"
nodes = [%d, %d]

[[event]]
type = "copy"

[[event]]
type = "paste"
at = [1000, 1000]

[[event]]
type = "delete"
`, a.ID(), b.ID())

	s, err := Parse([]byte(src))
	require.NoError(t, err)
	results, err := NewPlayer(e, nil).Play(s)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.OK, r.Type)
	}
	// delete removed the originals, the pasted copies remain
	nodes := e.Scene.Nodes()
	require.Len(t, nodes, 2)
	assert.NotEqual(t, a.ID(), nodes[0].ID())
	assert.Greater(t, nodes[0].Pos().X, 500.0)
}

func TestPlayFocusBlocksDelete(t *testing.T) {
	e, a, _ := newEditor(t)
	src := fmt.Sprintf(`
[[event]]
type = "select"
nodes = [%d]

[[event]]
type = "focus"

[[event]]
type = "delete"

[[event]]
type = "blur"

[[event]]
type = "delete"
`, a.ID())
	s, err := Parse([]byte(src))
	require.NoError(t, err)
	results, err := NewPlayer(e, nil).Play(s)
	require.NoError(t, err)

	assert.Equal(t, scene.ModeNodeEdit, results[1].State)
	assert.False(t, results[2].OK)
	assert.True(t, results[4].OK)
	assert.Len(t, e.Scene.Nodes(), 1)
}

func TestPlayStopsOnError(t *testing.T) {
	src := `
[[event]]
type = "select"
nodes = [9999]

[[event]]
type = "undo"
`
	s, err := Parse([]byte(src))
	require.NoError(t, err)

	e, _, _ := newEditor(t)
	results, err := NewPlayer(e, nil).Play(s)
	assert.ErrorIs(t, err, editor.ErrNodeNotFound)
	assert.Len(t, results, 1)

	e, _, _ = newEditor(t)
	p := NewPlayer(e, nil)
	p.StopOnError = false
	results, err = p.Play(s)
	assert.Error(t, err)
	assert.Len(t, results, 2)
	assert.True(t, results[1].OK)
	assert.Len(t, e.Scene.Nodes(), 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not toml", `[[event]`},
		{"unknown type", "[[event]]\ntype = \"jump\""},
		{"press without point", "[[event]]\ntype = \"press\""},
		{"bad point", "[[event]]\ntype = \"move\"\nat = [1, 2, 3]"},
		{"bad modifier", "[[event]]\ntype = \"press\"\nat = [0, 0]\nmodifiers = [\"alt\"]"},
		{"unknown key", "[[event]]\ntype = \"undo\"\ncount = 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.ErrorIs(t, err, ErrInvalidScript)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play.toml")
	require.NoError(t, os.WriteFile(path, []byte(dragAndCut), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Press, s.Events[0].Type)
	assert.Equal(t, []float64{180, 38}, s.Events[0].At)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
