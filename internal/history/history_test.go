package history

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/scene"
)

func setup(t *testing.T, opts ...Option) (*scene.Scene, *scene.SelectionSet, *History) {
	t.Helper()
	sc := scene.New()
	sel := scene.NewSelectionSet()
	return sc, sel, New(sc, sel, opts...)
}

func TestStoreCapacity(t *testing.T) {
	sc, _, h := setup(t)
	for i := 0; i < 40; i++ {
		scene.NewNode(sc, fmt.Sprintf("n%d", i), nil, nil)
		h.Store(fmt.Sprintf("op %d", i), true)
	}
	assert.Equal(t, 32, h.Len())
	assert.Equal(t, 31, h.Pointer())
	stamps := h.Stamps()
	assert.Equal(t, "op 8", stamps[0].Description)
	assert.Equal(t, "op 39", stamps[31].Description)

	for h.CanUndo() {
		require.NoError(t, h.Undo())
	}
	assert.Equal(t, 0, h.Pointer())
	assert.Len(t, sc.Nodes(), 9)

	require.NoError(t, h.Undo())
	assert.Equal(t, 0, h.Pointer(), "undo past the first stamp is a no-op")
	assert.Len(t, sc.Nodes(), 9)
}

func TestUndoRedo(t *testing.T) {
	sc, _, h := setup(t)
	h.Store("empty", false)
	a := scene.NewNode(sc, "A", nil, []scene.SocketKind{0})
	h.Store("add A", true)
	b := scene.NewNode(sc, "B", []scene.SocketKind{0}, nil)
	_, err := scene.NewEdge(sc, a.Outputs()[0], b.Inputs()[0], scene.Bezier)
	require.NoError(t, err)
	h.Store("add B", true)
	full := sc.Serialize()

	require.NoError(t, h.Undo())
	assert.Len(t, sc.Nodes(), 1)
	assert.Empty(t, sc.Edges())
	require.NoError(t, h.Undo())
	assert.Empty(t, sc.Nodes())

	require.NoError(t, h.Redo())
	require.NoError(t, h.Redo())
	if diff := cmp.Diff(full, sc.Serialize()); diff != "" {
		t.Errorf("redo mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, h.Redo())
	assert.Equal(t, 2, h.Pointer())
}

func TestRedoTruncation(t *testing.T) {
	sc, _, h := setup(t)
	h.Store("start", false)
	scene.NewNode(sc, "future", nil, nil)
	h.Store("future", true)

	require.NoError(t, h.Undo())
	scene.NewNode(sc, "present", nil, nil)
	h.Store("present", true)

	assert.False(t, h.CanRedo())
	require.NoError(t, h.Redo())
	require.Len(t, sc.Nodes(), 1)
	assert.Equal(t, "present", sc.Nodes()[0].Title())
	for _, st := range h.Stamps() {
		assert.NotEqual(t, "future", st.Description)
	}
}

func TestStoreSetsModified(t *testing.T) {
	sc, _, h := setup(t)
	fired := 0
	sc.Observe(func() { fired++ })
	h.Store("opened", false)
	assert.False(t, sc.Modified())
	h.Store("edit", true)
	h.Store("edit", true)
	assert.True(t, sc.Modified())
	assert.Equal(t, 1, fired)
}

func TestRestoreSelection(t *testing.T) {
	sc, sel, h := setup(t)
	a := scene.NewNode(sc, "A", nil, nil)
	b := scene.NewNode(sc, "B", nil, nil)
	sel.SelectNode(a.ID())
	sel.SelectNode(b.ID())
	h.Store("two selected", true)

	sel.Clear()
	b.Remove()
	h.Store("removed B", true)

	require.NoError(t, h.Undo())
	assert.Equal(t, []ident.ID{a.ID(), b.ID()}, sel.SelectedNodeIDs())
	assert.NotSame(t, a, sc.Node(a.ID()), "restore rebuilds entities")

	require.NoError(t, h.Redo())
	assert.Empty(t, sel.SelectedNodeIDs())
}

func TestRestoreDropsVanishedSelection(t *testing.T) {
	sc, sel, h := setup(t)
	a := scene.NewNode(sc, "A", nil, nil)
	st := Stamp{
		Description: "hand made",
		Snapshot:    sc.Serialize(),
		Selection:   Selected{Nodes: []ident.ID{a.ID(), 999}},
	}
	require.NoError(t, h.Restore(st))
	assert.Equal(t, []ident.ID{a.ID()}, sel.SelectedNodeIDs())
}

func TestWithLimit(t *testing.T) {
	_, _, h := setup(t, WithLimit(3))
	for i := 0; i < 5; i++ {
		h.Store(fmt.Sprint(i), true)
	}
	assert.Equal(t, 3, h.Len())
	st, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "4", st.Description)
}

func TestLoad(t *testing.T) {
	sc, _, h := setup(t, WithLimit(2))
	var stamps []Stamp
	for i := 0; i < 3; i++ {
		scene.NewNode(sc, fmt.Sprint(i), nil, nil)
		stamps = append(stamps, Stamp{Description: fmt.Sprint(i), Snapshot: sc.Serialize()})
	}

	require.NoError(t, h.Load(stamps, 2))
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Pointer())

	assert.ErrorIs(t, h.Load(stamps, 0), ErrInvalidPointer)
	assert.ErrorIs(t, h.Load(stamps, 3), ErrInvalidPointer)
	assert.ErrorIs(t, h.Load(nil, 0), ErrInvalidPointer)
	require.NoError(t, h.Load(nil, -1))
	assert.Equal(t, -1, h.Pointer())
	_, ok := h.Current()
	assert.False(t, ok)
}
