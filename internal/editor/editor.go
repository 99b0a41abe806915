// Package editor wires a scene to its selection, history, clipboard and
// interaction controller, and adds the document-level operations: new,
// open, save and the named edits the command line exposes.
package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/clipboard"
	"github.com/msalah0e/nodeweave/internal/config"
	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/history"
	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/interact"
	"github.com/msalah0e/nodeweave/internal/scene"
)

const (
	DocumentOpened = "Document opened"
	NodeAdded      = "Node: added"
	NodeRenamed    = "Node: renamed"
	EdgeKindSet    = "Edge: kind changed"
)

var (
	ErrNoFilename     = errors.New("document has no file name")
	ErrNodeNotFound   = errors.New("node not found")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrSocketNotFound = errors.New("socket not found")
	ErrNotConnected   = errors.New("edge was not connected")
	ErrEmptyClipboard = errors.New("clipboard is empty")
)

// Editor is one open document.
type Editor struct {
	Scene      *scene.Scene
	Selection  *scene.SelectionSet
	History    *history.History
	Clipboard  *clipboard.Clipboard
	Controller *interact.Controller

	filename string
	clip     []byte
	logger   *zap.Logger
}

// New builds an empty editor from cfg.
func New(cfg *config.Config, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	sc := scene.New(
		scene.WithLogger(logger.Named("scene")),
		scene.WithMetrics(cfg.Node.Metrics()),
		scene.WithExtent(cfg.Canvas.Width, cfg.Canvas.Height),
		scene.WithRoundness(cfg.Edge.Roundness),
	)
	sel := scene.NewSelectionSet()
	h := history.New(sc, sel,
		history.WithLimit(cfg.Editor.HistoryLimit),
		history.WithLogger(logger.Named("history")))
	clip := clipboard.New(sc, sel, h, clipboard.WithLogger(logger.Named("clipboard")))
	ctl := interact.New(sc, sel, h,
		interact.WithLogger(logger.Named("interact")),
		interact.WithDragThreshold(cfg.Editor.DragThreshold),
		interact.WithEdgeKind(cfg.Edge.EdgeKind()))
	e := &Editor{
		Scene:      sc,
		Selection:  sel,
		History:    h,
		Clipboard:  clip,
		Controller: ctl,
		logger:     logger,
	}
	sc.Observe(func() { logger.Debug("document modified", zap.String("title", e.Title())) })
	return e
}

// ─── Document ───

func (e *Editor) Filename() string { return e.filename }

func (e *Editor) SetFilename(name string) { e.filename = name }

// Title is the window-style title: the file base name, or New, with a
// trailing star when there are unsaved changes.
func (e *Editor) Title() string {
	title := "nodeweave - "
	if e.filename == "" {
		title += "New"
	} else {
		title += filepath.Base(e.filename)
	}
	if e.Scene.Modified() {
		title += "*"
	}
	return title
}

func (e *Editor) reset() {
	e.Controller.Cancel()
	e.Controller.BlurContent()
	e.Scene.Clear()
	e.Selection.Clear()
	e.History.Clear()
}

// NewDocument discards the scene and history. With demo it seeds the
// sample graph.
func (e *Editor) NewDocument(demo bool) {
	e.reset()
	e.filename = ""
	if demo {
		Seed(e.Scene)
	}
	e.History.Store(DocumentOpened, false)
}

// Load opens the document at path. On error the editor is unchanged.
func (e *Editor) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := scene.DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if err := scene.ValidateDocument(doc); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	e.reset()
	if err := e.Scene.Deserialize(doc, true); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	e.filename = path
	e.History.Store(DocumentOpened, false)
	e.logger.Info("document loaded", zap.String("path", path), zap.Int("nodes", len(doc.Nodes)))
	return nil
}

// SaveTo writes the document to path and marks it unmodified.
func (e *Editor) SaveTo(path string) error {
	data, err := scene.EncodeDocument(e.Scene.Serialize())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	e.filename = path
	e.Scene.SetModified(false)
	e.logger.Info("document saved", zap.String("path", path))
	return nil
}

// Save writes to the current file name.
func (e *Editor) Save() error {
	if e.filename == "" {
		return ErrNoFilename
	}
	return e.SaveTo(e.filename)
}

// ─── Named edits ───

// AddNode creates a node at pos and records it.
func (e *Editor) AddNode(title string, inputs, outputs []scene.SocketKind, pos geom.Point) *scene.Node {
	n := scene.NewNode(e.Scene, title, inputs, outputs)
	n.SetPos(pos.X, pos.Y)
	e.History.Store(NodeAdded, true)
	return n
}

func (e *Editor) node(id ident.ID) (*scene.Node, error) {
	n := e.Scene.Node(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// MoveNode places a node at pos.
func (e *Editor) MoveNode(id ident.ID, pos geom.Point) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	n.SetPos(pos.X, pos.Y)
	e.History.Store(interact.NodeMoved, true)
	return nil
}

func (e *Editor) RenameNode(id ident.ID, title string) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	n.SetTitle(title)
	e.History.Store(NodeRenamed, true)
	return nil
}

// Connect links two sockets with the same rules as dragging between them.
func (e *Editor) Connect(start, end ident.ID, kind scene.EdgeKind) (*scene.Edge, error) {
	s, t := e.Scene.Socket(start), e.Scene.Socket(end)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrSocketNotFound, start)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrSocketNotFound, end)
	}
	edge := e.Controller.Connect(s, t, kind)
	if edge == nil {
		return nil, ErrNotConnected
	}
	return edge, nil
}

func (e *Editor) SetEdgeKind(id ident.ID, kind scene.EdgeKind) error {
	edge := e.Scene.Edge(id)
	if edge == nil {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	edge.SetKind(kind)
	e.History.Store(EdgeKindSet, true)
	return nil
}

// Select replaces the selection. Unknown ids are an error.
func (e *Editor) Select(nodes, edges []ident.ID) error {
	for _, id := range nodes {
		if e.Scene.Node(id) == nil {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
	}
	for _, id := range edges {
		if e.Scene.Edge(id) == nil {
			return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
		}
	}
	e.Selection.SetSelected(nodes, edges)
	return nil
}

// SelectAll selects every node and bound edge.
func (e *Editor) SelectAll() {
	var nodes, edges []ident.ID
	for _, n := range e.Scene.Nodes() {
		nodes = append(nodes, n.ID())
	}
	for _, edge := range e.Scene.Edges() {
		if !edge.IsDangling() {
			edges = append(edges, edge.ID())
		}
	}
	e.Selection.SetSelected(nodes, edges)
}

func (e *Editor) Delete() bool { return e.Controller.Delete() }

func (e *Editor) CutLine(points []geom.Point) bool { return e.Controller.CutAlong(points) }

// Undo steps back one stamp. A drag in progress is abandoned first.
// Restoring clears the scene, so the document is marked modified again
// afterwards.
func (e *Editor) Undo() error {
	if !e.History.CanUndo() {
		return nil
	}
	e.Controller.Cancel()
	if err := e.History.Undo(); err != nil {
		return err
	}
	e.Scene.SetModified(true)
	return nil
}

func (e *Editor) Redo() error {
	if !e.History.CanRedo() {
		return nil
	}
	e.Controller.Cancel()
	if err := e.History.Redo(); err != nil {
		return err
	}
	e.Scene.SetModified(true)
	return nil
}

// ─── Clipboard ───

// ClipboardText is the text held by the editor's clipboard.
func (e *Editor) ClipboardText() []byte { return e.clip }

func (e *Editor) SetClipboardText(data []byte) { e.clip = data }

// Copy puts the selection on the clipboard.
func (e *Editor) Copy() ([]byte, error) {
	data, err := clipboard.Encode(e.Clipboard.Copy())
	if err != nil {
		return nil, err
	}
	e.clip = data
	return data, nil
}

// Cut puts the selection on the clipboard and deletes it.
func (e *Editor) Cut() ([]byte, error) {
	e.Controller.Cancel()
	data, err := clipboard.Encode(e.Clipboard.Cut())
	if err != nil {
		return nil, err
	}
	e.clip = data
	return data, nil
}

// Paste pastes the clipboard text centred on at, or on the last pointer
// position when at is nil.
func (e *Editor) Paste(at *geom.Point) error {
	if len(e.clip) == 0 {
		return ErrEmptyClipboard
	}
	return e.PasteText(e.clip, at)
}

// PasteText pastes data without touching the clipboard.
func (e *Editor) PasteText(data []byte, at *geom.Point) error {
	pos := e.Controller.LastPointer()
	if at != nil {
		pos = *at
	}
	e.Controller.Cancel()
	return e.Clipboard.PasteText(data, pos)
}
