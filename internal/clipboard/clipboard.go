// Package clipboard copies a selected subgraph to a portable document and
// pastes it back with fresh ids around a target point.
package clipboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/history"
	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/scene"
)

const (
	CutDescription   = "Cutting items into clipboard"
	PasteDescription = "Pasting items from clipboard"
)

// ErrInvalidPayload is returned when clipboard text cannot be parsed or
// has no nodes.
var ErrInvalidPayload = errors.New("invalid clipboard payload")

// Document holds serialized nodes and the edges running between them.
type Document struct {
	Nodes []scene.NodeDoc `json:"nodes"`
	Edges []scene.EdgeDoc `json:"edges"`
}

// UnmarshalJSON requires a nodes list. A missing edges list reads as empty.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, ok := raw["nodes"]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return errors.New("payload does not contain nodes")
	}
	type plain Document
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	if d.Edges == nil {
		d.Edges = []scene.EdgeDoc{}
	}
	return nil
}

// Encode renders doc as indented JSON text.
func Encode(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding clipboard: %w", err)
	}
	return data, nil
}

// Decode parses clipboard text.
func Decode(data []byte) (Document, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return Document{}, fmt.Errorf("%w: null", ErrInvalidPayload)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return doc, nil
}

// Clipboard works on one scene and records cut and paste in its history.
type Clipboard struct {
	scene     *scene.Scene
	selection scene.Selection
	recorder  history.Recorder
	logger    *zap.Logger
}

type Option func(*Clipboard)

func WithLogger(l *zap.Logger) Option {
	return func(c *Clipboard) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(sc *scene.Scene, sel scene.Selection, rec history.Recorder, opts ...Option) *Clipboard {
	c := &Clipboard{
		scene:     sc,
		selection: sel,
		recorder:  rec,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy serializes the selected nodes and those selected edges whose both
// sockets belong to selected nodes.
func (c *Clipboard) Copy() Document {
	doc := Document{Nodes: []scene.NodeDoc{}, Edges: []scene.EdgeDoc{}}
	sockets := make(map[ident.ID]bool)
	for _, id := range c.selection.SelectedNodeIDs() {
		n := c.scene.Node(id)
		if n == nil {
			continue
		}
		doc.Nodes = append(doc.Nodes, n.Serialize())
		for _, sock := range n.Sockets() {
			sockets[sock.ID()] = true
		}
	}
	for _, id := range c.selection.SelectedEdgeIDs() {
		e := c.scene.Edge(id)
		if e == nil || e.IsDangling() {
			continue
		}
		if sockets[e.Start().ID()] && sockets[e.End().ID()] {
			doc.Edges = append(doc.Edges, e.Serialize())
		}
	}
	return doc
}

// Cut copies the selection, deletes it from the scene and records the
// change.
func (c *Clipboard) Cut() Document {
	doc := c.Copy()
	removed := c.scene.RemoveItems(c.selection.SelectedNodeIDs(), c.selection.SelectedEdgeIDs())
	c.selection.SetSelected(nil, nil)
	c.logger.Debug("cut", zap.Int("nodes", len(doc.Nodes)), zap.Int("edges", len(doc.Edges)), zap.Int("removed", removed))
	c.recorder.Store(CutDescription, true)
	return doc
}

// Center is the midpoint of the box around the node positions in doc. The
// box always contains the origin.
func Center(doc Document) geom.Point {
	var minX, minY, maxX, maxY float64
	for _, n := range doc.Nodes {
		if n.PosX < minX {
			minX = n.PosX
		}
		if n.PosX > maxX {
			maxX = n.PosX
		}
		if n.PosY < minY {
			minY = n.PosY
		}
		if n.PosY > maxY {
			maxY = n.PosY
		}
	}
	return geom.Pt((minX+maxX)/2, (minY+maxY)/2)
}

// Paste instantiates doc with fresh ids, shifted so that its centre lands
// on at, and records the change. Nothing is created when doc is invalid.
func (c *Clipboard) Paste(doc Document, at geom.Point) error {
	if doc.Nodes == nil {
		return fmt.Errorf("%w: no nodes", ErrInvalidPayload)
	}
	if err := scene.Validate(doc.Nodes, doc.Edges); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	offset := at.Sub(Center(doc))
	tr := scene.NewTranslation()
	for _, nd := range doc.Nodes {
		n := c.scene.InstantiateNode(nd, tr, false)
		n.MoveBy(offset)
	}
	for _, ed := range doc.Edges {
		if _, err := c.scene.InstantiateEdge(ed, tr, false); err != nil {
			// unreachable after Validate
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	c.logger.Debug("pasted",
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("edges", len(doc.Edges)),
		zap.Stringer("offset", offset))
	c.recorder.Store(PasteDescription, true)
	return nil
}

// PasteText decodes data and pastes it.
func (c *Clipboard) PasteText(data []byte, at geom.Point) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	return c.Paste(doc, at)
}
