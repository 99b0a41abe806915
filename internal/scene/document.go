package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
)

var validate = validator.New()

// Document is the persisted form of a scene. Files, history snapshots and
// the clipboard all share its node and edge shapes.
type Document struct {
	ID     ident.ID  `json:"id"`
	Width  int       `json:"width" validate:"gt=0"`
	Height int       `json:"height" validate:"gt=0"`
	Nodes  []NodeDoc `json:"nodes" validate:"dive"`
	Edges  []EdgeDoc `json:"edges" validate:"dive"`
}

type NodeDoc struct {
	ID      ident.ID    `json:"id" validate:"required"`
	Title   string      `json:"title"`
	PosX    float64     `json:"pos_x"`
	PosY    float64     `json:"pos_y"`
	Content ContentDoc  `json:"content"`
	Inputs  []SocketDoc `json:"inputs" validate:"dive"`
	Outputs []SocketDoc `json:"outputs" validate:"dive"`
}

// ContentDoc stands in for the node body. Only its id is kept.
type ContentDoc struct {
	ID ident.ID `json:"id"`
}

type SocketDoc struct {
	ID         ident.ID       `json:"id" validate:"required"`
	Index      int            `json:"index" validate:"gte=0"`
	Position   SocketPosition `json:"position" validate:"min=1,max=4"`
	Kind       SocketKind     `json:"socket_type"`
	MultiEdges bool           `json:"multi_edges"`
}

type EdgeDoc struct {
	ID    ident.ID `json:"id" validate:"required"`
	Start ident.ID `json:"start" validate:"required"`
	End   ident.ID `json:"end" validate:"required"`
	Kind  EdgeKind `json:"edge_type" validate:"min=1,max=2"`
}

// ─── JSON ───

// requireKeys checks that data is an object holding every key with a
// non-null value.
func requireKeys(data []byte, what string, keys ...string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed(what, "%v", err)
	}
	if raw == nil {
		return nil, malformed(what, "null object")
	}
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			return nil, malformed(what+"."+k, "missing")
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, malformed(what+"."+k, "null")
		}
	}
	return raw, nil
}

func decodeInto(data []byte, what string, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		var me *MalformedError
		if errors.As(err, &me) {
			return err
		}
		return malformed(what, "%v", err)
	}
	return nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	if _, err := requireKeys(data, "document", "id", "width", "height", "nodes", "edges"); err != nil {
		return err
	}
	type plain Document
	return decodeInto(data, "document", (*plain)(d))
}

func (n *NodeDoc) UnmarshalJSON(data []byte) error {
	if _, err := requireKeys(data, "node", "id", "title", "pos_x", "pos_y", "inputs", "outputs"); err != nil {
		return err
	}
	type plain NodeDoc
	return decodeInto(data, "node", (*plain)(n))
}

// UnmarshalJSON requires id, index and position. A missing socket_type
// decodes as kind 0 and a missing multi_edges follows the side: right-hand
// sockets take many edges.
func (s *SocketDoc) UnmarshalJSON(data []byte) error {
	raw, err := requireKeys(data, "socket", "id", "index", "position")
	if err != nil {
		return err
	}
	type plain SocketDoc
	if err := decodeInto(data, "socket", (*plain)(s)); err != nil {
		return err
	}
	if _, ok := raw["multi_edges"]; !ok {
		s.MultiEdges = !s.Position.IsLeft()
	}
	return nil
}

func (e *EdgeDoc) UnmarshalJSON(data []byte) error {
	if _, err := requireKeys(data, "edge", "id", "start", "end", "edge_type"); err != nil {
		return err
	}
	type plain EdgeDoc
	return decodeInto(data, "edge", (*plain)(e))
}

// DecodeDocument parses a persisted document. Any structural problem is
// reported as ErrMalformedDocument.
func DecodeDocument(data []byte) (Document, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return Document{}, malformed("document", "null")
	}
	var doc Document
	if err := decodeInto(data, "document", &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// EncodeDocument renders doc as indented JSON.
func EncodeDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// ─── Validation ───

// Validate checks nodes and edges as a unit: field constraints, unique ids,
// unique socket slots, edges resolving to sockets among the given nodes and
// single-edge sockets bound at most once.
func Validate(nodes []NodeDoc, edges []EdgeDoc) error {
	return validateGraph(make(map[ident.ID]string), nodes, edges)
}

// validateGraph is Validate with ids already taken, mapped to what took them.
func validateGraph(seen map[ident.ID]string, nodes []NodeDoc, edges []EdgeDoc) error {
	claim := func(id ident.ID, what string) error {
		if prev, ok := seen[id]; ok {
			return malformed(what, "id %s already used by a %s", id, prev)
		}
		seen[id] = what
		return nil
	}

	sockets := make(map[ident.ID]SocketDoc)
	for i, n := range nodes {
		if err := validate.Struct(n); err != nil {
			return malformed(fmt.Sprintf("nodes[%d]", i), "%s", describe(err))
		}
		if err := claim(n.ID, "node"); err != nil {
			return err
		}
		type slot struct {
			pos   SocketPosition
			index int
		}
		slots := make(map[slot]bool)
		for _, sd := range append(append([]SocketDoc(nil), n.Inputs...), n.Outputs...) {
			if err := claim(sd.ID, "socket"); err != nil {
				return err
			}
			k := slot{sd.Position, sd.Index}
			if slots[k] {
				return malformed(fmt.Sprintf("nodes[%d]", i), "socket index %d used twice on %s", sd.Index, sd.Position)
			}
			slots[k] = true
			sockets[sd.ID] = sd
		}
	}

	bound := make(map[ident.ID]int)
	for i, e := range edges {
		if err := validate.Struct(e); err != nil {
			return malformed(fmt.Sprintf("edges[%d]", i), "%s", describe(err))
		}
		if err := claim(e.ID, "edge"); err != nil {
			return err
		}
		for _, sid := range []ident.ID{e.Start, e.End} {
			if _, ok := sockets[sid]; !ok {
				return &DanglingReferenceError{EdgeID: e.ID, SocketID: sid}
			}
		}
		if e.Start == e.End {
			return malformed(fmt.Sprintf("edges[%d]", i), "starts and ends on socket %s", e.Start)
		}
		bound[e.Start]++
		bound[e.End]++
	}
	for sid, count := range bound {
		if sd := sockets[sid]; !sd.MultiEdges && count > 1 {
			return malformed("edges", "single-edge socket %s bound %d times", sid, count)
		}
	}
	return nil
}

// ValidateDocument checks doc before it replaces a scene.
func ValidateDocument(doc Document) error {
	if err := validate.Struct(struct {
		Width  int `validate:"gt=0"`
		Height int `validate:"gt=0"`
	}{doc.Width, doc.Height}); err != nil {
		return malformed("document", "%s", describe(err))
	}
	return validateGraph(map[ident.ID]string{doc.ID: "scene"}, doc.Nodes, doc.Edges)
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	var b bytes.Buffer
	for i, fe := range verrs {
		if i > 0 {
			b.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			fmt.Fprintf(&b, "%s is required", fe.Field())
		case "min", "gte":
			fmt.Fprintf(&b, "%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			fmt.Fprintf(&b, "%s must be at most %s", fe.Field(), fe.Param())
		case "gt":
			fmt.Fprintf(&b, "%s must be greater than %s", fe.Field(), fe.Param())
		default:
			fmt.Fprintf(&b, "%s is invalid", fe.Field())
		}
	}
	return b.String()
}

// ─── Serialize / Deserialize ───

// Serialize snapshots the scene in iteration order. Dangling drag edges are
// left out.
func (s *Scene) Serialize() Document {
	doc := Document{
		ID:     s.id,
		Width:  s.width,
		Height: s.height,
		Nodes:  make([]NodeDoc, 0, len(s.nodes)),
		Edges:  make([]EdgeDoc, 0, len(s.edges)),
	}
	for _, n := range s.nodes {
		doc.Nodes = append(doc.Nodes, n.Serialize())
	}
	for _, e := range s.edges {
		if e.IsDangling() {
			continue
		}
		doc.Edges = append(doc.Edges, e.Serialize())
	}
	return doc
}

// Deserialize replaces the scene contents with doc. The document is fully
// validated first; on error the scene is left untouched. With restore the
// original ids are kept, otherwise fresh ones are minted.
func (s *Scene) Deserialize(doc Document, restore bool) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}
	s.Clear()
	if restore {
		s.Reserve(doc)
		s.id = s.mint(doc.ID, true)
		s.width, s.height = doc.Width, doc.Height
	}

	tr := NewTranslation()
	for _, nd := range doc.Nodes {
		s.InstantiateNode(nd, tr, restore)
	}
	for _, ed := range doc.Edges {
		if _, err := s.InstantiateEdge(ed, tr, restore); err != nil {
			// unreachable after Validate
			return err
		}
	}
	s.logger.Debug("scene deserialized",
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("edges", len(doc.Edges)),
		zap.Bool("restore", restore))
	return nil
}

// Translation maps document ids to the entities built from them.
type Translation struct {
	nodes   map[ident.ID]*Node
	sockets map[ident.ID]*Socket
	edges   map[ident.ID]*Edge
}

func NewTranslation() *Translation {
	return &Translation{
		nodes:   make(map[ident.ID]*Node),
		sockets: make(map[ident.ID]*Socket),
		edges:   make(map[ident.ID]*Edge),
	}
}

func (t *Translation) Node(old ident.ID) *Node { return t.nodes[old] }

func (t *Translation) Socket(old ident.ID) *Socket { return t.sockets[old] }

func (t *Translation) Edge(old ident.ID) *Edge { return t.edges[old] }

// Reserve advances the registry past every id in doc so that ids minted
// for missing content never collide with restored ones.
func (s *Scene) Reserve(doc Document) {
	s.ids.Restore(doc.ID)
	for _, n := range doc.Nodes {
		s.ids.Restore(n.ID)
		s.ids.Restore(n.Content.ID)
		for _, sd := range n.Inputs {
			s.ids.Restore(sd.ID)
		}
		for _, sd := range n.Outputs {
			s.ids.Restore(sd.ID)
		}
	}
	for _, e := range doc.Edges {
		s.ids.Restore(e.ID)
	}
}

func (s *Scene) mint(old ident.ID, restore bool) ident.ID {
	if restore && old != 0 {
		return s.ids.Restore(old)
	}
	return s.ids.Next()
}

// sortedSockets orders a copy of docs by position first and index second.
func sortedSockets(docs []SocketDoc) []SocketDoc {
	out := append([]SocketDoc(nil), docs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index+int(out[i].Position)*10000 < out[j].Index+int(out[j].Position)*10000
	})
	return out
}

// InstantiateNode builds a node from nd, records its ids in tr and adds it
// to the scene. nd is assumed to have passed Validate.
func (s *Scene) InstantiateNode(nd NodeDoc, tr *Translation, restore bool) *Node {
	n := &Node{
		id:        s.mint(nd.ID, restore),
		title:     nd.Title,
		pos:       geom.Pt(nd.PosX, nd.PosY),
		contentID: s.mint(nd.Content.ID, restore),
	}
	build := func(docs []SocketDoc) []*Socket {
		out := make([]*Socket, 0, len(docs))
		for _, sd := range sortedSockets(docs) {
			sock := newSocket(s.mint(sd.ID, restore), n, sd.Index, sd.Position, sd.Kind, sd.MultiEdges)
			tr.sockets[sd.ID] = sock
			out = append(out, sock)
		}
		return out
	}
	n.inputs = build(nd.Inputs)
	n.outputs = build(nd.Outputs)
	tr.nodes[nd.ID] = n
	s.AddNode(n)
	return n
}

// InstantiateEdge builds an edge from ed, resolving its endpoints through
// tr, and adds it to the scene.
func (s *Scene) InstantiateEdge(ed EdgeDoc, tr *Translation, restore bool) (*Edge, error) {
	start, end := tr.sockets[ed.Start], tr.sockets[ed.End]
	if start == nil {
		return nil, &DanglingReferenceError{EdgeID: ed.ID, SocketID: ed.Start}
	}
	if end == nil {
		return nil, &DanglingReferenceError{EdgeID: ed.ID, SocketID: ed.End}
	}
	e, err := newEdge(s, s.mint(ed.ID, restore), start, end, ed.Kind)
	if err != nil {
		return nil, fmt.Errorf("edge %s: %w", ed.ID, err)
	}
	tr.edges[ed.ID] = e
	return e, nil
}
