package scene

import (
	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
)

// Node is a positioned vertex with ordered input and output sockets.
type Node struct {
	id        ident.ID
	scene     *Scene
	detached  bool
	title     string
	pos       geom.Point
	contentID ident.ID
	inputs    []*Socket
	outputs   []*Socket
}

// NewNode creates a node with one input socket per entry of inputs and one
// output socket per entry of outputs, and adds it to s. Inputs sit on the
// left, anchored at the bottom, and take a single edge. Outputs sit on the
// right, anchored at the top, and take many.
func NewNode(s *Scene, title string, inputs, outputs []SocketKind) *Node {
	n := &Node{
		id:        s.ids.Next(),
		title:     title,
		contentID: s.ids.Next(),
	}
	for i, k := range inputs {
		n.inputs = append(n.inputs, newSocket(s.ids.Next(), n, i, LeftBottom, k, false))
	}
	for i, k := range outputs {
		n.outputs = append(n.outputs, newSocket(s.ids.Next(), n, i, RightTop, k, true))
	}
	s.AddNode(n)
	return n
}

func (n *Node) ID() ident.ID { return n.id }

func (n *Node) Scene() *Scene { return n.scene }

// Attached reports whether the node is still part of its scene.
func (n *Node) Attached() bool { return n.scene != nil && !n.detached }

func (n *Node) Title() string { return n.title }

func (n *Node) SetTitle(t string) { n.title = t }

func (n *Node) Pos() geom.Point { return n.pos }

func (n *Node) SetPos(x, y float64) { n.pos = geom.Pt(x, y) }

func (n *Node) MoveBy(d geom.Point) { n.pos = n.pos.Add(d) }

func (n *Node) ContentID() ident.ID { return n.contentID }

func (n *Node) Inputs() []*Socket { return append([]*Socket(nil), n.inputs...) }

func (n *Node) Outputs() []*Socket { return append([]*Socket(nil), n.outputs...) }

// Sockets returns inputs followed by outputs.
func (n *Node) Sockets() []*Socket {
	out := make([]*Socket, 0, len(n.inputs)+len(n.outputs))
	out = append(out, n.inputs...)
	return append(out, n.outputs...)
}

// Bounds is the node body rectangle in scene coordinates.
func (n *Node) Bounds() geom.Rect {
	m := n.scene.metrics
	return geom.XYWH(n.pos.X, n.pos.Y, m.Width, m.Height)
}

// SocketPosition returns the offset of a socket slot from the node's
// top-left corner.
func (n *Node) SocketPosition(index int, pos SocketPosition) geom.Point {
	return n.scene.metrics.SocketOffset(index, pos)
}

// Edges returns every edge bound to one of the node's sockets, once each.
func (n *Node) Edges() []*Edge {
	var out []*Edge
	seen := make(map[*Edge]bool)
	for _, sock := range n.Sockets() {
		for _, e := range sock.edges {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// Remove deletes the node and every edge touching it.
func (n *Node) Remove() {
	if n.scene == nil {
		return
	}
	n.scene.RemoveNode(n)
}

// Serialize emits the node with its sockets in current order.
func (n *Node) Serialize() NodeDoc {
	doc := NodeDoc{
		ID:      n.id,
		Title:   n.title,
		PosX:    n.pos.X,
		PosY:    n.pos.Y,
		Content: ContentDoc{ID: n.contentID},
		Inputs:  make([]SocketDoc, 0, len(n.inputs)),
		Outputs: make([]SocketDoc, 0, len(n.outputs)),
	}
	for _, sock := range n.inputs {
		doc.Inputs = append(doc.Inputs, sock.Serialize())
	}
	for _, sock := range n.outputs {
		doc.Outputs = append(doc.Outputs, sock.Serialize())
	}
	return doc
}
