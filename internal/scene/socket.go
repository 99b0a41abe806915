package scene

import (
	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
)

// Socket is a connection point on a node. Its bound-edge list is changed
// only through Edge.Rebind and Edge.Unbind.
type Socket struct {
	id         ident.ID
	node       *Node
	index      int
	position   SocketPosition
	kind       SocketKind
	multiEdges bool
	edges      []*Edge
}

func newSocket(id ident.ID, n *Node, index int, pos SocketPosition, kind SocketKind, multi bool) *Socket {
	return &Socket{
		id:         id,
		node:       n,
		index:      index,
		position:   pos,
		kind:       kind,
		multiEdges: multi,
		edges:      []*Edge{},
	}
}

func (s *Socket) ID() ident.ID { return s.id }

func (s *Socket) Node() *Node { return s.node }

func (s *Socket) Index() int { return s.index }

func (s *Socket) Position() SocketPosition { return s.position }

func (s *Socket) Kind() SocketKind { return s.kind }

func (s *Socket) MultiEdges() bool { return s.multiEdges }

// Edges returns the bound edges. The result is never nil.
func (s *Socket) Edges() []*Edge { return append([]*Edge{}, s.edges...) }

func (s *Socket) HasEdge() bool { return len(s.edges) > 0 }

// IsInput reports whether the socket sits on the left side of its node.
func (s *Socket) IsInput() bool { return s.position.IsLeft() }

func (s *Socket) Side() geom.Side { return s.position.Side() }

// ScenePos is the socket centre in scene coordinates.
func (s *Socket) ScenePos() geom.Point {
	return s.node.pos.Add(s.node.SocketPosition(s.index, s.position))
}

// accepts reports whether e may be bound here without breaking the
// single-edge rule.
func (s *Socket) accepts(e *Edge) bool {
	if s.multiEdges {
		return true
	}
	for _, x := range s.edges {
		if x != e {
			return false
		}
	}
	return true
}

func (s *Socket) bind(e *Edge) {
	for _, x := range s.edges {
		if x == e {
			return
		}
	}
	s.edges = append(s.edges, e)
}

func (s *Socket) unbind(e *Edge) {
	for i, x := range s.edges {
		if x == e {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return
		}
	}
}

func (s *Socket) Serialize() SocketDoc {
	return SocketDoc{
		ID:         s.id,
		Index:      s.index,
		Position:   s.position,
		Kind:       s.kind,
		MultiEdges: s.multiEdges,
	}
}
