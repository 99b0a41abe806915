package scene

import "github.com/msalah0e/nodeweave/internal/geom"

// EdgeHitTolerance is how close, in scene units, a point must be to an edge
// path to pick it.
const EdgeHitTolerance = 4.0

// ItemKind tells what ItemAt found.
type ItemKind int

const (
	ItemNone ItemKind = iota
	ItemSocket
	ItemNode
	ItemEdge
)

func (k ItemKind) String() string {
	switch k {
	case ItemSocket:
		return "socket"
	case ItemNode:
		return "node"
	case ItemEdge:
		return "edge"
	default:
		return "canvas"
	}
}

// Item is the result of a hit test. Socket hits also carry the owning node.
type Item struct {
	Kind   ItemKind
	Socket *Socket
	Node   *Node
	Edge   *Edge
}

// ItemAt returns the topmost item under p: sockets first, then node bodies
// with the most recently added on top, then bound edges.
func (s *Scene) ItemAt(p geom.Point) Item {
	r := s.metrics.SocketRadius + s.metrics.SocketOutline
	for i := len(s.nodes) - 1; i >= 0; i-- {
		for _, sock := range s.nodes[i].Sockets() {
			if sock.ScenePos().Dist2(p) <= r*r {
				return Item{Kind: ItemSocket, Socket: sock, Node: sock.node}
			}
		}
	}
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if n := s.nodes[i]; n.Bounds().Contains(p) {
			return Item{Kind: ItemNode, Node: n}
		}
	}
	for i := len(s.edges) - 1; i >= 0; i-- {
		e := s.edges[i]
		if e.IsDangling() {
			continue
		}
		if e.Path().DistanceTo(p) <= EdgeHitTolerance {
			return Item{Kind: ItemEdge, Edge: e}
		}
	}
	return Item{}
}
