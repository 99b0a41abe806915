package scene

import (
	"fmt"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
)

// Edge connects two sockets. A drag edge has neither endpoint bound; it
// remembers the socket the drag started from and a free end that follows
// the pointer, and it is never serialized or cut.
type Edge struct {
	id       ident.ID
	scene    *Scene
	detached bool
	start    *Socket
	end      *Socket
	kind     EdgeKind
	origin   *Socket
	free     geom.Point
}

// NewEdge creates an edge between start and end and adds it to s.
func NewEdge(s *Scene, start, end *Socket, kind EdgeKind) (*Edge, error) {
	return newEdge(s, s.ids.Next(), start, end, kind)
}

func newEdge(s *Scene, id ident.ID, start, end *Socket, kind EdgeKind) (*Edge, error) {
	e := &Edge{id: id, kind: kind}
	if err := e.check(start, end); err != nil {
		return nil, err
	}
	s.AddEdge(e)
	if err := e.Rebind(start, end); err != nil {
		s.RemoveEdge(e)
		return nil, err
	}
	return e, nil
}

// NewDragEdge creates the dangling edge shown while the user drags out of
// origin. Its free end starts on the origin socket.
func NewDragEdge(s *Scene, origin *Socket, kind EdgeKind) *Edge {
	e := &Edge{
		id:     s.ids.Next(),
		kind:   kind,
		origin: origin,
		free:   origin.ScenePos(),
	}
	s.AddEdge(e)
	return e
}

func (e *Edge) ID() ident.ID { return e.id }

func (e *Edge) Scene() *Scene { return e.scene }

func (e *Edge) Attached() bool { return e.scene != nil && !e.detached }

func (e *Edge) Start() *Socket { return e.start }

func (e *Edge) End() *Socket { return e.end }

func (e *Edge) Kind() EdgeKind { return e.kind }

func (e *Edge) SetKind(k EdgeKind) { e.kind = k }

// Origin is the socket a drag edge was pulled from, nil once bound.
func (e *Edge) Origin() *Socket { return e.origin }

// IsDangling reports whether the edge lacks an endpoint.
func (e *Edge) IsDangling() bool { return e.start == nil || e.end == nil }

// SetFreeEnd moves the unbound end of a drag edge.
func (e *Edge) SetFreeEnd(p geom.Point) { e.free = p }

func (e *Edge) FreeEnd() geom.Point { return e.free }

func (e *Edge) check(start, end *Socket) error {
	if start != nil && start == end {
		return ErrSameSocket
	}
	for _, sock := range []*Socket{start, end} {
		if sock != nil && !sock.accepts(e) {
			return fmt.Errorf("socket %s: %w", sock.id, ErrSocketOccupied)
		}
	}
	return nil
}

// Rebind moves the edge onto start and end in one step: it leaves its
// previous sockets and joins the new ones. Either socket may be nil. A
// single-edge socket that already holds another edge is refused and the
// edge is left as it was.
func (e *Edge) Rebind(start, end *Socket) error {
	if e.detached {
		return ErrDetached
	}
	if err := e.check(start, end); err != nil {
		return err
	}
	e.unbind()
	e.start, e.end = start, end
	if start != nil {
		start.bind(e)
		e.origin = nil
	}
	if end != nil {
		end.bind(e)
	}
	return nil
}

// Unbind detaches the edge from both sockets but keeps it in the scene.
func (e *Edge) Unbind() { e.unbind() }

func (e *Edge) unbind() {
	if e.start != nil {
		e.start.unbind(e)
	}
	if e.end != nil {
		e.end.unbind(e)
	}
	e.start, e.end = nil, nil
}

// Remove unbinds the edge and detaches it from the scene. Repeated calls
// are harmless.
func (e *Edge) Remove() {
	if e.scene == nil {
		return
	}
	e.scene.RemoveEdge(e)
}

// Endpoints returns the source and destination points of the path and the
// side of the source socket.
func (e *Edge) Endpoints() (src, dst geom.Point, side geom.Side) {
	from := e.start
	if from == nil {
		from = e.origin
	}
	switch {
	case from != nil:
		src = from.ScenePos()
		side = from.Side()
	default:
		src = e.free
	}
	if e.end != nil {
		dst = e.end.ScenePos()
	} else {
		dst = e.free
	}
	return src, dst, side
}

// Path returns the current shape of the edge.
func (e *Edge) Path() geom.Path {
	src, dst, side := e.Endpoints()
	if e.kind == Direct {
		return geom.DirectPath(src, dst)
	}
	roundness := DefaultRoundness
	if e.scene != nil {
		roundness = e.scene.roundness
	}
	return geom.BezierPath(src, dst, side, roundness)
}

// IntersectsSegment reports whether the bound edge's path crosses seg.
func (e *Edge) IntersectsSegment(seg geom.Segment) bool {
	if e.IsDangling() {
		return false
	}
	return e.Path().IntersectsSegment(seg)
}

func (e *Edge) Serialize() EdgeDoc {
	doc := EdgeDoc{ID: e.id, Kind: e.kind}
	if e.start != nil {
		doc.Start = e.start.id
	}
	if e.end != nil {
		doc.End = e.end.id
	}
	return doc
}

func (e *Edge) String() string {
	src, dst := "-", "-"
	if e.start != nil {
		src = e.start.id.String()
	}
	if e.end != nil {
		dst = e.end.id.String()
	}
	return fmt.Sprintf("<Edge %s %s..%s>", e.id, src, dst)
}
