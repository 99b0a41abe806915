// Package scene is the graph model: a Scene owns Nodes and Edges, Nodes own
// Sockets, and Edges refer to Sockets. Bound-edge lists on sockets and
// endpoints on edges are kept in agreement by Edge.Rebind, the only code
// path that touches both sides.
package scene

import (
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
)

const (
	DefaultWidth     = 64000
	DefaultHeight    = 64000
	DefaultRoundness = 20.0
)

// ObserverID identifies a registered modified-flag listener.
type ObserverID int

type observer struct {
	id ObserverID
	fn func()
}

// Scene is the graph. It is not safe for concurrent use; all mutation is
// expected to happen on one goroutine.
type Scene struct {
	id        ident.ID
	width     int
	height    int
	ids       *ident.Registry
	nodes     []*Node
	edges     []*Edge
	mode      Mode
	modified  bool
	observers []observer
	nextObs   ObserverID
	metrics   Metrics
	roundness float64
	logger    *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics overrides the node geometry.
func WithMetrics(m Metrics) Option {
	return func(s *Scene) { s.metrics = m }
}

// WithExtent sets the canvas size.
func WithExtent(width, height int) Option {
	return func(s *Scene) {
		s.width = width
		s.height = height
	}
}

// WithRoundness sets the vertical bias of backwards bezier edges.
func WithRoundness(r float64) Option {
	return func(s *Scene) { s.roundness = r }
}

// New returns an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		width:     DefaultWidth,
		height:    DefaultHeight,
		ids:       ident.NewRegistry(),
		metrics:   DefaultMetrics(),
		roundness: DefaultRoundness,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = s.ids.Next()
	return s
}

func (s *Scene) ID() ident.ID { return s.id }

func (s *Scene) Width() int { return s.width }

func (s *Scene) Height() int { return s.height }

func (s *Scene) Metrics() Metrics { return s.metrics }

func (s *Scene) Roundness() float64 { return s.roundness }

func (s *Scene) Logger() *zap.Logger { return s.logger }

// IDs exposes the scene's identity registry.
func (s *Scene) IDs() *ident.Registry { return s.ids }

func (s *Scene) Mode() Mode { return s.mode }

func (s *Scene) SetMode(m Mode) {
	if m != s.mode {
		s.logger.Debug("mode changed", zap.Stringer("from", s.mode), zap.Stringer("to", m))
	}
	s.mode = m
}

// ─── Modified flag ───

func (s *Scene) Modified() bool { return s.modified }

// SetModified updates the flag. Observers run only on a false to true
// transition, so repeated edits notify once.
func (s *Scene) SetModified(v bool) {
	was := s.modified
	s.modified = v
	if !was && v {
		for _, o := range append([]observer(nil), s.observers...) {
			o.fn()
		}
	}
}

// Observe registers fn to run when the scene becomes modified.
func (s *Scene) Observe(fn func()) ObserverID {
	s.nextObs++
	s.observers = append(s.observers, observer{id: s.nextObs, fn: fn})
	return s.nextObs
}

func (s *Scene) RemoveObserver(id ObserverID) {
	for i, o := range s.observers {
		if o.id == id {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *Scene) RemoveObservers() { s.observers = nil }

// ─── Membership ───

// AddNode appends n. Adding a node twice is a no-op.
func (s *Scene) AddNode(n *Node) {
	if s.nodeIndex(n) >= 0 {
		s.logger.Debug("node already in scene", zap.Stringer("node", n.id))
		return
	}
	n.scene = s
	n.detached = false
	s.nodes = append(s.nodes, n)
}

// AddEdge appends e. Adding an edge twice is a no-op.
func (s *Scene) AddEdge(e *Edge) {
	if s.edgeIndex(e) >= 0 {
		s.logger.Debug("edge already in scene", zap.Stringer("edge", e.id))
		return
	}
	e.scene = s
	e.detached = false
	s.edges = append(s.edges, e)
}

// RemoveNode removes every edge touching n, then detaches n. Removing a node
// that is not in the scene only logs a diagnostic.
func (s *Scene) RemoveNode(n *Node) {
	i := s.nodeIndex(n)
	if i < 0 {
		s.logger.Debug("remove of absent node ignored", zap.Stringer("node", n.id))
		return
	}
	for _, sock := range n.Sockets() {
		for _, e := range sock.Edges() {
			s.RemoveEdge(e)
		}
	}
	for _, e := range s.Edges() {
		if e.origin != nil && e.origin.node == n {
			s.RemoveEdge(e)
		}
	}
	// cascades above may have shifted the slice
	i = s.nodeIndex(n)
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	n.detached = true
}

// RemoveEdge unbinds e from both sockets, then detaches it. Removing an edge
// that is not in the scene only logs a diagnostic.
func (s *Scene) RemoveEdge(e *Edge) {
	i := s.edgeIndex(e)
	if i < 0 {
		s.logger.Debug("remove of absent edge ignored", zap.Stringer("edge", e.id))
		return
	}
	e.unbind()
	e.origin = nil
	s.edges = append(s.edges[:i], s.edges[i+1:]...)
	e.detached = true
}

func (s *Scene) nodeIndex(n *Node) int {
	for i, x := range s.nodes {
		if x == n {
			return i
		}
	}
	return -1
}

func (s *Scene) edgeIndex(e *Edge) int {
	for i, x := range s.edges {
		if x == e {
			return i
		}
	}
	return -1
}

// Nodes returns the nodes in insertion order.
func (s *Scene) Nodes() []*Node { return append([]*Node(nil), s.nodes...) }

// Edges returns the edges in insertion order, dangling drag edges included.
func (s *Scene) Edges() []*Edge { return append([]*Edge(nil), s.edges...) }

// Node looks up a node by id.
func (s *Scene) Node(id ident.ID) *Node {
	for _, n := range s.nodes {
		if n.id == id {
			return n
		}
	}
	return nil
}

// Edge looks up an edge by id.
func (s *Scene) Edge(id ident.ID) *Edge {
	for _, e := range s.edges {
		if e.id == id {
			return e
		}
	}
	return nil
}

// Socket looks up a socket on any node by id.
func (s *Scene) Socket(id ident.ID) *Socket {
	for _, n := range s.nodes {
		for _, sock := range n.Sockets() {
			if sock.id == id {
				return sock
			}
		}
	}
	return nil
}

// Clear removes every node, which cascades to edges, drops any leftover
// edges and resets the modified flag without notifying observers.
func (s *Scene) Clear() {
	for len(s.nodes) > 0 {
		s.RemoveNode(s.nodes[len(s.nodes)-1])
	}
	for len(s.edges) > 0 {
		s.RemoveEdge(s.edges[len(s.edges)-1])
	}
	s.modified = false
}

// RemoveItems deletes the given edges, then the given nodes with cascade.
// Ids that no longer resolve are skipped. It returns how many entities were
// removed directly.
func (s *Scene) RemoveItems(nodeIDs, edgeIDs []ident.ID) int {
	removed := 0
	for _, id := range edgeIDs {
		e := s.Edge(id)
		if e == nil {
			s.logger.Debug("stale edge id ignored", zap.Stringer("edge", id))
			continue
		}
		s.RemoveEdge(e)
		removed++
	}
	for _, id := range nodeIDs {
		n := s.Node(id)
		if n == nil {
			s.logger.Debug("stale node id ignored", zap.Stringer("node", id))
			continue
		}
		s.RemoveNode(n)
		removed++
	}
	return removed
}

// Stats holds summary counts.
type Stats struct {
	Nodes     int
	Edges     int
	Sockets   int
	Connected int
}

func (s *Scene) Stats() Stats {
	st := Stats{Nodes: len(s.nodes)}
	for _, e := range s.edges {
		if !e.IsDangling() {
			st.Edges++
		}
	}
	for _, n := range s.nodes {
		for _, sock := range n.Sockets() {
			st.Sockets++
			if sock.HasEdge() {
				st.Connected++
			}
		}
	}
	return st
}

// CutEdges returns the edges whose path crosses any segment of the polyline.
// Dangling drag edges are never cut.
func (s *Scene) CutEdges(line []geom.Point) []*Edge {
	var hit []*Edge
	for _, e := range s.edges {
		if e.IsDangling() {
			continue
		}
		for i := 0; i+1 < len(line); i++ {
			if e.IntersectsSegment(geom.Seg(line[i], line[i+1])) {
				hit = append(hit, e)
				break
			}
		}
	}
	return hit
}
