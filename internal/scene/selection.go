package scene

import (
	"sort"

	"github.com/msalah0e/nodeweave/internal/ident"
)

// Selection is supplied by whatever presents the scene. Consumers must
// tolerate ids that no longer resolve.
type Selection interface {
	SelectedNodeIDs() []ident.ID
	SelectedEdgeIDs() []ident.ID
	SetSelected(nodes, edges []ident.ID)
}

// SelectionSet is an in-memory Selection. Ids are reported in ascending
// order.
type SelectionSet struct {
	nodes map[ident.ID]bool
	edges map[ident.ID]bool
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{
		nodes: make(map[ident.ID]bool),
		edges: make(map[ident.ID]bool),
	}
}

func sortedIDs(m map[ident.ID]bool) []ident.ID {
	out := make([]ident.ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *SelectionSet) SelectedNodeIDs() []ident.ID { return sortedIDs(s.nodes) }

func (s *SelectionSet) SelectedEdgeIDs() []ident.ID { return sortedIDs(s.edges) }

func (s *SelectionSet) SetSelected(nodes, edges []ident.ID) {
	s.Clear()
	for _, id := range nodes {
		s.nodes[id] = true
	}
	for _, id := range edges {
		s.edges[id] = true
	}
}

func (s *SelectionSet) SelectNode(id ident.ID) { s.nodes[id] = true }

func (s *SelectionSet) SelectEdge(id ident.ID) { s.edges[id] = true }

func (s *SelectionSet) ToggleNode(id ident.ID) {
	if s.nodes[id] {
		delete(s.nodes, id)
		return
	}
	s.nodes[id] = true
}

func (s *SelectionSet) ToggleEdge(id ident.ID) {
	if s.edges[id] {
		delete(s.edges, id)
		return
	}
	s.edges[id] = true
}

func (s *SelectionSet) IsNodeSelected(id ident.ID) bool { return s.nodes[id] }

func (s *SelectionSet) IsEdgeSelected(id ident.ID) bool { return s.edges[id] }

func (s *SelectionSet) Empty() bool { return len(s.nodes) == 0 && len(s.edges) == 0 }

func (s *SelectionSet) Clear() {
	s.nodes = make(map[ident.ID]bool)
	s.edges = make(map[ident.ID]bool)
}

// Prune drops ids that no longer resolve in sc.
func (s *SelectionSet) Prune(sc *Scene) {
	for id := range s.nodes {
		if sc.Node(id) == nil {
			delete(s.nodes, id)
		}
	}
	for id := range s.edges {
		if sc.Edge(id) == nil {
			delete(s.edges, id)
		}
	}
}
