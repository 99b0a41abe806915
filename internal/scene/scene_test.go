package scene

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
)

func kinds(k ...int) []SocketKind {
	out := make([]SocketKind, len(k))
	for i, v := range k {
		out[i] = SocketKind(v)
	}
	return out
}

// checkBindings asserts that every bound edge appears on both of its sockets
// and that every socket only lists edges pointing back at it.
func checkBindings(t *testing.T, s *Scene) {
	t.Helper()
	for _, e := range s.Edges() {
		for _, sock := range []*Socket{e.Start(), e.End()} {
			if sock == nil {
				continue
			}
			assert.Contains(t, sock.Edges(), e, "edge %s missing from socket %s", e.ID(), sock.ID())
		}
	}
	for _, n := range s.Nodes() {
		for _, sock := range n.Sockets() {
			if !sock.MultiEdges() {
				assert.LessOrEqual(t, len(sock.Edges()), 1, "single-edge socket %s", sock.ID())
			}
			for _, e := range sock.Edges() {
				assert.True(t, e.Start() == sock || e.End() == sock, "socket %s holds stale edge %s", sock.ID(), e.ID())
				assert.True(t, e.Attached())
			}
		}
	}
}

func pair(t *testing.T) (*Scene, *Node, *Node) {
	t.Helper()
	s := New()
	a := NewNode(s, "A", nil, kinds(1))
	b := NewNode(s, "B", kinds(1), nil)
	a.SetPos(0, 0)
	b.SetPos(300, 0)
	return s, a, b
}

func TestNewNodeSockets(t *testing.T) {
	s := New()
	n := NewNode(s, "N", kinds(0, 1, 2), kinds(3))
	require.Len(t, n.Inputs(), 3)
	require.Len(t, n.Outputs(), 1)
	for i, sock := range n.Inputs() {
		assert.Equal(t, i, sock.Index())
		assert.Equal(t, LeftBottom, sock.Position())
		assert.False(t, sock.MultiEdges())
		assert.NotNil(t, sock.Edges())
	}
	out := n.Outputs()[0]
	assert.Equal(t, RightTop, out.Position())
	assert.True(t, out.MultiEdges())
	assert.Equal(t, SocketKind(3), out.Kind())
	assert.Same(t, n, s.Node(n.ID()))
	assert.Same(t, out, s.Socket(out.ID()))
}

func TestSocketPlacement(t *testing.T) {
	s := New()
	n := NewNode(s, "N", kinds(0, 0), kinds(0, 0))
	n.SetPos(100, 50)
	assert.Equal(t, geom.Pt(0, 226), n.SocketPosition(0, LeftBottom))
	assert.Equal(t, geom.Pt(0, 204), n.SocketPosition(1, LeftBottom))
	assert.Equal(t, geom.Pt(180, 38), n.SocketPosition(0, RightTop))
	assert.Equal(t, geom.Pt(180, 60), n.SocketPosition(1, RightTop))
	assert.Equal(t, geom.Pt(280, 88), n.Outputs()[0].ScenePos())
}

func TestExampleScenario(t *testing.T) {
	s, a, b := pair(t)
	e, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Bezier)
	require.NoError(t, err)

	doc := s.Serialize()
	s.Clear()
	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Edges())

	require.NoError(t, s.Deserialize(doc, true))
	require.Len(t, s.Nodes(), 2)
	require.Len(t, s.Edges(), 1)

	got := s.Edges()[0]
	assert.Equal(t, e.ID(), got.ID())
	assert.Equal(t, Bezier, got.Kind())
	assert.Equal(t, a.ID(), got.Start().Node().ID())
	assert.Equal(t, b.ID(), got.End().Node().ID())
	assert.Equal(t, a.Outputs()[0].ID(), got.Start().ID())
	assert.Equal(t, b.Inputs()[0].ID(), got.End().ID())
	checkBindings(t, s)
}

func TestRoundTrip(t *testing.T) {
	s := New()
	var nodes []*Node
	for i := 1; i <= 3; i++ {
		n := NewNode(s, "TestNode", kinds(i, i, i), kinds(1))
		n.SetPos(float64(-350+i*300), float64(i*20))
		nodes = append(nodes, n)
	}
	_, err := NewEdge(s, nodes[0].Outputs()[0], nodes[1].Inputs()[0], Bezier)
	require.NoError(t, err)
	_, err = NewEdge(s, nodes[1].Outputs()[0], nodes[2].Inputs()[2], Direct)
	require.NoError(t, err)
	_, err = NewEdge(s, nodes[0].Outputs()[0], nodes[2].Inputs()[1], Bezier)
	require.NoError(t, err)

	before := s.Serialize()
	data, err := EncodeDocument(before)
	require.NoError(t, err)
	decoded, err := DecodeDocument(data)
	require.NoError(t, err)
	if diff := cmp.Diff(before, decoded); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, s.Deserialize(decoded, true))
	if diff := cmp.Diff(before, s.Serialize()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	checkBindings(t, s)
}

func TestRebindMovesEdge(t *testing.T) {
	s := New()
	a := NewNode(s, "A", nil, kinds(0))
	b := NewNode(s, "B", kinds(0), nil)
	c := NewNode(s, "C", kinds(0), nil)
	e, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)

	require.NoError(t, e.Rebind(a.Outputs()[0], c.Inputs()[0]))
	assert.Empty(t, b.Inputs()[0].Edges())
	assert.Equal(t, []*Edge{e}, c.Inputs()[0].Edges())
	assert.Equal(t, []*Edge{e}, a.Outputs()[0].Edges())
	checkBindings(t, s)

	e.Unbind()
	assert.Nil(t, e.Start())
	assert.Empty(t, a.Outputs()[0].Edges())
	assert.Empty(t, c.Inputs()[0].Edges())
}

func TestSingleEdgeSocket(t *testing.T) {
	s := New()
	a := NewNode(s, "A", nil, kinds(0))
	b := NewNode(s, "B", nil, kinds(0))
	c := NewNode(s, "C", kinds(0), nil)
	first, err := NewEdge(s, a.Outputs()[0], c.Inputs()[0], Direct)
	require.NoError(t, err)

	_, err = NewEdge(s, b.Outputs()[0], c.Inputs()[0], Direct)
	assert.ErrorIs(t, err, ErrSocketOccupied)
	assert.Len(t, s.Edges(), 1)
	assert.Equal(t, []*Edge{first}, c.Inputs()[0].Edges())

	// rebinding onto the socket it already holds is fine
	require.NoError(t, first.Rebind(b.Outputs()[0], c.Inputs()[0]))
	checkBindings(t, s)

	// multi-edge outputs take any number
	d := NewNode(s, "D", kinds(0), nil)
	_, err = NewEdge(s, b.Outputs()[0], d.Inputs()[0], Direct)
	require.NoError(t, err)
	assert.Len(t, b.Outputs()[0].Edges(), 2)

	_, err = NewEdge(s, b.Outputs()[0], b.Outputs()[0], Direct)
	assert.ErrorIs(t, err, ErrSameSocket)
}

func TestRemoveNodeCascades(t *testing.T) {
	s := New()
	hub := NewNode(s, "hub", kinds(0, 0), kinds(0))
	var others []*Node
	for i := 0; i < 3; i++ {
		others = append(others, NewNode(s, "leaf", kinds(0), kinds(0)))
	}
	_, err := NewEdge(s, others[0].Outputs()[0], hub.Inputs()[0], Bezier)
	require.NoError(t, err)
	_, err = NewEdge(s, others[1].Outputs()[0], hub.Inputs()[1], Bezier)
	require.NoError(t, err)
	_, err = NewEdge(s, hub.Outputs()[0], others[2].Inputs()[0], Bezier)
	require.NoError(t, err)
	_, err = NewEdge(s, others[0].Outputs()[0], others[2].Inputs()[0], Bezier)
	require.Error(t, err, "input already taken")
	_, err = NewEdge(s, others[1].Outputs()[0], others[0].Inputs()[0], Bezier)
	require.NoError(t, err)

	require.Len(t, s.Edges(), 4)
	hubSockets := hub.Sockets()
	hub.Remove()

	assert.Len(t, s.Edges(), 1)
	assert.Len(t, s.Nodes(), 3)
	assert.False(t, hub.Attached())
	for _, e := range s.Edges() {
		for _, sock := range hubSockets {
			assert.NotSame(t, sock, e.Start())
			assert.NotSame(t, sock, e.End())
		}
	}
	checkBindings(t, s)
}

func TestDoubleRemoveIsHarmless(t *testing.T) {
	s, a, b := pair(t)
	e, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)

	e.Remove()
	e.Remove()
	s.RemoveEdge(e)
	a.Remove()
	s.RemoveNode(a)
	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
	assert.ErrorIs(t, e.Rebind(nil, nil), ErrDetached)
}

func TestCutScenario(t *testing.T) {
	s := New()
	a := NewNode(s, "A", nil, kinds(0))
	b := NewNode(s, "B", kinds(0), nil)
	// place the sockets at (0,0) and (100,0)
	a.SetPos(-180, -38)
	b.SetPos(100, -226)
	e, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)
	require.Equal(t, geom.Pt(0, 0), e.Start().ScenePos())
	require.Equal(t, geom.Pt(100, 0), e.End().ScenePos())

	line := []geom.Point{geom.Pt(50, -10), geom.Pt(50, 10)}
	assert.True(t, e.IntersectsSegment(geom.Seg(line[0], line[1])))

	hit := s.CutEdges(line)
	require.Equal(t, []*Edge{e}, hit)
	for _, x := range hit {
		x.Remove()
	}
	assert.Empty(t, s.Edges())
	assert.Empty(t, a.Outputs()[0].Edges())

	assert.Empty(t, s.CutEdges([]geom.Point{geom.Pt(50, -10)}))
}

func TestDragEdge(t *testing.T) {
	s, a, b := pair(t)
	drag := NewDragEdge(s, a.Outputs()[0], Bezier)
	assert.True(t, drag.IsDangling())
	assert.Empty(t, a.Outputs()[0].Edges())
	drag.SetFreeEnd(geom.Pt(250, 100))

	src, dst, side := drag.Endpoints()
	assert.Equal(t, a.Outputs()[0].ScenePos(), src)
	assert.Equal(t, geom.Pt(250, 100), dst)
	assert.Equal(t, geom.SideRight, side)

	assert.Empty(t, s.Serialize().Edges)
	assert.Empty(t, s.CutEdges([]geom.Point{geom.Pt(220, 0), geom.Pt(220, 200)}))
	assert.Equal(t, 0, s.Stats().Edges)

	require.NoError(t, drag.Rebind(a.Outputs()[0], b.Inputs()[0]))
	assert.False(t, drag.IsDangling())
	assert.Nil(t, drag.Origin())
	assert.Len(t, s.Serialize().Edges, 1)

	// removing the origin node discards an unbound drag edge
	other := NewDragEdge(s, b.Inputs()[0], Bezier)
	b.Remove()
	assert.False(t, other.Attached())
	assert.Empty(t, s.Edges())
}

func TestModifiedObservers(t *testing.T) {
	s := New()
	calls := 0
	id := s.Observe(func() { calls++ })
	s.SetModified(true)
	s.SetModified(true)
	assert.Equal(t, 1, calls)

	s.SetModified(false)
	s.SetModified(true)
	assert.Equal(t, 2, calls)

	s.RemoveObserver(id)
	s.SetModified(false)
	s.SetModified(true)
	assert.Equal(t, 2, calls)

	s.Clear()
	assert.False(t, s.Modified())
}

func TestModeIsPerScene(t *testing.T) {
	one, two := New(), New()
	one.SetMode(ModeEdgeCut)
	assert.Equal(t, ModeEdgeCut, one.Mode())
	assert.Equal(t, ModeIdle, two.Mode())
}

func TestDeserializeFreshIDs(t *testing.T) {
	s, a, b := pair(t)
	_, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)
	doc := s.Serialize()

	require.NoError(t, s.Deserialize(doc, false))
	got := s.Serialize()
	require.Len(t, got.Nodes, 2)
	require.Len(t, got.Edges, 1)
	old := map[ident.ID]bool{}
	for _, n := range doc.Nodes {
		old[n.ID] = true
	}
	for _, n := range got.Nodes {
		assert.False(t, old[n.ID], "node id %s reused", n.ID)
	}
	assert.Equal(t, got.Nodes[0].Outputs[0].ID, got.Edges[0].Start)
	assert.Equal(t, got.Nodes[1].Inputs[0].ID, got.Edges[0].End)
}

func TestDeserializeSortsSocketsOnCopy(t *testing.T) {
	doc := Document{
		ID: 1, Width: 100, Height: 100,
		Nodes: []NodeDoc{{
			ID: 2, Title: "N",
			Inputs: []SocketDoc{
				{ID: 3, Index: 1, Position: LeftBottom},
				{ID: 4, Index: 0, Position: LeftBottom},
				{ID: 5, Index: 0, Position: LeftTop},
			},
			Outputs: []SocketDoc{},
		}},
		Edges: []EdgeDoc{},
	}
	s := New()
	require.NoError(t, s.Deserialize(doc, true))

	var order []ident.ID
	for _, sock := range s.Nodes()[0].Inputs() {
		order = append(order, sock.ID())
	}
	assert.Equal(t, []ident.ID{5, 4, 3}, order)
	assert.Equal(t, ident.ID(3), doc.Nodes[0].Inputs[0].ID, "input document must not be reordered")
	assert.Greater(t, s.IDs().Next(), ident.ID(5))
}

func TestDeserializeFailureLeavesSceneUntouched(t *testing.T) {
	s, a, b := pair(t)
	_, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)
	s.SetModified(true)
	before := s.Serialize()

	tests := []struct {
		name string
		mut  func(*Document)
		want error
	}{
		{"dangling", func(d *Document) { d.Edges[0].End = 999 }, ErrDanglingReference},
		{"bad position", func(d *Document) { d.Nodes[0].Outputs[0].Position = 9 }, ErrMalformedDocument},
		{"bad edge kind", func(d *Document) { d.Edges[0].Kind = 7 }, ErrMalformedDocument},
		{"duplicate id", func(d *Document) { d.Nodes[1].ID = d.Nodes[0].ID }, ErrMalformedDocument},
		{"scene id reused", func(d *Document) { d.ID = d.Nodes[0].ID }, ErrMalformedDocument},
		{"zero width", func(d *Document) { d.Width = 0 }, ErrMalformedDocument},
		{"doubly bound input", func(d *Document) {
			extra := d.Edges[0]
			extra.ID = 999
			extra.Kind = Bezier
			d.Edges = append(d.Edges, extra)
		}, ErrMalformedDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeDocument(before)
			require.NoError(t, err)
			doc, err := DecodeDocument(data)
			require.NoError(t, err)
			tt.mut(&doc)

			err = s.Deserialize(doc, true)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			if diff := cmp.Diff(before, s.Serialize()); diff != "" {
				t.Errorf("scene changed (-want +got):\n%s", diff)
			}
			assert.True(t, s.Modified())
		})
	}
}

func TestNegativeSocketKindLoads(t *testing.T) {
	src, a, _ := pair(t)
	doc := src.Serialize()
	doc.Nodes[0].Outputs[0].Kind = -3
	require.Equal(t, a.ID(), doc.Nodes[0].ID)

	s := New()
	require.NoError(t, s.Deserialize(doc, true))
	assert.Equal(t, SocketKind(-3), s.Node(a.ID()).Outputs()[0].Kind())
	assert.Equal(t, SocketKind(-3), s.Serialize().Nodes[0].Outputs[0].Kind)
}

func TestRestoreWithoutSceneID(t *testing.T) {
	src, _, _ := pair(t)
	doc := src.Serialize()
	doc.ID = 0

	s := New()
	require.NoError(t, s.Deserialize(doc, true))
	for _, n := range doc.Nodes {
		assert.NotEqual(t, n.ID, s.ID(), "scene id collides with node %s", n.ID)
	}
	assert.NoError(t, ValidateDocument(s.Serialize()))
}

func TestDanglingReferenceDetail(t *testing.T) {
	err := Validate(nil, []EdgeDoc{{ID: 4, Start: 1, End: 2, Kind: Direct}})
	var dr *DanglingReferenceError
	require.ErrorAs(t, err, &dr)
	assert.Equal(t, ident.ID(4), dr.EdgeID)
	assert.Equal(t, ident.ID(1), dr.SocketID)
}

func TestDecodeDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{"id": `},
		{"null", `null`},
		{"missing nodes", `{"id":1,"width":10,"height":10,"edges":[]}`},
		{"null edges", `{"id":1,"width":10,"height":10,"nodes":[],"edges":null}`},
		{"wrong type", `{"id":"x","width":10,"height":10,"nodes":[],"edges":[]}`},
		{"node missing title", `{"id":1,"width":10,"height":10,"nodes":[{"id":2,"pos_x":0,"pos_y":0,"inputs":[],"outputs":[]}],"edges":[]}`},
		{"socket missing position", `{"id":1,"width":10,"height":10,"nodes":[{"id":2,"title":"","pos_x":0,"pos_y":0,"inputs":[{"id":3,"index":0}],"outputs":[]}],"edges":[]}`},
		{"edge missing end", `{"id":1,"width":10,"height":10,"nodes":[],"edges":[{"id":3,"start":1,"edge_type":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.in))
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestDecodeSocketDefaults(t *testing.T) {
	in := `{"id":1,"width":10,"height":10,"edges":[],"nodes":[{"id":2,"title":"n","pos_x":1,"pos_y":2,
		"inputs":[{"id":3,"index":0,"position":2}],
		"outputs":[{"id":4,"index":0,"position":3,"socket_type":5}]}]}`
	doc, err := DecodeDocument([]byte(in))
	require.NoError(t, err)
	assert.False(t, doc.Nodes[0].Inputs[0].MultiEdges)
	assert.True(t, doc.Nodes[0].Outputs[0].MultiEdges)
	assert.Equal(t, SocketKind(5), doc.Nodes[0].Outputs[0].Kind)
}

func TestRemoveItemsSkipsStaleIDs(t *testing.T) {
	s, a, b := pair(t)
	e, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)

	n := s.RemoveItems([]ident.ID{a.ID(), 12345}, []ident.ID{e.ID(), 777})
	assert.Equal(t, 2, n)
	assert.Len(t, s.Nodes(), 1)
	assert.Empty(t, s.Edges())
}

func TestItemAt(t *testing.T) {
	s, a, b := pair(t)
	e, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)

	it := s.ItemAt(a.Outputs()[0].ScenePos().Add(geom.Pt(3, 3)))
	assert.Equal(t, ItemSocket, it.Kind)
	assert.Same(t, a.Outputs()[0], it.Socket)

	it = s.ItemAt(geom.Pt(90, 120))
	assert.Equal(t, ItemNode, it.Kind)
	assert.Same(t, a, it.Node)

	mid := e.Path().Polyline()
	p := mid[0].Add(mid[1]).Scale(0.5)
	it = s.ItemAt(p.Add(geom.Pt(0, 2)))
	assert.Equal(t, ItemEdge, it.Kind)
	assert.Same(t, e, it.Edge)

	assert.Equal(t, ItemNone, s.ItemAt(geom.Pt(-500, -500)).Kind)
}

func TestStats(t *testing.T) {
	s, a, b := pair(t)
	_, err := NewEdge(s, a.Outputs()[0], b.Inputs()[0], Direct)
	require.NoError(t, err)
	NewDragEdge(s, a.Outputs()[0], Bezier)
	assert.Equal(t, Stats{Nodes: 2, Edges: 1, Sockets: 2, Connected: 2}, s.Stats())
}

func TestParseEdgeKind(t *testing.T) {
	k, err := ParseEdgeKind("Bezier")
	require.NoError(t, err)
	assert.Equal(t, Bezier, k)
	k, err = ParseEdgeKind("direct")
	require.NoError(t, err)
	assert.Equal(t, Direct, k)
	_, err = ParseEdgeKind("spline")
	assert.Error(t, err)
}
