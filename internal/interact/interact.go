// Package interact turns pointer and key events into graph edits: dragging
// edges between sockets, drawing cut lines across edges, moving and
// selecting nodes, and deleting the selection.
package interact

import (
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/history"
	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/scene"
)

const (
	EdgeCreated = "Edge: created"
	EdgesCut    = "Edge: cut"
	NodeMoved   = "Node: has been moved"
	Deleted     = "Delete selected"
)

// Modifier is a bit set of held keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
)

func (m Modifier) Has(x Modifier) bool { return m&x != 0 }

// PointerEvent is a pointer position in scene coordinates plus held keys.
type PointerEvent struct {
	Pos       geom.Point
	Modifiers Modifier
}

// At is shorthand for a PointerEvent at (x, y).
func At(x, y float64, mods ...Modifier) PointerEvent {
	ev := PointerEvent{Pos: geom.Pt(x, y)}
	for _, m := range mods {
		ev.Modifiers |= m
	}
	return ev
}

// Picker finds the item under a point.
type Picker interface {
	ItemAt(p geom.Point) scene.Item
}

// Controller is the interaction state machine of one scene. The current
// state lives in the scene's mode.
type Controller struct {
	scene     *scene.Scene
	picker    Picker
	selection scene.Selection
	recorder  history.Recorder
	logger    *zap.Logger
	threshold float64
	edgeKind  scene.EdgeKind

	dragEdge     *scene.Edge
	startSocket  *scene.Socket
	previousEdge *scene.Edge
	pressPos     geom.Point
	cutLine      []geom.Point

	moving   bool
	moved    bool
	moveFrom geom.Point

	last geom.Point
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPicker replaces the scene's own hit test.
func WithPicker(p Picker) Option {
	return func(c *Controller) { c.picker = p }
}

// WithEdgeKind sets the kind of edges created by dragging. The default is
// bezier.
func WithEdgeKind(k scene.EdgeKind) Option {
	return func(c *Controller) {
		if k.Valid() {
			c.edgeKind = k
		}
	}
}

// WithDragThreshold sets the squared distance a release must be from the
// press before it ends an edge drag. Shorter releases keep the drag alive
// so that a second press can complete it.
func WithDragThreshold(d float64) Option {
	return func(c *Controller) { c.threshold = d }
}

func New(sc *scene.Scene, sel scene.Selection, rec history.Recorder, opts ...Option) *Controller {
	c := &Controller{
		scene:     sc,
		picker:    sc,
		selection: sel,
		recorder:  rec,
		logger:    zap.NewNop(),
		edgeKind:  scene.Bezier,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() scene.Mode { return c.scene.Mode() }

// DragEdge is the dangling edge of an active drag, or nil.
func (c *Controller) DragEdge() *scene.Edge { return c.dragEdge }

// CutLine returns the points of the cut line being drawn.
func (c *Controller) CutLine() []geom.Point { return append([]geom.Point(nil), c.cutLine...) }

// LastPointer is the most recent pointer position seen.
func (c *Controller) LastPointer() geom.Point { return c.last }

// SetLastPointer records a pointer position without any other effect.
func (c *Controller) SetLastPointer(p geom.Point) { c.last = p }

// Press handles a button press. It reports whether the press started or
// completed an edge drag or started a cut line.
func (c *Controller) Press(ev PointerEvent) bool {
	c.last = ev.Pos
	c.pressPos = ev.Pos
	item := c.picker.ItemAt(ev.Pos)

	switch c.scene.Mode() {
	case scene.ModeEdgeDrag:
		return c.endDrag(item)
	case scene.ModeEdgeCut:
		return false
	case scene.ModeIdle:
		if item.Kind == scene.ItemSocket {
			c.beginDrag(item.Socket, c.edgeKind)
			return true
		}
		if item.Kind == scene.ItemNone && ev.Modifiers.Has(ModCtrl) {
			c.beginCut()
			return true
		}
	}

	c.pick(item, ev)
	return false
}

// pick updates the selection for a press that did not start a drag or cut
// and arms a node move when a node was hit.
func (c *Controller) pick(item scene.Item, ev PointerEvent) {
	toggle := ev.Modifiers.Has(ModShift)
	nodes, edges := c.selection.SelectedNodeIDs(), c.selection.SelectedEdgeIDs()

	switch item.Kind {
	case scene.ItemNode:
		id := item.Node.ID()
		switch {
		case toggle:
			nodes = toggleID(nodes, id)
		case !containsID(nodes, id):
			nodes, edges = []ident.ID{id}, nil
		}
		c.selection.SetSelected(nodes, edges)
		if containsID(nodes, id) {
			c.moving = true
			c.moved = false
			c.moveFrom = ev.Pos
		}
	case scene.ItemEdge:
		id := item.Edge.ID()
		if toggle {
			c.selection.SetSelected(nodes, toggleID(edges, id))
		} else {
			c.selection.SetSelected(nil, []ident.ID{id})
		}
	case scene.ItemNone:
		if !toggle {
			c.selection.SetSelected(nil, nil)
		}
	}
}

// Move handles pointer motion.
func (c *Controller) Move(ev PointerEvent) {
	c.last = ev.Pos
	switch c.scene.Mode() {
	case scene.ModeEdgeDrag:
		if c.dragEdge != nil {
			c.dragEdge.SetFreeEnd(ev.Pos)
		}
		return
	case scene.ModeEdgeCut:
		c.cutLine = append(c.cutLine, ev.Pos)
		return
	}
	if c.moving {
		delta := ev.Pos.Sub(c.moveFrom)
		c.moveFrom = ev.Pos
		if delta == (geom.Point{}) {
			return
		}
		for _, id := range c.selection.SelectedNodeIDs() {
			if n := c.scene.Node(id); n != nil {
				n.MoveBy(delta)
			}
		}
		c.moved = true
	}
}

// Release handles a button release. It reports whether an edge was
// connected, edges were cut or nodes were moved.
func (c *Controller) Release(ev PointerEvent) bool {
	c.last = ev.Pos
	switch c.scene.Mode() {
	case scene.ModeEdgeDrag:
		if ev.Pos.Dist2(c.pressPos) >= c.threshold {
			return c.endDrag(c.picker.ItemAt(ev.Pos))
		}
		return false
	case scene.ModeEdgeCut:
		return c.endCut()
	}
	if c.moving {
		c.moving = false
		if c.moved {
			c.moved = false
			c.recorder.Store(NodeMoved, true)
			return true
		}
	}
	return false
}

// Delete removes the selected nodes and edges. It is ignored while node
// content has focus.
func (c *Controller) Delete() bool {
	if c.scene.Mode() == scene.ModeNodeEdit {
		c.logger.Debug("delete suppressed while editing node content")
		return false
	}
	c.reset()
	removed := c.scene.RemoveItems(c.selection.SelectedNodeIDs(), c.selection.SelectedEdgeIDs())
	c.selection.SetSelected(nil, nil)
	// an empty delete leaves nothing to undo, so no stamp
	if removed == 0 {
		return false
	}
	c.recorder.Store(Deleted, true)
	return true
}

// FocusContent enters node editing. Only an idle controller can enter it.
func (c *Controller) FocusContent() {
	if c.scene.Mode() == scene.ModeIdle {
		c.scene.SetMode(scene.ModeNodeEdit)
	}
}

// BlurContent leaves node editing.
func (c *Controller) BlurContent() {
	if c.scene.Mode() == scene.ModeNodeEdit {
		c.scene.SetMode(scene.ModeIdle)
	}
}

// Cancel abandons any drag, cut line or move in progress.
func (c *Controller) Cancel() {
	if c.scene.Mode() == scene.ModeNodeEdit {
		return
	}
	c.reset()
}

func (c *Controller) reset() {
	if c.dragEdge != nil {
		c.dragEdge.Remove()
	}
	c.dragEdge, c.startSocket, c.previousEdge = nil, nil, nil
	c.cutLine = nil
	c.moving, c.moved = false, false
	c.scene.SetMode(scene.ModeIdle)
}

// ─── Edge drag ───

// Connect runs a complete edge drag from start to target without pointer
// events. It returns the new edge, or nil when the controller is busy or the
// connection was refused.
func (c *Controller) Connect(start, target *scene.Socket, kind scene.EdgeKind) *scene.Edge {
	if c.scene.Mode() != scene.ModeIdle {
		return nil
	}
	if !kind.Valid() {
		kind = c.edgeKind
	}
	c.beginDrag(start, kind)
	edge := c.dragEdge
	if !c.endDrag(scene.Item{Kind: scene.ItemSocket, Socket: target, Node: target.Node()}) {
		return nil
	}
	return edge
}

func (c *Controller) beginDrag(sock *scene.Socket, kind scene.EdgeKind) {
	c.scene.SetMode(scene.ModeEdgeDrag)
	c.startSocket = sock
	c.previousEdge = nil
	if !sock.MultiEdges() && sock.HasEdge() {
		c.previousEdge = sock.Edges()[0]
	}
	c.dragEdge = scene.NewDragEdge(c.scene, sock, kind)
	c.logger.Debug("edge drag started", zap.Stringer("socket", sock.ID()))
}

func (c *Controller) endDrag(item scene.Item) bool {
	start, edge, previous := c.startSocket, c.dragEdge, c.previousEdge
	c.dragEdge, c.startSocket, c.previousEdge = nil, nil, nil
	c.scene.SetMode(scene.ModeIdle)

	if item.Kind == scene.ItemSocket && item.Socket != start {
		target := item.Socket
		// checked before any removal so a refused connect leaves the scene as it was
		if !live(edge, start, target) {
			c.logger.Warn("edge drag outlived its sockets, discarded",
				zap.Stringer("edge", edge.ID()),
				zap.Stringer("start", start.ID()))
			edge.Remove()
			return false
		}
		if !target.MultiEdges() {
			for _, e := range target.Edges() {
				e.Remove()
			}
		}
		if previous != nil {
			previous.Remove()
		}
		if err := edge.Rebind(start, target); err != nil {
			c.logger.Warn("edge drag could not connect", zap.Error(err))
			edge.Remove()
			return false
		}
		c.logger.Debug("edge connected",
			zap.Stringer("edge", edge.ID()),
			zap.Stringer("start", start.ID()),
			zap.Stringer("end", target.ID()))
		c.recorder.Store(EdgeCreated, true)
		return true
	}

	edge.Remove()
	c.logger.Debug("edge drag discarded")
	return false
}

// live reports whether the drag edge and both sockets still belong to the
// scene. A restore or cut while dragging detaches them.
func live(edge *scene.Edge, start, target *scene.Socket) bool {
	return edge.Attached() && start.Node().Attached() && target.Node().Attached()
}

// ─── Cut line ───

// CutAlong cuts every edge crossing the polyline in one step, as if the
// line had been drawn with the pointer.
func (c *Controller) CutAlong(line []geom.Point) bool {
	if c.scene.Mode() != scene.ModeIdle {
		return false
	}
	c.beginCut()
	c.cutLine = append(c.cutLine, line...)
	return c.endCut()
}

// beginCut starts an empty cut line; only pointer moves add points.
func (c *Controller) beginCut() {
	c.scene.SetMode(scene.ModeEdgeCut)
	c.cutLine = nil
}

func (c *Controller) endCut() bool {
	hit := c.scene.CutEdges(c.cutLine)
	for _, e := range hit {
		e.Remove()
	}
	c.cutLine = nil
	c.scene.SetMode(scene.ModeIdle)
	// a line that crossed nothing records no stamp
	if len(hit) == 0 {
		return false
	}
	c.logger.Debug("edges cut", zap.Int("count", len(hit)))
	c.recorder.Store(EdgesCut, true)
	return true
}

func containsID(ids []ident.ID, id ident.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func toggleID(ids []ident.ID, id ident.ID) []ident.ID {
	out := make([]ident.ID, 0, len(ids)+1)
	found := false
	for _, x := range ids {
		if x == id {
			found = true
			continue
		}
		out = append(out, x)
	}
	if !found {
		out = append(out, id)
	}
	return out
}
