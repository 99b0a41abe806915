// Package history keeps a bounded stack of full scene snapshots for undo
// and redo.
package history

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/scene"
)

// DefaultLimit is the number of stamps kept before the oldest is dropped.
const DefaultLimit = 32

// ErrInvalidPointer is returned by Load when the cursor does not index the
// given stamps.
var ErrInvalidPointer = errors.New("history pointer out of range")

// Selected is the selection captured with a stamp.
type Selected struct {
	Nodes []ident.ID `json:"nodes"`
	Edges []ident.ID `json:"edges"`
}

// Stamp is one undo step: a full snapshot plus what was selected.
type Stamp struct {
	Description string         `json:"description"`
	Snapshot    scene.Document `json:"snapshot"`
	Selection   Selected       `json:"selected"`
}

// Recorder is what editing operations need from a history.
type Recorder interface {
	Store(description string, modified bool)
}

// History is the undo stack of one scene.
type History struct {
	scene     *scene.Scene
	selection scene.Selection
	stack     []Stamp
	ptr       int
	limit     int
	logger    *zap.Logger
}

type Option func(*History)

// WithLimit caps the stack size. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// New returns an empty history for sc. sel is read on Store and written on
// Restore.
func New(sc *scene.Scene, sel scene.Selection, opts ...Option) *History {
	h := &History{
		scene:     sc,
		selection: sel,
		ptr:       -1,
		limit:     DefaultLimit,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *History) Len() int { return len(h.stack) }

// Pointer is the index of the applied stamp, -1 when empty.
func (h *History) Pointer() int { return h.ptr }

func (h *History) Limit() int { return h.limit }

func (h *History) CanUndo() bool { return h.ptr > 0 }

func (h *History) CanRedo() bool { return h.ptr+1 < len(h.stack) }

// Stamps returns a copy of the stack, oldest first.
func (h *History) Stamps() []Stamp { return append([]Stamp(nil), h.stack...) }

// Current returns the applied stamp.
func (h *History) Current() (Stamp, bool) {
	if h.ptr < 0 {
		return Stamp{}, false
	}
	return h.stack[h.ptr], true
}

func (h *History) Clear() {
	h.stack = nil
	h.ptr = -1
}

// Store sets the scene's modified flag, discards any redo branch and pushes
// a snapshot of the scene and selection. When the stack is full the oldest
// stamp is dropped.
func (h *History) Store(description string, modified bool) {
	h.scene.SetModified(modified)

	if h.ptr+1 < len(h.stack) {
		h.logger.Debug("redo branch discarded", zap.Int("stamps", len(h.stack)-h.ptr-1))
		h.stack = h.stack[:h.ptr+1]
	}
	if len(h.stack)+1 > h.limit {
		h.stack = append([]Stamp(nil), h.stack[1:]...)
		h.ptr--
	}

	h.stack = append(h.stack, h.stamp(description))
	h.ptr++
	h.logger.Debug("history stored",
		zap.String("desc", description),
		zap.Int("ptr", h.ptr),
		zap.Int("len", len(h.stack)))
}

func (h *History) stamp(description string) Stamp {
	st := Stamp{Description: description, Snapshot: h.scene.Serialize()}
	if h.selection != nil {
		st.Selection = Selected{
			Nodes: h.selection.SelectedNodeIDs(),
			Edges: h.selection.SelectedEdgeIDs(),
		}
	}
	return st
}

// Undo steps back one stamp. It is a no-op at the first stamp.
func (h *History) Undo() error {
	if h.ptr <= 0 {
		return nil
	}
	return h.moveTo(h.ptr - 1)
}

// Redo steps forward one stamp. It is a no-op at the newest stamp.
func (h *History) Redo() error {
	if h.ptr+1 >= len(h.stack) {
		return nil
	}
	return h.moveTo(h.ptr + 1)
}

func (h *History) moveTo(i int) error {
	if err := h.Restore(h.stack[i]); err != nil {
		return err
	}
	h.ptr = i
	return nil
}

// Restore rebuilds the scene from st and reselects whatever still exists
// among the recorded ids.
func (h *History) Restore(st Stamp) error {
	if err := h.scene.Deserialize(st.Snapshot, true); err != nil {
		return fmt.Errorf("restoring %q: %w", st.Description, err)
	}
	if h.selection == nil {
		return nil
	}
	var nodes, edges []ident.ID
	for _, id := range st.Selection.Nodes {
		if h.scene.Node(id) != nil {
			nodes = append(nodes, id)
		}
	}
	for _, id := range st.Selection.Edges {
		if h.scene.Edge(id) != nil {
			edges = append(edges, id)
		}
	}
	h.selection.SetSelected(nodes, edges)
	return nil
}

// Load replaces the stack, as when resuming a saved session. Only the newest
// stamps that fit the limit are kept. The scene is not touched.
func (h *History) Load(stamps []Stamp, ptr int) error {
	if len(stamps) == 0 {
		if ptr != -1 {
			return fmt.Errorf("%w: %d for empty history", ErrInvalidPointer, ptr)
		}
		h.Clear()
		return nil
	}
	if ptr < 0 || ptr >= len(stamps) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPointer, ptr, len(stamps))
	}
	if drop := len(stamps) - h.limit; drop > 0 {
		if ptr < drop {
			return fmt.Errorf("%w: %d falls before the newest %d stamps", ErrInvalidPointer, ptr, h.limit)
		}
		stamps = stamps[drop:]
		ptr -= drop
	}
	h.stack = append([]Stamp(nil), stamps...)
	h.ptr = ptr
	return nil
}
