package scene

import (
	"fmt"
	"strings"

	"github.com/msalah0e/nodeweave/internal/geom"
)

// Mode is the interaction state of a scene.
type Mode int

const (
	ModeIdle Mode = iota
	ModeEdgeDrag
	ModeNodeEdit
	ModeEdgeCut
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeEdgeDrag:
		return "edge-drag"
	case ModeNodeEdit:
		return "node-edit"
	case ModeEdgeCut:
		return "edge-cut"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SocketPosition is the side and anchor of a socket on its node.
type SocketPosition int

const (
	LeftTop SocketPosition = iota + 1
	LeftBottom
	RightTop
	RightBottom
)

func (p SocketPosition) Valid() bool { return p >= LeftTop && p <= RightBottom }

func (p SocketPosition) IsLeft() bool { return p == LeftTop || p == LeftBottom }

func (p SocketPosition) IsBottom() bool { return p == LeftBottom || p == RightBottom }

// Side maps the position to the geometry side used by bezier paths.
func (p SocketPosition) Side() geom.Side {
	switch {
	case !p.Valid():
		return geom.SideNone
	case p.IsLeft():
		return geom.SideLeft
	default:
		return geom.SideRight
	}
}

func (p SocketPosition) String() string {
	switch p {
	case LeftTop:
		return "left-top"
	case LeftBottom:
		return "left-bottom"
	case RightTop:
		return "right-top"
	case RightBottom:
		return "right-bottom"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// SocketKind is an opaque category tag. The core never interprets it beyond
// carrying it through serialization.
type SocketKind int

// EdgeKind controls the shape of an edge path.
type EdgeKind int

const (
	Direct EdgeKind = iota + 1
	Bezier
)

func (k EdgeKind) Valid() bool { return k == Direct || k == Bezier }

func (k EdgeKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Bezier:
		return "bezier"
	default:
		return fmt.Sprintf("edge-kind(%d)", int(k))
	}
}

// ParseEdgeKind accepts "direct" or "bezier", case-insensitively.
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "1":
		return Direct, nil
	case "bezier", "2":
		return Bezier, nil
	}
	return 0, fmt.Errorf("unknown edge kind %q (want direct or bezier)", s)
}
