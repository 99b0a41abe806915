package scene

import "github.com/msalah0e/nodeweave/internal/geom"

// Metrics are the node dimensions socket placement and hit testing derive
// from. Positions are never stored on sockets.
type Metrics struct {
	Width         float64
	Height        float64
	TitleHeight   float64
	Padding       float64
	EdgeSize      float64
	SocketSpacing float64
	SocketRadius  float64
	SocketOutline float64
}

// DefaultMetrics returns the stock node geometry.
func DefaultMetrics() Metrics {
	return Metrics{
		Width:         180,
		Height:        240,
		TitleHeight:   24,
		Padding:       4,
		EdgeSize:      10,
		SocketSpacing: 22,
		SocketRadius:  6,
		SocketOutline: 1,
	}
}

// SocketOffset returns the position of a socket relative to its node's
// top-left corner. Bottom-anchored sockets grow upward from the bottom edge,
// top-anchored ones grow downward from the title bar.
func (m Metrics) SocketOffset(index int, pos SocketPosition) geom.Point {
	x := 0.0
	if !pos.IsLeft() {
		x = m.Width
	}
	var y float64
	if pos.IsBottom() {
		y = m.Height - m.EdgeSize - m.Padding - float64(index)*m.SocketSpacing
	} else {
		y = m.TitleHeight + m.Padding + m.EdgeSize + float64(index)*m.SocketSpacing
	}
	return geom.Pt(x, y)
}
