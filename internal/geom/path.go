package geom

import "math"

// Path is the drawn shape of an edge.
type Path interface {
	Start() Point
	End() Point
	// Polyline approximates the path by straight segments.
	Polyline() []Point
	IntersectsSegment(s Segment) bool
	DistanceTo(p Point) float64
	Bounds() Rect
}

// Side tells which side of its node a socket sits on.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// Line is the path of a direct edge.
type Line struct {
	From Point
	To   Point
}

func (l Line) Start() Point { return l.From }

func (l Line) End() Point { return l.To }

func (l Line) Polyline() []Point { return []Point{l.From, l.To} }

func (l Line) IntersectsSegment(s Segment) bool {
	return Seg(l.From, l.To).Intersects(s)
}

func (l Line) DistanceTo(p Point) float64 {
	return Seg(l.From, l.To).DistanceTo(p)
}

func (l Line) Bounds() Rect { return RectOf(l.From, l.To) }

// Cubic is a cubic Bezier curve from P0 to P3 with control points P1, P2.
type Cubic struct {
	P0, P1, P2, P3 Point
}

// flatness is the tolerance, in scene units, used when flattening curves.
const flatness = 0.25

const maxSubdivision = 16

func (c Cubic) Start() Point { return c.P0 }

func (c Cubic) End() Point { return c.P3 }

// At evaluates the curve at t in [0, 1].
func (c Cubic) At(t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	d := 3 * mt * t * t
	e := t * t * t
	return Point{
		X: a*c.P0.X + b*c.P1.X + d*c.P2.X + e*c.P3.X,
		Y: a*c.P0.Y + b*c.P1.Y + d*c.P2.Y + e*c.P3.Y,
	}
}

// Split divides the curve at t = 0.5.
func (c Cubic) Split() (Cubic, Cubic) {
	mid := func(a, b Point) Point { return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }
	p01 := mid(c.P0, c.P1)
	p12 := mid(c.P1, c.P2)
	p23 := mid(c.P2, c.P3)
	p012 := mid(p01, p12)
	p123 := mid(p12, p23)
	m := mid(p012, p123)
	return Cubic{c.P0, p01, p012, m}, Cubic{m, p123, p23, c.P3}
}

// flat reports whether the control points are close enough to the chord
// for the curve to be drawn as a single segment.
func (c Cubic) flat() bool {
	ux := 3*c.P1.X - 2*c.P0.X - c.P3.X
	uy := 3*c.P1.Y - 2*c.P0.Y - c.P3.Y
	vx := 3*c.P2.X - c.P0.X - 2*c.P3.X
	vy := 3*c.P2.Y - c.P0.Y - 2*c.P3.Y
	ux, uy, vx, vy = ux*ux, uy*uy, vx*vx, vy*vy
	return math.Max(ux, vx)+math.Max(uy, vy) <= 16*flatness*flatness
}

func (c Cubic) flatten(depth int, out []Point) []Point {
	if depth >= maxSubdivision || c.flat() {
		return append(out, c.P3)
	}
	left, right := c.Split()
	out = left.flatten(depth+1, out)
	return right.flatten(depth+1, out)
}

func (c Cubic) Polyline() []Point {
	return c.flatten(0, []Point{c.P0})
}

// Hull returns the bounding box of the control polygon, which always
// contains the curve.
func (c Cubic) Hull() Rect {
	return RectOf(c.P0, c.P1, c.P2, c.P3)
}

func (c Cubic) Bounds() Rect {
	return RectOf(c.Polyline()...)
}

func (c Cubic) IntersectsSegment(s Segment) bool {
	if !c.Hull().Overlaps(s.Bounds()) {
		return false
	}
	return polylineIntersects(c.Polyline(), s)
}

func (c Cubic) DistanceTo(p Point) float64 {
	return polylineDistance(c.Polyline(), p)
}

func polylineIntersects(pts []Point, s Segment) bool {
	for i := 0; i+1 < len(pts); i++ {
		if Seg(pts[i], pts[i+1]).Intersects(s) {
			return true
		}
	}
	return false
}

func polylineDistance(pts []Point, p Point) float64 {
	if len(pts) == 1 {
		return p.Dist(pts[0])
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		best = math.Min(best, Seg(pts[i], pts[i+1]).DistanceTo(p))
	}
	return best
}

// PolylineIntersects reports whether any segment of the polyline crosses
// the path.
func PolylineIntersects(pts []Point, p Path) bool {
	for i := 0; i+1 < len(pts); i++ {
		if p.IntersectsSegment(Seg(pts[i], pts[i+1])) {
			return true
		}
	}
	return false
}

// DirectPath is the straight path between two sockets.
func DirectPath(src, dst Point) Line {
	return Line{From: src, To: dst}
}

// zeroDelta replaces an exact zero vertical delta so the direction
// normalisation below never divides by zero.
const zeroDelta = 0.00001

func unit(v float64) float64 {
	d := v
	if d == 0 {
		d = zeroDelta
	}
	return v / math.Abs(d)
}

// BezierPath builds the curved path of a bezier edge. Control points extend
// horizontally from each end by half the horizontal distance. When dst lies
// behind src, seen from the side src sits on, both control points are
// flipped outwards and pushed vertically by roundness so the curve does not
// run back through the node body.
func BezierPath(src, dst Point, srcSide Side, roundness float64) Cubic {
	distance := (dst.X - src.X) * 0.5
	cpxS, cpxD := distance, -distance
	var cpyS, cpyD float64

	if (src.X > dst.X && srcSide == SideRight) || (src.X < dst.X && srcSide == SideLeft) {
		cpxD *= -1
		cpyD = unit(src.Y-dst.Y) * roundness
		cpxS *= -1
		cpyS = unit(dst.Y-src.Y) * roundness
	}

	return Cubic{
		P0: src,
		P1: Point{src.X + cpxS, src.Y + cpyS},
		P2: Point{dst.X + cpxD, dst.Y + cpyD},
		P3: dst,
	}
}
