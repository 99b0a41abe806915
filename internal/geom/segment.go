package geom

import "math"

const epsilon = 1e-9

// Segment is the straight line between A and B.
type Segment struct {
	A Point
	B Point
}

// Seg is shorthand for Segment{a, b}.
func Seg(a, b Point) Segment {
	return Segment{A: a, B: b}
}

// Bounds returns the bounding box of the segment.
func (s Segment) Bounds() Rect {
	return RectOf(s.A, s.B)
}

// orient is the z component of (b-a) x (c-a): positive when c lies to the
// left of a->b, negative to the right, zero when collinear.
func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func sign(v float64) int {
	switch {
	case v > epsilon:
		return 1
	case v < -epsilon:
		return -1
	default:
		return 0
	}
}

// within reports whether p, known to be collinear with s, lies on s.
func (s Segment) within(p Point) bool {
	return p.X >= math.Min(s.A.X, s.B.X)-epsilon && p.X <= math.Max(s.A.X, s.B.X)+epsilon &&
		p.Y >= math.Min(s.A.Y, s.B.Y)-epsilon && p.Y <= math.Max(s.A.Y, s.B.Y)+epsilon
}

// Intersects reports whether the two segments share at least one point.
// Touching endpoints and collinear overlaps count as intersections.
func (s Segment) Intersects(o Segment) bool {
	d1 := sign(orient(o.A, o.B, s.A))
	d2 := sign(orient(o.A, o.B, s.B))
	d3 := sign(orient(s.A, s.B, o.A))
	d4 := sign(orient(s.A, s.B, o.B))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	switch {
	case d1 == 0 && o.within(s.A):
		return true
	case d2 == 0 && o.within(s.B):
		return true
	case d3 == 0 && s.within(o.A):
		return true
	case d4 == 0 && s.within(o.B):
		return true
	}
	return false
}

// DistanceTo returns the shortest distance from p to the segment.
func (s Segment) DistanceTo(p Point) float64 {
	d := s.B.Sub(s.A)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Dist(s.A)
	}
	t := ((p.X-s.A.X)*d.X + (p.Y-s.A.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(s.A.Add(d.Scale(t)))
}
