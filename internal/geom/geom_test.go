package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Segment
		want bool
	}{
		{"crossing", Seg(Pt(0, 0), Pt(10, 10)), Seg(Pt(0, 10), Pt(10, 0)), true},
		{"parallel", Seg(Pt(0, 0), Pt(10, 0)), Seg(Pt(0, 1), Pt(10, 1)), false},
		{"touching endpoint", Seg(Pt(0, 0), Pt(5, 5)), Seg(Pt(5, 5), Pt(10, 0)), true},
		{"collinear overlap", Seg(Pt(0, 0), Pt(10, 0)), Seg(Pt(5, 0), Pt(15, 0)), true},
		{"collinear disjoint", Seg(Pt(0, 0), Pt(4, 0)), Seg(Pt(5, 0), Pt(15, 0)), false},
		{"short of crossing", Seg(Pt(0, 0), Pt(4, 4)), Seg(Pt(0, 10), Pt(10, 0)), false},
		{"t junction", Seg(Pt(0, 5), Pt(10, 5)), Seg(Pt(5, 5), Pt(5, 20)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a), "symmetric")
		})
	}
}

func TestSegmentDistance(t *testing.T) {
	s := Seg(Pt(0, 0), Pt(10, 0))
	assert.InDelta(t, 3, s.DistanceTo(Pt(5, 3)), 1e-9)
	assert.InDelta(t, 5, s.DistanceTo(Pt(13, 4)), 1e-9)
	assert.InDelta(t, 5, Seg(Pt(1, 1), Pt(1, 1)).DistanceTo(Pt(4, 5)), 1e-9)
}

func TestRect(t *testing.T) {
	r := RectOf(Pt(10, 20), Pt(-5, 40), Pt(0, 0))
	assert.Equal(t, Pt(-5, 0), r.Min)
	assert.Equal(t, Pt(10, 40), r.Max)
	assert.Equal(t, 15.0, r.Width())
	assert.True(t, r.Contains(Pt(0, 10)))
	assert.False(t, r.Contains(Pt(11, 10)))
	assert.True(t, r.Overlaps(XYWH(10, 40, 5, 5)))
	assert.False(t, r.Overlaps(XYWH(11, 40, 5, 5)))
	assert.Equal(t, Pt(2.5, 20), r.Center())
}

func TestBezierPathForward(t *testing.T) {
	c := BezierPath(Pt(0, 0), Pt(100, 50), SideRight, 20)
	assert.Equal(t, Pt(50, 0), c.P1)
	assert.Equal(t, Pt(50, 50), c.P2)
}

func TestBezierPathBackwards(t *testing.T) {
	c := BezierPath(Pt(100, 0), Pt(0, 50), SideRight, 20)
	// control points are flipped outwards and bent towards the other end
	assert.Equal(t, Pt(150, 20), c.P1)
	assert.Equal(t, Pt(-50, 30), c.P2)
}

func TestBezierPathSameHeight(t *testing.T) {
	c := BezierPath(Pt(100, 10), Pt(0, 10), SideRight, 20)
	assert.Equal(t, 10.0, c.P1.Y)
	assert.Equal(t, 10.0, c.P2.Y)
}

func TestBezierPathLeftSide(t *testing.T) {
	c := BezierPath(Pt(0, 0), Pt(100, 0), SideLeft, 20)
	assert.Equal(t, Pt(-50, 0), c.P1)
	assert.Equal(t, Pt(150, 0), c.P2)
}

func TestCubicPolyline(t *testing.T) {
	c := BezierPath(Pt(0, 0), Pt(200, 100), SideRight, 20)
	pts := c.Polyline()
	require.Greater(t, len(pts), 2)
	assert.Equal(t, c.P0, pts[0])
	assert.Equal(t, c.P3, pts[len(pts)-1])
	for _, p := range pts {
		assert.True(t, c.Hull().Inset(-1e-9).Contains(p))
	}
	assert.InDelta(t, 0, c.DistanceTo(c.At(0.3)), 0.5)
}

func TestCubicIntersectsSegment(t *testing.T) {
	c := BezierPath(Pt(0, 0), Pt(200, 100), SideRight, 20)
	assert.True(t, c.IntersectsSegment(Seg(Pt(100, -10), Pt(100, 110))))
	assert.False(t, c.IntersectsSegment(Seg(Pt(300, -10), Pt(300, 110))))
	// inside the hull but clear of the curve itself
	assert.False(t, c.IntersectsSegment(Seg(Pt(5, 80), Pt(20, 95))))
}

func TestLinePath(t *testing.T) {
	var p Path = DirectPath(Pt(0, 0), Pt(10, 0))
	assert.True(t, p.IntersectsSegment(Seg(Pt(5, -5), Pt(5, 5))))
	assert.Equal(t, []Point{Pt(0, 0), Pt(10, 0)}, p.Polyline())
	assert.True(t, PolylineIntersects([]Point{Pt(2, -5), Pt(3, -1), Pt(3, 2)}, p))
	assert.False(t, PolylineIntersects([]Point{Pt(2, -5)}, p))
}
