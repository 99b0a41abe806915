package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/scene"
)

const (
	gridSize   = 20
	gridSquare = 5
	titleSize  = 10.0
	cornerSize = 10.0
)

var (
	colorBackground = color.NRGBA{0x39, 0x39, 0x39, 0xff}
	colorGridLight  = color.NRGBA{0x2f, 0x2f, 0x2f, 0xff}
	colorGridDark   = color.NRGBA{0x29, 0x29, 0x29, 0xff}
	colorNodeBody   = color.NRGBA{0x21, 0x21, 0x21, 0xe3}
	colorNodeTitle  = color.NRGBA{0x31, 0x31, 0x31, 0xff}
	colorNodeLine   = color.NRGBA{0x00, 0x00, 0x00, 0x7f}
	colorTitleText  = color.White
	colorEdge       = color.NRGBA{0x00, 0x10, 0x00, 0xff}
	colorOutline    = color.Black
)

// socketColors is indexed by socket kind modulo its length.
var socketColors = []color.Color{
	color.NRGBA{0xff, 0x77, 0x00, 0xff},
	color.NRGBA{0x52, 0xe2, 0x20, 0xff},
	color.NRGBA{0x00, 0x56, 0xa6, 0xff},
	color.NRGBA{0xa8, 0x6d, 0xb1, 0xff},
	color.NRGBA{0xb5, 0x47, 0x47, 0xff},
	color.NRGBA{0xdb, 0xe2, 0x20, 0xff},
}

// SocketColor is the fill used for sockets of kind k.
func SocketColor(k scene.SocketKind) color.Color {
	i := int(k) % len(socketColors)
	if i < 0 {
		i += len(socketColors)
	}
	return socketColors[i]
}

// Frame is the scene rectangle a PNG export covers: every node plus the
// margin, snapped outward to the grid.
func Frame(sc *scene.Scene, margin float64) geom.Rect {
	nodes := sc.Nodes()
	if len(nodes) == 0 {
		return geom.XYWH(-100, -100, 200, 200)
	}
	r := nodes[0].Bounds()
	for _, n := range nodes[1:] {
		r = r.Union(n.Bounds())
	}
	r = r.Inset(-margin)
	snap := func(v float64, up bool) float64 {
		if up {
			return math.Ceil(v/gridSize) * gridSize
		}
		return math.Floor(v/gridSize) * gridSize
	}
	return geom.Rect{
		Min: geom.Pt(snap(r.Min.X, false), snap(r.Min.Y, false)),
		Max: geom.Pt(snap(r.Max.X, true), snap(r.Max.Y, true)),
	}
}

// ExportPNG draws doc the way the editor canvas shows it and encodes the
// image to w.
func ExportPNG(w io.Writer, doc scene.Document, opts Options) error {
	sc, err := layout(doc, opts)
	if err != nil {
		return err
	}
	frame := Frame(sc, opts.Margin)
	dc := gg.NewContext(int(frame.Width()), int(frame.Height()))

	face, err := titleFace()
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	drawGrid(dc, frame)
	dc.Translate(-frame.Min.X, -frame.Min.Y)

	// edges first so nodes cover their ends
	for _, e := range sc.Edges() {
		drawEdge(dc, e)
	}
	m := sc.Metrics()
	for _, n := range sc.Nodes() {
		drawNode(dc, n, m)
	}
	return dc.EncodePNG(w)
}

func titleFace() (font.Face, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    titleSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func drawGrid(dc *gg.Context, frame geom.Rect) {
	dc.SetColor(colorBackground)
	dc.Clear()

	w, h := frame.Width(), frame.Height()
	line := func(i int, x1, y1, x2, y2 float64) {
		if i%gridSquare == 0 {
			dc.SetColor(colorGridDark)
			dc.SetLineWidth(2)
		} else {
			dc.SetColor(colorGridLight)
			dc.SetLineWidth(1)
		}
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
	for x := frame.Min.X; x <= frame.Max.X; x += gridSize {
		line(int(math.Round(x/gridSize)), x-frame.Min.X, 0, x-frame.Min.X, h)
	}
	for y := frame.Min.Y; y <= frame.Max.Y; y += gridSize {
		line(int(math.Round(y/gridSize)), 0, y-frame.Min.Y, w, y-frame.Min.Y)
	}
}

func drawEdge(dc *gg.Context, e *scene.Edge) {
	if e.IsDangling() {
		return
	}
	dc.SetColor(colorEdge)
	dc.SetLineWidth(2)
	switch p := e.Path().(type) {
	case geom.Cubic:
		dc.MoveTo(p.P0.X, p.P0.Y)
		dc.CubicTo(p.P1.X, p.P1.Y, p.P2.X, p.P2.Y, p.P3.X, p.P3.Y)
	default:
		pts := p.Polyline()
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, pt := range pts[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
	}
	dc.Stroke()
}

func drawNode(dc *gg.Context, n *scene.Node, m scene.Metrics) {
	b := n.Bounds()

	dc.SetColor(colorNodeBody)
	dc.DrawRoundedRectangle(b.Min.X, b.Min.Y, b.Width(), b.Height(), cornerSize)
	dc.Fill()

	// title bar: rounded on top, square where it meets the body
	dc.SetColor(colorNodeTitle)
	dc.DrawRoundedRectangle(b.Min.X, b.Min.Y, b.Width(), m.TitleHeight, cornerSize)
	dc.Fill()
	dc.DrawRectangle(b.Min.X, b.Min.Y+m.TitleHeight-cornerSize, b.Width(), cornerSize)
	dc.Fill()

	dc.SetColor(colorTitleText)
	dc.DrawStringAnchored(n.Title(), b.Min.X+m.EdgeSize, b.Min.Y+m.TitleHeight/2, 0, 0.5)

	dc.SetColor(colorNodeLine)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(b.Min.X, b.Min.Y, b.Width(), b.Height(), cornerSize)
	dc.Stroke()

	for _, s := range n.Sockets() {
		p := s.ScenePos()
		dc.DrawCircle(p.X, p.Y, m.SocketRadius)
		dc.SetColor(SocketColor(s.Kind()))
		dc.FillPreserve()
		dc.SetColor(colorOutline)
		dc.SetLineWidth(m.SocketOutline)
		dc.Stroke()
	}
}
