package editor

import (
	"fmt"

	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/scene"
)

var demoPositions = []geom.Point{
	geom.Pt(-350, -250),
	geom.Pt(-75, 0),
	geom.Pt(200, -50),
}

// Seed adds the sample graph: three nodes with three inputs and one output
// each, chained by two bezier edges.
func Seed(sc *scene.Scene) []*scene.Node {
	var nodes []*scene.Node
	for i, pos := range demoPositions {
		k := scene.SocketKind(i)
		n := scene.NewNode(sc, fmt.Sprintf("TestNode_%d", i), []scene.SocketKind{k, k, k}, []scene.SocketKind{1})
		n.SetPos(pos.X, pos.Y)
		nodes = append(nodes, n)
	}
	for i := 0; i+1 < len(nodes); i++ {
		// fresh sockets on a new scene, cannot be occupied
		_, _ = scene.NewEdge(sc, nodes[i].Outputs()[0], nodes[i+1].Inputs()[0], scene.Bezier)
	}
	return nodes
}
