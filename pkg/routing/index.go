package routing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"

	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

// candidates taken from the planar search before comparing great-circle distances
const nearestCandidates = 8

type indexedNode struct {
	id    graph.NodeId
	point orb.Point
}

func (n indexedNode) Point() orb.Point { return n.point }

// nodeIndex finds the graph node closest to a coordinate
type nodeIndex struct {
	g    graph.Graph
	tree *quadtree.Quadtree
}

func newNodeIndex(g graph.Graph) *nodeIndex {
	index := &nodeIndex{g: g}
	if g.NodeCount() == 0 {
		return index
	}
	points := make(orb.MultiPoint, 0, g.NodeCount())
	for _, node := range g.GetNodes() {
		points = append(points, node.Orb())
	}
	index.tree = quadtree.New(points.Bound())
	for id, p := range points {
		// every point lies within the bound
		_ = index.tree.Add(indexedNode{id: id, point: p})
	}
	return index
}

// nearest returns -1 for an empty graph
func (index *nodeIndex) nearest(p geometry.Point) graph.NodeId {
	if index.tree == nil {
		return -1
	}
	best, bestDistance := -1, 0.0
	for _, candidate := range index.tree.KNearest(nil, p.Orb(), nearestCandidates) {
		node := candidate.(indexedNode)
		if d := p.DistanceTo(geometry.Point(node.point)); best < 0 || d < bestDistance || (d == bestDistance && node.id < best) {
			best, bestDistance = node.id, d
		}
	}
	return best
}
