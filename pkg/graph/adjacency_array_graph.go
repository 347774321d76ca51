package graph

import (
	"fmt"

	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

// Implementation for static graphs
type AdjacencyArrayGraph struct {
	Nodes   []geo.Point
	arcs    []Arc
	Offsets []int
}

// Create an AdjacencyArrayGraph from the given graph
func NewAdjacencyArrayFromGraph(g Graph) *AdjacencyArrayGraph {
	nodes := make([]geo.Point, 0, g.NodeCount())
	arcs := make([]Arc, 0, g.ArcCount())
	offsets := make([]int, g.NodeCount()+1)

	for i := 0; i < g.NodeCount(); i++ {
		// add node
		nodes = append(nodes, *g.GetNode(i))

		// add all edges of node
		arcs = append(arcs, g.GetArcsFrom(i)...)

		// set stop-offset
		offsets[i+1] = len(arcs)
	}

	aag := AdjacencyArrayGraph{Nodes: nodes, arcs: arcs, Offsets: offsets}
	return &aag
}

// Reverse builds a static graph with every arc of g flipped.
// Parallel arcs and arc attributes are preserved, g is left untouched.
func Reverse(g Graph) *AdjacencyArrayGraph {
	n := g.NodeCount()
	nodes := make([]geo.Point, n)
	copy(nodes, g.GetNodes())

	// count incoming arcs per node
	offsets := make([]int, n+1)
	for i := 0; i < n; i++ {
		for _, arc := range g.GetArcsFrom(i) {
			offsets[arc.To+1]++
		}
	}
	for i := 0; i < n; i++ {
		offsets[i+1] += offsets[i]
	}

	arcs := make([]Arc, offsets[n])
	next := make([]int, n)
	copy(next, offsets[:n])
	for i := 0; i < n; i++ {
		for _, arc := range g.GetArcsFrom(i) {
			reversed := arc
			reversed.To = i
			arcs[next[arc.To]] = reversed
			next[arc.To]++
		}
	}

	return &AdjacencyArrayGraph{Nodes: nodes, arcs: arcs, Offsets: offsets}
}

// Get the node for the given id
func (aag *AdjacencyArrayGraph) GetNode(id NodeId) *geo.Point {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return &aag.Nodes[id]
}

// get all nodes of the graph
func (aag *AdjacencyArrayGraph) GetNodes() []geo.Point {
	return aag.Nodes
}

// Get the Arcs for the given node id
func (aag *AdjacencyArrayGraph) GetArcsFrom(id NodeId) []Arc {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return aag.arcs[aag.Offsets[id]:aag.Offsets[id+1]]
}

// Returns the number of Nodes in the graph
func (aag *AdjacencyArrayGraph) NodeCount() int {
	return len(aag.Nodes)
}

// Returns the total number of arcs in the graph
func (aag *AdjacencyArrayGraph) ArcCount() int {
	return len(aag.arcs)
}

// Returns a human readable string of the graph
func (aag *AdjacencyArrayGraph) AsString() string {
	return GraphAsString(aag)
}
