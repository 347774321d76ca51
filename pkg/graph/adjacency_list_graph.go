package graph

import (
	"math"

	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

// Implementation for dynamic graphs.
// Parallel arcs are kept in insertion order.
type AdjacencyListGraph struct {
	Nodes    []geo.Point // The nodes of the graph
	Edges    [][]Arc     // The Arcs of the graph. The first slice specifies to which the arc belongs
	arcCount int         // the number of arcs in the graph
}

func NewAdjacencyListGraph() *AdjacencyListGraph {
	return &AdjacencyListGraph{
		Nodes: make([]geo.Point, 0),
		Edges: make([][]Arc, 0),
	}
}

// Return the node for the given id
func (alg *AdjacencyListGraph) GetNode(id NodeId) *geo.Point {
	if id < 0 || id >= alg.NodeCount() {
		panic(id)
	}
	return &alg.Nodes[id]
}

// Return all nodes of the graph
func (alg *AdjacencyListGraph) GetNodes() []geo.Point {
	return alg.Nodes
}

// Get the arcs for the given node
func (alg *AdjacencyListGraph) GetArcsFrom(id NodeId) []Arc {
	if id < 0 || id >= alg.NodeCount() {
		panic(id)
	}
	return alg.Edges[id]
}

// Return the number of total nodes
func (alg *AdjacencyListGraph) NodeCount() int {
	return len(alg.Nodes)
}

// Return the number of total arcs
func (alg *AdjacencyListGraph) ArcCount() int {
	return alg.arcCount
}

// Return a human readable string of the graph
func (alg *AdjacencyListGraph) AsString() string {
	return GraphAsString(alg)
}

// Add a node to the graph and return its id
func (alg *AdjacencyListGraph) AddNode(n geo.Point) NodeId {
	alg.Nodes = append(alg.Nodes, n)
	alg.Edges = append(alg.Edges, make([]Arc, 0))
	return len(alg.Nodes) - 1
}

// Add an arc to the graph, going from source to target with the given length
func (alg *AdjacencyListGraph) AddArc(from, to NodeId, length float64) bool {
	return alg.AddEdge(MakeEdge(from, to, length))
}

// AddEdge appends the arc of e to its source node.
// Arcs with unknown endpoints or an invalid length are rejected.
func (alg *AdjacencyListGraph) AddEdge(e Edge) bool {
	if !HasNode(alg, e.From) || !HasNode(alg, e.To) {
		return false
	}
	if e.Length < 0 || math.IsNaN(e.Length) || math.IsInf(e.Length, 0) || e.TravelTime < 0 {
		return false
	}
	alg.Edges[e.From] = append(alg.Edges[e.From], e.Arc)
	alg.arcCount++
	return true
}
