package graph

import (
	"fmt"
	"strconv"
	"strings"

	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

type NodeId = int

// Graph is a directed multigraph with dense node ids 0..NodeCount()-1.
// Implementations must not be modified while a search runs on them.
type Graph interface {
	GetNode(id NodeId) *geo.Point
	GetNodes() []geo.Point
	GetArcsFrom(id NodeId) []Arc
	NodeCount() int
	ArcCount() int
	AsString() string
}

type DynamicGraph interface {
	Graph
	AddNode(n geo.Point) NodeId
	AddArc(from, to NodeId, length float64) bool
	AddEdge(e Edge) bool
}

// Edge is an arc together with its source node.
type Edge struct {
	From NodeId
	Arc
}

type Arcs = []Arc

func MakeEdge(from, to NodeId, length float64) Edge {
	return Edge{From: from, Arc: MakeArc(to, length)}
}

func (e Edge) Invert() Edge {
	e.From, e.To = e.To, e.From
	return e
}

// HasNode reports whether id is a valid node of g.
func HasNode(g Graph, id NodeId) bool {
	return id >= 0 && id < g.NodeCount()
}

// HasArc reports whether at least one arc leads from u to v.
func HasArc(g Graph, u, v NodeId) bool {
	_, ok := MinArc(g, u, v)
	return ok
}

// MinArc returns the shortest of the (possibly parallel) arcs from u to v.
func MinArc(g Graph, u, v NodeId) (Arc, bool) {
	if !HasNode(g, u) || !HasNode(g, v) {
		return Arc{}, false
	}
	var best Arc
	found := false
	for _, arc := range g.GetArcsFrom(u) {
		if arc.To != v {
			continue
		}
		if !found || arc.Length < best.Length {
			best = arc
			found = true
		}
	}
	return best, found
}

// Edges lists every arc of g, grouped by source node in id order.
func Edges(g Graph) []Edge {
	edges := make([]Edge, 0, g.ArcCount())
	for i := 0; i < g.NodeCount(); i++ {
		for _, arc := range g.GetArcsFrom(i) {
			edges = append(edges, Edge{From: i, Arc: arc})
		}
	}
	return edges
}

// Successors returns the distinct targets of the arcs leaving id, in arc order.
func Successors(g Graph, id NodeId) []NodeId {
	arcs := g.GetArcsFrom(id)
	successors := make([]NodeId, 0, len(arcs))
	for _, arc := range arcs {
		seen := false
		for _, s := range successors {
			if s == arc.To {
				seen = true
				break
			}
		}
		if !seen {
			successors = append(successors, arc.To)
		}
	}
	return successors
}

// GraphAsString renders g in the fmi text format.
func GraphAsString(g Graph) string {
	var sb strings.Builder

	// write number of nodes and number of edges
	sb.WriteString(fmt.Sprintf("%v\n", g.NodeCount()))
	sb.WriteString(fmt.Sprintf("%v\n", g.ArcCount()))

	sb.WriteString("#Nodes\n")
	// list all nodes structured as "id lat lon"
	for i := 0; i < g.NodeCount(); i++ {
		node := g.GetNode(i)
		sb.WriteString(fmt.Sprintf("%v %v %v\n", i, formatFloat(node.Lat()), formatFloat(node.Lon())))
	}

	sb.WriteString("#Edges\n")
	// list all edges structured as "fromId targetId length [travelTime [roadType]]"
	for i := 0; i < g.NodeCount(); i++ {
		for _, arc := range g.GetArcsFrom(i) {
			sb.WriteString(fmt.Sprintf("%v %v %v", i, arc.Destination(), formatFloat(arc.Length)))
			if arc.TravelTime > 0 || arc.RoadType != "" {
				sb.WriteString(" " + formatFloat(arc.TravelTime))
			}
			if arc.RoadType != "" {
				sb.WriteString(" " + arc.RoadType)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
