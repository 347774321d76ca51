package path

import (
	"context"
	"strconv"
	"strings"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/slice"
)

// ReconstructPath walks the predecessors from destination back to origin.
// It returns an empty path if the chain breaks or does not end at origin.
func ReconstructPath(predecessors map[graph.NodeId]graph.NodeId, origin, destination graph.NodeId) []graph.NodeId {
	return reconstruct(origin, destination, len(predecessors), func(n graph.NodeId) graph.NodeId {
		if p, ok := predecessors[n]; ok {
			return p
		}
		return -1
	})
}

// reconstruct follows predecessor (returning -1 for none) at most maxSteps times
func reconstruct(origin, destination graph.NodeId, maxSteps int, predecessor func(graph.NodeId) graph.NodeId) []graph.NodeId {
	path := []graph.NodeId{destination}
	for nodeId := destination; nodeId != origin; {
		if len(path) > maxSteps+1 {
			// cyclic predecessors
			return make([]graph.NodeId, 0)
		}
		nodeId = predecessor(nodeId)
		if nodeId < 0 {
			return make([]graph.NodeId, 0)
		}
		path = append(path, nodeId)
	}
	slice.ReverseInPlace(path)
	return path
}

// IsValidPath reports whether path is non-empty and every consecutive pair is connected by an arc of g.
func IsValidPath(g graph.Graph, path []graph.NodeId) bool {
	if len(path) == 0 {
		return false
	}
	for _, nodeId := range path {
		if !graph.HasNode(g, nodeId) {
			return false
		}
	}
	for i := 1; i < len(path); i++ {
		if !graph.HasArc(g, path[i-1], path[i]) {
			return false
		}
	}
	return true
}

// PathLength sums the length in meters of the shortest arc between consecutive nodes.
// This is the shortest possible length of the node sequence, see RouteLength for the length a planner drove.
func PathLength(g graph.Graph, path []graph.NodeId) float64 {
	length := 0.0
	for i := 1; i < len(path); i++ {
		if arc, ok := graph.MinArc(g, path[i-1], path[i]); ok {
			length += arc.Length
		}
	}
	return length
}

// RouteLength sums the length in meters of the arcs a planner with model takes along path:
// the cheapest of the parallel arcs, the shorter one on equal cost.
func RouteLength(ctx context.Context, g graph.Graph, model *cost.Model, path []graph.NodeId) float64 {
	length := 0.0
	for i := 1; i < len(path); i++ {
		from, to := g.GetNode(path[i-1]), g.GetNode(path[i])
		if from == nil || to == nil {
			continue
		}
		found := false
		var bestCost, bestLength float64
		for _, arc := range g.GetArcsFrom(path[i-1]) {
			if arc.To != path[i] {
				continue
			}
			c := model.ArcCost(ctx, from, to, arc)
			if !found || c < bestCost || (c == bestCost && arc.Length < bestLength) {
				bestCost, bestLength, found = c, arc.Length, true
			}
		}
		length += bestLength
	}
	return length
}

// PathKey is a compact representation of a path, usable as map key
func PathKey(path []graph.NodeId) string {
	var sb strings.Builder
	for i, nodeId := range path {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(strconv.Itoa(nodeId))
	}
	return sb.String()
}
