package path

import (
	"context"
	"errors"
	"fmt"

	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

// NoPathCost is reported when the destination cannot be reached
const NoPathCost = -1.0

var (
	ErrEmptyGraph      = errors.New("graph has no nodes")
	ErrInvalidEndpoint = errors.New("endpoint is not part of the graph")
	ErrSearchAborted   = errors.New("search aborted")
)

// Navigator computes routes on the graph it was created for.
// A Navigator keeps no state between computations and may be used concurrently.
type Navigator interface {
	ComputeShortestPath(ctx context.Context, origin, destination graph.NodeId) (Result, error) // Compute the shortest path from the origin to the destination
	GetGraph() graph.Graph                                                                     // Get the used graph
	Name() string                                                                              // Human readable name of the algorithm
}

type SearchKPIs struct {
	PqPops             int // the amount of Pops which were performed on the priority queue
	PqUpdates          int // each update or push to the priority queue
	RelaxationAttempts int // the attempts for relaxed edges
	RelaxedEdges       int // number of relaxed edges (improving the tentative cost)
	SettledNodes       int // number of settled nodes
}

func (kpi *SearchKPIs) Add(other SearchKPIs) {
	kpi.PqPops += other.PqPops
	kpi.PqUpdates += other.PqUpdates
	kpi.RelaxationAttempts += other.RelaxationAttempts
	kpi.RelaxedEdges += other.RelaxedEdges
	kpi.SettledNodes += other.SettledNodes
}

// Result of a single computation.
// An empty Path means that no path exists, Cost is NoPathCost then.
type Result struct {
	Path []graph.NodeId
	Cost float64
	KPIs SearchKPIs
}

func noPath(kpis SearchKPIs) Result {
	return Result{Path: make([]graph.NodeId, 0), Cost: NoPathCost, KPIs: kpis}
}

func (r Result) Found() bool {
	return len(r.Path) > 0
}

// validateRequest checks the preconditions of a computation
func validateRequest(g graph.Graph, origin, destination graph.NodeId) error {
	if g == nil || g.NodeCount() == 0 {
		return ErrEmptyGraph
	}
	if !graph.HasNode(g, origin) {
		return fmt.Errorf("%w: origin %v", ErrInvalidEndpoint, origin)
	}
	if !graph.HasNode(g, destination) {
		return fmt.Errorf("%w: destination %v", ErrInvalidEndpoint, destination)
	}
	return nil
}

func aborted(err error) error {
	return fmt.Errorf("%w: %w", ErrSearchAborted, err)
}
