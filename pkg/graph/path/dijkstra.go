package path

import (
	"context"
	"fmt"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/queue"
)

// ReferenceDijkstra is a textbook Dijkstra with lazy deletion instead of decrease-key.
// It shares no search code with UniversalDijkstra and serves to verify its results.
type ReferenceDijkstra struct {
	g     graph.Graph
	model *cost.Model
}

func NewReferenceDijkstra(g graph.Graph, model *cost.Model) *ReferenceDijkstra {
	if model == nil {
		model = cost.NewModel(cost.DISTANCE)
	}
	return &ReferenceDijkstra{g: g, model: model}
}

type referenceItem struct {
	nodeId   graph.NodeId
	distance float64
	index    int
	sequence uint64
}

func (item *referenceItem) Priority() float64    { return item.distance }
func (item *referenceItem) Index() int           { return item.index }
func (item *referenceItem) SetIndex(index int)   { item.index = index }
func (item *referenceItem) Sequence() uint64     { return item.sequence }
func (item *referenceItem) SetSequence(s uint64) { item.sequence = s }
func (item *referenceItem) String() string       { return fmt.Sprintf("%v: %v\n", item.nodeId, item.distance) }

func (d *ReferenceDijkstra) ComputeShortestPath(ctx context.Context, origin, destination graph.NodeId) (Result, error) {
	if err := validateRequest(d.g, origin, destination); err != nil {
		return Result{}, err
	}

	distances := make([]float64, d.g.NodeCount())
	predecessors := make(map[graph.NodeId]graph.NodeId)
	reached := make([]bool, d.g.NodeCount())
	settled := make([]bool, d.g.NodeCount())
	kpis := SearchKPIs{}

	pq := queue.NewMinHeap[*referenceItem](nil)
	pq.Push(&referenceItem{nodeId: origin})
	reached[origin] = true

	for pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{}, aborted(err)
		}
		current := pq.Pop()
		kpis.PqPops++
		if settled[current.nodeId] {
			// outdated entry
			continue
		}
		settled[current.nodeId] = true
		kpis.SettledNodes++

		if current.nodeId == destination {
			return Result{
				Path: ReconstructPath(predecessors, origin, destination),
				Cost: current.distance,
				KPIs: kpis,
			}, nil
		}

		for _, arc := range d.g.GetArcsFrom(current.nodeId) {
			kpis.RelaxationAttempts++
			successor := arc.Destination()
			if settled[successor] {
				continue
			}
			distance := current.distance + d.model.ArcCost(ctx, d.g.GetNode(current.nodeId), d.g.GetNode(successor), arc)
			if reached[successor] && distance >= distances[successor] {
				continue
			}
			reached[successor] = true
			distances[successor] = distance
			predecessors[successor] = current.nodeId
			pq.Push(&referenceItem{nodeId: successor, distance: distance})
			kpis.PqUpdates++
			kpis.RelaxedEdges++
		}
	}
	return noPath(kpis), nil
}

func (d *ReferenceDijkstra) GetGraph() graph.Graph { return d.g }

func (d *ReferenceDijkstra) Name() string { return "Reference Dijkstra" }
