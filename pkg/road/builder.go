package road

import (
	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

// GraphBuilder turns road segments into a routing graph.
// Every distinct point becomes a node, consecutive points are connected in driving direction.
type GraphBuilder struct {
	profile     Profile
	g           *graph.AdjacencyListGraph
	pointToNode map[geometry.Point]graph.NodeId
	skipped     int
}

func NewGraphBuilder(profile Profile) *GraphBuilder {
	return &GraphBuilder{
		profile:     profile,
		g:           graph.NewAdjacencyListGraph(),
		pointToNode: make(map[geometry.Point]graph.NodeId),
	}
}

func (b *GraphBuilder) node(p geometry.Point) graph.NodeId {
	if id, ok := b.pointToNode[p]; ok {
		return id
	}
	id := b.g.AddNode(p)
	b.pointToNode[p] = id
	return id
}

func (b *GraphBuilder) Add(segments ...*Segment) {
	for _, segment := range segments {
		if len(segment.Points) < 2 {
			b.skipped++
			continue
		}
		speed := b.profile.Speed(segment)
		roadType := segment.Type.String()
		for i := 0; i < len(segment.Points)-1; i++ {
			p, q := segment.Points[i], segment.Points[i+1]
			if p == q {
				continue
			}
			from, to := b.node(p), b.node(q)
			length := p.DistanceTo(q)
			edge := graph.Edge{From: from, Arc: graph.Arc{To: to, Length: length, TravelTime: cost.TravelTime(length, speed), RoadType: roadType}}
			b.g.AddEdge(edge)

			// add the reverse arc for two way roads
			if !segment.OneWay {
				b.g.AddEdge(edge.Invert())
			}
		}
	}
}

func (b *GraphBuilder) Graph() *graph.AdjacencyListGraph {
	return b.g
}

// Skipped is the number of segments with less than two points
func (b *GraphBuilder) Skipped() int {
	return b.skipped
}

func BuildGraph(segments []*Segment, profile Profile) *graph.AdjacencyListGraph {
	b := NewGraphBuilder(profile)
	b.Add(segments...)
	return b.Graph()
}
