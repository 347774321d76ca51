package path

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

func TestReconstructPath(t *testing.T) {
	predecessors := map[graph.NodeId]graph.NodeId{1: 0, 2: 1, 5: 2, 7: 3}

	assert.Equal(t, []graph.NodeId{0, 1, 2, 5}, ReconstructPath(predecessors, 0, 5))
	assert.Equal(t, []graph.NodeId{1, 2}, ReconstructPath(predecessors, 1, 2))
	assert.Equal(t, []graph.NodeId{4}, ReconstructPath(predecessors, 4, 4))

	// chain ends at 3 instead of 0
	assert.Empty(t, ReconstructPath(predecessors, 0, 7))
	// destination was never reached
	assert.Empty(t, ReconstructPath(predecessors, 0, 9))

	cyclic := map[graph.NodeId]graph.NodeId{1: 2, 2: 1}
	assert.Empty(t, ReconstructPath(cyclic, 0, 1))
}

func TestIsValidPath(t *testing.T) {
	g := meetingGraph()
	assert.True(t, IsValidPath(g, []graph.NodeId{0, 2, 3, 4}))
	assert.True(t, IsValidPath(g, []graph.NodeId{3}))
	assert.False(t, IsValidPath(g, []graph.NodeId{0, 3, 4}))
	assert.False(t, IsValidPath(g, []graph.NodeId{4, 3}))
	assert.False(t, IsValidPath(g, []graph.NodeId{}))
	assert.False(t, IsValidPath(g, []graph.NodeId{0, 9}))
}

func TestPathLength(t *testing.T) {
	g := meetingGraph()
	g.AddArc(2, 3, 1)
	assert.Equal(t, 4.0, PathLength(g, []graph.NodeId{0, 2, 3, 4}))
	assert.Zero(t, PathLength(g, []graph.NodeId{0}))
}

func TestRouteLength(t *testing.T) {
	g := graph.NewAdjacencyListGraph()
	g.AddNode(geo.MakePoint(52.5, 13.4))
	g.AddNode(geo.MakePoint(52.5, 13.401))
	g.AddNode(geo.MakePoint(52.5, 13.402))
	// a short street at the default speed (7.2 s) and a longer but faster bypass (3 s)
	g.AddArc(0, 1, 100)
	g.AddEdge(graph.Edge{From: 0, Arc: graph.Arc{To: 1, Length: 120, TravelTime: 3}})
	g.AddArc(1, 2, 70)
	route := []graph.NodeId{0, 1, 2}

	static := cost.NewModel(cost.STATIC)
	result, err := NewDijkstra(g, static).ComputeShortestPath(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, route, result.Path)
	assert.InDelta(t, 3+cost.TravelTime(70, cost.DefaultSpeed), result.Cost, 1e-9)

	assert.Equal(t, 190.0, RouteLength(context.Background(), g, static, route))
	assert.Equal(t, 170.0, RouteLength(context.Background(), g, cost.NewModel(cost.DISTANCE), route))
	assert.Equal(t, 170.0, PathLength(g, route))
	assert.Zero(t, RouteLength(context.Background(), g, static, route[:1]))
}

func TestPathKey(t *testing.T) {
	assert.Equal(t, "0-1-4", PathKey([]graph.NodeId{0, 1, 4}))
	assert.Equal(t, "7", PathKey([]graph.NodeId{7}))
	assert.Equal(t, "", PathKey(nil))
}
