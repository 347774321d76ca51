package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

const cuttableGraph = `13
42
#Nodes
0 0 0
1 0 2
2 1 1
3 1 2
4 2 0
5 2 1
6 2 2
7 3 0
8 3 1
9 3 3
10 5 0
11 4 1
12 5 2
#Edges
0 1 3
0 2 4
0 4 7
1 0 3
1 2 5
1 3 2
2 0 4
2 1 5
2 3 2
2 5 1
3 1 2
3 2 2
3 6 5
4 0 7
4 5 4
4 7 6
5 2 1
5 4 4
5 6 3
5 8 1
6 3 5
6 5 3
6 9 7
7 4 6
7 8 3
7 10 5
8 5 1
8 7 3
8 9 3
8 11 1
9 6 7
9 8 3
9 12 4
10 7 5
10 11 2
10 12 4
11 8 1
11 10 2
11 12 3
12 9 4
12 10 4
12 11 3
`

const multiGraph = `3
5
#Nodes
0 52.5 13.4
1 52.51 13.41
2 52.52 13.42
#Edges
0 1 1200.5
0 1 1000 45.5 primary
0 2 3000 0 residential
1 2 900
2 0 2500
`

func TestGraphReading(t *testing.T) {
	alg, err := NewAdjacencyListFromFmiString(cuttableGraph)
	require.NoError(t, err)
	if alg.AsString() != cuttableGraph {
		t.Errorf("Graph wrongly parsed\n")
	}
}

func TestGraphReadingAttributes(t *testing.T) {
	alg, err := NewAdjacencyListFromFmiString(multiGraph)
	require.NoError(t, err)
	assert.Equal(t, multiGraph, alg.AsString())

	arcs := alg.GetArcsFrom(0)
	require.Len(t, arcs, 3)
	assert.Equal(t, Arc{To: 1, Length: 1200.5}, arcs[0])
	assert.Equal(t, Arc{To: 1, Length: 1000, TravelTime: 45.5, RoadType: "primary"}, arcs[1])
	assert.Equal(t, "residential", arcs[2].RoadType)
	assert.False(t, arcs[2].HasTravelTime())
}

func TestMalformedFmi(t *testing.T) {
	cases := map[string]string{
		"node count":          "x\n0\n",
		"edge count":          "1\nx\n",
		"missing node":        "1\n1\n0 1 1\n0 1 5\n",
		"edge count mismatch": "2\n2\n0 1 1\n1 2 2\n0 1 5\n",
		"negative length":     "2\n1\n0 1 1\n1 2 2\n0 1 -5\n",
		"duplicate node":      "2\n0\n0 1 1\n0 2 2\n",
	}
	for name, fmi := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewAdjacencyListFromFmiString(fmi)
			assert.ErrorIs(t, err, ErrMalformedFmi)
		})
	}
}

func TestParallelArcs(t *testing.T) {
	alg := NewAdjacencyListGraph()
	a := alg.AddNode(geo.MakePoint(0, 0))
	b := alg.AddNode(geo.MakePoint(0, 1))

	assert.True(t, alg.AddArc(a, b, 10))
	assert.True(t, alg.AddArc(a, b, 5))
	assert.True(t, alg.AddArc(a, b, 10))
	assert.False(t, alg.AddArc(a, 7, 10))
	assert.False(t, alg.AddArc(a, b, -1))

	assert.Equal(t, 3, alg.ArcCount())
	assert.Len(t, alg.GetArcsFrom(a), 3)

	arc, ok := MinArc(alg, a, b)
	assert.True(t, ok)
	assert.Equal(t, 5.0, arc.Length)
	assert.True(t, HasArc(alg, a, b))
	assert.False(t, HasArc(alg, b, a))
	assert.Equal(t, []NodeId{b}, Successors(alg, a))
	assert.Empty(t, Successors(alg, b))
}

func TestReverse(t *testing.T) {
	alg, err := NewAdjacencyListFromFmiString(multiGraph)
	require.NoError(t, err)
	before := alg.AsString()

	rev := Reverse(alg)
	assert.Equal(t, before, alg.AsString(), "reversing must not modify the graph")
	assert.Equal(t, alg.NodeCount(), rev.NodeCount())
	assert.Equal(t, alg.ArcCount(), rev.ArcCount())

	// 1 has two incoming arcs from 0, both must survive
	assert.Len(t, rev.GetArcsFrom(1), 2)
	for _, e := range Edges(alg) {
		assert.True(t, HasArc(rev, e.To, e.From), "missing reversed arc %v", e)
	}
	assert.ElementsMatch(t, Edges(alg), Edges(Reverse(rev)))
}

func TestArrayGraph(t *testing.T) {
	aag, err := NewAdjacencyArrayFromFmiString(multiGraph)
	require.NoError(t, err)
	assert.Equal(t, multiGraph, aag.AsString())
	assert.Equal(t, 3, aag.NodeCount())
	assert.Equal(t, 5, aag.ArcCount())
	assert.Len(t, aag.GetArcsFrom(0), 3)
	assert.Panics(t, func() { aag.GetArcsFrom(3) })
}

func TestValidate(t *testing.T) {
	alg, err := NewAdjacencyListFromFmiString(cuttableGraph)
	require.NoError(t, err)
	assert.NoError(t, Validate(alg))

	alg.Edges[0] = append(alg.Edges[0], Arc{To: 99, Length: 1})
	assert.ErrorIs(t, Validate(alg), ErrDanglingArc)

	alg.Edges[0] = alg.Edges[0][:len(alg.Edges[0])-1]
	alg.Edges[1][0].Length = -3
	assert.ErrorIs(t, Validate(alg), ErrNegativeLength)
}

func TestWriteFmi(t *testing.T) {
	alg, err := NewAdjacencyListFromFmiString(multiGraph)
	require.NoError(t, err)

	file := t.TempDir() + "/graph.fmi"
	require.NoError(t, WriteFmi(alg, file))

	read, err := NewAdjacencyListFromFmiFile(file)
	require.NoError(t, err)
	assert.Equal(t, alg.AsString(), read.AsString())
}
