package road

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

func TestRoadTypeFromHighway(t *testing.T) {
	assert.Equal(t, Motorway, RoadTypeFromHighway("motorway"))
	assert.Equal(t, Motorway, RoadTypeFromHighway("motorway_link"))
	assert.Equal(t, LivingStreet, RoadTypeFromHighway("living_street"))
	assert.Equal(t, Residential, RoadTypeFromHighway("Residential"))
	assert.Equal(t, Unknown, RoadTypeFromHighway("footway"))
	assert.Equal(t, "secondary", Secondary.String())
	assert.Equal(t, "unknown", RoadType(42).String())
}

func TestNewSegment(t *testing.T) {
	tags := osm.Tags{{Key: "highway", Value: "primary"}, {Key: "maxspeed", Value: "70"}, {Key: "oneway", Value: "yes"}}
	s, ok := NewSegment(12, tags)
	require.True(t, ok)
	assert.Equal(t, osm.WayID(12), s.ID)
	assert.Equal(t, Primary, s.Type)
	assert.Equal(t, 70, s.MaxSpeed)
	assert.True(t, s.OneWay)
	assert.Equal(t, "primary", s.Tags["highway"])

	motorway, ok := NewSegment(13, osm.Tags{{Key: "highway", Value: "motorway"}})
	require.True(t, ok)
	assert.True(t, motorway.OneWay)

	_, ok = NewSegment(14, osm.Tags{{Key: "highway", Value: "footway"}})
	assert.False(t, ok)
	_, ok = NewSegment(15, osm.Tags{{Key: "building", Value: "yes"}})
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	s, ok := NewSegment(1, osm.Tags{{Key: "highway", Value: "residential"}, {Key: "oneway", Value: "-1"}})
	require.True(t, ok)
	s.AddPoint(1, geometry.MakePoint(52.0, 13.0))
	s.AddPoint(2, geometry.MakePoint(52.1, 13.0))
	s.AddPoint(2, geometry.MakePoint(52.1, 13.0))
	s.AddPoint(3, geometry.MakePoint(52.2, 13.0))
	s.Normalize()

	assert.True(t, s.OneWay)
	assert.Equal(t, []osm.NodeID{3, 2, 1}, s.Nodes)
	assert.Equal(t, geometry.MakePoint(52.2, 13.0), s.Start())
	assert.Equal(t, geometry.MakePoint(52.0, 13.0), s.End())

	// a second call keeps the direction
	s.Normalize()
	assert.Equal(t, []osm.NodeID{3, 2, 1}, s.Nodes)
}

func TestParseMaxSpeed(t *testing.T) {
	cases := map[string]int{
		"50":          50,
		"30 mph":      48,
		"100 km/h":    100,
		"walk":        10,
		"none":        130,
		"DE:urban":    50,
		"AT:rural":    100,
		"60;40":       60,
		"RU:motorway": 130,
	}
	for value, expected := range cases {
		speed, ok := ParseMaxSpeed(value)
		if !ok || speed != expected {
			t.Errorf("maxspeed %q parsed as %v (%v), expected %v", value, speed, ok, expected)
		}
	}
	for _, value := range []string{"", "signals", "-5", "fast"} {
		_, ok := ParseMaxSpeed(value)
		assert.False(t, ok, value)
	}
}

func TestProfile(t *testing.T) {
	car := DefaultProfile()
	assert.Equal(t, 120.0, car.BaseSpeed(Motorway))
	assert.Equal(t, 30.0, car.BaseSpeed(Residential))

	truck, ok := ProfileFor("Truck")
	require.True(t, ok)
	assert.Equal(t, 90.0, truck.Speed(&Segment{Type: Motorway, MaxSpeed: 130}))
	assert.Equal(t, 50.0, truck.Speed(&Segment{Type: Motorway, MaxSpeed: 50}))
	assert.Equal(t, 100.0, truck.Speed(&Segment{Type: Motorway}))

	_, ok = ProfileFor("boat")
	assert.False(t, ok)
}

func line(id osm.WayID, roadType RoadType, lats ...float64) *Segment {
	s := &Segment{ID: id, Type: roadType, Tags: map[string]string{}}
	for _, lat := range lats {
		s.Points = append(s.Points, geometry.MakePoint(lat, 13.0))
	}
	return s
}

func TestMerger(t *testing.T) {
	roads := []*Segment{
		line(1, Primary, 52.0, 52.1),
		line(2, Primary, 52.1, 52.2),
		line(3, Primary, 52.2, 52.3),
		// different type, stays separate
		line(4, Secondary, 52.3, 52.4),
		// a single point is no road
		line(5, Primary, 51.9),
	}
	merger := NewMerger(roads)
	merger.Merge()

	merged := merger.Roads()
	require.Len(t, merged, 2)
	assert.Equal(t, osm.WayID(1), merged[0].ID)
	assert.Len(t, merged[0].Points, 4)
	assert.Equal(t, geometry.MakePoint(52.3, 13.0), merged[0].End())
	assert.Equal(t, osm.WayID(4), merged[1].ID)
	assert.Equal(t, 2, merger.MergeCount())
	assert.Equal(t, 1, merger.UnmergableRoadCount())
}

func TestMergerKeepsJunctions(t *testing.T) {
	roads := []*Segment{
		line(1, Primary, 52.0, 52.1),
		line(2, Primary, 52.1, 52.2),
		line(3, Primary, 52.1, 52.15),
	}
	merger := NewMerger(roads)
	merger.Merge()
	assert.Len(t, merger.Roads(), 3)
	assert.Zero(t, merger.MergeCount())
}

func TestBuildGraph(t *testing.T) {
	twoWay := line(1, Residential, 52.0, 52.001, 52.002)
	oneWay := line(2, Primary, 52.002, 52.003)
	oneWay.OneWay = true
	oneWay.MaxSpeed = 50

	g := BuildGraph([]*Segment{twoWay, oneWay, line(3, Primary, 52.5)}, DefaultProfile())
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 5, g.ArcCount())
	assert.NoError(t, graph.Validate(g))

	arc, ok := graph.MinArc(g, 2, 3)
	require.True(t, ok)
	assert.InDelta(t, 111.2, arc.Length, 0.5)
	assert.InDelta(t, cost.TravelTime(arc.Length, 50), arc.TravelTime, 1e-9)
	assert.Equal(t, "primary", arc.RoadType)
	assert.False(t, graph.HasArc(g, 3, 2))

	back, ok := graph.MinArc(g, 1, 0)
	require.True(t, ok)
	assert.InDelta(t, cost.TravelTime(back.Length, 30), back.TravelTime, 1e-9)
	assert.Equal(t, "residential", back.RoadType)
}

func TestSegmentJSON(t *testing.T) {
	s := line(7, Tertiary, 52.0, 52.1)
	s.Nodes = []osm.NodeID{100, 101}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"tertiary"`)

	var decoded Segment
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Tertiary, decoded.Type)
	assert.Equal(t, s.Points, decoded.Points)
	assert.Equal(t, s.Nodes, decoded.Nodes)
}
