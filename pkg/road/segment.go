package road

import (
	"fmt"
	"strings"

	"github.com/paulmach/osm"

	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/slice"
)

type RoadType int

const (
	Unknown RoadType = iota
	Motorway
	Trunk
	Primary
	Secondary
	Tertiary
	Unclassified
	Residential
	LivingStreet
)

var roadTypeNames = []string{"unknown", "motorway", "trunk", "primary", "secondary", "tertiary", "unclassified", "residential", "living_street"}

// String returns the OSM highway value
func (r RoadType) String() string {
	if r < 0 || int(r) >= len(roadTypeNames) {
		return roadTypeNames[Unknown]
	}
	return roadTypeNames[r]
}

// RoadTypeFromHighway maps an OSM highway value to a RoadType.
// Link roads count as the road they connect to.
func RoadTypeFromHighway(highway string) RoadType {
	highway = strings.TrimSuffix(strings.ToLower(highway), "_link")
	for i, name := range roadTypeNames {
		if name == highway {
			return RoadType(i)
		}
	}
	return Unknown
}

func (r RoadType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RoadType) UnmarshalText(text []byte) error {
	t := RoadTypeFromHighway(string(text))
	if t == Unknown && string(text) != roadTypeNames[Unknown] {
		return fmt.Errorf("unknown road type %q", text)
	}
	*r = t
	return nil
}

// Segment is a drivable polyline, usually one OSM way
type Segment struct {
	ID       osm.WayID         `json:"id"`
	Type     RoadType          `json:"type"`
	Nodes    []osm.NodeID      `json:"nodes,omitempty"`
	Points   []geometry.Point  `json:"points"`
	Tags     map[string]string `json:"tags,omitempty"`
	OneWay   bool              `json:"oneway"`
	MaxSpeed int               `json:"maxspeed,omitempty"` // km/h, 0 if not tagged
}

// NewSegment creates a segment without points from the tags of a way.
// Returns false if the way is no road.
func NewSegment(id osm.WayID, tags osm.Tags) (*Segment, bool) {
	roadType := RoadTypeFromHighway(tags.Find("highway"))
	if roadType == Unknown {
		return nil, false
	}
	maxSpeed, _ := ParseMaxSpeed(tags.Find("maxspeed"))
	return &Segment{
		ID:       id,
		Type:     roadType,
		Tags:     tags.Map(),
		OneWay:   IsOneWay(tags.Find("oneway"), roadType),
		MaxSpeed: maxSpeed,
	}, true
}

// IsOneWay interprets the oneway tag. Motorways are one way unless tagged otherwise.
func IsOneWay(oneway string, roadType RoadType) bool {
	switch oneway {
	case "yes", "true", "1", "-1":
		return true
	case "no", "false", "0":
		return false
	}
	return roadType == Motorway
}

func (s *Segment) AddPoint(id osm.NodeID, p geometry.Point) {
	s.Nodes = append(s.Nodes, id)
	s.Points = append(s.Points, p)
}

// Normalize brings a way tagged oneway=-1 into driving direction and drops repeated points.
func (s *Segment) Normalize() {
	if s.Tags["oneway"] == "-1" {
		slice.ReverseInPlace(s.Nodes)
		slice.ReverseInPlace(s.Points)
		s.Tags["oneway"] = "yes"
	}
	if len(s.Nodes) != len(s.Points) {
		// node ids are optional
		s.Nodes = nil
		s.Points = slice.Dedup(s.Points)
		return
	}
	j := 0
	for i := range s.Points {
		if j > 0 && s.Points[i] == s.Points[j-1] {
			continue
		}
		s.Points[j], s.Nodes[j] = s.Points[i], s.Nodes[i]
		j++
	}
	s.Points, s.Nodes = s.Points[:j], s.Nodes[:j]
}

func (s *Segment) Start() geometry.Point { return s.Points[0] }
func (s *Segment) End() geometry.Point   { return s.Points[len(s.Points)-1] }

// Length in meters
func (s *Segment) Length() float64 {
	return geometry.Length(s.Points)
}
