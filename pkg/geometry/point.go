package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Point is a geographic coordinate stored in orb order (lon, lat).
type Point orb.Point

func MakePoint(lat, lon float64) Point {
	return Point{lon, lat}
}

func NewPoint(lat, lon float64) *Point {
	p := MakePoint(lat, lon)
	return &p
}

func (p Point) Lat() float64 { return p[1] }
func (p Point) Lon() float64 { return p[0] }

func (p Point) Orb() orb.Point { return orb.Point(p) }

// Haversine returns the great-circle distance to q in meters.
func (p *Point) Haversine(q *Point) float64 {
	return geo.DistanceHaversine(p.Orb(), q.Orb())
}

// IntHaversine is the great-circle distance rounded down to whole meters.
func (p *Point) IntHaversine(q *Point) int {
	return int(p.Haversine(q))
}

// DistanceTo returns the great-circle distance to q in meters.
func (p Point) DistanceTo(q Point) float64 {
	return p.Haversine(&q)
}

// Midpoint is the coordinate-wise mean of p and q.
// Edges are short enough that this stays on the segment for speed lookups.
func (p Point) Midpoint(q Point) Point {
	return MakePoint((p.Lat()+q.Lat())/2, (p.Lon()+q.Lon())/2)
}

func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat()) && !math.IsNaN(p.Lon()) &&
		p.Lat() >= -90 && p.Lat() <= 90 && p.Lon() >= -180 && p.Lon() <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("(%v, %v)", p.Lat(), p.Lon())
}

// LineString converts a sequence of points into an orb geometry.
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.Orb()
	}
	return ls
}

// Length sums the great-circle length of a point sequence in meters.
func Length(points []Point) float64 {
	length := 0.0
	for i := 1; i < len(points); i++ {
		length += points[i-1].DistanceTo(points[i])
	}
	return length
}
