// SPDX-License-Identifier: MIT

package openapi_server

import (
	"fmt"

	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func pointOf(p geometry.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

func pointsOf(points []geometry.Point) []Point {
	result := make([]Point, 0, len(points))
	for _, p := range points {
		result = append(result, pointOf(p))
	}
	return result
}

func (p Point) geometry() geometry.Point {
	return geometry.MakePoint(p.Lat, p.Lon)
}

// AssertPointRequired checks that the coordinate is on the globe. 0 is a valid latitude and longitude.
func AssertPointRequired(obj Point) error {
	if !obj.geometry().Valid() {
		return &ParsingError{Err: fmt.Errorf("coordinate (%v, %v) out of range", obj.Lat, obj.Lon)}
	}
	return nil
}
