// SPDX-License-Identifier: MIT

package openapi_server

type Path struct {
	Length    float64 `json:"length"` // meters
	Cost      float64 `json:"cost"`
	Unit      string  `json:"unit"` // unit of the cost, m or s
	Polyline  string  `json:"polyline"`
	Waypoints []Point `json:"waypoints"`
}

type SearchStatistics struct {
	SettledNodes int `json:"settledNodes"`
	PqPops       int `json:"pqPops"`
	RelaxedEdges int `json:"relaxedEdges"`
}

type RouteResult struct {
	Origin      Point             `json:"origin"`
	Destination Point             `json:"destination"`
	Reachable   bool              `json:"reachable"`
	Navigator   string            `json:"navigator"`
	Mode        string            `json:"mode"`
	Path        *Path             `json:"path,omitempty"`
	Statistics  *SearchStatistics `json:"statistics,omitempty"`
}

type RankedRoute struct {
	Rank        int      `json:"rank"`
	Label       string   `json:"label"`
	AlsoFoundBy []string `json:"alsoFoundBy,omitempty"`
	Path        Path     `json:"path"`
}

type RankedRoutes struct {
	Origin      Point         `json:"origin"`
	Destination Point         `json:"destination"`
	Mode        string        `json:"mode"`
	Routes      []RankedRoute `json:"routes"`
}

type TrafficInfo struct {
	Location Point   `json:"location"`
	Speed    float64 `json:"speed"` // km/h
	Source   string  `json:"source"`
}
