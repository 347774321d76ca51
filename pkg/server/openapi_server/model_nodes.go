package openapi_server

type Nodes struct {
	Count     int     `json:"count"`
	Waypoints []Point `json:"waypoints"`
}
