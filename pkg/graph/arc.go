package graph

// Arc is a directed connection to another node.
// Several arcs may lead to the same node, one per physical way.
type Arc struct {
	To         NodeId
	Length     float64 // meters
	TravelTime float64 // seconds, 0 if unknown
	RoadType   string  // highway tag of the way
}

func NewArc(to NodeId, length float64) *Arc {
	arc := MakeArc(to, length)
	return &arc
}

func MakeArc(to NodeId, length float64) Arc {
	return Arc{To: to, Length: length}
}

func (a Arc) Destination() NodeId {
	return a.To
}

func (a Arc) HasTravelTime() bool {
	return a.TravelTime > 0
}
