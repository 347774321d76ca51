package path

import (
	"fmt"

	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

type Direction bool

const (
	FORWARD  Direction = false
	BACKWARD Direction = true
)

func (d Direction) String() string {
	if d == FORWARD {
		return "FORWARD"
	}
	return "BACKWARD"
}

// implements queue.Priorizable
type DijkstraItem struct {
	nodeId          graph.NodeId // node id of this item in the graph
	distance        float64      // cost from the search origin to this node
	heuristic       float64      // lower bound of the remaining cost
	predecessor     graph.NodeId // node id of the predecessor, -1 for the search origin
	index           int          // internal usage
	sequence        uint64       // internal usage
	searchDirection Direction    // search direction (useful for bidirectional search)
}

func NewDijkstraItem(nodeId graph.NodeId, distance float64, predecessor graph.NodeId, heuristic float64, searchDirection Direction) *DijkstraItem {
	return &DijkstraItem{nodeId: nodeId, distance: distance, predecessor: predecessor, index: -1, heuristic: heuristic, searchDirection: searchDirection}
}

func (item *DijkstraItem) NodeId() graph.NodeId      { return item.nodeId }
func (item *DijkstraItem) Distance() float64         { return item.distance }
func (item *DijkstraItem) Predecessor() graph.NodeId { return item.predecessor }
func (item *DijkstraItem) Priority() float64         { return item.distance + item.heuristic }
func (item *DijkstraItem) Index() int                { return item.index }
func (item *DijkstraItem) SetIndex(index int)        { item.index = index }
func (item *DijkstraItem) Sequence() uint64          { return item.sequence }
func (item *DijkstraItem) SetSequence(s uint64)      { item.sequence = s }
func (item *DijkstraItem) String() string {
	return fmt.Sprintf("%v: %v, %v\n", item.index, item.nodeId, item.Priority())
}
