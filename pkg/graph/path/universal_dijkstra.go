package path

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/queue"
)

// MeetingRule decides when a bidirectional search stops
type MeetingRule byte

const (
	// Stop as soon as one frontier can not improve the best connection anymore. The result is optimal.
	OPTIMAL MeetingRule = iota
	// Stop at the first node settled by both searches. Fast, but the result may be longer than optimal.
	FIRST_INTERSECTION
)

func (r MeetingRule) String() string {
	if r == FIRST_INTERSECTION {
		return "first-intersection"
	}
	return "optimal"
}

func MeetingRuleFromString(s string) (MeetingRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "optimal":
		return OPTIMAL, nil
	case "first-intersection", "first_intersection", "intersection":
		return FIRST_INTERSECTION, nil
	}
	return OPTIMAL, fmt.Errorf("unknown meeting rule %q", s)
}

type SearchStats struct {
	minHeap     *queue.MinHeap[*DijkstraItem] // frontier of this direction
	settled     []bool                        // Array which indicates if a node (defined by index) was settled in the search
	searchSpace []*DijkstraItem               // search space, a map really reduces performance. Holds the best known item per node
}

type SearchOptions struct {
	useHeuristic       bool        // flag indicating if heuristic (remaining cost) should be used (AStar implementation)
	bidirectional      bool        // flag indicating if search should be done from both sides
	meetingRule        MeetingRule // stop criterion of the bidirectional search
	costUpperBound     float64     // upper bound of cost from origin to destination
	maxNumSettledNodes int         // maximum number of settled nodes before search is terminated
}

// Describes the connection of a bidirectional search
type BidirectionalConnection struct {
	predecessor graph.NodeId // the last node of the forward search, -1 if no connection was found
	successor   graph.NodeId // the first node of the backward search
	distance    float64      // the whole distance (in both directions)
}

// arcKey identifies an arc relaxed in a given direction
type arcKey struct {
	direction Direction
	nodeId    graph.NodeId
	index     int
}

// searchState holds everything a single computation writes to
type searchState struct {
	ctx         context.Context
	origin      graph.NodeId // the origin of the current search
	destination graph.NodeId // the destination of the current search

	forwardSearch           SearchStats
	backwardSearch          SearchStats
	bidirectionalConnection BidirectionalConnection // contains the best connection between the forward and backward search

	arcCosts   map[arcKey]float64 // each arc is priced once per search and direction
	searchKPIs SearchKPIs
}

// UniversalDijkstra implements various path finding algorithms which all are based on Dijkstra.
// it can be used for plain Dijkstra, A* and Bidirectional search (with or without heuristic).
// The configuration is set up front, every computation works on its own search state.
// Implements the Navigator Interface.
type UniversalDijkstra struct {
	g     graph.Graph
	model *cost.Model

	reverse     graph.Graph // arcs of g flipped, used by the backward search
	reverseOnce sync.Once

	searchOptions SearchOptions
	logger        *zap.Logger
}

// Create a new Dijkstra instance with the given graph g and cost model
func NewUniversalDijkstra(g graph.Graph, model *cost.Model) *UniversalDijkstra {
	if model == nil {
		model = cost.NewModel(cost.DISTANCE)
	}
	options := SearchOptions{costUpperBound: math.Inf(1), maxNumSettledNodes: math.MaxInt}
	return &UniversalDijkstra{g: g, model: model, searchOptions: options, logger: zap.NewNop()}
}

// Uniform cost search
func NewDijkstra(g graph.Graph, model *cost.Model) *UniversalDijkstra {
	return NewUniversalDijkstra(g, model)
}

// Search guided by the lower bound of the cost model
func NewAStar(g graph.Graph, model *cost.Model) *UniversalDijkstra {
	d := NewUniversalDijkstra(g, model)
	d.SetUseHeuristic(true)
	return d
}

// Bidirectional A* with the optimal meeting rule
func NewBidirectional(g graph.Graph, model *cost.Model) *UniversalDijkstra {
	d := NewUniversalDijkstra(g, model)
	d.SetUseHeuristic(true)
	d.SetBidirectional(true)
	return d
}

func (d *UniversalDijkstra) Name() string {
	switch {
	case d.searchOptions.bidirectional && d.searchOptions.useHeuristic:
		return "Bidirectional"
	case d.searchOptions.bidirectional:
		return "Bidirectional Dijkstra"
	case d.searchOptions.useHeuristic:
		return "A*"
	}
	return "Dijkstra"
}

// Compute the shortest path from the origin to the destination.
// If no path exists, the result holds an empty path and NoPathCost.
// Invalid endpoints are reported before the search starts.
func (d *UniversalDijkstra) ComputeShortestPath(ctx context.Context, origin, destination graph.NodeId) (Result, error) {
	if err := validateRequest(d.g, origin, destination); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, aborted(err)
	}

	d.logger.Debug("New search",
		zap.String("algorithm", d.Name()),
		zap.Int("origin", origin),
		zap.Int("destination", destination),
		zap.Stringer("mode", d.model.Mode()))

	if origin == destination {
		// path with one node is the result
		return Result{Path: []graph.NodeId{origin}, Cost: 0}, nil
	}

	st := d.initializeSearch(ctx, origin, destination)

	var result Result
	var err error
	if d.searchOptions.bidirectional {
		result, err = d.bidirectionalSearch(st)
	} else {
		result, err = d.unidirectionalSearch(st)
	}
	if err != nil {
		return Result{}, err
	}

	if result.Found() {
		d.logger.Debug("Found path",
			zap.Int("origin", origin),
			zap.Int("destination", destination),
			zap.Float64("cost", result.Cost),
			zap.Int("hops", len(result.Path)),
			zap.Int("pqPops", result.KPIs.PqPops))
	} else {
		d.logger.Debug("Finished search, no path found", zap.Int("origin", origin), zap.Int("destination", destination))
	}
	return result, nil
}

func (d *UniversalDijkstra) unidirectionalSearch(st *searchState) (Result, error) {
	search := &st.forwardSearch
	for search.minHeap.Len() > 0 {
		if err := st.ctx.Err(); err != nil {
			return Result{}, aborted(err)
		}

		currentNode := d.popAndSettle(st, FORWARD)

		if currentNode.nodeId == st.destination {
			path := reconstruct(st.origin, st.destination, d.g.NodeCount(), func(n graph.NodeId) graph.NodeId {
				return search.searchSpace[n].predecessor
			})
			return Result{Path: path, Cost: currentNode.distance, KPIs: st.searchKPIs}, nil
		}

		if d.exceedsLimits(st, currentNode) {
			return noPath(st.searchKPIs), nil
		}

		d.relaxEdges(st, currentNode)
	}
	return noPath(st.searchKPIs), nil
}

// bidirectionalSearch alternates between the forward and the backward frontier
func (d *UniversalDijkstra) bidirectionalSearch(st *searchState) (Result, error) {
	forward, backward := &st.forwardSearch, &st.backwardSearch
	direction := FORWARD

	for forward.minHeap.Len() > 0 && backward.minHeap.Len() > 0 {
		if err := st.ctx.Err(); err != nil {
			return Result{}, aborted(err)
		}

		if d.searchOptions.meetingRule == OPTIMAL && st.bidirectionalConnection.predecessor != -1 {
			// every path through an unsettled node costs at least its key in either direction
			mu := st.bidirectionalConnection.distance
			if forward.minHeap.Peek().Priority() >= mu || backward.minHeap.Peek().Priority() >= mu {
				return d.connectionResult(st), nil
			}
		}

		currentNode := d.popAndSettle(st, direction)
		search, inverseSearch := alignWithSearchDirection(direction, forward, backward)

		if d.searchOptions.meetingRule == FIRST_INTERSECTION && inverseSearch.settled[currentNode.nodeId] {
			meeting := currentNode.nodeId
			st.bidirectionalConnection = BidirectionalConnection{
				predecessor: meeting,
				successor:   meeting,
				distance:    search.searchSpace[meeting].distance + inverseSearch.searchSpace[meeting].distance,
			}
			return d.connectionResult(st), nil
		}

		if d.exceedsLimits(st, currentNode) {
			return noPath(st.searchKPIs), nil
		}

		d.relaxEdges(st, currentNode)
		direction = !direction
	}

	if d.searchOptions.meetingRule == OPTIMAL && st.bidirectionalConnection.predecessor != -1 {
		// one side is exhausted, every connection was seen
		return d.connectionResult(st), nil
	}
	return noPath(st.searchKPIs), nil
}

// connectionResult stitches the forward and backward chain at the connection.
// A stitched path that does not follow real arcs is discarded.
func (d *UniversalDijkstra) connectionResult(st *searchState) Result {
	con := st.bidirectionalConnection
	forward, backward := &st.forwardSearch, &st.backwardSearch

	path := reconstruct(st.origin, con.predecessor, d.g.NodeCount(), func(n graph.NodeId) graph.NodeId {
		return forward.searchSpace[n].predecessor
	})
	if len(path) == 0 {
		return noPath(st.searchKPIs)
	}
	nodeId := con.successor
	if con.successor == con.predecessor {
		// meeting node is already part of the forward chain
		nodeId = backward.searchSpace[nodeId].predecessor
	}
	for ; nodeId != -1; nodeId = backward.searchSpace[nodeId].predecessor {
		path = append(path, nodeId)
		if len(path) > d.g.NodeCount() {
			return noPath(st.searchKPIs)
		}
	}

	if path[len(path)-1] != st.destination || !IsValidPath(d.g, path) {
		d.logger.Warn("Discarding invalid stitched path",
			zap.Int("origin", st.origin),
			zap.Int("destination", st.destination),
			zap.Ints("path", path))
		return noPath(st.searchKPIs)
	}
	return Result{Path: path, Cost: con.distance, KPIs: st.searchKPIs}
}

// Initialize a new search state
func (d *UniversalDijkstra) initializeSearch(ctx context.Context, origin, destination graph.NodeId) *searchState {
	st := &searchState{
		ctx:         ctx,
		origin:      origin,
		destination: destination,
		arcCosts:    make(map[arcKey]float64),
	}
	st.bidirectionalConnection.predecessor = -1

	st.forwardSearch = newSearchStats(d.g.NodeCount())
	originItem := NewDijkstraItem(origin, 0, -1, d.heuristicValue(origin, destination), FORWARD)
	st.forwardSearch.searchSpace[origin] = originItem
	st.forwardSearch.minHeap.Push(originItem)

	// for bidirectional algorithm
	if d.searchOptions.bidirectional {
		st.backwardSearch = newSearchStats(d.g.NodeCount())
		destinationItem := NewDijkstraItem(destination, 0, -1, d.heuristicValue(destination, origin), BACKWARD)
		st.backwardSearch.searchSpace[destination] = destinationItem
		st.backwardSearch.minHeap.Push(destinationItem)
	}
	return st
}

func newSearchStats(size int) SearchStats {
	return SearchStats{
		minHeap:     queue.NewMinHeap[*DijkstraItem](nil),
		settled:     make([]bool, size),
		searchSpace: make([]*DijkstraItem, size),
	}
}

// Take the next item of the given direction and settle it
func (d *UniversalDijkstra) popAndSettle(st *searchState, direction Direction) *DijkstraItem {
	search, _ := alignWithSearchDirection(direction, &st.forwardSearch, &st.backwardSearch)
	node := search.minHeap.Pop()
	st.searchKPIs.PqPops++
	if !search.settled[node.nodeId] {
		search.settled[node.nodeId] = true
		st.searchKPIs.SettledNodes++
	}
	return node
}

// Check whether the search space limits are reached
func (d *UniversalDijkstra) exceedsLimits(st *searchState, node *DijkstraItem) bool {
	if node.Priority() > d.searchOptions.costUpperBound || st.searchKPIs.SettledNodes > d.searchOptions.maxNumSettledNodes {
		// Each following node exceeds the max allowed cost or the number of allowed nodes is reached
		d.logger.Debug("Exceeded limits",
			zap.Float64("costUpperBound", d.searchOptions.costUpperBound),
			zap.Float64("currentCost", node.Priority()),
			zap.Int("maxSettledNodes", d.searchOptions.maxNumSettledNodes),
			zap.Int("settledNodes", st.searchKPIs.SettledNodes))
		return true
	}
	return false
}

// Cost of the i-th arc leaving nodeId in the graph of the given direction
func (d *UniversalDijkstra) arcCost(st *searchState, direction Direction, nodeId graph.NodeId, i int, arc graph.Arc) float64 {
	key := arcKey{direction: direction, nodeId: nodeId, index: i}
	if c, ok := st.arcCosts[key]; ok {
		return c
	}
	// backward arcs are priced in their original orientation
	from, to := alignWithSearchDirection(direction, nodeId, arc.To)
	c := d.model.ArcCost(st.ctx, d.g.GetNode(from), d.g.GetNode(to), arc)
	st.arcCosts[key] = c
	return c
}

// Relax the arcs of the given node item and add the improved nodes to the priority queue of its direction.
// Parallel arcs are relaxed one by one, so the cheapest one wins.
func (d *UniversalDijkstra) relaxEdges(st *searchState, node *DijkstraItem) {
	g := d.g
	if node.searchDirection == BACKWARD {
		g = d.reverseGraph()
	}
	searchStats, inverseSearchStats := alignWithSearchDirection(node.searchDirection, &st.forwardSearch, &st.backwardSearch)
	searchSpace, inverseSearchSpace := searchStats.searchSpace, inverseSearchStats.searchSpace

	target := st.destination
	if node.searchDirection == BACKWARD {
		target = st.origin
	}

	for i, arc := range g.GetArcsFrom(node.nodeId) {
		st.searchKPIs.RelaxationAttempts++
		successor := arc.Destination()
		if successor == node.nodeId {
			// loops never shorten a path
			continue
		}
		arcCost := d.arcCost(st, node.searchDirection, node.nodeId, i, arc)
		distance := node.distance + arcCost

		if d.searchOptions.bidirectional && inverseSearchSpace[successor] != nil {
			// potential connection. Default direction is forward
			// if it is backward, switch successor and predecessor
			connectionPredecessor, connectionSuccessor := alignWithSearchDirection(node.searchDirection, node.nodeId, successor)
			connectionDistance := distance + inverseSearchSpace[successor].distance
			if st.bidirectionalConnection.predecessor == -1 || connectionDistance < st.bidirectionalConnection.distance {
				st.bidirectionalConnection.predecessor = connectionPredecessor
				st.bidirectionalConnection.successor = connectionSuccessor
				st.bidirectionalConnection.distance = connectionDistance
			}
		}

		if searchSpace[successor] == nil {
			heuristic := 0.0
			if d.searchOptions.useHeuristic {
				heuristic = d.heuristicValue(successor, target)
			}
			nextNode := NewDijkstraItem(successor, distance, node.nodeId, heuristic, node.searchDirection)
			searchSpace[successor] = nextNode
			searchStats.minHeap.Push(nextNode)
			st.searchKPIs.PqUpdates++
		} else if distance < searchSpace[successor].distance {
			item := searchSpace[successor]
			item.distance = distance
			item.predecessor = node.nodeId
			if item.index < 0 {
				// reopen, only possible with an inconsistent heuristic
				searchStats.settled[successor] = false
				searchStats.minHeap.Push(item)
			} else {
				searchStats.minHeap.Update(item)
			}
			st.searchKPIs.PqUpdates++
		} else {
			continue
		}
		st.searchKPIs.RelaxedEdges++
	}
}

// The reversed graph is built on first use unless it was provided
func (d *UniversalDijkstra) reverseGraph() graph.Graph {
	d.reverseOnce.Do(func() {
		if d.reverse == nil {
			d.reverse = graph.Reverse(d.g)
		}
	})
	return d.reverse
}

// helper function for AStar to calculate the heuristic value from a node to the target
// Returns 0 if useHeuristic is false
func (d *UniversalDijkstra) heuristicValue(nodeId, target graph.NodeId) float64 {
	if d.searchOptions.useHeuristic {
		return d.model.LowerBound(d.g.GetNode(nodeId), d.g.GetNode(target))
	}
	return 0
}

// Specify whether a heuristic for path finding (AStar) should be used
func (d *UniversalDijkstra) SetUseHeuristic(useHeuristic bool) {
	d.searchOptions.useHeuristic = useHeuristic
}

// Specify whether the search should be done in both directions
func (d *UniversalDijkstra) SetBidirectional(bidirectional bool) {
	d.searchOptions.bidirectional = bidirectional
}

// Set the stop criterion of the bidirectional search
func (d *UniversalDijkstra) SetMeetingRule(rule MeetingRule) {
	d.searchOptions.meetingRule = rule
}

// Provide the reversed graph, e.g. to share it between several instances.
// Must be called before the first computation.
func (d *UniversalDijkstra) SetReverseGraph(reverse graph.Graph) {
	d.reverse = reverse
}

// Set the upper cost for a valid path from source to target
func (d *UniversalDijkstra) SetCostUpperBound(costUpperBound float64) {
	d.searchOptions.costUpperBound = costUpperBound
}

// Set the maximum number of nodes that can get settled before the search is terminated
func (d *UniversalDijkstra) SetMaxNumSettledNodes(maxNumSettledNodes int) {
	d.searchOptions.maxNumSettledNodes = maxNumSettledNodes
}

func (d *UniversalDijkstra) SetLogger(logger *zap.Logger) {
	d.logger = logger
}

// Get the used graph
func (d *UniversalDijkstra) GetGraph() graph.Graph { return d.g }

// Get the used cost model
func (d *UniversalDijkstra) GetCostModel() *cost.Model { return d.model }

// helper function to align the given items a,b with the search direction.
// if FORWARD, a and b don't change
// if BACKWARD, a and b are swapped
func alignWithSearchDirection[T any](searchDirection Direction, a, b T) (T, T) {
	if searchDirection == FORWARD {
		return a, b
	}
	return b, a
}

// compile time check
var _ Navigator = (*UniversalDijkstra)(nil)
