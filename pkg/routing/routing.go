package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/internal/metrics"
	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/graph/path"
)

// RouteConfig selects how a single route is computed. Empty values use the router defaults.
type RouteConfig struct {
	Navigator string // strategy name
	Mode      string // cost mode name
}

// RankConfig selects how routes are ranked. Empty values use the router defaults.
type RankConfig struct {
	Mode     string
	Count    int  // number of candidates, DefaultRankCount if 0
	Distinct bool // fold identical paths of different planners
}

// Route is the result of a routing request
type Route struct {
	Origin          geometry.Point // requested origin
	Destination     geometry.Point // requested destination
	OriginNode      graph.NodeId
	DestinationNode graph.NodeId
	Exists          bool
	Path            []graph.NodeId
	Waypoints       []geometry.Point
	Length          float64 // meters
	Cost            float64 // in the unit of Mode
	Mode            cost.Mode
	Strategy        Strategy
	Polyline        string
	KPIs            path.SearchKPIs
}

type Option func(*Router)

func WithStrategy(strategy Strategy) Option {
	return func(r *Router) { r.strategy = strategy }
}

func WithMode(mode cost.Mode) Option {
	return func(r *Router) { r.mode = mode }
}

func WithHeuristicSpeed(kmh float64) Option {
	return func(r *Router) { r.heuristicSpeed = kmh }
}

func WithDefaultSpeed(kmh float64) Option {
	return func(r *Router) { r.defaultSpeed = kmh }
}

// WithMaxSpeed caps the live speeds of the TRAFFIC mode
func WithMaxSpeed(kmh float64) Option {
	return func(r *Router) { r.maxSpeed = kmh }
}

func WithQLearningOptions(options path.QLearningOptions) Option {
	return func(r *Router) { r.rlOptions = options }
}

// WithMeetingRule sets the stop criterion of the bidirectional planner
func WithMeetingRule(rule path.MeetingRule) Option {
	return func(r *Router) { r.meetingRule = rule }
}

// WithTimeout bounds every planner run, 0 disables the limit
func WithTimeout(timeout time.Duration) Option {
	return func(r *Router) { r.timeout = timeout }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

func WithMetrics(m *metrics.Metric) Option {
	return func(r *Router) { r.metrics = m }
}

// Router answers route requests on a fixed graph. It is safe for concurrent use.
type Router struct {
	graph   graph.Graph
	reverse graph.Graph // shared by all bidirectional planners
	index   *nodeIndex
	speeds  cost.SpeedSource
	models  map[cost.Mode]*cost.Model

	mu       sync.RWMutex
	strategy Strategy
	mode     cost.Mode

	heuristicSpeed float64
	defaultSpeed   float64
	maxSpeed       float64
	meetingRule    path.MeetingRule
	rlOptions      path.QLearningOptions
	timeout        time.Duration
	logger         *zap.Logger
	metrics        *metrics.Metric
}

// NewRouter creates a router on g. speeds provides the live speeds of the TRAFFIC mode and may be nil.
func NewRouter(g graph.Graph, speeds cost.SpeedSource, options ...Option) *Router {
	r := &Router{
		graph:          g,
		speeds:         speeds,
		strategy:       DIJKSTRA,
		mode:           cost.TRAFFIC,
		heuristicSpeed: cost.HeuristicSpeed,
		defaultSpeed:   cost.DefaultSpeed,
		maxSpeed:       cost.MaxSpeed,
		rlOptions:      path.DefaultQLearningOptions(),
		logger:         zap.NewNop(),
	}
	for _, option := range options {
		option(r)
	}

	r.reverse = graph.Reverse(g)
	r.index = newNodeIndex(g)

	// precomputed travel times and the default speed may be faster than the heuristic speed
	staticSpeed := math.Max(r.heuristicSpeed, math.Max(r.defaultSpeed, cost.FastestSpeed(g)))
	live := cost.NewModel(cost.TRAFFIC,
		cost.WithSpeedSource(speeds),
		cost.WithDefaultSpeed(r.defaultSpeed),
		cost.WithHeuristicSpeed(r.heuristicSpeed),
		cost.WithMaxSpeed(r.maxSpeed))
	r.models = map[cost.Mode]*cost.Model{
		cost.DISTANCE: cost.NewModel(cost.DISTANCE),
		cost.STATIC:   cost.NewModel(cost.STATIC, cost.WithDefaultSpeed(r.defaultSpeed), cost.WithHeuristicSpeed(staticSpeed)),
		cost.TRAFFIC:  live,
	}

	r.logger.Info("Router ready",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("arcs", g.ArcCount()),
		zap.Stringer("navigator", r.strategy),
		zap.Stringer("mode", r.mode),
		zap.Float64("staticHeuristicSpeed", staticSpeed),
		zap.Float64("trafficHeuristicSpeed", live.HeuristicSpeed()))
	return r
}

// SetNavigator changes the default strategy. Returns false for unknown names.
func (r *Router) SetNavigator(navigatorType string) bool {
	strategy, err := StrategyFromString(navigatorType)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategy = strategy
	return true
}

// Navigator returns the default strategy
func (r *Router) Navigator() Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strategy
}

func (r *Router) Mode() cost.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

func (r *Router) Graph() graph.Graph { return r.graph }

// GetNodes returns the coordinates of all nodes
func (r *Router) GetNodes() []geometry.Point {
	return r.graph.GetNodes()
}

// NearestNode returns the node closest to p
func (r *Router) NearestNode(p geometry.Point) (graph.NodeId, error) {
	if !p.Valid() {
		return -1, fmt.Errorf("%w: coordinate %v", path.ErrInvalidEndpoint, p)
	}
	id := r.index.nearest(p)
	if id < 0 {
		return -1, path.ErrEmptyGraph
	}
	return id, nil
}

func (r *Router) resolve(navigator, mode string) (Strategy, cost.Mode, error) {
	r.mu.RLock()
	strategy, costMode := r.strategy, r.mode
	r.mu.RUnlock()

	var err error
	if navigator != "" {
		if strategy, err = StrategyFromString(navigator); err != nil {
			return strategy, costMode, err
		}
	}
	if mode != "" {
		if costMode, err = cost.ModeFromString(mode); err != nil {
			return strategy, costMode, err
		}
	}
	return strategy, costMode, nil
}

// navigator creates a planner. Planners are cheap, all search state is allocated per computation.
func (r *Router) navigator(strategy Strategy, model *cost.Model) path.Navigator {
	switch strategy {
	case ASTAR:
		astar := path.NewAStar(r.graph, model)
		astar.SetLogger(r.logger)
		return astar
	case BIDIRECTIONAL:
		bid := path.NewBidirectional(r.graph, model)
		bid.SetReverseGraph(r.reverse)
		bid.SetMeetingRule(r.meetingRule)
		bid.SetLogger(r.logger)
		return bid
	case RL:
		rl := path.NewQLearning(r.graph, model, r.rlOptions)
		rl.SetLogger(r.logger)
		return rl
	default:
		d := path.NewDijkstra(r.graph, model)
		d.SetLogger(r.logger)
		return d
	}
}

func (r *Router) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

func (r *Router) observe(strategy Strategy, start time.Time, result path.Result, err error) {
	outcome := metrics.PlanFound
	switch {
	case errors.Is(err, path.ErrSearchAborted):
		outcome = metrics.PlanAborted
	case err != nil:
		outcome = metrics.PlanInvalid
	case !result.Found():
		outcome = metrics.PlanNoPath
	}
	r.metrics.ObservePlan(strategy.String(), outcome, time.Since(start), result.KPIs.SettledNodes)
}

// ComputeRoute snaps both coordinates to their nearest nodes and computes a route between them
func (r *Router) ComputeRoute(ctx context.Context, origin, destination geometry.Point, config RouteConfig) (Route, error) {
	originNode, err := r.NearestNode(origin)
	if err != nil {
		return Route{}, err
	}
	destinationNode, err := r.NearestNode(destination)
	if err != nil {
		return Route{}, err
	}
	route, err := r.ComputeNodeRoute(ctx, originNode, destinationNode, config)
	route.Origin, route.Destination = origin, destination
	return route, err
}

// ComputeNodeRoute computes a route between two nodes with the configured strategy and cost mode
func (r *Router) ComputeNodeRoute(ctx context.Context, origin, destination graph.NodeId, config RouteConfig) (Route, error) {
	strategy, mode, err := r.resolve(config.Navigator, config.Mode)
	if err != nil {
		return Route{}, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := r.navigator(strategy, r.models[mode]).ComputeShortestPath(ctx, origin, destination)
	r.observe(strategy, start, result, err)
	if err != nil {
		return Route{}, err
	}

	route := r.buildRoute(ctx, origin, destination, result, r.models[mode])
	route.Strategy, route.Mode = strategy, mode
	r.logger.Debug("Computed route",
		zap.Stringer("navigator", strategy),
		zap.Stringer("mode", mode),
		zap.Int("origin", origin),
		zap.Int("destination", destination),
		zap.Bool("exists", route.Exists),
		zap.Float64("cost", route.Cost),
		zap.Duration("elapsed", time.Since(start)))
	return route, nil
}

func (r *Router) buildRoute(ctx context.Context, origin, destination graph.NodeId, result path.Result, model *cost.Model) Route {
	route := Route{
		OriginNode:      origin,
		DestinationNode: destination,
		Exists:          result.Found(),
		Path:            result.Path,
		Cost:            result.Cost,
		KPIs:            result.KPIs,
	}
	if p := r.graph.GetNode(origin); p != nil {
		route.Origin = *p
	}
	if p := r.graph.GetNode(destination); p != nil {
		route.Destination = *p
	}
	if route.Exists {
		route.Waypoints = r.buildWaypoints(result.Path)
		route.Length = path.RouteLength(ctx, r.graph, model, result.Path)
		route.Polyline = EncodePolyline(route.Waypoints)
	}
	return route
}

func (r *Router) buildWaypoints(nodes []graph.NodeId) []geometry.Point {
	waypoints := make([]geometry.Point, 0, len(nodes))
	for _, nodeID := range nodes {
		if point := r.graph.GetNode(nodeID); point != nil {
			waypoints = append(waypoints, *point)
		}
	}
	return waypoints
}

// Waypoints returns the coordinates of a path
func (r *Router) Waypoints(nodes []graph.NodeId) []geometry.Point {
	return r.buildWaypoints(nodes)
}

// EncodePolyline encodes the points in the Google polyline format with 5 digits precision
func EncodePolyline(points []geometry.Point) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat(), p.Lon()}
	}
	return string(polyline.EncodeCoords(coords))
}

// RankRoutes runs every strategy concurrently and returns the cheapest candidates.
// The RL sampler contributes up to its K paths, labeled by their rank among each other.
func (r *Router) RankRoutes(ctx context.Context, origin, destination graph.NodeId, config RankConfig) ([]Candidate, error) {
	_, mode, err := r.resolve("", config.Mode)
	if err != nil {
		return nil, err
	}
	if !graph.HasNode(r.graph, origin) || !graph.HasNode(r.graph, destination) {
		if r.graph.NodeCount() == 0 {
			return nil, path.ErrEmptyGraph
		}
		return nil, fmt.Errorf("%w: %v -> %v", path.ErrInvalidEndpoint, origin, destination)
	}
	count := config.Count
	if count <= 0 {
		count = DefaultRankCount
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	model := r.models[mode]
	strategies := Strategies()
	candidates := make([][]Candidate, len(strategies))
	errs := make([]error, len(strategies))

	var wg sync.WaitGroup
	for i, strategy := range strategies {
		wg.Add(1)
		go func(i int, strategy Strategy) {
			defer wg.Done()
			start := time.Now()
			navigator := r.navigator(strategy, model)

			if rl, ok := navigator.(*path.QLearning); ok {
				results, err := rl.ComputeTopK(ctx, origin, destination)
				best := path.Result{}
				if len(results) > 0 {
					best = results[0]
				}
				r.observe(strategy, start, best, err)
				if err != nil {
					errs[i] = err
					return
				}
				for rank, result := range results {
					candidates[i] = append(candidates[i], Candidate{Label: rlLabel(rank + 1), Strategy: strategy, Path: result.Path, Cost: result.Cost})
				}
				return
			}

			result, err := navigator.ComputeShortestPath(ctx, origin, destination)
			r.observe(strategy, start, result, err)
			if err != nil {
				errs[i] = err
				return
			}
			candidates[i] = []Candidate{{Label: strategy.Label(), Strategy: strategy, Path: result.Path, Cost: result.Cost}}
		}(i, strategy)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	all := make([]Candidate, 0, len(strategies)+r.rlOptions.K)
	for _, c := range candidates {
		all = append(all, c...)
	}
	ranked := Rank(all, count, config.Distinct)
	for i := range ranked {
		ranked[i].Length = path.RouteLength(ctx, r.graph, model, ranked[i].Path)
	}
	r.logger.Debug("Ranked routes",
		zap.Int("origin", origin),
		zap.Int("destination", destination),
		zap.Stringer("mode", mode),
		zap.Int("candidates", len(all)),
		zap.Int("ranked", len(ranked)))
	return ranked, nil
}

// RankRoutesBetween snaps both coordinates to their nearest nodes and ranks the routes between them
func (r *Router) RankRoutesBetween(ctx context.Context, origin, destination geometry.Point, config RankConfig) ([]Candidate, graph.NodeId, graph.NodeId, error) {
	originNode, err := r.NearestNode(origin)
	if err != nil {
		return nil, -1, -1, err
	}
	destinationNode, err := r.NearestNode(destination)
	if err != nil {
		return nil, -1, -1, err
	}
	candidates, err := r.RankRoutes(ctx, originNode, destinationNode, config)
	return candidates, originNode, destinationNode, err
}
