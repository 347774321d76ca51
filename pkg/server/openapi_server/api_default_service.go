package openapi_server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph/path"
	"github.com/natevvv/osm-traffic-routing/pkg/routing"
)

// DefaultApiService is a service that implements the logic for the DefaultApiServicer
// This service should implement the business logic for every endpoint for the DefaultApi API.
// Include any external packages or services that will be required by this service.
type DefaultApiService struct {
	router    *routing.Router
	speeds    cost.SpeedSource // nil without traffic oracle
	rankCount int
	logger    *zap.Logger
}

// oracleBacked is implemented by speed sources that may run without a traffic oracle
type oracleBacked interface {
	HasOracle() bool
}

type ServiceOption func(*DefaultApiService)

func WithRankCount(n int) ServiceOption {
	return func(s *DefaultApiService) { s.rankCount = n }
}

func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *DefaultApiService) { s.logger = logger }
}

// NewDefaultApiService creates a default api service
func NewDefaultApiService(router *routing.Router, speeds cost.SpeedSource, options ...ServiceOption) DefaultApiServicer {
	s := &DefaultApiService{
		router:    router,
		speeds:    speeds,
		rankCount: routing.DefaultRankCount,
		logger:    zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// statusOf maps routing errors to http status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, path.ErrInvalidEndpoint),
		errors.Is(err, routing.ErrUnknownStrategy),
		errors.Is(err, cost.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, path.ErrEmptyGraph):
		return http.StatusServiceUnavailable
	case errors.Is(err, path.ErrSearchAborted):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *DefaultApiService) fail(operation string, err error) (ImplResponse, error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("Request failed", zap.String("operation", operation), zap.Error(err))
	}
	return Response(status, nil), err
}

func (s *DefaultApiService) pathOf(route routing.Route) *Path {
	return &Path{
		Length:    route.Length,
		Cost:      route.Cost,
		Unit:      route.Mode.Unit(),
		Polyline:  route.Polyline,
		Waypoints: pointsOf(route.Waypoints),
	}
}

// ComputeRoute - Compute a new route
func (s *DefaultApiService) ComputeRoute(ctx context.Context, routeRequest RouteRequest) (ImplResponse, error) {
	config := routing.RouteConfig{Navigator: routeRequest.Navigator, Mode: routeRequest.Mode}
	route, err := s.router.ComputeRoute(ctx, routeRequest.Origin.geometry(), routeRequest.Destination.geometry(), config)
	if err != nil {
		return s.fail("ComputeRoute", err)
	}

	routeResult := RouteResult{
		Origin:      routeRequest.Origin,
		Destination: routeRequest.Destination,
		Reachable:   route.Exists,
		Navigator:   route.Strategy.String(),
		Mode:        route.Mode.String(),
		Statistics: &SearchStatistics{
			SettledNodes: route.KPIs.SettledNodes,
			PqPops:       route.KPIs.PqPops,
			RelaxedEdges: route.KPIs.RelaxedEdges,
		},
	}
	if route.Exists {
		routeResult.Path = s.pathOf(route)
	}
	return Response(http.StatusOK, routeResult), nil
}

// RankRoutes - Rank the routes of all navigators
func (s *DefaultApiService) RankRoutes(ctx context.Context, rankRequest RankRequest) (ImplResponse, error) {
	config := routing.RankConfig{Mode: rankRequest.Mode, Count: rankRequest.Count, Distinct: rankRequest.Distinct}
	if config.Count <= 0 {
		config.Count = s.rankCount
	}
	candidates, _, _, err := s.router.RankRoutesBetween(ctx, rankRequest.Origin.geometry(), rankRequest.Destination.geometry(), config)
	if err != nil {
		return s.fail("RankRoutes", err)
	}

	mode := s.router.Mode()
	if rankRequest.Mode != "" {
		mode, _ = cost.ModeFromString(rankRequest.Mode)
	}
	ranked := RankedRoutes{
		Origin:      rankRequest.Origin,
		Destination: rankRequest.Destination,
		Mode:        mode.String(),
		Routes:      make([]RankedRoute, 0, len(candidates)),
	}
	for i, candidate := range candidates {
		waypoints := s.router.Waypoints(candidate.Path)
		ranked.Routes = append(ranked.Routes, RankedRoute{
			Rank:        i + 1,
			Label:       candidate.Label,
			AlsoFoundBy: candidate.AlsoFoundBy,
			Path: Path{
				Length:    candidate.Length,
				Cost:      candidate.Cost,
				Unit:      mode.Unit(),
				Polyline:  routing.EncodePolyline(waypoints),
				Waypoints: pointsOf(waypoints),
			},
		})
	}
	return Response(http.StatusOK, ranked), nil
}

func (s *DefaultApiService) GetNodes(ctx context.Context) (ImplResponse, error) {
	points := s.router.GetNodes()
	nodes := Nodes{Count: len(points), Waypoints: pointsOf(points)}
	return Response(http.StatusOK, nodes), nil
}

func (s *DefaultApiService) GetNavigator(ctx context.Context) (ImplResponse, error) {
	return Response(http.StatusOK, s.navigatorResponse()), nil
}

func (s *DefaultApiService) SetNavigator(ctx context.Context, navigatorRequest NavigatorRequest) (ImplResponse, error) {
	success := s.router.SetNavigator(navigatorRequest.Navigator)

	if !success {
		return Response(http.StatusBadRequest, "Unknown Navigator"), nil
	}
	s.logger.Info("Navigator changed", zap.Stringer("navigator", s.router.Navigator()))
	return Response(http.StatusOK, s.navigatorResponse()), nil
}

func (s *DefaultApiService) navigatorResponse() NavigatorResponse {
	available := make([]string, 0, len(routing.Strategies()))
	for _, strategy := range routing.Strategies() {
		available = append(available, strategy.String())
	}
	return NavigatorResponse{Navigator: s.router.Navigator().String(), Available: available}
}

// GetTrafficInfo - Speed assumed at a coordinate
func (s *DefaultApiService) GetTrafficInfo(ctx context.Context, location Point) (ImplResponse, error) {
	info := TrafficInfo{Location: location, Speed: cost.DefaultSpeed, Source: "default"}
	if s.speeds != nil {
		info.Speed = s.speeds.SpeedAt(ctx, location.geometry())
		if backed, ok := s.speeds.(oracleBacked); !ok || backed.HasOracle() {
			info.Source = "traffic"
		}
	}
	return Response(http.StatusOK, info), nil
}
