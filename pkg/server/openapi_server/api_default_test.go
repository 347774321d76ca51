package openapi_server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/routing"
	"github.com/natevvv/osm-traffic-routing/pkg/traffic"
)

func testServer(t *testing.T) *httptest.Server {
	return serve(t, traffic.NewAdapter(traffic.Constant(36)))
}

// 0 -> 2 -> 3 is 200 m long, 0 -> 1 -> 3 is 400 m long
func serve(t *testing.T, adapter *traffic.Adapter) *httptest.Server {
	g := graph.NewAdjacencyListGraph()
	g.AddNode(geometry.MakePoint(52.5000, 13.4000))
	g.AddNode(geometry.MakePoint(52.5010, 13.4000))
	g.AddNode(geometry.MakePoint(52.5000, 13.4010))
	g.AddNode(geometry.MakePoint(52.5010, 13.4010))
	g.AddArc(0, 1, 200)
	g.AddArc(1, 3, 200)
	g.AddArc(0, 2, 100)
	g.AddArc(2, 3, 100)

	router := routing.NewRouter(g, adapter, routing.WithMode(cost.DISTANCE))
	service := NewDefaultApiService(router, adapter)
	server := httptest.NewServer(NewRouter(nil, NewDefaultApiController(service)))
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, server *httptest.Server, route, body string) *http.Response {
	t.Helper()
	response, err := http.Post(server.URL+route, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func get(t *testing.T, server *httptest.Server, route string) *http.Response {
	t.Helper()
	response, err := http.Get(server.URL + route)
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func decode[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	var result T
	require.NoError(t, json.NewDecoder(response.Body).Decode(&result))
	return result
}

func TestComputeRoute(t *testing.T) {
	server := testServer(t)

	response := post(t, server, "/routes", `{"origin": {"lat": 52.5, "lon": 13.4}, "destination": {"lat": 52.501, "lon": 13.401}}`)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "*", response.Header.Get("Access-Control-Allow-Origin"))

	result := decode[RouteResult](t, response)
	assert.True(t, result.Reachable)
	assert.Equal(t, "dijkstra", result.Navigator)
	assert.Equal(t, "distance", result.Mode)
	require.NotNil(t, result.Path)
	assert.Equal(t, 200.0, result.Path.Length)
	assert.Equal(t, 200.0, result.Path.Cost)
	assert.Equal(t, "m", result.Path.Unit)
	assert.Len(t, result.Path.Waypoints, 3)
	assert.NotEmpty(t, result.Path.Polyline)
	require.NotNil(t, result.Statistics)
	assert.Positive(t, result.Statistics.SettledNodes)
}

func TestComputeRouteWithTraffic(t *testing.T) {
	server := testServer(t)

	response := post(t, server, "/routes", `{"origin": {"lat": 52.5, "lon": 13.4}, "destination": {"lat": 52.501, "lon": 13.401}, "navigator": "astar", "mode": "traffic"}`)
	require.Equal(t, http.StatusOK, response.StatusCode)
	result := decode[RouteResult](t, response)
	assert.Equal(t, "astar", result.Navigator)
	require.NotNil(t, result.Path)
	// 200 m at 36 km/h
	assert.InDelta(t, 20.0, result.Path.Cost, 1e-9)
	assert.Equal(t, "s", result.Path.Unit)
}

func TestComputeRouteUnreachable(t *testing.T) {
	server := testServer(t)

	response := post(t, server, "/routes", `{"origin": {"lat": 52.501, "lon": 13.401}, "destination": {"lat": 52.5, "lon": 13.4}}`)
	require.Equal(t, http.StatusOK, response.StatusCode)
	result := decode[RouteResult](t, response)
	assert.False(t, result.Reachable)
	assert.Nil(t, result.Path)
}

func TestComputeRouteBadRequests(t *testing.T) {
	server := testServer(t)

	bodies := []string{
		`{"origin": {"lat": 52.5, "lon": 13.4}`,
		`{"origin": {"lat": 95, "lon": 13.4}, "destination": {"lat": 52.5, "lon": 13.4}}`,
		`{"origin": {"lat": 52.5, "lon": 13.4}, "destination": {"lat": 52.5, "lon": 13.4}, "speed": 3}`,
		`{"origin": {"lat": 52.5, "lon": 13.4}, "destination": {"lat": 52.5, "lon": 13.4}, "navigator": "ch"}`,
		`{"origin": {"lat": 52.5, "lon": 13.4}, "destination": {"lat": 52.5, "lon": 13.4}, "mode": "scenic"}`,
	}
	for _, body := range bodies {
		response := post(t, server, "/routes", body)
		assert.Equal(t, http.StatusBadRequest, response.StatusCode, body)
	}
}

func TestRankRoutes(t *testing.T) {
	server := testServer(t)

	response := post(t, server, "/routes/ranked", `{"origin": {"lat": 52.5, "lon": 13.4}, "destination": {"lat": 52.501, "lon": 13.401}, "distinct": true}`)
	require.Equal(t, http.StatusOK, response.StatusCode)
	ranked := decode[RankedRoutes](t, response)
	assert.Equal(t, "distance", ranked.Mode)
	require.NotEmpty(t, ranked.Routes)
	assert.Equal(t, 1, ranked.Routes[0].Rank)
	assert.Equal(t, "Dijkstra", ranked.Routes[0].Label)
	assert.Contains(t, ranked.Routes[0].AlsoFoundBy, "A*")
	assert.Equal(t, 200.0, ranked.Routes[0].Path.Cost)
	assert.Equal(t, 200.0, ranked.Routes[0].Path.Length)

	response = post(t, server, "/routes/ranked", `{"origin": {"lat": 52.5, "lon": 13.4}, "destination": {"lat": 52.501, "lon": 13.401}, "count": 2}`)
	require.Equal(t, http.StatusOK, response.StatusCode)
	ranked = decode[RankedRoutes](t, response)
	require.Len(t, ranked.Routes, 2)
	assert.Equal(t, "A*", ranked.Routes[1].Label)
}

func TestGetNodes(t *testing.T) {
	server := testServer(t)

	response := get(t, server, "/nodes")
	require.Equal(t, http.StatusOK, response.StatusCode)
	nodes := decode[Nodes](t, response)
	assert.Equal(t, 4, nodes.Count)
	assert.Equal(t, Point{Lat: 52.5010, Lon: 13.4000}, nodes.Waypoints[1])
}

func TestNavigator(t *testing.T) {
	server := testServer(t)

	navigator := decode[NavigatorResponse](t, get(t, server, "/navigator"))
	assert.Equal(t, "dijkstra", navigator.Navigator)
	assert.Equal(t, []string{"dijkstra", "astar", "bidirectional", "rl"}, navigator.Available)

	response := post(t, server, "/navigator", `{"navigator": "bidirectional"}`)
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "bidirectional", decode[NavigatorResponse](t, response).Navigator)

	response = post(t, server, "/navigator", `{"navigator": "teleport"}`)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)

	response = post(t, server, "/navigator", `{"navigator": ""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, response.StatusCode)

	navigator = decode[NavigatorResponse](t, get(t, server, "/navigator"))
	assert.Equal(t, "bidirectional", navigator.Navigator)
}

func TestGetTrafficInfo(t *testing.T) {
	server := testServer(t)

	response := get(t, server, "/traffic?lat=52.5&lon=13.4")
	require.Equal(t, http.StatusOK, response.StatusCode)
	info := decode[TrafficInfo](t, response)
	assert.Equal(t, 36.0, info.Speed)
	assert.Equal(t, "traffic", info.Source)

	assert.Equal(t, http.StatusUnprocessableEntity, get(t, server, "/traffic?lat=52.5").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, server, "/traffic?lat=north&lon=13.4").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, server, "/traffic?lat=91&lon=13.4").StatusCode)
}

func TestGetTrafficInfoWithoutOracle(t *testing.T) {
	server := serve(t, traffic.NewAdapter(nil, traffic.WithDefaultSpeed(40)))

	response := get(t, server, "/traffic?lat=52.5&lon=13.4")
	require.Equal(t, http.StatusOK, response.StatusCode)
	info := decode[TrafficInfo](t, response)
	assert.Equal(t, 40.0, info.Speed)
	assert.Equal(t, "default", info.Source)
}

func TestDefaultErrorHandler(t *testing.T) {
	recorder := httptest.NewRecorder()
	DefaultErrorHandler(recorder, nil, assert.AnError, &ImplResponse{Code: http.StatusGatewayTimeout})
	assert.Equal(t, http.StatusGatewayTimeout, recorder.Code)

	recorder = httptest.NewRecorder()
	DefaultErrorHandler(recorder, nil, assert.AnError, nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
