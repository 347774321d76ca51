package openapi_server

import (
	"encoding/json"
	"net/http"
	"strings"
)

// DefaultApiController binds http requests to an api service and writes the service results to the http response
type DefaultApiController struct {
	service      DefaultApiServicer
	errorHandler ErrorHandler
}

// DefaultApiOption for how the controller is set up.
type DefaultApiOption func(*DefaultApiController)

// WithDefaultApiErrorHandler inject ErrorHandler into controller
func WithDefaultApiErrorHandler(h ErrorHandler) DefaultApiOption {
	return func(c *DefaultApiController) {
		c.errorHandler = h
	}
}

// NewDefaultApiController creates a default api controller
func NewDefaultApiController(s DefaultApiServicer, opts ...DefaultApiOption) Router {
	controller := &DefaultApiController{
		service:      s,
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// Routes returns all of the api route for the DefaultApiController
func (c *DefaultApiController) Routes() Routes {
	return Routes{
		{
			"ComputeRoute",
			strings.ToUpper("Post"),
			"/routes",
			c.ComputeRoute,
		},
		{
			"RankRoutes",
			strings.ToUpper("Post"),
			"/routes/ranked",
			c.RankRoutes,
		},
		{
			"GetNodes",
			strings.ToUpper("Get"),
			"/nodes",
			c.GetNodes,
		},
		{
			"GetNavigator",
			strings.ToUpper("Get"),
			"/navigator",
			c.GetNavigator,
		},
		{
			"SetNavigator",
			strings.ToUpper("Post"),
			"/navigator",
			c.SetNavigator,
		},
		{
			"GetTrafficInfo",
			strings.ToUpper("Get"),
			"/traffic",
			c.GetTrafficInfo,
		},
	}
}

func (c *DefaultApiController) writeResult(w http.ResponseWriter, r *http.Request, method string, result ImplResponse, err error) {
	// If an error occurred, encode the error with the status code
	if err != nil {
		c.errorHandler(w, r, err, &result)
		return
	}
	// If no error, encode the body and the result code
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", method)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	EncodeJSONResponse(result.Body, &result.Code, w)
}

// ComputeRoute - Compute a new route
func (c *DefaultApiController) ComputeRoute(w http.ResponseWriter, r *http.Request) {
	routeRequestParam := RouteRequest{}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&routeRequestParam); err != nil {
		c.errorHandler(w, r, &ParsingError{Err: err}, nil)
		return
	}
	if err := AssertRouteRequestRequired(routeRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.ComputeRoute(r.Context(), routeRequestParam)
	c.writeResult(w, r, "POST", result, err)
}

// RankRoutes - Rank the routes of all navigators
func (c *DefaultApiController) RankRoutes(w http.ResponseWriter, r *http.Request) {
	rankRequestParam := RankRequest{}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&rankRequestParam); err != nil {
		c.errorHandler(w, r, &ParsingError{Err: err}, nil)
		return
	}
	if err := AssertRankRequestRequired(rankRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.RankRoutes(r.Context(), rankRequestParam)
	c.writeResult(w, r, "POST", result, err)
}

func (c *DefaultApiController) GetNodes(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetNodes(r.Context())
	c.writeResult(w, r, "GET", result, err)
}

func (c *DefaultApiController) GetNavigator(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetNavigator(r.Context())
	c.writeResult(w, r, "GET", result, err)
}

func (c *DefaultApiController) SetNavigator(w http.ResponseWriter, r *http.Request) {
	navigatorRequestParam := NavigatorRequest{}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&navigatorRequestParam); err != nil {
		c.errorHandler(w, r, &ParsingError{Err: err}, nil)
		return
	}
	if err := AssertNavigatorRequestRequired(navigatorRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.SetNavigator(r.Context(), navigatorRequestParam)
	c.writeResult(w, r, "POST", result, err)
}

// GetTrafficInfo - Speed assumed at a coordinate
func (c *DefaultApiController) GetTrafficInfo(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, err := parseFloatParameter(query.Get("lat"), "lat")
	if err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	lon, err := parseFloatParameter(query.Get("lon"), "lon")
	if err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	location := Point{Lat: lat, Lon: lon}
	if err := AssertPointRequired(location); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetTrafficInfo(r.Context(), location)
	c.writeResult(w, r, "GET", result, err)
}
