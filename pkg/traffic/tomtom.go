package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	TomTomBaseURL = "https://api.tomtom.com"
	tomTomZoom    = 10
)

type TomTomOption func(*TomTomClient)

// TomTomClient queries the TomTom flow segment service.
type TomTomClient struct {
	baseURL    string
	apiKey     string
	zoom       int
	httpClient *http.Client
}

func WithBaseURL(baseURL string) TomTomOption {
	return func(c *TomTomClient) { c.baseURL = baseURL }
}

func WithTimeout(timeout time.Duration) TomTomOption {
	return func(c *TomTomClient) { c.httpClient.Timeout = timeout }
}

func WithHTTPClient(client *http.Client) TomTomOption {
	return func(c *TomTomClient) { c.httpClient = client }
}

func NewTomTomClient(apiKey string, options ...TomTomOption) *TomTomClient {
	c := &TomTomClient{
		baseURL: TomTomBaseURL,
		apiKey:  apiKey,
		zoom:    tomTomZoom,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

type flowSegmentResponse struct {
	FlowSegmentData *struct {
		CurrentSpeed  *float64 `json:"currentSpeed"`
		FreeFlowSpeed *float64 `json:"freeFlowSpeed"`
	} `json:"flowSegmentData"`
}

func (c *TomTomClient) requestURL(lat, lon float64) string {
	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("point", strconv.FormatFloat(lat, 'f', 6, 64)+","+strconv.FormatFloat(lon, 'f', 6, 64))
	return fmt.Sprintf("%s/traffic/services/4/flowSegmentData/absolute/%d/json?%s", c.baseURL, c.zoom, query.Encode())
}

// Speed returns the current and free flow speed of the road segment closest to the coordinate.
func (c *TomTomClient) Speed(ctx context.Context, lat, lon float64) (Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(lat, lon), nil)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var flow flowSegmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&flow); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if flow.FlowSegmentData == nil {
		return Reading{}, fmt.Errorf("%w: missing flowSegmentData", ErrMalformedResponse)
	}

	var reading Reading
	if s := flow.FlowSegmentData.CurrentSpeed; s != nil {
		reading.CurrentSpeed = *s
	}
	if s := flow.FlowSegmentData.FreeFlowSpeed; s != nil {
		reading.FreeFlowSpeed = *s
	}
	return reading, nil
}
