// Package gmaps queries the Google Maps Directions API for the driving time
// of a route, with live traffic when available.
package gmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

const defaultTimeout = 10 * time.Second

// Route is the driving leg between two points.
type Route struct {
	DurationSeconds   int
	DurationText      string
	DistanceMeters    int
	DistanceText      string
	TrafficConditions string
	RouteSummary      string
}

// APIError reports a Directions response whose status field is not OK, e.g.
// ZERO_RESULTS or REQUEST_DENIED.
type APIError struct {
	Status string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gmaps: directions status %s", e.Status)
}

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gmaps: unexpected status %d", e.StatusCode)
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textValue struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

type directionsLeg struct {
	Duration          textValue  `json:"duration"`
	DurationInTraffic *textValue `json:"duration_in_traffic"`
	Distance          textValue  `json:"distance"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Summary string          `json:"summary"`
		Legs    []directionsLeg `json:"legs"`
	} `json:"routes"`
}

// RouteTime returns the car travel time between two coordinates, using
// current traffic conditions.
func (c *Client) RouteTime(ctx context.Context, startLat, startLng, endLat, endLng float64) (*Route, error) {
	params := url.Values{
		"origin":         {fmt.Sprintf("%f,%f", startLat, startLng)},
		"destination":    {fmt.Sprintf("%f,%f", endLat, endLng)},
		"mode":           {"driving"},
		"departure_time": {"now"},
		"key":            {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gmaps: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gmaps: directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var data directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("gmaps: decode directions response: %w", err)
	}

	if data.Status != "OK" || len(data.Routes) == 0 || len(data.Routes[0].Legs) == 0 {
		return nil, &APIError{Status: data.Status}
	}

	route := data.Routes[0]
	leg := route.Legs[0]

	duration := leg.Duration
	if leg.DurationInTraffic != nil {
		duration = *leg.DurationInTraffic
	}

	summary := route.Summary
	if summary == "" {
		summary = "Unknown route"
	}

	return &Route{
		DurationSeconds:   duration.Value,
		DurationText:      duration.Text,
		DistanceMeters:    leg.Distance.Value,
		DistanceText:      leg.Distance.Text,
		TrafficConditions: classifyTraffic(leg),
		RouteSummary:      summary,
	}, nil
}

// classifyTraffic buckets the live duration against the free-flow duration.
func classifyTraffic(leg directionsLeg) string {
	if leg.DurationInTraffic == nil {
		return "Unknown Traffic"
	}

	regular := float64(leg.Duration.Value)
	live := float64(leg.DurationInTraffic.Value)
	switch {
	case live > regular*1.3:
		return "Heavy Traffic"
	case live > regular*1.1:
		return "Moderate Traffic"
	default:
		return "Light Traffic"
	}
}
