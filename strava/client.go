// Package strava is a thin client for the parts of the Strava v3 API the
// dashboard uses: the authenticated athlete profile, recent activities, and
// single-activity detail. Failures are distinguishable by kind: transport
// errors wrap the underlying error, non-2xx responses surface as
// *StatusError, and malformed bodies surface as decode errors.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.strava.com/api/v3"

const defaultTimeout = 10 * time.Second

// StatusError reports a non-2xx response from the Strava API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("strava: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
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

// NewClient returns a client that authenticates with the given bearer token.
func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Athlete fetches the authenticated athlete's profile. Callers that only need
// a soft signal treat any error as "no profile".
func (c *Client) Athlete(ctx context.Context) (map[string]any, error) {
	var profile map[string]any
	if err := c.getJSON(ctx, "/athlete", nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Activities lists the athlete's activities of the given type started after
// the given time.
func (c *Client) Activities(ctx context.Context, after time.Time, activityType string) ([]map[string]any, error) {
	params := url.Values{
		"type":     {activityType},
		"per_page": {"200"},
	}
	if !after.IsZero() {
		params.Set("after", strconv.FormatInt(after.Unix(), 10))
	}

	var activities []map[string]any
	if err := c.getJSON(ctx, "/athlete/activities", params, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Activity fetches the detail record for a single activity.
func (c *Client) Activity(ctx context.Context, id int64) (map[string]any, error) {
	var activity map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("/activities/%d", id), nil, &activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("strava: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("strava: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := make([]byte, 512)
		n, _ := resp.Body.Read(body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body[:n])}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("strava: decode %s response: %w", path, err)
	}
	return nil
}
