package strava_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ridegauge/traffic-dashboard/strava"
	"github.com/stretchr/testify/require"
)

func TestClient_Athlete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/athlete", r.URL.Path)
			require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": 42, "firstname": "Alice", "lastname": "Rider"}`))
		}))
		defer srv.Close()

		c := strava.NewClient("tok-123", strava.WithBaseURL(srv.URL))
		profile, err := c.Athlete(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Alice", profile["firstname"])

		id, ok := strava.AthleteID(profile)
		require.True(t, ok)
		require.Equal(t, int64(42), id)
	})

	t.Run("unauthorized surfaces StatusError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := strava.NewClient("bad-token", strava.WithBaseURL(srv.URL))
		_, err := c.Athlete(context.Background())

		var statusErr *strava.StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	})

	t.Run("malformed body is a decode error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": `))
		}))
		defer srv.Close()

		c := strava.NewClient("tok", strava.WithBaseURL(srv.URL))
		_, err := c.Athlete(context.Background())
		require.Error(t, err)
		var statusErr *strava.StatusError
		require.False(t, errors.As(err, &statusErr))
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		c := strava.NewClient("tok", strava.WithBaseURL(srv.URL))
		_, err := c.Athlete(context.Background())
		require.Error(t, err)
		var statusErr *strava.StatusError
		require.False(t, errors.As(err, &statusErr))
	})
}

func TestClient_Activities(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/athlete/activities", r.URL.Path)
		query = r.URL.Query()
		w.Write([]byte(`[{"id": 1001, "name": "Morning Commute"}]`))
	}))
	defer srv.Close()

	after := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	c := strava.NewClient("tok", strava.WithBaseURL(srv.URL))
	activities, err := c.Activities(context.Background(), after, "Ride")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	require.Equal(t, "Morning Commute", activities[0]["name"])

	require.Equal(t, "Ride", query.Get("type"))
	require.Equal(t, "200", query.Get("per_page"))
	require.Equal(t, "1787900400", query.Get("after"))
}

func TestClient_Activity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/activities/1001", r.URL.Path)
		w.Write([]byte(`{"id": 1001, "moving_time": 1800}`))
	}))
	defer srv.Close()

	c := strava.NewClient("tok", strava.WithBaseURL(srv.URL))
	activity, err := c.Activity(context.Background(), 1001)
	require.NoError(t, err)
	require.Equal(t, float64(1800), activity["moving_time"])
}

func TestAthleteName(t *testing.T) {
	require.Equal(t, "Alice", strava.AthleteName(map[string]any{"firstname": "Alice"}))
	require.Equal(t, "Athlete", strava.AthleteName(map[string]any{}))
	require.Equal(t, "Athlete", strava.AthleteName(map[string]any{"firstname": ""}))
}

func TestOAuthConfig_AuthCodeURL(t *testing.T) {
	cfg := strava.OAuthConfig("1234", "secret", "http://localhost:5001/oauth/callback")

	authURL := cfg.AuthCodeURL("", strava.ApprovalPromptForce)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	q := parsed.Query()
	require.Equal(t, "1234", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "http://localhost:5001/oauth/callback", q.Get("redirect_uri"))
	require.Equal(t, "force", q.Get("approval_prompt"))
	require.Equal(t, strava.ScopeActivityReadAll, q.Get("scope"))

	// No hidden state: two logins produce identical URLs.
	require.Equal(t, authURL, cfg.AuthCodeURL("", strava.ApprovalPromptForce))
}
