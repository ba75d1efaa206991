package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ridegauge/traffic-dashboard/internal/config"
	"github.com/ridegauge/traffic-dashboard/monitor"
	"github.com/ridegauge/traffic-dashboard/server"
	"github.com/ridegauge/traffic-dashboard/sessions"
)

const (
	testClientID     = "12345"
	testClientSecret = "shhh-strava-secret"
	testMapsAPIKey   = "maps-key-1"
	testSecretKey    = "0123456789abcdef0123456789abcdef"
)

// testConfig satisfies config.Config without touching the environment.
type testConfig struct {
	redirectURI     string
	credentialsFile string
	databasePath    string
}

func (c testConfig) GetPort() string            { return ":0" }
func (c testConfig) GetAppName() string         { return "Traffic Dashboard" }
func (c testConfig) GetBaseURL() string         { return "http://localhost:5001" }
func (c testConfig) GetRedirectURI() string     { return c.redirectURI }
func (c testConfig) GetSessionSecret() string   { return testSecretKey }
func (c testConfig) GetDatabasePath() string    { return c.databasePath }
func (c testConfig) GetCredentialsFile() string { return c.credentialsFile }
func (c testConfig) GetEnv() string             { return "TEST" }

// fakeBackend is a canned Backend implementation for handler tests.
type fakeBackend struct {
	comparisons []monitor.Comparison
	pending     []monitor.PendingCapture
	captured    []monitor.Comparison
	status      monitor.Status
	err         error
}

func (f *fakeBackend) Comparisons(context.Context) ([]monitor.Comparison, error) {
	return f.comparisons, f.err
}

func (f *fakeBackend) PendingCaptures(context.Context) ([]monitor.PendingCapture, error) {
	return f.pending, f.err
}

func (f *fakeBackend) CheckForNewActivities(context.Context) ([]monitor.Comparison, error) {
	return f.captured, f.err
}

func (f *fakeBackend) Status(context.Context) (monitor.Status, error) {
	return f.status, f.err
}

// testFixture wires a Server to fakes and exposes a cookie-carrying client.
type testFixture struct {
	t        *testing.T
	ts       *httptest.Server
	client   *http.Client
	sessions sessions.Repo
	codec    *sessions.CookieCodec

	backend       *fakeBackend
	backendTokens []string // access tokens seen by the backend factory
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	credentialsFile string
	serverOpts      []server.Option
}

// withCredentialsFile points the resolver at a prepared dotenv file.
func withCredentialsFile(path string) fixtureOption {
	return func(c *fixtureConfig) { c.credentialsFile = path }
}

func withServerOptions(opts ...server.Option) fixtureOption {
	return func(c *fixtureConfig) { c.serverOpts = append(c.serverOpts, opts...) }
}

func newFixture(t *testing.T, opts ...fixtureOption) *testFixture {
	t.Helper()

	fc := fixtureConfig{
		// Missing file resolves every credential to its sentinel.
		credentialsFile: filepath.Join(t.TempDir(), "missing.env"),
	}
	for _, opt := range opts {
		opt(&fc)
	}

	// The resolver prefers the environment, so tests must not inherit
	// real credentials from it.
	t.Setenv("STRAVA_CLIENT_ID", "")
	t.Setenv("STRAVA_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	f := &testFixture{
		t:        t,
		sessions: sessions.NewInMemoryRepo(),
		codec:    sessions.NewCookieCodec(testSecretKey),
		backend:  &fakeBackend{},
	}

	cfg := testConfig{
		redirectURI:     "http://localhost:5001/oauth/callback",
		credentialsFile: fc.credentialsFile,
	}
	creds := config.NewCredentialResolver(fc.credentialsFile)

	serverOpts := append([]server.Option{
		server.WithBackendFactory(func(_ config.Credentials, accessToken string) server.Backend {
			f.backendTokens = append(f.backendTokens, accessToken)
			return f.backend
		}),
	}, fc.serverOpts...)

	f.ts = httptest.NewServer(server.New(cfg, creds, f.sessions, nil, serverOpts...))
	t.Cleanup(f.ts.Close)

	jar := newCookieJar(t)
	f.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

func newCookieJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

// get issues a GET against the fixture server and decodes the JSON body.
func (f *testFixture) get(path string, out any) *http.Response {
	f.t.Helper()
	resp, err := f.client.Get(f.ts.URL + path)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// sessionID extracts the session ID from the cookie the server set.
func (f *testFixture) sessionID() string {
	f.t.Helper()
	u, err := url.Parse(f.ts.URL)
	require.NoError(f.t, err)
	for _, cookie := range f.client.Jar.Cookies(u) {
		if cookie.Name == sessions.CookieName {
			id, err := f.codec.Decode(cookie.Value)
			require.NoError(f.t, err)
			return id
		}
	}
	f.t.Fatal("no session cookie set")
	return ""
}

// sessionState snapshots the server-side state behind the browser's cookie.
func (f *testFixture) sessionState() *sessions.SessionState {
	f.t.Helper()
	state, err := f.sessions.Get(f.sessionID())
	require.NoError(f.t, err)
	return state
}

// writeCredentialsFile writes a dotenv credentials file with real values and
// any extra lines appended.
func writeCredentialsFile(t *testing.T, extra ...string) string {
	t.Helper()
	lines := "STRAVA_CLIENT_ID=" + testClientID + "\n" +
		"STRAVA_CLIENT_SECRET=" + testClientSecret + "\n" +
		"GOOGLE_MAPS_API_KEY=" + testMapsAPIKey + "\n"
	for _, line := range extra {
		lines += line + "\n"
	}
	path := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o600))
	return path
}

// stravaStub serves token-exchange and athlete-profile endpoints the way the
// provider does, enough to exercise the full authorization flow.
type stravaStub struct {
	ts *httptest.Server

	tokenStatus int // 0 means success
	athlete     map[string]any
}

func newStravaStub(t *testing.T) *stravaStub {
	t.Helper()
	stub := &stravaStub{
		athlete: map[string]any{
			"id":        float64(4242),
			"firstname": "Jo",
			"lastname":  "Rider",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if stub.tokenStatus != 0 {
			http.Error(w, `{"message":"Bad Request"}`, stub.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "atoken-4242",
			"refresh_token": "rtoken-4242",
			"token_type":    "Bearer",
			"expires_in":    21600,
		})
	})
	mux.HandleFunc("GET /athlete", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer atoken-4242" {
			http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stub.athlete)
	})

	stub.ts = httptest.NewServer(mux)
	t.Cleanup(stub.ts.Close)
	return stub
}

func (s *stravaStub) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  s.ts.URL + "/oauth/authorize",
		TokenURL: s.ts.URL + "/oauth/token",
	}
}

func (s *stravaStub) options() []server.Option {
	return []server.Option{
		server.WithOAuthEndpoint(s.endpoint()),
		server.WithStravaBaseURL(s.ts.URL),
	}
}
