package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/ridegauge/traffic-dashboard/gmaps"
	"github.com/ridegauge/traffic-dashboard/internal/config"
	"github.com/ridegauge/traffic-dashboard/monitor"
	"github.com/ridegauge/traffic-dashboard/sessions"
	"github.com/ridegauge/traffic-dashboard/strava"
)

// Backend is the per-request handle onto the comparison engine, bound to one
// identity's credentials. A new handle is constructed for every request and
// discarded afterwards; only the store behind it is shared.
type Backend interface {
	Comparisons(ctx context.Context) ([]monitor.Comparison, error)
	PendingCaptures(ctx context.Context) ([]monitor.PendingCapture, error)
	CheckForNewActivities(ctx context.Context) ([]monitor.Comparison, error)
	Status(ctx context.Context) (monitor.Status, error)
}

// BackendFactory builds a Backend from resolved credentials and the access
// token chosen for this request.
type BackendFactory func(creds config.Credentials, accessToken string) Backend

type Server struct {
	mux    *http.ServeMux
	routes []string

	config   config.Config
	creds    *config.CredentialResolver
	sessions sessions.Repo
	cookies  *sessions.CookieCodec
	store    *monitor.Store
	log      zerolog.Logger

	oauthEndpoint oauth2.Endpoint
	stravaBaseURL string
	newBackend    BackendFactory
}

type Option func(*Server)

// WithOAuthEndpoint overrides the provider's OAuth endpoints, for tests.
func WithOAuthEndpoint(endpoint oauth2.Endpoint) Option {
	return func(s *Server) { s.oauthEndpoint = endpoint }
}

// WithStravaBaseURL overrides the Strava API base URL, for tests.
func WithStravaBaseURL(baseURL string) Option {
	return func(s *Server) { s.stravaBaseURL = baseURL }
}

// WithBackendFactory overrides how per-request backends are constructed.
func WithBackendFactory(factory BackendFactory) Option {
	return func(s *Server) { s.newBackend = factory }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

func New(cfg config.Config, creds *config.CredentialResolver, sessionRepo sessions.Repo, store *monitor.Store, opts ...Option) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		config:        cfg,
		creds:         creds,
		sessions:      sessionRepo,
		cookies:       sessions.NewCookieCodec(cfg.GetSessionSecret()),
		store:         store,
		log:           zerolog.Nop(),
		oauthEndpoint: strava.Endpoint,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newBackend == nil {
		s.newBackend = s.defaultBackend
	}

	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// defaultBackend binds fresh API clients to the shared store.
func (s *Server) defaultBackend(creds config.Credentials, accessToken string) Backend {
	stravaOpts := []strava.Option{}
	if s.stravaBaseURL != "" {
		stravaOpts = append(stravaOpts, strava.WithBaseURL(s.stravaBaseURL))
	}
	return monitor.New(
		strava.NewClient(accessToken, stravaOpts...),
		gmaps.NewClient(creds.MapsAPIKey),
		s.store,
		monitor.WithLogger(s.log),
	)
}

// oauthConfig builds the authorization-code flow configuration for the
// resolved credentials.
func (s *Server) oauthConfig(creds config.Credentials) *oauth2.Config {
	cfg := strava.OAuthConfig(creds.ClientID, creds.ClientSecret, s.config.GetRedirectURI())
	cfg.Endpoint = s.oauthEndpoint
	return cfg
}

// ensureSession returns the request's session ID, minting a new session and
// setting its signed cookie when the request carries none (or a bad one).
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessions.CookieName); err == nil {
		if sessionID, err := s.cookies.Decode(cookie.Value); err == nil {
			return sessionID
		}
	}

	sessionID := uuid.New().String()
	value, err := s.cookies.Issue(sessionID)
	if err != nil {
		s.log.Error().Err(err).Msg("issue session cookie")
		return sessionID
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessions.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}

// flash queues a one-shot message on the session.
func (s *Server) flash(sessionID, category, message string) {
	err := s.sessions.Update(sessionID, func(state *sessions.SessionState) error {
		state.AddFlash(category, message)
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("flash message")
	}
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
