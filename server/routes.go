package server

import "github.com/prometheus/client_golang/prometheus/promhttp"

const (
	RouteDashboard     = "/{$}"
	RouteLogin         = "/login"
	RouteOAuthCallback = "/oauth/callback"
	RouteLogout        = "/logout"

	RouteAPIComparisons = "/api/comparisons"
	RouteAPIStats       = "/api/stats"
	RouteAPIPending     = "/api/pending"
	RouteAPIStatus      = "/api/status"
	RouteAPITrigger     = "/api/trigger_check"
	RouteAPIUserInfo    = "/api/user_info"

	RouteMetrics = "/metrics"
)

func (s *Server) initRoutes() {
	mw := s.middleware()

	s.RegisterRouteFunc("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), mw...))

	// OAuth flow
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), mw...))

	// Data API
	s.RegisterRouteFunc("GET "+RouteAPIComparisons, ChainMiddleware(s.ComparisonsHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteAPIStats, ChainMiddleware(s.StatsHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteAPIPending, ChainMiddleware(s.PendingHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteAPIStatus, ChainMiddleware(s.StatusHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteAPITrigger, ChainMiddleware(s.TriggerCheckHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteAPIUserInfo, ChainMiddleware(s.UserInfoHandler(), mw...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
