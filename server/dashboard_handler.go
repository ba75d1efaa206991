package server

import (
	"html/template"
	"net/http"

	"github.com/ridegauge/traffic-dashboard/sessions"
)

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>{{.AppName}}</title>
</head>
<body>
	<h1>{{.AppName}}</h1>
	{{range .Flashes}}
	<p class="flash flash-{{.Category}}">{{.Message}}</p>
	{{end}}
	{{if .Authenticated}}
	<p><a href="/logout">Log out</a></p>
	{{else}}
	<p><a href="/login">Connect with Strava</a></p>
	{{end}}
	<div id="dashboard"
		data-comparisons-url="/api/comparisons"
		data-stats-url="/api/stats"
		data-status-url="/api/status"></div>
</body>
</html>
`

type dashboardData struct {
	AppName       string
	Flashes       []sessions.Flash
	Authenticated bool
}

// DashboardHandler renders the dashboard shell and drains the session's
// flash messages into it.
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl, err := template.New("dashboard").Parse(dashboardHTML)
	if err != nil {
		panic("Failed to parse dashboard template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.ensureSession(w, r)

		data := dashboardData{AppName: s.config.GetAppName()}
		err := s.sessions.Update(sessionID, func(state *sessions.SessionState) error {
			data.Flashes = state.ConsumeFlashes()
			data.Authenticated = state.Authenticated()
			return nil
		})
		if err != nil {
			s.log.Error().Err(err).Msg("load dashboard session")
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			s.log.Error().Err(err).Msg("render dashboard")
		}
	}
}
