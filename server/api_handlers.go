package server

import (
	"net/http"
	"time"
)

// monitorUnavailableMsg is returned by every data endpoint when no backend
// can be resolved for the request.
const monitorUnavailableMsg = "Monitor not available. Please log in to Strava."

// ComparisonsHandler returns all stored traffic comparisons.
func (s *Server) ComparisonsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend, _, err := s.backendForRequest(s.ensureSession(w, r))
		if err != nil {
			s.writeJSON(w, errorBody(monitorUnavailableMsg))
			return
		}

		comparisons, err := backend.Comparisons(r.Context())
		if err != nil {
			s.writeJSON(w, errorBody(err.Error()))
			return
		}
		s.writeJSON(w, comparisons)
	}
}

// StatsHandler returns aggregate statistics over all stored comparisons.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend, _, err := s.backendForRequest(s.ensureSession(w, r))
		if err != nil {
			s.writeJSON(w, errorBody(monitorUnavailableMsg))
			return
		}

		comparisons, err := backend.Comparisons(r.Context())
		if err != nil {
			s.writeJSON(w, errorBody(err.Error()))
			return
		}
		s.writeJSON(w, ComputeStats(comparisons))
	}
}

// PendingHandler returns activities still waiting for a traffic capture.
func (s *Server) PendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend, _, err := s.backendForRequest(s.ensureSession(w, r))
		if err != nil {
			s.writeJSON(w, errorBody(monitorUnavailableMsg))
			return
		}

		pending, err := backend.PendingCaptures(r.Context())
		if err != nil {
			s.writeJSON(w, errorBody(err.Error()))
			return
		}
		s.writeJSON(w, pending)
	}
}

// StatusHandler reports connectivity, stored-data counts, and the current
// user's profile.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend, state, err := s.backendForRequest(s.ensureSession(w, r))
		if err != nil {
			s.writeJSON(w, errorBody(monitorUnavailableMsg))
			return
		}

		status, err := backend.Status(r.Context())
		if err != nil {
			s.writeJSON(w, errorBody(err.Error()))
			return
		}

		var lastCapture any
		if status.LastCapture != "" {
			lastCapture = status.LastCapture
		}
		var userInfo any
		if record, ok := state.CurrentToken(); ok {
			userInfo = record.Athlete
		}

		s.writeJSON(w, map[string]any{
			"online":            status.Online,
			"total_comparisons": status.TotalComparisons,
			"pending_captures":  status.PendingCaptures,
			"last_capture":      lastCapture,
			"last_check":        time.Now().Format(time.RFC3339),
			"user_info":         userInfo,
		})
	}
}

// TriggerCheckHandler runs a check for new activities right now.
func (s *Server) TriggerCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend, _, err := s.backendForRequest(s.ensureSession(w, r))
		if err != nil {
			s.writeJSON(w, errorBody(monitorUnavailableMsg))
			return
		}

		captured, err := backend.CheckForNewActivities(r.Context())
		if err != nil {
			s.writeJSON(w, errorBody(err.Error()))
			return
		}

		names := []string{}
		for _, c := range captured {
			names = append(names, c.ActivityName)
		}
		s.writeJSON(w, map[string]any{
			"success":         true,
			"new_comparisons": len(captured),
			"activities":      names,
		})
	}
}

// UserInfoHandler reports whether the session has an authenticated current
// user, and their profile when it does.
func (s *Server) UserInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.sessions.Get(s.ensureSession(w, r))
		if err != nil {
			s.writeJSON(w, map[string]any{"authenticated": false})
			return
		}

		record, ok := state.CurrentToken()
		if !ok {
			s.writeJSON(w, map[string]any{"authenticated": false})
			return
		}
		s.writeJSON(w, map[string]any{
			"authenticated": true,
			"user_info":     record.Athlete,
		})
	}
}
