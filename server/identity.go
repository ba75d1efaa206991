package server

import (
	"github.com/ridegauge/traffic-dashboard/internal/apperrors"
	"github.com/ridegauge/traffic-dashboard/sessions"
)

// resolveBackend selects which credentials and access token serve a request.
// Resolution order: the session's current user's token, then the static
// fallback token from the credentials file. A backend is only returned when
// the application credentials are fully configured and some token exists.
// Each call constructs a fresh handle; nothing is cached across requests.
func (s *Server) resolveBackend(state *sessions.SessionState) (Backend, error) {
	creds := s.creds.Resolve()
	if !creds.Configured() {
		return nil, apperrors.ErrNotConfigured
	}

	accessToken := ""
	if record, ok := state.CurrentToken(); ok {
		accessToken = record.AccessToken
	} else if fallback, ok := s.creds.FallbackAccessToken(); ok {
		accessToken = fallback
	} else {
		return nil, apperrors.ErrNoAccessToken
	}

	return s.newBackend(creds, accessToken), nil
}

// backendForRequest is the common prologue of every data endpoint: load the
// session, resolve a backend for it.
func (s *Server) backendForRequest(sessionID string) (Backend, *sessions.SessionState, error) {
	state, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	backend, err := s.resolveBackend(state)
	if err != nil {
		return nil, state, err
	}
	return backend, state, nil
}
