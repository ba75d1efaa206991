package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode json response")
	}
}

// errorBody is the soft-failure payload for the data API. Failures are
// reported in the body with a 200 status; the front end inspects the body,
// not the status code.
func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
