// Package sessions holds the per-browser session state: the token store
// mapping athlete IDs to their OAuth tokens, the currently selected user, and
// transient flash messages. Each session is isolated; nothing here is shared
// across browsers.
package sessions

import "maps"

// TokenRecord is one authenticated user's credentials within a session.
type TokenRecord struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    int64          `json:"expires_at"` // epoch seconds, advisory only
	Athlete      map[string]any `json:"athlete_info"`
}

// Flash is a one-shot message surfaced on the next dashboard render.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// SessionState is the whole per-browser state. A user ID is a key in Tokens
// exactly when that user has a live TokenRecord, and CurrentUserID, when set,
// is always such a key.
type SessionState struct {
	Tokens        map[string]TokenRecord `json:"tokens"`
	CurrentUserID string                 `json:"current_user_id"`
	Flashes       []Flash                `json:"flashes"`
}

func NewState() *SessionState {
	return &SessionState{Tokens: make(map[string]TokenRecord)}
}

// PutToken inserts or overwrites the record for userID.
func (s *SessionState) PutToken(userID string, record TokenRecord) {
	if s.Tokens == nil {
		s.Tokens = make(map[string]TokenRecord)
	}
	s.Tokens[userID] = record
}

// Token looks up the record for userID.
func (s *SessionState) Token(userID string) (TokenRecord, bool) {
	record, ok := s.Tokens[userID]
	return record, ok
}

// DeleteToken removes userID's record; a missing key is a no-op. Deleting the
// current user's record also clears CurrentUserID so it never dangles.
func (s *SessionState) DeleteToken(userID string) {
	delete(s.Tokens, userID)
	if s.CurrentUserID == userID {
		s.CurrentUserID = ""
	}
}

// CurrentToken returns the record for the current user, if any.
func (s *SessionState) CurrentToken() (TokenRecord, bool) {
	if s.CurrentUserID == "" {
		return TokenRecord{}, false
	}
	return s.Token(s.CurrentUserID)
}

// Authenticated reports whether the session has a current user with a live
// token record.
func (s *SessionState) Authenticated() bool {
	_, ok := s.CurrentToken()
	return ok
}

// AddFlash queues a message for the next dashboard render.
func (s *SessionState) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Message: message, Category: category})
}

// ConsumeFlashes returns queued messages and clears the queue.
func (s *SessionState) ConsumeFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// Clone returns a copy that shares no mutable state with the receiver.
func (s *SessionState) Clone() *SessionState {
	clone := &SessionState{
		Tokens:        make(map[string]TokenRecord, len(s.Tokens)),
		CurrentUserID: s.CurrentUserID,
	}
	for userID, record := range s.Tokens {
		record.Athlete = maps.Clone(record.Athlete)
		clone.Tokens[userID] = record
	}
	if len(s.Flashes) > 0 {
		clone.Flashes = append([]Flash(nil), s.Flashes...)
	}
	return clone
}
