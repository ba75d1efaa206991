package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/ridegauge/traffic-dashboard/internal/config"
	"github.com/ridegauge/traffic-dashboard/sessions"
	"github.com/ridegauge/traffic-dashboard/strava"
)

const callbackTimeout = 30 * time.Second

// LoginHandler redirects the browser to Strava's authorization page. When the
// application credentials are not configured it degrades to a flash message
// on the dashboard instead.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.ensureSession(w, r)

		creds := s.creds.Resolve()
		if creds.ClientID == config.SentinelClientID {
			s.flash(sessionID, "error", "Strava API not configured. Please set up your Strava app credentials.")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		authURL := s.oauthConfig(creds).AuthCodeURL("", strava.ApprovalPromptForce)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// OAuthCallbackHandler exchanges the authorization code for a token, fetches
// the athlete's identity, and records both in the session. Every failure mode
// degrades to a flash message; the browser always lands back on the
// dashboard.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.ensureSession(w, r)
		defer http.Redirect(w, r, "/", http.StatusFound)

		code := r.URL.Query().Get("code")
		if code == "" {
			s.flash(sessionID, "error", "Authorization failed. Please try again.")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), callbackTimeout)
		defer cancel()

		creds := s.creds.Resolve()
		token, err := s.oauthConfig(creds).Exchange(ctx, code)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				// The provider answered and rejected the exchange.
				s.flash(sessionID, "error", "Failed to get access token.")
			} else {
				s.flash(sessionID, "error", fmt.Sprintf("Authentication error: %v", err))
			}
			return
		}

		profile, err := s.fetchProfile(ctx, token.AccessToken)
		if err != nil {
			// The freshly obtained token is discarded, not stored.
			s.log.Warn().Err(err).Msg("athlete profile fetch failed")
			s.flash(sessionID, "error", "Failed to get athlete information.")
			return
		}

		athleteID, ok := strava.AthleteID(profile)
		if !ok {
			s.flash(sessionID, "error", "Failed to get athlete information.")
			return
		}
		userID := strconv.FormatInt(athleteID, 10)

		var expiresAt int64
		if !token.Expiry.IsZero() {
			expiresAt = token.Expiry.Unix()
		}
		record := sessions.TokenRecord{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    expiresAt,
			Athlete:      profile,
		}

		err = s.sessions.Update(sessionID, func(state *sessions.SessionState) error {
			state.PutToken(userID, record)
			state.CurrentUserID = userID
			state.AddFlash("success", fmt.Sprintf("Welcome, %s!", strava.AthleteName(profile)))
			return nil
		})
		if err != nil {
			s.log.Error().Err(err).Msg("store session tokens")
			s.flash(sessionID, "error", fmt.Sprintf("Authentication error: %v", err))
		}
	}
}

// fetchProfile looks up the athlete behind an access token. Any failure is
// soft: callers only need to know there is no usable profile.
func (s *Server) fetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	opts := []strava.Option{}
	if s.stravaBaseURL != "" {
		opts = append(opts, strava.WithBaseURL(s.stravaBaseURL))
	}
	return strava.NewClient(accessToken, opts...).Athlete(ctx)
}

// LogoutHandler removes the current user's tokens from the session. Other
// authenticated users in the same browser session are untouched, and logging
// out with no current user is a no-op.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.ensureSession(w, r)

		err := s.sessions.Update(sessionID, func(state *sessions.SessionState) error {
			if state.CurrentUserID == "" {
				return nil
			}
			state.DeleteToken(state.CurrentUserID)
			state.AddFlash("success", "Logged out successfully.")
			return nil
		})
		if err != nil {
			s.log.Error().Err(err).Msg("logout")
		}

		http.Redirect(w, r, "/", http.StatusFound)
	}
}
