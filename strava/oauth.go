package strava

import "golang.org/x/oauth2"

// ScopeActivityReadAll grants read access to all of an athlete's activities,
// including private ones.
const ScopeActivityReadAll = "activity:read_all"

// Endpoint is Strava's OAuth 2.0 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://www.strava.com/oauth/authorize",
	TokenURL: "https://www.strava.com/oauth/token",
}

// ApprovalPromptForce makes Strava show the consent screen on every
// authorization, so switching between athletes in the same browser works.
var ApprovalPromptForce = oauth2.SetAuthURLParam("approval_prompt", "force")

// OAuthConfig builds the authorization-code flow configuration for the given
// application credentials. redirectURI must exactly match the callback URL
// registered with the Strava application.
func OAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     Endpoint,
		RedirectURL:  redirectURI,
		Scopes:       []string{ScopeActivityReadAll},
	}
}
