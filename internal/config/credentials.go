package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Sentinel placeholders meaning "not configured". These are the literal
// values shipped in the example credentials file, so an untouched install
// resolves to them rather than to empty strings.
const (
	SentinelClientID     = "your_strava_client_id_here"
	SentinelClientSecret = "your_strava_client_secret_here"
	SentinelMapsAPIKey   = "your_google_maps_api_key_here"
	SentinelAccessToken  = "your_strava_access_token_here"
)

const (
	clientIDVar     = "STRAVA_CLIENT_ID"
	clientSecretVar = "STRAVA_CLIENT_SECRET"
	mapsAPIKeyVar   = "GOOGLE_MAPS_API_KEY"
	accessTokenVar  = "STRAVA_ACCESS_TOKEN"
)

// Credentials is the effective Strava/Maps credential triple.
type Credentials struct {
	ClientID     string
	ClientSecret string
	MapsAPIKey   string
}

// Configured reports whether all three values carry real (non-sentinel)
// credentials.
func (c Credentials) Configured() bool {
	return c.ClientID != SentinelClientID &&
		c.ClientSecret != SentinelClientSecret &&
		c.MapsAPIKey != SentinelMapsAPIKey
}

// CredentialResolver merges environment-supplied credentials with a
// dotenv-format fallback file. Precedence per value: environment, then file,
// then sentinel. Resolution happens on every call so environment changes take
// effect on the next request.
type CredentialResolver struct {
	filePath string
}

func NewCredentialResolver(filePath string) *CredentialResolver {
	return &CredentialResolver{filePath: filePath}
}

// Resolve never fails: missing sources yield sentinel-filled Credentials and
// callers detect "not configured" via Configured.
func (r *CredentialResolver) Resolve() Credentials {
	file := r.fileValues()
	return Credentials{
		ClientID:     pick(os.Getenv(clientIDVar), file[clientIDVar], SentinelClientID),
		ClientSecret: pick(os.Getenv(clientSecretVar), file[clientSecretVar], SentinelClientSecret),
		MapsAPIKey:   pick(os.Getenv(mapsAPIKeyVar), file[mapsAPIKeyVar], SentinelMapsAPIKey),
	}
}

// FallbackAccessToken returns the static access token from the fallback file,
// used when no browser session carries an authenticated user. The token is
// deliberately never read from the environment.
func (r *CredentialResolver) FallbackAccessToken() (string, bool) {
	token := r.fileValues()[accessTokenVar]
	if token == "" || token == SentinelAccessToken {
		return "", false
	}
	return token, true
}

func (r *CredentialResolver) fileValues() map[string]string {
	if r.filePath == "" {
		return nil
	}
	values, err := godotenv.Read(r.filePath)
	if err != nil {
		return nil
	}
	return values
}

func pick(envValue, fileValue, sentinel string) string {
	if envValue != "" && envValue != sentinel {
		return envValue
	}
	if fileValue != "" && fileValue != sentinel {
		return fileValue
	}
	return sentinel
}
