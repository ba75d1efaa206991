package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	portEnvVar          = "PORT"
	appNameEnvVar       = "APP_NAME"
	baseURLEnvVar       = "BASE_URL"
	redirectURIEnvVar   = "STRAVA_REDIRECT_URI"
	sessionSecretEnvVar = "SECRET_KEY"
	databaseEnvVar      = "DATABASE_PATH"
	credentialsEnvVar   = "CREDENTIALS_FILE"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "5001")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameEnvVar, "Traffic Dashboard")
}

func (e EnvVars) GetBaseURL() string {
	return GetEnv(baseURLEnvVar, "http://localhost:5001")
}

// GetRedirectURI returns the OAuth redirect URI. It must exactly match the
// callback URL registered with the Strava application, otherwise the provider
// rejects the authorization request.
func (e EnvVars) GetRedirectURI() string {
	return GetEnv(redirectURIEnvVar, e.GetBaseURL()+"/oauth/callback")
}

var generatedSecret struct {
	once  sync.Once
	value string
}

// GetSessionSecret returns the cookie-signing secret. When the environment
// variable is unset a random secret is generated once per process, which
// invalidates all existing sessions on restart.
func (EnvVars) GetSessionSecret() string {
	if secret := os.Getenv(sessionSecretEnvVar); secret != "" {
		return secret
	}
	generatedSecret.once.Do(func() {
		b := make([]byte, 32)
		rand.Read(b)
		generatedSecret.value = hex.EncodeToString(b)
	})
	return generatedSecret.value
}

func (EnvVars) GetDatabasePath() string {
	return GetEnv(databaseEnvVar, "traffic_comparisons.db")
}

func (EnvVars) GetCredentialsFile() string {
	return GetEnv(credentialsEnvVar, "config.env")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
