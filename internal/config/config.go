package config

type Config interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetRedirectURI() string
	GetSessionSecret() string
	GetDatabasePath() string
	GetCredentialsFile() string
	GetEnv() string
}

func New() Config {
	return EnvVars{}
}
