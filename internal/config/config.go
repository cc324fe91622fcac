// Package config exposes environment-variable backed configuration behind
// small per-concern interfaces composed into Config.
package config

type Config interface {
	EnvConfig
	AuthConfig
	DBConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Auth
	DB
	Cors
}

func New() Config {
	return mainConfig{}
}
