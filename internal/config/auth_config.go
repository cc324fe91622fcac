package config

import "time"

type AuthConfig interface {
	GetAccessSecret() string
	GetRefreshSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

// GetAccessSecret returns the signing secret for access tokens. It must
// differ from the refresh secret; the token issuer enforces this at startup.
func (Auth) GetAccessSecret() string {
	return GetEnv("JWT_ACCESS_SECRET", "")
}

func (Auth) GetRefreshSecret() string {
	return GetEnv("JWT_REFRESH_SECRET", "")
}

// GetAccessTokenExpiry defaults to one minute: the compromise window stays
// small and refresh is the normal path.
func (Auth) GetAccessTokenExpiry() time.Duration {
	return getDuration("ACCESS_TOKEN_EXPIRY", time.Minute)
}

// GetRefreshTokenExpiry defaults to fifteen days.
func (Auth) GetRefreshTokenExpiry() time.Duration {
	return getDuration("REFRESH_TOKEN_EXPIRY", 15*24*time.Hour)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
