package config

import "strings"

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type AllowedOrigins []string

// IsAllowedOrigin reports whether origin is in the allow-list.
func (ao AllowedOrigins) IsAllowedOrigin(origin string) bool {
	for _, allowed := range ao {
		if allowed == origin {
			return true
		}
	}
	return false
}

type Cors struct{}

var _ CorsConfig = Cors{}

func (Cors) GetAllowedOrigins() AllowedOrigins {
	origins := GetEnv("CORS_ALLOWED_ORIGINS", "*")
	parts := strings.Split(origins, ",")
	allowed := make(AllowedOrigins, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			allowed = append(allowed, trimmed)
		}
	}
	return allowed
}

func (Cors) GetAllowedMethods() string {
	return GetEnv("CORS_ALLOWED_METHODS", "GET, POST, PATCH, DELETE, OPTIONS")
}

func (Cors) GetAllowedHeaders() string {
	return GetEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization")
}
