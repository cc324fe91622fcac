package server

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// ContextKeyTrainerID stores the authenticated trainer id.
const ContextKeyTrainerID ContextKey = "trainer_id"

// RequireAuth validates the Bearer access token and injects the trainer id
// into the request context. Any failure, including an expired access token,
// is a 401; clients are expected to refresh and retry.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeStatus(w, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeStatus(w, http.StatusUnauthorized)
				return
			}

			claims, err := s.issuer.DecodeAccess(parts[1])
			if err != nil {
				writeStatus(w, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyTrainerID, claims.TrainerID)
			next(w, r.WithContext(ctx))
		}
	}
}

// trainerIDFromContext returns the trainer id placed there by RequireAuth.
func trainerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyTrainerID).(string)
	return id, ok && id != ""
}
