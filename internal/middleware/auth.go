package middleware

import (
	"context"
	"net/http"

	"eventos-web/internal/models"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"
)

// LoginPath is where the browser is sent when it has no session
const LoginPath = "/login"

// RequireSession rejects requests from browsers without a persisted identity.
// The session is placed in the request context for the handlers.
func RequireSession(auth services.AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.CurrentSession(storage.FromContext(r.Context()))
			if session == nil {
				writeError(w, http.StatusUnauthorized, ErrorResponse{
					Error:    "authentication required",
					Redirect: LoginPath,
				})
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext retrieves the session placed by RequireSession
func GetSessionFromContext(ctx context.Context) *models.Session {
	if session, ok := ctx.Value(SessionContextKey).(*models.Session); ok {
		return session
	}
	return nil
}
