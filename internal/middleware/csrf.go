package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"eventos-web/internal/logger"
	"eventos-web/internal/storage"
)

// CSRFHeader carries the token in both directions
const CSRFHeader = "X-CSRF-Token"

// EnsureCSRFToken makes sure the browser's client state holds a CSRF token
// and echoes it in the response header. Must run after ClientState.
func EnsureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := storage.FromContext(r.Context())

		token := state.CSRFToken()
		if token == "" {
			token = GenerateCSRFToken()
			state.SetCSRFToken(token)
		}

		w.Header().Set(CSRFHeader, token)
		next.ServeHTTP(w, r)
	})
}

// CSRFProtection rejects state-changing requests whose X-CSRF-Token header
// does not match the token in the client state
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip CSRF check for safe methods
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		expected := storage.FromContext(r.Context()).CSRFToken()
		provided := r.Header.Get(CSRFHeader)

		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			logger.Log.Warnw("csrf token mismatch", "path", r.URL.Path, "ip", getClientIP(r))
			writeError(w, http.StatusForbidden, ErrorResponse{
				Error: "security token mismatch, please refresh the page and try again",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateCSRFToken generates a random token
func GenerateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
