package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"eventos-web/internal/api"
	"eventos-web/internal/logger"
)

// ErrorResponse is the body of every error written by this package
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// ErrorHandlingMiddleware recovers from panics and answers with a 500
func ErrorHandlingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.Log.Errorw("panic while serving request",
					"error", err,
					"path", r.URL.Path,
					"request_id", api.RequestIDFrom(r.Context()),
					"stack", string(debug.Stack()),
				)

				writeError(w, http.StatusInternalServerError, ErrorResponse{
					Error: "something went wrong, please try again",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
}

// MethodNotAllowedHandler handles 405 errors
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	})
}
