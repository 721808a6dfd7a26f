package middleware

import (
	"net/http"

	"eventos-web/internal/api"
	"eventos-web/internal/logger"
	"eventos-web/internal/storage"
)

// ClientState opens the browser's persisted state and puts it in the request
// context. A provider failure degrades to a state that lives only for this
// request rather than failing the request.
func ClientState(provider storage.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, err := provider.Open(w, r)
			switch {
			case store == nil:
				logger.Log.Warnw("client state unavailable, using request-scoped state",
					"error", err,
					"request_id", api.RequestIDFrom(r.Context()),
				)
				store = storage.NewMemoryStore()
			case err != nil:
				logger.Log.Warnw("client state was reset",
					"error", err,
					"request_id", api.RequestIDFrom(r.Context()),
				)
			}

			ctx := storage.WithClientState(r.Context(), storage.NewClientState(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
