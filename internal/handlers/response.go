package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"eventos-web/internal/api"
	"eventos-web/internal/logger"
	"eventos-web/internal/middleware"
	"eventos-web/internal/models"
	"eventos-web/internal/services"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every failed request
type ErrorBody struct {
	Error    string            `json:"error"`
	Redirect string            `json:"redirect,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Warnw("failed to write JSON response", "error", err)
	}
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", models.ErrInvalidInput)
	}
	return nil
}

// statusFor maps an error onto the HTTP status reported to the browser
func statusFor(err error) int {
	var (
		verr     *services.ValidationError
		checkout *services.CheckoutError
		apiErr   *api.Error
	)

	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, models.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &verr), errors.As(err, &checkout), errors.Is(err, models.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, api.ErrNotFound),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrPurchaseNotFound),
		errors.Is(err, models.ErrTicketTypeNotFound),
		errors.Is(err, models.ErrNoStagedPurchase):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		switch apiErr.Kind {
		case api.KindValidation:
			return http.StatusUnprocessableEntity
		case api.KindNetwork:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

// errorBody builds the response body for err
func errorBody(err error) ErrorBody {
	var (
		verr     *services.ValidationError
		checkout *services.CheckoutError
	)

	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, models.ErrNotAuthenticated):
		return ErrorBody{Error: "your session has expired, please sign in again", Redirect: middleware.LoginPath}
	case errors.As(err, &verr):
		return ErrorBody{Error: "please correct the highlighted fields", Fields: verr.Fields}
	case errors.As(err, &checkout):
		return ErrorBody{Error: checkout.Message, Reason: string(checkout.Reason)}
	case errors.Is(err, models.ErrInvalidInput):
		return ErrorBody{Error: err.Error()}
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == api.KindNetwork {
			return ErrorBody{Error: api.MsgNetwork}
		}
		return ErrorBody{Error: api.DisplayMessage(err, "the server could not complete the request")}
	}

	for _, known := range []error{
		models.ErrEventNotFound,
		models.ErrCategoryNotFound,
		models.ErrPurchaseNotFound,
		models.ErrTicketTypeNotFound,
		models.ErrNoStagedPurchase,
	} {
		if errors.Is(err, known) {
			return ErrorBody{Error: known.Error()}
		}
	}

	return ErrorBody{Error: "something went wrong, please try again"}
}

// respondError converts any error into its JSON response. Server-side
// failures are logged here so handlers do not have to.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Errorw("request failed",
			"path", r.URL.Path,
			"status", status,
			"request_id", api.RequestIDFrom(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, errorBody(err))
}
