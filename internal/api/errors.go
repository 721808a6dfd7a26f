package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a failed backend call
type Kind string

const (
	KindNetwork      Kind = "network"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
)

// MsgNetwork is shown whenever the backend cannot be reached
const MsgNetwork = "could not connect to the server"

var (
	// ErrUnauthorized matches any error caused by the backend rejecting the
	// session token. The bound client state has already been cleared.
	ErrUnauthorized = errors.New("session expired or invalid")
	// ErrNotFound matches 404 responses
	ErrNotFound = errors.New("resource not found")
)

// Error is the single error type returned by the client. Message is safe to
// show to the buyer.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("backend %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel errors by kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// DisplayMessage returns the buyer-facing message of err, or fallback when
// err carries none
func DisplayMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// extractMessage pulls a human-readable message out of an error body. JSON
// bodies are searched for message, error and details in that order; anything
// else is used as plain text.
func extractMessage(body []byte, fallback string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	if gjson.Valid(trimmed) {
		parsed := gjson.Parse(trimmed)
		if parsed.IsObject() {
			for _, field := range []string{"message", "error", "details"} {
				if v := parsed.Get(field); v.Exists() && v.String() != "" {
					return v.String()
				}
			}
			return fallback
		}
		if parsed.Type == gjson.String && parsed.String() != "" {
			return parsed.String()
		}
		return fallback
	}

	return trimmed
}

// statusError converts a non-2xx response into an *Error
func statusError(status int, body []byte, fallback string) *Error {
	kind := KindValidation
	switch {
	case status == 401:
		kind = KindUnauthorized
	case status == 404:
		kind = KindNotFound
	case status >= 500:
		kind = KindServer
	}

	if fallback == "" {
		fallback = fmt.Sprintf("server error (status %d)", status)
	}

	return &Error{
		Kind:       kind,
		StatusCode: status,
		Message:    extractMessage(body, fallback),
	}
}
