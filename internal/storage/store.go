// Package storage holds the per-browser client state: the session identity,
// navigation preferences and the staged purchase that must survive the
// redirect to the payment provider.
package storage

import "errors"

// Slot names. These are the only keys the application writes.
const (
	KeySessionToken    = "session_token"
	KeyUserID          = "user_id"
	KeyUserType        = "user_type"
	KeySelectedEventID = "selected_event_id"
	KeyStoreID         = "store_id"
	KeyViewMode        = "view_mode"
	KeyPurchaseData    = "purchase_data"
	KeyCSRFToken       = "csrf_token"
)

// ErrStoreUnavailable is returned by backends that cannot reach their storage
var ErrStoreUnavailable = errors.New("client state store unavailable")

// Store is a small string key-value store scoped to one browser
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)
	// Set writes a single value
	Set(key, value string) error
	// SetAll writes several values as one batch
	SetAll(values map[string]string) error
	// Delete removes the given keys; missing keys are not an error
	Delete(keys ...string) error
}
