package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"eventos-web/internal/logger"
	"eventos-web/internal/models"
)

// View modes for the event catalog
const (
	ViewModeGallery = "gallery"
	ViewModeList    = "list"
)

// Identity is the set of slots written when a login succeeds
type Identity struct {
	Token    string
	UserID   string
	UserType models.UserType
	EventID  string
	StoreID  string
}

// ClientState gives typed access to a Store. Reads and writes are best
// effort, failures are logged and reads fall back to "absent", except for
// staging a purchase.
type ClientState struct {
	store Store
}

// NewClientState wraps a store
func NewClientState(store Store) *ClientState {
	return &ClientState{store: store}
}

func (s *ClientState) get(key string) string {
	v, ok, err := s.store.Get(key)
	if err != nil {
		logger.Log.Warnw("client state read failed", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (s *ClientState) set(key, value string) {
	if err := s.store.Set(key, value); err != nil {
		logger.Log.Warnw("client state write failed", "key", key, "error", err)
	}
}

func (s *ClientState) remove(keys ...string) {
	if err := s.store.Delete(keys...); err != nil {
		logger.Log.Warnw("client state delete failed", "keys", keys, "error", err)
	}
}

func (s *ClientState) SessionToken() string    { return s.get(KeySessionToken) }
func (s *ClientState) UserID() string          { return s.get(KeyUserID) }
func (s *ClientState) SelectedEventID() string { return s.get(KeySelectedEventID) }
func (s *ClientState) StoreID() string         { return s.get(KeyStoreID) }

// UserType returns the persisted role, or "" when absent or unknown
func (s *ClientState) UserType() models.UserType {
	t := models.UserType(s.get(KeyUserType))
	if !t.IsValid() {
		return ""
	}
	return t
}

// SaveIdentity writes the login result in a single batch. Event and store ids
// are only written when present.
func (s *ClientState) SaveIdentity(id Identity) {
	values := map[string]string{
		KeySessionToken: id.Token,
		KeyUserID:       id.UserID,
		KeyUserType:     string(id.UserType),
	}
	if id.EventID != "" {
		values[KeySelectedEventID] = id.EventID
	}
	if id.StoreID != "" {
		values[KeyStoreID] = id.StoreID
	}

	if err := s.store.SetAll(values); err != nil {
		logger.Log.Warnw("client state identity write failed", "user_id", id.UserID, "error", err)
	}
}

// ClearIdentity drops the credentials after the backend rejected them
func (s *ClientState) ClearIdentity() {
	s.remove(KeySessionToken, KeyUserID, KeyUserType)
}

// ClearAll drops the identity and the navigation slots tied to it
func (s *ClientState) ClearAll() {
	s.remove(KeySessionToken, KeyUserID, KeyUserType, KeySelectedEventID, KeyStoreID)
}

func (s *ClientState) CSRFToken() string         { return s.get(KeyCSRFToken) }
func (s *ClientState) SetCSRFToken(token string) { s.set(KeyCSRFToken, token) }

func (s *ClientState) SetSelectedEventID(eventID string) {
	if eventID == "" {
		return
	}
	s.set(KeySelectedEventID, eventID)
}

// ViewMode returns the catalog view preference, defaulting to gallery
func (s *ClientState) ViewMode() string {
	if s.get(KeyViewMode) == ViewModeList {
		return ViewModeList
	}
	return ViewModeGallery
}

func (s *ClientState) SetViewMode(mode string) {
	if mode != ViewModeGallery && mode != ViewModeList {
		return
	}
	s.set(KeyViewMode, mode)
}

// ToggleViewMode flips between gallery and list and returns the new mode
func (s *ClientState) ToggleViewMode() string {
	next := ViewModeList
	if s.ViewMode() == ViewModeList {
		next = ViewModeGallery
	}
	s.set(KeyViewMode, next)
	return next
}

// StagePurchase persists the purchase context read back on the payment
// callback. Unlike the other slots a failed write is returned, since the
// callback cannot complete without it.
func (s *ClientState) StagePurchase(p *models.StagedPurchase) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode staged purchase: %w", err)
	}
	if err := s.store.Set(KeyPurchaseData, string(data)); err != nil {
		logger.Log.Errorw("failed to stage purchase", "order_id", p.OrderID, "size", len(data), "error", err)
		return fmt.Errorf("failed to stage purchase %s: %w", p.OrderID, err)
	}
	return nil
}

// StagedPurchase returns the staged purchase, if one exists and decodes
func (s *ClientState) StagedPurchase() (*models.StagedPurchase, bool) {
	raw := s.get(KeyPurchaseData)
	if raw == "" {
		return nil, false
	}

	var p models.StagedPurchase
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.Log.Warnw("discarding unreadable staged purchase", "error", err)
		return nil, false
	}
	return &p, true
}

func (s *ClientState) ClearStagedPurchase() {
	s.remove(KeyPurchaseData)
}

type contextKey string

const clientStateKey contextKey = "client_state"

// WithClientState returns a context carrying the state
func WithClientState(ctx context.Context, state *ClientState) context.Context {
	return context.WithValue(ctx, clientStateKey, state)
}

// FromContext returns the request's client state. Requests that did not pass
// through the state middleware get an empty, unpersisted state.
func FromContext(ctx context.Context) *ClientState {
	if state, ok := ctx.Value(clientStateKey).(*ClientState); ok && state != nil {
		return state
	}
	return NewClientState(NewMemoryStore())
}
