package storage

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionStore keeps the client state inside a gorilla/sessions session,
// normally a signed cookie. It is bound to one request/response pair and
// saves the session once per mutation.
type SessionStore struct {
	session *sessions.Session
	w       http.ResponseWriter
	r       *http.Request
}

// NewSessionStore loads the named session for the request. A session that
// fails to decode (rotated secret, tampered cookie) is replaced by a fresh
// one and the decode error is returned alongside the usable store.
func NewSessionStore(store sessions.Store, name string, w http.ResponseWriter, r *http.Request) (*SessionStore, error) {
	session, err := store.Get(r, name)
	if session == nil {
		return nil, fmt.Errorf("failed to load session %q: %w", name, err)
	}

	ss := &SessionStore{session: session, w: w, r: r}
	if err != nil {
		return ss, fmt.Errorf("discarded unreadable session %q: %w", name, err)
	}
	return ss, nil
}

func (s *SessionStore) Get(key string) (string, bool, error) {
	raw, ok := s.session.Values[key]
	if !ok {
		return "", false, nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("session value %q has unexpected type %T", key, raw)
	}
	return value, true, nil
}

func (s *SessionStore) Set(key, value string) error {
	return s.SetAll(map[string]string{key: value})
}

// SetAll writes the values and saves once. When the save fails the values are
// rolled back, so reads keep matching the cookie the browser still holds.
func (s *SessionStore) SetAll(values map[string]string) error {
	previous := make(map[string]interface{}, len(values))
	for k, v := range values {
		if old, ok := s.session.Values[k]; ok {
			previous[k] = old
		}
		s.session.Values[k] = v
	}

	if err := s.save(); err != nil {
		for k := range values {
			if old, ok := previous[k]; ok {
				s.session.Values[k] = old
			} else {
				delete(s.session.Values, k)
			}
		}
		return err
	}
	return nil
}

func (s *SessionStore) Delete(keys ...string) error {
	for _, k := range keys {
		delete(s.session.Values, k)
	}
	return s.save()
}

func (s *SessionStore) save() error {
	if err := s.session.Save(s.r, s.w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
