package models

import "github.com/tidwall/gjson"

// UserType distinguishes the two roles that can sign in
type UserType string

const (
	// UserTypeAttender is the ticket-buying end user
	UserTypeAttender UserType = "attender"
	// UserTypeStaff is the staff/admin role, called "user" by the backend
	UserTypeStaff UserType = "user"
)

// IsValid reports whether the user type is one of the known roles
func (t UserType) IsValid() bool {
	return t == UserTypeAttender || t == UserTypeStaff
}

// Session is the authenticated identity of the current browser
type Session struct {
	Token    string   `json:"-"`
	UserID   string   `json:"user_id"`
	UserType UserType `json:"user_type"`
	Role     string   `json:"role,omitempty"`
	EventID  string   `json:"event_id,omitempty"`
	StoreID  string   `json:"store_id,omitempty"`
	// Profile holds what the backend returned when the session was last
	// validated. It is nil when validation failed and the persisted identity
	// was trusted as-is.
	Profile *AuthenticatedUser `json:"profile,omitempty"`
}

// AuthenticatedUser is the backend's answer to a login or session validation
type AuthenticatedUser struct {
	UserID   string           `json:"user_id"`
	Token    string           `json:"-"`
	Role     string           `json:"role,omitempty"`
	EventID  string           `json:"event_id,omitempty"`
	StoreID  string           `json:"store_id,omitempty"`
	Attender *AttenderProfile `json:"attender,omitempty"`
}

// AttenderProfile is the buyer profile kept by the backend
type AttenderProfile struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	IDDocument     string `json:"id_document,omitempty"`
	IDDocumentType string `json:"id_document_type,omitempty"`
}

// DecodeAuthenticatedUser decodes a login or validation response
func DecodeAuthenticatedUser(r gjson.Result) *AuthenticatedUser {
	user := &AuthenticatedUser{
		UserID:  firstString(r, "id", "_id"),
		Token:   firstString(r, "jwtoken", "token"),
		Role:    firstString(r, "role"),
		EventID: firstString(r, "event_id", "eventId"),
		StoreID: firstString(r, "store_id", "storeId"),
	}

	if attender := r.Get("user"); attender.IsObject() {
		user.Attender = DecodeAttenderProfile(attender)
	}

	return user
}

// DecodeAttenderProfile decodes an attender record
func DecodeAttenderProfile(r gjson.Result) *AttenderProfile {
	return &AttenderProfile{
		ID:             firstString(r, "_id", "id"),
		FullName:       firstString(r, "full_name", "fullName"),
		Email:          firstString(r, "email"),
		Phone:          firstString(r, "phone"),
		IDDocument:     firstString(r, "idDocument", "id_document"),
		IDDocumentType: firstString(r, "idDocumentType", "id_document_type"),
	}
}
