package models

// LoginRequest is the credential pair posted by both login forms
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StaffLoginRequest is the staff sign-in form; staff log in by username
type StaffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AttenderRegisterRequest is the sign-up form for a new buyer account.
// The personname tag is registered by the auth service.
type AttenderRegisterRequest struct {
	Name            string `json:"name" validate:"required,personname"`
	LastName        string `json:"last_name" validate:"required,personname"`
	Phone           string `json:"phone" validate:"omitempty,numeric,len=10"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	AcceptedTerms   bool   `json:"accepted_terms" validate:"required"`
}

// FullName joins the first and last name the way the backend stores it
func (r *AttenderRegisterRequest) FullName() string {
	return r.Name + " " + r.LastName
}

// QuantityAdjustRequest changes the selected quantity of one ticket type.
// Exactly one of Delta or Quantity is honored; Quantity wins when set.
// Selection is the quantity map the browser currently holds.
type QuantityAdjustRequest struct {
	TicketTypeID string         `json:"ticket_type_id" validate:"required"`
	Delta        int            `json:"delta"`
	Quantity     *int           `json:"quantity"`
	Selection    map[string]int `json:"selection"`
}

// SubmitPurchaseRequest carries the buyer-entered fields of the purchase form
type SubmitPurchaseRequest struct {
	Observation string         `json:"observation" validate:"max=500"`
	AccessCode  string         `json:"access_code" validate:"max=64"`
	Selection   map[string]int `json:"selection"`
}

// DocumentUpdateRequest updates the buyer's identity document
type DocumentUpdateRequest struct {
	IDDocument     string `json:"id_document" validate:"required,max=30"`
	IDDocumentType string `json:"id_document_type" validate:"required,oneof=DNI PASSPORT CEDULA RUC"`
}

// ViewModeRequest sets the catalog view preference
type ViewModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=gallery list"`
}
