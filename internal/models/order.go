package models

import (
	"errors"
	"strings"
)

// PaymentStatus represents the status of a payment transaction
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailure PaymentStatus = "failure"
	PaymentError   PaymentStatus = "error"
)

// PurchaseOrder is a buyer's checkout grouping one or more line items.
// The backend assigns the ID on creation.
type PurchaseOrder struct {
	ID          string             `json:"id"`
	AttenderID  string             `json:"attender_id"`
	EventID     string             `json:"event_id"`
	Observation string             `json:"observation,omitempty"`
	AccessCode  string             `json:"access_code,omitempty"`
	Items       []PurchaseLineItem `json:"items"`
}

// PurchaseLineItem is one ticket type and quantity within a purchase order
type PurchaseLineItem struct {
	TicketTypeID    string `json:"ticket_id"`
	Quantity        int    `json:"quantity"`
	PurchaseOrderID string `json:"purchase_ticket_id"`
}

// PaymentTransaction tracks a payment made through the payment provider.
// Reference is the client transaction id, which is the purchase order id.
type PaymentTransaction struct {
	Reference   string        `json:"client_transaction_id"`
	PaymentID   string        `json:"payment_id,omitempty"`
	AmountCents int64         `json:"amount"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
}

// Validate validates the purchase order before it is sent to the backend
func (o *PurchaseOrder) Validate() error {
	if strings.TrimSpace(o.EventID) == "" {
		return errors.New("event is required")
	}

	if strings.TrimSpace(o.AttenderID) == "" {
		return errors.New("attender is required")
	}

	return nil
}

// Validate validates a line item
func (li *PurchaseLineItem) Validate() error {
	if li.TicketTypeID == "" {
		return errors.New("ticket type is required")
	}

	if li.Quantity <= 0 {
		return errors.New("quantity must be greater than 0")
	}

	if li.PurchaseOrderID == "" {
		return errors.New("purchase order is required")
	}

	return nil
}

// Validate validates the payment status value
func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailure, PaymentError:
		return nil
	default:
		return errors.New("invalid payment status")
	}
}
