package payphone

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// EventKind is the outcome reported by the payment box
type EventKind string

const (
	EventSucceeded EventKind = "payphone-success"
	EventFailed    EventKind = "payphone-error"
)

// Event is a payment box outcome relayed by the browser
type Event struct {
	Kind   EventKind       `json:"kind"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// Validate checks the event kind
func (e Event) Validate() error {
	if e.Kind != EventSucceeded && e.Kind != EventFailed {
		return errors.New("unknown payment event kind")
	}
	return nil
}

// PaymentID returns the provider transaction id carried in the detail
func (e Event) PaymentID() string {
	d := gjson.ParseBytes(e.Detail)
	for _, path := range []string{"id", "transactionId", "transaction_id"} {
		if v := d.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// Message returns the failure message carried in the detail, if any
func (e Event) Message() string {
	d := gjson.ParseBytes(e.Detail)
	for _, path := range []string{"message", "error", "description"} {
		if v := d.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// ErrMissingTransactionID is returned when the redirect carries no payment id
var ErrMissingTransactionID = errors.New("no transaction id was found in the payment response")

// Callback is the outcome the provider appends to the redirect URL
type Callback struct {
	PaymentID  string
	ClientTxID string
	// FallbackReference is true when ClientTxID was absent and the payment
	// id stands in for it
	FallbackReference bool
}

// ParseCallback reads the provider's redirect parameters. The payment id is
// required; the client transaction id falls back to the payment id.
func ParseCallback(query url.Values) (Callback, error) {
	paymentID := firstParam(query, "id", "transaction_id", "transactionId")
	if paymentID == "" {
		return Callback{}, ErrMissingTransactionID
	}

	cb := Callback{
		PaymentID:  paymentID,
		ClientTxID: firstParam(query, "clientTransactionId", "reference", "client_tx"),
	}
	if cb.ClientTxID == "" {
		cb.ClientTxID = paymentID
		cb.FallbackReference = true
	}
	return cb, nil
}

func firstParam(query url.Values, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(query.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
