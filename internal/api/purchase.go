package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"eventos-web/internal/models"

	"github.com/tidwall/gjson"
)

// ValidateEventCode checks an event access code
func (c *Client) ValidateEventCode(ctx context.Context, eventID, code string) error {
	_, err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/event/validate_code",
		json:          map[string]string{"event_id": eventID, "code": code},
		authenticated: true,
		fallbacks: map[int]string{
			http.StatusBadRequest: "invalid code",
			http.StatusNotFound:   "invalid code",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to validate code for event %s: %w", eventID, err)
	}
	return nil
}

// CreatePurchaseTicket creates a purchase order and returns its id. Line
// items are added separately.
func (c *Client) CreatePurchaseTicket(ctx context.Context, order *models.PurchaseOrder) (string, error) {
	body := map[string]string{
		"event_id":    order.EventID,
		"attender_id": order.AttenderID,
	}
	if obs := strings.TrimSpace(order.Observation); obs != "" {
		body["observation"] = obs
	}

	resp, err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/purchase_ticket",
		json:          body,
		authenticated: true,
		expect:        []int{http.StatusCreated},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create purchase order: %w", err)
	}

	id := models.IDOf(resp.body)
	if id == "" {
		return "", &Error{Kind: KindServer, StatusCode: resp.status, Message: "the order was created without an id"}
	}
	return id, nil
}

// CreatePurchaseTicketItem adds one ticket type and quantity to an order
func (c *Client) CreatePurchaseTicketItem(ctx context.Context, item models.PurchaseLineItem) error {
	_, err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/purchase_ticket_item",
		json:          item,
		authenticated: true,
		expect:        []int{http.StatusCreated},
	})
	if err != nil {
		return fmt.Errorf("failed to add ticket %s to order %s: %w", item.TicketTypeID, item.PurchaseOrderID, err)
	}
	return nil
}

// SendTicketEmail asks the backend to email the tickets of an order
func (c *Client) SendTicketEmail(ctx context.Context, orderID string) error {
	_, err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/purchase_ticket/send_ticket",
		query:         url.Values{"purchase_ticket_id": {orderID}},
		json:          struct{}{},
		authenticated: true,
		expect:        []int{http.StatusOK},
	})
	if err != nil {
		return fmt.Errorf("failed to send tickets for order %s: %w", orderID, err)
	}
	return nil
}

// DeletePurchaseTicket removes an unpaid order
func (c *Client) DeletePurchaseTicket(ctx context.Context, orderID string) error {
	_, err := c.do(ctx, request{
		method:        http.MethodDelete,
		path:          "/purchase_ticket",
		query:         url.Values{"id": {orderID}},
		authenticated: true,
		expect:        []int{http.StatusNoContent},
	})
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}
	return nil
}

// ConfirmRequest is the body of a payment confirmation
type ConfirmRequest struct {
	PaymentID  string `json:"paymentId"`
	ClientTxID string `json:"clientTxId"`
}

// ConfirmResult is what the backend returned for a confirmed payment. The
// body may be empty, in which case Raw is nil.
type ConfirmResult struct {
	PurchaseID string          `json:"purchase_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// ConfirmPayment reports a completed widget payment to the backend
func (c *Client) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	resp, err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/payments/confirm",
		json:          req,
		authenticated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment %s: %w", req.PaymentID, err)
	}

	result := &ConfirmResult{}
	if gjson.ValidBytes(resp.body) && len(strings.TrimSpace(string(resp.body))) > 0 {
		parsed := gjson.ParseBytes(resp.body)
		result.Raw = json.RawMessage(resp.body)
		result.PurchaseID = parsed.Get("purchaseId").String()
		result.Status = parsed.Get("status").String()
	}
	return result, nil
}
