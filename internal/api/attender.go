package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"eventos-web/internal/models"

	"github.com/tidwall/gjson"
)

// GetPurchaseTicketsByAttender returns a buyer's purchase orders
func (c *Client) GetPurchaseTicketsByAttender(ctx context.Context, attenderID string) ([]*models.PurchasedTicket, error) {
	resp, err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/purchase_ticket/attender",
		query:         url.Values{"id": {attenderID}},
		authenticated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for attender %s: %w", attenderID, err)
	}

	tickets, err := models.DecodePurchasedTickets(resp.body)
	if err != nil {
		return nil, &Error{Kind: KindServer, Message: "the order list could not be read", Err: err}
	}
	return tickets, nil
}

// CountPendingTransactions returns how many payments of a buyer are still
// pending. The backend answers with either a list or a bare number.
func (c *Client) CountPendingTransactions(ctx context.Context, attenderID string) (int, error) {
	resp, err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/payphone_transaction/pending/by_attender/" + url.PathEscape(attenderID),
		authenticated: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get pending transactions for attender %s: %w", attenderID, err)
	}

	parsed := gjson.ParseBytes(resp.body)
	switch {
	case parsed.IsArray():
		return len(parsed.Array()), nil
	case parsed.Type == gjson.Number:
		return int(parsed.Int()), nil
	default:
		return 0, nil
	}
}

// GetCurrentUserProfile fetches the profile of the buyer the bound state
// belongs to
func (c *Client) GetCurrentUserProfile(ctx context.Context) (*models.AttenderProfile, error) {
	userID := ""
	if c.state != nil {
		userID = c.state.UserID()
	}
	if userID == "" {
		return nil, models.ErrNotAuthenticated
	}

	resp, err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          "/attender",
		query:         url.Values{"id": {userID}},
		authenticated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return models.DecodeAttenderProfile(gjson.ParseBytes(resp.body)), nil
}

// UpdateUserProfile updates fields of a buyer profile and returns the result
func (c *Client) UpdateUserProfile(ctx context.Context, userID string, fields map[string]string) (*models.AttenderProfile, error) {
	resp, err := c.do(ctx, request{
		method:        http.MethodPut,
		path:          "/attender/" + url.PathEscape(userID),
		json:          fields,
		authenticated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", userID, err)
	}

	return models.DecodeAttenderProfile(gjson.ParseBytes(resp.body)), nil
}

// TicketPDF is a downloaded ticket document
type TicketPDF struct {
	FileName string
	Content  []byte
}

// DownloadTicketPDF fetches the printable tickets of an order
func (c *Client) DownloadTicketPDF(ctx context.Context, purchaseID string) (*TicketPDF, error) {
	resp, err := c.do(ctx, request{
		method:        http.MethodPost,
		path:          "/purchase_ticket/download_ticket",
		query:         url.Values{"purchase_ticket_id": {purchaseID}},
		json:          struct{}{},
		authenticated: true,
		expect:        []int{http.StatusOK},
		errorMessages: map[int]string{
			http.StatusNotFound: "the ticket does not exist or the PDF could not be generated",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download tickets for order %s: %w", purchaseID, err)
	}

	return &TicketPDF{
		FileName: TicketFileName(purchaseID),
		Content:  resp.body,
	}, nil
}

// TicketFileName names a ticket PDF after the first segment of the order id
func TicketFileName(purchaseID string) string {
	return "ticket_" + strings.SplitN(purchaseID, "-", 2)[0] + ".pdf"
}
