package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"eventos-web/internal/models"
	"eventos-web/internal/payphone"
)

// CheckoutState is the position of a checkout in the purchase flow
type CheckoutState string

const (
	StateSelectingTickets  CheckoutState = "selecting_tickets"
	StateSubmitting        CheckoutState = "submitting"
	StateAwaitingPayment   CheckoutState = "awaiting_payment"
	StateConfirmingPayment CheckoutState = "confirming_payment"
	StateConfirmed         CheckoutState = "confirmed"
	StateFailed            CheckoutState = "failed"
)

// CheckoutReason identifies which purchase form rule rejected a submission
type CheckoutReason string

const (
	ReasonObservationRequired CheckoutReason = "observation_required"
	ReasonAccessCodeRequired  CheckoutReason = "access_code_required"
	ReasonBelowMinimum        CheckoutReason = "below_minimum"
	ReasonEmptySelection      CheckoutReason = "empty_selection"
	ReasonFreeSelection       CheckoutReason = "free_selection"
)

// CheckoutError is a purchase form rule violation found before any backend call
type CheckoutError struct {
	Reason       CheckoutReason `json:"reason"`
	Message      string         `json:"message"`
	TicketTypeID string         `json:"ticket_type_id,omitempty"`
}

func (e *CheckoutError) Error() string {
	return e.Message
}

var errNoPaymentInProgress = errors.New("there is no payment in progress")

// Checkout is one buyer's ticket selection for an event and its progress
// through payment. Quantities always stay within each ticket type's bounds.
type Checkout struct {
	Event     *models.Event
	Tickets   []*models.TicketType
	State     CheckoutState
	Error     string
	OrderID   string
	PaymentID string
	Widget    *payphone.WidgetConfig

	quantities map[string]int
}

// NewCheckout builds a checkout over the event's visible ticket types, each
// starting at its initial quantity
func NewCheckout(event *models.Event, tickets []*models.TicketType) *Checkout {
	visible := models.VisibleTicketTypes(tickets)

	c := &Checkout{
		Event:      event,
		Tickets:    visible,
		State:      StateSelectingTickets,
		quantities: make(map[string]int, len(visible)),
	}
	for _, tt := range visible {
		c.quantities[tt.ID] = tt.InitialQuantity()
	}
	return c
}

func (c *Checkout) ticket(id string) *models.TicketType {
	for _, tt := range c.Tickets {
		if tt.ID == id {
			return tt
		}
	}
	return nil
}

// Quantity returns the selected quantity of a ticket type
func (c *Checkout) Quantity(ticketTypeID string) int {
	return c.quantities[ticketTypeID]
}

// Quantities returns a copy of the selection
func (c *Checkout) Quantities() map[string]int {
	out := make(map[string]int, len(c.quantities))
	for id, q := range c.quantities {
		out[id] = q
	}
	return out
}

// SetQuantity sets a ticket type's quantity, clamped to its bounds. Fixed
// ticket types and unknown ids are left alone.
func (c *Checkout) SetQuantity(ticketTypeID string, quantity int) {
	tt := c.ticket(ticketTypeID)
	if tt == nil || tt.IsFixed() {
		return
	}
	c.quantities[ticketTypeID] = tt.Clamp(quantity)
}

// Adjust moves a quantity by delta. The sum saturates instead of wrapping, so
// an oversized delta still lands on the nearest bound.
func (c *Checkout) Adjust(ticketTypeID string, delta int) {
	q := c.Quantity(ticketTypeID)
	switch {
	case delta > 0 && q > math.MaxInt-delta:
		q = math.MaxInt
	case delta < 0 && q < math.MinInt-delta:
		q = math.MinInt
	default:
		q += delta
	}
	c.SetQuantity(ticketTypeID, q)
}

func (c *Checkout) Increment(ticketTypeID string) { c.Adjust(ticketTypeID, 1) }
func (c *Checkout) Decrement(ticketTypeID string) { c.Adjust(ticketTypeID, -1) }

// Restore re-applies a selection held by the browser
func (c *Checkout) Restore(selection map[string]int) {
	for id, q := range selection {
		c.SetQuantity(id, q)
	}
}

// Total returns the selection's price in cents
func (c *Checkout) Total() int64 {
	var total int64
	for _, tt := range c.Tickets {
		total += int64(c.quantities[tt.ID]) * tt.Price
	}
	return total
}

// Summary prices the selection line by line in display order
func (c *Checkout) Summary() models.SelectionSummary {
	summary := models.SelectionSummary{
		EventID:   c.Event.ID,
		EventName: c.Event.Name,
		Lines:     make([]models.SelectionLine, 0, len(c.Tickets)),
	}
	for _, tt := range c.Tickets {
		q := c.quantities[tt.ID]
		summary.Lines = append(summary.Lines, models.SelectionLine{
			TicketTypeID:  tt.ID,
			TicketName:    tt.Name,
			PriceCents:    tt.Price,
			Quantity:      q,
			SubtotalCents: int64(q) * tt.Price,
			Fixed:         tt.IsFixed(),
			Hint:          tt.Hint(),
		})
	}
	summary.TotalCents = c.Total()
	return summary
}

// Validate applies the purchase form rules in order and returns the first
// violation as a *CheckoutError
func (c *Checkout) Validate(form models.SubmitPurchaseRequest) error {
	if c.Event.ObservationObligatory && strings.TrimSpace(form.Observation) == "" {
		return &CheckoutError{Reason: ReasonObservationRequired, Message: "observation is required"}
	}

	if c.Event.RequiresAccessCode() && strings.TrimSpace(form.AccessCode) == "" {
		return &CheckoutError{Reason: ReasonAccessCodeRequired, Message: "access code is required"}
	}

	for _, tt := range c.Tickets {
		q := c.quantities[tt.ID]
		if q > 0 && q < tt.MinimumToBuy {
			return &CheckoutError{
				Reason:       ReasonBelowMinimum,
				Message:      fmt.Sprintf("for %s you must buy at least %d tickets", tt.Name, tt.MinimumToBuy),
				TicketTypeID: tt.ID,
			}
		}
	}

	selected := 0
	for _, q := range c.quantities {
		selected += q
	}
	if selected == 0 {
		return &CheckoutError{Reason: ReasonEmptySelection, Message: "select at least one ticket"}
	}

	// The payment box cannot charge a zero amount
	if c.Total() <= 0 {
		return &CheckoutError{Reason: ReasonFreeSelection, Message: "free tickets cannot be purchased online"}
	}

	return nil
}

// lineItems returns the positive-quantity lines in display order
func (c *Checkout) lineItems(orderID string) []models.PurchaseLineItem {
	var items []models.PurchaseLineItem
	for _, tt := range c.Tickets {
		if q := c.quantities[tt.ID]; q > 0 {
			items = append(items, models.PurchaseLineItem{
				TicketTypeID:    tt.ID,
				Quantity:        q,
				PurchaseOrderID: orderID,
			})
		}
	}
	return items
}

// stage builds the record read back on the payment callback
func (c *Checkout) stage(orderID string, now time.Time) *models.StagedPurchase {
	staged := &models.StagedPurchase{
		OrderID:    orderID,
		Event:      c.Event.Snapshot(),
		TotalCents: c.Total(),
		StagedAt:   now,
	}
	for _, tt := range c.Tickets {
		if q := c.quantities[tt.ID]; q > 0 {
			staged.Items = append(staged.Items, models.StagedItem{
				TicketTypeID: tt.ID,
				Name:         tt.Name,
				EventID:      c.Event.ID,
				Quantity:     q,
			})
		}
	}
	return staged
}

// fail returns the checkout to ticket selection with an inline message
func (c *Checkout) fail(message string) {
	c.State = StateSelectingTickets
	c.Error = message
	c.Widget = nil
}

// HandleWidgetEvent applies a payment box outcome. A success only records the
// provider payment id; the checkout stays in AwaitingPayment until the
// provider redirects back.
func (c *Checkout) HandleWidgetEvent(evt payphone.Event) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	if c.State != StateAwaitingPayment {
		return errNoPaymentInProgress
	}

	switch evt.Kind {
	case payphone.EventSucceeded:
		c.PaymentID = evt.PaymentID()
		c.Error = ""
	case payphone.EventFailed:
		c.State = StateFailed
		c.Error = evt.Message()
		if c.Error == "" {
			c.Error = "the payment could not be completed"
		}
	}
	return nil
}
