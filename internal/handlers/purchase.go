package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"eventos-web/internal/api"
	"eventos-web/internal/models"
	"eventos-web/internal/payphone"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"

	"github.com/go-chi/chi/v5"
)

// PurchaseHandler drives the ticket purchase flow
type PurchaseHandler struct {
	purchaseService services.PurchaseServiceInterface
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService services.PurchaseServiceInterface) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// CheckoutResponse is the browser's view of a checkout
type CheckoutResponse struct {
	State     services.CheckoutState  `json:"state"`
	Error     string                  `json:"error,omitempty"`
	Event     *models.Event           `json:"event"`
	Tickets   []*models.TicketType    `json:"tickets,omitempty"`
	Selection map[string]int          `json:"selection"`
	Summary   models.SelectionSummary `json:"summary"`
	OrderID   string                  `json:"order_id,omitempty"`
	PaymentID string                  `json:"payment_id,omitempty"`
	Widget    *payphone.WidgetConfig  `json:"widget,omitempty"`
}

func newCheckoutResponse(c *services.Checkout) CheckoutResponse {
	return CheckoutResponse{
		State:     c.State,
		Error:     c.Error,
		Event:     c.Event,
		Tickets:   c.Tickets,
		Selection: c.Quantities(),
		Summary:   c.Summary(),
		OrderID:   c.OrderID,
		PaymentID: c.PaymentID,
		Widget:    c.Widget,
	}
}

// Checkout opens the purchase form for an event
func (h *PurchaseHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.purchaseService.StartCheckout(r.Context(), storage.FromContext(r.Context()), chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutResponse(checkout))
}

// Adjust changes the quantity of one ticket type in the browser's selection
func (h *PurchaseHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req models.QuantityAdjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.TicketTypeID == "" {
		respondError(w, r, fmt.Errorf("%w: ticket_type_id is required", models.ErrInvalidInput))
		return
	}

	checkout, err := h.purchaseService.StartCheckout(r.Context(), storage.FromContext(r.Context()), chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	checkout.Restore(req.Selection)
	if req.Quantity != nil {
		checkout.SetQuantity(req.TicketTypeID, *req.Quantity)
	} else {
		checkout.Adjust(req.TicketTypeID, req.Delta)
	}

	writeJSON(w, http.StatusOK, newCheckoutResponse(checkout))
}

// Submit places the order and returns the payment widget configuration
func (h *PurchaseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitPurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	state := storage.FromContext(r.Context())
	checkout, err := h.purchaseService.StartCheckout(r.Context(), state, chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	checkout.Restore(req.Selection)

	if err := h.purchaseService.Submit(r.Context(), state, checkout, req); err != nil {
		if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, models.ErrNotAuthenticated) {
			respondError(w, r, err)
			return
		}
		// The checkout carries the inline message for the form
		writeJSON(w, statusFor(err), newCheckoutResponse(checkout))
		return
	}

	writeJSON(w, http.StatusOK, newCheckoutResponse(checkout))
}

// WidgetEvent applies an outcome reported by the payment box
func (h *PurchaseHandler) WidgetEvent(w http.ResponseWriter, r *http.Request) {
	var evt payphone.Event
	if err := decodeJSON(w, r, &evt); err != nil {
		respondError(w, r, err)
		return
	}
	if err := evt.Validate(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	checkout, err := h.purchaseService.HandleWidgetEvent(storage.FromContext(r.Context()), evt)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutResponse(checkout))
}

// DiscardOrder deletes the unpaid order when the buyer leaves the payment step
func (h *PurchaseHandler) DiscardOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.purchaseService.DiscardOrder(r.Context(), storage.FromContext(r.Context()), chi.URLParam(r, "orderID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PaymentCallback confirms the payment the provider redirected back with
func (h *PurchaseHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	conf, err := h.purchaseService.ConfirmPayment(r.Context(), storage.FromContext(r.Context()), r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}
