package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"eventos-web/internal/api"
	"eventos-web/internal/logger"
	"eventos-web/internal/models"
	"eventos-web/internal/payphone"
	"eventos-web/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Confirmation is the outcome of the payment provider's redirect
type Confirmation struct {
	State        CheckoutState          `json:"state"`
	PaymentID    string                 `json:"payment_id,omitempty"`
	OrderID      string                 `json:"order_id,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Retry        bool                   `json:"retry"`
	Staged       *models.StagedPurchase `json:"purchase,omitempty"`
	EmailSent    bool                   `json:"email_sent"`
	EmailWarning string                 `json:"email_warning,omitempty"`
}

// PurchaseService drives a checkout from ticket selection to a confirmed
// payment
type PurchaseService struct {
	backend  BackendFor
	launcher payphone.Launcher
	settings payphone.Settings
	now      func() time.Time

	mu         sync.Mutex
	emailed    map[string]*ticketEmail
	lastPruned time.Time
}

// emailGuardTTL is how long an order's send attempt is remembered
const emailGuardTTL = 24 * time.Hour

// ticketEmail records the single send attempt made for an order
type ticketEmail struct {
	once sync.Once
	sent bool
	at   time.Time
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(backend BackendFor, launcher payphone.Launcher, settings payphone.Settings) *PurchaseService {
	return &PurchaseService{
		backend:  backend,
		launcher: launcher,
		settings: settings,
		now:      time.Now,
		emailed:  make(map[string]*ticketEmail),
	}
}

// StartCheckout loads an event and its tickets and opens a checkout. An
// empty event id resumes the event last selected in this browser.
func (s *PurchaseService) StartCheckout(ctx context.Context, state *storage.ClientState, eventID string) (*Checkout, error) {
	if eventID == "" {
		eventID = state.SelectedEventID()
	}
	if eventID == "" {
		return nil, models.ErrEventNotFound
	}

	backend := s.backend(state)

	var (
		event   *models.Event
		tickets []*models.TicketType
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = backend.GetEventByID(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = backend.GetTicketsByEvent(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load checkout for event %s: %w", eventID, err)
	}

	state.SetSelectedEventID(eventID)
	return NewCheckout(event, tickets), nil
}

// Submit places the order for the checkout's selection and opens the payment
// box. Every failure leaves the checkout back in ticket selection with an
// inline message, except an expired session, which is only returned.
func (s *PurchaseService) Submit(ctx context.Context, state *storage.ClientState, checkout *Checkout, form models.SubmitPurchaseRequest) error {
	checkout.Error = ""

	if err := checkout.Validate(form); err != nil {
		checkout.fail(err.Error())
		return err
	}

	checkout.State = StateSubmitting
	backend := s.backend(state)
	event := checkout.Event

	if event.RequiresAccessCode() {
		if err := backend.ValidateEventCode(ctx, event.ID, strings.TrimSpace(form.AccessCode)); err != nil {
			return s.abort(checkout, err, "invalid code")
		}
	}

	profile, err := backend.GetCurrentUserProfile(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotAuthenticated) {
			checkout.fail("you must sign in to buy tickets")
			return err
		}
		return s.abort(checkout, err, "could not load your profile")
	}

	order := &models.PurchaseOrder{
		EventID:     event.ID,
		AttenderID:  profile.ID,
		Observation: strings.TrimSpace(form.Observation),
	}
	if order.AttenderID == "" {
		order.AttenderID = state.UserID()
	}
	if err := order.Validate(); err != nil {
		checkout.fail(err.Error())
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	orderID, err := backend.CreatePurchaseTicket(ctx, order)
	if err != nil {
		return s.abort(checkout, err, "the order could not be created")
	}
	checkout.OrderID = orderID

	// Items are added one at a time; a failure leaves the order partially
	// filled on the backend.
	for _, item := range checkout.lineItems(orderID) {
		if err := backend.CreatePurchaseTicketItem(ctx, item); err != nil {
			logger.Log.Warnw("order left incomplete",
				"order_id", orderID,
				"ticket_type_id", item.TicketTypeID,
				"error", err,
			)
			return s.abort(checkout, err, "the tickets could not be added to the order")
		}
	}

	staged := checkout.stage(orderID, s.now())
	if err := state.StagePurchase(staged); err != nil {
		// Without staging the callback could not confirm the payment
		s.discardUnstaged(ctx, backend, orderID)
		checkout.OrderID = ""
		checkout.fail("your order could not be saved, please try again")
		return err
	}

	cfg := payphone.NewWidgetConfig(s.settings, staged, profile)
	checkout.Widget = &cfg
	checkout.State = StateAwaitingPayment

	if err := s.launcher.Launch(ctx, cfg); err != nil {
		logger.Log.Errorw("failed to open payment widget", "order_id", orderID, "error", err)
		checkout.fail("the payment window could not be opened")
		return fmt.Errorf("failed to launch payment widget: %w", err)
	}

	logger.Log.Infow("order awaiting payment",
		"order_id", orderID,
		"event_id", event.ID,
		"total_cents", staged.TotalCents,
	)
	return nil
}

// abort maps a backend failure onto the checkout
func (s *PurchaseService) abort(checkout *Checkout, err error, fallback string) error {
	if errors.Is(err, api.ErrUnauthorized) {
		checkout.State = StateSelectingTickets
		checkout.Error = ""
		checkout.Widget = nil
		return err
	}
	checkout.fail(api.DisplayMessage(err, fallback))
	return err
}

// discardUnstaged deletes an order that never reached the payment step
func (s *PurchaseService) discardUnstaged(ctx context.Context, backend Backend, orderID string) {
	if err := backend.DeletePurchaseTicket(ctx, orderID); err != nil {
		logger.Log.Warnw("failed to delete unstaged order", "order_id", orderID, "error", err)
	}
}

// stagedCheckout rebuilds the awaiting-payment checkout from staging
func stagedCheckout(staged *models.StagedPurchase) *Checkout {
	return &Checkout{
		Event: &models.Event{
			ID:        staged.Event.ID,
			Name:      staged.Event.Name,
			StartDate: staged.Event.StartDate,
			Location:  staged.Event.Location,
			StoreID:   staged.Event.StoreID,
		},
		State:      StateAwaitingPayment,
		OrderID:    staged.OrderID,
		quantities: staged.Quantities(),
	}
}

// HandleWidgetEvent applies a payment box outcome relayed by the browser to
// the staged order
func (s *PurchaseService) HandleWidgetEvent(state *storage.ClientState, evt payphone.Event) (*Checkout, error) {
	staged, ok := state.StagedPurchase()
	if !ok {
		return nil, models.ErrNoStagedPurchase
	}

	checkout := stagedCheckout(staged)
	if err := checkout.HandleWidgetEvent(evt); err != nil {
		return nil, err
	}

	if checkout.State == StateFailed {
		logger.Log.Warnw("payment widget reported a failure", "order_id", staged.OrderID, "message", checkout.Error)
	} else {
		logger.Log.Infow("payment widget reported success", "order_id", staged.OrderID, "payment_id", checkout.PaymentID)
	}
	return checkout, nil
}

// ConfirmPayment completes a purchase from the provider's redirect. Problems
// are reported in the Confirmation; the error is only set when the session
// expired.
func (s *PurchaseService) ConfirmPayment(ctx context.Context, state *storage.ClientState, query url.Values) (*Confirmation, error) {
	cb, err := payphone.ParseCallback(query)
	if err != nil {
		return &Confirmation{State: StateFailed, Message: err.Error()}, nil
	}

	staged, ok := state.StagedPurchase()
	if !ok {
		logger.Log.Warnw("payment callback without staged purchase", "payment_id", cb.PaymentID)
		return &Confirmation{
			State:     StateFailed,
			PaymentID: cb.PaymentID,
			Message:   models.ErrNoStagedPurchase.Error(),
		}, nil
	}

	conf := &Confirmation{
		State:     StateConfirmingPayment,
		PaymentID: cb.PaymentID,
		OrderID:   staged.OrderID,
		Staged:    staged,
	}

	backend := s.backend(state)
	if _, err := backend.ConfirmPayment(ctx, api.ConfirmRequest{PaymentID: cb.PaymentID, ClientTxID: cb.ClientTxID}); err != nil {
		conf.State = StateFailed
		if errors.Is(err, api.ErrUnauthorized) {
			return conf, err
		}
		logger.Log.Errorw("payment confirmation failed",
			"order_id", staged.OrderID,
			"payment_id", cb.PaymentID,
			"error", err,
		)
		conf.Message = api.DisplayMessage(err, "the payment could not be confirmed")
		conf.Retry = true
		return conf, nil
	}

	conf.State = StateConfirmed
	state.ClearStagedPurchase()
	logger.Log.Infow("payment confirmed", "order_id", staged.OrderID, "payment_id", cb.PaymentID)

	conf.EmailSent = s.sendTicketsOnce(ctx, backend, staged.OrderID)
	if !conf.EmailSent {
		conf.EmailWarning = "your purchase is confirmed but the tickets email could not be sent"
	}
	return conf, nil
}

// sendTicketsOnce asks the backend to email an order's tickets. Each order is
// attempted at most once within emailGuardTTL; later calls report the first
// outcome.
func (s *PurchaseService) sendTicketsOnce(ctx context.Context, backend Backend, orderID string) bool {
	now := s.now()

	s.mu.Lock()
	s.pruneEmailed(now)
	email, ok := s.emailed[orderID]
	if !ok {
		email = &ticketEmail{at: now}
		s.emailed[orderID] = email
	}
	s.mu.Unlock()

	email.once.Do(func() {
		if err := backend.SendTicketEmail(ctx, orderID); err != nil {
			logger.Log.Warnw("failed to send tickets email", "order_id", orderID, "error", err)
			return
		}
		email.sent = true
	})
	return email.sent
}

// pruneEmailed forgets send attempts older than emailGuardTTL, at most once
// an hour. Callers hold s.mu.
func (s *PurchaseService) pruneEmailed(now time.Time) {
	if now.Sub(s.lastPruned) < time.Hour {
		return
	}
	s.lastPruned = now

	cutoff := now.Add(-emailGuardTTL)
	for orderID, email := range s.emailed {
		if email.at.Before(cutoff) {
			delete(s.emailed, orderID)
		}
	}
}

// DiscardOrder deletes the staged, unpaid order when the buyer goes back to
// the purchase form
func (s *PurchaseService) DiscardOrder(ctx context.Context, state *storage.ClientState, orderID string) error {
	staged, ok := state.StagedPurchase()
	if !ok || staged.OrderID != orderID {
		return models.ErrNoStagedPurchase
	}

	if err := s.backend(state).DeletePurchaseTicket(ctx, orderID); err != nil {
		return fmt.Errorf("failed to discard order: %w", err)
	}

	state.ClearStagedPurchase()
	logger.Log.Infow("order discarded", "order_id", orderID)
	return nil
}
