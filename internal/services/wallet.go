package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"eventos-web/internal/api"
	"eventos-web/internal/logger"
	"eventos-web/internal/models"
	"eventos-web/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Wallet is the buyer's "my tickets" page
type Wallet struct {
	Tickets      []*models.PurchasedTicket `json:"tickets"`
	PendingCount int                       `json:"pending_count"`
	ShowAll      bool                      `json:"show_all"`
}

// WalletService serves a signed-in buyer's purchased tickets
type WalletService struct {
	backend BackendFor
	now     func() time.Time
}

// NewWalletService creates a new wallet service
func NewWalletService(backend BackendFor) *WalletService {
	return &WalletService{backend: backend, now: time.Now}
}

// MyTickets lists completed purchases, newest first. Unless showAll is set
// only purchases for upcoming events are kept. The pending payment count is
// fetched alongside; a failure there only zeroes the count.
func (s *WalletService) MyTickets(ctx context.Context, state *storage.ClientState, showAll bool) (*Wallet, error) {
	userID := state.UserID()
	if userID == "" {
		return nil, models.ErrNotAuthenticated
	}

	backend := s.backend(state)

	var (
		purchases []*models.PurchasedTicket
		pending   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		purchases, err = backend.GetPurchaseTicketsByAttender(gctx, userID)
		return err
	})
	g.Go(func() error {
		count, err := backend.CountPendingTransactions(gctx, userID)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return err
			}
			logger.Log.Warnw("failed to count pending payments", "user_id", userID, "error", err)
			return nil
		}
		pending = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	now := s.now()
	tickets := make([]*models.PurchasedTicket, 0, len(purchases))
	for _, p := range purchases {
		if p.PurchaseDate == nil {
			continue
		}
		if !showAll && p.Event != nil && !p.Event.IsUpcoming(now) {
			continue
		}
		tickets = append(tickets, p)
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].PurchaseDate.After(*tickets[j].PurchaseDate)
	})

	return &Wallet{Tickets: tickets, PendingCount: pending, ShowAll: showAll}, nil
}

// TicketPDF downloads the printable tickets of a purchase
func (s *WalletService) TicketPDF(ctx context.Context, state *storage.ClientState, purchaseID string) (*api.TicketPDF, error) {
	pdf, err := s.backend(state).DownloadTicketPDF(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to download tickets: %w", err)
	}
	return pdf, nil
}

// TicketQR writes the admission QR code of one purchase item as a JPEG. The
// purchase must belong to the signed-in buyer.
func (s *WalletService) TicketQR(ctx context.Context, state *storage.ClientState, purchaseID, itemID string, w io.Writer) error {
	userID := state.UserID()
	if userID == "" {
		return models.ErrNotAuthenticated
	}

	purchases, err := s.backend(state).GetPurchaseTicketsByAttender(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load tickets: %w", err)
	}

	for _, p := range purchases {
		if p.PurchaseID != purchaseID {
			continue
		}
		item, ok := p.FindItem(itemID)
		if !ok {
			return models.ErrPurchaseNotFound
		}
		return writeQRCode(w, item.QRPayload(purchaseID))
	}
	return models.ErrPurchaseNotFound
}
