package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"eventos-web/internal/models"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"

	"github.com/go-chi/chi/v5"
)

// WalletHandler serves the buyer's purchased tickets
type WalletHandler struct {
	walletService services.WalletServiceInterface
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService services.WalletServiceInterface) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// MyTickets lists the buyer's purchases. ?all=true includes past events.
func (h *WalletHandler) MyTickets(w http.ResponseWriter, r *http.Request) {
	showAll := false
	if raw := r.URL.Query().Get("all"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: all must be true or false", models.ErrInvalidInput))
			return
		}
		showAll = parsed
	}

	wallet, err := h.walletService.MyTickets(r.Context(), storage.FromContext(r.Context()), showAll)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// TicketPDF downloads the printable tickets of a purchase
func (h *WalletHandler) TicketPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.walletService.TicketPDF(r.Context(), storage.FromContext(r.Context()), chi.URLParam(r, "purchaseID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf.Content)
}

// TicketQR renders the entry QR code of one ticket item
func (h *WalletHandler) TicketQR(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.walletService.TicketQR(
		r.Context(),
		storage.FromContext(r.Context()),
		chi.URLParam(r, "purchaseID"),
		chi.URLParam(r, "itemID"),
		&buf,
	)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
