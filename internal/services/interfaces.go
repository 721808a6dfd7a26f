package services

import (
	"context"
	"io"
	"net/url"

	"eventos-web/internal/api"
	"eventos-web/internal/models"
	"eventos-web/internal/payphone"
	"eventos-web/internal/storage"
)

// Backend is the part of the backend API the services depend on. It is
// implemented by *api.Client.
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.AuthenticatedUser, error)
	ValidateSession(ctx context.Context) (*models.AuthenticatedUser, error)
	LoginAttender(ctx context.Context, email, password string) (*models.AuthenticatedUser, error)
	ValidateAttenderSession(ctx context.Context) (*models.AuthenticatedUser, error)
	RegisterAttender(ctx context.Context, data api.RegistrationData) (string, error)

	GetAllEvents(ctx context.Context) ([]*models.Event, error)
	GetEventByID(ctx context.Context, eventID string) (*models.Event, error)
	GetTicketsByEvent(ctx context.Context, eventID string) ([]*models.TicketType, error)
	GetEventImage(ctx context.Context, eventID, kind string) ([]byte, string, error)

	ValidateEventCode(ctx context.Context, eventID, code string) error
	CreatePurchaseTicket(ctx context.Context, order *models.PurchaseOrder) (string, error)
	CreatePurchaseTicketItem(ctx context.Context, item models.PurchaseLineItem) error
	SendTicketEmail(ctx context.Context, orderID string) error
	DeletePurchaseTicket(ctx context.Context, orderID string) error
	ConfirmPayment(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResult, error)

	GetPurchaseTicketsByAttender(ctx context.Context, attenderID string) ([]*models.PurchasedTicket, error)
	CountPendingTransactions(ctx context.Context, attenderID string) (int, error)
	GetCurrentUserProfile(ctx context.Context) (*models.AttenderProfile, error)
	UpdateUserProfile(ctx context.Context, userID string, fields map[string]string) (*models.AttenderProfile, error)
	DownloadTicketPDF(ctx context.Context, purchaseID string) (*api.TicketPDF, error)
}

// BackendFor returns the backend bound to one browser's client state. A nil
// state yields an anonymous backend.
type BackendFor func(state *storage.ClientState) Backend

// BindClient adapts an API client to BackendFor
func BindClient(client *api.Client) BackendFor {
	return func(state *storage.ClientState) Backend {
		if state == nil {
			return client
		}
		return client.WithState(state)
	}
}

// AuthServiceInterface defines the interface for authentication services
type AuthServiceInterface interface {
	CheckSession(ctx context.Context, state *storage.ClientState) *models.Session
	CurrentSession(state *storage.ClientState) *models.Session
	Login(ctx context.Context, state *storage.ClientState, username, password string) LoginResult
	LoginAttender(ctx context.Context, state *storage.ClientState, email, password string) LoginResult
	Logout(state *storage.ClientState)
	Register(ctx context.Context, form *models.AttenderRegisterRequest) (string, error)
}

// CatalogServiceInterface defines the interface for the public event catalog
type CatalogServiceInterface interface {
	ListEvents(ctx context.Context) ([]*models.Event, error)
	EventDetail(ctx context.Context, eventID string) (*EventDetail, error)
	Categories(ctx context.Context) ([]models.Category, error)
	EventsByCategory(ctx context.Context, key string) (models.Category, []*models.Event, error)
}

// PurchaseServiceInterface defines the interface for the purchase flow
type PurchaseServiceInterface interface {
	StartCheckout(ctx context.Context, state *storage.ClientState, eventID string) (*Checkout, error)
	Submit(ctx context.Context, state *storage.ClientState, checkout *Checkout, form models.SubmitPurchaseRequest) error
	HandleWidgetEvent(state *storage.ClientState, evt payphone.Event) (*Checkout, error)
	ConfirmPayment(ctx context.Context, state *storage.ClientState, query url.Values) (*Confirmation, error)
	DiscardOrder(ctx context.Context, state *storage.ClientState, orderID string) error
}

// WalletServiceInterface defines the interface for the buyer's ticket wallet
type WalletServiceInterface interface {
	MyTickets(ctx context.Context, state *storage.ClientState, showAll bool) (*Wallet, error)
	TicketPDF(ctx context.Context, state *storage.ClientState, purchaseID string) (*api.TicketPDF, error)
	TicketQR(ctx context.Context, state *storage.ClientState, purchaseID, itemID string, w io.Writer) error
}

// ProfileServiceInterface defines the interface for profile maintenance
type ProfileServiceInterface interface {
	LinkDocument(ctx context.Context, state *storage.ClientState, req *models.DocumentUpdateRequest) (*models.AttenderProfile, error)
}

// ImageServiceInterface defines the interface for event images
type ImageServiceInterface interface {
	EventImage(ctx context.Context, eventID, kind string, width int) (*EventImage, error)
}
