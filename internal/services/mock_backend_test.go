package services

import (
	"context"

	"eventos-web/internal/api"
	"eventos-web/internal/models"
	"eventos-web/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) bind() BackendFor {
	return func(*storage.ClientState) Backend { return m }
}

func (m *MockBackend) Login(ctx context.Context, username, password string) (*models.AuthenticatedUser, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthenticatedUser), args.Error(1)
}

func (m *MockBackend) ValidateSession(ctx context.Context) (*models.AuthenticatedUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthenticatedUser), args.Error(1)
}

func (m *MockBackend) LoginAttender(ctx context.Context, email, password string) (*models.AuthenticatedUser, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthenticatedUser), args.Error(1)
}

func (m *MockBackend) ValidateAttenderSession(ctx context.Context) (*models.AuthenticatedUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthenticatedUser), args.Error(1)
}

func (m *MockBackend) RegisterAttender(ctx context.Context, data api.RegistrationData) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) GetAllEvents(ctx context.Context) ([]*models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockBackend) GetEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockBackend) GetTicketsByEvent(ctx context.Context, eventID string) ([]*models.TicketType, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketType), args.Error(1)
}

func (m *MockBackend) GetEventImage(ctx context.Context, eventID, kind string) ([]byte, string, error) {
	args := m.Called(ctx, eventID, kind)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockBackend) ValidateEventCode(ctx context.Context, eventID, code string) error {
	args := m.Called(ctx, eventID, code)
	return args.Error(0)
}

func (m *MockBackend) CreatePurchaseTicket(ctx context.Context, order *models.PurchaseOrder) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) CreatePurchaseTicketItem(ctx context.Context, item models.PurchaseLineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockBackend) SendTicketEmail(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockBackend) DeletePurchaseTicket(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockBackend) ConfirmPayment(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ConfirmResult), args.Error(1)
}

func (m *MockBackend) GetPurchaseTicketsByAttender(ctx context.Context, attenderID string) ([]*models.PurchasedTicket, error) {
	args := m.Called(ctx, attenderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PurchasedTicket), args.Error(1)
}

func (m *MockBackend) CountPendingTransactions(ctx context.Context, attenderID string) (int, error) {
	args := m.Called(ctx, attenderID)
	return args.Int(0), args.Error(1)
}

func (m *MockBackend) GetCurrentUserProfile(ctx context.Context) (*models.AttenderProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttenderProfile), args.Error(1)
}

func (m *MockBackend) UpdateUserProfile(ctx context.Context, userID string, fields map[string]string) (*models.AttenderProfile, error) {
	args := m.Called(ctx, userID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttenderProfile), args.Error(1)
}

func (m *MockBackend) DownloadTicketPDF(ctx context.Context, purchaseID string) (*api.TicketPDF, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.TicketPDF), args.Error(1)
}

func newTestState() *storage.ClientState {
	return storage.NewClientState(storage.NewMemoryStore())
}

func signedInAttender() *storage.ClientState {
	state := newTestState()
	state.SaveIdentity(storage.Identity{
		Token:    "tok-1",
		UserID:   "att-1",
		UserType: models.UserTypeAttender,
	})
	return state
}
