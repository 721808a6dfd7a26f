package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"eventos-web/internal/api"
	"eventos-web/internal/models"
	"eventos-web/internal/payphone"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

// MockAuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CheckSession(ctx context.Context, state *storage.ClientState) *models.Session {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Session)
}

func (m *MockAuthService) CurrentSession(state *storage.ClientState) *models.Session {
	args := m.Called(state)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Session)
}

func (m *MockAuthService) Login(ctx context.Context, state *storage.ClientState, username, password string) services.LoginResult {
	args := m.Called(ctx, state, username, password)
	return args.Get(0).(services.LoginResult)
}

func (m *MockAuthService) LoginAttender(ctx context.Context, state *storage.ClientState, email, password string) services.LoginResult {
	args := m.Called(ctx, state, email, password)
	return args.Get(0).(services.LoginResult)
}

func (m *MockAuthService) Logout(state *storage.ClientState) {
	m.Called(state)
}

func (m *MockAuthService) Register(ctx context.Context, form *models.AttenderRegisterRequest) (string, error) {
	args := m.Called(ctx, form)
	return args.String(0), args.Error(1)
}

// MockCatalogService for testing
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockCatalogService) EventDetail(ctx context.Context, eventID string) (*services.EventDetail, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EventDetail), args.Error(1)
}

func (m *MockCatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCatalogService) EventsByCategory(ctx context.Context, key string) (models.Category, []*models.Event, error) {
	args := m.Called(ctx, key)
	var events []*models.Event
	if args.Get(1) != nil {
		events = args.Get(1).([]*models.Event)
	}
	return args.Get(0).(models.Category), events, args.Error(2)
}

// MockImageService for testing
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) EventImage(ctx context.Context, eventID, kind string, width int) (*services.EventImage, error) {
	args := m.Called(ctx, eventID, kind, width)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EventImage), args.Error(1)
}

// MockPurchaseService for testing
type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) StartCheckout(ctx context.Context, state *storage.ClientState, eventID string) (*services.Checkout, error) {
	args := m.Called(ctx, state, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Checkout), args.Error(1)
}

func (m *MockPurchaseService) Submit(ctx context.Context, state *storage.ClientState, checkout *services.Checkout, form models.SubmitPurchaseRequest) error {
	args := m.Called(ctx, state, checkout, form)
	return args.Error(0)
}

func (m *MockPurchaseService) HandleWidgetEvent(state *storage.ClientState, evt payphone.Event) (*services.Checkout, error) {
	args := m.Called(state, evt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Checkout), args.Error(1)
}

func (m *MockPurchaseService) ConfirmPayment(ctx context.Context, state *storage.ClientState, query url.Values) (*services.Confirmation, error) {
	args := m.Called(ctx, state, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Confirmation), args.Error(1)
}

func (m *MockPurchaseService) DiscardOrder(ctx context.Context, state *storage.ClientState, orderID string) error {
	args := m.Called(ctx, state, orderID)
	return args.Error(0)
}

// MockWalletService for testing
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) MyTickets(ctx context.Context, state *storage.ClientState, showAll bool) (*services.Wallet, error) {
	args := m.Called(ctx, state, showAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Wallet), args.Error(1)
}

func (m *MockWalletService) TicketPDF(ctx context.Context, state *storage.ClientState, purchaseID string) (*api.TicketPDF, error) {
	args := m.Called(ctx, state, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.TicketPDF), args.Error(1)
}

func (m *MockWalletService) TicketQR(ctx context.Context, state *storage.ClientState, purchaseID, itemID string, w io.Writer) error {
	args := m.Called(ctx, state, purchaseID, itemID, w)
	if data, ok := args.Get(0).([]byte); ok {
		w.Write(data)
	}
	return args.Error(1)
}

// MockProfileService for testing
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) LinkDocument(ctx context.Context, state *storage.ClientState, req *models.DocumentUpdateRequest) (*models.AttenderProfile, error) {
	args := m.Called(ctx, state, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttenderProfile), args.Error(1)
}

// serve routes one request through a chi router so URL parameters resolve,
// with the given client state in the request context
func serve(state *storage.ClientState, method, pattern string, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(storage.WithClientState(req.Context(), state))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newState() *storage.ClientState {
	return storage.NewClientState(storage.NewMemoryStore())
}
