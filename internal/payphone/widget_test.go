package payphone

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"eventos-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedOrder(storeID string) *models.StagedPurchase {
	return &models.StagedPurchase{
		OrderID:    "order-1",
		Event:      models.EventSnapshot{ID: "e1", Name: "Rock Fest", StoreID: storeID},
		TotalCents: 8000,
	}
}

func TestNewWidgetConfig(t *testing.T) {
	settings := Settings{PublicKey: "pk", StoreID: "default-store"}
	buyer := &models.AttenderProfile{Phone: "0991234567", Email: "ana@example.com", IDDocument: "1712345678"}

	cfg := NewWidgetConfig(settings, stagedOrder(""), buyer)

	assert.Equal(t, "pk", cfg.Token)
	assert.Equal(t, "order-1", cfg.ClientTransactionID)
	assert.Equal(t, int64(8000), cfg.Amount)
	assert.Equal(t, int64(8000), cfg.AmountWithoutTax)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "default-store", cfg.StoreID)
	assert.Equal(t, "Ticket purchase for Rock Fest", cfg.Reference)
	assert.Equal(t, "es", cfg.Lang)
	assert.Equal(t, "payphone", cfg.DefaultMethod)
	assert.Equal(t, -3, cfg.TimeZone)
	assert.Equal(t, 1, cfg.IdentificationType)
	assert.Equal(t, "ana@example.com", cfg.Email)
	assert.Equal(t, "1712345678", cfg.DocumentID)
	assert.NoError(t, cfg.Validate())
}

func TestNewWidgetConfig_EventStoreWins(t *testing.T) {
	cfg := NewWidgetConfig(Settings{PublicKey: "pk", StoreID: "default-store", Currency: "EUR"}, stagedOrder("event-store"), nil)

	assert.Equal(t, "event-store", cfg.StoreID)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Empty(t, cfg.Email)
}

func TestWidgetConfig_Validate(t *testing.T) {
	valid := NewWidgetConfig(Settings{PublicKey: "pk", StoreID: "s"}, stagedOrder(""), nil)

	tests := []struct {
		name   string
		mutate func(*WidgetConfig)
	}{
		{"missing token", func(c *WidgetConfig) { c.Token = "" }},
		{"missing store", func(c *WidgetConfig) { c.StoreID = " " }},
		{"missing transaction", func(c *WidgetConfig) { c.ClientTransactionID = "" }},
		{"zero amount", func(c *WidgetConfig) { c.Amount, c.AmountWithoutTax = 0, 0 }},
		{"breakdown mismatch", func(c *WidgetConfig) { c.Tip = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBrowserLauncher_RejectsInvalidConfig(t *testing.T) {
	launcher := NewBrowserLauncher()

	assert.Error(t, launcher.Launch(context.Background(), WidgetConfig{}))
	assert.NoError(t, launcher.Launch(context.Background(), NewWidgetConfig(Settings{PublicKey: "pk", StoreID: "s"}, stagedOrder(""), nil)))
}

func TestWidgetConfig_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(NewWidgetConfig(Settings{PublicKey: "pk", StoreID: "s"}, stagedOrder(""), nil))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"token", "clientTransactionId", "amount", "amountWithoutTax", "storeId", "defaultMethod", "timeZone", "identificationType"} {
		assert.Contains(t, fields, key)
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Callback
		wantErr bool
	}{
		{
			name:  "provider parameters",
			query: "id=tx1&clientTransactionId=order-1",
			want:  Callback{PaymentID: "tx1", ClientTxID: "order-1"},
		},
		{
			name:  "alternate names",
			query: "transactionId=tx2&reference=order-2",
			want:  Callback{PaymentID: "tx2", ClientTxID: "order-2"},
		},
		{
			name:  "reference falls back to payment id",
			query: "id=tx123",
			want:  Callback{PaymentID: "tx123", ClientTxID: "tx123", FallbackReference: true},
		},
		{
			name:    "missing payment id",
			query:   "clientTransactionId=order-1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseCallback(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingTransactionID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvent_Detail(t *testing.T) {
	success := Event{Kind: EventSucceeded, Detail: json.RawMessage(`{"transactionId":"tx9"}`)}
	failure := Event{Kind: EventFailed, Detail: json.RawMessage(`{"message":"card declined"}`)}

	assert.NoError(t, success.Validate())
	assert.Equal(t, "tx9", success.PaymentID())
	assert.Equal(t, "card declined", failure.Message())
	assert.Error(t, Event{Kind: "payphone-cancel"}.Validate())
}
