// Package payphone models the Payphone payment box ("Cajita de Pagos"). The
// widget itself runs in the browser; this package builds its configuration,
// receives its outcome events and parses the provider's redirect.
package payphone

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventos-web/internal/logger"
	"eventos-web/internal/models"
)

// Widget defaults expected by the payment box
const (
	DefaultLang               = "es"
	DefaultMethod             = "payphone"
	DefaultTimeZone           = -3
	DefaultIdentificationType = 1
	DefaultCurrency           = "USD"
)

// Settings are the merchant-level widget parameters
type Settings struct {
	PublicKey string
	StoreID   string
	Currency  string
}

// WidgetConfig is the value object handed to the payment box. All amounts
// are in cents and Amount must equal the sum of the breakdown.
type WidgetConfig struct {
	Token               string `json:"token"`
	ClientTransactionID string `json:"clientTransactionId"`
	Amount              int64  `json:"amount"`
	AmountWithoutTax    int64  `json:"amountWithoutTax"`
	AmountWithTax       int64  `json:"amountWithTax"`
	Tax                 int64  `json:"tax"`
	Service             int64  `json:"service"`
	Tip                 int64  `json:"tip"`
	Currency            string `json:"currency"`
	StoreID             string `json:"storeId"`
	Reference           string `json:"reference"`
	Lang                string `json:"lang"`
	DefaultMethod       string `json:"defaultMethod"`
	TimeZone            int    `json:"timeZone"`
	PhoneNumber         string `json:"phoneNumber,omitempty"`
	Email               string `json:"email,omitempty"`
	DocumentID          string `json:"documentId,omitempty"`
	IdentificationType  int    `json:"identificationType"`
}

// NewWidgetConfig builds the payment box configuration for a staged order.
// The whole total is charged as amountWithoutTax. The event's own store id
// takes precedence over the merchant default.
func NewWidgetConfig(settings Settings, staged *models.StagedPurchase, buyer *models.AttenderProfile) WidgetConfig {
	currency := settings.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	storeID := staged.Event.StoreID
	if storeID == "" {
		storeID = settings.StoreID
	}

	cfg := WidgetConfig{
		Token:               settings.PublicKey,
		ClientTransactionID: staged.OrderID,
		AmountWithoutTax:    staged.TotalCents,
		Currency:            currency,
		StoreID:             storeID,
		Reference:           "Ticket purchase for " + staged.Event.Name,
		Lang:                DefaultLang,
		DefaultMethod:       DefaultMethod,
		TimeZone:            DefaultTimeZone,
		IdentificationType:  DefaultIdentificationType,
	}
	cfg.Amount = cfg.breakdownTotal()

	if buyer != nil {
		cfg.PhoneNumber = buyer.Phone
		cfg.Email = buyer.Email
		cfg.DocumentID = buyer.IDDocument
	}

	return cfg
}

func (c WidgetConfig) breakdownTotal() int64 {
	return c.AmountWithoutTax + c.AmountWithTax + c.Tax + c.Service + c.Tip
}

// Validate checks the configuration the payment box refuses to render without
func (c WidgetConfig) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("payment widget token is not configured")
	}
	if strings.TrimSpace(c.StoreID) == "" {
		return errors.New("payment widget store id is not configured")
	}
	if c.ClientTransactionID == "" {
		return errors.New("payment widget requires a client transaction id")
	}
	if c.Amount <= 0 {
		return errors.New("payment amount must be greater than 0")
	}
	if c.Amount != c.breakdownTotal() {
		return fmt.Errorf("payment amount %d does not match breakdown total %d", c.Amount, c.breakdownTotal())
	}
	return nil
}

// Launcher starts the payment widget. The browser renders the widget, so the
// server-side launcher only has to validate and publish the command.
type Launcher interface {
	Launch(ctx context.Context, cfg WidgetConfig) error
}

// BrowserLauncher validates the widget configuration and records the launch.
// The configuration reaches the browser in the checkout response.
type BrowserLauncher struct{}

// NewBrowserLauncher creates the default launcher
func NewBrowserLauncher() *BrowserLauncher {
	return &BrowserLauncher{}
}

func (l *BrowserLauncher) Launch(ctx context.Context, cfg WidgetConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Log.Infow("payment widget launched",
		"client_transaction_id", cfg.ClientTransactionID,
		"amount", cfg.Amount,
		"currency", cfg.Currency,
		"store_id", cfg.StoreID,
	)
	return nil
}
