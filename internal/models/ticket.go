package models

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tidwall/gjson"
)

// UnboundedTicketCap is the effective maximum for ticket types without one
const UnboundedTicketCap = 9999

// TicketType represents a purchasable ticket type of an event
type TicketType struct {
	ID           string `json:"id"`
	EventID      string `json:"event_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Price        int64  `json:"price"` // Price in cents
	MinimumToBuy int    `json:"minimum_to_buy"`
	MaximumToBuy int    `json:"maximum_to_buy"`
	Hidden       bool   `json:"hidden"`
}

// DecodeTicketType builds a TicketType from a backend record
func DecodeTicketType(r gjson.Result) *TicketType {
	return &TicketType{
		ID:           firstString(r, "_id", "id"),
		EventID:      firstString(r, "event_id", "eventId"),
		Name:         firstString(r, "name"),
		Description:  firstString(r, "description"),
		Price:        toCents(r.Get("price").Float()),
		MinimumToBuy: firstInt(r, "minimum_to_buy", "minimumToBuy"),
		MaximumToBuy: firstInt(r, "max_to_buy", "maximum_to_buy", "maxToBuy"),
		Hidden:       firstBool(r, "hidden"),
	}
}

// DecodeTicketTypes decodes the backend's ticket list for an event
func DecodeTicketTypes(raw []byte) ([]*TicketType, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("invalid ticket list payload")
	}

	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, errors.New("ticket list payload is not an array")
	}

	var tickets []*TicketType
	root.ForEach(func(_, value gjson.Result) bool {
		tickets = append(tickets, DecodeTicketType(value))
		return true
	})

	return tickets, nil
}

// Validate validates the ticket type data
func (tt *TicketType) Validate() error {
	if tt.Price < 0 {
		return errors.New("ticket price cannot be negative")
	}

	if tt.MinimumToBuy < 0 || tt.MaximumToBuy < 0 {
		return errors.New("ticket purchase limits cannot be negative")
	}

	if tt.MaximumToBuy > 0 && tt.MinimumToBuy > tt.MaximumToBuy {
		return errors.New("minimum purchase cannot exceed maximum purchase")
	}

	return nil
}

// IsFixed reports whether the quantity is fixed (minimum equals a positive maximum)
func (tt *TicketType) IsFixed() bool {
	return tt.MinimumToBuy > 0 && tt.MaximumToBuy > 0 && tt.MinimumToBuy == tt.MaximumToBuy
}

// EffectiveMax returns the upper purchase bound, treating a missing maximum as unbounded
func (tt *TicketType) EffectiveMax() int {
	if tt.MaximumToBuy > 0 {
		return tt.MaximumToBuy
	}
	return UnboundedTicketCap
}

// InitialQuantity returns the quantity a fresh selection starts at
func (tt *TicketType) InitialQuantity() int {
	if tt.IsFixed() {
		return tt.MinimumToBuy
	}
	if tt.MinimumToBuy > 0 {
		return tt.MinimumToBuy
	}
	return 0
}

// Clamp bounds a requested quantity to [0, EffectiveMax]
func (tt *TicketType) Clamp(quantity int) int {
	if quantity < 0 {
		return 0
	}
	if max := tt.EffectiveMax(); quantity > max {
		return max
	}
	return quantity
}

// Hint describes the purchase limits for display
func (tt *TicketType) Hint() string {
	if tt.IsFixed() {
		return fmt.Sprintf("Fixed quantity: %d", tt.MinimumToBuy)
	}
	if tt.MinimumToBuy == 0 && tt.MaximumToBuy == 0 {
		return ""
	}
	max := "∞"
	if tt.MaximumToBuy > 0 {
		max = fmt.Sprintf("%d", tt.MaximumToBuy)
	}
	return fmt.Sprintf("Min %d / Max %s", tt.MinimumToBuy, max)
}

// VisibleTicketTypes drops hidden ticket types and orders the rest by
// ascending price. This is the display order used everywhere tickets are
// listed or validated.
func VisibleTicketTypes(tickets []*TicketType) []*TicketType {
	visible := make([]*TicketType, 0, len(tickets))
	for _, tt := range tickets {
		if !tt.Hidden {
			visible = append(visible, tt)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Price < visible[j].Price
	})

	return visible
}

// PurchasedTicket is one purchase order as shown in the buyer's ticket wallet
type PurchasedTicket struct {
	PurchaseID   string          `json:"purchase_id"`
	PurchaseDate *time.Time      `json:"purchase_date"`
	Event        *Event          `json:"event,omitempty"`
	Items        []PurchasedItem `json:"items"`
}

// PurchasedItem is a single admission within a purchase order
type PurchasedItem struct {
	ID         string `json:"id"`
	TicketName string `json:"ticket_name"`
	IsRead     bool   `json:"is_read"`
}

// QRPayload returns the string encoded in the item's admission QR code
func (i PurchasedItem) QRPayload(purchaseID string) string {
	return i.ID + "^" + purchaseID
}

// DecodePurchasedTickets decodes the wallet listing returned for an attender
func DecodePurchasedTickets(raw []byte) ([]*PurchasedTicket, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("invalid purchase list payload")
	}

	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return []*PurchasedTicket{}, nil
	}

	var result []*PurchasedTicket
	root.ForEach(func(_, value gjson.Result) bool {
		result = append(result, decodePurchasedTicket(value))
		return true
	})

	return result, nil
}

func decodePurchasedTicket(r gjson.Result) *PurchasedTicket {
	purchase := r.Get("purchase_ticket")

	pt := &PurchasedTicket{
		PurchaseID: firstString(purchase, "_id", "id"),
		Items:      []PurchasedItem{},
	}

	if date := purchase.Get("purchase_date"); date.Exists() && date.Type != gjson.Null {
		parsed := parseTimestamp(date.String())
		pt.PurchaseDate = &parsed
	}

	if event := r.Get("event"); event.IsObject() {
		pt.Event = DecodeEvent(event)
	}

	items := purchase.Get("purchase_ticket_items")
	for i, item := range items.Array() {
		name := firstString(item, "ticket_name", "ticketName", "name")
		if name == "" {
			name = fmt.Sprintf("Ticket %d", i+1)
		}
		pt.Items = append(pt.Items, PurchasedItem{
			ID:         firstString(item, "_id", "id"),
			TicketName: name,
			IsRead:     firstBool(item, "isRead", "is_read"),
		})
	}

	return pt
}

// FindItem returns the purchase item with the given id
func (pt *PurchasedTicket) FindItem(itemID string) (PurchasedItem, bool) {
	for _, item := range pt.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return PurchasedItem{}, false
}
