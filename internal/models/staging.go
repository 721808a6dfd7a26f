package models

import "time"

// StagedPurchase is the durable record written before the browser is sent to
// the payment provider and read back on the callback. It carries everything
// the confirmation step needs, since nothing survives the redirect in memory.
type StagedPurchase struct {
	OrderID    string        `json:"order_id"`
	Event      EventSnapshot `json:"event"`
	Items      []StagedItem  `json:"items"`
	TotalCents int64         `json:"total_cents"`
	StagedAt   time.Time     `json:"staged_at"`
}

// StagedItem is one ticket type and quantity of a staged purchase
type StagedItem struct {
	TicketTypeID string `json:"id"`
	Name         string `json:"name"`
	EventID      string `json:"event_id"`
	Quantity     int    `json:"quantity"`
}

// Quantities returns the staged ticket-quantity map keyed by ticket type id
func (s *StagedPurchase) Quantities() map[string]int {
	quantities := make(map[string]int, len(s.Items))
	for _, item := range s.Items {
		quantities[item.TicketTypeID] = item.Quantity
	}
	return quantities
}
