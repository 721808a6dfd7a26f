package models

// SelectionSummary is the priced view of a buyer's current ticket selection
type SelectionSummary struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	Lines      []SelectionLine `json:"lines"`
	TotalCents int64           `json:"total_cents"`
}

// SelectionLine is one ticket type row of the selection summary
type SelectionLine struct {
	TicketTypeID  string `json:"ticket_type_id"`
	TicketName    string `json:"ticket_name"`
	PriceCents    int64  `json:"price_cents"`
	Quantity      int    `json:"quantity"`
	SubtotalCents int64  `json:"subtotal_cents"`
	Fixed         bool   `json:"fixed"`
	Hint          string `json:"hint,omitempty"`
}

// HasSelection reports whether any line has a positive quantity
func (s *SelectionSummary) HasSelection() bool {
	for _, l := range s.Lines {
		if l.Quantity > 0 {
			return true
		}
	}
	return false
}
