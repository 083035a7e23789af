package domain

import "time"

// OrderDraft is a best-effort order synthesized from an external free-text
// channel (WhatsApp ingestion). Drafts never enter the order lifecycle on
// their own; an operator has to confirm one, which runs it through the
// regular create path.
type OrderDraft struct {
	ID          int64       `json:"-"`
	PublicID    string      `json:"id"`
	Source      string      `json:"source"`
	SenderID    string      `json:"senderId"`
	MessageText string      `json:"messageText"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	ConfirmedAt *time.Time  `json:"confirmedAt,omitempty"`
}

func (d *OrderDraft) Confirmed() bool { return d.ConfirmedAt != nil }
