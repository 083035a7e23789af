package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductChangedEvent notifies listeners that the catalog changed. Payloads
// are advisory: consumers re-fetch the authoritative product list instead of
// applying the event as a delta.
type ProductChangedEvent struct {
	Action    string    `json:"action"` // created, updated, deleted, restored, purged
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent hands a freshly created order to fulfillment.
type OrderCreatedEvent struct {
	OrderID       string          `json:"order_id"`
	Number        string          `json:"order_number"`
	CustomerEmail string          `json:"customer_email"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Timestamp     time.Time       `json:"timestamp"`
}
