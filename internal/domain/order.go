package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod applies when an order is created without one; the
// storefront hands orders off over WhatsApp.
const DefaultPaymentMethod = "whatsapp"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusFinalized OrderStatus = "finalized"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusFinalized, OrderStatusCancelled:
		return true
	}
	return false
}

// NormalizeStatus maps a stored status value to a legal one. Records written
// by older clients may carry an empty or unknown status; those read back as
// pending rather than being dropped.
func NormalizeStatus(raw string) OrderStatus {
	if s := OrderStatus(raw); s.Valid() {
		return s
	}
	return OrderStatusPending
}

// Transition names an operation on the order state machine.
type Transition string

const (
	TransitionApprove  Transition = "approve"
	TransitionFinalize Transition = "finalize"
	TransitionCancel   Transition = "cancel"
	TransitionRestore  Transition = "restore"
)

var transitionTable = map[Transition]struct {
	from []OrderStatus
	to   OrderStatus
}{
	TransitionApprove:  {from: []OrderStatus{OrderStatusPending}, to: OrderStatusApproved},
	TransitionFinalize: {from: []OrderStatus{OrderStatusApproved}, to: OrderStatusFinalized},
	TransitionCancel:   {from: []OrderStatus{OrderStatusPending, OrderStatusApproved}, to: OrderStatusCancelled},
	TransitionRestore:  {from: []OrderStatus{OrderStatusCancelled}, to: OrderStatusPending},
}

// NextStatus resolves the target status for applying op to an order in
// current. Every (state, op) pair missing from the transition table fails
// with InvalidTransitionError, including repeats of an already-performed
// transition.
func NextStatus(current OrderStatus, op Transition) (OrderStatus, error) {
	rule, ok := transitionTable[op]
	if ok {
		for _, from := range rule.from {
			if from == current {
				return rule.to, nil
			}
		}
	}
	return "", &InvalidTransitionError{Current: current, Operation: op}
}

type OrderItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID            int64           `json:"-"`
	PublicID      string          `json:"id"`
	Number        string          `json:"orderNumber"`
	CustomerEmail string          `json:"userEmail"`
	Items         []OrderItem     `json:"items,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	ApprovedAt    *time.Time      `json:"approvedAt"`
	FinalizedAt   *time.Time      `json:"finalizedAt"`
	CancelledAt   *time.Time      `json:"cancelledAt"`
}
