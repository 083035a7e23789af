// Package orders implements the order lifecycle: creation with
// server-computed totals, the pending/approved/finalized/cancelled state
// machine, and the HTTP surface over both.
package orders

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/messaging"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

// Engine owns every order mutation. Both persistence backends sit behind the
// store interface; no lifecycle rule lives below it.
type Engine struct {
	store  store.Store
	bus    *messaging.Bus
	logger *slog.Logger
}

func NewEngine(st store.Store, bus *messaging.Bus, logger *slog.Logger) *Engine {
	return &Engine{store: st, bus: bus, logger: logger}
}

type ItemInput struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CreateOrderInput carries client-supplied order fields. Any total sent by
// the client is ignored; the engine recomputes it from the items.
type CreateOrderInput struct {
	CustomerEmail string      `json:"userEmail"`
	Items         []ItemInput `json:"items"`
	PaymentMethod string      `json:"paymentMethod"`
	Notes         string      `json:"notes"`
}

func (in *CreateOrderInput) validate() error {
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return &domain.ValidationError{Field: "userEmail", Reason: "must not be empty"}
	}
	if len(in.Items) == 0 {
		return &domain.ValidationError{Field: "items", Reason: "order needs at least one item"}
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.Name) == "" {
			return &domain.ValidationError{Field: "items", Reason: "item name must not be empty"}
		}
		if item.Quantity < 1 {
			return &domain.ValidationError{Field: "items", Reason: "item quantity must be at least 1"}
		}
		if item.Price.IsNegative() || item.Price.IsZero() {
			return &domain.ValidationError{Field: "items", Reason: "item price must be positive"}
		}
	}
	return nil
}

// Create validates the input, computes the total server-side and persists the
// order as pending. The store assigns the sequential order number.
func (e *Engine) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for _, item := range in.Items {
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, domain.OrderItem{
			Name:     strings.TrimSpace(item.Name),
			Price:    item.Price,
			Quantity: item.Quantity,
			Subtotal: subtotal,
		})
		total = total.Add(subtotal)
	}

	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = domain.DefaultPaymentMethod
	}

	order := &domain.Order{
		PublicID:      uuid.NewString(),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		Items:         items,
		Total:         total,
		Status:        domain.OrderStatusPending,
		PaymentMethod: paymentMethod,
		Notes:         in.Notes,
		CreatedAt:     time.Now().UTC(),
	}

	if err := e.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	e.bus.OrderCreated(ctx, domain.OrderCreatedEvent{
		OrderID:       order.PublicID,
		Number:        order.Number,
		CustomerEmail: order.CustomerEmail,
		Items:         order.Items,
		Total:         order.Total,
		Timestamp:     order.CreatedAt,
	})

	e.logger.Info("order created",
		"order_id", order.PublicID,
		"order_number", order.Number,
		"total", order.Total.StringFixed(2),
	)
	return order, nil
}

func (e *Engine) Approve(ctx context.Context, publicID string) (*domain.Order, error) {
	return e.transition(ctx, publicID, domain.TransitionApprove)
}

func (e *Engine) Finalize(ctx context.Context, publicID string) (*domain.Order, error) {
	return e.transition(ctx, publicID, domain.TransitionFinalize)
}

func (e *Engine) Cancel(ctx context.Context, publicID string) (*domain.Order, error) {
	return e.transition(ctx, publicID, domain.TransitionCancel)
}

func (e *Engine) Restore(ctx context.Context, publicID string) (*domain.Order, error) {
	return e.transition(ctx, publicID, domain.TransitionRestore)
}

// ApproveWithPayment records the payment method alongside the approval; used
// by payment confirmations.
func (e *Engine) ApproveWithPayment(ctx context.Context, publicID, paymentMethod string) (*domain.Order, error) {
	order, err := e.Approve(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if paymentMethod != "" && order.PaymentMethod != paymentMethod {
		order.PaymentMethod = paymentMethod
		if err := e.store.SetOrderPaymentMethod(ctx, publicID, paymentMethod); err != nil {
			e.logger.Error("failed to record payment method", "error", err, "order_id", publicID)
		}
	}
	return order, nil
}

func (e *Engine) transition(ctx context.Context, publicID string, op domain.Transition) (*domain.Order, error) {
	current, err := e.store.GetOrder(ctx, publicID)
	if err != nil {
		return nil, err
	}

	next, err := domain.NextStatus(current.Status, op)
	if err != nil {
		return nil, err
	}

	order, err := e.store.TransitionOrder(ctx, publicID, current.Status, next, op, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	e.logger.Info("order transitioned",
		"order_id", order.PublicID,
		"order_number", order.Number,
		"operation", string(op),
		"status", string(order.Status),
	)
	return order, nil
}

func (e *Engine) Get(ctx context.Context, publicID string) (*domain.Order, error) {
	return e.store.GetOrder(ctx, publicID)
}

func (e *Engine) List(ctx context.Context, limit int) ([]domain.Order, error) {
	return e.store.ListOrders(ctx, store.OrderFilter{Limit: limit})
}

func (e *Engine) ListByCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	return e.store.ListOrders(ctx, store.OrderFilter{
		CustomerEmail: strings.ToLower(strings.TrimSpace(email)),
	})
}
