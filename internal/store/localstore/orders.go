package localstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.OrderSeq++
	order.ID = int64(len(s.doc.Orders) + 1)
	order.Number = fmt.Sprintf("%04d", s.doc.OrderSeq)
	order.Items = copyItems(order.Items)

	s.doc.Orders = append(s.doc.Orders, *order)
	return s.save()
}

func (s *Store) GetOrder(ctx context.Context, publicID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o := s.findOrder(publicID); o != nil {
		return copyOrder(o), nil
	}
	return nil, &domain.NotFoundError{Resource: "order", ID: publicID}
}

func (s *Store) findOrder(publicID string) *domain.Order {
	for i := range s.doc.Orders {
		if s.doc.Orders[i].PublicID == publicID {
			return &s.doc.Orders[i]
		}
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []domain.Order{}
	for i := range s.doc.Orders {
		o := &s.doc.Orders[i]
		if filter.CustomerEmail != "" && o.CustomerEmail != filter.CustomerEmail {
			continue
		}
		orders = append(orders, *copyOrder(o))
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (s *Store) TransitionOrder(ctx context.Context, publicID string, from, to domain.OrderStatus, op domain.Transition, at time.Time) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.findOrder(publicID)
	if order == nil {
		return nil, &domain.NotFoundError{Resource: "order", ID: publicID}
	}
	if current := domain.NormalizeStatus(string(order.Status)); current != from {
		return nil, &domain.InvalidTransitionError{Current: current, Operation: op}
	}

	order.Status = to
	stamp := at
	switch to {
	case domain.OrderStatusApproved:
		order.ApprovedAt = &stamp
	case domain.OrderStatusFinalized:
		order.FinalizedAt = &stamp
	case domain.OrderStatusCancelled:
		order.CancelledAt = &stamp
	case domain.OrderStatusPending:
		order.CancelledAt = nil
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return copyOrder(order), nil
}

func (s *Store) SetOrderPaymentMethod(ctx context.Context, publicID string, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.findOrder(publicID)
	if order == nil {
		return &domain.NotFoundError{Resource: "order", ID: publicID}
	}
	order.PaymentMethod = method
	return s.save()
}
