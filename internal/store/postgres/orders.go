package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("create order", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (uuid, order_number, user_email, total_amount, status, payment_method, notes, created_at, updated_at)
		VALUES ($1, LPAD(nextval('orders_number_seq')::text, 4, '0'), $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, order_number
	`, order.PublicID, order.CustomerEmail, order.Total, order.Status, order.PaymentMethod,
		nullable(order.Notes), order.CreatedAt).Scan(&order.ID, &order.Number)
	if err != nil {
		return persistence("create order", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_name, product_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, item.Name, item.Price, item.Quantity, item.Subtotal)
		if err != nil {
			return persistence("create order items", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistence("create order", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, publicID string) (*domain.Order, error) {
	order, err := s.getOrder(ctx, publicID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, order.ID)
	if err != nil {
		return nil, persistence("get order items", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.Name, &item.Price, &item.Quantity, &item.Subtotal); err != nil {
			return nil, persistence("get order items", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("get order items", err)
	}

	return order, nil
}

func (s *Store) getOrder(ctx context.Context, publicID string) (*domain.Order, error) {
	order := &domain.Order{}
	var status string
	var notes sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, order_number, user_email, total_amount, status, payment_method, notes,
		       created_at, approved_at, finalized_at, cancelled_at
		FROM orders
		WHERE uuid = $1
	`, publicID).Scan(&order.ID, &order.PublicID, &order.Number, &order.CustomerEmail, &order.Total,
		&status, &order.PaymentMethod, &notes,
		&order.CreatedAt, &order.ApprovedAt, &order.FinalizedAt, &order.CancelledAt)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "order", ID: publicID}
	}
	if err != nil {
		return nil, persistence("get order", err)
	}

	order.Status = domain.NormalizeStatus(status)
	order.Notes = fromNull(notes)
	return order, nil
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uuid, order_number, user_email, total_amount, status, payment_method, notes,
		       created_at, approved_at, finalized_at, cancelled_at
		FROM orders
		WHERE ($1::text = '' OR user_email = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT CASE WHEN $2::int > 0 THEN $2::int ELSE NULL END
	`, filter.CustomerEmail, filter.Limit)
	if err != nil {
		return nil, persistence("list orders", err)
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64
	var orders []domain.Order

	for rows.Next() {
		var order domain.Order
		var status string
		var notes sql.NullString
		if err := rows.Scan(&order.ID, &order.PublicID, &order.Number, &order.CustomerEmail, &order.Total,
			&status, &order.PaymentMethod, &notes,
			&order.CreatedAt, &order.ApprovedAt, &order.FinalizedAt, &order.CancelledAt); err != nil {
			return nil, persistence("list orders", err)
		}
		order.Status = domain.NormalizeStatus(status)
		order.Notes = fromNull(notes)
		order.Items = []domain.OrderItem{}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("list orders", err)
	}

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}
	for i := range orders {
		orderMap[orders[i].ID] = &orders[i]
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, persistence("list order items", err)
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID int64
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.Name, &item.Price, &item.Quantity, &item.Subtotal); err != nil {
			return nil, persistence("list order items", err)
		}
		if order, ok := orderMap[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, persistence("list order items", err)
	}

	return orders, nil
}

func (s *Store) TransitionOrder(ctx context.Context, publicID string, from, to domain.OrderStatus, op domain.Transition, at time.Time) (*domain.Order, error) {
	var stamp string
	args := []any{publicID, from, to}
	switch to {
	case domain.OrderStatusApproved:
		stamp = "approved_at = $4"
		args = append(args, at)
	case domain.OrderStatusFinalized:
		stamp = "finalized_at = $4"
		args = append(args, at)
	case domain.OrderStatusCancelled:
		stamp = "cancelled_at = $4"
		args = append(args, at)
	case domain.OrderStatusPending:
		// restore re-opens the order and clears the cancellation mark
		stamp = "cancelled_at = NULL"
	}

	// Unknown legacy statuses read back as pending, so a transition out of
	// pending must match them too or those rows could never move again.
	statusCond := `status = $2`
	if from == domain.OrderStatusPending {
		statusCond = `(status = $2 OR status NOT IN ('pending', 'approved', 'finalized', 'cancelled'))`
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, `+stamp+`, updated_at = NOW()
		WHERE uuid = $1 AND `+statusCond+`
	`, args...)
	if err != nil {
		return nil, persistence("transition order", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, persistence("transition order", err)
	}
	if affected == 0 {
		// Either the order is gone or its status moved underneath us;
		// re-read to report which.
		current, err := s.getOrder(ctx, publicID)
		if err != nil {
			return nil, err
		}
		return nil, &domain.InvalidTransitionError{Current: current.Status, Operation: op}
	}

	return s.GetOrder(ctx, publicID)
}

func (s *Store) SetOrderPaymentMethod(ctx context.Context, publicID string, method string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET payment_method = $2, updated_at = NOW() WHERE uuid = $1
	`, publicID, method)
	if err != nil {
		return persistence("set order payment method", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence("set order payment method", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Resource: "order", ID: publicID}
	}
	return nil
}
