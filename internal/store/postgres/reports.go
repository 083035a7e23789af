package postgres

import (
	"context"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

func (s *Store) OrderStats(ctx context.Context, since *time.Time) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'finalized'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'finalized'), 0),
		       COALESCE(AVG(total_amount) FILTER (WHERE status = 'finalized'), 0)
		FROM orders
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
	`, since).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Finalized, &stats.Cancelled,
		&stats.Revenue, &stats.AverageTicket)
	if err != nil {
		return nil, persistence("order stats", err)
	}
	return stats, nil
}

func (s *Store) ProductSales(ctx context.Context, since *time.Time) ([]domain.ProductSales, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.product_name,
		       SUM(oi.quantity),
		       SUM(oi.subtotal),
		       COUNT(DISTINCT o.id),
		       AVG(oi.product_price)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.status = 'finalized'
		  AND ($1::timestamptz IS NULL OR o.created_at >= $1)
		GROUP BY oi.product_name
		ORDER BY SUM(oi.subtotal) DESC
	`, since)
	if err != nil {
		return nil, persistence("product sales", err)
	}
	defer func() { _ = rows.Close() }()

	sales := []domain.ProductSales{}
	for rows.Next() {
		var row domain.ProductSales
		if err := rows.Scan(&row.ProductName, &row.TotalQuantity, &row.TotalRevenue,
			&row.TotalOrders, &row.AveragePrice); err != nil {
			return nil, persistence("product sales", err)
		}
		sales = append(sales, row)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("product sales", err)
	}
	return sales, nil
}

func (s *Store) RevenueBuckets(ctx context.Context, bucket domain.ChartBucket, since *time.Time) ([]domain.PeriodBucket, error) {
	var trunc, format string
	switch bucket {
	case domain.BucketMonthly:
		trunc, format = "month", "YYYY-MM"
	default:
		trunc, format = "day", "YYYY-MM-DD"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT TO_CHAR(DATE_TRUNC('`+trunc+`', created_at), '`+format+`'),
		       COUNT(*),
		       SUM(total_amount),
		       AVG(total_amount)
		FROM orders
		WHERE status = 'finalized'
		  AND ($1::timestamptz IS NULL OR created_at >= $1)
		GROUP BY 1
		ORDER BY 1 ASC
	`, since)
	if err != nil {
		return nil, persistence("revenue buckets", err)
	}
	defer func() { _ = rows.Close() }()

	buckets := []domain.PeriodBucket{}
	for rows.Next() {
		var b domain.PeriodBucket
		if err := rows.Scan(&b.Period, &b.TotalOrders, &b.TotalRevenue, &b.AverageTicket); err != nil {
			return nil, persistence("revenue buckets", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("revenue buckets", err)
	}
	return buckets, nil
}

func (s *Store) CatalogStats(ctx context.Context) (*domain.CatalogStats, error) {
	stats := &domain.CatalogStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active AND deleted_at IS NULL),
		       COUNT(*) FILTER (WHERE deleted_at IS NOT NULL)
		FROM products
	`).Scan(&stats.Total, &stats.Active, &stats.InTrash)
	if err != nil {
		return nil, persistence("catalog stats", err)
	}
	return stats, nil
}

func (s *Store) UserStats(ctx context.Context, since *time.Time) (*domain.UserStats, error) {
	stats := &domain.UserStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active AND deleted_at IS NULL),
		       COUNT(*) FILTER (WHERE last_login >= NOW() - INTERVAL '30 days'),
		       COUNT(*) FILTER (WHERE $1::timestamptz IS NOT NULL AND created_at >= $1)
		FROM users
	`, since).Scan(&stats.Total, &stats.Active, &stats.ActiveLastMonth, &stats.NewUsers)
	if err != nil {
		return nil, persistence("user stats", err)
	}
	return stats, nil
}
