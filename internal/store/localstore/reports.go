package localstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

// The report projections mirror the SQL aggregations of the relational
// backend; the engine and handlers cannot tell the two apart.

func inWindow(t time.Time, since *time.Time) bool {
	return since == nil || !t.Before(*since)
}

func (s *Store) OrderStats(ctx context.Context, since *time.Time) (*domain.OrderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.OrderStats{Revenue: decimal.Zero, AverageTicket: decimal.Zero}
	for i := range s.doc.Orders {
		o := &s.doc.Orders[i]
		if !inWindow(o.CreatedAt, since) {
			continue
		}
		stats.Total++
		switch domain.NormalizeStatus(string(o.Status)) {
		case domain.OrderStatusPending:
			stats.Pending++
		case domain.OrderStatusApproved:
			stats.Approved++
		case domain.OrderStatusFinalized:
			stats.Finalized++
			stats.Revenue = stats.Revenue.Add(o.Total)
		case domain.OrderStatusCancelled:
			stats.Cancelled++
		}
	}
	if stats.Finalized > 0 {
		stats.AverageTicket = stats.Revenue.Div(decimal.NewFromInt(int64(stats.Finalized))).Round(2)
	}
	return stats, nil
}

func (s *Store) ProductSales(ctx context.Context, since *time.Time) ([]domain.ProductSales, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type acc struct {
		quantity int
		revenue  decimal.Decimal
		orders   int
		priceSum decimal.Decimal
		lines    int
	}
	byName := map[string]*acc{}

	for i := range s.doc.Orders {
		o := &s.doc.Orders[i]
		if domain.NormalizeStatus(string(o.Status)) != domain.OrderStatusFinalized || !inWindow(o.CreatedAt, since) {
			continue
		}
		seen := map[string]bool{}
		for _, item := range o.Items {
			a := byName[item.Name]
			if a == nil {
				a = &acc{revenue: decimal.Zero, priceSum: decimal.Zero}
				byName[item.Name] = a
			}
			a.quantity += item.Quantity
			a.revenue = a.revenue.Add(item.Subtotal)
			a.priceSum = a.priceSum.Add(item.Price)
			a.lines++
			if !seen[item.Name] {
				a.orders++
				seen[item.Name] = true
			}
		}
	}

	sales := make([]domain.ProductSales, 0, len(byName))
	for name, a := range byName {
		avg := decimal.Zero
		if a.lines > 0 {
			avg = a.priceSum.Div(decimal.NewFromInt(int64(a.lines))).Round(2)
		}
		sales = append(sales, domain.ProductSales{
			ProductName:   name,
			TotalQuantity: a.quantity,
			TotalRevenue:  a.revenue,
			TotalOrders:   a.orders,
			AveragePrice:  avg,
		})
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].TotalRevenue.GreaterThan(sales[j].TotalRevenue)
	})
	return sales, nil
}

func (s *Store) RevenueBuckets(ctx context.Context, bucket domain.ChartBucket, since *time.Time) ([]domain.PeriodBucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout := "2006-01-02"
	if bucket == domain.BucketMonthly {
		layout = "2006-01"
	}

	type acc struct {
		orders  int
		revenue decimal.Decimal
	}
	byPeriod := map[string]*acc{}

	for i := range s.doc.Orders {
		o := &s.doc.Orders[i]
		if domain.NormalizeStatus(string(o.Status)) != domain.OrderStatusFinalized || !inWindow(o.CreatedAt, since) {
			continue
		}
		key := o.CreatedAt.UTC().Format(layout)
		a := byPeriod[key]
		if a == nil {
			a = &acc{revenue: decimal.Zero}
			byPeriod[key] = a
		}
		a.orders++
		a.revenue = a.revenue.Add(o.Total)
	}

	buckets := make([]domain.PeriodBucket, 0, len(byPeriod))
	for period, a := range byPeriod {
		avg := decimal.Zero
		if a.orders > 0 {
			avg = a.revenue.Div(decimal.NewFromInt(int64(a.orders))).Round(2)
		}
		buckets = append(buckets, domain.PeriodBucket{
			Period:        period,
			TotalOrders:   a.orders,
			TotalRevenue:  a.revenue,
			AverageTicket: avg,
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Period < buckets[j].Period })
	return buckets, nil
}

func (s *Store) CatalogStats(ctx context.Context) (*domain.CatalogStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &domain.CatalogStats{Total: len(s.doc.Products)}
	for i := range s.doc.Products {
		p := &s.doc.Products[i]
		switch {
		case p.DeletedAt != nil:
			stats.InTrash++
		case p.IsActive:
			stats.Active++
		}
	}
	return stats, nil
}

func (s *Store) UserStats(ctx context.Context, since *time.Time) (*domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	monthAgo := time.Now().UTC().AddDate(0, 0, -30)
	stats := &domain.UserStats{Total: len(s.doc.Users)}
	for i := range s.doc.Users {
		u := &s.doc.Users[i]
		if u.IsActive && u.DeletedAt == nil {
			stats.Active++
		}
		if u.LastLoginAt != nil && u.LastLoginAt.After(monthAgo) {
			stats.ActiveLastMonth++
		}
		if since != nil && !u.CreatedAt.Before(*since) {
			stats.NewUsers++
		}
	}
	return stats, nil
}
