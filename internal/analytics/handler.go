// Package analytics exposes read-only revenue and sales projections.
// Everything money-related counts finalized orders only; pending and
// cancelled orders never inflate revenue.
package analytics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/api"
	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

type Handler struct {
	store  store.Store
	logger *slog.Logger
}

func NewHandler(st store.Store, logger *slog.Logger) *Handler {
	return &Handler{store: st, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/analytics/financial", h.HandleFinancial)
	mux.HandleFunc("GET /api/analytics/products", h.HandleProducts)
	mux.HandleFunc("GET /api/analytics/period-chart", h.HandlePeriodChart)
	mux.HandleFunc("GET /api/analytics/summary", h.HandleSummary)
}

// sinceParam turns the period query into a window start. "all" or absence
// means all time; otherwise the value is a day count.
func sinceParam(r *http.Request) (*time.Time, error) {
	period := r.URL.Query().Get("period")
	if period == "" || period == "all" {
		return nil, nil
	}
	days, err := strconv.Atoi(period)
	if err != nil || days <= 0 {
		return nil, &domain.ValidationError{Field: "period", Reason: "must be a positive day count or \"all\""}
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return &since, nil
}

func daysAgo(days int) *time.Time {
	since := time.Now().UTC().AddDate(0, 0, -days)
	return &since
}

func (h *Handler) HandleFinancial(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	stats, err := h.store.OrderStats(r.Context(), since)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OK(w, h.logger, stats)
}

type productSalesReport struct {
	domain.ProductSales
	RevenuePercentage decimal.Decimal `json:"revenuePercentage"`
}

func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	sales, err := h.store.ProductSales(r.Context(), since)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	api.List(w, h.logger, withRevenueShare(sales))
}

// withRevenueShare annotates each product with its percentage of the total
// revenue, rounded to two places.
func withRevenueShare(sales []domain.ProductSales) []productSalesReport {
	total := decimal.Zero
	for i := range sales {
		total = total.Add(sales[i].TotalRevenue)
	}

	report := make([]productSalesReport, 0, len(sales))
	hundred := decimal.NewFromInt(100)
	for i := range sales {
		share := decimal.Zero
		if total.IsPositive() {
			share = sales[i].TotalRevenue.Mul(hundred).Div(total).Round(2)
		}
		report = append(report, productSalesReport{
			ProductSales:      sales[i],
			RevenuePercentage: share,
		})
	}
	return report
}

func (h *Handler) HandlePeriodChart(w http.ResponseWriter, r *http.Request) {
	bucket := domain.ChartBucket(r.URL.Query().Get("type"))
	if bucket == "" {
		bucket = domain.BucketDaily
	}
	if bucket != domain.BucketDaily && bucket != domain.BucketMonthly {
		api.Fail(w, h.logger, &domain.ValidationError{Field: "type", Reason: "must be daily or monthly"})
		return
	}

	since, err := sinceParam(r)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	buckets, err := h.store.RevenueBuckets(r.Context(), bucket, since)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.List(w, h.logger, buckets)
}

type summary struct {
	Orders       *domain.OrderStats    `json:"orders"`
	MonthlyTrend []domain.PeriodBucket `json:"monthlyTrend"`
	TopProducts  []productSalesReport  `json:"topProducts"`
}

// HandleSummary is the executive overview: lifetime order stats, the last
// six months of revenue and the top five products of the last 30 days.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.store.OrderStats(ctx, nil)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	sixMonths := time.Now().UTC().AddDate(0, -6, 0)
	trend, err := h.store.RevenueBuckets(ctx, domain.BucketMonthly, &sixMonths)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	sales, err := h.store.ProductSales(ctx, daysAgo(30))
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	top := withRevenueShare(sales)
	if len(top) > 5 {
		top = top[:5]
	}

	api.OK(w, h.logger, summary{
		Orders:       stats,
		MonthlyTrend: trend,
		TopProducts:  top,
	})
}
