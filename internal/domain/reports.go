package domain

import (
	"github.com/shopspring/decimal"
)

// OrderStats aggregates orders by status plus finalized revenue, optionally
// windowed by creation time.
type OrderStats struct {
	Total         int             `json:"total"`
	Pending       int             `json:"pending"`
	Approved      int             `json:"approved"`
	Finalized     int             `json:"finalized"`
	Cancelled     int             `json:"cancelled"`
	Revenue       decimal.Decimal `json:"revenue"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
}

// ProductSales is the per-product projection over finalized order items.
type ProductSales struct {
	ProductName   string          `json:"productName"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalOrders   int             `json:"totalOrders"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
}

// ChartBucket granularity for revenue-over-time projections.
type ChartBucket string

const (
	BucketDaily   ChartBucket = "daily"
	BucketMonthly ChartBucket = "monthly"
)

type PeriodBucket struct {
	Period        string          `json:"period"` // YYYY-MM-DD or YYYY-MM
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
}

type CatalogStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	InTrash int `json:"inTrash"`
}

type UserStats struct {
	Total           int `json:"total"`
	Active          int `json:"active"`
	ActiveLastMonth int `json:"activeLastMonth"`
	NewUsers        int `json:"newUsers"`
}
