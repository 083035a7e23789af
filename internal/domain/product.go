package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	ImageURL      string           `json:"image,omitempty"`
	Category      string           `json:"category,omitempty"`
	Color         string           `json:"color,omitempty"`
	IsActive      bool             `json:"isActive"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	DeletedAt     *time.Time       `json:"deletedAt,omitempty"`
}

// InTrash reports whether the product is soft-deleted and hidden from the
// catalog.
func (p *Product) InTrash() bool { return p.DeletedAt != nil }

// TrashExpired reports whether the product's retention window has elapsed
// and it is eligible for permanent purge.
func (p *Product) TrashExpired(now time.Time, retention time.Duration) bool {
	return p.DeletedAt != nil && now.Sub(*p.DeletedAt) > retention
}
