// Package store defines the persistence contract shared by the relational
// and local backends. All validation and lifecycle rules live above this
// interface; implementations only persist, filter and enforce uniqueness.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

// OrderFilter narrows ListOrders. Zero value lists everything newest first.
type OrderFilter struct {
	CustomerEmail string // already normalized by the caller
	Limit         int    // 0 means no limit
}

type OrderStore interface {
	// CreateOrder persists the order header and its items atomically and
	// fills in ID and Number. PublicID, CreatedAt, Status and Total are
	// assigned by the caller.
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, publicID string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	// TransitionOrder conditionally moves an order from one status to
	// another, stamping the timestamp that belongs to the target status (and
	// clearing cancelled_at on restore). When the order's current status no
	// longer matches from, it fails with InvalidTransitionError carrying the
	// actual status; a missing order fails with NotFoundError.
	TransitionOrder(ctx context.Context, publicID string, from, to domain.OrderStatus, op domain.Transition, at time.Time) (*domain.Order, error)
	// SetOrderPaymentMethod records how an order was paid, typically after a
	// payment provider confirmation.
	SetOrderPaymentMethod(ctx context.Context, publicID string, method string) error
}

// ProductUpdate carries partial catalog edits; nil fields keep their stored
// value.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	ImageURL      *string
	Category      *string
	Color         *string
}

type ProductStore interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	// GetProduct returns an active, non-deleted product, or NotFoundError.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	// FindActiveProductByName returns (nil, nil) when no active product
	// carries the name; used for duplicate checks.
	FindActiveProductByName(ctx context.Context, name string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListTrash(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (*domain.Product, error)
	SoftDeleteProduct(ctx context.Context, id int64, at time.Time) (*domain.Product, error)
	RestoreProduct(ctx context.Context, id int64) (*domain.Product, error)
	// PurgeProduct permanently removes a soft-deleted product; it fails with
	// NotFoundError if the product is not in the trash.
	PurgeProduct(ctx context.Context, id int64) error
}

// UserUpdate carries the editable profile fields; nil keeps the stored value.
type UserUpdate struct {
	FirstName  *string
	LastName   *string
	Email      *string // already normalized by the caller
	Phone      *string
	PostalCode *string
	Address    *string
	Number     *string
	Complement *string
	City       *string
	State      *string
}

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	// GetUser returns an active user or NotFoundError.
	GetUser(ctx context.Context, publicID string) (*domain.User, error)
	// GetUserByEmail and GetUserByTaxID return (nil, nil) when no active
	// user matches, so callers can distinguish lookup misses from failures.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByTaxID(ctx context.Context, taxID string) (*domain.User, error)
	ListUsers(ctx context.Context, limit int) ([]domain.User, error)
	UpdateUser(ctx context.Context, publicID string, update UserUpdate) (*domain.User, error)
	SoftDeleteUser(ctx context.Context, publicID string, at time.Time) (*domain.User, error)
	TouchLastLogin(ctx context.Context, publicID string, at time.Time) error
}

type DraftStore interface {
	CreateDraft(ctx context.Context, draft *domain.OrderDraft) error
	GetDraft(ctx context.Context, publicID string) (*domain.OrderDraft, error)
	ListDrafts(ctx context.Context) ([]domain.OrderDraft, error)
	// ConfirmDraft stamps ConfirmedAt exactly once; a second confirmation
	// fails with ConflictError.
	ConfirmDraft(ctx context.Context, publicID string, at time.Time) error
}

// Reports are the read-only aggregation projections behind the admin and
// analytics endpoints. since == nil means all time.
type Reports interface {
	OrderStats(ctx context.Context, since *time.Time) (*domain.OrderStats, error)
	ProductSales(ctx context.Context, since *time.Time) ([]domain.ProductSales, error)
	RevenueBuckets(ctx context.Context, bucket domain.ChartBucket, since *time.Time) ([]domain.PeriodBucket, error)
	CatalogStats(ctx context.Context) (*domain.CatalogStats, error)
	UserStats(ctx context.Context, since *time.Time) (*domain.UserStats, error)
}

// Store aggregates the full persistence contract satisfied by both backends.
type Store interface {
	OrderStore
	ProductStore
	UserStore
	DraftStore
	Reports

	// Ping reports backend health for the health endpoint.
	Ping(ctx context.Context) error
}
