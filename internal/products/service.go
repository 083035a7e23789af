// Package products implements the catalog: product CRUD, the trash lifecycle
// with retention-based purging, and the HTTP surface over both.
package products

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/messaging"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

type Service struct {
	store  store.Store
	bus    *messaging.Bus
	logger *slog.Logger
}

func NewService(st store.Store, bus *messaging.Bus, logger *slog.Logger) *Service {
	return &Service{store: st, bus: bus, logger: logger}
}

type CreateProductInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	ImageURL      string           `json:"image"`
	Category      string           `json:"category"`
	Color         string           `json:"color"`
}

func (in *CreateProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Price.IsNegative() || in.Price.IsZero() {
		return &domain.ValidationError{Field: "price", Reason: "must be positive"}
	}
	if in.DiscountPrice != nil && (in.DiscountPrice.IsNegative() || in.DiscountPrice.IsZero()) {
		return &domain.ValidationError{Field: "discountPrice", Reason: "must be positive when set"}
	}
	return nil
}

// Create adds a product to the catalog. Names are unique among active
// products; soft-deleted products do not block reuse of their name.
func (s *Service) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	existing, err := s.store.FindActiveProductByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{Resource: "product", Field: "name", Value: name}
	}

	now := time.Now().UTC()
	product := &domain.Product{
		Name:          name,
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		ImageURL:      in.ImageURL,
		Category:      in.Category,
		Color:         in.Color,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.publishChange(ctx, "created", product.ID, product.Name)
	s.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, update store.ProductUpdate) (*domain.Product, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		existing, err := s.store.FindActiveProductByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, &domain.ConflictError{Resource: "product", Field: "name", Value: name}
		}
		update.Name = &name
	}
	if update.Price != nil && (update.Price.IsNegative() || update.Price.IsZero()) {
		return nil, &domain.ValidationError{Field: "price", Reason: "must be positive"}
	}

	product, err := s.store.UpdateProduct(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, "updated", product.ID, product.Name)
	return product, nil
}

// Trash soft-deletes a product. It disappears from the catalog immediately
// but stays restorable until the retention window runs out.
func (s *Service) Trash(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.store.SoftDeleteProduct(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, "deleted", product.ID, product.Name)
	s.logger.Info("product moved to trash", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func (s *Service) ListTrash(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListTrash(ctx)
}

// RestoreFromTrash brings a soft-deleted product back. A live product with
// the same name blocks the restore.
func (s *Service) RestoreFromTrash(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.store.RestoreProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, "restored", product.ID, product.Name)
	s.logger.Info("product restored from trash", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// Purge permanently removes a trashed product.
func (s *Service) Purge(ctx context.Context, id int64) error {
	if err := s.store.PurgeProduct(ctx, id); err != nil {
		return err
	}

	s.publishChange(ctx, "purged", id, "")
	s.logger.Info("product purged", "product_id", id)
	return nil
}

func (s *Service) publishChange(ctx context.Context, action string, id int64, name string) {
	s.bus.ProductChanged(ctx, domain.ProductChangedEvent{
		Action:    action,
		ProductID: id,
		Name:      name,
		Timestamp: time.Now().UTC(),
	})
}
