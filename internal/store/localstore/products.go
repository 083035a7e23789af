package localstore

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

func (s *Store) CreateProduct(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeProductByName(product.Name) != nil {
		return &domain.ConflictError{Resource: "product", Field: "name", Value: product.Name}
	}

	product.ID = s.nextProductID
	s.nextProductID++
	s.doc.Products = append(s.doc.Products, *product)
	return s.save()
}

func (s *Store) findProduct(id int64) *domain.Product {
	for i := range s.doc.Products {
		if s.doc.Products[i].ID == id {
			return &s.doc.Products[i]
		}
	}
	return nil
}

func (s *Store) activeProductByName(name string) *domain.Product {
	for i := range s.doc.Products {
		p := &s.doc.Products[i]
		if p.Name == name && p.IsActive && p.DeletedAt == nil {
			return p
		}
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(id)
	if p == nil || !p.IsActive || p.DeletedAt != nil {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	dup := *p
	return &dup, nil
}

func (s *Store) FindActiveProductByName(ctx context.Context, name string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.activeProductByName(name); p != nil {
		dup := *p
		return &dup, nil
	}
	return nil, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := []domain.Product{}
	for i := range s.doc.Products {
		p := &s.doc.Products[i]
		if p.IsActive && p.DeletedAt == nil {
			products = append(products, *p)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (s *Store) ListTrash(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := []domain.Product{}
	for i := range s.doc.Products {
		if s.doc.Products[i].DeletedAt != nil {
			products = append(products, s.doc.Products[i])
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].DeletedAt.After(*products[j].DeletedAt)
	})
	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, update store.ProductUpdate) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(id)
	if p == nil || !p.IsActive || p.DeletedAt != nil {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}

	if update.Name != nil && *update.Name != p.Name {
		if dup := s.activeProductByName(*update.Name); dup != nil {
			return nil, &domain.ConflictError{Resource: "product", Field: "name", Value: *update.Name}
		}
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.DiscountPrice != nil {
		p.DiscountPrice = update.DiscountPrice
	}
	if update.ImageURL != nil {
		p.ImageURL = *update.ImageURL
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	if update.Color != nil {
		p.Color = *update.Color
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.save(); err != nil {
		return nil, err
	}
	dup := *p
	return &dup, nil
}

func (s *Store) SoftDeleteProduct(ctx context.Context, id int64, at time.Time) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(id)
	if p == nil || p.DeletedAt != nil {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}

	stamp := at
	p.DeletedAt = &stamp
	p.UpdatedAt = at

	if err := s.save(); err != nil {
		return nil, err
	}
	dup := *p
	return &dup, nil
}

func (s *Store) RestoreProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(id)
	if p == nil || p.DeletedAt == nil {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	if dup := s.activeProductByName(p.Name); dup != nil {
		return nil, &domain.ConflictError{Resource: "product", Field: "name", Value: p.Name}
	}

	p.DeletedAt = nil
	p.UpdatedAt = time.Now().UTC()

	if err := s.save(); err != nil {
		return nil, err
	}
	dup := *p
	return &dup, nil
}

func (s *Store) PurgeProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Products {
		if s.doc.Products[i].ID == id && s.doc.Products[i].DeletedAt != nil {
			s.doc.Products = append(s.doc.Products[:i], s.doc.Products[i+1:]...)
			return s.save()
		}
	}
	return &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
}
