package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

const productColumns = `id, name, description, price, discount_price, image_url, category, color,
		       is_active, created_at, updated_at, deleted_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	var description, imageURL, category, color sql.NullString
	err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &p.DiscountPrice, &imageURL, &category, &color,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	p.Description = fromNull(description)
	p.ImageURL = fromNull(imageURL)
	p.Category = fromNull(category)
	p.Color = fromNull(color)
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *domain.Product) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, discount_price, image_url, category, color, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`, product.Name, nullable(product.Description), product.Price, product.DiscountPrice,
		nullable(product.ImageURL), nullable(product.Category), nullable(product.Color),
		product.IsActive, product.CreatedAt).Scan(&product.ID)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Resource: "product", Field: "name", Value: product.Name}
	}
	if err != nil {
		return persistence("create product", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND is_active AND deleted_at IS NULL
	`, id))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, persistence("get product", err)
	}
	return product, nil
}

func (s *Store) FindActiveProductByName(ctx context.Context, name string) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name = $1 AND is_active AND deleted_at IS NULL
	`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("find product by name", err)
	}
	return product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`)
}

func (s *Store) ListTrash(ctx context.Context) ([]domain.Product, error) {
	return s.listProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id DESC
	`)
}

func (s *Store) listProducts(ctx context.Context, query string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, persistence("list products", err)
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, persistence("list products", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("list products", err)
	}
	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, update store.ProductUpdate) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price = COALESCE($4, price),
		    discount_price = COALESCE($5, discount_price),
		    image_url = COALESCE($6, image_url),
		    category = COALESCE($7, category),
		    color = COALESCE($8, color),
		    updated_at = NOW()
		WHERE id = $1 AND is_active AND deleted_at IS NULL
		RETURNING `+productColumns+`
	`, id, update.Name, update.Description, update.Price, update.DiscountPrice,
		update.ImageURL, update.Category, update.Color))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	if isUniqueViolation(err) {
		name := ""
		if update.Name != nil {
			name = *update.Name
		}
		return nil, &domain.ConflictError{Resource: "product", Field: "name", Value: name}
	}
	if err != nil {
		return nil, persistence("update product", err)
	}
	return product, nil
}

func (s *Store) SoftDeleteProduct(ctx context.Context, id int64, at time.Time) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET deleted_at = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+productColumns+`
	`, id, at))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, persistence("soft delete product", err)
	}
	return product, nil
}

func (s *Store) RestoreProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		UPDATE products
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING `+productColumns+`
	`, id))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	if isUniqueViolation(err) {
		// An active product took the name while this one sat in the trash.
		return nil, &domain.ConflictError{Resource: "product", Field: "name", Value: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, persistence("restore product", err)
	}
	return product, nil
}

func (s *Store) PurgeProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM products
		WHERE id = $1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		return persistence("purge product", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence("purge product", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Resource: "product", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}
