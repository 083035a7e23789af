package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

const userColumns = `id, uuid, first_name, last_name, email, tax_id, phone, postal_code,
		       address, address_number, complement, city, state,
		       email_verified, is_active, created_at, last_login, deleted_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var lastName, phone, postalCode, address, number, complement, city, state sql.NullString
	err := row.Scan(&u.ID, &u.PublicID, &u.FirstName, &lastName, &u.Email, &u.TaxID, &phone, &postalCode,
		&address, &number, &complement, &city, &state,
		&u.EmailVerified, &u.IsActive, &u.CreatedAt, &u.LastLoginAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	u.LastName = fromNull(lastName)
	u.Phone = fromNull(phone)
	u.PostalCode = fromNull(postalCode)
	u.Address = fromNull(address)
	u.Number = fromNull(number)
	u.Complement = fromNull(complement)
	u.City = fromNull(city)
	u.State = fromNull(state)
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (uuid, first_name, last_name, email, tax_id, phone, postal_code,
		                   address, address_number, complement, city, state,
		                   email_verified, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING id
	`, user.PublicID, user.FirstName, nullable(user.LastName), user.Email, user.TaxID,
		nullable(user.Phone), nullable(user.PostalCode), nullable(user.Address), nullable(user.Number),
		nullable(user.Complement), nullable(user.City), nullable(user.State),
		user.EmailVerified, user.IsActive, user.CreatedAt).Scan(&user.ID)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Resource: "user", Field: "email", Value: user.Email}
	}
	if err != nil {
		return persistence("create user", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, publicID string) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE uuid = $1 AND is_active AND deleted_at IS NULL
	`, publicID))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "user", ID: publicID}
	}
	if err != nil {
		return nil, persistence("get user", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND is_active AND deleted_at IS NULL
	`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("get user by email", err)
	}
	return user, nil
}

func (s *Store) GetUserByTaxID(ctx context.Context, taxID string) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE tax_id = $1 AND is_active AND deleted_at IS NULL
	`, taxID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, persistence("get user by tax id", err)
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_active AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT CASE WHEN $1::int > 0 THEN $1::int ELSE NULL END
	`, limit)
	if err != nil {
		return nil, persistence("list users", err)
	}
	defer func() { _ = rows.Close() }()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, persistence("list users", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("list users", err)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, publicID string, update store.UserUpdate) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
		    last_name = COALESCE($3, last_name),
		    email = COALESCE($4, email),
		    phone = COALESCE($5, phone),
		    postal_code = COALESCE($6, postal_code),
		    address = COALESCE($7, address),
		    address_number = COALESCE($8, address_number),
		    complement = COALESCE($9, complement),
		    city = COALESCE($10, city),
		    state = COALESCE($11, state),
		    updated_at = NOW()
		WHERE uuid = $1 AND is_active AND deleted_at IS NULL
		RETURNING `+userColumns+`
	`, publicID, update.FirstName, update.LastName, update.Email, update.Phone, update.PostalCode,
		update.Address, update.Number, update.Complement, update.City, update.State))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "user", ID: publicID}
	}
	if isUniqueViolation(err) {
		email := ""
		if update.Email != nil {
			email = *update.Email
		}
		return nil, &domain.ConflictError{Resource: "user", Field: "email", Value: email}
	}
	if err != nil {
		return nil, persistence("update user", err)
	}
	return user, nil
}

func (s *Store) SoftDeleteUser(ctx context.Context, publicID string, at time.Time) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users
		SET deleted_at = $2, is_active = FALSE, updated_at = NOW()
		WHERE uuid = $1 AND is_active AND deleted_at IS NULL
		RETURNING `+userColumns+`
	`, publicID, at))
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Resource: "user", ID: publicID}
	}
	if err != nil {
		return nil, persistence("soft delete user", err)
	}
	return user, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, publicID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET last_login = $2, updated_at = NOW()
		WHERE uuid = $1
	`, publicID, at)
	if err != nil {
		return persistence("touch last login", err)
	}
	return nil
}
