// Package users implements registration, lightweight identification and
// profile management. There are no passwords: customers identify themselves
// by email or tax id, which is all the storefront checkout needs.
package users

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

var nonDigits = regexp.MustCompile(`\D`)

type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

type RegisterInput struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	TaxID      string `json:"taxId"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postalCode"`
	Address    string `json:"address"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// normalizeTaxID strips everything but digits so formatted and raw tax ids
// compare equal.
func normalizeTaxID(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (in *RegisterInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return &domain.ValidationError{Field: "firstName", Reason: "must not be empty"}
	}
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return &domain.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if normalizeTaxID(in.TaxID) == "" {
		return &domain.ValidationError{Field: "taxId", Reason: "must contain digits"}
	}
	return nil
}

// Register creates an active user. Email and tax id are unique among active
// users; either collision is reported as a conflict naming the field.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	taxID := normalizeTaxID(in.TaxID)

	if existing, err := s.store.GetUserByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domain.ConflictError{Resource: "user", Field: "email", Value: email}
	}
	if existing, err := s.store.GetUserByTaxID(ctx, taxID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domain.ConflictError{Resource: "user", Field: "taxId", Value: taxID}
	}

	user := &domain.User{
		PublicID:   uuid.NewString(),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      email,
		TaxID:      taxID,
		Phone:      in.Phone,
		PostalCode: in.PostalCode,
		Address:    in.Address,
		Number:     in.Number,
		Complement: in.Complement,
		City:       in.City,
		State:      in.State,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.PublicID, "email", user.Email)
	return user, nil
}

// Identify resolves an identifier to an active user and records the login.
// An identifier containing '@' is an email; anything else is a tax id. A
// miss is a NotFoundError so the handler can answer 401 without revealing
// which part failed.
func (s *Service) Identify(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.GetUserByEmail(ctx, normalizeEmail(identifier))
	} else {
		user, err = s.store.GetUserByTaxID(ctx, normalizeTaxID(identifier))
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &domain.NotFoundError{Resource: "user", ID: identifier}
	}

	now := time.Now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.PublicID, now); err != nil {
		s.logger.Error("failed to record login", "error", err, "user_id", user.PublicID)
	} else {
		user.LastLoginAt = &now
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, publicID string) (*domain.User, error) {
	return s.store.GetUser(ctx, publicID)
}

// GetByEmail looks up a profile for the storefront session and counts it as
// a login.
func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Identify(ctx, normalizeEmail(email))
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.User, error) {
	return s.store.ListUsers(ctx, limit)
}

func (s *Service) Update(ctx context.Context, publicID string, update store.UserUpdate) (*domain.User, error) {
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, &domain.ValidationError{Field: "email", Reason: "must be a valid email address"}
		}
		existing, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.PublicID != publicID {
			return nil, &domain.ConflictError{Resource: "user", Field: "email", Value: email}
		}
		update.Email = &email
	}

	return s.store.UpdateUser(ctx, publicID, update)
}

// Deactivate soft-deletes the account; the email and tax id become free for
// a future registration.
func (s *Service) Deactivate(ctx context.Context, publicID string) (*domain.User, error) {
	user, err := s.store.SoftDeleteUser(ctx, publicID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("user deactivated", "user_id", publicID)
	return user, nil
}
