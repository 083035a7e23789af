package localstore

import (
	"context"
	"sort"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeUserByEmail(user.Email) != nil {
		return &domain.ConflictError{Resource: "user", Field: "email", Value: user.Email}
	}
	if s.activeUserByTaxID(user.TaxID) != nil {
		return &domain.ConflictError{Resource: "user", Field: "taxId", Value: user.TaxID}
	}

	user.ID = s.nextUserID
	s.nextUserID++
	s.doc.Users = append(s.doc.Users, *user)
	return s.save()
}

func (s *Store) findUser(publicID string) *domain.User {
	for i := range s.doc.Users {
		if s.doc.Users[i].PublicID == publicID {
			return &s.doc.Users[i]
		}
	}
	return nil
}

func (s *Store) activeUserByEmail(email string) *domain.User {
	for i := range s.doc.Users {
		u := &s.doc.Users[i]
		if u.Email == email && u.IsActive && u.DeletedAt == nil {
			return u
		}
	}
	return nil
}

func (s *Store) activeUserByTaxID(taxID string) *domain.User {
	for i := range s.doc.Users {
		u := &s.doc.Users[i]
		if u.TaxID == taxID && u.IsActive && u.DeletedAt == nil {
			return u
		}
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, publicID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(publicID)
	if u == nil || !u.IsActive || u.DeletedAt != nil {
		return nil, &domain.NotFoundError{Resource: "user", ID: publicID}
	}
	dup := *u
	return &dup, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.activeUserByEmail(email); u != nil {
		dup := *u
		return &dup, nil
	}
	return nil, nil
}

func (s *Store) GetUserByTaxID(ctx context.Context, taxID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.activeUserByTaxID(taxID); u != nil {
		dup := *u
		return &dup, nil
	}
	return nil, nil
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []domain.User{}
	for i := range s.doc.Users {
		u := &s.doc.Users[i]
		if u.IsActive && u.DeletedAt == nil {
			users = append(users, *u)
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, publicID string, update store.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(publicID)
	if u == nil || !u.IsActive || u.DeletedAt != nil {
		return nil, &domain.NotFoundError{Resource: "user", ID: publicID}
	}

	if update.Email != nil && *update.Email != u.Email {
		if dup := s.activeUserByEmail(*update.Email); dup != nil {
			return nil, &domain.ConflictError{Resource: "user", Field: "email", Value: *update.Email}
		}
		u.Email = *update.Email
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.PostalCode != nil {
		u.PostalCode = *update.PostalCode
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	if update.Number != nil {
		u.Number = *update.Number
	}
	if update.Complement != nil {
		u.Complement = *update.Complement
	}
	if update.City != nil {
		u.City = *update.City
	}
	if update.State != nil {
		u.State = *update.State
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	dup := *u
	return &dup, nil
}

func (s *Store) SoftDeleteUser(ctx context.Context, publicID string, at time.Time) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(publicID)
	if u == nil || !u.IsActive || u.DeletedAt != nil {
		return nil, &domain.NotFoundError{Resource: "user", ID: publicID}
	}

	stamp := at
	u.DeletedAt = &stamp
	u.IsActive = false

	if err := s.save(); err != nil {
		return nil, err
	}
	dup := *u
	return &dup, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, publicID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.findUser(publicID); u != nil {
		stamp := at
		u.LastLoginAt = &stamp
		return s.save()
	}
	return nil
}
