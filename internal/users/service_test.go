package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
	"github.com/ropeartlab/ropeartlab/internal/store/localstore"
)

func storeUpdate(email, city *string) store.UserUpdate {
	return store.UserUpdate{Email: email, City: city}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := localstore.Open("")
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	return NewService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRegistration() RegisterInput {
	return RegisterInput{
		FirstName: "Maria",
		LastName:  "Silva",
		Email:     "Maria.Silva@Example.com",
		TaxID:     "123.456.789-09",
		City:      "Fortaleza",
		State:     "CE",
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and tax id", func(t *testing.T) {
		service := newTestService(t)

		user, err := service.Register(ctx, testRegistration())
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if user.Email != "maria.silva@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.TaxID != "12345678909" {
			t.Errorf("expected digits-only tax id, got %s", user.TaxID)
		}
		if !user.IsActive {
			t.Error("expected active user")
		}
	})

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		service := newTestService(t)
		_, _ = service.Register(ctx, testRegistration())

		dup := testRegistration()
		dup.Email = "MARIA.SILVA@example.com"
		dup.TaxID = "987.654.321-00"
		_, err := service.Register(ctx, dup)

		var cerr *domain.ConflictError
		if !errors.As(err, &cerr) || cerr.Field != "email" {
			t.Fatalf("expected email conflict, got %v", err)
		}
	})

	t.Run("duplicate tax id conflicts regardless of formatting", func(t *testing.T) {
		service := newTestService(t)
		_, _ = service.Register(ctx, testRegistration())

		dup := testRegistration()
		dup.Email = "other@example.com"
		dup.TaxID = "12345678909"
		_, err := service.Register(ctx, dup)

		var cerr *domain.ConflictError
		if !errors.As(err, &cerr) || cerr.Field != "taxId" {
			t.Fatalf("expected taxId conflict, got %v", err)
		}
	})

	t.Run("deactivated user frees email and tax id", func(t *testing.T) {
		service := newTestService(t)
		user, _ := service.Register(ctx, testRegistration())

		if _, err := service.Deactivate(ctx, user.PublicID); err != nil {
			t.Fatalf("deactivate failed: %v", err)
		}

		if _, err := service.Register(ctx, testRegistration()); err != nil {
			t.Errorf("expected re-registration after deactivation, got %v", err)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		service := newTestService(t)

		in := testRegistration()
		in.Email = "not-an-email"
		if _, err := service.Register(ctx, in); err == nil {
			t.Error("expected error for invalid email")
		}

		in = testRegistration()
		in.TaxID = "abc"
		if _, err := service.Register(ctx, in); err == nil {
			t.Error("expected error for digit-less tax id")
		}

		in = testRegistration()
		in.FirstName = " "
		if _, err := service.Register(ctx, in); err == nil {
			t.Error("expected error for empty first name")
		}
	})
}

func TestService_Identify(t *testing.T) {
	ctx := context.Background()

	t.Run("by email, case-insensitive", func(t *testing.T) {
		service := newTestService(t)
		_, _ = service.Register(ctx, testRegistration())

		user, err := service.Identify(ctx, "MARIA.SILVA@EXAMPLE.COM")
		if err != nil {
			t.Fatalf("identify failed: %v", err)
		}
		if user.LastLoginAt == nil {
			t.Error("expected login to be recorded")
		}
	})

	t.Run("by formatted tax id", func(t *testing.T) {
		service := newTestService(t)
		_, _ = service.Register(ctx, testRegistration())

		if _, err := service.Identify(ctx, "123.456.789-09"); err != nil {
			t.Fatalf("identify by tax id failed: %v", err)
		}
	})

	t.Run("unknown identifier is not found", func(t *testing.T) {
		service := newTestService(t)

		var nferr *domain.NotFoundError
		if _, err := service.Identify(ctx, "ghost@example.com"); !errors.As(err, &nferr) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("deactivated user cannot identify", func(t *testing.T) {
		service := newTestService(t)
		user, _ := service.Register(ctx, testRegistration())
		_, _ = service.Deactivate(ctx, user.PublicID)

		var nferr *domain.NotFoundError
		if _, err := service.Identify(ctx, "maria.silva@example.com"); !errors.As(err, &nferr) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	first, _ := service.Register(ctx, testRegistration())
	second := testRegistration()
	second.Email = "joao@example.com"
	second.TaxID = "987.654.321-00"
	other, _ := service.Register(ctx, second)

	t.Run("updates fields and normalizes email", func(t *testing.T) {
		email := "New.Mail@Example.com"
		city := "Recife"
		user, err := service.Update(ctx, first.PublicID, storeUpdate(&email, &city))
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if user.Email != "new.mail@example.com" {
			t.Errorf("expected normalized email, got %s", user.Email)
		}
		if user.City != "Recife" {
			t.Errorf("expected updated city, got %s", user.City)
		}
	})

	t.Run("rejects email held by another user", func(t *testing.T) {
		email := other.Email
		_, err := service.Update(ctx, first.PublicID, storeUpdate(&email, nil))

		var cerr *domain.ConflictError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}
