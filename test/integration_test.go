//go:build integration

package test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/orders"
	"github.com/ropeartlab/ropeartlab/internal/store/postgres"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func orderInput(email string) orders.CreateOrderInput {
	return orders.CreateOrderInput{
		CustomerEmail: email,
		Items: []orders.ItemInput{
			{Name: "Corda Verde", Price: decimal.RequireFromString("40.00"), Quantity: 2},
			{Name: "Corda Marinho", Price: decimal.RequireFromString("45.50"), Quantity: 1},
		},
		PaymentMethod: "card",
	}
}

func TestOrderLifecycleAgainstPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	engine := orders.NewEngine(postgres.New(db), nil, testLogger())

	order, err := engine.Create(ctx, orderInput("maria@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !order.Total.Equal(decimal.RequireFromString("125.50")) {
		t.Errorf("expected total 125.50, got %s", order.Total)
	}
	if order.Number == "" {
		t.Error("expected assigned order number")
	}

	fetched, err := engine.Get(ctx, order.PublicID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("expected 2 items persisted, got %d", len(fetched.Items))
	}
	if fetched.Status != domain.OrderStatusPending {
		t.Errorf("expected pending, got %s", fetched.Status)
	}

	if _, err := engine.Approve(ctx, order.PublicID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	var terr *domain.InvalidTransitionError
	if _, err := engine.Approve(ctx, order.PublicID); !errors.As(err, &terr) {
		t.Fatalf("expected invalid transition on repeated approve, got %v", err)
	}
	if terr.Current != domain.OrderStatusApproved {
		t.Errorf("expected current status approved, got %s", terr.Current)
	}

	cancelled, err := engine.Cancel(ctx, order.PublicID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.CancelledAt == nil {
		t.Error("expected cancelledAt set")
	}

	restored, err := engine.Restore(ctx, order.PublicID)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.Status != domain.OrderStatusPending || restored.CancelledAt != nil {
		t.Errorf("expected pending with cancelledAt cleared, got %s %v", restored.Status, restored.CancelledAt)
	}
}

func TestLegacyStatusTransitionsAgainstPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	engine := orders.NewEngine(postgres.New(db), nil, testLogger())

	order, err := engine.Create(ctx, orderInput("maria@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Rows written by older clients can carry statuses outside the state
	// machine. They read back as pending and must transition like pending.
	if _, err := db.ExecContext(ctx,
		`UPDATE orders SET status = 'em_processamento' WHERE uuid = $1`, order.PublicID); err != nil {
		t.Fatalf("failed to plant legacy status: %v", err)
	}

	fetched, err := engine.Get(ctx, order.PublicID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fetched.Status != domain.OrderStatusPending {
		t.Fatalf("expected legacy status to read as pending, got %s", fetched.Status)
	}

	approved, err := engine.Approve(ctx, order.PublicID)
	if err != nil {
		t.Fatalf("approve of legacy-status order failed: %v", err)
	}
	if approved.Status != domain.OrderStatusApproved || approved.ApprovedAt == nil {
		t.Errorf("expected approved with timestamp, got %s %v", approved.Status, approved.ApprovedAt)
	}
}

func TestConcurrentOrderNumbersAreUnique(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	engine := orders.NewEngine(postgres.New(db), nil, testLogger())

	const workers = 20
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := engine.Create(ctx, orderInput(fmt.Sprintf("user%d@example.com", i)))
			if err != nil {
				t.Errorf("concurrent create failed: %v", err)
				return
			}
			numbers <- order.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		if seen[number] {
			t.Errorf("duplicate order number %s", number)
		}
		seen[number] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d unique numbers, got %d", workers, len(seen))
	}
}

func TestProductUniquenessAgainstPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	st := postgres.New(db)

	product := func() *domain.Product {
		now := time.Now().UTC()
		return &domain.Product{
			Name:      "Corda Rosa Pink",
			Price:     decimal.RequireFromString("45.00"),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	first := product()
	if err := st.CreateProduct(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var cerr *domain.ConflictError
	if err := st.CreateProduct(ctx, product()); !errors.As(err, &cerr) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}

	// A trashed product frees its name; restoring it then conflicts.
	if _, err := st.SoftDeleteProduct(ctx, first.ID, time.Now().UTC()); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	second := product()
	if err := st.CreateProduct(ctx, second); err != nil {
		t.Fatalf("expected name reuse after trash, got %v", err)
	}
	if _, err := st.RestoreProduct(ctx, first.ID); !errors.As(err, &cerr) {
		t.Fatalf("expected restore conflict, got %v", err)
	}
}
