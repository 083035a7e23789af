package admin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/orders"
	"github.com/ropeartlab/ropeartlab/internal/store/localstore"
)

const testToken = "secret-admin-token"

func newTestServer(t *testing.T) (*httptest.Server, *localstore.Store) {
	t.Helper()
	st, err := localstore.Open("")
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(st, orders.NewEngine(st, nil, logger), logger)

	mux := http.NewServeMux()
	handler.Register(mux, testToken)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, st
}

func adminGet(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRequireToken(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		resp := adminGet(t, server.URL+"/api/admin/dashboard", "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("wrong token is unauthorized", func(t *testing.T) {
		resp := adminGet(t, server.URL+"/api/admin/dashboard", "nope")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("valid token passes", func(t *testing.T) {
		resp := adminGet(t, server.URL+"/api/admin/dashboard", testToken)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("empty configured token disables the surface", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		gate := RequireToken("", logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run")
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
		req.Header.Set("Authorization", "")
		rec := httptest.NewRecorder()

		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

func TestHandleReports(t *testing.T) {
	server, _ := newTestServer(t)

	for _, kind := range []string{"general", "products", "users", ""} {
		resp := adminGet(t, server.URL+"/api/admin/reports?type="+kind, testToken)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("type %q: expected 200, got %d", kind, resp.StatusCode)
		}
	}

	resp := adminGet(t, server.URL+"/api/admin/reports?type=bogus", testToken)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown report type, got %d", resp.StatusCode)
	}

	resp = adminGet(t, server.URL+"/api/admin/reports?period=-1", testToken)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for negative period, got %d", resp.StatusCode)
	}
}

func seedDraft(t *testing.T, st *localstore.Store) *domain.OrderDraft {
	t.Helper()
	draft := &domain.OrderDraft{
		PublicID:    uuid.NewString(),
		Source:      "whatsapp",
		SenderID:    "5585999990000",
		MessageText: "quero 2 corda verde",
		Items: []domain.OrderItem{
			{
				Name:     "Corda Verde",
				Price:    decimal.RequireFromString("40.00"),
				Quantity: 2,
				Subtotal: decimal.RequireFromString("80.00"),
			},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateDraft(context.Background(), draft); err != nil {
		t.Fatalf("failed to seed draft: %v", err)
	}
	return draft
}

func TestTruncate(t *testing.T) {
	if got := truncate("quero corda", 200); got != "quero corda" {
		t.Errorf("short text should pass through, got %q", got)
	}

	// Accented text must never be cut mid-rune.
	got := truncate("preciso de decoração em macramê", 20)
	if got != "preciso de decoração" {
		t.Errorf("unexpected truncation %q", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Fatalf("truncation produced a broken rune in %q", got)
		}
	}
}

func TestHandleConfirmDraft(t *testing.T) {
	server, st := newTestServer(t)
	draft := seedDraft(t, st)

	confirm := func() *http.Response {
		req, _ := http.NewRequest(http.MethodPost,
			server.URL+"/api/admin/drafts/"+draft.PublicID+"/confirm", nil)
		req.Header.Set("Authorization", testToken)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := confirm()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var env struct {
		Data struct {
			CustomerEmail string `json:"userEmail"`
			Total         string `json:"total"`
			PaymentMethod string `json:"paymentMethod"`
			Status        string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if env.Data.CustomerEmail != "5585999990000@whatsapp.local" {
		t.Errorf("unexpected customer email %s", env.Data.CustomerEmail)
	}
	if env.Data.Total != "80" {
		t.Errorf("expected total 80, got %s", env.Data.Total)
	}
	if env.Data.PaymentMethod != "whatsapp" {
		t.Errorf("expected payment method whatsapp, got %s", env.Data.PaymentMethod)
	}
	if env.Data.Status != "pending" {
		t.Errorf("expected pending, got %s", env.Data.Status)
	}

	// Second confirm conflicts instead of duplicating the order.
	resp = confirm()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 on second confirm, got %d", resp.StatusCode)
	}
}
