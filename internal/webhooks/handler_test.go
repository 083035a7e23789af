package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/orders"
	"github.com/ropeartlab/ropeartlab/internal/store"
	"github.com/ropeartlab/ropeartlab/internal/store/localstore"
)

const testPixSecret = "test-secret"

func newTestHandler(t *testing.T) (*Handler, *localstore.Store, *orders.Engine) {
	t.Helper()
	st, err := localstore.Open("")
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := orders.NewEngine(st, nil, logger)
	handler := NewHandler(NewWhatsAppIngestor(st, logger), engine, "verify-me", testPixSecret, logger)
	return handler, st, engine
}

func seedProduct(t *testing.T, st *localstore.Store, name, price string) {
	t.Helper()
	err := st.CreateProduct(context.Background(), &domain.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
}

func TestHandleWhatsAppVerify(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	t.Run("echoes challenge on valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/webhooks/whatsapp/verify?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
		rec := httptest.NewRecorder()

		handler.HandleWhatsAppVerify(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "12345" {
			t.Errorf("expected raw challenge, got %q", rec.Body.String())
		}
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/webhooks/whatsapp/verify?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
		rec := httptest.NewRecorder()

		handler.HandleWhatsAppVerify(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})
}

func whatsAppBody(text string) string {
	return `{"entry":[{"changes":[{"field":"messages","value":{"messages":[{"from":"5585999990000","type":"text","text":{"body":"` + text + `"}}]}}]}]}`
}

func TestHandleWhatsAppMessages(t *testing.T) {
	t.Run("purchase intent becomes a draft, not an order", func(t *testing.T) {
		handler, st, _ := newTestHandler(t)
		seedProduct(t, st, "Corda Rosa Pink", "45.00")

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/whatsapp/messages",
			strings.NewReader(whatsAppBody("quero 2 corda rosa pink por favor")))
		rec := httptest.NewRecorder()

		handler.HandleWhatsAppMessages(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		drafts, err := st.ListDrafts(context.Background())
		if err != nil {
			t.Fatalf("failed to list drafts: %v", err)
		}
		if len(drafts) != 1 {
			t.Fatalf("expected 1 draft, got %d", len(drafts))
		}
		draft := drafts[0]
		if draft.Source != "whatsapp" || draft.SenderID != "5585999990000" {
			t.Errorf("unexpected draft origin: %+v", draft)
		}
		if len(draft.Items) != 1 || draft.Items[0].Quantity != 2 {
			t.Errorf("expected 1 item with quantity 2, got %+v", draft.Items)
		}
		if !draft.Items[0].Price.Equal(decimal.RequireFromString("45.00")) {
			t.Errorf("expected catalog price, got %s", draft.Items[0].Price)
		}

		ordersList, _ := st.ListOrders(context.Background(), store.OrderFilter{})
		if len(ordersList) != 0 {
			t.Errorf("expected no orders before confirmation, got %d", len(ordersList))
		}
	})

	t.Run("message without catalog match creates nothing", func(t *testing.T) {
		handler, st, _ := newTestHandler(t)
		seedProduct(t, st, "Corda Rosa Pink", "45.00")

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/whatsapp/messages",
			strings.NewReader(whatsAppBody("quero algo bonito")))
		rec := httptest.NewRecorder()

		handler.HandleWhatsAppMessages(rec, req)

		drafts, _ := st.ListDrafts(context.Background())
		if len(drafts) != 0 {
			t.Errorf("expected no drafts, got %d", len(drafts))
		}
	})

	t.Run("non-order chatter is ignored", func(t *testing.T) {
		handler, st, _ := newTestHandler(t)
		seedProduct(t, st, "Corda Rosa Pink", "45.00")

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/whatsapp/messages",
			strings.NewReader(whatsAppBody("bom dia!")))
		rec := httptest.NewRecorder()

		handler.HandleWhatsAppMessages(rec, req)

		drafts, _ := st.ListDrafts(context.Background())
		if len(drafts) != 0 {
			t.Errorf("expected no drafts, got %d", len(drafts))
		}
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/whatsapp/messages",
			strings.NewReader(`{"entry":[]}`))
		rec := httptest.NewRecorder()

		handler.HandleWhatsAppMessages(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testPixSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHandlePix(t *testing.T) {
	createPendingOrder := func(t *testing.T, engine *orders.Engine) string {
		t.Helper()
		order, err := engine.Create(context.Background(), orders.CreateOrderInput{
			CustomerEmail: "maria@example.com",
			Items: []orders.ItemInput{
				{Name: "Corda Verde", Price: decimal.RequireFromString("40.00"), Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
		return order.PublicID
	}

	t.Run("PAID approves the order with pix payment", func(t *testing.T) {
		handler, st, engine := newTestHandler(t)
		orderID := createPendingOrder(t, engine)

		body := `{"order_id":"` + orderID + `","status":"PAID","transaction_id":"tx-1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment/pix", strings.NewReader(body))
		req.Header.Set(signatureHeader, sign(body))
		rec := httptest.NewRecorder()

		handler.HandlePix(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		order, _ := st.GetOrder(context.Background(), orderID)
		if order.Status != domain.OrderStatusApproved {
			t.Errorf("expected approved, got %s", order.Status)
		}
		if order.PaymentMethod != "pix" {
			t.Errorf("expected payment method pix, got %s", order.PaymentMethod)
		}
	})

	t.Run("repeated confirmation conflicts", func(t *testing.T) {
		handler, _, engine := newTestHandler(t)
		orderID := createPendingOrder(t, engine)

		body := `{"order_id":"` + orderID + `","status":"PAID"}`
		for i, want := range []int{http.StatusOK, http.StatusConflict} {
			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment/pix", strings.NewReader(body))
			req.Header.Set(signatureHeader, sign(body))
			rec := httptest.NewRecorder()

			handler.HandlePix(rec, req)

			if rec.Code != want {
				t.Errorf("call %d: expected %d, got %d", i+1, want, rec.Code)
			}
		}
	})

	t.Run("non-PAID status is acknowledged and ignored", func(t *testing.T) {
		handler, st, engine := newTestHandler(t)
		orderID := createPendingOrder(t, engine)

		body := `{"order_id":"` + orderID + `","status":"EXPIRED"}`
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment/pix", strings.NewReader(body))
		req.Header.Set(signatureHeader, sign(body))
		rec := httptest.NewRecorder()

		handler.HandlePix(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		order, _ := st.GetOrder(context.Background(), orderID)
		if order.Status != domain.OrderStatusPending {
			t.Errorf("expected order untouched, got %s", order.Status)
		}
	})

	t.Run("bad signature is unauthorized", func(t *testing.T) {
		handler, _, engine := newTestHandler(t)
		orderID := createPendingOrder(t, engine)

		body := `{"order_id":"` + orderID + `","status":"PAID"}`
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment/pix", strings.NewReader(body))
		req.Header.Set(signatureHeader, "deadbeef")
		rec := httptest.NewRecorder()

		handler.HandlePix(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing secret disables the endpoint", func(t *testing.T) {
		handler, _, _ := newTestHandler(t)
		handler.pixSecret = ""

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment/pix", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.HandlePix(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}
