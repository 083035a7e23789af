package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

func testEvent() domain.OrderCreatedEvent {
	return domain.OrderCreatedEvent{
		OrderID:       "abc-123",
		Number:        "0042",
		CustomerEmail: "maria@example.com",
		Items: []domain.OrderItem{
			{
				Name:     "Corda Verde",
				Price:    decimal.RequireFromString("40.00"),
				Quantity: 2,
				Subtotal: decimal.RequireFromString("80.00"),
			},
		},
		Total:     decimal.RequireFromString("80.00"),
		Timestamp: time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestFormatOrderMessage(t *testing.T) {
	message := FormatOrderMessage(testEvent())

	for _, want := range []string{
		"Pedido: #0042",
		"Corda Verde",
		"Quantidade: 2",
		"R$ 40.00",
		"VALOR TOTAL: R$ 80.00",
		"maria@example.com",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("message missing %q:\n%s", want, message)
		}
	}
}

func TestNotifier_HandleOrderCreated(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("posts to the whatsapp api", func(t *testing.T) {
		var received map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/send" {
				t.Errorf("expected /send, got %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		notifier := NewNotifier(server.URL, logger)
		payload, _ := json.Marshal(testEvent())

		if err := notifier.HandleOrderCreated(context.Background(), payload); err != nil {
			t.Fatalf("handle failed: %v", err)
		}
		if received["to"] != "maria@example.com" {
			t.Errorf("unexpected recipient %q", received["to"])
		}
		if !strings.Contains(received["text"], "Pedido: #0042") {
			t.Errorf("message missing order number: %q", received["text"])
		}
	})

	t.Run("api failure surfaces for retry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		notifier := NewNotifier(server.URL, logger)
		payload, _ := json.Marshal(testEvent())

		if err := notifier.HandleOrderCreated(context.Background(), payload); err == nil {
			t.Error("expected error on api failure")
		}
	})

	t.Run("malformed payload is dropped without error", func(t *testing.T) {
		notifier := NewNotifier("", logger)

		if err := notifier.HandleOrderCreated(context.Background(), []byte("{broken")); err != nil {
			t.Errorf("expected malformed payload to be dropped, got %v", err)
		}
	})

	t.Run("no api url logs instead of sending", func(t *testing.T) {
		notifier := NewNotifier("", logger)
		payload, _ := json.Marshal(testEvent())

		if err := notifier.HandleOrderCreated(context.Background(), payload); err != nil {
			t.Errorf("expected success without api url, got %v", err)
		}
	})
}
