// Package worker consumes order.created events and hands each new order to
// fulfillment as a formatted WhatsApp message.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

// Notifier formats and delivers the fulfillment handoff. When no API URL is
// configured the message is logged instead of sent, which keeps local
// environments working without a WhatsApp account.
type Notifier struct {
	apiURL string
	client *http.Client
	logger *slog.Logger
}

func NewNotifier(apiURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		apiURL: apiURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// HandleOrderCreated is the consumer callback for the order.created topic.
func (n *Notifier) HandleOrderCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// A malformed event will never parse on retry; drop it.
		n.logger.Error("dropping malformed order event", "error", err)
		return nil
	}

	message := FormatOrderMessage(event)

	if n.apiURL == "" {
		n.logger.Info("fulfillment message (whatsapp api not configured)",
			"order_number", event.Number, "message", message)
		return nil
	}
	return n.send(ctx, event, message)
}

func (n *Notifier) send(ctx context.Context, event domain.OrderCreatedEvent, message string) error {
	body, err := json.Marshal(map[string]string{
		"to":   event.CustomerEmail,
		"text": message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(n.apiURL, "/")+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver fulfillment message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp api answered %d for order %s", resp.StatusCode, event.Number)
	}

	n.logger.Info("fulfillment message delivered",
		"order_id", event.OrderID, "order_number", event.Number)
	return nil
}

// FormatOrderMessage renders the handoff text the shop owner receives for
// each new order.
func FormatOrderMessage(event domain.OrderCreatedEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "NOVO PEDIDO - RopeArtLab\n\n")
	fmt.Fprintf(&b, "Pedido: #%s\n", event.Number)
	fmt.Fprintf(&b, "Data: %s\n", event.Timestamp.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Cliente: %s\n\n", event.CustomerEmail)
	fmt.Fprintf(&b, "ITENS DO PEDIDO:\n\n")

	for i, item := range event.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
		fmt.Fprintf(&b, "   Preço unitário: R$ %s\n", item.Price.StringFixed(2))
		fmt.Fprintf(&b, "   Quantidade: %d\n", item.Quantity)
		fmt.Fprintf(&b, "   Subtotal: R$ %s\n\n", item.Subtotal.StringFixed(2))
	}

	fmt.Fprintf(&b, "VALOR TOTAL: R$ %s\n\n", event.Total.StringFixed(2))
	fmt.Fprintf(&b, "Entraremos em contato para confirmar a entrega.")

	return b.String()
}
