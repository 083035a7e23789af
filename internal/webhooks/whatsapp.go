// Package webhooks receives callbacks from external channels: WhatsApp
// Business message ingestion and PIX payment confirmations.
package webhooks

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ropeartlab/ropeartlab/internal/domain"
	"github.com/ropeartlab/ropeartlab/internal/store"
)

// orderKeywords flag a free-text message as a purchase intent.
var orderKeywords = []string{"pedido", "comprar", "quero", "necessito", "corda"}

var quantityPattern = regexp.MustCompile(`\d+`)

// WhatsAppIngestor turns incoming WhatsApp messages into order drafts. A
// draft is never an order: free-text product detection is too lossy to
// commit money against, so an operator confirms each draft in the admin
// panel before it enters the lifecycle.
type WhatsAppIngestor struct {
	store  store.Store
	logger *slog.Logger
}

func NewWhatsAppIngestor(st store.Store, logger *slog.Logger) *WhatsAppIngestor {
	return &WhatsAppIngestor{store: st, logger: logger}
}

// incoming WhatsApp Business API payload shapes, trimmed to what we read.

type whatsAppPayload struct {
	Entry []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []whatsAppMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type whatsAppMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

func isOrderMessage(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range orderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Ingest scans the payload's messages and records a draft for each purchase
// intent that mentions at least one catalog product. It returns the number
// of drafts created; per-message failures are logged and skipped.
func (w *WhatsAppIngestor) Ingest(ctx context.Context, payload whatsAppPayload) int {
	created := 0
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				if w.ingestMessage(ctx, msg) {
					created++
				}
			}
		}
	}
	return created
}

func (w *WhatsAppIngestor) ingestMessage(ctx context.Context, msg whatsAppMessage) bool {
	text := msg.Text.Body
	if text == "" || !isOrderMessage(text) {
		return false
	}

	items, err := w.detectItems(ctx, text)
	if err != nil {
		w.logger.Error("failed to match message against catalog", "error", err, "sender", msg.From)
		return false
	}
	if len(items) == 0 {
		w.logger.Info("no catalog products detected in message", "sender", msg.From)
		return false
	}

	draft := &domain.OrderDraft{
		PublicID:    uuid.NewString(),
		Source:      "whatsapp",
		SenderID:    msg.From,
		MessageText: text,
		Items:       items,
		CreatedAt:   time.Now().UTC(),
	}
	if err := w.store.CreateDraft(ctx, draft); err != nil {
		w.logger.Error("failed to record order draft", "error", err, "sender", msg.From)
		return false
	}

	w.logger.Info("order draft recorded from whatsapp",
		"draft_id", draft.PublicID, "sender", msg.From, "items", len(items))
	return true
}

// detectItems matches the message text against the live catalog. Prices come
// from the catalog at ingestion time (discount price when one is set), never
// from the message.
func (w *WhatsAppIngestor) detectItems(ctx context.Context, text string) ([]domain.OrderItem, error) {
	catalog, err := w.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	quantity := 1
	if m := quantityPattern.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			quantity = n
		}
	}

	lower := strings.ToLower(text)
	var items []domain.OrderItem
	for i := range catalog {
		p := &catalog[i]
		if !strings.Contains(lower, strings.ToLower(p.Name)) {
			continue
		}
		price := p.Price
		if p.DiscountPrice != nil {
			price = *p.DiscountPrice
		}
		items = append(items, domain.OrderItem{
			Name:     p.Name,
			Price:    price,
			Quantity: quantity,
			Subtotal: price.Mul(decimal.NewFromInt(int64(quantity))),
		})
	}
	return items, nil
}
