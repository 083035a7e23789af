package messaging

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ropeartlab/ropeartlab/internal/domain"
)

// Topics carried by the event bus. Events are change notifications, not
// state: consumers re-fetch whatever they need from the API.
const (
	TopicCatalogChanged = "catalog.changed"
	TopicOrderCreated   = "order.created"
)

// Bus fans domain events out to their topics. A nil Bus (no brokers
// configured) drops everything, so services publish unconditionally.
type Bus struct {
	catalog *Producer
	orders  *Producer
	logger  *slog.Logger
}

func NewBus(brokers []string, logger *slog.Logger) *Bus {
	if len(brokers) == 0 {
		return nil
	}
	return &Bus{
		catalog: NewProducer(brokers, TopicCatalogChanged),
		orders:  NewProducer(brokers, TopicOrderCreated),
		logger:  logger,
	}
}

// ProductChanged publishes a catalog change. Failures are logged and
// swallowed: the write already committed and the event is advisory.
func (b *Bus) ProductChanged(ctx context.Context, event domain.ProductChangedEvent) {
	if b == nil {
		return
	}
	if err := b.catalog.Publish(ctx, strconv.FormatInt(event.ProductID, 10), event); err != nil {
		b.logger.Error("failed to publish catalog change", "error", err, "product_id", event.ProductID)
	}
}

func (b *Bus) OrderCreated(ctx context.Context, event domain.OrderCreatedEvent) {
	if b == nil {
		return
	}
	if err := b.orders.Publish(ctx, event.OrderID, event); err != nil {
		b.logger.Error("failed to publish order created event", "error", err, "order_id", event.OrderID)
	}
}

func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	err := b.catalog.Close()
	if cerr := b.orders.Close(); err == nil {
		err = cerr
	}
	return err
}
