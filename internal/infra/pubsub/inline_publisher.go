package pubsub

import (
	"context"
	"log/slog"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"
)

// EventHandler consumes an order event in-process.
type EventHandler interface {
	HandleOrderCreated(ctx context.Context, event *entity.OrderCreatedEvent) error
}

// inlinePublisher hands events straight to a handler in the same process.
// The handler only enqueues, so the request is not held up by delivery.
type inlinePublisher struct {
	handler EventHandler
	logger  *slog.Logger
}

// NewInlinePublisher creates a publisher that dispatches to handler synchronously.
func NewInlinePublisher(handler EventHandler, logger *slog.Logger) service.EventPublisher {
	return &inlinePublisher{handler: handler, logger: logger}
}

func (p *inlinePublisher) PublishOrderCreated(ctx context.Context, event *entity.OrderCreatedEvent) error {
	p.logger.Debug("[InlinePubSub] Dispatching order event",
		slog.String("order_id", event.Order.ID.String()),
	)

	return p.handler.HandleOrderCreated(ctx, event)
}

func (p *inlinePublisher) Close() error {
	return nil
}
