package service

import (
	"context"

	"storehub/internal/domain/entity"
)

// EventPublisher defines the interface for publishing domain events to a message transport
type EventPublisher interface {
	// PublishOrderCreated publishes the snapshot of a freshly persisted order
	PublishOrderCreated(ctx context.Context, event *entity.OrderCreatedEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
