package usecase

import (
	"context"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateOrderItemInput is one requested order line.
type CreateOrderItemInput struct {
	Name      string
	Quantity  int
	UnitPrice int64
}

// CreateOrderInput defines the data required to create an order.
type CreateOrderInput struct {
	StoreID       uuid.UUID
	CustomerName  string
	PaymentStatus entity.PaymentStatus
	Items         []CreateOrderItemInput
}

// OrderUsecase creates orders and announces them.
type OrderUsecase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*entity.Order, error)
}

// OrderCreatedListener turns an order-created event into a queued notification job.
type OrderCreatedListener interface {
	HandleOrderCreated(ctx context.Context, event *entity.OrderCreatedEvent) error
}

// OrderNotificationUsecase performs one attempt at delivering an order document.
type OrderNotificationUsecase interface {
	Handle(ctx context.Context, job *entity.NotificationJob) entity.JobResult
}

// NotificationScheduler applies the retry policy to job results.
type NotificationScheduler interface {
	// Process runs one attempt and schedules the next one if the result allows it.
	Process(ctx context.Context, job *entity.NotificationJob)
}
