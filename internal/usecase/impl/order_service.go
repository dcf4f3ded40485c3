package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/repository"
	"storehub/internal/domain/service"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type orderService struct {
	txManager repository.TransactionManager
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderService is the constructor for orderService.
func NewOrderService(txManager repository.TransactionManager, publisher service.EventPublisher, logger *slog.Logger) usecase.OrderUsecase {
	return &orderService{
		txManager: txManager,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder persists the order and then announces it. A publish failure is
// logged but does not undo the committed order.
func (srv *orderService) CreateOrder(ctx context.Context, input usecase.CreateOrderInput) (*entity.Order, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	paymentStatus := input.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = entity.PaymentStatusUnpaid
	}

	var order *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		storeRepo := repoFactory.NewStoreRepository()
		orderRepo := repoFactory.NewOrderRepository()

		// The store row lock serializes order number allocation per store.
		store, err := storeRepo.LockByID(ctx, input.StoreID)
		if err != nil {
			if errors.Is(err, repository.ErrStoreNotFound) {
				return domainerrors.ErrStoreNotFound
			}

			return errors.Wrap(err, "failed to load store")
		}

		number, err := orderRepo.NextOrderNumber(ctx, store.ID)
		if err != nil {
			return errors.Wrap(err, "failed to allocate order number")
		}

		order = &entity.Order{
			ID:            uuid.New(),
			StoreID:       store.ID,
			OrderNumber:   number,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			Currency:      store.Currency,
			Status:        entity.OrderStatusPending,
			PaymentStatus: paymentStatus,
			Items:         make([]entity.OrderItem, 0, len(input.Items)),
			CreatedAt:     srv.now().UTC(),
		}
		for _, item := range input.Items {
			order.Items = append(order.Items, entity.OrderItem{
				Name:      strings.TrimSpace(item.Name),
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		order.RecalculateTotals()

		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to create order", slog.Any("storeID", input.StoreID), slog.Any("error", err))

		return nil, domainerrors.ErrOrderCreationFailed.WrapMessage("failed to create order")
	}

	event := &entity.OrderCreatedEvent{
		EventID:    uuid.New(),
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Order:      *order,
		OccurredAt: srv.now().UTC(),
	}
	if err := srv.publisher.PublishOrderCreated(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish order created event",
			slog.String("orderID", order.ID.String()),
			slog.String("eventID", event.EventID.String()),
			slog.Any("error", err))
	}

	srv.log(ctx).Info("Order created", slog.String("orderID", order.ID.String()), slog.String("orderNumber", order.OrderNumber))

	return order, nil
}

func validateOrderInput(input usecase.CreateOrderInput) error {
	if input.StoreID == uuid.Nil {
		return domainerrors.ErrValidationFailed.WrapMessage("store id is required")
	}
	if len(input.Items) == 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("an order needs at least one item")
	}
	if len(input.Items) > entity.MaxOrderItems {
		return domainerrors.ErrValidationFailed.WrapMessage("too many order items")
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid order item")
		}
		if item.Quantity > entity.MaxItemQuantity || item.UnitPrice > entity.MaxUnitPrice {
			return domainerrors.ErrValidationFailed.WrapMessage("order item exceeds limits")
		}
	}

	return nil
}
