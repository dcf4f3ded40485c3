package repository

import (
	"context"
	"errors"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when the order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository persists orders with their items.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)

	// NextOrderNumber returns a store-scoped human readable order number.
	NextOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error)
}
