package repository

import (
	"context"
	"errors"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrStoreNotFound is returned when the store does not exist.
	ErrStoreNotFound = errors.New("store not found")
	// ErrOwnershipNotFound is returned when the account does not own the store.
	ErrOwnershipNotFound = errors.New("store ownership not found")
)

// StoreRepository persists stores and their ownership relation.
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Store, error)

	// LockByID loads the store with a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Store, error)

	Create(ctx context.Context, store *entity.Store) error

	AddOwner(ctx context.Context, ownership *entity.StoreOwnership) error

	RemoveOwner(ctx context.Context, storeID, accountID uuid.UUID) error

	CountOwners(ctx context.Context, storeID uuid.UUID) (int64, error)

	IsOwner(ctx context.Context, storeID, accountID uuid.UUID) (bool, error)
}
