package usecase

import (
	"context"

	"storehub/internal/domain/entity"

	"github.com/google/uuid"
)

// StoreUsecase covers the store operations gated by the permission evaluator.
type StoreUsecase interface {
	GetStore(ctx context.Context, storeID uuid.UUID) (*entity.Store, error)

	// RemoveOwner detaches an owner from the store. Removing the last owner is rejected.
	RemoveOwner(ctx context.Context, storeID, accountID uuid.UUID) error

	// UpdateStaffPermissions replaces a staff member's permission keys after validating them.
	UpdateStaffPermissions(ctx context.Context, storeID, staffID uuid.UUID, keys []string) (entity.PermissionSet, error)
}
