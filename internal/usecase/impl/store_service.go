package impl

import (
	"context"
	"log/slog"

	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/policy"
	"storehub/internal/domain/repository"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type storeService struct {
	txManager   repository.TransactionManager
	storeRepo   repository.StoreRepository
	accountRepo repository.AccountRepository
	logger      *slog.Logger
}

// NewStoreService is the constructor for storeService.
func NewStoreService(
	txManager repository.TransactionManager,
	storeRepo repository.StoreRepository,
	accountRepo repository.AccountRepository,
	logger *slog.Logger,
) usecase.StoreUsecase {
	return &storeService{
		txManager:   txManager,
		storeRepo:   storeRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (srv *storeService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *storeService) GetStore(ctx context.Context, storeID uuid.UUID) (*entity.Store, error) {
	store, err := srv.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, domainerrors.ErrStoreNotFound
		}

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to load store")
	}

	return store, nil
}

// RemoveOwner holds the store row lock while counting owners, so two
// concurrent removals cannot both see a second owner.
func (srv *storeService) RemoveOwner(ctx context.Context, storeID, accountID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		storeRepo := repoFactory.NewStoreRepository()

		if _, err := storeRepo.LockByID(ctx, storeID); err != nil {
			if errors.Is(err, repository.ErrStoreNotFound) {
				return domainerrors.ErrStoreNotFound
			}

			return errors.Wrap(err, "failed to lock store")
		}

		isOwner, err := storeRepo.IsOwner(ctx, storeID, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to check ownership")
		}
		if !isOwner {
			return domainerrors.ErrOwnershipNotFound
		}

		owners, err := storeRepo.CountOwners(ctx, storeID)
		if err != nil {
			return errors.Wrap(err, "failed to count owners")
		}
		if owners <= 1 {
			return domainerrors.ErrLastOwner
		}

		return storeRepo.RemoveOwner(ctx, storeID, accountID)
	})
	if err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		srv.log(ctx).Error("Failed to remove store owner", slog.Any("storeID", storeID), slog.Any("accountID", accountID), slog.Any("error", err))

		return domainerrors.ErrTransactionFailed.WrapMessage("failed to remove store owner")
	}

	srv.log(ctx).Info("Store owner removed", slog.Any("storeID", storeID), slog.Any("accountID", accountID))

	return nil
}

// UpdateStaffPermissions validates keys at the boundary before anything is stored.
func (srv *storeService) UpdateStaffPermissions(ctx context.Context, storeID, staffID uuid.UUID, keys []string) (entity.PermissionSet, error) {
	permissions, err := policy.ValidateStaffPermissions(keys)
	switch {
	case errors.Is(err, policy.ErrNotGrantable):
		return nil, domainerrors.ErrPermissionNotGrantable
	case err != nil:
		return nil, domainerrors.ErrInvalidPermission.WrapMessage(err.Error())
	}

	staff, err := srv.accountRepo.FindByID(ctx, entity.GuardStoreStaff, staffID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrStaffNotFound
		}

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to load staff")
	}

	// Staff of another store are reported as missing.
	if staff.StoreID == nil || *staff.StoreID != storeID {
		return nil, domainerrors.ErrStaffNotFound
	}

	if err := srv.accountRepo.UpdatePermissions(ctx, staffID, permissions); err != nil {
		srv.log(ctx).Error("Failed to update staff permissions", slog.Any("staffID", staffID), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WrapMessage("failed to update staff permissions")
	}

	srv.log(ctx).Info("Staff permissions updated", slog.Any("staffID", staffID), slog.Any("permissions", permissions.Strings()))

	return permissions, nil
}
