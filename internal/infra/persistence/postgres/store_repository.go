package postgres

import (
	"context"

	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/repository"
	"storehub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository is the constructor for storeRepository.
func NewStoreRepository(db *gorm.DB) repository.StoreRepository {
	return &storeRepository{db: db}
}

func (repo *storeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	return repo.find(repo.db.WithContext(ctx), id)
}

// LockByID takes a row lock on the store, serializing ownership changes of the same store.
func (repo *storeRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	return repo.find(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (repo *storeRepository) find(db *gorm.DB, id uuid.UUID) (*entity.Store, error) {
	var storeM model.StoreModel
	if err := db.Where("id = ?", id).First(&storeM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrStoreNotFound
		}

		return nil, errors.Wrap(err, "failed to find store by id")
	}

	return toStoreDomain(&storeM), nil
}

func (repo *storeRepository) Create(ctx context.Context, store *entity.Store) error {
	storeM := &model.StoreModel{
		ID:          store.ID,
		Name:        store.Name,
		PhoneNumber: store.PhoneNumber,
		Address:     store.Address,
		Currency:    store.Currency,
	}
	if err := repo.db.WithContext(ctx).Create(storeM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create store")
	}

	store.ID = storeM.ID
	store.CreatedAt = storeM.CreatedAt
	store.UpdatedAt = storeM.UpdatedAt

	return nil
}

func (repo *storeRepository) AddOwner(ctx context.Context, ownership *entity.StoreOwnership) error {
	ownerM := &model.StoreOwnerModel{StoreID: ownership.StoreID, AccountID: ownership.AccountID}
	if err := repo.db.WithContext(ctx).Create(ownerM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return nil
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrStoreNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to add store owner")
	}
	ownership.CreatedAt = ownerM.CreatedAt

	return nil
}

func (repo *storeRepository) RemoveOwner(ctx context.Context, storeID, accountID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("store_id = ? AND account_id = ?", storeID, accountID).
		Delete(&model.StoreOwnerModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to remove store owner")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOwnershipNotFound
	}

	return nil
}

func (repo *storeRepository) CountOwners(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.StoreOwnerModel{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	if err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count store owners")
	}

	return count, nil
}

func (repo *storeRepository) IsOwner(ctx context.Context, storeID, accountID uuid.UUID) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.StoreOwnerModel{}).
		Where("store_id = ? AND account_id = ?", storeID, accountID).
		Count(&count).Error
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check store ownership")
	}

	return count > 0, nil
}

func toStoreDomain(data *model.StoreModel) *entity.Store {
	return &entity.Store{
		ID:          data.ID,
		Name:        data.Name,
		PhoneNumber: data.PhoneNumber,
		Address:     data.Address,
		Currency:    data.Currency,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
