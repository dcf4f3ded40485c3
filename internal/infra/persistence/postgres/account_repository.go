// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"
	"time"

	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/repository"
	"storehub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// accountRepository implements the repository.AccountRepository interface using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// FindByID retrieves an account of the given guard by its ID.
func (repo *accountRepository) FindByID(ctx context.Context, guard entity.Guard, id uuid.UUID) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND guard = ?", id, guard.String()).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by id")
	}

	return toAccountDomain(&accountM)
}

// FindByEmail retrieves an account of the given guard by email, ignoring case.
func (repo *accountRepository) FindByEmail(ctx context.Context, guard entity.Guard, email string) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		Where("guard = ? AND LOWER(email) = ?", guard.String(), strings.ToLower(strings.TrimSpace(email))).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	return toAccountDomain(&accountM)
}

// Create persists a new account.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("email already registered for this guard")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// UpdateTwoFactor stores the two-factor secret, channel and confirmation time.
func (repo *accountRepository) UpdateTwoFactor(ctx context.Context, id uuid.UUID, secret string, channel entity.OtpChannel, confirmedAt *time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"two_factor_secret":       secret,
			"two_factor_channel":      channel.String(),
			"two_factor_confirmed_at": confirmedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update two-factor settings")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

// UpdatePermissions replaces the stored permission set.
func (repo *accountRepository) UpdatePermissions(ctx context.Context, id uuid.UUID, permissions entity.PermissionSet) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", id).
		Update("permissions", datatypes.NewJSONSlice(permissions.Strings()))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update permissions")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toAccountDomain converts an AccountModel to a domain Account. Stored keys that
// are no longer part of the vocabulary fail the mapping instead of being ignored.
func toAccountDomain(data *model.AccountModel) (*entity.Account, error) {
	permissions, err := entity.ParsePermissionSet(data.Permissions)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s has invalid stored permissions", data.ID)
	}

	return &entity.Account{
		ID:                   data.ID,
		Guard:                entity.Guard(data.Guard),
		Email:                data.Email,
		Name:                 data.Name,
		PhoneNumber:          data.PhoneNumber,
		PasswordHash:         data.PasswordHash,
		TwoFactorSecret:      data.TwoFactorSecret,
		TwoFactorChannel:     entity.OtpChannel(data.TwoFactorChannel),
		TwoFactorConfirmedAt: data.TwoFactorConfirmedAt,
		StoreID:              data.StoreID,
		Permissions:          permissions,
		CreatedAt:            data.CreatedAt,
		UpdatedAt:            data.UpdatedAt,
	}, nil
}

// fromAccountDomain converts a domain Account to an AccountModel for persistence.
func fromAccountDomain(data *entity.Account) *model.AccountModel {
	return &model.AccountModel{
		ID:                   data.ID,
		Guard:                data.Guard.String(),
		Email:                strings.ToLower(strings.TrimSpace(data.Email)),
		Name:                 data.Name,
		PhoneNumber:          data.PhoneNumber,
		PasswordHash:         data.PasswordHash,
		TwoFactorSecret:      data.TwoFactorSecret,
		TwoFactorChannel:     data.TwoFactorChannel.String(),
		TwoFactorConfirmedAt: data.TwoFactorConfirmedAt,
		StoreID:              data.StoreID,
		Permissions:          datatypes.NewJSONSlice(data.Permissions.Strings()),
	}
}
