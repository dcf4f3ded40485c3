package postgres

import (
	"context"
	"time"

	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/repository"
	"storehub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type otpRepository struct {
	db *gorm.DB
}

// NewOtpRepository is the constructor for otpRepository.
func NewOtpRepository(db *gorm.DB) repository.OtpRepository {
	return &otpRepository{db: db}
}

func (repo *otpRepository) DeleteUnused(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND channel = ? AND used = ?", userID, channel.String(), false).
		Delete(&model.OtpCodeModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete unused otp codes")
	}

	return nil
}

func (repo *otpRepository) Create(ctx context.Context, code *entity.OtpCode) error {
	codeM := fromOtpDomain(code)
	if err := repo.db.WithContext(ctx).Create(codeM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create otp code")
	}

	code.ID = codeM.ID
	code.CreatedAt = codeM.CreatedAt

	return nil
}

// MarkUsed is a compare-and-set on the used flag: of two concurrent callers
// presenting the same code, exactly one sees a changed row.
func (repo *otpRepository) MarkUsed(ctx context.Context, userID uuid.UUID, channel *entity.OtpChannel, code string, now time.Time) (bool, error) {
	query := repo.db.WithContext(ctx).
		Model(&model.OtpCodeModel{}).
		Where("user_id = ? AND code = ? AND used = ? AND expires_at > ?", userID, code, false, now.UTC())

	if channel == nil {
		query = query.Where("channel IS NULL")
	} else {
		query = query.Where("channel = ?", channel.String())
	}

	result := query.Update("used", true)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark otp code used")
	}

	return result.RowsAffected > 0, nil
}

func (repo *otpRepository) CountUnused(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel, now time.Time) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.OtpCodeModel{}).
		Where("user_id = ? AND channel = ? AND used = ? AND expires_at > ?", userID, channel.String(), false, now.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to count otp codes")
	}

	return count, nil
}

func fromOtpDomain(data *entity.OtpCode) *model.OtpCodeModel {
	var channel *string
	if data.Channel != nil {
		value := data.Channel.String()
		channel = &value
	}

	return &model.OtpCodeModel{
		ID:        data.ID,
		UserID:    data.UserID,
		Code:      data.Code,
		Channel:   channel,
		Used:      data.Used,
		ExpiresAt: data.ExpiresAt.UTC(),
	}
}
