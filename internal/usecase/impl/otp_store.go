// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"time"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/repository"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type otpStore struct {
	txManager repository.TransactionManager
	otpRepo   repository.OtpRepository
	now       func() time.Time
}

// NewOtpStore is the constructor for otpStore.
func NewOtpStore(txManager repository.TransactionManager, otpRepo repository.OtpRepository) usecase.OtpStore {
	return &otpStore{
		txManager: txManager,
		otpRepo:   otpRepo,
		now:       time.Now,
	}
}

// Issue deletes older unused codes and stores the new one in a single transaction.
func (s *otpStore) Issue(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel, code string, ttl time.Duration) error {
	if !channel.IsValid() {
		return errors.Errorf("invalid otp channel %q", channel)
	}

	now := s.now()
	err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		otpRepo := repoFactory.NewOtpRepository()

		if err := otpRepo.DeleteUnused(ctx, userID, channel); err != nil {
			return errors.Wrap(err, "failed to supersede otp codes")
		}

		return otpRepo.Create(ctx, &entity.OtpCode{
			UserID:    userID,
			Code:      code,
			Channel:   &channel,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		})
	})
	if err != nil {
		return errors.Wrap(err, "failed to issue otp code")
	}

	return nil
}

func (s *otpStore) Verify(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	ok, err := s.otpRepo.MarkUsed(ctx, userID, &channel, code, s.now())
	if err != nil {
		return false, errors.Wrap(err, "failed to verify otp code")
	}

	return ok, nil
}

func (s *otpStore) VerifyLegacy(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	ok, err := s.otpRepo.MarkUsed(ctx, userID, nil, code, s.now())
	if err != nil {
		return false, errors.Wrap(err, "failed to verify legacy otp code")
	}

	return ok, nil
}
