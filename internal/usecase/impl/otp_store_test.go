package impl

import (
	"context"
	"testing"
	"time"

	"storehub/internal/domain/entity"
	mockRepo "storehub/internal/mocks/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOtpStore(t *testing.T, now time.Time) (*otpStore, *mockRepo.MockOtpRepository, *mockRepo.MockTransactionManager) {
	otpRepo := mockRepo.NewMockOtpRepository(t)
	txManager := mockRepo.NewMockTransactionManager(&mockRepo.MockRepositoryFactory{Otps: otpRepo})

	store := NewOtpStore(txManager, otpRepo).(*otpStore)
	store.now = fixedClock(now)

	return store, otpRepo, txManager
}

func TestOtpStore_IssueSupersedesInsideTransaction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store, otpRepo, txManager := newTestOtpStore(t, now)
	userID := uuid.New()

	deleteCall := otpRepo.On("DeleteUnused", ctx, userID, entity.OtpChannelSMS).Return(nil).Once()
	otpRepo.On("Create", ctx, mock.MatchedBy(func(code *entity.OtpCode) bool {
		return code.UserID == userID &&
			code.Code == "042917" &&
			code.Channel != nil && *code.Channel == entity.OtpChannelSMS &&
			code.ExpiresAt.Equal(now.Add(10*time.Minute)) &&
			!code.Used
	})).Return(nil).Once().NotBefore(deleteCall)

	require.NoError(t, store.Issue(ctx, userID, entity.OtpChannelSMS, "042917", 10*time.Minute))
	assert.Equal(t, 1, txManager.Calls)
}

func TestOtpStore_IssueRejectsUnknownChannel(t *testing.T) {
	store, _, txManager := newTestOtpStore(t, time.Now())

	err := store.Issue(context.Background(), uuid.New(), entity.OtpChannel("pigeon"), "000000", time.Minute)

	assert.Error(t, err)
	assert.Zero(t, txManager.Calls)
}

func TestOtpStore_IssuePropagatesFailure(t *testing.T) {
	ctx := context.Background()
	store, otpRepo, _ := newTestOtpStore(t, time.Now())
	userID := uuid.New()

	otpRepo.On("DeleteUnused", ctx, userID, entity.OtpChannelEmail).Return(errors.New("db down")).Once()

	assert.Error(t, store.Issue(ctx, userID, entity.OtpChannelEmail, "123456", time.Minute))
}

func TestOtpStore_Verify(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store, otpRepo, _ := newTestOtpStore(t, now)
	userID := uuid.New()
	email := entity.OtpChannelEmail

	otpRepo.On("MarkUsed", ctx, userID, &email, "123456", now).Return(true, nil).Once()
	otpRepo.On("MarkUsed", ctx, userID, &email, "999999", now).Return(false, nil).Once()

	ok, err := store.Verify(ctx, userID, entity.OtpChannelEmail, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Verify(ctx, userID, entity.OtpChannelEmail, "999999")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Verify(ctx, userID, entity.OtpChannelEmail, "")
	require.NoError(t, err)
	assert.False(t, ok, "empty codes never reach the repository")
}

func TestOtpStore_VerifyLegacyMatchesNullChannel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store, otpRepo, _ := newTestOtpStore(t, now)
	userID := uuid.New()

	otpRepo.On("MarkUsed", ctx, userID, (*entity.OtpChannel)(nil), "123456", now).Return(true, nil).Once()

	ok, err := store.VerifyLegacy(ctx, userID, "123456")
	require.NoError(t, err)
	assert.True(t, ok)
}
