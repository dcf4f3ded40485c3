package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/repository"
	"storehub/internal/infra/persistence/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func emailChannel() *entity.OtpChannel {
	ch := entity.OtpChannelEmail

	return &ch
}

func TestOtpRepository_MarkUsedIsSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := NewOtpRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &entity.OtpCode{
		UserID:    userID,
		Code:      "123456",
		Channel:   emailChannel(),
		ExpiresAt: now.Add(10 * time.Minute),
	}))

	ok, err := repo.MarkUsed(ctx, userID, emailChannel(), "123456", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkUsed(ctx, userID, emailChannel(), "123456", now)
	require.NoError(t, err)
	assert.False(t, ok, "a code must verify at most once")
}

func TestOtpRepository_MarkUsedRejectsExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewOtpRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &entity.OtpCode{
		UserID:    userID,
		Code:      "654321",
		Channel:   emailChannel(),
		ExpiresAt: now.Add(-time.Minute),
	}))

	ok, err := repo.MarkUsed(ctx, userID, emailChannel(), "654321", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOtpRepository_ChannelIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewOtpRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &entity.OtpCode{
		UserID:    userID,
		Code:      "111111",
		Channel:   nil,
		ExpiresAt: now.Add(time.Minute),
	}))

	ok, err := repo.MarkUsed(ctx, userID, emailChannel(), "111111", now)
	require.NoError(t, err)
	assert.False(t, ok, "legacy rows are not matched by a channel lookup")

	ok, err = repo.MarkUsed(ctx, userID, nil, "111111", now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOtpRepository_DeleteUnusedOnlyTouchesChannel(t *testing.T) {
	ctx := context.Background()
	repo := NewOtpRepository(newTestDB(t))
	userID := uuid.New()
	now := time.Now().UTC()
	sms := entity.OtpChannelSMS

	require.NoError(t, repo.Create(ctx, &entity.OtpCode{UserID: userID, Code: "111111", Channel: emailChannel(), ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &entity.OtpCode{UserID: userID, Code: "222222", Channel: &sms, ExpiresAt: now.Add(time.Minute)}))

	require.NoError(t, repo.DeleteUnused(ctx, userID, entity.OtpChannelEmail))

	emailCount, err := repo.CountUnused(ctx, userID, entity.OtpChannelEmail, now)
	require.NoError(t, err)
	assert.Zero(t, emailCount)

	smsCount, err := repo.CountUnused(ctx, userID, entity.OtpChannelSMS, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), smsCount)
}

func TestOtpRepository_ConcurrentMarkUsed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOtpRepository(db)
	userID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &entity.OtpCode{
		UserID:    userID,
		Code:      "999999",
		Channel:   emailChannel(),
		ExpiresAt: now.Add(time.Minute),
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.MarkUsed(ctx, userID, emailChannel(), "999999", now)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestAccountRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newTestDB(t))
	storeID := uuid.New()

	account := &entity.Account{
		Guard:        entity.GuardStoreStaff,
		Email:        " Staff@Example.com ",
		Name:         "Staff",
		PasswordHash: "hash",
		StoreID:      &storeID,
		Permissions:  entity.NewPermissionSet(entity.PermViewOrders, entity.PermCreateOrders),
	}
	require.NoError(t, repo.Create(ctx, account))
	require.NotEqual(t, uuid.Nil, account.ID)

	found, err := repo.FindByEmail(ctx, entity.GuardStoreStaff, "staff@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, storeID, *found.StoreID)
	assert.True(t, found.Permissions.Has(entity.PermCreateOrders))

	_, err = repo.FindByEmail(ctx, entity.GuardStoreOwner, "staff@example.com")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)

	require.NoError(t, repo.UpdatePermissions(ctx, account.ID, entity.NewPermissionSet(entity.PermViewStore)))
	found, err = repo.FindByID(ctx, entity.GuardStoreStaff, account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"view-store"}, found.Permissions.Strings())

	confirmed := time.Now().UTC()
	require.NoError(t, repo.UpdateTwoFactor(ctx, account.ID, "SECRET", entity.OtpChannelSMS, &confirmed))
	found, err = repo.FindByID(ctx, entity.GuardStoreStaff, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "SECRET", found.TwoFactorSecret)
	assert.Equal(t, entity.OtpChannelSMS, found.TwoFactorChannel)
	assert.True(t, found.TwoFactorConfirmed())
}

func TestStoreRepository_Owners(t *testing.T) {
	ctx := context.Background()
	repo := NewStoreRepository(newTestDB(t))

	store := &entity.Store{Name: "Corner Shop", Currency: "SAR"}
	require.NoError(t, repo.Create(ctx, store))

	first, second := uuid.New(), uuid.New()
	require.NoError(t, repo.AddOwner(ctx, &entity.StoreOwnership{StoreID: store.ID, AccountID: first}))
	require.NoError(t, repo.AddOwner(ctx, &entity.StoreOwnership{StoreID: store.ID, AccountID: second}))

	count, err := repo.CountOwners(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	isOwner, err := repo.IsOwner(ctx, store.ID, first)
	require.NoError(t, err)
	assert.True(t, isOwner)

	require.NoError(t, repo.RemoveOwner(ctx, store.ID, first))
	assert.ErrorIs(t, repo.RemoveOwner(ctx, store.ID, first), repository.ErrOwnershipNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrStoreNotFound)
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	stores := NewStoreRepository(db)
	orders := NewOrderRepository(db)

	store := &entity.Store{Name: "Bakery", Currency: "SAR"}
	require.NoError(t, stores.Create(ctx, store))

	number, err := orders.NextOrderNumber(ctx, store.ID)
	require.NoError(t, err)
	assert.Contains(t, number, "-000001")

	order := &entity.Order{
		StoreID:       store.ID,
		OrderNumber:   number,
		Currency:      "SAR",
		Status:        entity.OrderStatusPending,
		PaymentStatus: entity.PaymentStatusUnpaid,
		Items: []entity.OrderItem{
			{Name: "Bread", Quantity: 2, UnitPrice: 300},
			{Name: "Cake", Quantity: 1, UnitPrice: 2500},
		},
	}
	order.RecalculateTotals()
	require.NoError(t, orders.Create(ctx, order))

	found, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3100), found.TotalAmount)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Bread", found.Items[0].Name)

	next, err := orders.NextOrderNumber(ctx, store.ID)
	require.NoError(t, err)
	assert.Contains(t, next, "-000002")
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tm := NewTransactionManager(db)

	boom := assert.AnError
	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.NewStoreRepository().Create(ctx, &entity.Store{Name: "Temp", Currency: "SAR"}); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&model.StoreModel{}).Count(&count).Error)
	assert.Zero(t, count)
}
