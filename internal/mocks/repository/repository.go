// Package repository provides testify mocks of the domain repositories.
package repository

import (
	"context"
	"testing"
	"time"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTransactionManager runs the callback against Factory, as a real
// transaction would, unless BeginErr is set.
type MockTransactionManager struct {
	Factory  repository.RepositoryFactory
	BeginErr error
	Calls    int
}

func NewMockTransactionManager(factory repository.RepositoryFactory) *MockTransactionManager {
	return &MockTransactionManager{Factory: factory}
}

func (m *MockTransactionManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	m.Calls++
	if m.BeginErr != nil {
		return m.BeginErr
	}

	return fn(m.Factory)
}

// MockRepositoryFactory hands out fixed repositories.
type MockRepositoryFactory struct {
	Accounts repository.AccountRepository
	Otps     repository.OtpRepository
	Stores   repository.StoreRepository
	Orders   repository.OrderRepository
}

func (f *MockRepositoryFactory) NewAccountRepository() repository.AccountRepository {
	return f.Accounts
}

func (f *MockRepositoryFactory) NewOtpRepository() repository.OtpRepository {
	return f.Otps
}

func (f *MockRepositoryFactory) NewStoreRepository() repository.StoreRepository {
	return f.Stores
}

func (f *MockRepositoryFactory) NewOrderRepository() repository.OrderRepository {
	return f.Orders
}

// MockAccountRepository is a mock of repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAccountRepository) FindByID(ctx context.Context, guard entity.Guard, id uuid.UUID) (*entity.Account, error) {
	args := m.Called(ctx, guard, id)
	account, _ := args.Get(0).(*entity.Account)

	return account, args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, guard entity.Guard, email string) (*entity.Account, error) {
	args := m.Called(ctx, guard, email)
	account, _ := args.Get(0).(*entity.Account)

	return account, args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entity.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) UpdateTwoFactor(ctx context.Context, id uuid.UUID, secret string, channel entity.OtpChannel, confirmedAt *time.Time) error {
	return m.Called(ctx, id, secret, channel, confirmedAt).Error(0)
}

func (m *MockAccountRepository) UpdatePermissions(ctx context.Context, id uuid.UUID, permissions entity.PermissionSet) error {
	return m.Called(ctx, id, permissions).Error(0)
}

// MockOtpRepository is a mock of repository.OtpRepository.
type MockOtpRepository struct {
	mock.Mock
}

func NewMockOtpRepository(t *testing.T) *MockOtpRepository {
	m := &MockOtpRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOtpRepository) DeleteUnused(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel) error {
	return m.Called(ctx, userID, channel).Error(0)
}

func (m *MockOtpRepository) Create(ctx context.Context, code *entity.OtpCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockOtpRepository) MarkUsed(ctx context.Context, userID uuid.UUID, channel *entity.OtpChannel, code string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, channel, code, now)

	return args.Bool(0), args.Error(1)
}

func (m *MockOtpRepository) CountUnused(ctx context.Context, userID uuid.UUID, channel entity.OtpChannel, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, channel, now)

	return args.Get(0).(int64), args.Error(1)
}

// MockStoreRepository is a mock of repository.StoreRepository.
type MockStoreRepository struct {
	mock.Mock
}

func NewMockStoreRepository(t *testing.T) *MockStoreRepository {
	m := &MockStoreRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	args := m.Called(ctx, id)
	store, _ := args.Get(0).(*entity.Store)

	return store, args.Error(1)
}

func (m *MockStoreRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	args := m.Called(ctx, id)
	store, _ := args.Get(0).(*entity.Store)

	return store, args.Error(1)
}

func (m *MockStoreRepository) Create(ctx context.Context, store *entity.Store) error {
	return m.Called(ctx, store).Error(0)
}

func (m *MockStoreRepository) AddOwner(ctx context.Context, ownership *entity.StoreOwnership) error {
	return m.Called(ctx, ownership).Error(0)
}

func (m *MockStoreRepository) RemoveOwner(ctx context.Context, storeID, accountID uuid.UUID) error {
	return m.Called(ctx, storeID, accountID).Error(0)
}

func (m *MockStoreRepository) CountOwners(ctx context.Context, storeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, storeID)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) IsOwner(ctx context.Context, storeID, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, storeID, accountID)

	return args.Bool(0), args.Error(1)
}

// MockOrderRepository is a mock of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func NewMockOrderRepository(t *testing.T) *MockOrderRepository {
	m := &MockOrderRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*entity.Order)

	return order, args.Error(1)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error) {
	args := m.Called(ctx, storeID)

	return args.String(0), args.Error(1)
}
