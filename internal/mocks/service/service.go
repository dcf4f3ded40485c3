// Package service provides testify mocks of the domain services.
package service

import (
	"context"
	"testing"
	"time"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

func register(t *testing.T, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockPasswordHasher is a mock of service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	register(t, &m.Mock)

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

// MockTokenService is a mock of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func NewMockTokenService(t *testing.T) *MockTokenService {
	m := &MockTokenService{}
	register(t, &m.Mock)

	return m
}

func (m *MockTokenService) IssueSession(session entity.Session) (string, error) {
	args := m.Called(session)

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) IssueChallenge(challenge entity.PendingChallenge) (string, time.Time, error) {
	args := m.Called(challenge)

	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ParseSession(tokenString string) (*entity.Session, error) {
	args := m.Called(tokenString)
	session, _ := args.Get(0).(*entity.Session)

	return session, args.Error(1)
}

func (m *MockTokenService) ParseChallenge(tokenString string) (*entity.PendingChallenge, error) {
	args := m.Called(tokenString)
	challenge, _ := args.Get(0).(*entity.PendingChallenge)

	return challenge, args.Error(1)
}

func (m *MockTokenService) SessionTTL(remember bool) time.Duration {
	return m.Called(remember).Get(0).(time.Duration)
}

// MockTOTPService is a mock of service.TOTPService.
type MockTOTPService struct {
	mock.Mock
}

func NewMockTOTPService(t *testing.T) *MockTOTPService {
	m := &MockTOTPService{}
	register(t, &m.Mock)

	return m
}

func (m *MockTOTPService) GenerateSecret(accountName string) (string, string, error) {
	args := m.Called(accountName)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTOTPService) KeyURL(accountName, secret string) string {
	return m.Called(accountName, secret).String(0)
}

func (m *MockTOTPService) Validate(code, secret string) bool {
	return m.Called(code, secret).Bool(0)
}

// MockQRCodeService is a mock of service.QRCodeService.
type MockQRCodeService struct {
	mock.Mock
}

func NewMockQRCodeService(t *testing.T) *MockQRCodeService {
	m := &MockQRCodeService{}
	register(t, &m.Mock)

	return m
}

func (m *MockQRCodeService) GenerateEnrollmentQR(otpauthURL string) ([]byte, error) {
	args := m.Called(otpauthURL)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

// MockRateLimiter is a mock of service.RateLimiter.
type MockRateLimiter struct {
	mock.Mock
}

func NewMockRateLimiter(t *testing.T) *MockRateLimiter {
	m := &MockRateLimiter{}
	register(t, &m.Mock)

	return m
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)

	return args.Bool(0), args.Error(1)
}

func (m *MockRateLimiter) Reset(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockMailTransport is a mock of service.MailTransport.
type MockMailTransport struct {
	mock.Mock
}

func NewMockMailTransport(t *testing.T) *MockMailTransport {
	m := &MockMailTransport{}
	register(t, &m.Mock)

	return m
}

func (m *MockMailTransport) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

// MockSMSTransport is a mock of service.SMSTransport.
type MockSMSTransport struct {
	mock.Mock
}

func NewMockSMSTransport(t *testing.T) *MockSMSTransport {
	m := &MockSMSTransport{}
	register(t, &m.Mock)

	return m
}

func (m *MockSMSTransport) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockSMSTransport) Send(ctx context.Context, to, text string) error {
	return m.Called(ctx, to, text).Error(0)
}

// MockMessagingService is a mock of service.MessagingService.
type MockMessagingService struct {
	mock.Mock
}

func NewMockMessagingService(t *testing.T) *MockMessagingService {
	m := &MockMessagingService{}
	register(t, &m.Mock)

	return m
}

func (m *MockMessagingService) SendDocument(ctx context.Context, to string, doc service.Document) (string, error) {
	args := m.Called(ctx, to, doc)

	return args.String(0), args.Error(1)
}

// MockPDFRenderer is a mock of service.PDFRenderer.
type MockPDFRenderer struct {
	mock.Mock
}

func NewMockPDFRenderer(t *testing.T) *MockPDFRenderer {
	m := &MockPDFRenderer{}
	register(t, &m.Mock)

	return m
}

func (m *MockPDFRenderer) RenderOrder(order *entity.Order, store *entity.Store) (*service.RenderedDocument, error) {
	args := m.Called(order, store)
	doc, _ := args.Get(0).(*service.RenderedDocument)

	return doc, args.Error(1)
}

// MockArtifactStore is a mock of service.ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func NewMockArtifactStore(t *testing.T) *MockArtifactStore {
	m := &MockArtifactStore{}
	register(t, &m.Mock)

	return m
}

func (m *MockArtifactStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)

	return data, args.Bool(1), args.Error(2)
}

func (m *MockArtifactStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

// MockJobQueue is a mock of service.JobQueue.
type MockJobQueue struct {
	mock.Mock
}

func NewMockJobQueue(t *testing.T) *MockJobQueue {
	m := &MockJobQueue{}
	register(t, &m.Mock)

	return m
}

func (m *MockJobQueue) Enqueue(ctx context.Context, job *entity.NotificationJob, delay time.Duration) error {
	return m.Called(ctx, job, delay).Error(0)
}

// MockEventPublisher is a mock of service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher(t *testing.T) *MockEventPublisher {
	m := &MockEventPublisher{}
	register(t, &m.Mock)

	return m
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, event *entity.OrderCreatedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}
