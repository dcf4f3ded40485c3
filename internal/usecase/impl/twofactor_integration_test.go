package impl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storehub/internal/domain/entity"
	"storehub/internal/domain/repository"
	"storehub/internal/infra/persistence/model"
	"storehub/internal/infra/persistence/postgres"
	"storehub/internal/infra/sms"

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

// smsGateway records the text messages posted to it.
type smsGateway struct {
	mu       sync.Mutex
	messages []map[string]string
	status   int
}

func (g *smsGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	g.mu.Lock()
	g.messages = append(g.messages, body)
	status := g.status
	g.mu.Unlock()

	w.WriteHeader(status)
}

func (g *smsGateway) lastCode(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()

	require.NotEmpty(t, g.messages)
	text := g.messages[len(g.messages)-1]["text"]
	fields := strings.Fields(text)
	require.NotEmpty(t, fields)

	return fields[len(fields)-1]
}

type smsFixture struct {
	provider *smsProvider
	otpRepo  repository.OtpRepository
	gateway  *smsGateway
	account  *entity.Account
}

func newSMSFixture(t *testing.T, status int) *smsFixture {
	t.Helper()

	db := newTestDB(t)
	gateway := &smsGateway{status: status}
	server := httptest.NewServer(gateway)
	t.Cleanup(server.Close)

	cfg := newTestConfig()
	cfg.SMS.Enabled = true
	cfg.SMS.APIURL = server.URL
	cfg.SMS.APIKey = "test-key"
	cfg.SMS.SenderID = "storehub"

	otpRepo := postgres.NewOtpRepository(db)
	store := NewOtpStore(postgres.NewTransactionManager(db), otpRepo)
	provider := NewSMSProvider(store, sms.NewHTTPTransport(cfg, newDiscardLogger()), 10*time.Minute, "966", newDiscardLogger()).(*smsProvider)

	storeID := uuid.New()

	return &smsFixture{
		provider: provider,
		otpRepo:  otpRepo,
		gateway:  gateway,
		account: &entity.Account{
			ID:          uuid.New(),
			Guard:       entity.GuardStoreOwner,
			Email:       "owner@example.com",
			PhoneNumber: "+966512345678",
			StoreID:     &storeID,
		},
	}
}

func TestSMSProvider_GenerateAndSendStoresSingleCode(t *testing.T) {
	ctx := context.Background()
	f := newSMSFixture(t, http.StatusOK)

	require.True(t, f.provider.GenerateAndSend(ctx, f.account))

	count, err := f.otpRepo.CountUnused(ctx, f.account.ID, entity.OtpChannelSMS, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	f.gateway.mu.Lock()
	assert.Equal(t, "+966512345678", f.gateway.messages[0]["to"])
	assert.Equal(t, "storehub", f.gateway.messages[0]["from"])
	f.gateway.mu.Unlock()
}

func TestSMSProvider_NewCodeSupersedesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newSMSFixture(t, http.StatusOK)

	require.True(t, f.provider.GenerateAndSend(ctx, f.account))
	first := f.gateway.lastCode(t)
	require.True(t, f.provider.GenerateAndSend(ctx, f.account))
	second := f.gateway.lastCode(t)

	count, err := f.otpRepo.CountUnused(ctx, f.account.ID, entity.OtpChannelSMS, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	if first != second {
		assert.False(t, f.provider.Verify(ctx, f.account, first), "a superseded code must not verify")
	}
	assert.True(t, f.provider.Verify(ctx, f.account, second))
}

func TestSMSProvider_CodeVerifiesOnce(t *testing.T) {
	ctx := context.Background()
	f := newSMSFixture(t, http.StatusOK)

	require.True(t, f.provider.GenerateAndSend(ctx, f.account))
	code := f.gateway.lastCode(t)

	assert.True(t, f.provider.Verify(ctx, f.account, code))
	assert.False(t, f.provider.Verify(ctx, f.account, code))
}

func TestSMSProvider_ExpiredCodeRejected(t *testing.T) {
	ctx := context.Background()
	f := newSMSFixture(t, http.StatusOK)
	f.provider.ttl = -time.Minute

	require.True(t, f.provider.GenerateAndSend(ctx, f.account))
	code := f.gateway.lastCode(t)

	assert.False(t, f.provider.Verify(ctx, f.account, code))
}

func TestSMSProvider_GatewayFailureReturnsFalse(t *testing.T) {
	f := newSMSFixture(t, http.StatusBadGateway)

	assert.False(t, f.provider.GenerateAndSend(context.Background(), f.account))
}
