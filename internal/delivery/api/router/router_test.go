package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storehub/config"
	"storehub/internal/delivery/api/middleware"
	"storehub/internal/delivery/api/router/handler"
	"storehub/internal/delivery/api/validator"
	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/service"
	"storehub/internal/infra/audit"
	"storehub/internal/infra/auth"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionResolver struct {
	usecase.AuthUsecase
}

func (sessionResolver) ResolvePrincipal(_ context.Context, session *entity.Session) (*entity.Principal, error) {
	principal := session.Principal

	return &principal, nil
}

type recordingOrders struct {
	calls int
}

func (o *recordingOrders) CreateOrder(_ context.Context, input usecase.CreateOrderInput) (*entity.Order, error) {
	o.calls++

	return &entity.Order{ID: uuid.New(), StoreID: input.StoreID, Currency: "SAR"}, nil
}

func newRouterTestEcho(t *testing.T, orders usecase.OrderUsecase) (*echo.Echo, service.TokenService) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Session = "session-secret"
	cfg.SecretKey.Challenge = "challenge-secret"
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := sessionResolver{}

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	NewRouter(RouterParams{
		AuthHandler:      handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: resolver, Logger: logger}),
		TwoFactorHandler: handler.NewTwoFactorHandler(handler.TwoFactorHandlerParams{AuthUC: resolver, Logger: logger}),
		StoreHandler:     handler.NewStoreHandler(handler.StoreHandlerParams{Logger: logger}),
		OrderHandler:     handler.NewOrderHandler(handler.OrderHandlerParams{OrderUC: orders, Logger: logger}),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{
			TokenService: tokens,
			AuthUC:       resolver,
			Audit:        audit.NewLogger(logger),
			Logger:       logger,
		}),
	}).RegisterRoutes(e)

	return e, tokens
}

func createOrder(t *testing.T, e *echo.Echo, tokens service.TokenService, principal entity.Principal, storeID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	token, err := tokens.IssueSession(entity.Session{
		Principal:          principal,
		TwoFactorConfirmed: true,
		ExpiresAt:          time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	body := `{"customer_name":"Walk-in","items":[{"name":"Latte","quantity":1,"unit_price":1450}]}`
	path := "/" + principal.Guard.PathSegment() + "/stores/" + storeID.String() + "/orders"
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestCreateOrderRoute_PermissionGate(t *testing.T) {
	storeID := uuid.New()

	tests := []struct {
		name      string
		principal entity.Principal
		want      int
	}{
		{
			name:      "owner with default permissions",
			principal: entity.Principal{Guard: entity.GuardStoreOwner, AccountID: uuid.New(), StoreID: storeID},
			want:      http.StatusCreated,
		},
		{
			name: "staff with manage-orders",
			principal: entity.Principal{
				Guard: entity.GuardStoreStaff, AccountID: uuid.New(), StoreID: storeID,
				Permissions: entity.NewPermissionSet(entity.PermManageOrders),
			},
			want: http.StatusCreated,
		},
		{
			name: "staff with view-orders only",
			principal: entity.Principal{
				Guard: entity.GuardStoreStaff, AccountID: uuid.New(), StoreID: storeID,
				Permissions: entity.NewPermissionSet(entity.PermViewOrders),
			},
			want: http.StatusForbidden,
		},
		{
			name:      "owner of another store",
			principal: entity.Principal{Guard: entity.GuardStoreOwner, AccountID: uuid.New(), StoreID: uuid.New()},
			want:      http.StatusForbidden,
		},
		{
			name:      "admin",
			principal: entity.Principal{Guard: entity.GuardAdmin, AccountID: uuid.New()},
			want:      http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &recordingOrders{}
			e, tokens := newRouterTestEcho(t, orders)

			rec := createOrder(t, e, tokens, tt.principal, storeID)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.want == http.StatusCreated {
				assert.Equal(t, 1, orders.calls)

				return
			}
			assert.Zero(t, orders.calls)

			var body domainerrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotNil(t, body.Error)
			assert.Equal(t, "ACCESS_DENIED", body.Error.Code)
		})
	}
}
