package handler

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

	"storehub/internal/delivery/api/middleware"
	"storehub/internal/delivery/api/validator"
	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthUsecase struct {
	usecase.AuthUsecase

	loginInput  usecase.LoginInput
	loginOutput *usecase.LoginOutput
	verifyInput usecase.VerifyChallengeInput
	err         error
}

func (f *fakeAuthUsecase) Login(_ context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	f.loginInput = input

	return f.loginOutput, f.err
}

func (f *fakeAuthUsecase) VerifyChallenge(_ context.Context, input usecase.VerifyChallengeInput) (*usecase.SessionOutput, error) {
	f.verifyInput = input
	if f.err != nil {
		return nil, f.err
	}

	return &usecase.SessionOutput{SessionToken: "session", ExpiresAt: time.Unix(1_800_000_000, 0).UTC(), RedirectTo: "/store-owner"}, nil
}

type fakeOrderUsecase struct {
	input usecase.CreateOrderInput
}

func (f *fakeOrderUsecase) CreateOrder(_ context.Context, input usecase.CreateOrderInput) (*entity.Order, error) {
	f.input = input

	return &entity.Order{ID: uuid.New(), StoreID: input.StoreID, Currency: "SAR"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(discardLogger()).HandleHTTPError

	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestAuthHandler_Login(t *testing.T) {
	authUC := &fakeAuthUsecase{loginOutput: &usecase.LoginOutput{
		State:              usecase.AuthStateChallengePending,
		ChallengeToken:     "challenge",
		ChallengeExpiresAt: time.Unix(1_800_000_000, 0).UTC(),
		Channel:            entity.OtpChannelEmail,
	}}
	h := NewAuthHandler(AuthHandlerParams{AuthUC: authUC, Logger: discardLogger()})
	e := newTestEcho()
	e.POST("/auth/:guard/login", h.Login)

	t.Run("challenge pending", func(t *testing.T) {
		rec := postJSON(e, "/auth/store-owner/login", `{"email":"owner@example.com","password":"secret","remember":true,"intended_url":"/store-owner/stores"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, entity.GuardStoreOwner, authUC.loginInput.Guard)
		assert.Equal(t, "owner@example.com", authUC.loginInput.Identifier)
		assert.True(t, authUC.loginInput.Remember)
		assert.Equal(t, "/store-owner/stores", authUC.loginInput.IntendedURL)

		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "challenge_pending", data["state"])
		assert.Equal(t, "challenge", data["challenge_token"])
		assert.Equal(t, "email", data["channel"])
		assert.NotContains(t, data, "session_token")
		assert.NotContains(t, data, "session_expires_at")
	})

	t.Run("validation error", func(t *testing.T) {
		rec := postJSON(e, "/auth/store-owner/login", `{"email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errInfo := decodeBody(t, rec)["error"].(map[string]any)
		assert.Equal(t, "VALIDATION_ERROR", errInfo["code"])
	})

	t.Run("unknown guard", func(t *testing.T) {
		rec := postJSON(e, "/auth/superuser/login", `{"email":"owner@example.com","password":"secret"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		errInfo := decodeBody(t, rec)["error"].(map[string]any)
		assert.Equal(t, "UNKNOWN_GUARD", errInfo["code"])
	})

	t.Run("usecase error", func(t *testing.T) {
		authUC.err = domainerrors.ErrInvalidCredentials
		defer func() { authUC.err = nil }()

		rec := postJSON(e, "/auth/admin/login", `{"email":"admin@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		errInfo := decodeBody(t, rec)["error"].(map[string]any)
		assert.Equal(t, "INVALID_CREDENTIALS", errInfo["code"])
	})
}

func TestAuthHandler_VerifyChallenge(t *testing.T) {
	authUC := &fakeAuthUsecase{}
	h := NewAuthHandler(AuthHandlerParams{AuthUC: authUC, Logger: discardLogger()})
	e := newTestEcho()
	e.POST("/auth/:guard/two-factor/challenge", h.VerifyChallenge)

	rec := postJSON(e, "/auth/store-staff/two-factor/challenge", `{"challenge_token":"challenge","code":"123456"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.VerifyChallengeInput{Guard: entity.GuardStoreStaff, ChallengeToken: "challenge", Code: "123456"}, authUC.verifyInput)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "session", data["session_token"])

	authUC.err = domainerrors.ErrInvalidTwoFactorCode
	rec = postJSON(e, "/auth/store-staff/two-factor/challenge", `{"challenge_token":"challenge","code":"000000"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	orderUC := &fakeOrderUsecase{}
	h := NewOrderHandler(OrderHandlerParams{OrderUC: orderUC, Logger: discardLogger()})
	e := newTestEcho()
	e.POST("/store-owner/stores/:storeID/orders", h.CreateOrder)
	storeID := uuid.New()
	path := "/store-owner/stores/" + storeID.String() + "/orders"

	rec := postJSON(e, path, `{"customer_name":"Sara","payment_status":"paid","items":[{"name":"Latte","quantity":2,"unit_price":1450}]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, storeID, orderUC.input.StoreID)
	assert.Equal(t, entity.PaymentStatus("paid"), orderUC.input.PaymentStatus)
	assert.Equal(t, []usecase.CreateOrderItemInput{{Name: "Latte", Quantity: 2, UnitPrice: 1450}}, orderUC.input.Items)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{name: "no items", path: path, body: `{"items":[]}`, code: http.StatusBadRequest},
		{name: "zero quantity", path: path, body: `{"items":[{"name":"Latte","quantity":0,"unit_price":1}]}`, code: http.StatusBadRequest},
		{name: "unknown payment status", path: path, body: `{"payment_status":"maybe","items":[{"name":"Latte","quantity":1}]}`, code: http.StatusBadRequest},
		{name: "malformed store id", path: "/store-owner/stores/nope/orders", body: `{"items":[{"name":"Latte","quantity":1}]}`, code: http.StatusBadRequest},
		{name: "quantity too large", path: path, body: `{"items":[{"name":"Latte","quantity":100001,"unit_price":1}]}`, code: http.StatusBadRequest},
		{name: "unit price too large", path: path, body: `{"items":[{"name":"Latte","quantity":1,"unit_price":100000000001}]}`, code: http.StatusBadRequest},
		{name: "largest accepted line", path: path, body: `{"items":[{"name":"Latte","quantity":100000,"unit_price":100000000000}]}`, code: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, postJSON(e, tt.path, tt.body).Code)
		})
	}
}
