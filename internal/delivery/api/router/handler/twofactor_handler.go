package handler

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"storehub/internal/delivery/api/response"
	deliverycontext "storehub/internal/delivery/context"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// TwoFactorHandlerParams holds dependencies for TwoFactorHandler, injected by Fx.
type TwoFactorHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// TwoFactorHandler serves authenticator enrollment.
type TwoFactorHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewTwoFactorHandler is the constructor for TwoFactorHandler.
func NewTwoFactorHandler(params TwoFactorHandlerParams) *TwoFactorHandler {
	return &TwoFactorHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// ConfirmSetupRequest is the body of POST /:guard/two-factor/setup.
type ConfirmSetupRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// SetupResponse describes the authenticator secret to enroll.
type SetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
	QRCode     string `json:"qr_code"` // PNG data URL
}

// BeginSetup handles GET /:guard/two-factor/setup
func (h *TwoFactorHandler) BeginSetup(c echo.Context) error {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	out, err := h.authUC.BeginTwoFactorSetup(c.Request().Context(), principal)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, SetupResponse{
		Secret:     out.Secret,
		OTPAuthURL: out.OTPAuthURL,
		QRCode:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(out.QRCodePNG),
	})
}

// ConfirmSetup handles POST /:guard/two-factor/setup
func (h *TwoFactorHandler) ConfirmSetup(c echo.Context) error {
	principal, ok := deliverycontext.GetPrincipal(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	var req ConfirmSetupRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid setup input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Invalid setup input", err.Error())
	}

	out, err := h.authUC.ConfirmTwoFactorSetup(c.Request().Context(), principal, req.Code)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, SessionResponse{
		SessionToken: out.SessionToken,
		ExpiresAt:    out.ExpiresAt,
		RedirectTo:   out.RedirectTo,
	})
}
