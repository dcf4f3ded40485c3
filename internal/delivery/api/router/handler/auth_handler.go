// Package handler contains the HTTP handlers of the API.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"storehub/internal/delivery/api/response"
	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves login and the two-factor challenge of every guard.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// LoginRequest is the body of POST /auth/:guard/login.
type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Remember    bool   `json:"remember"`
	IntendedURL string `json:"intended_url" validate:"omitempty,max=2048"`
}

// ChallengeRequest is the body of POST /auth/:guard/two-factor/challenge.
type ChallengeRequest struct {
	ChallengeToken string `json:"challenge_token" validate:"required"`
	Code           string `json:"code" validate:"required,max=16"`
}

// ResendRequest is the body of POST /auth/:guard/two-factor/resend.
type ResendRequest struct {
	ChallengeToken string `json:"challenge_token" validate:"required"`
}

// LoginResponse tells the client which step comes next.
type LoginResponse struct {
	State              usecase.AuthState `json:"state"`
	SessionToken       string            `json:"session_token,omitempty"`
	SessionExpiresAt   *time.Time        `json:"session_expires_at,omitempty"`
	ChallengeToken     string            `json:"challenge_token,omitempty"`
	ChallengeExpiresAt *time.Time        `json:"challenge_expires_at,omitempty"`
	Channel            entity.OtpChannel `json:"channel,omitempty"`
	RedirectTo         string            `json:"redirect_to,omitempty"`
}

// SessionResponse carries an issued session token.
type SessionResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RedirectTo   string    `json:"redirect_to"`
}

// ChallengeResponse carries a refreshed challenge token.
type ChallengeResponse struct {
	ChallengeToken string            `json:"challenge_token"`
	ExpiresAt      time.Time         `json:"expires_at"`
	Channel        entity.OtpChannel `json:"channel"`
}

// Login handles POST /auth/:guard/login
func (h *AuthHandler) Login(c echo.Context) error {
	guard, err := pathGuard(c)
	if err != nil {
		return err
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Invalid login input", err.Error())
	}

	out, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Guard:       guard,
		Identifier:  req.Email,
		Password:    req.Password,
		Remember:    req.Remember,
		IP:          c.RealIP(),
		IntendedURL: req.IntendedURL,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	resp := LoginResponse{
		State:          out.State,
		SessionToken:   out.SessionToken,
		ChallengeToken: out.ChallengeToken,
		Channel:        out.Channel,
		RedirectTo:     out.RedirectTo,
	}
	if !out.SessionExpiresAt.IsZero() {
		resp.SessionExpiresAt = &out.SessionExpiresAt
	}
	if !out.ChallengeExpiresAt.IsZero() {
		resp.ChallengeExpiresAt = &out.ChallengeExpiresAt
	}

	return response.Success(c, http.StatusOK, resp)
}

// VerifyChallenge handles POST /auth/:guard/two-factor/challenge
func (h *AuthHandler) VerifyChallenge(c echo.Context) error {
	guard, err := pathGuard(c)
	if err != nil {
		return err
	}

	var req ChallengeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid challenge input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Invalid challenge input", err.Error())
	}

	out, err := h.authUC.VerifyChallenge(c.Request().Context(), usecase.VerifyChallengeInput{
		Guard:          guard,
		ChallengeToken: req.ChallengeToken,
		Code:           req.Code,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, SessionResponse{
		SessionToken: out.SessionToken,
		ExpiresAt:    out.ExpiresAt,
		RedirectTo:   out.RedirectTo,
	})
}

// ResendChallenge handles POST /auth/:guard/two-factor/resend
func (h *AuthHandler) ResendChallenge(c echo.Context) error {
	guard, err := pathGuard(c)
	if err != nil {
		return err
	}

	var req ResendRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid resend input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Invalid resend input", err.Error())
	}

	out, err := h.authUC.ResendChallenge(c.Request().Context(), guard, req.ChallengeToken)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, ChallengeResponse{
		ChallengeToken: out.ChallengeToken,
		ExpiresAt:      out.ExpiresAt,
		Channel:        out.Channel,
	})
}

func pathGuard(c echo.Context) (entity.Guard, error) {
	guard, ok := entity.ParseGuard(c.Param("guard"))
	if !ok {
		return "", domainerrors.ErrUnknownGuard
	}

	return guard, nil
}
