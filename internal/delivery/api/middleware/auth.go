// Package middleware holds the guard, setup gate and permission middlewares of the API.
package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/domain/entity"
	domainerrors "storehub/internal/domain/errors"
	"storehub/internal/domain/policy"
	"storehub/internal/domain/service"
	"storehub/internal/infra/audit"
	"storehub/internal/infra/metrics"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// StoreIDParam is the path parameter RequirePermission scopes store actions to.
const StoreIDParam = "storeID"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	AuthUC       usecase.AuthUsecase
	Audit        *audit.Logger
	Logger       *slog.Logger
}

// AuthMiddleware authenticates guard sessions and authorizes actions.
type AuthMiddleware struct {
	tokenService service.TokenService
	authUC       usecase.AuthUsecase
	audit        *audit.Logger
	logger       *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: params.TokenService,
		authUC:       params.AuthUC,
		audit:        params.Audit,
		logger:       params.Logger,
	}
}

// Authenticate only accepts session tokens issued under guard. A valid token of
// another guard is treated as no token at all.
func (m *AuthMiddleware) Authenticate(guard entity.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				return domainerrors.ErrUnauthenticated
			}

			session, err := m.tokenService.ParseSession(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
					Debug("Rejected session token", slog.Any("error", err))

				return domainerrors.ErrUnauthenticated
			}

			if session.Principal.Guard != guard {
				return domainerrors.ErrUnauthenticated
			}

			principal, err := m.authUC.ResolvePrincipal(c.Request().Context(), session)
			if err != nil {
				return err
			}

			deliverycontext.SetAuth(c, session, principal)

			return next(c)
		}
	}
}

// RequireTwoFactorSetup blocks sessions that still have to finish two-factor setup.
// The setup routes are registered without it.
func (m *AuthMiddleware) RequireTwoFactorSetup(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := deliverycontext.GetSession(c)
		if !ok {
			return domainerrors.ErrUnauthenticated
		}
		if session.SetupPending {
			return domainerrors.ErrTwoFactorSetupRequired
		}

		return next(c)
	}
}

// RequirePermission evaluates action against the store named by the :storeID
// parameter. Denials are audited in full but answered generically.
func (m *AuthMiddleware) RequirePermission(action entity.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := deliverycontext.GetPrincipal(c)
			if !ok {
				return domainerrors.ErrUnauthenticated
			}

			resource := policy.Resource{}
			if raw := c.Param(StoreIDParam); raw != "" {
				storeID, err := uuid.Parse(raw)
				if err != nil {
					return m.deny(c, principal, action, raw)
				}
				resource = policy.ForStore(storeID)
			}

			if !policy.CanPerform(principal, action, resource) {
				return m.deny(c, principal, action, c.Param(StoreIDParam))
			}

			return next(c)
		}
	}
}

func (m *AuthMiddleware) deny(c echo.Context, principal *entity.Principal, action entity.Permission, resourceID string) error {
	m.audit.LogDenied(c.Request().Context(), principal, action, resourceID)
	metrics.ObserveDenial(principal.Guard.String(), action.String())

	return domainerrors.ErrAccessDenied
}
