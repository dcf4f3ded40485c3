// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storehub/internal/delivery/api/middleware"
	"storehub/internal/delivery/api/router/handler"
	"storehub/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	TwoFactorHandler *handler.TwoFactorHandler
	StoreHandler     *handler.StoreHandler
	OrderHandler     *handler.OrderHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	twoFactorHandler *handler.TwoFactorHandler
	storeHandler     *handler.StoreHandler
	orderHandler     *handler.OrderHandler
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		twoFactorHandler: params.TwoFactorHandler,
		storeHandler:     params.StoreHandler,
		orderHandler:     params.OrderHandler,
		authMiddleware:   params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Login and challenge routes; the guard is part of the path
	authGroup := e.Group("/auth/:guard")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/two-factor/challenge", r.authHandler.VerifyChallenge)
		authGroup.POST("/two-factor/resend", r.authHandler.ResendChallenge)
	}

	for _, guard := range []entity.Guard{entity.GuardAdmin, entity.GuardStoreOwner, entity.GuardStoreStaff, entity.GuardUser} {
		guardGroup := e.Group("/"+guard.PathSegment(), r.authMiddleware.Authenticate(guard))

		// Setup stays reachable while the session is flagged setup-pending
		guardGroup.GET("/two-factor/setup", r.twoFactorHandler.BeginSetup)
		guardGroup.POST("/two-factor/setup", r.twoFactorHandler.ConfirmSetup)

		if guard == entity.GuardUser {
			continue
		}

		stores := guardGroup.Group("/stores/:storeID", r.authMiddleware.RequireTwoFactorSetup)
		{
			stores.GET("", r.storeHandler.GetStore, r.authMiddleware.RequirePermission(entity.PermViewStore))
			stores.POST("/orders", r.orderHandler.CreateOrder, r.authMiddleware.RequirePermission(entity.PermCreateOrders))
			stores.DELETE("/owners/:accountID", r.storeHandler.RemoveOwner, r.authMiddleware.RequirePermission(entity.PermEditStore))
			stores.PUT("/staff/:staffID/permissions", r.storeHandler.UpdateStaffPermissions, r.authMiddleware.RequirePermission(entity.PermManageStaff))
		}
	}
}
