package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"storehub/internal/delivery/api/middleware"
	"storehub/internal/delivery/api/response"
	deliverycontext "storehub/internal/delivery/context"
	"storehub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// StoreHandlerParams holds dependencies for StoreHandler, injected by Fx.
type StoreHandlerParams struct {
	fx.In

	StoreUC usecase.StoreUsecase
	Logger  *slog.Logger
}

// StoreHandler serves store administration.
type StoreHandler struct {
	storeUC usecase.StoreUsecase
	logger  *slog.Logger
}

// NewStoreHandler is the constructor for StoreHandler.
func NewStoreHandler(params StoreHandlerParams) *StoreHandler {
	return &StoreHandler{
		storeUC: params.StoreUC,
		logger:  params.Logger,
	}
}

// StoreResponse is the public view of a store.
type StoreResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Address     string    `json:"address,omitempty"`
	Currency    string    `json:"currency"`
}

// UpdateStaffPermissionsRequest is the body of PUT .../staff/:staffID/permissions.
type UpdateStaffPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,dive,required"`
}

// GetStore handles GET /:guard/stores/:storeID
func (h *StoreHandler) GetStore(c echo.Context) error {
	storeID, err := uuidParam(c, middleware.StoreIDParam)
	if err != nil {
		return err
	}

	store, err := h.storeUC.GetStore(c.Request().Context(), storeID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, StoreResponse{
		ID:          store.ID,
		Name:        store.Name,
		PhoneNumber: store.PhoneNumber,
		Address:     store.Address,
		Currency:    store.Currency,
	})
}

// RemoveOwner handles DELETE /:guard/stores/:storeID/owners/:accountID
func (h *StoreHandler) RemoveOwner(c echo.Context) error {
	storeID, err := uuidParam(c, middleware.StoreIDParam)
	if err != nil {
		return err
	}
	accountID, err := uuidParam(c, "accountID")
	if err != nil {
		return err
	}

	if err := h.storeUC.RemoveOwner(c.Request().Context(), storeID, accountID); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateStaffPermissions handles PUT /:guard/stores/:storeID/staff/:staffID/permissions
func (h *StoreHandler) UpdateStaffPermissions(c echo.Context) error {
	storeID, err := uuidParam(c, middleware.StoreIDParam)
	if err != nil {
		return err
	}
	staffID, err := uuidParam(c, "staffID")
	if err != nil {
		return err
	}

	var req UpdateStaffPermissionsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid permissions input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Invalid permissions input", err.Error())
	}

	permissions, err := h.storeUC.UpdateStaffPermissions(c.Request().Context(), storeID, staffID, req.Permissions)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	keys := permissions.Strings()
	sort.Strings(keys)

	deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Debug("Staff permissions replaced",
		slog.String("staff_id", staffID.String()), slog.Int("count", len(keys)))

	return response.Success(c, http.StatusOK, map[string]any{"permissions": keys})
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}

	return id, nil
}
