package handler

import (
	"log/slog"
	"net/http"

	"storehub/internal/delivery/api/middleware"
	"storehub/internal/delivery/api/response"
	"storehub/internal/domain/entity"
	"storehub/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	OrderUC usecase.OrderUsecase
	Logger  *slog.Logger
}

// OrderHandler serves order creation.
type OrderHandler struct {
	orderUC usecase.OrderUsecase
	logger  *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler.
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		orderUC: params.OrderUC,
		logger:  params.Logger,
	}
}

// OrderItemRequest is one line of CreateOrderRequest.
type OrderItemRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,lte=100000"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0,lte=100000000000"`
}

// CreateOrderRequest is the body of POST /:guard/stores/:storeID/orders.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customer_name" validate:"max=255"`
	PaymentStatus string             `json:"payment_status" validate:"omitempty,oneof=unpaid paid refunded"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,max=500,dive"`
}

// CreateOrder handles POST /:guard/stores/:storeID/orders
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	storeID, err := uuidParam(c, middleware.StoreIDParam)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Invalid order input", err.Error())
	}

	input := usecase.CreateOrderInput{
		StoreID:       storeID,
		CustomerName:  req.CustomerName,
		PaymentStatus: entity.PaymentStatus(req.PaymentStatus),
		Items:         make([]usecase.CreateOrderItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, usecase.CreateOrderItemInput{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := h.orderUC.CreateOrder(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, order)
}
