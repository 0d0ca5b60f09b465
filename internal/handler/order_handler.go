package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/middleware"
	"github.com/pratyek/grocery-app/internal/usecase"
)

// double-submit guard, sent as a header so it stays out of the body
const idempotencyHeader = "X-Idempotency-Key"

type OrderHandler struct {
	uc    *usecase.OrderUsecase
	admin *usecase.AdminOrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, admin *usecase.AdminOrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, admin: admin}
}

type orderLineRequest struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

// totalAmount from the client is accepted and ignored.
type createOrderRequest struct {
	Products        []orderLineRequest      `json:"products"`
	DeliveryDetails usecase.DeliveryDetails `json:"deliveryDetails"`
	TotalAmount     *decimal.Decimal        `json:"totalAmount,omitempty"`
}

type ordersResponse struct {
	Orders []usecase.OrderOutput `json:"orders"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderCreatedResponse struct {
	Message string              `json:"message"`
	Order   usecase.OrderOutput `json:"order"`
}

type statusUpdatedResponse struct {
	Message               string              `json:"message"`
	Order                 usecase.OrderOutput `json:"order"`
	NotificationAttempted bool                `json:"notificationAttempted"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, authMW, adminMW echo.MiddlewareFunc) {
	g := api.Group("/orders", authMW)

	g.POST("", h.create)
	g.GET("", h.list)
	g.PUT("/:id/status", h.updateStatus, adminMW)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	lines := make([]usecase.OrderLineInput, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, usecase.OrderLineInput{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  p.Quantity,
		})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), middleware.ActorFromContext(c), usecase.CreateOrderInput{
		Lines:          lines,
		Delivery:       req.DeliveryDetails,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, orderCreatedResponse{Message: "Order placed successfully", Order: out})
}

func (h *OrderHandler) list(c echo.Context) error {
	in, ok := listInput(c)
	if !ok {
		return badRequest(c, "limit and offset must be numbers")
	}

	out, err := h.uc.ListOrders(c.Request().Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: out})
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, usecase.NewNotFoundError("Order not found"))
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.admin.UpdateStatus(c.Request().Context(), middleware.ActorFromContext(c), id, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, statusUpdatedResponse{
		Message:               "Order status updated successfully",
		Order:                 out.Order,
		NotificationAttempted: out.NotificationAttempted,
	})
}

func listInput(c echo.Context) (usecase.ListOrdersInput, bool) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return usecase.ListOrdersInput{}, false
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return usecase.ListOrdersInput{}, false
	}
	return usecase.ListOrdersInput{Status: c.QueryParam("status"), Limit: limit, Offset: offset}, true
}
