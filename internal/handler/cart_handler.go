package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pratyek/grocery-app/internal/middleware"
	"github.com/pratyek/grocery-app/internal/usecase"
)

type CartHandler struct {
	carts  usecase.CartService
	orders *usecase.OrderUsecase
}

func NewCartHandler(carts usecase.CartService, orders *usecase.OrderUsecase) *CartHandler {
	return &CartHandler{carts: carts, orders: orders}
}

type addCartItemRequest struct {
	ProductID int64 `json:"productId"`
}

type changeQuantityRequest struct {
	Delta int64 `json:"delta"`
}

type checkoutRequest struct {
	DeliveryDetails usecase.DeliveryDetails `json:"deliveryDetails"`
}

// cartMW identifies the cart (session cookie or login, depending on the
// cart mode); checkoutMW must also authenticate the buyer.
func (h *CartHandler) RegisterRoutes(api *echo.Group, cartMW, checkoutMW []echo.MiddlewareFunc) {
	g := api.Group("/cart")

	g.GET("", h.get, cartMW...)
	g.DELETE("", h.clear, cartMW...)
	g.POST("/items", h.addItem, cartMW...)
	g.PATCH("/items/:productId", h.changeQuantity, cartMW...)
	g.DELETE("/items/:productId", h.removeItem, cartMW...)
	g.POST("/checkout", h.checkout, checkoutMW...)
}

func cartOwner(c echo.Context) usecase.CartOwner {
	return usecase.CartOwner{
		SessionID: middleware.CartSessionFromContext(c),
		UserID:    middleware.ActorFromContext(c).UserID,
	}
}

func (h *CartHandler) get(c echo.Context) error {
	view, err := h.carts.Get(c.Request().Context(), cartOwner(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req addCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	view, err := h.carts.AddItem(c.Request().Context(), cartOwner(c), req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) changeQuantity(c echo.Context) error {
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "invalid product id")
	}
	var req changeQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	view, err := h.carts.ChangeQuantity(c.Request().Context(), cartOwner(c), productID, req.Delta)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	productID, ok := pathID(c, "productId")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	view, err := h.carts.RemoveItem(c.Request().Context(), cartOwner(c), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) clear(c echo.Context) error {
	view, err := h.carts.Clear(c.Request().Context(), cartOwner(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	order, err := h.orders.Checkout(c.Request().Context(), middleware.ActorFromContext(c), cartOwner(c), usecase.CheckoutInput{
		Delivery:       req.DeliveryDetails,
		IdempotencyKey: c.Request().Header.Get(idempotencyHeader),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, orderCreatedResponse{Message: "Order placed successfully", Order: order})
}
