package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pratyek/grocery-app/internal/middleware"
	"github.com/pratyek/grocery-app/internal/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OrderFeed serves the admin websocket.
type OrderFeed interface {
	ServeWS(c echo.Context) error
}

type AdminOrderHandler struct {
	uc   *usecase.AdminOrderUsecase
	feed OrderFeed
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, feed OrderFeed) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, feed: feed}
}

func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, authMW, adminMW echo.MiddlewareFunc) {
	g := api.Group("/admin/orders", authMW, adminMW)

	g.GET("", h.list)
	g.GET("/export", h.export)
	g.GET("/feed", h.feed.ServeWS)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	in, ok := listInput(c)
	if !ok {
		return badRequest(c, "limit and offset must be numbers")
	}

	out, err := h.uc.List(c.Request().Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: out})
}

func (h *AdminOrderHandler) export(c echo.Context) error {
	// buffered so a failure can still be sent as JSON
	var buf bytes.Buffer
	if err := h.uc.Export(c.Request().Context(), middleware.ActorFromContext(c), c.QueryParam("status"), &buf); err != nil {
		return writeError(c, err)
	}

	name := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
