package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/middleware"
	"github.com/pratyek/grocery-app/internal/usecase"
)

type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type createProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// Reads are public; writes need authMW followed by adminMW.
func (h *ProductHandler) RegisterRoutes(api *echo.Group, authMW, adminMW echo.MiddlewareFunc) {
	api.GET("/products", h.list)
	api.GET("/products/:id", h.detail)
	api.POST("/products", h.create, authMW, adminMW)
	api.DELETE("/products/:id", h.delete, authMW, adminMW)
}

func (h *ProductHandler) list(c echo.Context) error {
	items, err := h.uc.List(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, usecase.NewNotFoundError("Product not found"))
	}

	p, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	p, err := h.uc.Create(c.Request().Context(), middleware.ActorFromContext(c), usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, usecase.NewNotFoundError("Product not found"))
	}

	if err := h.uc.Delete(c.Request().Context(), middleware.ActorFromContext(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}
