package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pratyek/grocery-app/internal/config"
	"github.com/pratyek/grocery-app/internal/handler"
	"github.com/pratyek/grocery-app/internal/middleware"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Products   *handler.ProductHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
	AdminAudit *handler.AdminAuditHandler
}

func registerRoutes(e *echo.Echo, cfg config.Config, h Handlers, tokens middleware.TokenResolver) {
	e.GET("/health", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	authMW := middleware.AuthJWT(tokens)
	adminMW := middleware.AdminRoleGuard()
	limiter := middleware.AuthRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	h.Auth.RegisterRoutes(api, authMW, limiter)
	h.Products.RegisterRoutes(api, authMW, adminMW)
	h.Orders.RegisterRoutes(api, authMW, adminMW)
	h.AdminOrder.RegisterRoutes(api, authMW, adminMW)
	h.AdminAudit.RegisterRoutes(api, authMW, adminMW)

	// session carts are anonymous; server carts belong to the logged-in user
	var cartMW, checkoutMW []echo.MiddlewareFunc
	if cfg.CartMode == config.CartModeServer {
		cartMW = []echo.MiddlewareFunc{authMW}
		checkoutMW = []echo.MiddlewareFunc{authMW}
	} else {
		session := middleware.CartSession(cfg.CartSessionTTL, cfg.CookieSecure)
		cartMW = []echo.MiddlewareFunc{session, middleware.OptionalAuth(tokens)}
		checkoutMW = []echo.MiddlewareFunc{session, authMW}
	}
	h.Cart.RegisterRoutes(api, cartMW, checkoutMW)
}
