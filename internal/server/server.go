package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/config"
	"github.com/pratyek/grocery-app/internal/metrics"
	"github.com/pratyek/grocery-app/internal/middleware"
)

// Server owns the echo instance and its lifecycle.
type Server struct {
	e   *echo.Echo
	cfg config.Config
	log zerolog.Logger
}

func New(cfg config.Config, log zerolog.Logger, h Handlers, tokens middleware.TokenResolver) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Idempotency-Key"},
		AllowCredentials: true,
	}))
	e.Use(withLogger(log))
	e.Use(middleware.RequestLogger(log))
	e.Use(metrics.Middleware())

	registerRoutes(e, cfg, h, tokens)

	return &Server{e: e, cfg: cfg, log: log}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start blocks until the listener stops. http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	addr := ":" + s.cfg.Port
	s.log.Info().Str("addr", addr).Msg("server listening")
	if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// withLogger puts the logger in the request context so zerolog.Ctx works
// below the handlers.
func withLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(log.WithContext(req.Context())))
			return next(c)
		}
	}
}

type healthResponse struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Time    time.Time `json:"time"`
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Service: "grocery-api", Time: time.Now().UTC()})
}
