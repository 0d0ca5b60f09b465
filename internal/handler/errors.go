package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/usecase"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	ue, ok := usecase.AsError(err)
	if !ok {
		ue = usecase.NewInternalError(err).(*usecase.Error)
	}

	if ue.Kind == usecase.KindInternal {
		zerolog.Ctx(c.Request().Context()).Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
	}

	return c.JSON(ue.Status(), ErrorResponse{
		Error:   string(ue.Kind),
		Message: ue.Message,
		Field:   ue.Field,
	})
}

func badRequest(c echo.Context, message string) error {
	return writeError(c, usecase.NewValidationError("", message))
}

// pathID parses a positive int64 path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c echo.Context, name string) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
