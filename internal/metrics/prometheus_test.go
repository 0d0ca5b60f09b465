package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/products/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/api/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	okBefore := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/api/products/:id", "204"))
	errBefore := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/api/boom", "418"))

	for _, path := range []string{"/api/products/1", "/api/products/2", "/api/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, okBefore+2, testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/api/products/:id", "204")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/api/boom", "418")))
}
