package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders placed",
		},
	)

	// OrderStatusUpdatesTotal counts effective status changes by target status
	OrderStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "Total number of order status changes",
		},
		[]string{"status"},
	)

	// NotificationsTotal counts delivery outcomes (sent, failed, dropped, skipped)
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Order status notifications by result",
		},
		[]string{"result"},
	)

	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_queue_depth",
			Help: "Notifications waiting for a worker",
		},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of calls failed through a circuit breaker",
		},
		[]string{"circuit_name"},
	)

	EventsPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_publish_failures_total",
			Help: "Order events that could not be published",
		},
		[]string{"type"},
	)
)

// Middleware records request count and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo write the response so the status below is final
				c.Error(err)
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			method := c.Request().Method

			RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(c.Response().Status)).Inc()
			RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
