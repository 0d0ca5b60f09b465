package mail

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/pratyek/grocery-app/internal/metrics"
	"github.com/pratyek/grocery-app/internal/notification"
)

// BreakerTransport stops calling a failing mail backend for a while.
type BreakerTransport struct {
	next notification.Transport
	cb   *gobreaker.CircuitBreaker
	name string
}

func NewBreakerTransport(name string, next notification.Transport, log zerolog.Logger) *BreakerTransport {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(stateValue(to))
			log.Warn().
				Str("circuit", cbName).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &BreakerTransport{next: next, cb: cb, name: name}
}

func (t *BreakerTransport) Send(ctx context.Context, msg notification.Message) error {
	_, err := t.cb.Execute(func() (interface{}, error) {
		return nil, t.next.Send(ctx, msg)
	})
	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(t.name).Inc()
	}
	return err
}

func (t *BreakerTransport) State() gobreaker.State {
	return t.cb.State()
}

// 0=closed, 1=open, 2=half-open
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
