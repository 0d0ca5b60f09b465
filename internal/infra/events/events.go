// Package events publishes order lifecycle events to Kafka and to the admin
// live feed.
package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/metrics"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

type Event struct {
	Type       string          `json:"type"`
	OrderID    int64           `json:"orderId"`
	OrderRef   string          `json:"orderRef"`
	UserID     int64           `json:"userId"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"totalAmount"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Fanout hands each event to every publisher and keeps going on failure.
// The first error is returned after all publishers ran.
type Fanout struct {
	publishers []Publisher
	log        zerolog.Logger
}

func NewFanout(log zerolog.Logger, publishers ...Publisher) *Fanout {
	return &Fanout{publishers: publishers, log: log}
}

func (f *Fanout) Publish(ctx context.Context, e Event) error {
	var first error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, e); err != nil {
			metrics.EventsPublishFailures.WithLabelValues(e.Type).Inc()
			f.log.Warn().Err(err).Str("type", e.Type).Str("order_ref", e.OrderRef).Msg("publish order event failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
