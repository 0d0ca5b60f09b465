package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/metrics"
)

type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// TransportError wraps a failed delivery. Callers only ever see it as a
// false result from Notify.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send notification: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Dispatcher sends synchronously, one message per call.
type Dispatcher struct {
	transport Transport
	log       zerolog.Logger
}

func NewDispatcher(transport Transport, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, log: log}
}

// Send renders and delivers without logging or counting the outcome.
func (d *Dispatcher) Send(ctx context.Context, sc StatusChange) error {
	msg, err := Render(sc)
	if err != nil {
		return err
	}
	if err := d.transport.Send(ctx, msg); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

func (d *Dispatcher) Notify(ctx context.Context, sc StatusChange) bool {
	if err := d.Send(ctx, sc); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("order_ref", sc.OrderRef).
			Str("status", sc.Status).
			Msg("status notification failed")
		return false
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	d.log.Info().Str("order_ref", sc.OrderRef).Str("status", sc.Status).Msg("status notification sent")
	return true
}
