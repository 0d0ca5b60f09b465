package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/notification"
)

// LogTransport only logs. Used in development.
type LogTransport struct {
	log zerolog.Logger
}

func NewLogTransport(log zerolog.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(_ context.Context, msg notification.Message) error {
	t.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("mail (log transport)")
	return nil
}
