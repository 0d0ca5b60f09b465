// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger in prod and a console logger otherwise.
// An unknown level falls back to info.
func New(level string, env string) zerolog.Logger {
	return newWithWriter(level, env, os.Stdout)
}

func newWithWriter(level string, env string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if env != "prod" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "grocery-api").Logger()
}
