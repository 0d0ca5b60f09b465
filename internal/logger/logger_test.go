package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("debug", "prod", &buf)

	l.Info().Str("order_ref", "ORD-1").Msg("order created")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "order created", line["message"])
	assert.Equal(t, "ORD-1", line["order_ref"])
	assert.Equal(t, "grocery-api", line["service"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("chatty", "prod", &buf)

	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
