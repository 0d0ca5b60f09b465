package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pratyek/grocery-app/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		PostgresHost:     "db",
		PostgresPort:     5433,
		PostgresUser:     "grocer",
		PostgresPassword: "secret",
		PostgresDB:       "grocery",
		PostgresSSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5433 user=grocer password=secret dbname=grocery sslmode=disable", DSN(cfg))

	cfg.DatabaseURL = "postgres://u:p@h:5432/d"
	assert.Equal(t, "postgres://u:p@h:5432/d", DSN(cfg))
}
