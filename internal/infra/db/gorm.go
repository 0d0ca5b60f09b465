package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pratyek/grocery-app/internal/config"
	"github.com/pratyek/grocery-app/internal/domain/model"
)

const connectAttempts = 10

// DSN prefers DATABASE_URL and otherwise builds one from POSTGRES_*.
func DSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
}

// Connect opens the database, retrying while postgres is still starting.
func Connect(cfg config.Config, log zerolog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var lastErr error
	for i := 1; i <= connectAttempts; i++ {
		gdb, err := gorm.Open(postgres.Open(DSN(cfg)), gormCfg)
		if err == nil {
			sqlDB, sqlErr := gdb.DB()
			if sqlErr == nil {
				if sqlErr = sqlDB.Ping(); sqlErr == nil {
					log.Info().Str("host", cfg.PostgresHost).Msg("connected to database")
					return gdb, nil
				}
			}
			err = sqlErr
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", i).Msg("database not ready, retrying")
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, lastErr)
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
