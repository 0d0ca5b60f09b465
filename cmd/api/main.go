package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/config"
	"github.com/pratyek/grocery-app/internal/domain/orderref"
	"github.com/pratyek/grocery-app/internal/handler"
	"github.com/pratyek/grocery-app/internal/infra/cache"
	"github.com/pratyek/grocery-app/internal/infra/db"
	"github.com/pratyek/grocery-app/internal/infra/events"
	"github.com/pratyek/grocery-app/internal/infra/mail"
	infraRepo "github.com/pratyek/grocery-app/internal/infra/repository"
	"github.com/pratyek/grocery-app/internal/logger"
	"github.com/pratyek/grocery-app/internal/notification"
	repo "github.com/pratyek/grocery-app/internal/repository"
	"github.com/pratyek/grocery-app/internal/seed"
	"github.com/pratyek/grocery-app/internal/server"
	"github.com/pratyek/grocery-app/internal/usecase"
)

const (
	bcryptCost      = 12
	shutdownTimeout = 15 * time.Second
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.GoEnv)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	hasher := auth.NewBcryptPasswordHasher(bcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, auth.SystemClock{})

	if cfg.SeedSampleProducts {
		if _, err := seed.Products(ctx, productRepo, component(log, "seed")); err != nil {
			log.Error().Err(err).Msg("seed products failed")
		}
	}
	if _, err := seed.Admin(ctx, userRepo, hasher, seed.AdminAccount{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, component(log, "seed")); err != nil {
		log.Error().Err(err).Msg("bootstrap admin failed")
	}

	// Redis is optional; without it carts and idempotency keys live in memory
	var (
		rdb       *redis.Client
		cartStore repo.CartSessionStore
		idem      repo.IdempotencyStore
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		cartStore = cache.NewRedisCartStore(rdb, cfg.CartSessionTTL)
		idem = cache.NewRedisIdempotency(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis")
	} else {
		cartStore = cache.NewMemoryCartStore(cfg.CartSessionTTL)
		idem = cache.NewMemoryIdempotency()
	}

	// events
	hub := events.NewHub(cfg.FEURL, component(log, "ws"))
	publishers := []events.Publisher{hub}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publishers = append(publishers, kafkaPub)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing order events to kafka")
	}
	publisher := events.NewFanout(component(log, "events"), publishers...)

	// notifications
	mailLog := component(log, "mail")
	dispatcher := notification.NewDispatcher(mail.NewBreakerTransport("mail", mailTransport(cfg, mailLog), mailLog), component(log, "notification"))
	var (
		notifier usecase.Notifier = dispatcher
		queue    *notification.Queue
	)
	if cfg.NotifyMode == config.NotifyModeAsync {
		queue = notification.NewQueue(dispatcher, notification.QueueConfig{
			Workers:     cfg.NotifyWorkers,
			Size:        cfg.NotifyQueueSize,
			MaxAttempts: cfg.NotifyMaxAttempts,
			Backoff:     cfg.NotifyBackoff,
			MaxBackoff:  cfg.NotifyMaxBackoff,
			SendTimeout: cfg.NotifySendTimeout,
		}, component(log, "notification"))
		queue.Start()
		notifier = queue
	}

	// usecases
	var carts usecase.CartService
	if cfg.CartMode == config.CartModeServer {
		carts = usecase.NewPersistentCartService(txm)
	} else {
		carts = usecase.NewSessionCartService(cartStore, productRepo)
	}

	authUC := usecase.NewAuthUsecase(userRepo, hasher, tokens, cfg.AllowAdminSignup, component(log, "auth"))
	productUC := usecase.NewProductUsecase(productRepo, txm, component(log, "catalog"))
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, userRepo, carts, orderref.NewUUIDGenerator(), idem, publisher, component(log, "order"))
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, userRepo, notifier, publisher, cfg.StrictOrderTransitions, component(log, "order"))
	auditUC := usecase.NewAuditLogUsecase(infraRepo.NewAuditLogGormRepository(gormDB))

	srv := server.New(cfg, log, server.Handlers{
		Auth:       handler.NewAuthHandler(authUC, cfg.CookieSecure),
		Products:   handler.NewProductHandler(productUC),
		Cart:       handler.NewCartHandler(carts, orderUC),
		Orders:     handler.NewOrderHandler(orderUC, adminOrderUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC, hub),
		AdminAudit: handler.NewAdminAuditHandler(auditUC),
	}, tokens)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if queue != nil {
		if err := queue.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("notification queue: %w", err))
		}
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if runErr != nil {
		errs = append([]error{runErr}, errs...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Info().Msg("server stopped cleanly")
	return nil
}

func component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func mailTransport(cfg config.Config, log zerolog.Logger) notification.Transport {
	switch cfg.MailTransport {
	case config.MailTransportSMTP:
		return mail.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword, cfg.MailFrom)
	case config.MailTransportHTTP:
		return mail.NewHTTPTransport(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom, cfg.NotifySendTimeout)
	default:
		return mail.NewLogTransport(log)
	}
}
