package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/api/dto"
	httptransport "github.com/spec-kit/messaging-service/internal/api/http"
	"github.com/spec-kit/messaging-service/internal/api/http/handlers"
	"github.com/spec-kit/messaging-service/internal/auth"
	"github.com/spec-kit/messaging-service/internal/config"
	"github.com/spec-kit/messaging-service/internal/events"
	"github.com/spec-kit/messaging-service/internal/observability"
	"github.com/spec-kit/messaging-service/internal/persistence"
	"github.com/spec-kit/messaging-service/internal/repository"
	"github.com/spec-kit/messaging-service/internal/service"
	"github.com/spec-kit/messaging-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := newStore(pg, logger)
	dispatcher := events.NewInMemoryDispatcher()

	var broadcaster service.Broadcaster
	if redis.Enabled() {
		broadcaster = redis
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, broadcaster, logger, cfg.Notification), logger)

	draftService := service.NewDraftService(service.DraftDependencies{Store: store, Dispatcher: dispatcher, Logger: logger})
	messageService := service.NewMessageService(service.MessageDependencies{Store: store, Dispatcher: dispatcher, Logger: logger})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	links := dto.NewLinkBuilder(cfg.API.Prefix)
	routes := httptransport.RouteConfig{
		Prefix:   cfg.API.Prefix,
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Drafts:   handlers.NewDraftsHandler(draftService, links),
		Messages: handlers.NewMessagesHandler(messageService, links),
		Logger:   logger,
	}
	if cfg.Auth.Enabled {
		tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTLMinutes)
		routes.AuthMiddleware = auth.NewAuthMiddleware(tokens)
	}
	if cfg.Idempotency.Enabled && redis.Enabled() {
		routes.ResponseCache = persistence.NewIdempotencyStore(redis)
		routes.IdempotencyTTL = cfg.Idempotency.TTL()
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newStore(pg *persistence.Postgres, logger *zap.Logger) repository.Store {
	if pg.Enabled() {
		return repository.NewPostgresStore(pg.PoolHandle())
	}
	logger.Warn("no database configured; drafts and messages are kept in memory")
	return repository.NewMemoryStore()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
