package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-wishlist-app/internal/adapter/api/rest"
	"go-wishlist-app/internal/adapter/cache/redis"
	"go-wishlist-app/internal/adapter/events/kafka"
	"go-wishlist-app/internal/adapter/gateway"
	repo "go-wishlist-app/internal/adapter/storage/postgres"
	"go-wishlist-app/internal/config"
	"go-wishlist-app/internal/core/domain/auth"
	"go-wishlist-app/internal/core/ports"
	"go-wishlist-app/internal/core/service"
	"go-wishlist-app/internal/observability"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Canceled on shutdown; ends event streams and background collectors.
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tpShutdown, err := observability.InitTracerProvider(ctx, "wishlist-service", cfg.OtelExporterEndpoint)
	if err != nil {
		logger.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tpShutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", "error", err)
		}
	}()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := repo.RunMigrations(ctx, dbPool, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	observability.StartDBStatsCollector(ctx, dbPool)

	redisClient := redis.NewClient(cfg.RedisAddr)
	defer redisClient.Close()

	catalogCache := observability.NewInstrumentedCache(redis.NewCatalogCache(redisClient, cfg.CatalogCacheTTL))
	sessions := redis.NewSessionStore(redisClient)

	// Remote store: postgres, timed, behind a circuit breaker.
	breakerCfg := gateway.DefaultBreakerConfig("wishlist-gateway")
	breakerCfg.FailureRatio = cfg.Breaker.FailureRatio
	breakerCfg.MinRequests = cfg.Breaker.MinRequests
	breakerCfg.Timeout = cfg.Breaker.OpenTimeout
	wishlistGateway := gateway.NewBreaker(
		observability.NewInstrumentedGateway(repo.NewWishlistRepository(dbPool)),
		breakerCfg,
		logger,
	)

	var publisher ports.EventPublisher = kafka.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("publishing wishlist events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()

	catalogSvc := service.NewCatalogService(repo.NewCatalogRepository(dbPool), catalogCache, logger)
	wishlistSvc := service.NewWishlistService(
		wishlistGateway,
		auth.ContextSession{},
		catalogSvc,
		publisher,
		logger,
		service.StoreOptions{RemoteTimeout: cfg.RemoteTimeout},
	)
	authSvc := service.NewAuthService(repo.NewUserRepository(dbPool), sessions, wishlistSvc, cfg.JWTSecret, cfg.SessionTTL)

	router := rest.NewRouter(
		rest.NewHandler(catalogSvc, logger),
		rest.NewAuthHandler(authSvc, logger),
		rest.NewWishlistHandler(wishlistSvc, logger),
		authSvc,
		logger,
		rest.Recovery(logger), rest.RequestID, rest.Logger(logger), observability.Middleware,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
