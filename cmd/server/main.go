// Command server runs the retailcore HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"retailcore/internal/domain/auth"
	"retailcore/internal/infrastructure/config"
	v1 "retailcore/internal/infrastructure/http/v1"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx, "load config", "error", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction,
	})
	if err != nil {
		logger.Fatal(ctx, "init logger", "error", err)
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.WithLogger(ctx, log)

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			logger.Fatal(ctx, "run migrations", "error", err)
		}
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.StatementTimeout = cfg.StatementTimeout

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		logger.Fatal(ctx, "connect to database", "error", err)
	}
	defer pool.Close()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(ctx, pool.Pool)
			}
		}
	}()

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWTSecret,
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.JWTExpiryDuration,
	})

	var rateLimiter *limiter.Limiter
	if cfg.RateLimitPerMinute > 0 {
		rateLimiter = limiter.New(memory.NewStore(), limiter.Rate{
			Period: time.Minute,
			Limit:  cfg.RateLimitPerMinute,
		})
	}

	router, err := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		JWTValidator: jwtService,
		RateLimiter:  rateLimiter,
		IsProduction: cfg.IsProduction,
	})
	if err != nil {
		logger.Fatal(ctx, "build router", "error", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "graceful shutdown failed", "error", err)
	}
	logger.Info(ctx, "server stopped")
}
