package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/adapter/approval"
	httpAdapter "github.com/iho/gobank/internal/adapter/http"
	"github.com/iho/gobank/internal/adapter/http/handler"
	"github.com/iho/gobank/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gobank/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobank/internal/adapter/repository/redis"
	"github.com/iho/gobank/internal/infrastructure/config"
	"github.com/iho/gobank/internal/infrastructure/logger"
	"github.com/iho/gobank/internal/infrastructure/metrics"
	"github.com/iho/gobank/internal/infrastructure/postgres"
	"github.com/iho/gobank/internal/infrastructure/redis"
	"github.com/iho/gobank/internal/usecase"
)

const limiterIdleTTL = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx = log.WithContext(ctx)

	if cfg.MigrateOnStart {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	var redisClient *goredis.Client
	if cfg.CacheEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, cfg.DatabaseTimeout)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	router, err := newRouter(ctx, cfg, log, pool, redisClient, m, reg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")

	return nil
}

func newRouter(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	m *metrics.Metrics,
	reg *prometheus.Registry,
) (http.Handler, error) {
	isolation, err := postgresRepo.ParseIsolation(cfg.TransferIsolation)
	if err != nil {
		return nil, err
	}

	txManager := postgresRepo.NewTxManager(pool, isolation)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	ownerRepo := postgresRepo.NewOwnerRepository(pool)
	recordRepo := postgresRepo.NewRecordRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	approvalClient := approval.NewClient(approvalConfig(cfg), log)

	accountOpts := []usecase.AccountOption{usecase.WithAccountMetrics(m)}
	transferOpts := []usecase.TransferOption{
		usecase.WithRetrier(postgresRepo.NewRetrier(cfg.TransferMaxRetries)),
		usecase.WithTransferMetrics(m),
	}

	if redisClient != nil {
		cache := redisRepo.NewAccountCache(redisClient, cfg.CacheTTL)
		accountOpts = append(accountOpts, usecase.WithAccountCache(cache))
		transferOpts = append(transferOpts, usecase.WithTransferCache(cache))
	}

	transferCfg := cfg.TransferConfig()

	accountUC := usecase.NewAccountUseCase(accountRepo, ownerRepo, idGen, accountOpts...)
	transferUC := usecase.NewTransferUseCase(transferCfg, txManager, accountRepo, recordRepo, approvalClient, idGen, transferOpts...)
	ledgerUC := usecase.NewLedgerUseCase(transferCfg, accountRepo, recordRepo)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		TransferHandler: handler.NewTransferHandler(transferUC),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		Logger:          log,
		Metrics:         m,
		Gatherer:        reg,
	}

	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)
		go cleanupLimiters(ctx, routerCfg.RateLimiter, limiterIdleTTL)
	}

	log.Info().
		Str("daily_limit", transferCfg.DailyLimit.String()).
		Str("cross_owner_charge", transferCfg.CrossOwnerCharge.String()).
		Str("isolation", cfg.TransferIsolation).
		Bool("cache", redisClient != nil).
		Msg("transfer engine configured")

	return httpAdapter.NewRouter(routerCfg), nil
}

func approvalConfig(cfg *config.Config) approval.Config {
	return approval.Config{
		URL:              cfg.ApprovalURL,
		Timeout:          cfg.ApprovalTimeout,
		FailureThreshold: cfg.ApprovalBreakerFailures,
		OpenTimeout:      cfg.ApprovalBreakerTimeout,
	}
}

// cleanupLimiters drops idle per-client limiters until ctx is done.
func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(idle)
		}
	}
}
