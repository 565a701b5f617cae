package main

import (
	"context"
	"errors"
	"fmt"
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

	httpAdapter "github.com/iho/gobudget/internal/adapter/http"
	"github.com/iho/gobudget/internal/adapter/http/handler"
	"github.com/iho/gobudget/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/gobudget/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gobudget/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobudget/internal/adapter/repository/redis"
	"github.com/iho/gobudget/internal/infrastructure/clock"
	"github.com/iho/gobudget/internal/infrastructure/config"
	"github.com/iho/gobudget/internal/infrastructure/idgen"
	"github.com/iho/gobudget/internal/infrastructure/logger"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/infrastructure/postgres"
	"github.com/iho/gobudget/internal/infrastructure/redis"
	"github.com/iho/gobudget/internal/infrastructure/scheduler"
	"github.com/iho/gobudget/internal/usecase"
)

func main() {
	// Load configuration
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
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	weekStart, err := clock.ParseWeekday(cfg.WeekStart)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	budgetCfg := usecase.BudgetConfig{
		Clock:   clock.NewSystem(loc, weekStart),
		IDGen:   idgen.NewULIDGenerator(),
		Metrics: m,
	}

	// Storage
	var pool *pgxpool.Pool
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if cfg.MigrateOnStart {
			if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		pool, err = postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		cancel()
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		log.Info().Msg("connected to postgres")

		budgetCfg.TxManager = postgresRepo.NewTxManager(pool)
		budgetCfg.Retrier = postgresRepo.NewRetrier(log)
		budgetCfg.StreamRepo = postgresRepo.NewStreamRepository(pool)
		budgetCfg.DistributionRepo = postgresRepo.NewDistributionRepository(pool)
		budgetCfg.CategoryRepo = postgresRepo.NewCategoryRepository(pool)
		budgetCfg.ExpenseRepo = postgresRepo.NewExpenseRepository(pool)
	default:
		store := memoryRepo.NewStore()
		budgetCfg.TxManager = memoryRepo.NewTxManager(store)
		budgetCfg.StreamRepo = memoryRepo.NewStreamRepository(store)
		budgetCfg.DistributionRepo = memoryRepo.NewDistributionRepository(store)
		budgetCfg.CategoryRepo = memoryRepo.NewCategoryRepository(store)
		budgetCfg.ExpenseRepo = memoryRepo.NewExpenseRepository(store)
		log.Warn().Msg("using in-memory storage; state is lost on restart")
	}

	// Redis (optional)
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.ClientConfig{URL: cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	budget := usecase.NewBudgetUseCase(budgetCfg)
	if err := budget.Restore(ctx); err != nil {
		return fmt.Errorf("restore budget: %w", err)
	}
	streams, _ := budget.ListStreams(ctx)
	categories, _ := budget.ListCategories(ctx)
	log.Info().Int("streams", len(streams)).Int("categories", len(categories)).Msg("budget restored")

	// Scheduler (optional)
	if cfg.SchedulerEnabled {
		var locker scheduler.Locker
		if redisClient != nil {
			locker = redisRepo.NewJobLock(redisClient, jobOwner())
		}
		sched, err := scheduler.New(budget, scheduler.Config{
			RolloverSpec:  cfg.RolloverCron,
			ResetWeekSpec: cfg.ResetWeekCron,
			Location:      loc,
		}, locker, m, log)
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				log.Warn().Err(err).Msg("scheduler did not stop cleanly")
			}
		}()
		log.Info().Str("rollover", cfg.RolloverCron).Str("reset_week", cfg.ResetWeekCron).Msg("scheduler started")
	}

	// Router
	routerCfg := httpAdapter.NewBudgetRouterConfig(budget, handler.NewHealthHandler(pool, redisClient))
	routerCfg.Metrics = m
	routerCfg.Gatherer = registry
	routerCfg.Logger = log
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		routerCfg.IdempotencyTTL = cfg.IdempotencyTTL
	}
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		go limiter.RunCleanup(ctx, 10*time.Minute, time.Hour)
		routerCfg.RateLimiter = limiter
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// jobOwner identifies this replica in job locks.
func jobOwner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
