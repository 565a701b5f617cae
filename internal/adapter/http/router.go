package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gobudget/internal/adapter/http/handler"
	"github.com/iho/gobudget/internal/adapter/http/middleware"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	StreamHandler   *handler.StreamHandler
	CategoryHandler *handler.CategoryHandler
	ExpenseHandler  *handler.ExpenseHandler
	PeriodHandler   *handler.PeriodHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Metrics, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Income streams and allocations
		r.Route("/streams", func(r chi.Router) {
			r.Post("/", cfg.StreamHandler.Create)
			r.Get("/", cfg.StreamHandler.List)
			r.Get("/{id}", cfg.StreamHandler.Get)
			r.Patch("/{id}", cfg.StreamHandler.Update)
			r.Delete("/{id}", cfg.StreamHandler.Delete)
			r.Put("/{id}/distribution", cfg.StreamHandler.SetDistribution)
			r.Get("/{id}/distribution", cfg.StreamHandler.GetDistribution)
			r.Get("/{id}/allocations", cfg.StreamHandler.Allocations)
		})
		r.Get("/allocations", cfg.StreamHandler.Totals)

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", cfg.CategoryHandler.Create)
			r.Get("/", cfg.CategoryHandler.List)
			r.Get("/{id}", cfg.CategoryHandler.Get)
			r.Patch("/{id}", cfg.CategoryHandler.Update)
			r.Put("/{id}/goal", cfg.CategoryHandler.SetGoal)
			r.Post("/{id}/toggle", cfg.CategoryHandler.Toggle)
			r.Put("/{id}/tracking", cfg.CategoryHandler.SetTracking)
		})
		r.Get("/weekly", cfg.PeriodHandler.Weekly)

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", cfg.ExpenseHandler.Create)
			r.Get("/", cfg.ExpenseHandler.List)
		})

		// Period boundaries
		r.Route("/periods", func(r chi.Router) {
			r.Post("/rollover", cfg.PeriodHandler.Rollover)
			r.Post("/reset-week", cfg.PeriodHandler.ResetWeek)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}

// NewBudgetRouterConfig wires every API handler to one budget service.
func NewBudgetRouterConfig(uc *usecase.BudgetUseCase, health *handler.HealthHandler) RouterConfig {
	return RouterConfig{
		StreamHandler:   handler.NewStreamHandler(uc),
		CategoryHandler: handler.NewCategoryHandler(uc),
		ExpenseHandler:  handler.NewExpenseHandler(uc),
		PeriodHandler:   handler.NewPeriodHandler(uc),
		LedgerHandler:   handler.NewLedgerHandler(uc),
		HealthHandler:   health,
		Logger:          zerolog.Nop(),
	}
}
