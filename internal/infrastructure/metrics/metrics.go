package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Budget metrics
	ExpensesRecorded *prometheus.CounterVec
	ExpenseAmount    prometheus.Histogram
	TrackingToggles  *prometheus.CounterVec
	Rollovers        prometheus.Counter
	WeekResets       prometheus.Counter
	CommandErrors    *prometheus.CounterVec

	// Scheduler metrics
	SchedulerRuns *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting and idempotency metrics
	RateLimitHits      prometheus.Counter
	IdempotencyReplays prometheus.Counter
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Budget metrics
		ExpensesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_expenses_recorded_total",
				Help: "Total number of expenses recorded by weekly tracking state",
			},
			[]string{"weekly"},
		),
		ExpenseAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gobudget_expense_amount",
			Help:    "Expense amounts",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
		TrackingToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_tracking_toggles_total",
				Help: "Total tracking toggles by resulting state",
			},
			[]string{"state"},
		),
		Rollovers: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_month_rollovers_total",
			Help: "Total number of month rollovers",
		}),
		WeekResets: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_week_resets_total",
			Help: "Total number of week resets",
		}),
		CommandErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_command_errors_total",
				Help: "Total rejected or failed commands by command and error kind",
			},
			[]string{"command", "kind"},
		),

		// Scheduler metrics
		SchedulerRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_scheduler_runs_total",
				Help: "Total scheduled boundary runs",
			},
			[]string{"job", "status"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobudget_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobudget_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gobudget_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting and idempotency metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobudget_idempotency_replays_total",
			Help: "Total responses replayed for a repeated idempotency key",
		}),
	}
}
