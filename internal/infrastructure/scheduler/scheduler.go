// Package scheduler triggers the month and week boundaries of a budget on
// cron schedules. The budget core never schedules itself.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/usecase"
)

const (
	JobRollover  = "rollover"
	JobResetWeek = "reset-week"

	defaultLockTTL = 5 * time.Minute
)

// PeriodService runs the period boundary commands.
type PeriodService interface {
	Rollover(ctx context.Context, input usecase.RolloverInput) ([]*domain.BudgetCategory, error)
	ResetWeek(ctx context.Context) ([]domain.WeeklyStatus, error)
}

// Locker keeps a job from running on more than one replica.
type Locker interface {
	Acquire(ctx context.Context, job string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, job string) error
}

// Config holds cron expressions for the period jobs.
type Config struct {
	RolloverSpec  string
	ResetWeekSpec string
	Location      *time.Location
	LockTTL       time.Duration
}

// Scheduler runs period jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	svc     PeriodService
	locker  Locker
	lockTTL time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a Scheduler. locker and m may be nil.
func New(svc PeriodService, cfg Config, locker Locker, m *metrics.Metrics, logger zerolog.Logger) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		svc:     svc,
		locker:  locker,
		lockTTL: ttl,
		metrics: m,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{JobRollover, cfg.RolloverSpec, s.RunRollover},
		{JobResetWeek, cfg.ResetWeekSpec, s.RunResetWeek},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		run := job.run
		if _, err := s.cron.AddFunc(job.spec, func() { _ = run(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", job.name, job.spec, err)
		}
	}

	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop stops scheduling and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunRollover closes the current month. Goals carry over.
func (s *Scheduler) RunRollover(ctx context.Context) error {
	return s.run(ctx, JobRollover, func(ctx context.Context) (int, error) {
		categories, err := s.svc.Rollover(ctx, usecase.RolloverInput{})
		return len(categories), err
	})
}

// RunResetWeek starts a new week.
func (s *Scheduler) RunResetWeek(ctx context.Context) error {
	return s.run(ctx, JobResetWeek, func(ctx context.Context) (int, error) {
		statuses, err := s.svc.ResetWeek(ctx)
		return len(statuses), err
	})
}

func (s *Scheduler) run(ctx context.Context, job string, fn func(ctx context.Context) (int, error)) error {
	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, job, s.lockTTL)
		if err != nil {
			s.record(job, "error")
			s.logger.Error().Err(err).Str("job", job).Msg("failed to acquire job lock")
			return err
		}
		if !acquired {
			s.record(job, "skipped")
			s.logger.Debug().Str("job", job).Msg("job running elsewhere, skipping")
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, job); err != nil {
				s.logger.Warn().Err(err).Str("job", job).Msg("failed to release job lock")
			}
		}()
	}

	start := time.Now()
	n, err := fn(ctx)
	if err != nil {
		s.record(job, "error")
		s.logger.Error().Err(err).Str("job", job).Msg("scheduled job failed")
		return err
	}

	s.record(job, "success")
	s.logger.Info().
		Str("job", job).
		Int("categories", n).
		Dur("duration", time.Since(start)).
		Msg("scheduled job completed")
	return nil
}

func (s *Scheduler) record(job, status string) {
	if s.metrics != nil {
		s.metrics.SchedulerRuns.WithLabelValues(job, status).Inc()
	}
}
