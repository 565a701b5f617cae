package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
)

// WeeklyTracker is the weekly view over tracked categories. It is computed
// on every read, so toggling tracking is visible on the next call.
type WeeklyTracker struct {
	registry *CategoryRegistry
	clock    Clock
	metrics  *metrics.Metrics
}

func newWeeklyTracker(registry *CategoryRegistry, clock Clock, metrics *metrics.Metrics) *WeeklyTracker {
	return &WeeklyTracker{
		registry: registry,
		clock:    clock,
		metrics:  metrics,
	}
}

// ListTracked returns tracked categories in creation order with what is
// safe to spend today.
func (w *WeeklyTracker) ListTracked() []domain.WeeklyStatus {
	days := w.clock.DaysRemainingInWeek()

	var statuses []domain.WeeklyStatus
	for _, c := range w.registry.snapshot() {
		if !c.IsTracked {
			continue
		}
		statuses = append(statuses, weeklyStatus(c, days))
	}
	return statuses
}

// ResetWeek zeroes weekly spend for all categories, tracked or not.
func (w *WeeklyTracker) ResetWeek(ctx context.Context) ([]domain.WeeklyStatus, error) {
	ids := w.registry.ids()
	unlock := w.registry.locks.Lock(ids...)
	defer unlock()

	now := w.clock.Now()
	uow := newUnitOfWork(w.registry.store)

	for _, id := range ids {
		current, ok := w.registry.lookup(id)
		if !ok {
			continue
		}

		next := *current
		next.WeeklySpent = decimal.Zero
		next.WeekStart = now
		next.UpdatedAt = now

		previous := *current
		uow.Apply(func() { *current = next }, func() { *current = previous })
		w.registry.stageSave(uow, &next)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	if w.metrics != nil {
		w.metrics.WeekResets.Inc()
	}

	days := w.clock.DaysRemainingInWeek()
	var statuses []domain.WeeklyStatus
	for _, id := range ids {
		if c, ok := w.registry.lookup(id); ok && c.IsTracked {
			statuses = append(statuses, weeklyStatus(c, days))
		}
	}
	return statuses, nil
}

// recordSpend adds amount to weekly spend when the category is tracked and
// reports whether it did. Only the expense ledger calls it, with the
// category's lock held.
func (w *WeeklyTracker) recordSpend(uow *unitOfWork, c *domain.BudgetCategory, amount decimal.Decimal) bool {
	if !c.IsTracked {
		return false
	}

	uow.Apply(
		func() { c.WeeklySpent = c.WeeklySpent.Add(amount) },
		func() { c.WeeklySpent = c.WeeklySpent.Sub(amount) },
	)
	return true
}

func weeklyStatus(c *domain.BudgetCategory, days int) domain.WeeklyStatus {
	if days < 1 {
		days = 1
	}
	return domain.WeeklyStatus{
		CategoryID:       c.ID,
		Name:             c.Name,
		Bucket:           c.Bucket,
		WeeklyLimit:      c.WeeklyLimit,
		WeeklySpent:      c.WeeklySpent,
		SafeToSpendToday: c.SafeToSpendToday(days),
		DaysRemaining:    days,
	}
}
