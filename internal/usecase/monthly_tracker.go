package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
)

// MonthlyTracker is the monthly view: goal, spent this month and last
// month's total per category.
type MonthlyTracker struct {
	registry *CategoryRegistry
	metrics  *metrics.Metrics
}

func newMonthlyTracker(registry *CategoryRegistry, metrics *metrics.Metrics) *MonthlyTracker {
	return &MonthlyTracker{
		registry: registry,
		metrics:  metrics,
	}
}

// RolloverInput represents input for closing a month.
type RolloverInput struct {
	// ResetGoals zeroes every goal; goals carry over otherwise.
	ResetGoals bool
}

// SetGoal sets the category's goal for this month.
func (m *MonthlyTracker) SetGoal(ctx context.Context, categoryID string, goal decimal.Decimal) (*domain.BudgetCategory, error) {
	if err := domain.ValidateGoal(goal); err != nil {
		return nil, err
	}

	return m.registry.mutate(ctx, categoryID, func(c *domain.BudgetCategory) error {
		c.ThisMonth.Goal = goal
		return nil
	})
}

// ToggleTracking flips whether the category appears in the weekly view and
// returns the updated category. Weekly spend is kept across toggles.
func (m *MonthlyTracker) ToggleTracking(ctx context.Context, categoryID string) (*domain.BudgetCategory, error) {
	c, err := m.registry.mutate(ctx, categoryID, func(c *domain.BudgetCategory) error {
		c.IsTracked = !c.IsTracked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.TrackingToggles.WithLabelValues(trackingLabel(c.IsTracked)).Inc()
	}

	return c, nil
}

// SetTracking sets the tracking flag. Setting the current value is a no-op
// write, not an error.
func (m *MonthlyTracker) SetTracking(ctx context.Context, categoryID string, tracked bool) (*domain.BudgetCategory, error) {
	return m.registry.mutate(ctx, categoryID, func(c *domain.BudgetCategory) error {
		c.IsTracked = tracked
		return nil
	})
}

// ListCategories returns every category in creation order.
func (m *MonthlyTracker) ListCategories() []*domain.BudgetCategory {
	return m.registry.snapshot()
}

// Rollover moves this month's spend into last month for every category and
// starts a new month. It locks all categories for the duration.
func (m *MonthlyTracker) Rollover(ctx context.Context, input RolloverInput) ([]*domain.BudgetCategory, error) {
	ids := m.registry.ids()
	unlock := m.registry.locks.Lock(ids...)
	defer unlock()

	now := m.registry.clock.Now()
	uow := newUnitOfWork(m.registry.store)

	for _, id := range ids {
		current, ok := m.registry.lookup(id)
		if !ok {
			continue
		}

		next := *current
		next.LastMonth = current.ThisMonth.Spent
		next.ThisMonth.Spent = decimal.Zero
		if input.ResetGoals {
			next.ThisMonth.Goal = decimal.Zero
		}
		next.MonthStart = now
		next.UpdatedAt = now

		previous := *current
		uow.Apply(func() { *current = next }, func() { *current = previous })
		m.registry.stageSave(uow, &next)
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.Rollovers.Inc()
	}

	return m.copies(ids), nil
}

// recordSpend adds amount to this month's spend. Only the expense ledger
// calls it, with the category's lock held.
func (m *MonthlyTracker) recordSpend(uow *unitOfWork, c *domain.BudgetCategory, amount decimal.Decimal) {
	uow.Apply(
		func() { c.ThisMonth.Spent = c.ThisMonth.Spent.Add(amount) },
		func() { c.ThisMonth.Spent = c.ThisMonth.Spent.Sub(amount) },
	)
}

// copies reads categories whose locks the caller already holds.
func (m *MonthlyTracker) copies(ids []string) []*domain.BudgetCategory {
	out := make([]*domain.BudgetCategory, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.registry.lookup(id); ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

func trackingLabel(tracked bool) string {
	if tracked {
		return "tracked"
	}
	return "untracked"
}
