package usecase

import (
	"context"
	"iter"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
)

// ExpenseLedger records expenses and is the only write path for spent
// totals in both the monthly and the weekly view.
type ExpenseLedger struct {
	mu      sync.RWMutex
	entries []domain.ExpenseEntry

	registry    *CategoryRegistry
	monthly     *MonthlyTracker
	weekly      *WeeklyTracker
	store       *persister
	expenseRepo ExpenseRepository
	idGen       IDGenerator
	clock       Clock
	metrics     *metrics.Metrics
}

func newExpenseLedger(
	registry *CategoryRegistry,
	monthly *MonthlyTracker,
	weekly *WeeklyTracker,
	store *persister,
	expenseRepo ExpenseRepository,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
) *ExpenseLedger {
	return &ExpenseLedger{
		registry:    registry,
		monthly:     monthly,
		weekly:      weekly,
		store:       store,
		expenseRepo: expenseRepo,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// AddExpenseInput represents input for recording an expense.
type AddExpenseInput struct {
	CategoryID string
	Amount     decimal.Decimal
	Note       string
}

// ExpenseResult is the recorded entry and the category after the update.
type ExpenseResult struct {
	Entry    domain.ExpenseEntry
	Category *domain.BudgetCategory
	// Weekly reports whether the weekly aggregate was updated.
	Weekly bool
}

// AddExpense appends an entry and updates the monthly and weekly totals as
// one unit. Readers see either none or all of it.
func (l *ExpenseLedger) AddExpense(ctx context.Context, input AddExpenseInput) (*ExpenseResult, error) {
	// 1. Validate before taking any locks
	if err := domain.ValidateExpenseAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	unlock := l.registry.locks.Lock(input.CategoryID)
	defer unlock()

	c, ok := l.registry.lookup(input.CategoryID)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	now := l.clock.Now()
	entry := domain.ExpenseEntry{
		ID:         l.idGen.Generate(),
		CategoryID: c.ID,
		Amount:     input.Amount,
		Note:       input.Note,
		Timestamp:  now,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	uow := newUnitOfWork(l.store)

	// 2. Append the immutable entry
	previous := l.entries
	uow.Apply(func() { l.insert(entry) }, func() { l.entries = previous[:len(previous):len(previous)] })

	// 3. Monthly aggregate
	previousUpdatedAt := c.UpdatedAt
	uow.Apply(func() { c.UpdatedAt = now }, func() { c.UpdatedAt = previousUpdatedAt })
	l.monthly.recordSpend(uow, c, input.Amount)

	// 4. Weekly aggregate, skipped for untracked categories
	weekly := l.weekly.recordSpend(uow, c, input.Amount)

	if l.expenseRepo != nil {
		record := entry
		uow.Persist(func(ctx context.Context, tx Transaction) error {
			return l.expenseRepo.Create(ctx, tx, &record)
		})
	}
	l.registry.stageSave(uow, c)

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.ExpensesRecorded.WithLabelValues(trackingLabel(weekly)).Inc()
		l.metrics.ExpenseAmount.Observe(input.Amount.InexactFloat64())
	}

	out := *c
	return &ExpenseResult{Entry: entry, Category: &out, Weekly: weekly}, nil
}

// ListExpenses returns entries ordered by timestamp ascending. The sequence
// is lazy and may be ranged over again; each pass reads the ledger as it is
// when the pass starts.
func (l *ExpenseLedger) ListExpenses(filter domain.ExpenseFilter) iter.Seq[domain.ExpenseEntry] {
	return func(yield func(domain.ExpenseEntry) bool) {
		entries := l.view()

		start := 0
		if filter.Since != nil {
			since := *filter.Since
			start = sort.Search(len(entries), func(i int) bool {
				return !entries[i].Timestamp.Before(since)
			})
		}

		for _, e := range entries[start:] {
			if !filter.Matches(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// CheckConsistency compares every category's aggregates with the ledger.
// Monthly spend must equal the ledger sum since the month start; weekly
// spend may be lower than the ledger sum since the week start when
// tracking was off for part of the week, never higher.
func (l *ExpenseLedger) CheckConsistency() *domain.ConsistencyReport {
	ids := l.registry.ids()
	unlock := l.registry.locks.Lock(ids...)
	defer unlock()

	entries := l.view()
	report := &domain.ConsistencyReport{
		CheckedAt: l.clock.Now(),
		Entries:   len(entries),
	}

	for _, id := range ids {
		c, ok := l.registry.lookup(id)
		if !ok {
			continue
		}
		report.Categories++

		month, week := decimal.Zero, decimal.Zero
		for _, e := range entries {
			if e.CategoryID != id {
				continue
			}
			if !e.Timestamp.Before(c.MonthStart) {
				month = month.Add(e.Amount)
			}
			if !e.Timestamp.Before(c.WeekStart) {
				week = week.Add(e.Amount)
			}
		}

		if !month.Equal(c.ThisMonth.Spent) || c.WeeklySpent.GreaterThan(week) {
			report.Issues = append(report.Issues, domain.ConsistencyIssue{
				CategoryID:    id,
				RecordedMonth: c.ThisMonth.Spent,
				LedgerMonth:   month,
				RecordedWeek:  c.WeeklySpent,
				LedgerWeek:    week,
			})
		}
	}

	return report
}

func (l *ExpenseLedger) view() []domain.ExpenseEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.entries
}

// insert keeps entries sorted by timestamp, equal timestamps in arrival
// order. Inserting before the tail copies the slice so that views handed
// out earlier never change. Callers hold l.mu.
func (l *ExpenseLedger) insert(e domain.ExpenseEntry) {
	n := len(l.entries)
	if n == 0 || !e.Timestamp.Before(l.entries[n-1].Timestamp) {
		l.entries = append(l.entries, e)
		return
	}

	i := sort.Search(n, func(i int) bool {
		return e.Timestamp.Before(l.entries[i].Timestamp)
	})

	entries := make([]domain.ExpenseEntry, 0, n+1)
	entries = append(entries, l.entries[:i]...)
	entries = append(entries, e)
	l.entries = append(entries, l.entries[i:]...)
}

// load replaces the ledger with replayed entries.
func (l *ExpenseLedger) load(entries []domain.ExpenseEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = entries
}
