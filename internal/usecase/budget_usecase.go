package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
)

// BudgetConfig holds the collaborators of a budget. Repositories and the
// transaction manager may be nil for a purely in-memory budget.
type BudgetConfig struct {
	Clock            Clock
	IDGen            IDGenerator
	TxManager        TransactionManager
	Retrier          Retrier
	StreamRepo       StreamRepository
	DistributionRepo DistributionRepository
	CategoryRepo     CategoryRepository
	ExpenseRepo      ExpenseRepository
	Metrics          *metrics.Metrics
}

// BudgetUseCase is the command surface of one budget.
type BudgetUseCase struct {
	Streams       *StreamStore
	Distributions *DistributionEngine
	Categories    *CategoryRegistry
	Monthly       *MonthlyTracker
	Weekly        *WeeklyTracker
	Ledger        *ExpenseLedger

	cfg   BudgetConfig
	store *persister
}

// NewBudgetUseCase wires the budget components.
func NewBudgetUseCase(cfg BudgetConfig) *BudgetUseCase {
	store := newPersister(cfg.TxManager, cfg.Retrier)

	streams := newStreamStore(store, cfg.StreamRepo, cfg.IDGen, cfg.Clock)
	distributions := newDistributionEngine(streams, store, cfg.DistributionRepo, cfg.Clock)
	categories := newCategoryRegistry(store, cfg.CategoryRepo, cfg.IDGen, cfg.Clock)
	monthly := newMonthlyTracker(categories, cfg.Metrics)
	weekly := newWeeklyTracker(categories, cfg.Clock, cfg.Metrics)
	ledger := newExpenseLedger(categories, monthly, weekly, store, cfg.ExpenseRepo, cfg.IDGen, cfg.Clock, cfg.Metrics)

	return &BudgetUseCase{
		Streams:       streams,
		Distributions: distributions,
		Categories:    categories,
		Monthly:       monthly,
		Weekly:        weekly,
		Ledger:        ledger,
		cfg:           cfg,
		store:         store,
	}
}

// AddStream creates a new income stream.
func (uc *BudgetUseCase) AddStream(ctx context.Context, input AddStreamInput) (*domain.IncomeStream, error) {
	stream, err := uc.Streams.AddStream(ctx, input)
	return stream, uc.observe("add_stream", err)
}

// UpdateStream renames a stream or edits its amount.
func (uc *BudgetUseCase) UpdateStream(ctx context.Context, input UpdateStreamInput) (*domain.IncomeStream, error) {
	stream, err := uc.Streams.UpdateStream(ctx, input)
	return stream, uc.observe("update_stream", err)
}

// DeleteStream removes a stream together with its distribution.
func (uc *BudgetUseCase) DeleteStream(ctx context.Context, id string) error {
	unlock := uc.Streams.locks.Lock(id)
	defer unlock()

	uow := newUnitOfWork(uc.store)
	uc.Distributions.stageRemove(uow, id)
	if err := uc.Streams.stageRemove(uow, id); err != nil {
		uow.Rollback()
		return uc.observe("delete_stream", err)
	}

	return uc.observe("delete_stream", uow.Commit(ctx))
}

// GetStream retrieves a stream by ID.
func (uc *BudgetUseCase) GetStream(ctx context.Context, id string) (*domain.IncomeStream, error) {
	return uc.Streams.GetStream(id)
}

// ListStreams lists streams in creation order.
func (uc *BudgetUseCase) ListStreams(ctx context.Context) ([]*domain.IncomeStream, error) {
	return uc.Streams.ListStreams(), nil
}

// SetDistribution replaces a stream's bucket percentages.
func (uc *BudgetUseCase) SetDistribution(ctx context.Context, streamID string, percentages map[domain.Bucket]decimal.Decimal) (*domain.Distribution, error) {
	d, err := uc.Distributions.SetDistribution(ctx, streamID, percentages)
	return d, uc.observe("set_distribution", err)
}

// GetDistribution returns a stream's distribution.
func (uc *BudgetUseCase) GetDistribution(ctx context.Context, streamID string) (*domain.Distribution, error) {
	return uc.Distributions.GetDistribution(streamID)
}

// ComputeAllocations splits one stream into buckets.
func (uc *BudgetUseCase) ComputeAllocations(ctx context.Context, streamID string) (*domain.Allocation, error) {
	return uc.Distributions.ComputeAllocations(streamID)
}

// ComputeTotals sums allocations of all streams per bucket.
func (uc *BudgetUseCase) ComputeTotals(ctx context.Context) (*AllocationTotals, error) {
	return uc.Distributions.ComputeTotals(), nil
}

// AddCategory creates a new budget category.
func (uc *BudgetUseCase) AddCategory(ctx context.Context, input AddCategoryInput) (*domain.BudgetCategory, error) {
	c, err := uc.Categories.AddCategory(ctx, input)
	return c, uc.observe("add_category", err)
}

// UpdateCategory edits a category's name, bucket or weekly limit.
func (uc *BudgetUseCase) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*domain.BudgetCategory, error) {
	c, err := uc.Categories.UpdateCategory(ctx, input)
	return c, uc.observe("update_category", err)
}

// GetCategory retrieves a category by ID.
func (uc *BudgetUseCase) GetCategory(ctx context.Context, id string) (*domain.BudgetCategory, error) {
	return uc.Categories.GetCategory(id)
}

// ListCategories returns the monthly view.
func (uc *BudgetUseCase) ListCategories(ctx context.Context) ([]*domain.BudgetCategory, error) {
	return uc.Monthly.ListCategories(), nil
}

// SetGoal sets a category's monthly goal.
func (uc *BudgetUseCase) SetGoal(ctx context.Context, categoryID string, goal decimal.Decimal) (*domain.BudgetCategory, error) {
	c, err := uc.Monthly.SetGoal(ctx, categoryID, goal)
	return c, uc.observe("set_goal", err)
}

// ToggleTracking flips a category between the tracked and untracked state.
func (uc *BudgetUseCase) ToggleTracking(ctx context.Context, categoryID string) (*domain.BudgetCategory, error) {
	c, err := uc.Monthly.ToggleTracking(ctx, categoryID)
	return c, uc.observe("toggle_tracking", err)
}

// SetTracking sets the tracking flag to an explicit value.
func (uc *BudgetUseCase) SetTracking(ctx context.Context, categoryID string, tracked bool) (*domain.BudgetCategory, error) {
	c, err := uc.Monthly.SetTracking(ctx, categoryID, tracked)
	return c, uc.observe("set_tracking", err)
}

// ListTracked returns the weekly view.
func (uc *BudgetUseCase) ListTracked(ctx context.Context) ([]domain.WeeklyStatus, error) {
	return uc.Weekly.ListTracked(), nil
}

// AddExpense records spend against a category.
func (uc *BudgetUseCase) AddExpense(ctx context.Context, input AddExpenseInput) (*ExpenseResult, error) {
	result, err := uc.Ledger.AddExpense(ctx, input)
	return result, uc.observe("add_expense", err)
}

// ListExpenses returns the ledger as a lazy sequence.
func (uc *BudgetUseCase) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) iter.Seq[domain.ExpenseEntry] {
	return uc.Ledger.ListExpenses(filter)
}

// Rollover closes the current month.
func (uc *BudgetUseCase) Rollover(ctx context.Context, input RolloverInput) ([]*domain.BudgetCategory, error) {
	categories, err := uc.Monthly.Rollover(ctx, input)
	return categories, uc.observe("rollover", err)
}

// ResetWeek starts a new week.
func (uc *BudgetUseCase) ResetWeek(ctx context.Context) ([]domain.WeeklyStatus, error) {
	statuses, err := uc.Weekly.ResetWeek(ctx)
	return statuses, uc.observe("reset_week", err)
}

// CheckConsistency verifies aggregates against the ledger.
func (uc *BudgetUseCase) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	return uc.Ledger.CheckConsistency(), nil
}

// Restore replays persisted records into an empty budget. Aggregates are
// taken from the stored categories as they were last committed.
func (uc *BudgetUseCase) Restore(ctx context.Context) error {
	if uc.cfg.StreamRepo != nil {
		streams, err := uc.cfg.StreamRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("replay streams: %w", err)
		}
		for _, s := range streams {
			uc.Streams.insert(s)
		}
	}

	if uc.cfg.DistributionRepo != nil {
		distributions, err := uc.cfg.DistributionRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("replay distributions: %w", err)
		}
		for _, d := range distributions {
			if _, ok := uc.Streams.lookup(d.StreamID); !ok {
				return fmt.Errorf("replay distribution %s: %w", d.StreamID, domain.ErrStreamNotFound)
			}
			if err := d.Validate(); err != nil {
				return fmt.Errorf("replay distribution %s: %w", d.StreamID, err)
			}
			uc.Distributions.put(d.StreamID, d)
		}
	}

	if uc.cfg.CategoryRepo != nil {
		categories, err := uc.cfg.CategoryRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("replay categories: %w", err)
		}
		for _, c := range categories {
			uc.Categories.insert(c)
		}
	}

	if uc.cfg.ExpenseRepo != nil {
		records, err := uc.cfg.ExpenseRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("replay expenses: %w", err)
		}
		entries := make([]domain.ExpenseEntry, 0, len(records))
		for _, e := range records {
			if _, ok := uc.Categories.lookup(e.CategoryID); !ok {
				return fmt.Errorf("replay expense %s: %w", e.ID, domain.ErrCategoryNotFound)
			}
			entries = append(entries, *e)
		}
		uc.Ledger.load(entries)
	}

	return nil
}

func (uc *BudgetUseCase) observe(command string, err error) error {
	if err != nil && uc.cfg.Metrics != nil {
		uc.cfg.Metrics.CommandErrors.WithLabelValues(command, errorKind(err)).Inc()
	}
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidDistribution):
		return "invalid_distribution"
	case errors.Is(err, domain.ErrInvalidExpense):
		return "invalid_expense"
	case errors.Is(err, domain.ErrCategoryNotFound):
		return "category_not_found"
	case errors.Is(err, domain.ErrStreamNotFound):
		return "stream_not_found"
	case domain.IsValidation(err):
		return "validation"
	default:
		return "internal"
	}
}
