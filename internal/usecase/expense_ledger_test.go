package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
	"github.com/iho/gobudget/internal/usecase/mocks"
)

// diningWithHistory returns a tracked "Dining & Drinks" category with
// thisMonth.spent=285.45 and weeklySpent=68.45.
func diningWithHistory(t *testing.T, f *fixture) *domain.BudgetCategory {
	t.Helper()
	ctx := context.Background()

	c := f.addCategory(t, usecase.AddCategoryInput{
		Name:        "Dining & Drinks",
		Goal:        money("300"),
		WeeklyLimit: money("116.28"),
	})

	// Spend before tracking starts counts toward the month only.
	f.spend(t, c.ID, "217.00")
	_, err := f.uc.ToggleTracking(ctx, c.ID)
	require.NoError(t, err)
	f.spend(t, c.ID, "68.45")

	c, err = f.uc.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	requireMoney(t, "285.45", c.ThisMonth.Spent)
	requireMoney(t, "68.45", c.WeeklySpent)
	return c
}

func TestExpenseLedger_DiningScenario(t *testing.T) {
	f := newFixture(t)
	c := diningWithHistory(t, f)

	result := f.spend(t, c.ID, "25.50")
	assert.True(t, result.Weekly)
	requireMoney(t, "310.95", result.Category.ThisMonth.Spent)
	requireMoney(t, "93.95", result.Category.WeeklySpent)
	requireMoney(t, "25.50", result.Entry.Amount)
	assert.Equal(t, c.ID, result.Entry.CategoryID)

	weekly, err := f.uc.ListTracked(context.Background())
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	// (116.28 - 93.95) / 5 days
	requireMoney(t, "4.47", weekly[0].SafeToSpendToday)
	assert.Equal(t, 5, weekly[0].DaysRemaining)
}

func TestExpenseLedger_UntrackedSkipsWeekly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := diningWithHistory(t, f)

	toggled, err := f.uc.ToggleTracking(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsTracked)

	weekly, err := f.uc.ListTracked(ctx)
	require.NoError(t, err)
	assert.Empty(t, weekly, "untracked category must leave the weekly view immediately")

	result := f.spend(t, c.ID, "25.50")
	assert.False(t, result.Weekly)
	requireMoney(t, "310.95", result.Category.ThisMonth.Spent)
	requireMoney(t, "68.45", result.Category.WeeklySpent)

	// 217.00 before tracking started, 25.50 after it stopped
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.ExpensesRecorded.WithLabelValues("untracked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExpensesRecorded.WithLabelValues("tracked")))
}

func TestExpenseLedger_AddExpenseValidation(t *testing.T) {
	tests := []struct {
		name       string
		categoryID string
		amount     string
		note       string
		wantErr    error
	}{
		{name: "zero amount", amount: "0", wantErr: domain.ErrInvalidExpense},
		{name: "negative amount", amount: "-5", wantErr: domain.ErrInvalidExpense},
		{name: "invalid amount wins over unknown category", categoryID: "missing", amount: "0", wantErr: domain.ErrInvalidExpense},
		{name: "unknown category", categoryID: "missing", amount: "5", wantErr: domain.ErrCategoryNotFound},
		{name: "note too long", amount: "5", note: strings.Repeat("x", domain.MaxNoteLength+1), wantErr: domain.ErrInvalidExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			c := f.addCategory(t, usecase.AddCategoryInput{Name: "Groceries", IsTracked: true, WeeklyLimit: money("100")})

			id := tt.categoryID
			if id == "" {
				id = c.ID
			}

			_, err := f.uc.AddExpense(ctx, usecase.AddExpenseInput{CategoryID: id, Amount: money(tt.amount), Note: tt.note})
			require.ErrorIs(t, err, tt.wantErr)

			got, err := f.uc.GetCategory(ctx, c.ID)
			require.NoError(t, err)
			requireMoney(t, "0", got.ThisMonth.Spent)
			requireMoney(t, "0", got.WeeklySpent)
			assert.Empty(t, collect(f.uc.ListExpenses(ctx, domain.ExpenseFilter{})))
		})
	}
}

func TestExpenseLedger_ListExpenses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	food := f.addCategory(t, usecase.AddCategoryInput{Name: "Food"})
	fuel := f.addCategory(t, usecase.AddCategoryInput{Name: "Fuel"})

	f.spend(t, food.ID, "10")
	f.clock.Advance(time.Hour)
	f.spend(t, fuel.ID, "40")
	f.clock.Advance(time.Hour)
	since := f.clock.Now()
	f.spend(t, food.ID, "12")

	all := collect(f.uc.ListExpenses(ctx, domain.ExpenseFilter{}))
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.Before(all[i-1].Timestamp), "entries must be ordered by timestamp")
	}

	onlyFood := collect(f.uc.ListExpenses(ctx, domain.ExpenseFilter{CategoryID: food.ID}))
	require.Len(t, onlyFood, 2)
	requireMoney(t, "10", onlyFood[0].Amount)
	requireMoney(t, "12", onlyFood[1].Amount)

	recent := collect(f.uc.ListExpenses(ctx, domain.ExpenseFilter{Since: &since}))
	require.Len(t, recent, 1)
	requireMoney(t, "12", recent[0].Amount)

	none := collect(f.uc.ListExpenses(ctx, domain.ExpenseFilter{CategoryID: fuel.ID, Since: &since}))
	assert.Empty(t, none)
}

func TestExpenseLedger_ListExpensesIsLazyAndRestartable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addCategory(t, usecase.AddCategoryInput{Name: "Coffee"})

	seq := f.uc.ListExpenses(ctx, domain.ExpenseFilter{})
	assert.Empty(t, collect(seq))

	for _, amount := range []string{"3.10", "3.20", "3.30"} {
		f.spend(t, c.ID, amount)
		f.clock.Advance(time.Minute)
	}

	// The same sequence observes the ledger as of each pass.
	assert.Len(t, collect(seq), 3)
	assert.Len(t, collect(seq), 3)

	var first []domain.ExpenseEntry
	for e := range seq {
		first = append(first, e)
		break
	}
	require.Len(t, first, 1)
	requireMoney(t, "3.10", first[0].Amount)

	// An expense recorded during a pass does not show up in that pass.
	var seen int
	for range seq {
		if seen == 0 {
			f.spend(t, c.ID, "9.99")
		}
		seen++
	}
	assert.Equal(t, 3, seen)
	assert.Len(t, collect(seq), 4)
}

func TestExpenseLedger_PersistenceFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	errDB := errors.New("connection reset")

	tx := mocks.NewMockTransaction(ctrl)
	tx.EXPECT().Commit(gomock.Any()).Return(nil).AnyTimes()
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	txManager := mocks.NewMockTransactionManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil).AnyTimes()

	categoryRepo := mocks.NewMockCategoryRepository(ctrl)
	categoryRepo.EXPECT().Save(gomock.Any(), tx, gomock.Any()).Return(nil).AnyTimes()

	expenseRepo := mocks.NewMockExpenseRepository(ctrl)
	expenseRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(errDB)

	f := newFixture(t)
	f.cfg.TxManager = txManager
	f.cfg.CategoryRepo = categoryRepo
	f.cfg.ExpenseRepo = expenseRepo
	uc := usecase.NewBudgetUseCase(f.cfg)

	c, err := uc.AddCategory(ctx, usecase.AddCategoryInput{
		Name:        "Dining",
		Bucket:      domain.BucketSpending,
		WeeklyLimit: money("100"),
		IsTracked:   true,
	})
	require.NoError(t, err)

	_, err = uc.AddExpense(ctx, usecase.AddExpenseInput{CategoryID: c.ID, Amount: money("25.50")})
	require.ErrorIs(t, err, errDB)

	got, err := uc.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	requireMoney(t, "0", got.ThisMonth.Spent)
	requireMoney(t, "0", got.WeeklySpent)
	assert.True(t, got.UpdatedAt.Equal(c.UpdatedAt))
	assert.Empty(t, collect(uc.ListExpenses(ctx, domain.ExpenseFilter{})))

	report, err := uc.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CommandErrors.WithLabelValues("add_expense", "internal")))
}

func TestExpenseLedger_ConcurrentExpenses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.addCategory(t, usecase.AddCategoryInput{Name: "A", IsTracked: true, WeeklyLimit: money("500")})
	b := f.addCategory(t, usecase.AddCategoryInput{Name: "B"})

	const workers = 20
	const perWorker = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := a.ID
			if i%2 == 1 {
				target = b.ID
			}
			for j := 0; j < perWorker; j++ {
				_, err := f.uc.AddExpense(ctx, usecase.AddExpenseInput{CategoryID: target, Amount: money("1.25")})
				assert.NoError(t, err)
			}
		}(i)
	}

	// Readers run alongside writers.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, _ = f.uc.ListTracked(ctx)
			_ = collect(f.uc.ListExpenses(ctx, domain.ExpenseFilter{CategoryID: a.ID}))
		}
	}()

	wg.Wait()

	gotA, err := f.uc.GetCategory(ctx, a.ID)
	require.NoError(t, err)
	requireMoney(t, "125", gotA.ThisMonth.Spent)
	requireMoney(t, "125", gotA.WeeklySpent)

	gotB, err := f.uc.GetCategory(ctx, b.ID)
	require.NoError(t, err)
	requireMoney(t, "125", gotB.ThisMonth.Spent)
	requireMoney(t, "0", gotB.WeeklySpent)

	assert.Len(t, collect(f.uc.ListExpenses(ctx, domain.ExpenseFilter{})), workers*perWorker)

	report, err := f.uc.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "issues: %+v", report.Issues)
	assert.Equal(t, workers*perWorker, report.Entries)

	stored, err := f.cfg.ExpenseRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, workers*perWorker)
}
