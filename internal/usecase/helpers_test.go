package usecase_test

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/gobudget/internal/adapter/repository/memory"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/infrastructure/clock"
	"github.com/iho/gobudget/internal/infrastructure/metrics"
	"github.com/iho/gobudget/internal/usecase"
)

// Wednesday, so five days remain in a Monday-based week.
var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type fixture struct {
	uc      *usecase.BudgetUseCase
	clock   *clock.Fixed
	store   *memory.Store
	metrics *metrics.Metrics
	cfg     usecase.BudgetConfig
}

// newFixture builds a budget persisted to an in-memory store.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewFixed(testNow)
	m := metrics.New(prometheus.NewRegistry())
	cfg := usecase.BudgetConfig{
		Clock:            clk,
		IDGen:            &sequentialIDs{},
		TxManager:        memory.NewTxManager(store),
		StreamRepo:       memory.NewStreamRepository(store),
		DistributionRepo: memory.NewDistributionRepository(store),
		CategoryRepo:     memory.NewCategoryRepository(store),
		ExpenseRepo:      memory.NewExpenseRepository(store),
		Metrics:          m,
	}

	return &fixture{
		uc:      usecase.NewBudgetUseCase(cfg),
		clock:   clk,
		store:   store,
		metrics: m,
		cfg:     cfg,
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "want %s, got %s", want, got)
}

func (f *fixture) addCategory(t *testing.T, input usecase.AddCategoryInput) *domain.BudgetCategory {
	t.Helper()
	if input.Bucket == "" {
		input.Bucket = domain.BucketSpending
	}
	c, err := f.uc.AddCategory(context.Background(), input)
	require.NoError(t, err)
	return c
}

func (f *fixture) spend(t *testing.T, categoryID, amount string) *usecase.ExpenseResult {
	t.Helper()
	result, err := f.uc.AddExpense(context.Background(), usecase.AddExpenseInput{
		CategoryID: categoryID,
		Amount:     money(amount),
	})
	require.NoError(t, err)
	return result
}

func collect(seq iter.Seq[domain.ExpenseEntry]) []domain.ExpenseEntry {
	var out []domain.ExpenseEntry
	for e := range seq {
		out = append(out, e)
	}
	return out
}
