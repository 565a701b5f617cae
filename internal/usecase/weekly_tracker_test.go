package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gobudget/internal/usecase"
)

func TestWeeklyTracker_ListTracked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	groceries := f.addCategory(t, usecase.AddCategoryInput{Name: "Groceries", IsTracked: true, WeeklyLimit: money("116.28")})
	f.addCategory(t, usecase.AddCategoryInput{Name: "Rent", WeeklyLimit: money("0")})
	fun := f.addCategory(t, usecase.AddCategoryInput{Name: "Fun", IsTracked: true, WeeklyLimit: money("20")})

	f.spend(t, groceries.ID, "68.45")
	f.spend(t, fun.ID, "35")

	// Friday: three days remain.
	f.clock.Advance(48 * time.Hour)

	statuses, err := f.uc.ListTracked(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, groceries.ID, statuses[0].CategoryID)
	assert.Equal(t, 3, statuses[0].DaysRemaining)
	requireMoney(t, "15.94", statuses[0].SafeToSpendToday)

	assert.Equal(t, fun.ID, statuses[1].CategoryID)
	requireMoney(t, "0", statuses[1].SafeToSpendToday)
}

func TestWeeklyTracker_TrackingResumesAccumulation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addCategory(t, usecase.AddCategoryInput{Name: "Snacks", IsTracked: true, WeeklyLimit: money("30")})

	f.spend(t, c.ID, "5")
	_, err := f.uc.ToggleTracking(ctx, c.ID)
	require.NoError(t, err)
	f.spend(t, c.ID, "7")
	_, err = f.uc.ToggleTracking(ctx, c.ID)
	require.NoError(t, err)
	f.spend(t, c.ID, "2")

	statuses, err := f.uc.ListTracked(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	requireMoney(t, "7", statuses[0].WeeklySpent)

	got, err := f.uc.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	requireMoney(t, "14", got.ThisMonth.Spent)

	// Weekly spend below the ledger sum is expected after a gap in tracking.
	report, err := f.uc.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestWeeklyTracker_ResetWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tracked := f.addCategory(t, usecase.AddCategoryInput{Name: "Dining", IsTracked: true, WeeklyLimit: money("116.28")})
	untracked := f.addCategory(t, usecase.AddCategoryInput{Name: "Books", WeeklyLimit: money("10")})
	f.spend(t, tracked.ID, "50")
	_, err := f.uc.SetTracking(ctx, untracked.ID, true)
	require.NoError(t, err)
	f.spend(t, untracked.ID, "4")
	_, err = f.uc.SetTracking(ctx, untracked.ID, false)
	require.NoError(t, err)

	// Next Monday: seven days remain.
	f.clock.Set(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))

	statuses, err := f.uc.ResetWeek(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, tracked.ID, statuses[0].CategoryID)
	requireMoney(t, "0", statuses[0].WeeklySpent)
	assert.Equal(t, 7, statuses[0].DaysRemaining)
	requireMoney(t, "16.61", statuses[0].SafeToSpendToday)

	got, err := f.uc.GetCategory(ctx, untracked.ID)
	require.NoError(t, err)
	requireMoney(t, "0", got.WeeklySpent)
	requireMoney(t, "4", got.ThisMonth.Spent)

	report, err := f.uc.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "issues: %+v", report.Issues)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WeekResets))
}

func TestExpenseLedger_CheckConsistencyDetectsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addCategory(t, usecase.AddCategoryInput{Name: "Dining", IsTracked: true, WeeklyLimit: money("100")})
	f.spend(t, c.ID, "25.50")

	// Rollover without advancing the clock keeps the entry inside the new
	// month window while the aggregate was reset.
	_, err := f.uc.Rollover(ctx, usecase.RolloverInput{})
	require.NoError(t, err)

	report, err := f.uc.CheckConsistency(ctx)
	require.NoError(t, err)
	require.False(t, report.Consistent())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, c.ID, report.Issues[0].CategoryID)
	requireMoney(t, "0", report.Issues[0].RecordedMonth)
	requireMoney(t, "25.50", report.Issues[0].LedgerMonth)
}
