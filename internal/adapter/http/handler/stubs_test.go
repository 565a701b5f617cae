package handler

import (
	"context"
	"iter"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type streamServiceStub struct {
	addFn             func(ctx context.Context, input usecase.AddStreamInput) (*domain.IncomeStream, error)
	updateFn          func(ctx context.Context, input usecase.UpdateStreamInput) (*domain.IncomeStream, error)
	deleteFn          func(ctx context.Context, id string) error
	getFn             func(ctx context.Context, id string) (*domain.IncomeStream, error)
	listFn            func(ctx context.Context) ([]*domain.IncomeStream, error)
	setDistributionFn func(ctx context.Context, streamID string, p map[domain.Bucket]decimal.Decimal) (*domain.Distribution, error)
	getDistributionFn func(ctx context.Context, streamID string) (*domain.Distribution, error)
	allocationsFn     func(ctx context.Context, streamID string) (*domain.Allocation, error)
	totalsFn          func(ctx context.Context) (*usecase.AllocationTotals, error)
}

func (s *streamServiceStub) AddStream(ctx context.Context, input usecase.AddStreamInput) (*domain.IncomeStream, error) {
	return s.addFn(ctx, input)
}

func (s *streamServiceStub) UpdateStream(ctx context.Context, input usecase.UpdateStreamInput) (*domain.IncomeStream, error) {
	return s.updateFn(ctx, input)
}

func (s *streamServiceStub) DeleteStream(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *streamServiceStub) GetStream(ctx context.Context, id string) (*domain.IncomeStream, error) {
	return s.getFn(ctx, id)
}

func (s *streamServiceStub) ListStreams(ctx context.Context) ([]*domain.IncomeStream, error) {
	return s.listFn(ctx)
}

func (s *streamServiceStub) SetDistribution(ctx context.Context, streamID string, p map[domain.Bucket]decimal.Decimal) (*domain.Distribution, error) {
	return s.setDistributionFn(ctx, streamID, p)
}

func (s *streamServiceStub) GetDistribution(ctx context.Context, streamID string) (*domain.Distribution, error) {
	return s.getDistributionFn(ctx, streamID)
}

func (s *streamServiceStub) ComputeAllocations(ctx context.Context, streamID string) (*domain.Allocation, error) {
	return s.allocationsFn(ctx, streamID)
}

func (s *streamServiceStub) ComputeTotals(ctx context.Context) (*usecase.AllocationTotals, error) {
	return s.totalsFn(ctx)
}

type categoryServiceStub struct {
	addFn         func(ctx context.Context, input usecase.AddCategoryInput) (*domain.BudgetCategory, error)
	updateFn      func(ctx context.Context, input usecase.UpdateCategoryInput) (*domain.BudgetCategory, error)
	getFn         func(ctx context.Context, id string) (*domain.BudgetCategory, error)
	listFn        func(ctx context.Context) ([]*domain.BudgetCategory, error)
	setGoalFn     func(ctx context.Context, id string, goal decimal.Decimal) (*domain.BudgetCategory, error)
	toggleFn      func(ctx context.Context, id string) (*domain.BudgetCategory, error)
	setTrackingFn func(ctx context.Context, id string, tracked bool) (*domain.BudgetCategory, error)
}

func (s *categoryServiceStub) AddCategory(ctx context.Context, input usecase.AddCategoryInput) (*domain.BudgetCategory, error) {
	return s.addFn(ctx, input)
}

func (s *categoryServiceStub) UpdateCategory(ctx context.Context, input usecase.UpdateCategoryInput) (*domain.BudgetCategory, error) {
	return s.updateFn(ctx, input)
}

func (s *categoryServiceStub) GetCategory(ctx context.Context, id string) (*domain.BudgetCategory, error) {
	return s.getFn(ctx, id)
}

func (s *categoryServiceStub) ListCategories(ctx context.Context) ([]*domain.BudgetCategory, error) {
	return s.listFn(ctx)
}

func (s *categoryServiceStub) SetGoal(ctx context.Context, id string, goal decimal.Decimal) (*domain.BudgetCategory, error) {
	return s.setGoalFn(ctx, id, goal)
}

func (s *categoryServiceStub) ToggleTracking(ctx context.Context, id string) (*domain.BudgetCategory, error) {
	return s.toggleFn(ctx, id)
}

func (s *categoryServiceStub) SetTracking(ctx context.Context, id string, tracked bool) (*domain.BudgetCategory, error) {
	return s.setTrackingFn(ctx, id, tracked)
}

type expenseServiceStub struct {
	addFn  func(ctx context.Context, input usecase.AddExpenseInput) (*usecase.ExpenseResult, error)
	listFn func(ctx context.Context, filter domain.ExpenseFilter) iter.Seq[domain.ExpenseEntry]
}

func (s *expenseServiceStub) AddExpense(ctx context.Context, input usecase.AddExpenseInput) (*usecase.ExpenseResult, error) {
	return s.addFn(ctx, input)
}

func (s *expenseServiceStub) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) iter.Seq[domain.ExpenseEntry] {
	return s.listFn(ctx, filter)
}

type periodServiceStub struct {
	listTrackedFn func(ctx context.Context) ([]domain.WeeklyStatus, error)
	rolloverFn    func(ctx context.Context, input usecase.RolloverInput) ([]*domain.BudgetCategory, error)
	resetWeekFn   func(ctx context.Context) ([]domain.WeeklyStatus, error)
}

func (s *periodServiceStub) ListTracked(ctx context.Context) ([]domain.WeeklyStatus, error) {
	return s.listTrackedFn(ctx)
}

func (s *periodServiceStub) Rollover(ctx context.Context, input usecase.RolloverInput) ([]*domain.BudgetCategory, error) {
	return s.rolloverFn(ctx, input)
}

func (s *periodServiceStub) ResetWeek(ctx context.Context) ([]domain.WeeklyStatus, error) {
	return s.resetWeekFn(ctx)
}

type ledgerServiceStub struct {
	checkFn func(ctx context.Context) (*domain.ConsistencyReport, error)
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	return s.checkFn(ctx)
}
