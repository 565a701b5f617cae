package handler

import (
	"context"
	"iter"
	"net/http"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	AddExpense(ctx context.Context, input usecase.AddExpenseInput) (*usecase.ExpenseResult, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) iter.Seq[domain.ExpenseEntry]
}

// ExpenseHandler handles expense ledger requests.
type ExpenseHandler struct {
	expenseUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseUC: expenseUC}
}

// Create records an expense.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.expenseUC.AddExpense(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add expense", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AddExpenseFromUseCase(result))
}

// List lists ledger entries in timestamp order, filtered by category_id
// and since. A positive limit caps the number of entries returned.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	since, err := parseTimeQuery(r, "since")
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list expenses", err.Error())
		return
	}

	filter := domain.ExpenseFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		Since:      since,
	}
	limit := parseIntQuery(r, "limit", 0)

	expenses := make([]*dto.ExpenseResponse, 0)
	for e := range h.expenseUC.ListExpenses(r.Context(), filter) {
		if limit > 0 && len(expenses) == limit {
			break
		}
		expenses = append(expenses, dto.ExpenseFromDomain(e))
	}

	writeJSON(w, http.StatusOK, dto.ListExpensesResponse{
		Expenses: expenses,
		Total:    len(expenses),
	})
}
