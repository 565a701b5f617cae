package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// PeriodService defines the behavior needed by PeriodHandler.
type PeriodService interface {
	ListTracked(ctx context.Context) ([]domain.WeeklyStatus, error)
	Rollover(ctx context.Context, input usecase.RolloverInput) ([]*domain.BudgetCategory, error)
	ResetWeek(ctx context.Context) ([]domain.WeeklyStatus, error)
}

// PeriodHandler handles the weekly view and period boundary commands.
type PeriodHandler struct {
	periodUC PeriodService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodUC PeriodService) *PeriodHandler {
	return &PeriodHandler{periodUC: periodUC}
}

// Weekly lists tracked categories with their safe-to-spend amount.
func (h *PeriodHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.periodUC.ListTracked(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list weekly categories", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWeeklyResponse{
		Categories: dto.WeeklyFromDomain(statuses),
		Total:      len(statuses),
	})
}

// Rollover closes the month. The body is optional.
func (h *PeriodHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	var req dto.RolloverRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	categories, err := h.periodUC.Rollover(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to roll over month", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCategoriesResponse{
		Categories: dto.CategoriesFromDomain(categories),
		Total:      len(categories),
	})
}

// ResetWeek starts a new week for tracked categories.
func (h *PeriodHandler) ResetWeek(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.periodUC.ResetWeek(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reset week", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWeeklyResponse{
		Categories: dto.WeeklyFromDomain(statuses),
		Total:      len(statuses),
	})
}
