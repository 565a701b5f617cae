package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/adapter/http/dto"
	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// CategoryService defines the behavior needed by CategoryHandler.
type CategoryService interface {
	AddCategory(ctx context.Context, input usecase.AddCategoryInput) (*domain.BudgetCategory, error)
	UpdateCategory(ctx context.Context, input usecase.UpdateCategoryInput) (*domain.BudgetCategory, error)
	GetCategory(ctx context.Context, id string) (*domain.BudgetCategory, error)
	ListCategories(ctx context.Context) ([]*domain.BudgetCategory, error)
	SetGoal(ctx context.Context, categoryID string, goal decimal.Decimal) (*domain.BudgetCategory, error)
	ToggleTracking(ctx context.Context, categoryID string) (*domain.BudgetCategory, error)
	SetTracking(ctx context.Context, categoryID string, tracked bool) (*domain.BudgetCategory, error)
}

// CategoryHandler handles budget category requests.
type CategoryHandler struct {
	categoryUC CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryUC CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryUC: categoryUC}
}

// Create adds a budget category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.categoryUC.AddCategory(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add category", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CategoryFromDomain(c))
}

// List returns the monthly view of every category.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryUC.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCategoriesResponse{
		Categories: dto.CategoriesFromDomain(categories),
		Total:      len(categories),
	})
}

// Get retrieves a category by ID.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing category ID", "")
		return
	}

	c, err := h.categoryUC.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get category", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoryFromDomain(c))
}

// Update changes the name, bucket or weekly limit of a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing category ID", "")
		return
	}

	var req dto.UpdateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.categoryUC.UpdateCategory(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update category", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoryFromDomain(c))
}

// SetGoal sets this month's goal.
func (h *CategoryHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing category ID", "")
		return
	}

	var req dto.SetGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.categoryUC.SetGoal(r.Context(), id, req.Goal)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set goal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoryFromDomain(c))
}

// Toggle flips weekly tracking.
func (h *CategoryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing category ID", "")
		return
	}

	c, err := h.categoryUC.ToggleTracking(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to toggle tracking", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoryFromDomain(c))
}

// SetTracking sets weekly tracking to an explicit value.
func (h *CategoryHandler) SetTracking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing category ID", "")
		return
	}

	var req dto.SetTrackingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.categoryUC.SetTracking(r.Context(), id, req.IsTracked)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set tracking", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoryFromDomain(c))
}
