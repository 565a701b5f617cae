package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// CreateStreamRequest represents a request to add an income stream.
type CreateStreamRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateStreamRequest) ToUseCaseInput() usecase.AddStreamInput {
	return usecase.AddStreamInput{
		Name:   r.Name,
		Amount: r.Amount,
	}
}

// UpdateStreamRequest represents a partial update of an income stream.
type UpdateStreamRequest struct {
	Name   *string          `json:"name,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateStreamRequest) ToUseCaseInput(id string) usecase.UpdateStreamInput {
	return usecase.UpdateStreamInput{
		ID:     id,
		Name:   r.Name,
		Amount: r.Amount,
	}
}

// SetDistributionRequest carries bucket percentages keyed by bucket name.
type SetDistributionRequest struct {
	Percentages map[string]decimal.Decimal `json:"percentages"`
}

// ToDomain converts the request percentages to bucket keys.
func (r *SetDistributionRequest) ToDomain() map[domain.Bucket]decimal.Decimal {
	out := make(map[domain.Bucket]decimal.Decimal, len(r.Percentages))
	for b, p := range r.Percentages {
		out[domain.Bucket(b)] = p
	}
	return out
}

// CreateCategoryRequest represents a request to add a budget category.
type CreateCategoryRequest struct {
	Name        string          `json:"name"`
	Bucket      string          `json:"bucket"`
	Goal        decimal.Decimal `json:"goal"`
	WeeklyLimit decimal.Decimal `json:"weekly_limit"`
	IsTracked   bool            `json:"is_tracked"`
}

// ToUseCaseInput converts to use case input. An empty bucket means spending.
func (r *CreateCategoryRequest) ToUseCaseInput() usecase.AddCategoryInput {
	bucket := domain.Bucket(r.Bucket)
	if bucket == "" {
		bucket = domain.BucketSpending
	}
	return usecase.AddCategoryInput{
		Name:        r.Name,
		Bucket:      bucket,
		Goal:        r.Goal,
		WeeklyLimit: r.WeeklyLimit,
		IsTracked:   r.IsTracked,
	}
}

// UpdateCategoryRequest represents a partial update of a category.
type UpdateCategoryRequest struct {
	Name        *string          `json:"name,omitempty"`
	Bucket      *string          `json:"bucket,omitempty"`
	WeeklyLimit *decimal.Decimal `json:"weekly_limit,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateCategoryRequest) ToUseCaseInput(id string) usecase.UpdateCategoryInput {
	input := usecase.UpdateCategoryInput{
		ID:          id,
		Name:        r.Name,
		WeeklyLimit: r.WeeklyLimit,
	}
	if r.Bucket != nil {
		b := domain.Bucket(*r.Bucket)
		input.Bucket = &b
	}
	return input
}

// SetGoalRequest sets the monthly goal of a category.
type SetGoalRequest struct {
	Goal decimal.Decimal `json:"goal"`
}

// SetTrackingRequest sets the weekly tracking flag of a category.
type SetTrackingRequest struct {
	IsTracked bool `json:"is_tracked"`
}

// CreateExpenseRequest represents a request to record an expense.
type CreateExpenseRequest struct {
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() usecase.AddExpenseInput {
	return usecase.AddExpenseInput{
		CategoryID: r.CategoryID,
		Amount:     r.Amount,
		Note:       r.Note,
	}
}

// RolloverRequest represents a month rollover command.
type RolloverRequest struct {
	ResetGoals bool `json:"reset_goals"`
}

// ToUseCaseInput converts to use case input.
func (r *RolloverRequest) ToUseCaseInput() usecase.RolloverInput {
	return usecase.RolloverInput{ResetGoals: r.ResetGoals}
}
