package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

// StreamResponse represents an income stream in API responses.
type StreamResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StreamFromDomain converts a domain stream to response.
func StreamFromDomain(s *domain.IncomeStream) *StreamResponse {
	return &StreamResponse{
		ID:        s.ID,
		Name:      s.Name,
		Amount:    s.Amount,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// StreamsFromDomain converts domain streams to responses.
func StreamsFromDomain(streams []*domain.IncomeStream) []*StreamResponse {
	result := make([]*StreamResponse, len(streams))
	for i, s := range streams {
		result[i] = StreamFromDomain(s)
	}
	return result
}

// ListStreamsResponse represents a list of streams.
type ListStreamsResponse struct {
	Streams []*StreamResponse `json:"streams"`
	Total   int               `json:"total"`
}

// BucketAmount is one bucket with its percentage or amount.
type BucketAmount struct {
	Bucket string          `json:"bucket"`
	Value  decimal.Decimal `json:"value"`
}

// bucketsInOrder lists values in canonical bucket order, skipping absent buckets.
func bucketsInOrder(values map[domain.Bucket]decimal.Decimal, includeZero bool) []BucketAmount {
	result := make([]BucketAmount, 0, len(domain.Buckets))
	for _, b := range domain.Buckets {
		v, ok := values[b]
		if !ok && !includeZero {
			continue
		}
		result = append(result, BucketAmount{Bucket: b.String(), Value: v})
	}
	return result
}

// DistributionResponse represents a stream's distribution.
type DistributionResponse struct {
	StreamID    string          `json:"stream_id"`
	Percentages []BucketAmount  `json:"percentages"`
	Total       decimal.Decimal `json:"total"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DistributionFromDomain converts a domain distribution to response.
func DistributionFromDomain(d *domain.Distribution) *DistributionResponse {
	return &DistributionResponse{
		StreamID:    d.StreamID,
		Percentages: bucketsInOrder(d.Percentages, false),
		Total:       d.Total(),
		UpdatedAt:   d.UpdatedAt,
	}
}

// AllocationResponse represents the bucket split of one stream.
type AllocationResponse struct {
	StreamID    string          `json:"stream_id"`
	Amount      decimal.Decimal `json:"amount"`
	Buckets     []BucketAmount  `json:"buckets"`
	Unallocated decimal.Decimal `json:"unallocated"`
}

// AllocationFromDomain converts a domain allocation to response.
func AllocationFromDomain(a *domain.Allocation) *AllocationResponse {
	return &AllocationResponse{
		StreamID:    a.StreamID,
		Amount:      a.Amount,
		Buckets:     bucketsInOrder(a.Buckets, true),
		Unallocated: a.Unallocated,
	}
}

// TotalsResponse represents the combined allocation over every stream.
type TotalsResponse struct {
	Income      decimal.Decimal       `json:"income"`
	Buckets     []BucketAmount        `json:"buckets"`
	Unallocated decimal.Decimal       `json:"unallocated"`
	Streams     []*AllocationResponse `json:"streams"`
}

// TotalsFromUseCase converts allocation totals to response.
func TotalsFromUseCase(t *usecase.AllocationTotals) *TotalsResponse {
	streams := make([]*AllocationResponse, len(t.Streams))
	for i, a := range t.Streams {
		streams[i] = AllocationFromDomain(a)
	}
	return &TotalsResponse{
		Income:      t.Income,
		Buckets:     bucketsInOrder(t.Buckets, true),
		Unallocated: t.Unallocated,
		Streams:     streams,
	}
}

// CategoryResponse represents a budget category in API responses.
type CategoryResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Bucket         string          `json:"bucket"`
	IsTracked      bool            `json:"is_tracked"`
	LastMonth      decimal.Decimal `json:"last_month"`
	ThisMonthSpent decimal.Decimal `json:"this_month_spent"`
	ThisMonthGoal  decimal.Decimal `json:"this_month_goal"`
	Remaining      decimal.Decimal `json:"remaining"`
	WeeklyLimit    decimal.Decimal `json:"weekly_limit"`
	WeeklySpent    decimal.Decimal `json:"weekly_spent"`
	MonthStart     time.Time       `json:"month_start"`
	WeekStart      time.Time       `json:"week_start"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CategoryFromDomain converts a domain category to response.
func CategoryFromDomain(c *domain.BudgetCategory) *CategoryResponse {
	return &CategoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		Bucket:         c.Bucket.String(),
		IsTracked:      c.IsTracked,
		LastMonth:      c.LastMonth,
		ThisMonthSpent: c.ThisMonth.Spent,
		ThisMonthGoal:  c.ThisMonth.Goal,
		Remaining:      c.Remaining(),
		WeeklyLimit:    c.WeeklyLimit,
		WeeklySpent:    c.WeeklySpent,
		MonthStart:     c.MonthStart,
		WeekStart:      c.WeekStart,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// CategoriesFromDomain converts domain categories to responses.
func CategoriesFromDomain(categories []*domain.BudgetCategory) []*CategoryResponse {
	result := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = CategoryFromDomain(c)
	}
	return result
}

// ListCategoriesResponse represents a list of categories.
type ListCategoriesResponse struct {
	Categories []*CategoryResponse `json:"categories"`
	Total      int                 `json:"total"`
}

// WeeklyStatusResponse represents the weekly view of a tracked category.
type WeeklyStatusResponse struct {
	CategoryID       string          `json:"category_id"`
	Name             string          `json:"name"`
	Bucket           string          `json:"bucket"`
	WeeklyLimit      decimal.Decimal `json:"weekly_limit"`
	WeeklySpent      decimal.Decimal `json:"weekly_spent"`
	SafeToSpendToday decimal.Decimal `json:"safe_to_spend_today"`
	DaysRemaining    int             `json:"days_remaining"`
}

// WeeklyFromDomain converts weekly statuses to responses.
func WeeklyFromDomain(statuses []domain.WeeklyStatus) []*WeeklyStatusResponse {
	result := make([]*WeeklyStatusResponse, len(statuses))
	for i, s := range statuses {
		result[i] = &WeeklyStatusResponse{
			CategoryID:       s.CategoryID,
			Name:             s.Name,
			Bucket:           s.Bucket.String(),
			WeeklyLimit:      s.WeeklyLimit,
			WeeklySpent:      s.WeeklySpent,
			SafeToSpendToday: s.SafeToSpendToday,
			DaysRemaining:    s.DaysRemaining,
		}
	}
	return result
}

// ListWeeklyResponse represents the weekly view.
type ListWeeklyResponse struct {
	Categories []*WeeklyStatusResponse `json:"categories"`
	Total      int                     `json:"total"`
}

// ExpenseResponse represents a ledger entry in API responses.
type ExpenseResponse struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ExpenseFromDomain converts a ledger entry to response.
func ExpenseFromDomain(e domain.ExpenseEntry) *ExpenseResponse {
	return &ExpenseResponse{
		ID:         e.ID,
		CategoryID: e.CategoryID,
		Amount:     e.Amount,
		Note:       e.Note,
		Timestamp:  e.Timestamp,
	}
}

// AddExpenseResponse represents the outcome of recording an expense.
type AddExpenseResponse struct {
	Expense  *ExpenseResponse  `json:"expense"`
	Category *CategoryResponse `json:"category"`
	Weekly   bool              `json:"weekly"`
}

// AddExpenseFromUseCase converts an expense result to response.
func AddExpenseFromUseCase(r *usecase.ExpenseResult) *AddExpenseResponse {
	return &AddExpenseResponse{
		Expense:  ExpenseFromDomain(r.Entry),
		Category: CategoryFromDomain(r.Category),
		Weekly:   r.Weekly,
	}
}

// ListExpensesResponse represents a list of ledger entries.
type ListExpensesResponse struct {
	Expenses []*ExpenseResponse `json:"expenses"`
	Total    int                `json:"total"`
}

// ConsistencyIssueResponse describes drift for one category.
type ConsistencyIssueResponse struct {
	CategoryID    string          `json:"category_id"`
	RecordedMonth decimal.Decimal `json:"recorded_month"`
	LedgerMonth   decimal.Decimal `json:"ledger_month"`
	RecordedWeek  decimal.Decimal `json:"recorded_week"`
	LedgerWeek    decimal.Decimal `json:"ledger_week"`
}

// ConsistencyResponse represents a ledger consistency report.
type ConsistencyResponse struct {
	Consistent bool                        `json:"consistent"`
	CheckedAt  time.Time                   `json:"checked_at"`
	Categories int                         `json:"categories"`
	Entries    int                         `json:"entries"`
	Issues     []*ConsistencyIssueResponse `json:"issues"`
}

// ConsistencyFromDomain converts a consistency report to response.
func ConsistencyFromDomain(r *domain.ConsistencyReport) *ConsistencyResponse {
	issues := make([]*ConsistencyIssueResponse, len(r.Issues))
	for i, is := range r.Issues {
		issues[i] = &ConsistencyIssueResponse{
			CategoryID:    is.CategoryID,
			RecordedMonth: is.RecordedMonth,
			LedgerMonth:   is.LedgerMonth,
			RecordedWeek:  is.RecordedWeek,
			LedgerWeek:    is.LedgerWeek,
		}
	}
	return &ConsistencyResponse{
		Consistent: r.Consistent(),
		CheckedAt:  r.CheckedAt,
		Categories: r.Categories,
		Entries:    r.Entries,
		Issues:     issues,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
