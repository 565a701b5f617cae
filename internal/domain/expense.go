package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseEntry is an immutable record of money spent in a category.
type ExpenseEntry struct {
	ID         string
	CategoryID string
	Amount     decimal.Decimal
	Note       string
	Timestamp  time.Time
}

// ExpenseFilter narrows an expense listing. Zero values match everything.
type ExpenseFilter struct {
	CategoryID string
	Since      *time.Time
}

// Matches reports whether e passes the filter. Since is inclusive.
func (f ExpenseFilter) Matches(e ExpenseEntry) bool {
	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	return true
}

// ConsistencyIssue describes a category whose aggregates disagree with the
// ledger.
type ConsistencyIssue struct {
	CategoryID    string
	RecordedMonth decimal.Decimal
	LedgerMonth   decimal.Decimal
	RecordedWeek  decimal.Decimal
	LedgerWeek    decimal.Decimal
}

// ConsistencyReport is the outcome of checking every category.
type ConsistencyReport struct {
	CheckedAt  time.Time
	Categories int
	Entries    int
	Issues     []ConsistencyIssue
}

// Consistent reports whether no issues were found.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Issues) == 0
}
