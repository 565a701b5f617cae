package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

func TestCategoryFromDomain(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	c := &domain.BudgetCategory{
		ID:          "cat-1",
		Name:        "Dining & Drinks",
		Bucket:      domain.BucketSpending,
		IsTracked:   true,
		LastMonth:   decimal.RequireFromString("250.10"),
		ThisMonth:   domain.MonthTotals{Spent: decimal.RequireFromString("310.95"), Goal: decimal.NewFromInt(300)},
		WeeklyLimit: decimal.RequireFromString("116.28"),
		WeeklySpent: decimal.RequireFromString("93.95"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	resp := CategoryFromDomain(c)
	if resp.Bucket != "spending" || !resp.Remaining.Equal(decimal.RequireFromString("-10.95")) {
		t.Fatalf("unexpected category response: %+v", resp)
	}

	list := CategoriesFromDomain([]*domain.BudgetCategory{c})
	if len(list) != 1 || list[0].ID != c.ID {
		t.Fatalf("CategoriesFromDomain returned %+v", list)
	}
}

func TestAllocationFromDomain_CanonicalOrder(t *testing.T) {
	a := &domain.Allocation{
		StreamID: "s1",
		Amount:   decimal.RequireFromString("4211.45"),
		Buckets: map[domain.Bucket]decimal.Decimal{
			domain.BucketSpending: decimal.RequireFromString("3958.76"),
			domain.BucketSavings:  decimal.RequireFromString("252.69"),
		},
	}

	resp := AllocationFromDomain(a)
	if len(resp.Buckets) != len(domain.Buckets) {
		t.Fatalf("expected every bucket, got %d", len(resp.Buckets))
	}
	for i, b := range domain.Buckets {
		if resp.Buckets[i].Bucket != b.String() {
			t.Fatalf("bucket %d = %s, want %s", i, resp.Buckets[i].Bucket, b)
		}
	}
	if !resp.Buckets[0].Value.IsZero() {
		t.Fatalf("absent bucket should be zero, got %s", resp.Buckets[0].Value)
	}
}

func TestDistributionFromDomain_SkipsUnsetBuckets(t *testing.T) {
	d := &domain.Distribution{
		StreamID:    "s1",
		Percentages: map[domain.Bucket]decimal.Decimal{domain.BucketSavings: decimal.NewFromInt(6)},
	}

	resp := DistributionFromDomain(d)
	if len(resp.Percentages) != 1 || resp.Percentages[0].Bucket != "savings" || !resp.Total.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("unexpected distribution response: %+v", resp)
	}
}

func TestTotalsFromUseCase(t *testing.T) {
	totals := &usecase.AllocationTotals{
		Streams:     []*domain.Allocation{{StreamID: "s1", Amount: decimal.NewFromInt(50), Buckets: map[domain.Bucket]decimal.Decimal{}}},
		Buckets:     map[domain.Bucket]decimal.Decimal{},
		Income:      decimal.NewFromInt(50),
		Unallocated: decimal.NewFromInt(50),
	}

	resp := TotalsFromUseCase(totals)
	if len(resp.Streams) != 1 || !resp.Unallocated.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected totals response: %+v", resp)
	}
}

func TestMoneyMarshalsAsString(t *testing.T) {
	resp := ExpenseFromDomain(domain.ExpenseEntry{ID: "e1", CategoryID: "cat-1", Amount: decimal.RequireFromString("68.45")})

	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"amount":"68.45"`) {
		t.Fatalf("expected string amount, got %s", b)
	}
}

func TestConsistencyFromDomain(t *testing.T) {
	report := &domain.ConsistencyReport{
		Categories: 2,
		Entries:    3,
		Issues:     []domain.ConsistencyIssue{{CategoryID: "cat-1"}},
	}

	resp := ConsistencyFromDomain(report)
	if resp.Consistent || len(resp.Issues) != 1 || resp.Issues[0].CategoryID != "cat-1" {
		t.Fatalf("unexpected consistency response: %+v", resp)
	}
}
