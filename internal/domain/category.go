package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthTotals holds the current month's spend against its goal.
type MonthTotals struct {
	Spent decimal.Decimal
	Goal  decimal.Decimal
}

// BudgetCategory is a spending category tagged with a bucket.
//
// The monthly view owns LastMonth and ThisMonth, the weekly view owns
// WeeklyLimit and WeeklySpent. Spent totals only change through the expense
// ledger.
type BudgetCategory struct {
	ID          string
	Name        string
	Bucket      Bucket
	IsTracked   bool
	LastMonth   decimal.Decimal
	ThisMonth   MonthTotals
	WeeklyLimit decimal.Decimal
	WeeklySpent decimal.Decimal
	MonthStart  time.Time
	WeekStart   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks user-editable fields.
func (c *BudgetCategory) Validate() error {
	if err := ValidateName(ErrInvalidCategory, c.Name); err != nil {
		return err
	}
	if !c.Bucket.Valid() {
		return fmt.Errorf("%w: unknown bucket %q", ErrInvalidCategory, c.Bucket)
	}
	if err := ValidateGoal(c.ThisMonth.Goal); err != nil {
		return err
	}
	return ValidateNonNegative(ErrInvalidCategory, "weekly limit", c.WeeklyLimit)
}

// ValidateGoal requires a non-negative goal in whole currency units.
func ValidateGoal(goal decimal.Decimal) error {
	if goal.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrInvalidGoal, goal)
	}
	return ValidateMoneyPlaces(ErrInvalidGoal, "goal", goal)
}

// Remaining returns goal minus spent for this month. Negative when over.
func (c *BudgetCategory) Remaining() decimal.Decimal {
	return c.ThisMonth.Goal.Sub(c.ThisMonth.Spent)
}

// WeeklyRemaining returns what is left of the weekly limit, never negative.
func (c *BudgetCategory) WeeklyRemaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, c.WeeklyLimit.Sub(c.WeeklySpent))
}

// SafeToSpendToday spreads the remaining weekly limit over the days left.
func (c *BudgetCategory) SafeToSpendToday(daysRemaining int) decimal.Decimal {
	if daysRemaining < 1 {
		daysRemaining = 1
	}
	return RoundMoney(c.WeeklyRemaining().Div(decimal.NewFromInt(int64(daysRemaining))))
}

// WeeklyStatus is a tracked category as the weekly view presents it.
type WeeklyStatus struct {
	CategoryID       string
	Name             string
	Bucket           Bucket
	WeeklyLimit      decimal.Decimal
	WeeklySpent      decimal.Decimal
	SafeToSpendToday decimal.Decimal
	DaysRemaining    int
}
