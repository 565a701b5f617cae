package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxNameLength = 255
	MinNameLength = 1
	MaxNoteLength = 1024
	MoneyPlaces   = 2
	PercentPlaces = 4
)

var hundred = decimal.NewFromInt(100)

// ValidateName validates a stream or category name. The wrapped sentinel
// decides which failure the caller sees.
func ValidateName(sentinel error, name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", sentinel)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", sentinel, MaxNameLength)
	}

	return nil
}

// ValidateNonNegative rejects negative currency values and values finer than
// the smallest currency unit.
func ValidateNonNegative(sentinel error, field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", sentinel, field)
	}
	return ValidateMoneyPlaces(sentinel, field, amount)
}

// ValidateMoneyPlaces rejects amounts with more than MoneyPlaces decimals.
// Trailing zeros are fine: 25.500 is 25.50.
func ValidateMoneyPlaces(sentinel error, field string, amount decimal.Decimal) error {
	if exceedsPlaces(amount, MoneyPlaces) {
		return fmt.Errorf("%w: %s %s has more than %d decimal places", sentinel, field, amount, MoneyPlaces)
	}
	return nil
}

// ValidateExpenseAmount validates the amount of a new expense.
func ValidateExpenseAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	return ValidateMoneyPlaces(ErrInvalidExpense, "amount", amount)
}

func exceedsPlaces(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// ValidateNote validates an optional expense note.
func ValidateNote(note string) error {
	if len(note) > MaxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrInvalidExpense, MaxNoteLength)
	}
	return nil
}

// RoundMoney rounds to the smallest currency unit, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
