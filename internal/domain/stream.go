package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeStream is a source of income that gets split into buckets.
type IncomeStream struct {
	ID        string
	Name      string
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the stream's name and amount.
func (s *IncomeStream) Validate() error {
	if err := ValidateName(ErrInvalidStream, s.Name); err != nil {
		return err
	}
	return ValidateNonNegative(ErrInvalidStream, "amount", s.Amount)
}
