package domain

import "errors"

var (
	// Stream errors
	ErrStreamNotFound      = errors.New("stream not found")
	ErrInvalidStream       = errors.New("invalid stream")
	ErrInvalidDistribution = errors.New("invalid distribution")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidGoal      = errors.New("invalid goal")

	// Expense errors
	ErrInvalidExpense = errors.New("invalid expense")
)

// IsNotFound reports whether err is one of the not-found failures.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStreamNotFound) || errors.Is(err, ErrCategoryNotFound)
}

// IsValidation reports whether err is a rejected precondition.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidStream) ||
		errors.Is(err, ErrInvalidDistribution) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidGoal) ||
		errors.Is(err, ErrInvalidExpense)
}
