package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for persisting one command.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
