package usecase

import (
	"context"
	"time"

	"github.com/iho/gobudget/internal/domain"
)

// StreamRepository persists income streams.
type StreamRepository interface {
	Save(ctx context.Context, tx Transaction, stream *domain.IncomeStream) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context) ([]*domain.IncomeStream, error)
}

// DistributionRepository persists per-stream distributions.
type DistributionRepository interface {
	Save(ctx context.Context, tx Transaction, distribution *domain.Distribution) error
	Delete(ctx context.Context, tx Transaction, streamID string) error
	List(ctx context.Context) ([]*domain.Distribution, error)
}

// CategoryRepository persists budget categories including their aggregates.
type CategoryRepository interface {
	Save(ctx context.Context, tx Transaction, category *domain.BudgetCategory) error
	// List returns categories in creation order.
	List(ctx context.Context) ([]*domain.BudgetCategory, error)
}

// ExpenseRepository persists the append-only expense ledger.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.ExpenseEntry) error
	// List returns entries ordered by timestamp ascending.
	List(ctx context.Context) ([]*domain.ExpenseEntry, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time and the position within the week.
// The core never reads wall-clock time itself.
type Clock interface {
	Now() time.Time
	// DaysRemainingInWeek counts today as a remaining day.
	DaysRemainingInWeek() int
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error). An existing key with a nil
	// value is still held by the request that claimed it.
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key so the request can be retried.
	Delete(ctx context.Context, key string) error
}
