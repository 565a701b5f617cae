package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

const (
	insertExpenseSQL = `
INSERT INTO expense_entries (id, category_id, amount, note, occurred_at)
VALUES ($1, $2, $3, $4, $5)`

	listExpensesSQL = `
SELECT id, category_id, amount, note, occurred_at
FROM expense_entries
ORDER BY occurred_at, seq`
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool pgxPool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create inserts an expense entry.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.ExpenseEntry) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, insertExpenseSQL,
		e.ID,
		e.CategoryID,
		decimalToNumeric(e.Amount),
		e.Note,
		timeToPgTimestamptz(e.Timestamp),
	)
	return err
}

// List returns entries ordered by timestamp ascending.
func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.ExpenseEntry, error) {
	rows, err := r.pool.Query(ctx, listExpensesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.ExpenseEntry
	for rows.Next() {
		var (
			e          domain.ExpenseEntry
			amount     pgtype.Numeric
			occurredAt pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.CategoryID, &amount, &e.Note, &occurredAt); err != nil {
			return nil, err
		}
		e.Amount = numericToDecimal(amount)
		e.Timestamp = pgTimestamptzToTime(occurredAt)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
