package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

const (
	upsertStreamSQL = `
INSERT INTO income_streams (id, name, amount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`

	deleteStreamSQL = `DELETE FROM income_streams WHERE id = $1`

	listStreamsSQL = `
SELECT id, name, amount, created_at, updated_at
FROM income_streams
ORDER BY seq`
)

// StreamRepository implements usecase.StreamRepository.
type StreamRepository struct {
	pool pgxPool
}

// NewStreamRepository creates a new StreamRepository.
func NewStreamRepository(pool *pgxpool.Pool) *StreamRepository {
	return &StreamRepository{pool: pool}
}

// Save upserts a stream.
func (r *StreamRepository) Save(ctx context.Context, tx usecase.Transaction, stream *domain.IncomeStream) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, upsertStreamSQL,
		stream.ID,
		stream.Name,
		decimalToNumeric(stream.Amount),
		timeToPgTimestamptz(stream.CreatedAt),
		timeToPgTimestamptz(stream.UpdatedAt),
	)
	return err
}

// Delete removes a stream. Its distribution rows cascade.
func (r *StreamRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, deleteStreamSQL, id)
	return err
}

// List returns streams in creation order.
func (r *StreamRepository) List(ctx context.Context) ([]*domain.IncomeStream, error) {
	rows, err := r.pool.Query(ctx, listStreamsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streams []*domain.IncomeStream
	for rows.Next() {
		var (
			s                    domain.IncomeStream
			amount               pgtype.Numeric
			createdAt, updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&s.ID, &s.Name, &amount, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.Amount = numericToDecimal(amount)
		s.CreatedAt = pgTimestamptzToTime(createdAt)
		s.UpdatedAt = pgTimestamptzToTime(updatedAt)
		streams = append(streams, &s)
	}

	return streams, rows.Err()
}
