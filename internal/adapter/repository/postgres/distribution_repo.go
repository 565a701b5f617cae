package postgres

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

const (
	deleteDistributionSQL = `DELETE FROM distribution_buckets WHERE stream_id = $1`

	insertDistributionBucketSQL = `
INSERT INTO distribution_buckets (stream_id, bucket, percentage, updated_at)
VALUES ($1, $2, $3, $4)`

	listDistributionsSQL = `
SELECT stream_id, bucket, percentage, updated_at
FROM distribution_buckets
ORDER BY stream_id, bucket`
)

// DistributionRepository implements usecase.DistributionRepository.
// A distribution is stored as one row per bucket.
type DistributionRepository struct {
	pool pgxPool
}

// NewDistributionRepository creates a new DistributionRepository.
func NewDistributionRepository(pool *pgxpool.Pool) *DistributionRepository {
	return &DistributionRepository{pool: pool}
}

// Save replaces the stored rows for the distribution's stream.
func (r *DistributionRepository) Save(ctx context.Context, tx usecase.Transaction, distribution *domain.Distribution) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	if _, err := ptx.Exec(ctx, deleteDistributionSQL, distribution.StreamID); err != nil {
		return err
	}

	// Deterministic insert order keeps lock acquisition stable.
	buckets := make([]domain.Bucket, 0, len(distribution.Percentages))
	for b := range distribution.Percentages {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })

	for _, b := range buckets {
		_, err := ptx.Exec(ctx, insertDistributionBucketSQL,
			distribution.StreamID,
			string(b),
			decimalToNumeric(distribution.Percentages[b]),
			timeToPgTimestamptz(distribution.UpdatedAt),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a stream's distribution.
func (r *DistributionRepository) Delete(ctx context.Context, tx usecase.Transaction, streamID string) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, deleteDistributionSQL, streamID)
	return err
}

// List returns all distributions ordered by stream ID.
func (r *DistributionRepository) List(ctx context.Context) ([]*domain.Distribution, error) {
	rows, err := r.pool.Query(ctx, listDistributionsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		distributions []*domain.Distribution
		current       *domain.Distribution
	)
	for rows.Next() {
		var (
			streamID, bucket string
			percentage       pgtype.Numeric
			updatedAt        pgtype.Timestamptz
		)
		if err := rows.Scan(&streamID, &bucket, &percentage, &updatedAt); err != nil {
			return nil, err
		}

		if current == nil || current.StreamID != streamID {
			current = &domain.Distribution{
				StreamID:    streamID,
				Percentages: make(map[domain.Bucket]decimal.Decimal),
			}
			distributions = append(distributions, current)
		}
		current.Percentages[domain.Bucket(bucket)] = numericToDecimal(percentage)
		if ts := pgTimestamptzToTime(updatedAt); ts.After(current.UpdatedAt) {
			current.UpdatedAt = ts
		}
	}

	return distributions, rows.Err()
}
