package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

const (
	upsertCategorySQL = `
INSERT INTO budget_categories (
    id, name, bucket, is_tracked,
    last_month, this_month_spent, this_month_goal,
    weekly_limit, weekly_spent, month_start, week_start, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    bucket = EXCLUDED.bucket,
    is_tracked = EXCLUDED.is_tracked,
    last_month = EXCLUDED.last_month,
    this_month_spent = EXCLUDED.this_month_spent,
    this_month_goal = EXCLUDED.this_month_goal,
    weekly_limit = EXCLUDED.weekly_limit,
    weekly_spent = EXCLUDED.weekly_spent,
    month_start = EXCLUDED.month_start,
    week_start = EXCLUDED.week_start,
    updated_at = EXCLUDED.updated_at`

	listCategoriesSQL = `
SELECT id, name, bucket, is_tracked,
       last_month, this_month_spent, this_month_goal,
       weekly_limit, weekly_spent, month_start, week_start, created_at, updated_at
FROM budget_categories
ORDER BY seq`
)

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	pool pgxPool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Save upserts a category with its aggregates.
func (r *CategoryRepository) Save(ctx context.Context, tx usecase.Transaction, c *domain.BudgetCategory) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, upsertCategorySQL,
		c.ID,
		c.Name,
		string(c.Bucket),
		c.IsTracked,
		decimalToNumeric(c.LastMonth),
		decimalToNumeric(c.ThisMonth.Spent),
		decimalToNumeric(c.ThisMonth.Goal),
		decimalToNumeric(c.WeeklyLimit),
		decimalToNumeric(c.WeeklySpent),
		timeToPgTimestamptz(c.MonthStart),
		timeToPgTimestamptz(c.WeekStart),
		timeToPgTimestamptz(c.CreatedAt),
		timeToPgTimestamptz(c.UpdatedAt),
	)
	return err
}

// List returns categories in creation order.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.BudgetCategory, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.BudgetCategory
	for rows.Next() {
		var (
			c                        domain.BudgetCategory
			bucket                   string
			lastMonth                pgtype.Numeric
			thisSpent, thisGoal      pgtype.Numeric
			weeklyLimit, weeklySpent pgtype.Numeric
			monthStart, weekStart    pgtype.Timestamptz
			createdAt, updatedAt     pgtype.Timestamptz
		)
		err := rows.Scan(
			&c.ID, &c.Name, &bucket, &c.IsTracked,
			&lastMonth, &thisSpent, &thisGoal,
			&weeklyLimit, &weeklySpent, &monthStart, &weekStart, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, err
		}

		c.Bucket = domain.Bucket(bucket)
		c.LastMonth = numericToDecimal(lastMonth)
		c.ThisMonth = domain.MonthTotals{Spent: numericToDecimal(thisSpent), Goal: numericToDecimal(thisGoal)}
		c.WeeklyLimit = numericToDecimal(weeklyLimit)
		c.WeeklySpent = numericToDecimal(weeklySpent)
		c.MonthStart = pgTimestamptzToTime(monthStart)
		c.WeekStart = pgTimestamptzToTime(weekStart)
		c.CreatedAt = pgTimestamptzToTime(createdAt)
		c.UpdatedAt = pgTimestamptzToTime(updatedAt)
		categories = append(categories, &c)
	}

	return categories, rows.Err()
}
