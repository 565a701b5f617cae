package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

func msciPercentages() map[domain.Bucket]decimal.Decimal {
	return map[domain.Bucket]decimal.Decimal{
		domain.BucketWolcc:       decimal.NewFromInt(10),
		domain.BucketSavings:     decimal.NewFromInt(5),
		domain.BucketInvestments: decimal.NewFromInt(60),
		domain.BucketTaxes:       decimal.NewFromInt(5),
		domain.BucketSpending:    decimal.NewFromInt(20),
	}
}

func TestDistributionEngine_MSCIAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stream, err := f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "MSCI", Amount: money("4161.45")})
	require.NoError(t, err)

	_, err = f.uc.SetDistribution(ctx, stream.ID, msciPercentages())
	require.NoError(t, err)

	a, err := f.uc.ComputeAllocations(ctx, stream.ID)
	require.NoError(t, err)
	requireMoney(t, "208.07", a.Buckets[domain.BucketSavings])
	requireMoney(t, "416.15", a.Buckets[domain.BucketWolcc])
	requireMoney(t, "2496.87", a.Buckets[domain.BucketInvestments])
	requireMoney(t, "0", a.Unallocated)
}

func TestDistributionEngine_SetDistributionValidation(t *testing.T) {
	tests := []struct {
		name        string
		percentages map[domain.Bucket]decimal.Decimal
		wantErr     error
	}{
		{
			name: "sum above 100",
			percentages: map[domain.Bucket]decimal.Decimal{
				domain.BucketSavings:  decimal.NewFromInt(60),
				domain.BucketSpending: decimal.NewFromInt(41),
			},
			wantErr: domain.ErrInvalidDistribution,
		},
		{
			name:        "unknown bucket",
			percentages: map[domain.Bucket]decimal.Decimal{"vacation": decimal.NewFromInt(10)},
			wantErr:     domain.ErrInvalidDistribution,
		},
		{
			name:        "negative percentage",
			percentages: map[domain.Bucket]decimal.Decimal{domain.BucketTaxes: decimal.NewFromInt(-1)},
			wantErr:     domain.ErrInvalidDistribution,
		},
		{
			name:        "exactly 100",
			percentages: msciPercentages(),
		},
		{
			name:        "below 100 leaves a remainder",
			percentages: map[domain.Bucket]decimal.Decimal{domain.BucketSavings: decimal.NewFromInt(50)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			stream, err := f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "Salary", Amount: money("1000")})
			require.NoError(t, err)

			prior := map[domain.Bucket]decimal.Decimal{domain.BucketWolcc: decimal.NewFromInt(30)}
			_, err = f.uc.SetDistribution(ctx, stream.ID, prior)
			require.NoError(t, err)

			_, err = f.uc.SetDistribution(ctx, stream.ID, tt.percentages)
			got, getErr := f.uc.GetDistribution(ctx, stream.ID)
			require.NoError(t, getErr)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, got.Percentages, 1, "prior distribution must survive a rejected update")
				requireMoney(t, "30", got.Percentage(domain.BucketWolcc))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Total().LessThanOrEqual(decimal.NewFromInt(100)))
			assert.Len(t, got.Percentages, len(tt.percentages))
			for b, p := range tt.percentages {
				assert.True(t, p.Equal(got.Percentage(b)), "bucket %s", b)
			}
		})
	}
}

func TestDistributionEngine_UnknownStream(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.SetDistribution(ctx, "missing", msciPercentages())
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)

	_, err = f.uc.ComputeAllocations(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)

	_, err = f.uc.GetDistribution(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestDistributionEngine_WithoutDistribution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stream, err := f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "Bonus", Amount: money("250")})
	require.NoError(t, err)

	d, err := f.uc.GetDistribution(ctx, stream.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Percentages)

	a, err := f.uc.ComputeAllocations(ctx, stream.ID)
	require.NoError(t, err)
	requireMoney(t, "250", a.Unallocated)
	for _, b := range domain.Buckets {
		requireMoney(t, "0", a.Buckets[b])
	}
}

func TestDistributionEngine_ComputeTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msci, err := f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "MSCI", Amount: money("4161.45")})
	require.NoError(t, err)
	_, err = f.uc.SetDistribution(ctx, msci.ID, msciPercentages())
	require.NoError(t, err)

	side, err := f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "Side", Amount: money("100")})
	require.NoError(t, err)
	_, err = f.uc.SetDistribution(ctx, side.ID, map[domain.Bucket]decimal.Decimal{
		domain.BucketSavings: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	totals, err := f.uc.ComputeTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals.Streams, 2)
	assert.Equal(t, msci.ID, totals.Streams[0].StreamID)
	requireMoney(t, "4261.45", totals.Income)
	requireMoney(t, "258.07", totals.Buckets[domain.BucketSavings])
	requireMoney(t, "50", totals.Unallocated)
}

func TestBudgetUseCase_StreamLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stream, err := f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "Salary", Amount: money("3000")})
	require.NoError(t, err)
	_, err = f.uc.SetDistribution(ctx, stream.ID, msciPercentages())
	require.NoError(t, err)

	name := "Main salary"
	amount := money("3200")
	updated, err := f.uc.UpdateStream(ctx, usecase.UpdateStreamInput{ID: stream.ID, Name: &name, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Main salary", updated.Name)
	requireMoney(t, "3200", updated.Amount)

	negative := money("-1")
	_, err = f.uc.UpdateStream(ctx, usecase.UpdateStreamInput{ID: stream.ID, Amount: &negative})
	require.ErrorIs(t, err, domain.ErrInvalidStream)

	got, err := f.uc.GetStream(ctx, stream.ID)
	require.NoError(t, err)
	requireMoney(t, "3200", got.Amount)

	require.NoError(t, f.uc.DeleteStream(ctx, stream.ID))

	_, err = f.uc.GetStream(ctx, stream.ID)
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
	assert.ErrorIs(t, f.uc.DeleteStream(ctx, stream.ID), domain.ErrStreamNotFound)

	streams, err := f.uc.ListStreams(ctx)
	require.NoError(t, err)
	assert.Empty(t, streams)

	stored, err := f.cfg.DistributionRepo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "deleting a stream drops its stored distribution")
}

func TestBudgetUseCase_AddStreamValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "", Amount: money("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidStream)

	_, err = f.uc.AddStream(ctx, usecase.AddStreamInput{Name: "Refund", Amount: money("-10")})
	assert.ErrorIs(t, err, domain.ErrInvalidStream)

	streams, _ := f.uc.ListStreams(ctx)
	assert.Empty(t, streams)
}
