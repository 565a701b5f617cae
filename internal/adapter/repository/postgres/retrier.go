package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes a budget write may hit while two commands race on the
// same category or stream row.
var transientCodes = map[string]string{
	"40P01": "deadlock_detected",
	"40001": "serialization_failure",
	"55P03": "lock_not_available",
}

// RetryPolicy bounds how long a failed persistence step is re-run.
type RetryPolicy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used by NewRetrier.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
}

// Retrier implements usecase.Retrier for transient Postgres failures.
type Retrier struct {
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetrier creates a Retrier with DefaultRetryPolicy.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return NewRetrierWithPolicy(DefaultRetryPolicy, logger)
}

// NewRetrierWithPolicy creates a Retrier with a custom policy.
func NewRetrierWithPolicy(policy RetryPolicy, logger zerolog.Logger) *Retrier {
	return &Retrier{policy: policy, logger: logger}
}

// Retry runs operation until it succeeds, fails permanently, or the policy
// runs out of attempts.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialInterval
	exp.MaxInterval = r.policy.MaxInterval
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithMaxRetries(exp, r.policy.MaxAttempts)
	b = backoff.WithContext(b, ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err == nil {
			return nil
		}
		if _, ok := transientCode(err); !ok {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		code, _ := transientCode(err)
		r.logger.Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("transient storage error, retrying budget write")
	})
}

// transientCode returns the condition name when err carries a retryable
// SQLSTATE.
func transientCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	name, ok := transientCodes[pgErr.Code]
	return name, ok
}
