package usecase

import (
	"context"
)

// persistFunc writes one record inside a storage transaction.
type persistFunc func(ctx context.Context, tx Transaction) error

// persister runs staged writes in a single storage transaction. A nil
// transaction manager keeps the core purely in memory.
type persister struct {
	txManager TransactionManager
	retrier   Retrier
}

func newPersister(txManager TransactionManager, retrier Retrier) *persister {
	return &persister{txManager: txManager, retrier: retrier}
}

func (p *persister) run(ctx context.Context, writes []persistFunc) error {
	if p == nil || p.txManager == nil || len(writes) == 0 {
		return nil
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	op := func() error {
		tx, err := p.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		for _, write := range writes {
			if err := write(txCtx, tx); err != nil {
				return err
			}
		}

		return tx.Commit(txCtx)
	}

	if p.retrier != nil {
		return p.retrier.Retry(txCtx, op)
	}
	return op()
}

// unitOfWork collects the in-memory mutations and storage writes of one
// command. Commit persists everything together; if that fails, every
// applied mutation is undone in reverse order.
type unitOfWork struct {
	store  *persister
	undo   []func()
	writes []persistFunc
}

func newUnitOfWork(store *persister) *unitOfWork {
	return &unitOfWork{store: store}
}

// Apply performs do immediately and remembers undo for rollback.
func (u *unitOfWork) Apply(do, undo func()) {
	do()
	u.undo = append(u.undo, undo)
}

// Persist stages a storage write for Commit.
func (u *unitOfWork) Persist(write persistFunc) {
	u.writes = append(u.writes, write)
}

// Commit persists the staged writes, rolling back on failure.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if err := u.store.run(ctx, u.writes); err != nil {
		u.Rollback()
		return err
	}
	u.undo = nil
	u.writes = nil
	return nil
}

// Rollback undoes every applied mutation.
func (u *unitOfWork) Rollback() {
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
	u.writes = nil
}
