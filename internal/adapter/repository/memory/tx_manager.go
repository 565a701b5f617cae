package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/gobudget/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// Store is the shared in-memory storage behind the repositories. Writes
// are buffered on a Tx and applied together on Commit.
type Store struct {
	mu sync.RWMutex

	streams       map[string]streamRecord
	distributions map[string]distributionRecord
	categories    map[string]categoryRecord
	expenses      []expenseRecord
	seq           int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		streams:       make(map[string]streamRecord),
		distributions: make(map[string]distributionRecord),
		categories:    make(map[string]categoryRecord),
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	return &Tx{store: m.store}, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	store *Store
	ops   []func(s *Store)
	done  bool
}

// Commit applies all buffered writes atomically.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for _, op := range t.ops {
		op(t.store)
	}
	t.ops = nil
	return nil
}

// Rollback discards buffered writes. Rolling back a finished transaction
// is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.ops = nil
	return nil
}

func (t *Tx) stage(op func(s *Store)) error {
	if t.done {
		return ErrTxDone
	}
	t.ops = append(t.ops, op)
	return nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok {
		return nil, errors.New("memory: foreign transaction")
	}
	return mtx, nil
}
