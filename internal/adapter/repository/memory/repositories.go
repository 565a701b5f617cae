package memory

import (
	"context"
	"sort"

	"github.com/iho/gobudget/internal/domain"
	"github.com/iho/gobudget/internal/usecase"
)

type streamRecord struct {
	stream domain.IncomeStream
	seq    int64
}

type distributionRecord struct {
	distribution *domain.Distribution
}

type categoryRecord struct {
	category domain.BudgetCategory
	seq      int64
}

type expenseRecord struct {
	entry domain.ExpenseEntry
}

// StreamRepository implements usecase.StreamRepository.
type StreamRepository struct {
	store *Store
}

// NewStreamRepository creates a new StreamRepository.
func NewStreamRepository(store *Store) *StreamRepository {
	return &StreamRepository{store: store}
}

// Save upserts a stream.
func (r *StreamRepository) Save(ctx context.Context, tx usecase.Transaction, stream *domain.IncomeStream) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	record := *stream
	return mtx.stage(func(s *Store) {
		existing, ok := s.streams[record.ID]
		if !ok {
			s.seq++
			existing.seq = s.seq
		}
		existing.stream = record
		s.streams[record.ID] = existing
	})
}

// Delete removes a stream.
func (r *StreamRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	return mtx.stage(func(s *Store) {
		delete(s.streams, id)
	})
}

// List returns streams in creation order.
func (r *StreamRepository) List(ctx context.Context) ([]*domain.IncomeStream, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]streamRecord, 0, len(r.store.streams))
	for _, rec := range r.store.streams {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	streams := make([]*domain.IncomeStream, len(records))
	for i, rec := range records {
		s := rec.stream
		streams[i] = &s
	}
	return streams, nil
}

// DistributionRepository implements usecase.DistributionRepository.
type DistributionRepository struct {
	store *Store
}

// NewDistributionRepository creates a new DistributionRepository.
func NewDistributionRepository(store *Store) *DistributionRepository {
	return &DistributionRepository{store: store}
}

// Save upserts a stream's distribution.
func (r *DistributionRepository) Save(ctx context.Context, tx usecase.Transaction, distribution *domain.Distribution) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	record := distribution.Clone()
	return mtx.stage(func(s *Store) {
		s.distributions[record.StreamID] = distributionRecord{distribution: record}
	})
}

// Delete removes a stream's distribution.
func (r *DistributionRepository) Delete(ctx context.Context, tx usecase.Transaction, streamID string) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	return mtx.stage(func(s *Store) {
		delete(s.distributions, streamID)
	})
}

// List returns all distributions ordered by stream ID.
func (r *DistributionRepository) List(ctx context.Context) ([]*domain.Distribution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	distributions := make([]*domain.Distribution, 0, len(r.store.distributions))
	for _, rec := range r.store.distributions {
		distributions = append(distributions, rec.distribution.Clone())
	}
	sort.Slice(distributions, func(i, j int) bool { return distributions[i].StreamID < distributions[j].StreamID })
	return distributions, nil
}

// CategoryRepository implements usecase.CategoryRepository.
type CategoryRepository struct {
	store *Store
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

// Save upserts a category with its aggregates.
func (r *CategoryRepository) Save(ctx context.Context, tx usecase.Transaction, category *domain.BudgetCategory) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	record := *category
	return mtx.stage(func(s *Store) {
		existing, ok := s.categories[record.ID]
		if !ok {
			s.seq++
			existing.seq = s.seq
		}
		existing.category = record
		s.categories[record.ID] = existing
	})
}

// List returns categories in creation order.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.BudgetCategory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := make([]categoryRecord, 0, len(r.store.categories))
	for _, rec := range r.store.categories {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	categories := make([]*domain.BudgetCategory, len(records))
	for i, rec := range records {
		c := rec.category
		categories[i] = &c
	}
	return categories, nil
}

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	store *Store
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

// Create appends an expense entry.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.ExpenseEntry) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	record := *entry
	return mtx.stage(func(s *Store) {
		s.expenses = append(s.expenses, expenseRecord{entry: record})
	})
}

// List returns entries ordered by timestamp ascending.
func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.ExpenseEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := make([]*domain.ExpenseEntry, len(r.store.expenses))
	for i, rec := range r.store.expenses {
		e := rec.entry
		entries[i] = &e
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	return entries, nil
}
