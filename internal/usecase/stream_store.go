package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// StreamStore holds income streams in creation order.
type StreamStore struct {
	mu      sync.RWMutex
	streams map[string]*domain.IncomeStream
	order   []string

	locks      *entityLocks
	store      *persister
	streamRepo StreamRepository
	idGen      IDGenerator
	clock      Clock
}

// newStreamStore creates a new StreamStore.
func newStreamStore(store *persister, streamRepo StreamRepository, idGen IDGenerator, clock Clock) *StreamStore {
	return &StreamStore{
		streams:    make(map[string]*domain.IncomeStream),
		locks:      newEntityLocks(),
		store:      store,
		streamRepo: streamRepo,
		idGen:      idGen,
		clock:      clock,
	}
}

// AddStreamInput represents input for adding a stream.
type AddStreamInput struct {
	Name   string
	Amount decimal.Decimal
}

// UpdateStreamInput represents input for renaming or re-pricing a stream.
// Nil fields are left unchanged.
type UpdateStreamInput struct {
	ID     string
	Name   *string
	Amount *decimal.Decimal
}

// AddStream creates a new income stream.
func (s *StreamStore) AddStream(ctx context.Context, input AddStreamInput) (*domain.IncomeStream, error) {
	now := s.clock.Now()

	stream := &domain.IncomeStream{
		ID:        s.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Amount:    input.Amount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := stream.Validate(); err != nil {
		return nil, err
	}

	// Readers of the new id wait until the insert is committed or undone.
	unlock := s.locks.Lock(stream.ID)
	defer unlock()

	uow := newUnitOfWork(s.store)
	uow.Apply(func() { s.insert(stream) }, func() { s.remove(stream.ID) })
	s.stageSave(uow, stream)

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	out := *stream
	return &out, nil
}

// UpdateStream renames a stream or edits its amount.
func (s *StreamStore) UpdateStream(ctx context.Context, input UpdateStreamInput) (*domain.IncomeStream, error) {
	unlock := s.locks.Lock(input.ID)
	defer unlock()

	stream, ok := s.lookup(input.ID)
	if !ok {
		return nil, domain.ErrStreamNotFound
	}

	updated := *stream
	if input.Name != nil {
		updated.Name = strings.TrimSpace(*input.Name)
	}
	if input.Amount != nil {
		updated.Amount = *input.Amount
	}
	updated.UpdatedAt = s.clock.Now()

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	previous := *stream
	uow := newUnitOfWork(s.store)
	uow.Apply(func() { *stream = updated }, func() { *stream = previous })
	s.stageSave(uow, &updated)

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	out := *stream
	return &out, nil
}

// GetStream returns a copy of the stream.
func (s *StreamStore) GetStream(id string) (*domain.IncomeStream, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	stream, ok := s.lookup(id)
	if !ok {
		return nil, domain.ErrStreamNotFound
	}

	out := *stream
	return &out, nil
}

// ListStreams returns copies of all streams in creation order.
func (s *StreamStore) ListStreams() []*domain.IncomeStream {
	s.mu.RLock()
	ids := append([]string(nil), s.order...)
	s.mu.RUnlock()

	streams := make([]*domain.IncomeStream, 0, len(ids))
	for _, id := range ids {
		if stream, err := s.GetStream(id); err == nil {
			streams = append(streams, stream)
		}
	}
	return streams
}

func (s *StreamStore) stageSave(uow *unitOfWork, stream *domain.IncomeStream) {
	if s.streamRepo == nil {
		return
	}
	record := *stream
	uow.Persist(func(ctx context.Context, tx Transaction) error {
		return s.streamRepo.Save(ctx, tx, &record)
	})
}

// stageRemove drops a stream as part of a larger command. The caller holds
// the stream's lock.
func (s *StreamStore) stageRemove(uow *unitOfWork, id string) error {
	stream, ok := s.lookup(id)
	if !ok {
		return domain.ErrStreamNotFound
	}

	position := s.position(id)
	uow.Apply(func() { s.remove(id) }, func() { s.restore(stream, position) })

	if s.streamRepo != nil {
		uow.Persist(func(ctx context.Context, tx Transaction) error {
			return s.streamRepo.Delete(ctx, tx, id)
		})
	}
	return nil
}

func (s *StreamStore) lookup(id string) (*domain.IncomeStream, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream, ok := s.streams[id]
	return stream, ok
}

func (s *StreamStore) insert(stream *domain.IncomeStream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.streams[stream.ID]; !exists {
		s.order = append(s.order, stream.ID)
	}
	s.streams[stream.ID] = stream
}

func (s *StreamStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.streams, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *StreamStore) restore(stream *domain.IncomeStream, position int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streams[stream.ID] = stream
	if position < 0 || position > len(s.order) {
		position = len(s.order)
	}
	order := make([]string, 0, len(s.order)+1)
	order = append(order, s.order[:position]...)
	order = append(order, stream.ID)
	s.order = append(order, s.order[position:]...)
}

func (s *StreamStore) position(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, existing := range s.order {
		if existing == id {
			return i
		}
	}
	return -1
}
