package usecase

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// DistributionEngine splits stream amounts into buckets.
type DistributionEngine struct {
	mu            sync.RWMutex
	distributions map[string]*domain.Distribution

	streams          *StreamStore
	store            *persister
	distributionRepo DistributionRepository
	clock            Clock
}

func newDistributionEngine(streams *StreamStore, store *persister, distributionRepo DistributionRepository, clock Clock) *DistributionEngine {
	return &DistributionEngine{
		distributions:    make(map[string]*domain.Distribution),
		streams:          streams,
		store:            store,
		distributionRepo: distributionRepo,
		clock:            clock,
	}
}

// SetDistribution replaces a stream's distribution. Invalid input leaves the
// previous distribution in place.
func (e *DistributionEngine) SetDistribution(ctx context.Context, streamID string, percentages map[domain.Bucket]decimal.Decimal) (*domain.Distribution, error) {
	unlock := e.streams.locks.Lock(streamID)
	defer unlock()

	if _, ok := e.streams.lookup(streamID); !ok {
		return nil, domain.ErrStreamNotFound
	}

	next, err := domain.NewDistribution(streamID, percentages, e.clock.Now())
	if err != nil {
		return nil, err
	}

	previous := e.lookup(streamID)
	uow := newUnitOfWork(e.store)
	uow.Apply(func() { e.put(streamID, next) }, func() { e.put(streamID, previous) })

	if e.distributionRepo != nil {
		record := next.Clone()
		uow.Persist(func(ctx context.Context, tx Transaction) error {
			return e.distributionRepo.Save(ctx, tx, record)
		})
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	return next.Clone(), nil
}

// GetDistribution returns the stream's distribution, empty when never set.
func (e *DistributionEngine) GetDistribution(streamID string) (*domain.Distribution, error) {
	unlock := e.streams.locks.Lock(streamID)
	defer unlock()

	if _, ok := e.streams.lookup(streamID); !ok {
		return nil, domain.ErrStreamNotFound
	}

	if d := e.lookup(streamID); d != nil {
		return d.Clone(), nil
	}
	return &domain.Distribution{StreamID: streamID, Percentages: map[domain.Bucket]decimal.Decimal{}}, nil
}

// ComputeAllocations applies the stream's distribution to its amount. A
// stream without a distribution allocates zero to every bucket.
func (e *DistributionEngine) ComputeAllocations(streamID string) (*domain.Allocation, error) {
	unlock := e.streams.locks.Lock(streamID)
	defer unlock()

	stream, ok := e.streams.lookup(streamID)
	if !ok {
		return nil, domain.ErrStreamNotFound
	}

	a := e.lookup(streamID).Allocate(stream.ID, stream.Amount)
	return &a, nil
}

// AllocationTotals sums allocations per bucket across every stream.
type AllocationTotals struct {
	Streams     []*domain.Allocation
	Buckets     map[domain.Bucket]decimal.Decimal
	Income      decimal.Decimal
	Unallocated decimal.Decimal
}

// ComputeTotals computes allocations for all streams in creation order.
func (e *DistributionEngine) ComputeTotals() *AllocationTotals {
	totals := &AllocationTotals{
		Buckets:     make(map[domain.Bucket]decimal.Decimal, len(domain.Buckets)),
		Income:      decimal.Zero,
		Unallocated: decimal.Zero,
	}
	for _, b := range domain.Buckets {
		totals.Buckets[b] = decimal.Zero
	}

	for _, stream := range e.streams.ListStreams() {
		a, err := e.ComputeAllocations(stream.ID)
		if err != nil {
			// deleted since the listing
			continue
		}
		totals.Streams = append(totals.Streams, a)
		totals.Income = totals.Income.Add(a.Amount)
		totals.Unallocated = totals.Unallocated.Add(a.Unallocated)
		for b, v := range a.Buckets {
			totals.Buckets[b] = totals.Buckets[b].Add(v)
		}
	}

	return totals
}

// stageRemove drops the stream's distribution. The caller holds the
// stream's lock.
func (e *DistributionEngine) stageRemove(uow *unitOfWork, streamID string) {
	previous := e.lookup(streamID)
	if previous == nil {
		return
	}

	uow.Apply(func() { e.put(streamID, nil) }, func() { e.put(streamID, previous) })

	if e.distributionRepo != nil {
		uow.Persist(func(ctx context.Context, tx Transaction) error {
			return e.distributionRepo.Delete(ctx, tx, streamID)
		})
	}
}

func (e *DistributionEngine) lookup(streamID string) *domain.Distribution {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.distributions[streamID]
}

func (e *DistributionEngine) put(streamID string, d *domain.Distribution) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if d == nil {
		delete(e.distributions, streamID)
		return
	}
	e.distributions[streamID] = d
}
