package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/gobudget/internal/domain"
)

// CategoryRegistry is the single table of budget categories. The monthly
// and weekly trackers are views over it and never keep their own copies.
type CategoryRegistry struct {
	mu         sync.RWMutex
	categories map[string]*domain.BudgetCategory
	order      []string

	locks        *entityLocks
	store        *persister
	categoryRepo CategoryRepository
	idGen        IDGenerator
	clock        Clock
}

func newCategoryRegistry(store *persister, categoryRepo CategoryRepository, idGen IDGenerator, clock Clock) *CategoryRegistry {
	return &CategoryRegistry{
		categories:   make(map[string]*domain.BudgetCategory),
		locks:        newEntityLocks(),
		store:        store,
		categoryRepo: categoryRepo,
		idGen:        idGen,
		clock:        clock,
	}
}

// AddCategoryInput represents input for creating a category.
type AddCategoryInput struct {
	Name        string
	Bucket      domain.Bucket
	Goal        decimal.Decimal
	WeeklyLimit decimal.Decimal
	IsTracked   bool
}

// UpdateCategoryInput represents input for editing a category. Nil fields
// are left unchanged; spent totals and tracking are not editable here.
type UpdateCategoryInput struct {
	ID          string
	Name        *string
	Bucket      *domain.Bucket
	WeeklyLimit *decimal.Decimal
}

// AddCategory creates a new category with empty aggregates.
func (r *CategoryRegistry) AddCategory(ctx context.Context, input AddCategoryInput) (*domain.BudgetCategory, error) {
	now := r.clock.Now()

	category := &domain.BudgetCategory{
		ID:          r.idGen.Generate(),
		Name:        strings.TrimSpace(input.Name),
		Bucket:      input.Bucket,
		IsTracked:   input.IsTracked,
		LastMonth:   decimal.Zero,
		ThisMonth:   domain.MonthTotals{Spent: decimal.Zero, Goal: input.Goal},
		WeeklyLimit: input.WeeklyLimit,
		WeeklySpent: decimal.Zero,
		MonthStart:  now,
		WeekStart:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	// Readers of the new id wait until the insert is committed or undone.
	unlock := r.locks.Lock(category.ID)
	defer unlock()

	uow := newUnitOfWork(r.store)
	uow.Apply(func() { r.insert(category) }, func() { r.remove(category.ID) })
	r.stageSave(uow, category)

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	out := *category
	return &out, nil
}

// UpdateCategory edits name, bucket or weekly limit.
func (r *CategoryRegistry) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*domain.BudgetCategory, error) {
	return r.mutate(ctx, input.ID, func(c *domain.BudgetCategory) error {
		if input.Name != nil {
			c.Name = strings.TrimSpace(*input.Name)
		}
		if input.Bucket != nil {
			c.Bucket = *input.Bucket
		}
		if input.WeeklyLimit != nil {
			c.WeeklyLimit = *input.WeeklyLimit
		}
		return c.Validate()
	})
}

// GetCategory returns a copy of the category.
func (r *CategoryRegistry) GetCategory(id string) (*domain.BudgetCategory, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	c, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	out := *c
	return &out, nil
}

// snapshot returns copies of every category in creation order. Each copy is
// taken under that category's lock.
func (r *CategoryRegistry) snapshot() []*domain.BudgetCategory {
	ids := r.ids()
	categories := make([]*domain.BudgetCategory, 0, len(ids))
	for _, id := range ids {
		if c, err := r.GetCategory(id); err == nil {
			categories = append(categories, c)
		}
	}
	return categories
}

// mutate applies change to a working copy under the category's lock and
// swaps it in only when change succeeds and the write is persisted.
func (r *CategoryRegistry) mutate(ctx context.Context, id string, change func(c *domain.BudgetCategory) error) (*domain.BudgetCategory, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	current, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	next := *current
	if err := change(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = r.clock.Now()

	previous := *current
	uow := newUnitOfWork(r.store)
	uow.Apply(func() { *current = next }, func() { *current = previous })
	r.stageSave(uow, &next)

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	out := *current
	return &out, nil
}

// stageSave persists the category as it is when the write is staged.
func (r *CategoryRegistry) stageSave(uow *unitOfWork, c *domain.BudgetCategory) {
	if r.categoryRepo == nil {
		return
	}
	record := *c
	uow.Persist(func(ctx context.Context, tx Transaction) error {
		return r.categoryRepo.Save(ctx, tx, &record)
	})
}

func (r *CategoryRegistry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

func (r *CategoryRegistry) lookup(id string) (*domain.BudgetCategory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	return c, ok
}

func (r *CategoryRegistry) insert(c *domain.BudgetCategory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.categories[c.ID] = c
}

func (r *CategoryRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.categories, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}
