package usecase

import (
	"sort"
	"sync"
)

// entityLocks hands out one mutex per entity ID. Categories and streams are
// independent, so commands only serialize on the entities they touch.
type entityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the locks for ids and returns the function releasing them.
// IDs are deduplicated and taken in sorted order (deadlock prevention).
func (l *entityLocks) Lock(ids ...string) func() {
	ids = uniqueSorted(ids)

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		m := l.get(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (l *entityLocks) get(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
