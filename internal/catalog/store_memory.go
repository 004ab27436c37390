package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemStore backs the service when no database DSN is configured, and the
// tests. Ids grow monotonically, so id order is insertion order.
type MemStore struct {
	mu     sync.RWMutex
	m      map[int64]Record
	nextID int64
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[int64]Record{}, nextID: 1}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) FindByName(ctx context.Context, name string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := false
	var best Record
	for _, rec := range s.m {
		if rec.Name != name {
			continue
		}
		if !found || rec.ID < best.ID {
			best = rec
			found = true
		}
	}
	return best, found, nil
}

func (s *MemStore) Insert(ctx context.Context, name string, cost int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{ID: s.nextID, Name: name, Cost: cost}
	s.m[rec.ID] = rec
	s.nextID++
	return rec, nil
}

func (s *MemStore) List(ctx context.Context, offset, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Negative args read as "from the start" and "nothing".
	offset = max(offset, 0)
	limit = max(limit, 0)

	all := make([]Record, 0, len(s.m))
	for _, rec := range s.m {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []Record{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.m[id]
	return rec, ok, nil
}

func (s *MemStore) Update(ctx context.Context, id int64, p Patch) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.m[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.Cost != nil {
		rec.Cost = *p.Cost
	}
	s.m[id] = rec
	return rec, nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}
