package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// Collection is a list of records of one kind persisted as a single JSON array
// per key. Records are unique by the id returned by the id func. Every mutation
// loads the whole array, changes it and writes it back before returning.
type Collection[T any] struct {
	b     Backend
	id    func(*T) string
	mux   sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCollection[T any](b Backend, id func(*T) string) *Collection[T] {
	return &Collection[T]{
		b:     b,
		id:    id,
		locks: map[string]*sync.Mutex{},
	}
}

func (s *Collection[T]) lock(key string) func() {
	s.mux.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mux.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *Collection[T]) load(ctx context.Context, key string) ([]T, error) {
	data, err := s.b.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "failed to decode collection %v", key)
	}
	return items, nil
}

func (s *Collection[T]) save(ctx context.Context, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "failed to encode collection %v", key)
	}
	return s.b.Save(ctx, key, data)
}

func (s *Collection[T]) index(items []T, id string) int {
	for i := range items {
		if s.id(&items[i]) == id {
			return i
		}
	}
	return -1
}

func (s *Collection[T]) List(ctx context.Context, key string) ([]T, error) {
	defer s.lock(key)()
	return s.load(ctx, key)
}

// Filter returns the records matching fn in stored order.
func (s *Collection[T]) Filter(ctx context.Context, key string, fn func(*T) bool) ([]T, error) {
	items, err := s.List(ctx, key)
	if err != nil {
		return nil, err
	}
	res := []T{}
	for i := range items {
		if fn(&items[i]) {
			res = append(res, items[i])
		}
	}
	return res, nil
}

// Find returns nil when no record has the id.
func (s *Collection[T]) Find(ctx context.Context, key string, id string) (*T, error) {
	items, err := s.List(ctx, key)
	if err != nil {
		return nil, err
	}
	if i := s.index(items, id); i >= 0 {
		return &items[i], nil
	}
	return nil, nil
}

func (s *Collection[T]) Exists(ctx context.Context, key string, id string) (bool, error) {
	it, err := s.Find(ctx, key, id)
	return it != nil, err
}

func (s *Collection[T]) insert(ctx context.Context, key string, item T, first bool) (T, bool, error) {
	defer s.lock(key)()
	items, err := s.load(ctx, key)
	if err != nil {
		return item, false, err
	}
	if i := s.index(items, s.id(&item)); i >= 0 {
		return items[i], false, nil
	}
	if first {
		items = append([]T{item}, items...)
	} else {
		items = append(items, item)
	}
	if err := s.save(ctx, key, items); err != nil {
		return item, false, err
	}
	return item, true, nil
}

// Add appends item unless a record with the same id exists, in which case the
// existing record is returned and added is false.
func (s *Collection[T]) Add(ctx context.Context, key string, item T) (res T, added bool, err error) {
	return s.insert(ctx, key, item, false)
}

// Prepend is Add for newest-first collections.
func (s *Collection[T]) Prepend(ctx context.Context, key string, item T) (res T, added bool, err error) {
	return s.insert(ctx, key, item, true)
}

// Remove reports whether a record was removed. The collection is not written
// when nothing matched.
func (s *Collection[T]) Remove(ctx context.Context, key string, id string) (bool, error) {
	defer s.lock(key)()
	items, err := s.load(ctx, key)
	if err != nil {
		return false, err
	}
	i := s.index(items, id)
	if i < 0 {
		return false, nil
	}
	items = append(items[:i], items[i+1:]...)
	if err := s.save(ctx, key, items); err != nil {
		return false, err
	}
	return true, nil
}

// Update applies fn to the record with the id and persists the result.
// It returns nil when no record matched.
func (s *Collection[T]) Update(ctx context.Context, key string, id string, fn func(*T)) (*T, error) {
	defer s.lock(key)()
	items, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	i := s.index(items, id)
	if i < 0 {
		return nil, nil
	}
	fn(&items[i])
	if err := s.save(ctx, key, items); err != nil {
		return nil, err
	}
	res := items[i]
	return &res, nil
}

// Upsert inserts item, or applies fn to the existing record with the same id.
func (s *Collection[T]) Upsert(ctx context.Context, key string, item T, fn func(*T)) (*T, error) {
	defer s.lock(key)()
	items, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	i := s.index(items, s.id(&item))
	if i < 0 {
		items = append(items, item)
		i = len(items) - 1
	}
	if fn != nil {
		fn(&items[i])
	}
	if err := s.save(ctx, key, items); err != nil {
		return nil, err
	}
	res := items[i]
	return &res, nil
}

// Reset drops every record stored under key.
func (s *Collection[T]) Reset(ctx context.Context, key string) error {
	defer s.lock(key)()
	return s.save(ctx, key, []T{})
}
