// internal/store/memory.go
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used in development mode and tests.
// Documents are deep-copied on the way in and out so callers cannot alias
// internal state.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.collections[collection][id]
	if !exists {
		return nil, ErrNotFound
	}
	out := copyDocument(doc)
	out["id"] = id
	return out, nil
}

func (s *MemoryStore) GetByIDs(ctx context.Context, collection string, ids []string) (map[string]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]Document, len(ids))
	for _, id := range ids {
		if doc, exists := s.collections[collection][id]; exists {
			out := copyDocument(doc)
			out["id"] = id
			result[id] = out
		}
	}
	return result, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := StringField(doc, "id")
	if id == "" {
		id = uuid.New().String()
	}

	stored := copyDocument(doc)
	delete(stored, "id")

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = stored
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.collections[collection][id]
	if !exists {
		return ErrNotFound
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0)
	for id, doc := range s.collections[collection] {
		if matchesFilters(doc, filters) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	result := make([]Document, 0, len(ids))
	for _, id := range ids {
		out := copyDocument(s.collections[collection][id])
		out["id"] = id
		result = append(result, out)
	}
	return result, nil
}

func matchesFilters(doc Document, filters []Filter) bool {
	for _, f := range filters {
		switch f.Op {
		case OpEqual:
			if doc[f.Field] != f.Value {
				return false
			}
		case OpIn:
			values, ok := f.Value.([]string)
			if !ok {
				return false
			}
			fieldVal := StringField(doc, f.Field)
			found := false
			for _, v := range values {
				if v == fieldVal {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
