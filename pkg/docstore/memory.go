package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process. Every operation holds a single mutex, so Update never conflicts.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return "memory" }

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, collection, key string, dest interface{}) error {
	s.mu.Lock()
	body, ok := s.collections[collection][key]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return decode(body, dest)
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, collection, key string, value interface{}) error {
	body, err := encode(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket(collection)[key] = clone(body)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.collections[collection]
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([]Document, 0, len(keys))
	for _, k := range keys {
		docs = append(docs, Document{Key: k, Body: clone(bucket[k])})
	}
	return docs, nil
}

// FindOne implements Store.
func (s *MemoryStore) FindOne(ctx context.Context, collection, field, value string, dest interface{}) error {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if fieldEquals(doc.Body, field, value) {
			return decode(doc.Body, dest)
		}
	}
	return ErrNotFound
}

// ReplaceAll implements Store.
func (s *MemoryStore) ReplaceAll(_ context.Context, collection string, docs map[string]interface{}) error {
	bucket := make(map[string][]byte, len(docs))
	for k, v := range docs {
		body, err := encode(v)
		if err != nil {
			return err
		}
		bucket[k] = clone(body)
	}
	s.mu.Lock()
	s.collections[collection] = bucket
	s.mu.Unlock()
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, collection, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.collections[collection][key]
	next, err := fn(clone(current), exists)
	if err != nil {
		return err
	}
	s.bucket(collection)[key] = clone(next)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) bucket(collection string) map[string][]byte {
	b, ok := s.collections[collection]
	if !ok {
		b = make(map[string][]byte)
		s.collections[collection] = b
	}
	return b
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
