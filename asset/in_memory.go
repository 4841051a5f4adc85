package asset

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// InMemoryStore is a trivial in-process Store implementation useful for tests
// and single-process prototypes. It keeps all objects in a map guarded by an
// RWMutex and returns mem:// URLs. Data is copied on retrieval to avoid
// accidental external mutation of internal buffers.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas, or eviction. For production, use the MinIO-backed
// store which can scale and survive process restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryStore returns an empty in-memory asset store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

// Upload stores (or overwrites) the object bytes and returns its mem:// URL.
func (s *InMemoryStore) Upload(_ context.Context, objectName string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object bytes: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data
	return "mem://" + objectName, nil
}

// Get returns a copy of the stored object bytes or ErrNotFound.
func (s *InMemoryStore) Get(objectName string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[objectName]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the stored object names. The slice is a snapshot and safe for
// caller mutation.
func (s *InMemoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	return names
}
