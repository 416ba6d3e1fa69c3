package lake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// BlobStore abstracts the lake object storage. Paths are slash-separated
// keys relative to the lake root.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
}

// ErrBlobNotFound is returned when no blob exists at the given path.
var ErrBlobNotFound = fmt.Errorf("blob not found")

type blob struct {
	data        []byte
	contentType string
}

// InMemoryBlobStore provides an in-memory blob store for the demo loop and
// tests.
type InMemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewInMemoryBlobStore creates a new in-memory blob store.
func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{blobs: make(map[string]blob)}
}

// Put stores a blob, overwriting any existing blob at the path.
func (s *InMemoryBlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[path] = blob{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// Get returns the blob at the path.
func (s *InMemoryBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.blobs[path]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, path)
	}
	return append([]byte(nil), b.data...), nil
}

// List returns sorted paths under the prefix.
func (s *InMemoryBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0)
	for path := range s.blobs {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes the blob at the path. Deleting a missing blob is a no-op.
func (s *InMemoryBlobStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, path)
	return nil
}
