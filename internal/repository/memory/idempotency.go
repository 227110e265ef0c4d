package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/repository"
)

type idempotencyKey struct {
	key  string
	path string
}

// IdempotencyStore keeps the first response stored for each key and path
type IdempotencyStore struct {
	entries map[idempotencyKey]models.IdempotencyKey
	mu      sync.RWMutex
}

// NewIdempotencyStore creates an empty IdempotencyStore
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[idempotencyKey]models.IdempotencyKey)}
}

// Get returns nil when the key has not been seen on requestPath
func (s *IdempotencyStore) Get(_ context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[idempotencyKey{key: key, path: requestPath}]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Store saves a response unless one is already stored
func (s *IdempotencyStore) Store(_ context.Context, idemKey *models.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := idempotencyKey{key: idemKey.Key, path: idemKey.RequestPath}
	if _, exists := s.entries[k]; exists {
		return nil
	}

	entry := *idemKey
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries[k] = entry
	return nil
}

// DeleteOlderThan removes keys created before the cutoff
func (s *IdempotencyStore) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for k, entry := range s.entries {
		if entry.CreatedAt.Before(before) {
			delete(s.entries, k)
			deleted++
		}
	}
	return deleted, nil
}

var _ repository.IdempotencyRepository = (*IdempotencyStore)(nil)
