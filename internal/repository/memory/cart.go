package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/repository"
)

// CartStore stands in for the external cart service
type CartStore struct {
	carts map[string][]models.CartItem
	mu    sync.RWMutex
}

// NewCartStore creates an empty CartStore
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]models.CartItem)}
}

// SetCart replaces a user's cart
func (s *CartStore) SetCart(userID string, items []models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = slices.Clone(items)
}

// ListByUser returns a copy of the user's cart
func (s *CartStore) ListByUser(_ context.Context, userID string) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.carts[userID]), nil
}

var _ repository.CartRepository = (*CartStore)(nil)
