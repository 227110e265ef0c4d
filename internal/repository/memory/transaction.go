// Package memory holds in-process stores with the same contracts as the
// Postgres repositories. They back DB_DRIVER=memory and engine tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/repository"
)

// TransactionStore is a mutex-guarded map keyed by authority
type TransactionStore struct {
	byAuthority map[string]*models.Transaction
	now         func() time.Time
	mu          sync.RWMutex
}

// NewTransactionStore creates an empty TransactionStore
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		byAuthority: make(map[string]*models.Transaction),
		now:         time.Now,
	}
}

// Create stores a copy of tx. A clash on authority returns models.ErrDuplicate.
func (s *TransactionStore) Create(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAuthority[tx.Authority]; exists {
		return fmt.Errorf("transaction with authority %q: %w", tx.Authority, models.ErrDuplicate)
	}

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Status == "" {
		tx.Status = models.TransactionStatusPending
	}
	if tx.Gateway == "" {
		tx.Gateway = models.GatewayZarinPal
	}
	now := s.now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	s.byAuthority[tx.Authority] = cloneTransaction(tx)
	return nil
}

// FindByAuthority returns a copy of the stored transaction
func (s *TransactionStore) FindByAuthority(_ context.Context, authority string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.byAuthority[authority]
	if !ok {
		return nil, fmt.Errorf("transaction %q: %w", authority, models.ErrNotFound)
	}
	return cloneTransaction(tx), nil
}

// UpdateStatus applies patch only while the stored status is one of from.
func (s *TransactionStore) UpdateStatus(
	_ context.Context,
	authority string,
	from []models.TransactionStatus,
	patch models.StatusPatch,
) (*models.Transaction, error) {
	if !patch.Status.Valid() {
		return nil, fmt.Errorf("invalid target status %q", patch.Status)
	}
	if patch.Status == models.TransactionStatusCompleted && (patch.RefID == nil || patch.VerifiedAt == nil) {
		return nil, errors.New("completing a transaction requires ref id and verified at")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.byAuthority[authority]
	if !ok {
		return nil, fmt.Errorf("transaction %q: %w", authority, models.ErrNotFound)
	}
	if !slices.Contains(from, tx.Status) {
		return cloneTransaction(tx), fmt.Errorf("transaction %q is %s: %w", authority, tx.Status, models.ErrConflict)
	}

	tx.Status = patch.Status
	if patch.Status == models.TransactionStatusCompleted {
		tx.RefID = cloneString(patch.RefID)
		verifiedAt := *patch.VerifiedAt
		tx.VerifiedAt = &verifiedAt
	}
	if len(tx.Products) == 0 && len(patch.Products) > 0 {
		tx.Products = slices.Clone(patch.Products)
	}
	if tx.UserID == nil {
		tx.UserID = cloneString(patch.UserID)
	}
	if tx.OrderID == nil {
		tx.OrderID = cloneString(patch.OrderID)
	}
	if patch.FailureCode != nil {
		code := *patch.FailureCode
		tx.FailureCode = &code
	}
	if patch.FailureMessage != nil {
		tx.FailureMessage = cloneString(patch.FailureMessage)
	}
	tx.UpdatedAt = s.now()

	return cloneTransaction(tx), nil
}

// ListPending returns pending transactions created before olderThan, oldest first.
// A limit of zero or less returns every match.
func (s *TransactionStore) ListPending(_ context.Context, olderThan time.Time, limit int) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []*models.Transaction
	for _, tx := range s.byAuthority {
		if tx.Status == models.TransactionStatusPending && tx.CreatedAt.Before(olderThan) {
			txs = append(txs, cloneTransaction(tx))
		}
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}

	return txs, nil
}

func cloneTransaction(tx *models.Transaction) *models.Transaction {
	c := *tx
	c.UserID = cloneString(tx.UserID)
	c.OrderID = cloneString(tx.OrderID)
	c.RefID = cloneString(tx.RefID)
	c.FailureMessage = cloneString(tx.FailureMessage)
	if tx.FailureCode != nil {
		code := *tx.FailureCode
		c.FailureCode = &code
	}
	if tx.VerifiedAt != nil {
		v := *tx.VerifiedAt
		c.VerifiedAt = &v
	}
	if tx.Customer != nil {
		customer := *tx.Customer
		c.Customer = &customer
	}
	c.Products = slices.Clone(tx.Products)
	if tx.Metadata != nil {
		c.Metadata = make(map[string]any, len(tx.Metadata))
		for k, v := range tx.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var _ repository.TransactionRepository = (*TransactionStore)(nil)
