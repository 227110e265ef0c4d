package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/repository"
)

// InvoiceStore enforces the same order_id and ref_id uniqueness as the invoices table
type InvoiceStore struct {
	byID      map[uuid.UUID]*models.Invoice
	byRefID   map[string]uuid.UUID
	byOrderID map[string]uuid.UUID
	mu        sync.RWMutex
}

// NewInvoiceStore creates an empty InvoiceStore
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{
		byID:      make(map[uuid.UUID]*models.Invoice),
		byRefID:   make(map[string]uuid.UUID),
		byOrderID: make(map[string]uuid.UUID),
	}
}

// Create stores a copy of inv. A clash on order or ref id returns models.ErrDuplicate.
func (s *InvoiceStore) Create(_ context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, refTaken := s.byRefID[inv.RefID]
	_, orderTaken := s.byOrderID[inv.OrderID]
	if refTaken || orderTaken {
		return fmt.Errorf("invoice for order %q / ref %q: %w", inv.OrderID, inv.RefID, models.ErrDuplicate)
	}

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPaid
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	stored := *inv
	s.byID[inv.ID] = &stored
	s.byRefID[inv.RefID] = inv.ID
	s.byOrderID[inv.OrderID] = inv.ID
	return nil
}

// FindByRefID retrieves the invoice issued for a gateway reference
func (s *InvoiceStore) FindByRefID(_ context.Context, refID string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byRefID, refID)
}

// FindByOrderID retrieves the invoice issued for an order
func (s *InvoiceStore) FindByOrderID(_ context.Context, orderID string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byOrderID, orderID)
}

// FindByIDForUser retrieves an invoice only when it belongs to userID
func (s *InvoiceStore) FindByIDForUser(_ context.Context, id uuid.UUID, userID string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.byID[id]
	if !ok || inv.UserID != userID {
		return nil, fmt.Errorf("invoice: %w", models.ErrNotFound)
	}
	c := *inv
	return &c, nil
}

// Count reports how many invoices are stored
func (s *InvoiceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *InvoiceStore) lookup(index map[string]uuid.UUID, key string) (*models.Invoice, error) {
	id, ok := index[key]
	if !ok {
		return nil, fmt.Errorf("invoice: %w", models.ErrNotFound)
	}
	c := *s.byID[id]
	return &c, nil
}

var _ repository.InvoiceRepository = (*InvoiceStore)(nil)
