package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gstyle/storefront-payments/internal/models"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	FindByRefID(ctx context.Context, refID string) (*models.Invoice, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Invoice, error)
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Invoice, error)
}

type invoiceRepository struct {
	db DBTX
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(database DBTX) InvoiceRepository {
	return &invoiceRepository{db: database}
}

const invoiceColumns = `
	id, user_id, order_id, amount_rial, ref_id, authority, payment_date,
	status, metadata, created_at, updated_at`

// Create inserts an invoice. A clash on order_id or ref_id returns models.ErrDuplicate.
func (r *invoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPaid
	}

	metadata, err := marshalJSON(inv.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice metadata: %w", err)
	}

	query := `
		INSERT INTO invoices (
			id, user_id, order_id, amount_rial, ref_id, authority, payment_date, status, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		inv.ID,
		inv.UserID,
		inv.OrderID,
		inv.AmountRial,
		inv.RefID,
		inv.Authority,
		inv.PaymentDate,
		inv.Status,
		metadata,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)

	if isUniqueViolation(err) {
		return fmt.Errorf("invoice for order %q / ref %q: %w", inv.OrderID, inv.RefID, models.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// FindByRefID retrieves the invoice issued for a gateway reference
func (r *invoiceRepository) FindByRefID(ctx context.Context, refID string) (*models.Invoice, error) {
	return r.findOne(ctx, "ref_id = $1", refID)
}

// FindByOrderID retrieves the invoice issued for an order
func (r *invoiceRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	return r.findOne(ctx, "order_id = $1", orderID)
}

// FindByIDForUser retrieves an invoice only when it belongs to userID
func (r *invoiceRepository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Invoice, error) {
	return r.findOne(ctx, "id = $1 AND user_id = $2", id, userID)
}

func (r *invoiceRepository) findOne(ctx context.Context, where string, args ...any) (*models.Invoice, error) {
	query := `SELECT` + invoiceColumns + ` FROM invoices WHERE ` + where

	var (
		inv         models.Invoice
		metadataRaw []byte
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&inv.ID,
		&inv.UserID,
		&inv.OrderID,
		&inv.AmountRial,
		&inv.RefID,
		&inv.Authority,
		&inv.PaymentDate,
		&inv.Status,
		&metadataRaw,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}

	if err := unmarshalJSON(metadataRaw, &inv.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoice metadata: %w", err)
	}

	return &inv, nil
}
