package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/repository"
)

const msgInvoiceNotFound = "فاکتور یافت نشد"

// InvoiceService derives exactly one invoice per completed, attributable transaction
type InvoiceService struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoices repository.InvoiceRepository, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{
		invoices: invoices,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureForTransaction returns the invoice for refID or the transaction's order,
// creating it when neither exists. Transactions without both a user and an order
// get no invoice and no error.
func (s *InvoiceService) EnsureForTransaction(ctx context.Context, tx *models.Transaction, refID, authority string) (*models.Invoice, error) {
	if tx == nil || isBlank(tx.UserID) || isBlank(tx.OrderID) {
		return nil, nil
	}

	existing, err := s.findExisting(ctx, refID, *tx.OrderID)
	if err != nil || existing != nil {
		return existing, err
	}

	paidAt := s.now()
	if tx.VerifiedAt != nil {
		paidAt = *tx.VerifiedAt
	}

	inv := &models.Invoice{
		UserID:      *tx.UserID,
		OrderID:     *tx.OrderID,
		AmountRial:  tx.AmountRial,
		RefID:       refID,
		Authority:   authority,
		PaymentDate: paidAt,
		Status:      models.InvoiceStatusPaid,
		Metadata: models.InvoiceMetadata{
			OrderID: *tx.OrderID,
			UserID:  *tx.UserID,
			Email:   tx.CustomerEmail(),
		},
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		if !errors.Is(err, models.ErrDuplicate) {
			return nil, internalError("failed to create invoice", err)
		}

		// A concurrent delivery created it between the lookup and the insert.
		existing, findErr := s.findExisting(ctx, refID, *tx.OrderID)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, internalError("invoice conflict without a matching invoice", err)
		}
		return existing, nil
	}

	s.logger.Info("invoice created",
		"invoice_id", inv.ID,
		"order_id", inv.OrderID,
		"ref_id", inv.RefID,
	)

	return inv, nil
}

// GetInvoice returns the invoice only if it belongs to userID
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID, userID string) (*models.Invoice, error) {
	if userID == "" {
		return nil, &ServiceError{Code: ErrCodeInvoiceNotFound, Message: msgInvoiceNotFound}
	}

	inv, err := s.invoices.FindByIDForUser(ctx, invoiceID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &ServiceError{Code: ErrCodeInvoiceNotFound, Message: msgInvoiceNotFound}
	}
	if err != nil {
		return nil, internalError("failed to load invoice", err)
	}

	return inv, nil
}

func (s *InvoiceService) findExisting(ctx context.Context, refID, orderID string) (*models.Invoice, error) {
	inv, err := s.invoices.FindByRefID(ctx, refID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, internalError("failed to look up invoice by ref id", err)
	}

	inv, err = s.invoices.FindByOrderID(ctx, orderID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, internalError("failed to look up invoice by order id", err)
	}

	return nil, nil
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
