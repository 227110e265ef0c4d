package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gstyle/storefront-payments/internal/models"
)

// HealthChecker validates system health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// PaymentProcessor drives the payment lifecycle from initiation to reconciliation
type PaymentProcessor interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	HandleCallback(ctx context.Context, cb Callback) (*CallbackResult, error)
	Reconcile(ctx context.Context, authority string) (*CallbackResult, error)
	ReconcilePending(ctx context.Context, olderThan time.Time, limit int) (*ReconcileReport, error)
}

// InvoiceProvider issues and serves invoices for completed transactions
type InvoiceProvider interface {
	EnsureForTransaction(ctx context.Context, tx *models.Transaction, refID, authority string) (*models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID uuid.UUID, userID string) (*models.Invoice, error)
}

// Notifier sends the post-completion emails. Implementations handle their own failures.
type Notifier interface {
	Dispatch(ctx context.Context, tx *models.Transaction, refID, authority string)
}

// Ensure concrete types implement interfaces
var (
	_ PaymentProcessor = (*PaymentService)(nil)
	_ InvoiceProvider  = (*InvoiceService)(nil)
)
