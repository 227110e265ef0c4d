package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusRefunded  InvoiceStatus = "refunded"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceMetadata mirrors the identifiers the storefront attaches to every invoice
type InvoiceMetadata struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
}

// Invoice is derived once per completed transaction. OrderID and RefID are unique.
type Invoice struct {
	PaymentDate time.Time       `db:"payment_date"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	Metadata    InvoiceMetadata `db:"metadata"`
	UserID      string          `db:"user_id"`
	OrderID     string          `db:"order_id"`
	RefID       string          `db:"ref_id"`
	Authority   string          `db:"authority"`
	Status      InvoiceStatus   `db:"status"`
	AmountRial  int64           `db:"amount_rial"`
	ID          uuid.UUID       `db:"id"`
}
