// Package models defines the persisted records of the payment flow.
package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the lifecycle state of a payment transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted ||
		s == TransactionStatusFailed ||
		s == TransactionStatusCancelled
}

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s.IsTerminal()
}

// GatewayZarinPal is the only gateway currently wired.
const GatewayZarinPal = "zarinpal"

// Customer is the purchaser snapshot captured when the payment is initiated
type Customer struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (c *Customer) FullName() string {
	if c == nil {
		return ""
	}
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// LineItem is a purchased product snapshot. Prices are in Toman.
type LineItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Note      string `json:"note,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Transaction is the persisted record of one gateway payment request, keyed by authority
type Transaction struct {
	CreatedAt      time.Time         `db:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at"`
	Metadata       map[string]any    `db:"metadata"`
	Customer       *Customer         `db:"customer"`
	UserID         *string           `db:"user_id"`
	OrderID        *string           `db:"order_id"`
	RefID          *string           `db:"ref_id"`
	FailureCode    *int              `db:"failure_code"`
	FailureMessage *string           `db:"failure_message"`
	VerifiedAt     *time.Time        `db:"verified_at"`
	Authority      string            `db:"authority"`
	Gateway        string            `db:"gateway"`
	Description    string            `db:"description"`
	Status         TransactionStatus `db:"status"`
	Products       []LineItem        `db:"products"`
	AmountRial     int64             `db:"amount_rial"`
	ID             uuid.UUID         `db:"id"`
}

// CustomerEmail returns the raw email field of the customer snapshot, if any.
func (t *Transaction) CustomerEmail() string {
	if t.Customer == nil {
		return ""
	}
	return t.Customer.Email
}

// StatusPatch carries the fields a conditional status update may write.
//
// RefID and VerifiedAt are only honoured when Status is completed. Products,
// UserID and OrderID only fill values that are still empty.
type StatusPatch struct {
	VerifiedAt     *time.Time
	RefID          *string
	UserID         *string
	OrderID        *string
	FailureCode    *int
	FailureMessage *string
	Status         TransactionStatus
	Products       []LineItem
}

// CartItem is a line of the purchaser's live cart, owned by the cart service
type CartItem struct {
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Slug      string `db:"slug"`
	Image     string `db:"image"`
	Size      string `db:"size"`
	Color     string `db:"color"`
	Note      string `db:"note"`
	Link      string `db:"link"`
	Price     int64  `db:"price"`
	Quantity  int    `db:"quantity"`
}

// LineItem converts a cart row into the immutable snapshot stored on a transaction.
func (c CartItem) LineItem() LineItem {
	return LineItem{
		ProductID: c.ProductID,
		Name:      c.Name,
		Slug:      c.Slug,
		Image:     c.Image,
		Price:     c.Price,
		Quantity:  c.Quantity,
		Size:      c.Size,
		Color:     c.Color,
		Note:      c.Note,
		Link:      c.Link,
	}
}

// IdempotencyKey tracks processed initiation requests so client retries replay the first response
type IdempotencyKey struct {
	CreatedAt      time.Time `db:"created_at"`
	Key            string    `db:"key"`
	RequestPath    string    `db:"request_path"`
	ResponseBody   string    `db:"response_body"`
	ResponseStatus int       `db:"response_status"`
}
