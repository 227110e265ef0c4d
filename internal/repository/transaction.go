// Package repository provides the Postgres data access layer for the payments service.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/lib/pq"
)

// TransactionRepository defines the interface for transaction data access
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByAuthority(ctx context.Context, authority string) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, authority string, from []models.TransactionStatus, patch models.StatusPatch) (*models.Transaction, error)
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*models.Transaction, error)
}

// transactionRepository implements TransactionRepository
type transactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(database DBTX) TransactionRepository {
	return &transactionRepository{db: database}
}

const transactionColumns = `
	id, authority, user_id, order_id, amount_rial, status, gateway, description,
	ref_id, customer, products, metadata, failure_code, failure_message,
	verified_at, created_at, updated_at`

// Create inserts a new transaction. A clash on authority returns models.ErrDuplicate.
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Status == "" {
		tx.Status = models.TransactionStatusPending
	}
	if tx.Gateway == "" {
		tx.Gateway = models.GatewayZarinPal
	}

	customer, err := marshalJSON(tx.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}
	products, err := marshalJSON(tx.Products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	metadata, err := marshalJSON(tx.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO transactions (
			id, authority, user_id, order_id, amount_rial, status, gateway,
			description, customer, products, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11::jsonb)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		tx.ID,
		tx.Authority,
		tx.UserID,
		tx.OrderID,
		tx.AmountRial,
		tx.Status,
		tx.Gateway,
		tx.Description,
		customer,
		products,
		metadata,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)

	if isUniqueViolation(err) {
		return fmt.Errorf("transaction with authority %q: %w", tx.Authority, models.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// FindByAuthority retrieves a transaction by its gateway authority
func (r *transactionRepository) FindByAuthority(ctx context.Context, authority string) (*models.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE authority = $1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, authority))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %q: %w", authority, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction by authority: %w", err)
	}

	return tx, nil
}

// UpdateStatus applies patch only while the stored status is one of from.
//
// When nothing matched, the current record is returned together with
// models.ErrConflict so the caller can short-circuit to the stored outcome.
func (r *transactionRepository) UpdateStatus(
	ctx context.Context,
	authority string,
	from []models.TransactionStatus,
	patch models.StatusPatch,
) (*models.Transaction, error) {
	if !patch.Status.Valid() {
		return nil, fmt.Errorf("invalid target status %q", patch.Status)
	}

	var refID sql.NullString
	var verifiedAt sql.NullTime
	if patch.Status == models.TransactionStatusCompleted {
		if patch.RefID == nil || patch.VerifiedAt == nil {
			return nil, errors.New("completing a transaction requires ref id and verified at")
		}
		refID = sql.NullString{String: *patch.RefID, Valid: true}
		verifiedAt = sql.NullTime{Time: *patch.VerifiedAt, Valid: true}
	}

	var products sql.NullString
	if len(patch.Products) > 0 {
		raw, err := json.Marshal(patch.Products)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal products: %w", err)
		}
		products = sql.NullString{String: string(raw), Valid: true}
	}

	query := `
		UPDATE transactions
		SET status = $3::text,
		    ref_id = CASE WHEN $3::text = 'completed' THEN $4 ELSE ref_id END,
		    verified_at = CASE WHEN $3::text = 'completed' THEN $5::timestamptz ELSE verified_at END,
		    products = CASE
		        WHEN products IS NULL OR products = '[]'::jsonb OR products = 'null'::jsonb
		        THEN COALESCE($6::jsonb, products)
		        ELSE products
		    END,
		    user_id = COALESCE(user_id, $7),
		    order_id = COALESCE(order_id, $8),
		    failure_code = COALESCE($9, failure_code),
		    failure_message = COALESCE($10, failure_message),
		    updated_at = NOW()
		WHERE authority = $1 AND status = ANY($2)
		RETURNING` + transactionColumns

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		authority,
		pq.Array(statusStrings(from)),
		string(patch.Status),
		refID,
		verifiedAt,
		products,
		patch.UserID,
		patch.OrderID,
		patch.FailureCode,
		patch.FailureMessage,
	))
	if err == nil {
		return tx, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}

	current, findErr := r.FindByAuthority(ctx, authority)
	if findErr != nil {
		return nil, findErr
	}
	return current, fmt.Errorf("transaction %q is %s: %w", authority, current.Status, models.ErrConflict)
}

// ListPending returns pending transactions created before olderThan, oldest first.
// A limit of zero or less returns every match.
func (r *transactionRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*models.Transaction, error) {
	query := `SELECT` + transactionColumns + `
		FROM transactions
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	// LIMIT NULL means no limit.
	rowLimit := sql.NullInt64{Int64: int64(limit), Valid: limit > 0}

	rows, err := r.db.QueryContext(ctx, query, olderThan, rowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	defer func() {
		_ = rows.Close() //nolint:errcheck // read-only cursor
	}()

	var txs []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending transactions: %w", err)
	}

	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx                                    models.Transaction
		userID, orderID, refID, failureMsg    sql.NullString
		failureCode                           sql.NullInt64
		verifiedAt                            sql.NullTime
		customerRaw, productsRaw, metadataRaw []byte
	)

	err := row.Scan(
		&tx.ID,
		&tx.Authority,
		&userID,
		&orderID,
		&tx.AmountRial,
		&tx.Status,
		&tx.Gateway,
		&tx.Description,
		&refID,
		&customerRaw,
		&productsRaw,
		&metadataRaw,
		&failureCode,
		&failureMsg,
		&verifiedAt,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.UserID = nullStringPtr(userID)
	tx.OrderID = nullStringPtr(orderID)
	tx.RefID = nullStringPtr(refID)
	tx.FailureMessage = nullStringPtr(failureMsg)
	if failureCode.Valid {
		code := int(failureCode.Int64)
		tx.FailureCode = &code
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		tx.VerifiedAt = &t
	}

	if err := unmarshalJSON(customerRaw, &tx.Customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	if err := unmarshalJSON(productsRaw, &tx.Products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}
	if err := unmarshalJSON(metadataRaw, &tx.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &tx, nil
}

func statusStrings(statuses []models.TransactionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
