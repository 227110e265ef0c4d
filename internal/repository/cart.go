package repository

import (
	"context"
	"fmt"

	"github.com/gstyle/storefront-payments/internal/models"
)

// CartRepository reads the purchaser's live cart. The cart service owns writes.
type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
}

type cartRepository struct {
	db DBTX
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(database DBTX) CartRepository {
	return &cartRepository{db: database}
}

// ListByUser returns the cart lines in display order. An empty cart is not an error.
func (r *cartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	query := `
		SELECT product_id, name, slug, image, size, color, note, link, price, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer func() {
		_ = rows.Close() //nolint:errcheck // read-only cursor
	}()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Slug,
			&item.Image,
			&item.Size,
			&item.Color,
			&item.Note,
			&item.Link,
			&item.Price,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}

	return items, nil
}
