package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingTransaction(authority string) *models.Transaction {
	return &models.Transaction{
		Authority:   authority,
		UserID:      strPtr("user-1"),
		OrderID:     strPtr("order-" + authority),
		AmountRial:  2500000,
		Description: "سفارش " + authority,
		Customer: &models.Customer{
			FirstName: "Sara",
			LastName:  "Ahmadi",
			Phone:     "09120000000",
			Email:     "sara@example.com",
			Address:   "Tehran",
		},
		Products: []models.LineItem{
			{ProductID: "p1", Name: "Scarf", Price: 250000, Quantity: 1},
		},
		Metadata: map[string]any{"source": "checkout"},
	}
}

func TestTransactionRepository_Create(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	repo := NewTransactionRepository(database)
	ctx := context.Background()

	tests := []struct {
		tx   *models.Transaction
		name string
	}{
		{
			name: "full snapshot",
			tx:   pendingTransaction("A-create-1"),
		},
		{
			name: "anonymous without snapshots",
			tx: &models.Transaction{
				Authority:   "A-create-2",
				AmountRial:  100,
				Description: "guest",
			},
		},
		{
			name: "pre-set id",
			tx: &models.Transaction{
				ID:          uuid.New(),
				Authority:   "A-create-3",
				AmountRial:  100,
				Description: "preset",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalID := tt.tx.ID

			require.NoError(t, repo.Create(ctx, tt.tx))
			assert.NotEqual(t, uuid.Nil, tt.tx.ID)
			if originalID != uuid.Nil {
				assert.Equal(t, originalID, tt.tx.ID)
			}
			assert.Equal(t, models.TransactionStatusPending, tt.tx.Status)
			assert.False(t, tt.tx.CreatedAt.IsZero())

			got, err := repo.FindByAuthority(ctx, tt.tx.Authority)
			require.NoError(t, err)

			assert.Equal(t, tt.tx.ID, got.ID)
			assert.Equal(t, tt.tx.AmountRial, got.AmountRial)
			assert.Equal(t, models.GatewayZarinPal, got.Gateway)
			assert.Equal(t, tt.tx.Customer, got.Customer)
			assert.Equal(t, tt.tx.Products, got.Products)
			assert.Equal(t, tt.tx.UserID, got.UserID)
			assert.Nil(t, got.RefID)
			assert.Nil(t, got.VerifiedAt)
		})
	}
}

func TestTransactionRepository_Create_DuplicateAuthority(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	repo := NewTransactionRepository(database)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingTransaction("A-dup")))

	err := repo.Create(ctx, pendingTransaction("A-dup"))
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestTransactionRepository_FindByAuthority_NotFound(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	repo := NewTransactionRepository(database)

	_, err := repo.FindByAuthority(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTransactionRepository_UpdateStatus(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	repo := NewTransactionRepository(database)
	ctx := context.Background()
	pending := []models.TransactionStatus{models.TransactionStatusPending}

	t.Run("completes pending and sets ref id once", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, pendingTransaction("A-complete")))
		verifiedAt := time.Now().UTC().Truncate(time.Microsecond)

		got, err := repo.UpdateStatus(ctx, "A-complete", pending, models.StatusPatch{
			Status:     models.TransactionStatusCompleted,
			RefID:      strPtr("R1"),
			VerifiedAt: timePtr(verifiedAt),
		})
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCompleted, got.Status)
		require.NotNil(t, got.RefID)
		assert.Equal(t, "R1", *got.RefID)
		require.NotNil(t, got.VerifiedAt)
		assert.True(t, verifiedAt.Equal(*got.VerifiedAt))

		again, err := repo.UpdateStatus(ctx, "A-complete", pending, models.StatusPatch{
			Status:     models.TransactionStatusCompleted,
			RefID:      strPtr("R2"),
			VerifiedAt: timePtr(time.Now()),
		})
		assert.ErrorIs(t, err, models.ErrConflict)
		require.NotNil(t, again)
		assert.Equal(t, "R1", *again.RefID)
	})

	t.Run("terminal state rejects cancellation", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, "A-complete", pending, models.StatusPatch{
			Status: models.TransactionStatusCancelled,
		})
		assert.ErrorIs(t, err, models.ErrConflict)

		current, err := repo.FindByAuthority(ctx, "A-complete")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCompleted, current.Status)
	})

	t.Run("failure records gateway code", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, pendingTransaction("A-fail")))

		got, err := repo.UpdateStatus(ctx, "A-fail", pending, models.StatusPatch{
			Status:         models.TransactionStatusFailed,
			FailureCode:    intPtr(-22),
			FailureMessage: strPtr("تراکنش ناموفق می‌باشد"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusFailed, got.Status)
		assert.Nil(t, got.RefID)
		require.NotNil(t, got.FailureCode)
		assert.Equal(t, -22, *got.FailureCode)
	})

	t.Run("backfill keeps existing values", func(t *testing.T) {
		tx := &models.Transaction{Authority: "A-backfill", AmountRial: 100, Description: "d", UserID: strPtr("owner")}
		require.NoError(t, repo.Create(ctx, tx))

		got, err := repo.UpdateStatus(ctx, "A-backfill", pending, models.StatusPatch{
			Status:     models.TransactionStatusCompleted,
			RefID:      strPtr("R-backfill"),
			VerifiedAt: timePtr(time.Now()),
			UserID:     strPtr("someone-else"),
			OrderID:    strPtr("order-9"),
			Products:   []models.LineItem{{ProductID: "p9", Name: "Hat", Price: 10, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, "owner", *got.UserID)
		assert.Equal(t, "order-9", *got.OrderID)
		assert.Len(t, got.Products, 1)
	})

	t.Run("completion requires ref id", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, "A-fail", pending, models.StatusPatch{Status: models.TransactionStatusCompleted})
		assert.Error(t, err)
	})

	t.Run("unknown authority", func(t *testing.T) {
		_, err := repo.UpdateStatus(ctx, "nope", pending, models.StatusPatch{Status: models.TransactionStatusCancelled})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestTransactionRepository_UpdateStatus_ConcurrentSingleWinner(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	repo := NewTransactionRepository(database)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, pendingTransaction("A-race")))

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			patch := models.StatusPatch{Status: models.TransactionStatusCancelled}
			if i%2 == 0 {
				patch = models.StatusPatch{
					Status:     models.TransactionStatusCompleted,
					RefID:      strPtr("R-race"),
					VerifiedAt: timePtr(time.Now()),
				}
			}
			if _, err := repo.UpdateStatus(ctx, "A-race", []models.TransactionStatus{models.TransactionStatusPending}, patch); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestTransactionRepository_ListPending(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	repo := NewTransactionRepository(database)
	ctx := context.Background()

	for _, authority := range []string{"A-p1", "A-p2", "A-done"} {
		require.NoError(t, repo.Create(ctx, pendingTransaction(authority)))
	}
	_, err := repo.UpdateStatus(ctx, "A-done", []models.TransactionStatus{models.TransactionStatusPending},
		models.StatusPatch{Status: models.TransactionStatusCancelled})
	require.NoError(t, err)

	got, err := repo.ListPending(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A-p1", got[0].Authority)

	limited, err := repo.ListPending(ctx, time.Now().Add(time.Minute), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	unbounded, err := repo.ListPending(ctx, time.Now().Add(time.Minute), 0)
	require.NoError(t, err)
	assert.Len(t, unbounded, 2, "a non-positive limit returns every match")

	none, err := repo.ListPending(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func intPtr(i int) *int {
	return &i
}
