package notify

import (
	"testing"
	"time"

	"github.com/gstyle/storefront-payments/internal/currency"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction() *models.Transaction {
	orderID := "order-1"
	verifiedAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	return &models.Transaction{
		Authority:  "A1",
		OrderID:    &orderID,
		AmountRial: 5500000,
		VerifiedAt: &verifiedAt,
		Customer: &models.Customer{
			FirstName: "Sara",
			LastName:  "Ahmadi",
			Email:     "sara@example.com",
			Phone:     "09120000000",
			Address:   "Tehran",
		},
		Products: []models.LineItem{
			{Name: "Scarf", Price: 250000, Quantity: 2, Color: "red"},
			{Name: "Bag", Price: 50000},
		},
	}
}

func TestNewOrderView(t *testing.T) {
	v := newOrderView(testTransaction(), "R1", "A1", time.Now())

	assert.Equal(t, "order-1", v.OrderID)
	assert.Equal(t, "2026-03-01 10:30", v.Date)
	assert.Equal(t, int64(550000), v.TotalToman)
	require.Len(t, v.Items, 2)
	assert.Equal(t, int64(500000), v.Items[0].TotalToman)
	assert.Equal(t, 1, v.Items[1].Quantity, "missing quantity counts as one")
	assert.Equal(t, int64(550000), v.ItemsToman)
}

func TestNewOrderView_Unattributed(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	v := newOrderView(&models.Transaction{AmountRial: 10}, "R1", "A1", now)

	assert.Equal(t, "نامشخص", v.OrderID)
	assert.Equal(t, "2026-03-02 08:00", v.Date)
	assert.Empty(t, v.Items)
}

func TestRender(t *testing.T) {
	view := newOrderView(testTransaction(), "R1", "A1", time.Now())

	t.Run("invoice", func(t *testing.T) {
		html, err := render(templateInvoice, view)
		require.NoError(t, err)

		assert.Contains(t, html, "order-1")
		assert.Contains(t, html, "R1")
		assert.Contains(t, html, "Sara Ahmadi")
		assert.Contains(t, html, "Scarf")
		assert.Contains(t, html, "رنگ: red")
		assert.Contains(t, html, currency.FormatToman(550000))
		assert.Contains(t, html, currency.FormatToman(500000))
	})

	t.Run("admin alert", func(t *testing.T) {
		html, err := render(templateAdminOrder, view)
		require.NoError(t, err)

		assert.Contains(t, html, "سفارش جدید دریافت شد")
		assert.Contains(t, html, "09120000000")
		assert.Contains(t, html, "Bag")
	})

	t.Run("escapes customer input", func(t *testing.T) {
		tx := testTransaction()
		tx.Customer.FirstName = "<script>alert(1)</script>"

		html, err := render(templateInvoice, newOrderView(tx, "R1", "A1", time.Now()))
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := render("missing.html", view)
		assert.Error(t, err)
	})
}
