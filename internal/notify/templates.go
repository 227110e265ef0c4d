package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gstyle/storefront-payments/internal/currency"
	"github.com/gstyle/storefront-payments/internal/models"
)

const (
	subjectInvoice    = "فاکتور پرداخت سفارش"
	subjectAdminOrder = "سفارش جدید دریافت شد"

	templateInvoice    = "invoice.html"
	templateAdminOrder = "admin_order.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{"toman": currency.FormatToman}).
		ParseFS(templateFS, "templates/*.html"),
)

type lineView struct {
	Name       string
	Size       string
	Color      string
	Note       string
	Quantity   int
	UnitToman  int64
	TotalToman int64
}

// orderView is the data shared by the invoice and admin templates
type orderView struct {
	Customer   *models.Customer
	OrderID    string
	Authority  string
	RefID      string
	Date       string
	Items      []lineView
	ItemsToman int64
	TotalToman int64
}

func newOrderView(tx *models.Transaction, refID, authority string, now time.Time) orderView {
	paidAt := now
	if tx.VerifiedAt != nil {
		paidAt = *tx.VerifiedAt
	}

	orderID := "نامشخص"
	if tx.OrderID != nil && *tx.OrderID != "" {
		orderID = *tx.OrderID
	}

	v := orderView{
		Customer:   tx.Customer,
		OrderID:    orderID,
		Authority:  authority,
		RefID:      refID,
		Date:       paidAt.Format("2006-01-02 15:04"),
		TotalToman: currency.RialToToman(tx.AmountRial),
	}

	for _, p := range tx.Products {
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		line := lineView{
			Name:       p.Name,
			Size:       p.Size,
			Color:      p.Color,
			Note:       p.Note,
			Quantity:   qty,
			UnitToman:  p.Price,
			TotalToman: p.Price * int64(qty),
		}
		v.Items = append(v.Items, line)
		v.ItemsToman += line.TotalToman
	}

	return v
}

func render(name string, data orderView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
