package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/gstyle/storefront-payments/internal/config"
	"github.com/gstyle/storefront-payments/internal/models"
)

// Notification kinds recorded in the journal.
const (
	KindInvoice    = "invoice"
	KindAdminOrder = "admin_order"
)

// Dispatcher sends the customer invoice and the admin order alert after a
// completed payment. Delivery is best effort: failures are logged and journaled
// and never reach the caller.
type Dispatcher struct {
	mailer      Mailer
	journal     Journal
	logger      *slog.Logger
	now         func() time.Time
	adminEmails []string
}

// NewDispatcher creates a new Dispatcher. A nil journal disables journaling.
func NewDispatcher(mailer Mailer, journal Journal, adminEmails []string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:      mailer,
		journal:     journal,
		logger:      logger,
		now:         time.Now,
		adminEmails: adminEmails,
	}
}

// Dispatch sends both notifications for a completed transaction.
func (d *Dispatcher) Dispatch(ctx context.Context, tx *models.Transaction, refID, authority string) {
	view := newOrderView(tx, refID, authority, d.now())

	d.send(ctx, KindInvoice, config.SplitList(tx.CustomerEmail()), subjectInvoice, templateInvoice, view)

	subject := subjectAdminOrder
	if tx.OrderID != nil && *tx.OrderID != "" {
		subject += " - " + *tx.OrderID
	}
	d.send(ctx, KindAdminOrder, d.adminEmails, subject, templateAdminOrder, view)
}

func (d *Dispatcher) send(ctx context.Context, kind string, to []string, subject, tmpl string, view orderView) {
	if len(to) == 0 {
		return
	}

	if !d.mailer.Configured() {
		d.logger.Warn("mailer not configured, skipping notification",
			"kind", kind,
			"authority", view.Authority,
		)
		return
	}

	html, err := render(tmpl, view)
	if err != nil {
		d.fail(kind, to, view, err)
		return
	}

	if err := d.mailer.Send(ctx, Message{To: to, Subject: subject, HTML: html}); err != nil {
		d.fail(kind, to, view, err)
		return
	}

	d.logger.Info("notification sent",
		"kind", kind,
		"authority", view.Authority,
		"recipients", len(to),
	)
}

func (d *Dispatcher) fail(kind string, to []string, view orderView, err error) {
	d.logger.Warn("notification failed",
		"kind", kind,
		"authority", view.Authority,
		"ref_id", view.RefID,
		"error", err,
	)

	if d.journal == nil {
		return
	}
	if jerr := d.journal.Record(Failure{
		Kind:       kind,
		Authority:  view.Authority,
		RefID:      view.RefID,
		Recipients: to,
		Error:      err.Error(),
		At:         d.now().UTC(),
	}); jerr != nil {
		d.logger.Warn("failed to journal notification failure",
			"kind", kind,
			"authority", view.Authority,
			"error", jerr,
		)
	}
}
