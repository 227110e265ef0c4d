// Package handlers implements the HTTP surface of the payments service.
package handlers

import (
	"log/slog"

	"github.com/gstyle/storefront-payments/internal/service"
)

// Handler serves the checkout, callback, invoice and health endpoints
type Handler struct {
	payments      service.PaymentProcessor
	invoices      service.InvoiceProvider
	healthChecker service.HealthChecker
	logger        *slog.Logger
	appURL        string
}

// NewHandler creates a new Handler with injected service dependencies.
// appURL is the storefront base that callback redirects point at.
func NewHandler(
	payments service.PaymentProcessor,
	invoices service.InvoiceProvider,
	healthChecker service.HealthChecker,
	appURL string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		payments:      payments,
		invoices:      invoices,
		healthChecker: healthChecker,
		logger:        logger,
		appURL:        appURL,
	}
}
