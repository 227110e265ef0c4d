package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gstyle/storefront-payments/internal/api"
	"github.com/gstyle/storefront-payments/internal/middleware"
	"github.com/gstyle/storefront-payments/internal/service"
)

// Dependencies are the collaborators the router wires into handlers and middleware
type Dependencies struct {
	Payments    service.PaymentProcessor
	Invoices    service.InvoiceProvider
	Health      service.HealthChecker
	Idempotency middleware.IdempotencyStore
	AppURL      string
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(deps Dependencies, logger *slog.Logger) http.Handler {
	h := NewHandler(deps.Payments, deps.Invoices, deps.Health, deps.AppURL, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.IdentityMiddleware)
	r.Use(middleware.Idempotency(deps.Idempotency, logger))

	api.RegisterDocsRoutes(r)
	r.Get("/health", h.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/payment/zarinpal", func(r chi.Router) {
			r.Post("/create", h.CreatePayment)
			r.Get("/verify-payment", h.VerifyPaymentRedirect)
			r.Post("/verify-payment", h.VerifyPayment)
		})
		r.Get("/invoice/{id}", h.GetInvoice)
	})

	return r
}
