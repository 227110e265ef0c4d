package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gstyle/storefront-payments/internal/middleware"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/service"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type invoiceBody struct {
	PaymentDate time.Time              `json:"paymentDate"`
	CreatedAt   time.Time              `json:"createdAt"`
	Metadata    models.InvoiceMetadata `json:"metadata"`
	ID          string                 `json:"id"`
	OrderID     string                 `json:"orderId"`
	RefID       string                 `json:"refId"`
	Authority   string                 `json:"authority"`
	Status      models.InvoiceStatus   `json:"status"`
	Amount      int64                  `json:"amount"`
}

type invoiceResponse struct {
	Invoice invoiceBody `json:"invoice"`
	Success bool        `json:"success"`
}

// GetInvoice handles GET /api/invoice/{id}. Only the owner may read an invoice.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", msgUnauthorized)
		return
	}

	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, service.ErrCodeValidation, msgInvalidID)
		return
	}

	inv, err := h.invoices.GetInvoice(r.Context(), id, identity.UserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoiceResponse{
		Success: true,
		Invoice: invoiceBody{
			ID:          inv.ID.String(),
			OrderID:     inv.OrderID,
			Amount:      inv.AmountRial,
			RefID:       inv.RefID,
			Authority:   inv.Authority,
			PaymentDate: inv.PaymentDate,
			Status:      inv.Status,
			Metadata:    inv.Metadata,
			CreatedAt:   inv.CreatedAt,
		},
	})
}
