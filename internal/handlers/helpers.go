package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gstyle/storefront-payments/internal/service"
)

const (
	msgInvalidBody   = "درخواست نامعتبر است"
	msgUnauthorized  = "ابتدا وارد حساب کاربری خود شوید"
	msgInvalidID     = "شناسه فاکتور نامعتبر است"
	msgInternalError = "خطای داخلی سرور"
)

type errorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	GatewayCode int    `json:"gatewayCode,omitempty"`
	Success     bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // client went away
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError renders err with the status mapped from its code.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	svcErr := extractServiceError(err)
	if svcErr == nil {
		h.logger.Error("unexpected handler error", "error", err)
		writeError(w, http.StatusInternalServerError, service.ErrCodeInternalError, msgInternalError)
		return
	}

	status := statusForCode(svcErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "code", svcErr.Code, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Error:       svcErr.Message,
		Code:        svcErr.Code,
		GatewayCode: svcErr.GatewayCode,
	})
}

func statusForCode(code string) int {
	switch code {
	case service.ErrCodeValidation, service.ErrCodeAmountNotFound:
		return http.StatusBadRequest
	case service.ErrCodeTransactionNotFound, service.ErrCodeInvoiceNotFound:
		return http.StatusNotFound
	case service.ErrCodeGatewayRejected:
		return http.StatusBadGateway
	case service.ErrCodeGatewayUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func extractServiceError(err error) *service.ServiceError {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}
