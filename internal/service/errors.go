package service

import (
	"errors"
	"fmt"
)

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
	// GatewayCode is the provider code for gateway_rejected errors.
	GatewayCode int
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeValidation          = "validation_error"
	ErrCodeTransactionNotFound = "transaction_not_found"
	ErrCodeAmountNotFound      = "amount_not_found"
	ErrCodeGatewayRejected     = "gateway_rejected"
	ErrCodeGatewayUnavailable  = "gateway_unavailable"
	ErrCodeInvoiceNotFound     = "invoice_not_found"
	ErrCodeInternalError       = "internal_error"
)

// ErrorCode returns the ServiceError code carried by err, or internal_error.
func ErrorCode(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrCodeInternalError
}

func validationError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeValidation, Message: message}
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeInternalError, Message: message, Err: err}
}
