// Package gateway talks to the ZarinPal payment gateway. It owns endpoint
// selection and turns the provider's loosely shaped JSON into typed results.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gstyle/storefront-payments/internal/config"
)

// Response codes with meaning to callers outside this package.
const (
	CodeSuccess         = 100
	CodeAlreadyVerified = 101
)

// ErrInvalidRequest is returned before any network call when the request is malformed.
var ErrInvalidRequest = errors.New("invalid gateway request")

// Gateway is the payment provider contract used by the reconciliation engine.
// All amounts are in Rial.
type Gateway interface {
	CreatePaymentRequest(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
	VerifyPayment(ctx context.Context, amountRial int64, authority string) (VerifyResult, error)
}

// PaymentRequest is a payment intent sent to the provider
type PaymentRequest struct {
	Metadata    map[string]string
	Description string
	CallbackURL string
	AmountRial  int64
}

// PaymentSession is the provider's answer to a successful payment request
type PaymentSession struct {
	Authority  string
	PaymentURL string
}

// VerifyResult is the outcome of a verification call that reached the provider.
// It is one of Verified, Rejected or AlreadyVerified.
type VerifyResult interface {
	verifyResult()
}

// Verified means the provider settled the payment (code 100).
type Verified struct {
	RefID   string
	CardPAN string
	Fee     int64
}

// Rejected means the provider definitively refused the payment.
type Rejected struct {
	Message string
	Code    int
}

// AlreadyVerified means an earlier verify call already settled this authority (code 101).
type AlreadyVerified struct {
	RefID string
}

func (Verified) verifyResult()        {}
func (Rejected) verifyResult()        {}
func (AlreadyVerified) verifyResult() {}

// TransportError reports that the outcome at the provider is unknown: the
// request failed, timed out, or the response could not be understood.
type TransportError struct {
	Err error
	Op  string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("zarinpal %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectionError is returned by CreatePaymentRequest for non-success codes
type RejectionError struct {
	Message string
	Code    int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("zarinpal rejected request: code %d: %s", e.Code, e.Message)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// New returns the gateway selected by cfg.Mode.
func New(cfg *config.GatewayConfig, logger *slog.Logger) Gateway {
	if cfg.Mode == config.ModeSimulator {
		logger.Warn("zarinpal simulator enabled; no real payments will be processed")
		return NewSimulator(SimulatorOptions{
			FailureRate:  cfg.SimulatorFailRate,
			MinLatencyMS: cfg.SimulatorMinLatency,
			MaxLatencyMS: cfg.SimulatorMaxLatency,
		}, logger)
	}
	return NewClient(cfg, logger)
}

func validateRequest(req PaymentRequest) error {
	if req.AmountRial <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidRequest)
	}
	if req.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}
	if req.CallbackURL == "" {
		return fmt.Errorf("%w: callback url is required", ErrInvalidRequest)
	}
	return nil
}

var (
	_ Gateway = (*Client)(nil)
	_ Gateway = (*Simulator)(nil)
)
