package gateway

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Simulator codes for unknown authorities and amount mismatches, as ZarinPal returns them.
const (
	codeNotFound       = -55
	codeAmountMismatch = -50
)

var errInjected = errors.New("simulated gateway failure")

// SimulatorOptions configures latency and failure injection
type SimulatorOptions struct {
	FailureRate  float64
	MinLatencyMS int
	MaxLatencyMS int
}

type simulatedPayment struct {
	refID      string
	amountRial int64
	verified   bool
}

// Simulator is an in-process stand-in for ZarinPal used in local development.
// Authorities are prefixed with TEST- and never leave the process.
type Simulator struct {
	payments map[string]*simulatedPayment
	logger   *slog.Logger
	opts     SimulatorOptions
	mu       sync.Mutex
	nextRef  int64
}

// NewSimulator creates a Simulator
func NewSimulator(opts SimulatorOptions, logger *slog.Logger) *Simulator {
	return &Simulator{
		payments: make(map[string]*simulatedPayment),
		logger:   logger,
		opts:     opts,
		nextRef:  100000,
	}
}

// CreatePaymentRequest records the payment and issues a TEST- authority.
func (s *Simulator) CreatePaymentRequest(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.disrupt(ctx, "request"); err != nil {
		return nil, err
	}

	authority := fmt.Sprintf("TEST-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])

	s.mu.Lock()
	s.payments[authority] = &simulatedPayment{amountRial: req.AmountRial}
	s.mu.Unlock()

	s.logger.Debug("simulated payment request", "authority", authority, "amount_rial", req.AmountRial)

	return &PaymentSession{
		Authority:  authority,
		PaymentURL: sandboxHost + startPayPath + authority,
	}, nil
}

// VerifyPayment settles a known authority once; later calls report AlreadyVerified.
func (s *Simulator) VerifyPayment(ctx context.Context, amountRial int64, authority string) (VerifyResult, error) {
	if amountRial <= 0 || authority == "" {
		return nil, fmt.Errorf("%w: amount and authority are required", ErrInvalidRequest)
	}
	if err := s.disrupt(ctx, "verify"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[authority]
	if !ok {
		return Rejected{Code: codeNotFound, Message: MessageFor(codeNotFound)}, nil
	}
	if p.amountRial != amountRial {
		return Rejected{Code: codeAmountMismatch, Message: MessageFor(codeAmountMismatch)}, nil
	}
	if p.verified {
		return AlreadyVerified{RefID: p.refID}, nil
	}

	s.nextRef++
	p.verified = true
	p.refID = strconv.FormatInt(s.nextRef, 10)

	return Verified{RefID: p.refID, CardPAN: "502229******5995"}, nil
}

// disrupt sleeps for the configured latency and may inject a transport failure.
func (s *Simulator) disrupt(ctx context.Context, op string) error {
	if err := sleepLatency(ctx, s.opts.MinLatencyMS, s.opts.MaxLatencyMS); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if shouldInjectFailure(s.opts.FailureRate) {
		s.logger.Debug("injecting simulated gateway failure", "op", op)
		return &TransportError{Op: op, Err: errInjected}
	}
	return nil
}

func sleepLatency(ctx context.Context, minMS, maxMS int) error {
	if minMS <= 0 && maxMS <= 0 {
		return ctx.Err()
	}

	sleepMS := minMS
	if rangeMS := maxMS - minMS; rangeMS > 0 {
		if offset, err := rand.Int(rand.Reader, big.NewInt(int64(rangeMS))); err == nil {
			sleepMS += int(offset.Int64())
		}
	}

	timer := time.NewTimer(time.Duration(sleepMS) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func shouldInjectFailure(failureRate float64) bool {
	if failureRate <= 0 {
		return false
	}
	if failureRate >= 1 {
		return true
	}

	const precision = 1000000
	randomNum, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		return false
	}

	threshold := int64(failureRate * precision)
	return randomNum.Int64() < threshold
}
