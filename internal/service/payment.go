package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gstyle/storefront-payments/internal/currency"
	"github.com/gstyle/storefront-payments/internal/gateway"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/repository"
	"golang.org/x/sync/singleflight"
)

// CallbackStatusOK is the only callback status that leads to verification.
const CallbackStatusOK = "OK"

const (
	msgTransactionNotFound = "تراکنش یافت نشد"
	msgAmountNotFound      = "مبلغ تراکنش یافت نشد"
	msgGatewayUnavailable  = "ارتباط با درگاه پرداخت برقرار نشد. لطفا دوباره تلاش کنید"
	msgInternal            = "خطای داخلی سرور"
)

var fromPending = []models.TransactionStatus{models.TransactionStatusPending}

// InitiateRequest is a checkout request. AmountToman is in major units.
type InitiateRequest struct {
	Customer    *models.Customer
	UserID      string
	OrderID     string
	Description string
	CallbackURL string
	AmountToman int64
}

// InitiateResult carries the gateway session and the stored pending transaction
type InitiateResult struct {
	Transaction *models.Transaction
	Authority   string
	PaymentURL  string
}

// Callback is the provider callback, delivered by redirect query or posted body.
// Amount is the client-echoed Toman value and is never used for verification
// unless the client-amount fallback is enabled and no stored amount exists.
type Callback struct {
	Authority string
	Status    string
	Amount    string
	OrderID   string
	UserID    string
}

// CallbackResult is the terminal (or still pending) outcome of a callback
type CallbackResult struct {
	Transaction *models.Transaction
	Invoice     *models.Invoice
	// Replayed is set when the transaction was already terminal and nothing was written.
	Replayed bool
}

// Success reports whether the transaction is completed.
func (r *CallbackResult) Success() bool {
	return r != nil && r.Transaction != nil && r.Transaction.Status == models.TransactionStatusCompleted
}

// RefID returns the settlement reference of a completed transaction.
func (r *CallbackResult) RefID() string {
	if r == nil || r.Transaction == nil || r.Transaction.RefID == nil {
		return ""
	}
	return *r.Transaction.RefID
}

// ReconcileOutcome is the result of re-verifying one pending transaction
type ReconcileOutcome struct {
	Err       error
	Authority string
	Status    models.TransactionStatus
}

// ReconcileReport summarises a ReconcilePending run
type ReconcileReport struct {
	Outcomes  []ReconcileOutcome
	Completed int
	Failed    int
	Pending   int
}

// PaymentService is the reconciliation engine. The store's conditional update
// decides every transition; the singleflight group only keeps one verify call
// per authority in flight inside this process.
type PaymentService struct {
	transactions repository.TransactionRepository
	carts        repository.CartRepository
	gateway      gateway.Gateway
	invoices     InvoiceProvider
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
	flights      singleflight.Group
	dispatches   sync.WaitGroup

	verifyTimeout time.Duration
	notifyTimeout time.Duration

	allowClientAmountFallback bool
}

// Defaults for PaymentOptions timeouts left at zero.
const (
	DefaultVerifyTimeout = 30 * time.Second
	DefaultNotifyTimeout = time.Minute
)

// PaymentOptions tunes engine behaviour
type PaymentOptions struct {
	// VerifyTimeout bounds one verify-and-record run, which outlives the
	// request that started it.
	VerifyTimeout time.Duration
	// NotifyTimeout bounds one background notification dispatch.
	NotifyTimeout time.Duration

	AllowClientAmountFallback bool
}

// NewPaymentService creates a new PaymentService. A nil notifier disables notifications.
func NewPaymentService(
	transactions repository.TransactionRepository,
	carts repository.CartRepository,
	gw gateway.Gateway,
	invoices InvoiceProvider,
	notifier Notifier,
	opts PaymentOptions,
	logger *slog.Logger,
) *PaymentService {
	if opts.VerifyTimeout <= 0 {
		opts.VerifyTimeout = DefaultVerifyTimeout
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}

	return &PaymentService{
		transactions:              transactions,
		carts:                     carts,
		gateway:                   gw,
		invoices:                  invoices,
		notifier:                  notifier,
		logger:                    logger,
		now:                       time.Now,
		verifyTimeout:             opts.VerifyTimeout,
		notifyTimeout:             opts.NotifyTimeout,
		allowClientAmountFallback: opts.AllowClientAmountFallback,
	}
}

// Initiate registers the payment with the gateway and stores it as pending.
func (s *PaymentService) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if err := validateInitiate(req); err != nil {
		return nil, err
	}

	amountRial, err := currency.TomanToRial(req.AmountToman)
	if err != nil {
		return nil, &ServiceError{Code: ErrCodeValidation, Message: msgInvalidAmount, Err: err}
	}

	session, err := s.gateway.CreatePaymentRequest(ctx, gateway.PaymentRequest{
		AmountRial:  amountRial,
		Description: req.Description,
		CallbackURL: req.CallbackURL,
		Metadata:    paymentMetadata(req),
	})
	if err != nil {
		return nil, s.gatewayError("payment request", err)
	}

	tx := &models.Transaction{
		Authority:   session.Authority,
		UserID:      optional(req.UserID),
		OrderID:     optional(req.OrderID),
		AmountRial:  amountRial,
		Status:      models.TransactionStatusPending,
		Gateway:     models.GatewayZarinPal,
		Description: req.Description,
		Customer:    req.Customer,
		Products:    s.snapshotCart(ctx, req.UserID),
		Metadata:    map[string]any{"callbackURL": req.CallbackURL},
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		s.logger.Error("failed to persist pending transaction",
			"authority", session.Authority,
			"error", err,
		)
		return nil, internalError(msgInternal, err)
	}

	s.logger.Info("payment initiated",
		"authority", tx.Authority,
		"amount_rial", tx.AmountRial,
		"user_id", req.UserID,
	)

	return &InitiateResult{
		Transaction: tx,
		Authority:   session.Authority,
		PaymentURL:  session.PaymentURL,
	}, nil
}

// HandleCallback reconciles a provider callback. Terminal transactions are
// returned as stored with Replayed set. A failed verification is a normal
// result (the transaction carries the failure); errors are reserved for
// validation, lookup, gateway transport and storage problems.
func (s *PaymentService) HandleCallback(ctx context.Context, cb Callback) (*CallbackResult, error) {
	if cb.Authority == "" {
		return nil, validationError(msgMissingParams)
	}

	if cb.Status != CallbackStatusOK {
		return s.cancel(ctx, cb.Authority)
	}

	// Every concurrent delivery shares one run, so the run must not die with
	// whichever caller happened to start it. Each caller still stops waiting
	// when its own context ends.
	flight := s.flights.DoChan(cb.Authority, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.verifyTimeout)
		defer cancel()
		return s.verify(runCtx, cb)
	})

	select {
	case <-ctx.Done():
		s.logger.Warn("caller left before verification finished",
			"authority", cb.Authority,
			"error", ctx.Err(),
		)
		return nil, &ServiceError{Code: ErrCodeGatewayUnavailable, Message: msgGatewayUnavailable, Err: ctx.Err()}
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*CallbackResult), nil
	}
}

// WaitForNotifications blocks until background notification dispatches finish or ctx ends.
func (s *PaymentService) WaitForNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.dispatches.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconcile re-runs verification for a single authority with its stored amount.
func (s *PaymentService) Reconcile(ctx context.Context, authority string) (*CallbackResult, error) {
	return s.HandleCallback(ctx, Callback{Authority: authority, Status: CallbackStatusOK})
}

// ReconcilePending re-verifies up to limit transactions left pending since before olderThan.
func (s *PaymentService) ReconcilePending(ctx context.Context, olderThan time.Time, limit int) (*ReconcileReport, error) {
	pending, err := s.transactions.ListPending(ctx, olderThan, limit)
	if err != nil {
		return nil, internalError("failed to list pending transactions", err)
	}

	report := &ReconcileReport{}
	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome := ReconcileOutcome{Authority: tx.Authority, Status: models.TransactionStatusPending}
		result, err := s.Reconcile(ctx, tx.Authority)
		if err != nil {
			outcome.Err = err
		} else {
			outcome.Status = result.Transaction.Status
		}

		switch outcome.Status {
		case models.TransactionStatusCompleted:
			report.Completed++
		case models.TransactionStatusFailed:
			report.Failed++
		case models.TransactionStatusPending:
			report.Pending++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	s.logger.Info("reconciliation run finished",
		"examined", len(pending),
		"completed", report.Completed,
		"failed", report.Failed,
		"pending", report.Pending,
	)

	return report, nil
}

func (s *PaymentService) cancel(ctx context.Context, authority string) (*CallbackResult, error) {
	tx, err := s.transactions.UpdateStatus(ctx, authority, fromPending, models.StatusPatch{
		Status: models.TransactionStatusCancelled,
	})
	switch {
	case err == nil:
		s.logger.Info("payment cancelled by user", "authority", authority)
		return &CallbackResult{Transaction: tx}, nil
	case errors.Is(err, models.ErrConflict):
		return s.replay(ctx, tx)
	case errors.Is(err, models.ErrNotFound):
		return nil, &ServiceError{Code: ErrCodeTransactionNotFound, Message: msgTransactionNotFound, Err: err}
	default:
		return nil, internalError(msgInternal, err)
	}
}

func (s *PaymentService) verify(ctx context.Context, cb Callback) (*CallbackResult, error) {
	tx, err := s.transactions.FindByAuthority(ctx, cb.Authority)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &ServiceError{Code: ErrCodeTransactionNotFound, Message: msgTransactionNotFound, Err: err}
	}
	if err != nil {
		return nil, internalError(msgInternal, err)
	}

	if tx.Status.IsTerminal() {
		return s.replay(ctx, tx)
	}

	amountRial, err := s.authoritativeAmount(tx, cb)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.VerifyPayment(ctx, amountRial, tx.Authority)
	if err != nil {
		return nil, s.gatewayError("verify", err)
	}

	switch r := result.(type) {
	case gateway.Verified:
		return s.complete(ctx, tx, cb, r.RefID)
	case gateway.AlreadyVerified:
		return s.alreadyVerified(ctx, tx, cb, r)
	case gateway.Rejected:
		return s.fail(ctx, tx, r)
	default:
		return nil, internalError(msgInternal, fmt.Errorf("unexpected verify result %T", result))
	}
}

// authoritativeAmount returns the stored amount. The client-echoed amount is
// only honoured when no stored amount exists and the fallback is enabled.
func (s *PaymentService) authoritativeAmount(tx *models.Transaction, cb Callback) (int64, error) {
	if tx.AmountRial > 0 {
		return tx.AmountRial, nil
	}

	if !s.allowClientAmountFallback || cb.Amount == "" {
		s.logger.Error("transaction has no stored amount", "authority", tx.Authority)
		return 0, &ServiceError{Code: ErrCodeAmountNotFound, Message: msgAmountNotFound}
	}

	amountRial, err := currency.ParseTomanToRial(cb.Amount)
	if err != nil {
		return 0, &ServiceError{Code: ErrCodeAmountNotFound, Message: msgAmountNotFound, Err: err}
	}

	s.logger.Warn("verifying with client-supplied amount",
		"authority", tx.Authority,
		"amount_rial", amountRial,
	)
	return amountRial, nil
}

func (s *PaymentService) complete(ctx context.Context, tx *models.Transaction, cb Callback, refID string) (*CallbackResult, error) {
	verifiedAt := s.now()

	userID := cb.UserID
	if userID == "" && tx.UserID != nil {
		userID = *tx.UserID
	}

	patch := models.StatusPatch{
		Status:     models.TransactionStatusCompleted,
		RefID:      &refID,
		VerifiedAt: &verifiedAt,
		UserID:     optional(cb.UserID),
		OrderID:    optional(cb.OrderID),
	}
	if len(tx.Products) == 0 {
		patch.Products = s.snapshotCart(ctx, userID)
	}

	updated, err := s.transactions.UpdateStatus(ctx, tx.Authority, fromPending, patch)
	switch {
	case errors.Is(err, models.ErrConflict):
		return s.replay(ctx, updated)
	case err != nil:
		// Settled at the provider but not recorded; a later reconcile sees code 101.
		s.logger.Error("failed to record completed payment",
			"authority", tx.Authority,
			"ref_id", refID,
			"error", err,
		)
		return nil, internalError(msgInternal, err)
	}

	s.logger.Info("payment completed",
		"authority", updated.Authority,
		"ref_id", refID,
		"amount_rial", updated.AmountRial,
	)

	result := &CallbackResult{Transaction: updated}

	inv, err := s.invoices.EnsureForTransaction(ctx, updated, refID, updated.Authority)
	if err != nil {
		s.logger.Error("failed to ensure invoice",
			"authority", updated.Authority,
			"ref_id", refID,
			"error", err,
		)
	}
	result.Invoice = inv

	s.dispatch(ctx, updated, refID)

	return result, nil
}

// dispatch sends the completion notifications in the background so a slow
// mail relay never delays the response for a settled payment.
func (s *PaymentService) dispatch(ctx context.Context, tx *models.Transaction, refID string) {
	if s.notifier == nil {
		return
	}

	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()

		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()
		s.notifier.Dispatch(notifyCtx, tx, refID, tx.Authority)
	}()
}

// alreadyVerified handles code 101. The provider settled this authority on an
// earlier call; with a ref id we can still record completion, otherwise the
// transaction stays pending unless another delivery already finished it.
func (s *PaymentService) alreadyVerified(ctx context.Context, tx *models.Transaction, cb Callback, r gateway.AlreadyVerified) (*CallbackResult, error) {
	if r.RefID != "" {
		return s.complete(ctx, tx, cb, r.RefID)
	}

	current, err := s.transactions.FindByAuthority(ctx, tx.Authority)
	if err != nil {
		return nil, internalError(msgInternal, err)
	}
	if current.Status.IsTerminal() {
		return s.replay(ctx, current)
	}

	s.logger.Warn("gateway reports already verified without ref id", "authority", tx.Authority)
	return nil, &ServiceError{Code: ErrCodeGatewayUnavailable, Message: msgGatewayUnavailable}
}

func (s *PaymentService) fail(ctx context.Context, tx *models.Transaction, r gateway.Rejected) (*CallbackResult, error) {
	code := r.Code
	message := r.Message

	updated, err := s.transactions.UpdateStatus(ctx, tx.Authority, fromPending, models.StatusPatch{
		Status:         models.TransactionStatusFailed,
		FailureCode:    &code,
		FailureMessage: &message,
	})
	switch {
	case errors.Is(err, models.ErrConflict):
		return s.replay(ctx, updated)
	case err != nil:
		return nil, internalError(msgInternal, err)
	}

	s.logger.Info("payment verification rejected",
		"authority", tx.Authority,
		"code", code,
	)

	return &CallbackResult{Transaction: updated}, nil
}

// replay returns the stored outcome of a terminal transaction without writing.
func (s *PaymentService) replay(ctx context.Context, tx *models.Transaction) (*CallbackResult, error) {
	result := &CallbackResult{Transaction: tx, Replayed: true}

	if tx.Status == models.TransactionStatusCompleted && tx.RefID != nil {
		inv, err := s.invoices.EnsureForTransaction(ctx, tx, *tx.RefID, tx.Authority)
		if err != nil {
			s.logger.Error("failed to ensure invoice on replay",
				"authority", tx.Authority,
				"error", err,
			)
		}
		result.Invoice = inv
	}

	s.logger.Debug("callback replayed", "authority", tx.Authority, "status", tx.Status)
	return result, nil
}

func (s *PaymentService) gatewayError(op string, err error) error {
	var rej *gateway.RejectionError
	switch {
	case errors.As(err, &rej):
		return &ServiceError{
			Code:        ErrCodeGatewayRejected,
			Message:     rej.Message,
			GatewayCode: rej.Code,
			Err:         err,
		}
	case gateway.IsTransport(err):
		s.logger.Warn("payment gateway unavailable", "op", op, "error", err)
		return &ServiceError{Code: ErrCodeGatewayUnavailable, Message: msgGatewayUnavailable, Err: err}
	default:
		return internalError(msgInternal, err)
	}
}

// snapshotCart copies the user's cart into line items. Cart read failures are
// logged and yield no snapshot.
func (s *PaymentService) snapshotCart(ctx context.Context, userID string) []models.LineItem {
	if userID == "" || s.carts == nil {
		return nil
	}

	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to read cart for snapshot", "user_id", userID, "error", err)
		return nil
	}

	lines := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.LineItem())
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

func paymentMetadata(req InitiateRequest) map[string]string {
	if req.Customer == nil && req.OrderID == "" {
		return nil
	}

	md := make(map[string]string)
	if c := req.Customer; c != nil {
		md["customer_name"] = c.FullName()
		md["customer_phone"] = c.Phone
		md["customer_email"] = c.Email
		md["customer_address"] = c.Address
		md["mobile"] = c.Phone
		md["email"] = c.Email
	}
	if req.OrderID != "" {
		md["order_id"] = req.OrderID
	}
	return md
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
