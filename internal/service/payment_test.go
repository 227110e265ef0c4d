package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gstyle/storefront-payments/internal/gateway"
	gwmocks "github.com/gstyle/storefront-payments/internal/gateway/mocks"
	"github.com/gstyle/storefront-payments/internal/models"
	"github.com/gstyle/storefront-payments/internal/repository/memory"
	"github.com/gstyle/storefront-payments/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingNotifier struct {
	refIDs []string
	mu     sync.Mutex
}

func (n *recordingNotifier) Dispatch(_ context.Context, _ *models.Transaction, refID, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refIDs = append(n.refIDs, refID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.refIDs)
}

type fixture struct {
	transactions *memory.TransactionStore
	invoices     *memory.InvoiceStore
	carts        *memory.CartStore
	gateway      *gwmocks.MockGateway
	notifier     *recordingNotifier
	svc          *PaymentService
}

func newFixture(t *testing.T, opts PaymentOptions) *fixture {
	t.Helper()

	f := &fixture{
		transactions: memory.NewTransactionStore(),
		invoices:     memory.NewInvoiceStore(),
		carts:        memory.NewCartStore(),
		gateway:      gwmocks.NewMockGateway(t),
		notifier:     &recordingNotifier{},
	}
	f.svc = NewPaymentService(
		f.transactions,
		f.carts,
		f.gateway,
		NewInvoiceService(f.invoices, testLogger()),
		f.notifier,
		opts,
		testLogger(),
	)
	return f
}

// seedPending stores a pending transaction as Initiate would have.
func (f *fixture) seedPending(t *testing.T, authority string, amountRial int64) {
	t.Helper()
	require.NoError(t, f.transactions.Create(context.Background(), &models.Transaction{
		Authority:   authority,
		UserID:      optional("user-1"),
		OrderID:     optional("order-" + authority),
		AmountRial:  amountRial,
		Description: "سفارش",
		Customer:    &models.Customer{FirstName: "Sara", LastName: "Ahmadi", Email: "sara@example.com"},
	}))
}

func (f *fixture) status(t *testing.T, authority string) *models.Transaction {
	t.Helper()
	tx, err := f.transactions.FindByAuthority(context.Background(), authority)
	require.NoError(t, err)
	return tx
}

func requireCode(t *testing.T, err error, code string) *ServiceError {
	t.Helper()
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, code, svcErr.Code)
	return svcErr
}

func okCallback(authority string) Callback {
	return Callback{Authority: authority, Status: CallbackStatusOK}
}

func TestPaymentService_Initiate(t *testing.T) {
	t.Run("converts toman to rial and stores pending", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})
		ctx := context.Background()
		f.carts.SetCart("user-1", []models.CartItem{{ProductID: "p1", Name: "Scarf", Price: 250000, Quantity: 1}})

		f.gateway.On("CreatePaymentRequest", ctx, mock.MatchedBy(func(req gateway.PaymentRequest) bool {
			return req.AmountRial == 2500000 &&
				req.Metadata["customer_email"] == "sara@example.com" &&
				req.Metadata["order_id"] == "order-1"
		})).Return(&gateway.PaymentSession{
			Authority:  "A1",
			PaymentURL: "https://sandbox.zarinpal.com/pg/StartPay/A1",
		}, nil)

		result, err := f.svc.Initiate(ctx, InitiateRequest{
			AmountToman: 250000,
			Description: "سفارش 1",
			CallbackURL: "https://shop.example/api/payment/zarinpal/verify-payment",
			UserID:      "user-1",
			OrderID:     "order-1",
			Customer: &models.Customer{
				FirstName: "Sara", LastName: "Ahmadi", Phone: "0912", Email: "sara@example.com", Address: "Tehran",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "A1", result.Authority)
		assert.Equal(t, "https://sandbox.zarinpal.com/pg/StartPay/A1", result.PaymentURL)

		stored := f.status(t, "A1")
		assert.Equal(t, models.TransactionStatusPending, stored.Status)
		assert.Equal(t, int64(2500000), stored.AmountRial)
		assert.Equal(t, "user-1", *stored.UserID)
		require.Len(t, stored.Products, 1)
		assert.Equal(t, "Scarf", stored.Products[0].Name)
		assert.Nil(t, stored.RefID)
	})

	t.Run("validation failure makes no gateway call", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})

		_, err := f.svc.Initiate(context.Background(), InitiateRequest{
			AmountToman: 250000,
			Description: "",
			CallbackURL: "https://shop.example/cb",
		})
		requireCode(t, err, ErrCodeValidation)
		f.gateway.AssertNotCalled(t, "CreatePaymentRequest", mock.Anything, mock.Anything)
	})

	t.Run("gateway rejection carries code and message", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})
		f.gateway.On("CreatePaymentRequest", mock.Anything, mock.Anything).
			Return(nil, &gateway.RejectionError{Code: -9, Message: gateway.MessageFor(-9)})

		_, err := f.svc.Initiate(context.Background(), InitiateRequest{
			AmountToman: 1000,
			Description: "d",
			CallbackURL: "https://shop.example/cb",
		})
		svcErr := requireCode(t, err, ErrCodeGatewayRejected)
		assert.Equal(t, -9, svcErr.GatewayCode)
		assert.Equal(t, gateway.MessageFor(-9), svcErr.Message)

		pending, listErr := f.transactions.ListPending(context.Background(), time.Now().Add(time.Hour), 10)
		require.NoError(t, listErr)
		assert.Empty(t, pending)
	})

	t.Run("gateway transport failure", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})
		f.gateway.On("CreatePaymentRequest", mock.Anything, mock.Anything).
			Return(nil, &gateway.TransportError{Op: "request", Err: context.DeadlineExceeded})

		_, err := f.svc.Initiate(context.Background(), InitiateRequest{
			AmountToman: 1000,
			Description: "d",
			CallbackURL: "https://shop.example/cb",
		})
		requireCode(t, err, ErrCodeGatewayUnavailable)
	})

	t.Run("store failure is an error", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})
		f.seedPending(t, "A1", 100)
		f.gateway.On("CreatePaymentRequest", mock.Anything, mock.Anything).
			Return(&gateway.PaymentSession{Authority: "A1", PaymentURL: "u"}, nil)

		_, err := f.svc.Initiate(context.Background(), InitiateRequest{
			AmountToman: 1000,
			Description: "d",
			CallbackURL: "https://shop.example/cb",
		})
		svcErr := requireCode(t, err, ErrCodeInternalError)
		assert.ErrorIs(t, svcErr, models.ErrDuplicate)
	})

	t.Run("cart read failure still initiates without snapshot", func(t *testing.T) {
		transactions := memory.NewTransactionStore()
		carts := mocks.NewMockCartRepository(t)
		gw := gwmocks.NewMockGateway(t)
		svc := NewPaymentService(transactions, carts, gw, nil, nil, PaymentOptions{}, testLogger())

		gw.On("CreatePaymentRequest", mock.Anything, mock.Anything).
			Return(&gateway.PaymentSession{Authority: "A9", PaymentURL: "u"}, nil)
		carts.On("ListByUser", mock.Anything, "user-9").Return(nil, errors.New("cart service down"))

		_, err := svc.Initiate(context.Background(), InitiateRequest{
			AmountToman: 1000,
			Description: "d",
			CallbackURL: "https://shop.example/cb",
			UserID:      "user-9",
		})
		require.NoError(t, err)

		stored, err := transactions.FindByAuthority(context.Background(), "A9")
		require.NoError(t, err)
		assert.Empty(t, stored.Products)
	})
}

func TestPaymentService_HandleCallback_Success(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	ctx := context.Background()
	f.seedPending(t, "A1", 2500000)
	f.carts.SetCart("user-1", []models.CartItem{{ProductID: "p1", Name: "Scarf", Price: 250000, Quantity: 1}})

	f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Return(gateway.Verified{RefID: "R1"}, nil).Once()

	first, err := f.svc.HandleCallback(ctx, okCallback("A1"))
	require.NoError(t, err)
	assert.True(t, first.Success())
	assert.False(t, first.Replayed)
	assert.Equal(t, "R1", first.RefID())
	require.NotNil(t, first.Invoice)
	assert.Equal(t, "R1", first.Invoice.RefID)
	assert.Equal(t, "order-A1", first.Invoice.OrderID)
	assert.Equal(t, "sara@example.com", first.Invoice.Metadata.Email)

	stored := f.status(t, "A1")
	assert.Equal(t, models.TransactionStatusCompleted, stored.Status)
	require.NotNil(t, stored.VerifiedAt)
	require.Len(t, stored.Products, 1, "completion back-fills an empty snapshot from the cart")

	t.Run("repeat delivery replays the stored result", func(t *testing.T) {
		again, err := f.svc.HandleCallback(ctx, okCallback("A1"))
		require.NoError(t, err)
		assert.True(t, again.Success())
		assert.True(t, again.Replayed)
		assert.Equal(t, "R1", again.RefID())
		require.NotNil(t, again.Invoice)
		assert.Equal(t, first.Invoice.ID, again.Invoice.ID)

		assert.Equal(t, 1, f.invoices.Count())
		require.NoError(t, f.svc.WaitForNotifications(ctx))
		assert.Equal(t, 1, f.notifier.count())
		f.gateway.AssertNumberOfCalls(t, "VerifyPayment", 1)
	})

	t.Run("later cancel cannot touch a completed transaction", func(t *testing.T) {
		result, err := f.svc.HandleCallback(ctx, Callback{Authority: "A1", Status: "NOK"})
		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.True(t, result.Success())

		stored := f.status(t, "A1")
		assert.Equal(t, models.TransactionStatusCompleted, stored.Status)
		assert.Equal(t, "R1", *stored.RefID)
	})
}

func TestPaymentService_HandleCallback_Cancel(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	ctx := context.Background()
	f.seedPending(t, "A1", 2500000)

	result, err := f.svc.HandleCallback(ctx, Callback{Authority: "A1", Status: "NOK"})
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, models.TransactionStatusCancelled, result.Transaction.Status)
	assert.Equal(t, models.TransactionStatusCancelled, f.status(t, "A1").Status)

	again, err := f.svc.HandleCallback(ctx, okCallback("A1"))
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, models.TransactionStatusCancelled, again.Transaction.Status)

	f.gateway.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_HandleCallback_Rejected(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	ctx := context.Background()
	f.seedPending(t, "A1", 2500000)

	f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Return(gateway.Rejected{Code: -22, Message: gateway.MessageFor(-22)}, nil).Once()

	result, err := f.svc.HandleCallback(ctx, okCallback("A1"))
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, models.TransactionStatusFailed, result.Transaction.Status)
	require.NotNil(t, result.Transaction.FailureCode)
	assert.Equal(t, -22, *result.Transaction.FailureCode)
	assert.Nil(t, result.Invoice)

	assert.Equal(t, 0, f.invoices.Count())
	require.NoError(t, f.svc.WaitForNotifications(ctx))
	assert.Equal(t, 0, f.notifier.count())

	replay, err := f.svc.HandleCallback(ctx, okCallback("A1"))
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, models.TransactionStatusFailed, replay.Transaction.Status)
}

func TestPaymentService_HandleCallback_TimeoutLeavesPending(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	ctx := context.Background()
	f.seedPending(t, "A1", 2500000)

	f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Return(nil, &gateway.TransportError{Op: "verify", Err: context.DeadlineExceeded}).Once()

	_, err := f.svc.HandleCallback(ctx, okCallback("A1"))
	requireCode(t, err, ErrCodeGatewayUnavailable)
	assert.Equal(t, models.TransactionStatusPending, f.status(t, "A1").Status)

	f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Return(gateway.Verified{RefID: "R1"}, nil).Once()

	result, err := f.svc.HandleCallback(ctx, okCallback("A1"))
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "R1", result.RefID())
}

func TestPaymentService_HandleCallback_AmountIntegrity(t *testing.T) {
	t.Run("client amount is ignored when a stored amount exists", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{AllowClientAmountFallback: true})
		f.seedPending(t, "A1", 2500000)
		f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
			Return(gateway.Verified{RefID: "R1"}, nil).Once()

		_, err := f.svc.HandleCallback(context.Background(), Callback{Authority: "A1", Status: CallbackStatusOK, Amount: "1"})
		require.NoError(t, err)
	})

	t.Run("missing stored amount is a hard stop by default", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})
		f.seedPending(t, "A1", 0)

		_, err := f.svc.HandleCallback(context.Background(), Callback{Authority: "A1", Status: CallbackStatusOK, Amount: "250000"})
		requireCode(t, err, ErrCodeAmountNotFound)
		f.gateway.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("opt-in fallback converts the client amount", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{AllowClientAmountFallback: true})
		f.seedPending(t, "A1", 0)
		f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
			Return(gateway.Verified{RefID: "R1"}, nil).Once()

		result, err := f.svc.HandleCallback(context.Background(), Callback{Authority: "A1", Status: CallbackStatusOK, Amount: "250000"})
		require.NoError(t, err)
		assert.True(t, result.Success())
	})

	t.Run("fallback without client amount still fails", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{AllowClientAmountFallback: true})
		f.seedPending(t, "A1", 0)

		_, err := f.svc.HandleCallback(context.Background(), okCallback("A1"))
		requireCode(t, err, ErrCodeAmountNotFound)
	})
}

func TestPaymentService_HandleCallback_AlreadyVerified(t *testing.T) {
	t.Run("with ref id completes", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})
		f.seedPending(t, "A1", 2500000)
		f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
			Return(gateway.AlreadyVerified{RefID: "R1"}, nil).Once()

		result, err := f.svc.HandleCallback(context.Background(), okCallback("A1"))
		require.NoError(t, err)
		assert.True(t, result.Success())
		assert.Equal(t, "R1", result.RefID())
	})

	t.Run("without ref id stays pending", func(t *testing.T) {
		f := newFixture(t, PaymentOptions{})
		f.seedPending(t, "A1", 2500000)
		f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
			Return(gateway.AlreadyVerified{}, nil).Once()

		_, err := f.svc.HandleCallback(context.Background(), okCallback("A1"))
		requireCode(t, err, ErrCodeGatewayUnavailable)
		assert.Equal(t, models.TransactionStatusPending, f.status(t, "A1").Status)
	})
}

func TestPaymentService_HandleCallback_LookupErrors(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	ctx := context.Background()

	_, err := f.svc.HandleCallback(ctx, Callback{Status: CallbackStatusOK})
	requireCode(t, err, ErrCodeValidation)

	_, err = f.svc.HandleCallback(ctx, okCallback("missing"))
	requireCode(t, err, ErrCodeTransactionNotFound)

	_, err = f.svc.HandleCallback(ctx, Callback{Authority: "missing", Status: "NOK"})
	requireCode(t, err, ErrCodeTransactionNotFound)
}

func TestPaymentService_HandleCallback_ConcurrentDeliveries(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	f.seedPending(t, "A1", 2500000)

	f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Run(func(mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
		Return(gateway.Verified{RefID: "R1"}, nil).Once()

	const deliveries = 20
	results := make([]*CallbackResult, deliveries)
	errs := make([]error, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.HandleCallback(context.Background(), okCallback("A1"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < deliveries; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "R1", results[i].RefID())
	}
	assert.Equal(t, 1, f.invoices.Count())
	require.NoError(t, f.svc.WaitForNotifications(context.Background()))
	assert.Equal(t, 1, f.notifier.count())
}

func TestPaymentService_HandleCallback_CallerLeavesMidVerify(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	f.seedPending(t, "A1", 2500000)

	started := make(chan struct{})
	release := make(chan struct{})
	f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Run(func(args mock.Arguments) {
			close(started)
			<-release
			assert.NoError(t, args.Get(0).(context.Context).Err(), "verification runs on its own context")
		}).
		Return(gateway.Verified{RefID: "R1"}, nil).Once()

	browserCtx, cancelBrowser := context.WithCancel(context.Background())
	browserErr := make(chan error, 1)
	go func() {
		_, err := f.svc.HandleCallback(browserCtx, okCallback("A1"))
		browserErr <- err
	}()
	<-started

	webhook := make(chan *CallbackResult, 1)
	webhookErr := make(chan error, 1)
	go func() {
		result, err := f.svc.HandleCallback(context.Background(), okCallback("A1"))
		webhook <- result
		webhookErr <- err
	}()

	cancelBrowser()
	requireCode(t, <-browserErr, ErrCodeGatewayUnavailable)

	close(release)
	result := <-webhook
	require.NoError(t, <-webhookErr)
	assert.True(t, result.Success())
	assert.Equal(t, "R1", result.RefID())

	assert.Equal(t, models.TransactionStatusCompleted, f.status(t, "A1").Status)
	assert.Equal(t, 1, f.invoices.Count())
	f.gateway.AssertNumberOfCalls(t, "VerifyPayment", 1)
}

// blockingNotifier holds every dispatch until released.
type blockingNotifier struct {
	release chan struct{}
	done    chan string
}

func (n *blockingNotifier) Dispatch(ctx context.Context, _ *models.Transaction, refID, _ string) {
	select {
	case <-n.release:
	case <-ctx.Done():
	}
	n.done <- refID
}

func TestPaymentService_HandleCallback_SlowNotifierDoesNotDelayResponse(t *testing.T) {
	transactions := memory.NewTransactionStore()
	gw := gwmocks.NewMockGateway(t)
	notifier := &blockingNotifier{release: make(chan struct{}), done: make(chan string, 1)}
	svc := NewPaymentService(transactions, memory.NewCartStore(), gw,
		NewInvoiceService(memory.NewInvoiceStore(), testLogger()), notifier, PaymentOptions{}, testLogger())
	ctx := context.Background()

	require.NoError(t, transactions.Create(ctx, &models.Transaction{Authority: "A1", AmountRial: 2500000, Description: "d"}))
	gw.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Return(gateway.Verified{RefID: "R1"}, nil).Once()

	start := time.Now()
	result, err := svc.HandleCallback(ctx, okCallback("A1"))
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Less(t, time.Since(start), time.Second)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.WaitForNotifications(waitCtx), context.DeadlineExceeded)

	close(notifier.release)
	require.NoError(t, svc.WaitForNotifications(ctx))
	assert.Equal(t, "R1", <-notifier.done)
}

func TestPaymentService_NotificationOutlivesRequestContext(t *testing.T) {
	transactions := memory.NewTransactionStore()
	gw := gwmocks.NewMockGateway(t)
	notifier := &blockingNotifier{release: make(chan struct{}), done: make(chan string, 1)}
	svc := NewPaymentService(transactions, memory.NewCartStore(), gw,
		NewInvoiceService(memory.NewInvoiceStore(), testLogger()), notifier,
		PaymentOptions{NotifyTimeout: 50 * time.Millisecond}, testLogger())

	require.NoError(t, transactions.Create(context.Background(), &models.Transaction{Authority: "A1", AmountRial: 100, Description: "d"}))
	gw.On("VerifyPayment", mock.Anything, int64(100), "A1").
		Return(gateway.Verified{RefID: "R1"}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.HandleCallback(ctx, okCallback("A1"))
	require.NoError(t, err)
	cancel()

	// The request context is gone; only the dispatch timeout ends the wait.
	select {
	case <-notifier.done:
		t.Fatal("dispatch ended with the request context")
	case <-time.After(10 * time.Millisecond):
	}
	require.NoError(t, svc.WaitForNotifications(context.Background()))
	assert.Equal(t, "R1", <-notifier.done)
}

func TestPaymentService_HandleCallback_RacingProcesses(t *testing.T) {
	// Two engines sharing one store stand in for separate server processes.
	f := newFixture(t, PaymentOptions{})
	f.seedPending(t, "A1", 2500000)

	otherGateway := gwmocks.NewMockGateway(t)
	other := NewPaymentService(
		f.transactions,
		f.carts,
		otherGateway,
		NewInvoiceService(f.invoices, testLogger()),
		f.notifier,
		PaymentOptions{},
		testLogger(),
	)

	f.gateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Return(gateway.Verified{RefID: "R1"}, nil).Maybe()
	otherGateway.On("VerifyPayment", mock.Anything, int64(2500000), "A1").
		Return(gateway.AlreadyVerified{RefID: "R1"}, nil).Maybe()

	var wg sync.WaitGroup
	var r1, r2 *CallbackResult
	var e1, e2 error
	wg.Add(2)
	go func() { defer wg.Done(); r1, e1 = f.svc.HandleCallback(context.Background(), okCallback("A1")) }()
	go func() { defer wg.Done(); r2, e2 = other.HandleCallback(context.Background(), okCallback("A1")) }()
	wg.Wait()

	require.NoError(t, e1)
	require.NoError(t, e2)
	assert.Equal(t, "R1", r1.RefID())
	assert.Equal(t, "R1", r2.RefID())
	assert.Equal(t, 1, f.invoices.Count())
	require.NoError(t, f.svc.WaitForNotifications(context.Background()))
	require.NoError(t, other.WaitForNotifications(context.Background()))
	assert.Equal(t, 1, f.notifier.count())
}

func TestPaymentService_ReconcilePending(t *testing.T) {
	f := newFixture(t, PaymentOptions{})
	ctx := context.Background()
	f.seedPending(t, "A1", 100)
	f.seedPending(t, "A2", 200)
	f.seedPending(t, "A3", 300)

	f.gateway.On("VerifyPayment", mock.Anything, int64(100), "A1").Return(gateway.Verified{RefID: "R1"}, nil)
	f.gateway.On("VerifyPayment", mock.Anything, int64(200), "A2").Return(gateway.Rejected{Code: -51, Message: "x"}, nil)
	f.gateway.On("VerifyPayment", mock.Anything, int64(300), "A3").
		Return(nil, &gateway.TransportError{Op: "verify", Err: errors.New("connection reset")})

	report, err := f.svc.ReconcilePending(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Pending)
	require.Len(t, report.Outcomes, 3)
	for _, outcome := range report.Outcomes {
		if outcome.Authority == "A3" {
			assert.Error(t, outcome.Err)
			assert.Equal(t, models.TransactionStatusPending, outcome.Status)
		}
	}
}

func TestPaymentService_Reconcile_StoreFailureAfterSettlement(t *testing.T) {
	txRepo := mocks.NewMockTransactionRepository(t)
	gw := gwmocks.NewMockGateway(t)
	invoices := mocks.NewMockInvoiceRepository(t)
	svc := NewPaymentService(txRepo, nil, gw, NewInvoiceService(invoices, testLogger()), nil, PaymentOptions{}, testLogger())
	ctx := context.Background()

	pending := &models.Transaction{
		Authority:  "A1",
		AmountRial: 100,
		Status:     models.TransactionStatusPending,
		Products:   []models.LineItem{{ProductID: "p1"}},
	}
	txRepo.On("FindByAuthority", mock.Anything, "A1").Return(pending, nil)
	gw.On("VerifyPayment", mock.Anything, int64(100), "A1").Return(gateway.Verified{RefID: "R1"}, nil)
	txRepo.On("UpdateStatus", mock.Anything, "A1", fromPending, mock.MatchedBy(func(p models.StatusPatch) bool {
		return p.Status == models.TransactionStatusCompleted && *p.RefID == "R1" && p.Products == nil
	})).Return(nil, errors.New("connection reset"))

	_, err := svc.Reconcile(ctx, "A1")
	requireCode(t, err, ErrCodeInternalError)
	invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCallbackResult_Accessors(t *testing.T) {
	var nilResult *CallbackResult
	assert.False(t, nilResult.Success())
	assert.Empty(t, nilResult.RefID())

	refID := "R1"
	done := &CallbackResult{Transaction: &models.Transaction{Status: models.TransactionStatusCompleted, RefID: &refID}}
	assert.True(t, done.Success())
	assert.Equal(t, "R1", done.RefID())
}
