package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gstyle/storefront-payments/internal/config"
	"github.com/gstyle/storefront-payments/internal/db"
	"github.com/gstyle/storefront-payments/internal/gateway"
	"github.com/gstyle/storefront-payments/internal/notify"
	"github.com/gstyle/storefront-payments/internal/repository"
	"github.com/gstyle/storefront-payments/internal/repository/memory"
	"github.com/gstyle/storefront-payments/internal/service"
)

// app holds the wired collaborators shared by every subcommand.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	database    *db.DB
	idempotency repository.IdempotencyRepository
	payments    *service.PaymentService
	invoices    *service.InvoiceService
	journal     *notify.BoltJournal
	health      service.HealthChecker
}

type appOptions struct {
	migrate bool
}

// alwaysHealthy backs /health when the service runs on in-memory stores.
type alwaysHealthy struct{}

func (alwaysHealthy) PingContext(ctx context.Context) error { return ctx.Err() }

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	var (
		transactions repository.TransactionRepository
		invoices     repository.InvoiceRepository
		carts        repository.CartRepository
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory stores; data is lost on restart")
		transactions = memory.NewTransactionStore()
		invoices = memory.NewInvoiceStore()
		carts = memory.NewCartStore()
		a.idempotency = memory.NewIdempotencyStore()
		a.health = alwaysHealthy{}
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		database, err := db.Connect(connectCtx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		a.database = database

		if opts.migrate {
			if err := database.Migrate(connectCtx); err != nil {
				a.Close()
				return nil, err
			}
		}

		transactions = repository.NewTransactionRepository(database)
		invoices = repository.NewInvoiceRepository(database)
		carts = repository.NewCartRepository(database)
		a.idempotency = repository.NewIdempotencyRepository(database)
		a.health = database
	}

	journal, err := notify.OpenBoltJournal(cfg.Mail.JournalPath)
	if err != nil {
		// Notifications still go out; failures are only logged.
		logger.Warn("notification journal unavailable", "path", cfg.Mail.JournalPath, "error", err)
	} else {
		a.journal = journal
	}

	a.invoices = service.NewInvoiceService(invoices, logger)
	a.payments = service.NewPaymentService(
		transactions,
		carts,
		gateway.New(&cfg.Gateway, logger),
		a.invoices,
		a.dispatcher(),
		service.PaymentOptions{
			VerifyTimeout:             cfg.Payment.VerifyTimeout,
			NotifyTimeout:             cfg.Mail.DispatchTimeout,
			AllowClientAmountFallback: cfg.Payment.AllowClientAmountFallback,
		},
		logger,
	)

	return a, nil
}

func (a *app) dispatcher() *notify.Dispatcher {
	var journal notify.Journal
	if a.journal != nil {
		journal = a.journal
	}
	return notify.NewDispatcher(notify.NewSMTPMailer(a.cfg.Mail), journal, a.cfg.Mail.AdminEmails, a.logger)
}

// drainNotifications waits for background mail from settled payments before exit.
func (a *app) drainNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Mail.DispatchTimeout)
	defer cancel()
	if err := a.payments.WaitForNotifications(ctx); err != nil {
		a.logger.Warn("pending notifications abandoned", "error", err)
	}
}

// Close releases the database pool and the journal file.
func (a *app) Close() {
	var errs []error
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	if a.database != nil {
		errs = append(errs, a.database.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("failed to release resources", "error", err)
	}
}
