package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gstyle/storefront-payments/internal/handlers"
	"github.com/spf13/cobra"
)

const (
	idempotencyTTL        = 24 * time.Hour
	idempotencySweepEvery = time.Hour
	shutdownTimeout       = 30 * time.Second
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the payments HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().Bool("migrate", true, "apply database migrations before serving")
	return cmd
}

// migrateFlag reads --migrate. The root command runs serve without registering
// the flag, and then migrations are applied.
func migrateFlag(cmd *cobra.Command) bool {
	migrate, err := cmd.Flags().GetBool("migrate")
	if err != nil {
		return true
	}
	return migrate
}

func runServe(cmd *cobra.Command, _ []string) error {
	migrate := migrateFlag(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{migrate: migrate})
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger
	logger.Info("starting payments api",
		"port", a.cfg.Server.Port,
		"gateway_mode", a.cfg.Gateway.Mode,
		"db_driver", a.cfg.Database.Driver,
		"log_level", a.cfg.Logger.Level,
	)

	router := handlers.NewRouter(handlers.Dependencies{
		Payments:    a.payments,
		Invoices:    a.invoices,
		Health:      a.health,
		Idempotency: a.idempotency,
		AppURL:      a.cfg.Payment.AppURL,
	}, logger)

	server := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	go a.sweepIdempotencyKeys(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	if err := a.payments.WaitForNotifications(shutdownCtx); err != nil {
		logger.Warn("pending notifications abandoned at shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// sweepIdempotencyKeys drops cached initiation responses past their TTL until ctx ends.
func (a *app) sweepIdempotencyKeys(ctx context.Context) {
	ticker := time.NewTicker(idempotencySweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := a.idempotency.DeleteOlderThan(ctx, time.Now().Add(-idempotencyTTL))
			if err != nil {
				a.logger.Warn("failed to sweep idempotency keys", "error", err)
				continue
			}
			if deleted > 0 {
				a.logger.Info("swept idempotency keys", "deleted", deleted)
			}
		}
	}
}
