// Package middleware provides HTTP middleware for the payments API.
package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gstyle/storefront-payments/internal/models"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "X-Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

// InitiatePath is the only endpoint whose responses are replayed.
// Callbacks are already idempotent through the transaction status.
const InitiatePath = "/api/payment/zarinpal/create"

// IdempotencyStore is the subset of the idempotency repository the middleware needs
type IdempotencyStore interface {
	Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error)
	Store(ctx context.Context, idemKey *models.IdempotencyKey) error
}

type responseCapture struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

func newResponseCapture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rc *responseCapture) WriteHeader(code int) {
	rc.statusCode = code
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful initiation response for a repeated
// Idempotency-Key, so a client retry does not open a second gateway session.
// Keys are scoped to the caller's identity when one is present.
func Idempotency(store IdempotencyStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresIdempotency(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
			if key == "" || len(key) > maxIdempotencyKeyLen {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			scope := requestScope(r)

			cached, err := store.Get(ctx, key, scope)
			if err != nil {
				logger.Error("failed to check idempotency cache", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if cached != nil {
				logger.Debug("replaying initiation response",
					"key", key,
					"scope", scope,
					"status", cached.ResponseStatus,
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(replayedHeader, "true")
				w.WriteHeader(cached.ResponseStatus)
				//nolint:errcheck // Best effort response writing
				w.Write([]byte(cached.ResponseBody))
				return
			}

			capture := newResponseCapture(w)
			next.ServeHTTP(capture, r)

			if !shouldCacheResponse(capture.statusCode) {
				return
			}

			if err := store.Store(ctx, &models.IdempotencyKey{
				Key:            key,
				RequestPath:    scope,
				ResponseStatus: capture.statusCode,
				ResponseBody:   capture.body.String(),
				CreatedAt:      time.Now(),
			}); err != nil {
				logger.Error("failed to store idempotency key",
					"error", err,
					"key", key,
				)
			}
		})
	}
}

func requiresIdempotency(r *http.Request) bool {
	return r.Method == http.MethodPost && normalizeRequestPath(r.URL.Path) == InitiatePath
}

// requestScope keys the cache by path and, for signed-in callers, by user id.
func requestScope(r *http.Request) string {
	scope := normalizeRequestPath(r.URL.Path)
	if id, ok := IdentityFrom(r.Context()); ok {
		scope += "#" + id.UserID
	}
	return scope
}

func normalizeRequestPath(urlPath string) string {
	return strings.TrimSuffix(urlPath, "/")
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
