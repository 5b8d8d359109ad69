// Package jobcontext tags background runs (report exports, seeding) with a
// run ID and retries their transient failures.
package jobcontext

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var keyMetadata KeyContext = "job_metadata"

// Metadata describes one run
type Metadata struct {
	RunID     string
	Kind      string
	StartTime time.Time
}

// Begin derives a context carrying fresh run metadata. A timeout <= 0 keeps
// the parent deadline.
func Begin(parent context.Context, kind string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := parent, context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	}

	ctx = context.WithValue(ctx, keyMetadata, &Metadata{
		RunID:     uuid.NewString(),
		Kind:      kind,
		StartTime: time.Now(),
	})
	return ctx, cancel
}

// FromContext extracts run metadata from ctx
func FromContext(ctx context.Context) (*Metadata, bool) {
	md, ok := ctx.Value(keyMetadata).(*Metadata)
	return md, ok
}

// RunID returns the run ID of ctx, or "" outside a run
func RunID(ctx context.Context) string {
	if md, ok := FromContext(ctx); ok {
		return md.RunID
	}
	return ""
}

// Fields returns log fields describing the run of ctx
func Fields(ctx context.Context) []zap.Field {
	md, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return []zap.Field{
		zap.String("run_id", md.RunID),
		zap.String("run_kind", md.Kind),
		zap.Duration("elapsed", time.Since(md.StartTime)),
	}
}

// Retry calls fn until it succeeds, fails with a non-retryable error, ctx is
// done or maxRetries retries are spent. Delays grow exponentially from
// baseDelay.
func Retry(ctx context.Context, maxRetries uint64, baseDelay time.Duration, fn func(context.Context) error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = baseDelay
	eb.MaxInterval = 60 * time.Second
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx)
	return backoff.Retry(func() error {
		err := fn(ctx)
		if err != nil && !IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// IsRetryableError checks if an error should trigger a retry.
// Retryable errors include network failures, timeouts, throttling and 5xx responses.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, s := range retryableMessages {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

var retryableMessages = []string{
	// Network
	"connection refused",
	"connection reset",
	"network unreachable",
	"no such host",
	"i/o timeout",
	"unexpected eof",
	// Throttling
	"rate limit",
	"too many requests",
	"slowdown",
	"slow down",
	// Server side
	"internal server error",
	"service unavailable",
	"bad gateway",
	"temporary failure",
	"try again",
}
