package storage

import (
	"context"
	"errors"
	"time"

	dErrors "fantasy/pkg/domain-errors"
)

// DefaultTxTimeout bounds a unit of work when the caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

// WithTxDeadline applies timeout unless ctx already carries a deadline.
func WithTxDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Aborted maps a context failure to CodeUnavailable and returns nil otherwise.
func Aborted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "transaction aborted: store busy or deadline exceeded")
	}
	return nil
}
