package middleware

import (
	"context"
	"log/slog"

	"github.com/PADAS/gundi-integration-onyesha/action"
)

// Timeout returns middleware that enforces a per-invocation deadline.
// If the invocation has a non-zero Timeout, a context.WithTimeout wraps the
// handler call. When the deadline is exceeded the context is cancelled and
// the handler should return context.DeadlineExceeded.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *action.Invocation, next Handler) error {
		if inv.Timeout > 0 {
			logger.Debug("action timeout set",
				slog.String("run_id", inv.RunID.String()),
				slog.Duration("timeout", inv.Timeout),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
			defer cancel()
		}
		return next(ctx)
	}
}
