package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/PADAS/gundi-integration-onyesha/action"
)

// Logging returns middleware that logs action start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *action.Invocation, next Handler) error {
		logger.Info("action started",
			slog.String("action_id", inv.ActionID),
			slog.String("integration_id", inv.IntegrationID),
			slog.String("run_id", inv.RunID.String()),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("action failed",
				slog.String("action_id", inv.ActionID),
				slog.String("integration_id", inv.IntegrationID),
				slog.String("run_id", inv.RunID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("action completed",
				slog.String("action_id", inv.ActionID),
				slog.String("integration_id", inv.IntegrationID),
				slog.String("run_id", inv.RunID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
