package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/PADAS/gundi-integration-onyesha/action"
)

var errPanic = errors.New("panic")

// Recover turns a panic in an action into a failed run. The stack is logged
// with the integration and run.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *action.Invocation, next Handler) (retErr error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error("action handler panicked",
				slog.String("integration_id", inv.IntegrationID),
				slog.String("action_id", inv.ActionID),
				slog.String("run_id", inv.RunID.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			retErr = fmt.Errorf("%w in action %s: %v", errPanic, inv.ActionID, r)
		}()
		return next(ctx)
	}
}
