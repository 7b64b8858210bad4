package middleware

import (
	"context"

	"github.com/PADAS/gundi-integration-onyesha/action"
)

// Scope returns middleware that stores the invocation in the context so
// that code below the handler (sinks, stores) can recover the run and
// integration ids with action.FromContext.
func Scope() Middleware {
	return func(ctx context.Context, inv *action.Invocation, next Handler) error {
		return next(action.NewContext(ctx, inv))
	}
}
