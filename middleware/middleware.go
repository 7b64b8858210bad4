package middleware

import (
	"context"

	"github.com/PADAS/gundi-integration-onyesha/action"
)

// Handler runs the action itself once every middleware has been applied.
type Handler func(ctx context.Context) error

// Middleware sees one invocation of an action for one integration. It
// calls next to run the rest of the chain, or returns without calling it
// to refuse the run.
type Middleware func(ctx context.Context, inv *action.Invocation, next Handler) error

// Chain folds mws into one Middleware, the first entry outermost. The
// engine builds
//
//	Chain(Recover, Tracing, Metrics, Logging, Scope, Timeout, custom...)
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, inv *action.Invocation, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw, inner := mws[i], h
			h = func(ctx context.Context) error { return mw(ctx, inv, inner) }
		}
		return h(ctx)
	}
}
