// Package ext defines the extension system for the connector.
// Extensions are notified of lifecycle events (action started, completed,
// failed, schedule fired) and can react to them.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package ext

import (
	"context"
	"time"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/id"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ActionStarted is called before an action handler runs.
type ActionStarted interface {
	OnActionStarted(ctx context.Context, inv *action.Invocation) error
}

// ActionCompleted is called after an action finishes successfully.
type ActionCompleted interface {
	OnActionCompleted(ctx context.Context, inv *action.Invocation, res action.Result, elapsed time.Duration) error
}

// ActionFailed is called when an action returns an error.
type ActionFailed interface {
	OnActionFailed(ctx context.Context, inv *action.Invocation, err error) error
}

// ScheduleFired is called when a scheduler entry triggers a run.
type ScheduleFired interface {
	OnScheduleFired(ctx context.Context, entryName string, runID id.ID) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
