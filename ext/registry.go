package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/id"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time.
type actionStartedEntry struct {
	name string
	hook ActionStarted
}

type actionCompletedEntry struct {
	name string
	hook ActionCompleted
}

type actionFailedEntry struct {
	name string
	hook ActionFailed
}

type scheduleFiredEntry struct {
	name string
	hook ScheduleFired
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
// Register must not race with the emit methods.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	actionStarted   []actionStartedEntry
	actionCompleted []actionCompletedEntry
	actionFailed    []actionFailedEntry
	scheduleFired   []scheduleFiredEntry
	shutdown        []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// SetLogger replaces the logger hook errors are reported to.
func (r *Registry) SetLogger(logger *slog.Logger) { r.logger = logger }

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(ActionStarted); ok {
		r.actionStarted = append(r.actionStarted, actionStartedEntry{name, h})
	}
	if h, ok := e.(ActionCompleted); ok {
		r.actionCompleted = append(r.actionCompleted, actionCompletedEntry{name, h})
	}
	if h, ok := e.(ActionFailed); ok {
		r.actionFailed = append(r.actionFailed, actionFailedEntry{name, h})
	}
	if h, ok := e.(ScheduleFired); ok {
		r.scheduleFired = append(r.scheduleFired, scheduleFiredEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitActionStarted notifies all extensions that implement ActionStarted.
func (r *Registry) EmitActionStarted(ctx context.Context, inv *action.Invocation) {
	for _, e := range r.actionStarted {
		if err := e.hook.OnActionStarted(ctx, inv); err != nil {
			r.logHookError("OnActionStarted", e.name, err)
		}
	}
}

// EmitActionCompleted notifies all extensions that implement ActionCompleted.
func (r *Registry) EmitActionCompleted(ctx context.Context, inv *action.Invocation, res action.Result, elapsed time.Duration) {
	for _, e := range r.actionCompleted {
		if err := e.hook.OnActionCompleted(ctx, inv, res, elapsed); err != nil {
			r.logHookError("OnActionCompleted", e.name, err)
		}
	}
}

// EmitActionFailed notifies all extensions that implement ActionFailed.
func (r *Registry) EmitActionFailed(ctx context.Context, inv *action.Invocation, actionErr error) {
	for _, e := range r.actionFailed {
		if err := e.hook.OnActionFailed(ctx, inv, actionErr); err != nil {
			r.logHookError("OnActionFailed", e.name, err)
		}
	}
}

// EmitScheduleFired notifies all extensions that implement ScheduleFired.
func (r *Registry) EmitScheduleFired(ctx context.Context, entryName string, runID id.ID) {
	for _, e := range r.scheduleFired {
		if err := e.hook.OnScheduleFired(ctx, entryName, runID); err != nil {
			r.logHookError("OnScheduleFired", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Hook errors are never propagated.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
