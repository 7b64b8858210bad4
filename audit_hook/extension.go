package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/ext"
	"github.com/PADAS/gundi-integration-onyesha/id"
)

// Compile-time interface checks.
var (
	_ ext.Extension       = (*Extension)(nil)
	_ ext.ActionStarted   = (*Extension)(nil)
	_ ext.ActionCompleted = (*Extension)(nil)
	_ ext.ActionFailed    = (*Extension)(nil)
	_ ext.ScheduleFired   = (*Extension)(nil)
	_ ext.Shutdown        = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit trail entry.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges connector lifecycle events to an audit trail backend.
// Each lifecycle hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Action lifecycle hooks ──────────────────────────

// OnActionStarted implements ext.ActionStarted.
func (e *Extension) OnActionStarted(ctx context.Context, inv *action.Invocation) error {
	return e.record(ctx, ActionActionStarted, SeverityInfo, OutcomeSuccess,
		ResourceRun, inv.RunID.String(), CategoryAction, nil,
		"action_id", inv.ActionID,
		"integration_id", inv.IntegrationID,
	)
}

// OnActionCompleted implements ext.ActionCompleted.
func (e *Extension) OnActionCompleted(ctx context.Context, inv *action.Invocation, res action.Result, elapsed time.Duration) error {
	kv := []any{
		"action_id", inv.ActionID,
		"integration_id", inv.IntegrationID,
		"elapsed_ms", elapsed.Milliseconds(),
	}
	for k, v := range res {
		kv = append(kv, "result."+k, v)
	}
	return e.record(ctx, ActionActionCompleted, SeverityInfo, OutcomeSuccess,
		ResourceRun, inv.RunID.String(), CategoryAction, nil, kv...)
}

// OnActionFailed implements ext.ActionFailed.
func (e *Extension) OnActionFailed(ctx context.Context, inv *action.Invocation, actionErr error) error {
	return e.record(ctx, ActionActionFailed, SeverityCritical, OutcomeFailure,
		ResourceRun, inv.RunID.String(), CategoryAction, actionErr,
		"action_id", inv.ActionID,
		"integration_id", inv.IntegrationID,
	)
}

// ── Schedule and connector hooks ────────────────────

// OnScheduleFired implements ext.ScheduleFired.
func (e *Extension) OnScheduleFired(ctx context.Context, entryName string, runID id.ID) error {
	return e.record(ctx, ActionScheduleFired, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, entryName, CategorySchedule, nil,
		"run_id", runID.String(),
	)
}

// OnShutdown implements ext.Shutdown.
func (e *Extension) OnShutdown(ctx context.Context) error {
	return e.record(ctx, ActionShutdown, SeverityWarning, OutcomeSuccess,
		ResourceConnector, "", CategoryConnector, nil)
}

// ── Internal helpers ────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
