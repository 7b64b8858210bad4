package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionActionStarted   = "action.started"
	ActionActionCompleted = "action.completed"
	ActionActionFailed    = "action.failed"
	ActionScheduleFired   = "schedule.fired"
	ActionShutdown        = "connector.shutdown"
)

// Audit event categories group related actions.
const (
	CategoryAction    = "onyesha.action"
	CategorySchedule  = "onyesha.schedule"
	CategoryConnector = "onyesha.connector"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceRun       = "action_run"
	ResourceSchedule  = "schedule_entry"
	ResourceConnector = "connector"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionActionStarted,
		ActionActionCompleted,
		ActionActionFailed,
		ActionScheduleFired,
		ActionShutdown,
	}
}
