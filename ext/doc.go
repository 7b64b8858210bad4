// Package ext defines the extension system for the connector.
//
// Extensions are notified of lifecycle events and can react to them by
// recording metrics or writing audit logs. Each lifecycle hook is a
// separate interface so extensions opt in only to the events they care
// about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnActionCompleted(ctx context.Context, inv *action.Invocation, res action.Result, elapsed time.Duration) error {
//	    log.Printf("run %s completed in %s", inv.RunID, elapsed)
//	    return nil
//	}
//
// # Hooks
//
//   - [ActionStarted]: an action handler is about to run
//   - [ActionCompleted]: an action finished successfully
//   - [ActionFailed]: an action returned an error
//   - [ScheduleFired]: a scheduler entry triggered a run
//   - [Shutdown]: the engine is shutting down
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
