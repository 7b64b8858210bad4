// Package middleware wraps every action run of the connector.
//
// The engine composes one chain per process and runs each invocation
// through it, whether it came from the scheduler, the CLI or Engine.Execute:
//
//	Recover → Tracing → Metrics → Logging → Scope → Timeout → custom → action
//
// # Built-in Middleware
//
//   - [Recover]: a panicking action becomes a failed run
//   - [Tracing]: one span per run with run, action and integration ids
//   - [Metrics]: run duration and count by action, integration and error kind
//   - [Logging]: start and end of each run with the outcome
//   - [Scope]: makes the invocation available through action.FromContext
//   - [Timeout]: cancels the run after the action's time limit
//
// Failures are bucketed by kind (unauthorized, upstream, state, config,
// timeout, canceled, panic, other) from the onyesha sentinel errors.
package middleware
