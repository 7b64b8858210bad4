// Package observability provides the OpenTelemetry setup for the connector:
// OTLP/HTTP tracer and meter providers, and a MetricsExtension that records
// connector-wide counters for action and schedule lifecycle events.
//
// For per-execution tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
