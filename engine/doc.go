// Package engine wires all connector subsystems together and provides
// the application-level API for running actions.
//
// The engine package exists to break a fundamental import cycle: the root
// onyesha package defines the configuration and sentinel errors (imported
// by state, client, actions, etc.) and therefore cannot import those
// packages back. Engine sits above all subsystem packages and below the
// command layer.
//
// # Building an Engine
//
//	cfg, err := onyesha.LoadConfig()
//	eng, err := engine.New(cfg,
//	    engine.WithLogger(logger),
//	    engine.WithExtension(myExtension),
//	    engine.WithSink(actions.NewJSONSink(os.Stdout)),
//	)
//	defer eng.Close()
//
// # Running Actions
//
//	res, err := eng.Execute(ctx, "org1", actions.PullObservations, nil)
//	res, err = eng.Execute(ctx, "org1", actions.ResetState,
//	    json.RawMessage(`{"source_ids":["89222"]}`))
//
// Every run passes through the middleware chain
// (recover → tracing → metrics → logging → scope → timeout → custom) and
// emits the ActionStarted, ActionCompleted or ActionFailed hooks.
//
// # Scheduling
//
// When the configuration names an IntegrationID, the engine schedules
// pull_observations on PullSchedule. [Engine.Start] pings the backend and
// starts the scheduler; [Engine.Stop] waits for in-flight runs.
//
// # Options
//
//   - [WithLogger]: set the shared logger
//   - [WithExtension]: register a lifecycle extension
//   - [WithMiddleware]: add a middleware to the execution chain
//   - [WithStore]: use a given backend instead of Redis
//   - [WithProvider]: use a given upstream provider (e.g. the fixture)
//   - [WithSink]: deliver pulled positions somewhere other than the log
//   - [WithTracerProvider]: set the OpenTelemetry tracer provider
//   - [WithMeterProvider]: set the OpenTelemetry meter provider
package engine
