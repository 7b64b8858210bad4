// Package audithook is a connector extension that bridges lifecycle events
// to an audit trail.
//
// Every action and schedule lifecycle hook emits a structured audit event
// through the [Recorder] interface. The extension assigns severity levels
// (info for normal operations, critical for failed runs) and metadata
// (integration, action, run id, elapsed time, errors).
//
// # Logging recorder
//
//	eng, err := engine.New(cfg,
//	    engine.WithExtension(audithook.New(audithook.NewLogRecorder(logger))),
//	)
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionActionFailed,
//	        audithook.ActionScheduleFired,
//	    ),
//	)
package audithook
