// Package onyesha is a Gundi connector for the Onyesha satellite tracking
// API. It authenticates against the provider, pulls devices and their
// positions, and keeps a per-source checkpoint so that repeated polling only
// fetches new data.
//
// The root package holds the shared vocabulary: configuration and sentinel
// errors. Subsystems live in their own packages:
//
//   - state: the checkpoint store (get/set/delete of a checkpoint record per
//     integration, action and source, with retry on transient failures)
//   - store/redis, store/memory: state backends
//   - client: the Onyesha HTTP API client
//   - action, actions: typed action definitions and the built-in actions
//   - engine: wires everything into one long-lived connector handle
//   - cron: periodic pull scheduling
//
// # Quick Start
//
//	cfg, err := onyesha.LoadConfig()
//	eng, err := engine.New(cfg, engine.WithLogger(logger))
//	defer eng.Close()
//
//	err = eng.Execute(ctx, "org1", actions.PullObservations, nil)
package onyesha
