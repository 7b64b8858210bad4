// Package cron fires actions on recurring schedules.
//
// An [Entry] names an action, the integration it runs for, and a static
// JSON configuration:
//   - Schedule: standard 5-field cron expression (e.g. "*/5 * * * *") or a
//     descriptor such as "@every 5m" or "@hourly"
//   - IntegrationID / ActionID: what to run
//   - Config: passed to the action on every firing
//
// # Scheduler
//
// The [Scheduler] drives entries with robfig/cron. A firing whose previous
// run is still in progress is skipped, so a slow pull never overlaps
// itself. Each firing gets a fresh run ID, is reported to the [Emitter]
// (ext.Registry emits the ScheduleFired hook), and is handed to the
// [RunFunc] the engine provides.
//
// # Locking
//
// When several connector processes share a checkpoint store, give them a
// shared [Locker] (store/redis implements one with SET NX PX). The first
// scheduler to take an entry's lock runs it; the others skip that tick.
package cron
