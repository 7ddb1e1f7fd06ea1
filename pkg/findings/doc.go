// Package findings persists compliance evaluation runs for audit history.
//
// A Run captures one (rule set, template) evaluation: verdict counts, the
// ordered violations, and timing. Storage backends are pluggable: SQLite
// for durable history, memory for tests and one-shot invocations. The
// Recorder writes runs asynchronously so watch-mode evaluation never blocks
// on storage; the Pruner and Scheduler enforce a retention window, either
// on demand (`ganymede prune`) or on a cron schedule.
package findings
