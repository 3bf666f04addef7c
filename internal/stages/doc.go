// Package stages implements the pipeline stage executors. Each executor
// transforms the run in place and owns at most one external side effect,
// guarded by an idempotency check on the identifier that side effect
// produced, so re-entry after a crash or duplicate trigger never repeats a
// create call.
package stages
