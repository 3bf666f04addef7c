// Package craft maintains the paper archive in a Craft workspace: one
// collection entry per paper plus an optional detail document for deep
// reads. The engine's idempotency gates assume these calls may be retried,
// so every create returns the external identifier for the caller to persist.
package craft
