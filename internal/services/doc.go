// Package services defines shared utilities consumed by the workflow stage
// executors and the external collaborator clients.
//
// Key responsibilities:
//   - Context helpers that stamp run keys, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification uniform across stages and collaborators.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
