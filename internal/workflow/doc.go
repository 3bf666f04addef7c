// Package workflow drives a run through the pipeline stages. The engine is
// a status-keyed dispatch table rather than a background scheduler: each
// trigger or resume call advances its run stage by stage under that run's
// lock, persisting a checkpoint after every stage, until the run completes,
// fails, or suspends waiting for a human decision.
package workflow
