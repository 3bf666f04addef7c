// Package feishu implements the chat surface for the pipeline: it receives
// paper links from a Feishu bot, posts the decision card when a run
// suspends, and reports completion. Duplicate webhook deliveries are
// suppressed by message id independently of the engine's run locking.
package feishu
