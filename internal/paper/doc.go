// Package paper defines the run entity that tracks one research paper
// through the triage pipeline, its status lifecycle, and the human decision
// taxonomy. State is populated incrementally by the pipeline stages and
// persisted after every stage by the checkpoint store.
package paper
