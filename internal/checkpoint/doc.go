// Package checkpoint persists run state in SQLite. The store keeps exactly
// one record per run key and overwrites it after every pipeline stage, so a
// fresh process can pick up a run left waiting for a decision. Callers
// serialize writes per key; the store only guarantees atomic single-key
// reads and writes.
package checkpoint
