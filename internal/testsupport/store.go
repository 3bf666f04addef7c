package testsupport

import (
	"context"
	"testing"

	"paperflow/internal/checkpoint"
	"paperflow/internal/config"
	"paperflow/internal/paper"
)

// MustOpenStore opens a checkpoint.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *checkpoint.Store {
	t.Helper()

	store, err := checkpoint.Open(cfg)
	if err != nil {
		t.Fatalf("checkpoint.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRun persists a new run for tests and returns it.
func SeedRun(t testing.TB, store *checkpoint.Store, sourceURL string) *paper.Run {
	t.Helper()

	run := paper.NewRun(sourceURL, paper.SourceArxiv)
	if err := store.Put(context.Background(), run); err != nil {
		t.Fatalf("store.Put: %v", err)
	}
	return run
}
