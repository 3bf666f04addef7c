package checkpoint_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"paperflow/internal/checkpoint"
	"paperflow/internal/paper"
	"paperflow/internal/testsupport"
)

func TestPutAndGetRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run := paper.NewRun("https://arxiv.org/abs/2401.00001", paper.SourceArxiv)
	run.Title = "Attention Is Not All You Need"
	run.Authors = []string{"A. Researcher", "B. Colleague"}
	run.Year = 2024
	run.Abstract = "An abstract."
	run.TriageTags = []string{"ml", "transformers"}
	run.TriageRelevance = 4

	if err := store.Put(ctx, run); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, run.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected run to exist")
	}
	if got.Title != run.Title {
		t.Fatalf("title mismatch: %q", got.Title)
	}
	if len(got.Authors) != 2 || got.Authors[1] != "B. Colleague" {
		t.Fatalf("authors mismatch: %v", got.Authors)
	}
	if got.TriageRelevance != 4 {
		t.Fatalf("relevance mismatch: %d", got.TriageRelevance)
	}
	if got.Status != paper.StatusIngesting {
		t.Fatalf("status mismatch: %s", got.Status)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to round-trip")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	got, err := store.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing run, got %+v", got)
	}
}

func TestPutOverwritesSingleRow(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00002")
	run.Status = paper.StatusWaitingDecision
	run.CollectionItemID = "item-1"
	if err := store.Put(ctx, run); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected single row per key, got %d", len(runs))
	}
	if runs[0].Status != paper.StatusWaitingDecision {
		t.Fatalf("expected overwritten status, got %s", runs[0].Status)
	}
	if runs[0].CollectionItemID != "item-1" {
		t.Fatalf("expected collection id to persist, got %q", runs[0].CollectionItemID)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	waiting := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00003")
	waiting.Status = paper.StatusWaitingDecision
	if err := store.Put(ctx, waiting); err != nil {
		t.Fatalf("Put: %v", err)
	}
	done := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00004")
	done.Status = paper.StatusCompleted
	if err := store.Put(ctx, done); err != nil {
		t.Fatalf("Put: %v", err)
	}

	runs, err := store.List(ctx, paper.StatusWaitingDecision)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || runs[0].Key != waiting.Key {
		t.Fatalf("unexpected filtered list: %+v", runs)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(all))
	}
}

func TestClearRemovesTerminalRuns(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	done := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00005")
	done.Status = paper.StatusCompleted
	if err := store.Put(ctx, done); err != nil {
		t.Fatalf("Put: %v", err)
	}
	failed := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00006")
	failed.SetFailed("llm unavailable")
	if err := store.Put(ctx, failed); err != nil {
		t.Fatalf("Put: %v", err)
	}
	active := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00007")

	removed, err := store.Clear(ctx, paper.StatusCompleted, paper.StatusFailed)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 cleared, got %d", removed)
	}

	got, err := store.Get(ctx, active.Key)
	if err != nil || got == nil {
		t.Fatalf("expected active run to survive: %v", err)
	}
}

func TestHealthCountsByBucket(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00008")
	waiting := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00009")
	waiting.Status = paper.StatusWaitingDecision
	if err := store.Put(ctx, waiting); err != nil {
		t.Fatalf("Put: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Waiting != 1 || health.InFlight != 1 {
		t.Fatalf("unexpected health summary: %+v", health)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "paperflow.db")
	store, err := checkpoint.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}

	_, err = checkpoint.OpenPath(dbPath)
	if !errors.Is(err, checkpoint.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "delete the database") {
		t.Fatalf("expected recovery hint, got %q", err.Error())
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := testsupport.SeedRun(t, store, "https://arxiv.org/abs/2401.00010")
	run.Status = paper.StatusWaitingDecision
	run.CollectionItemID = "item-9"
	if err := store.Put(ctx, run); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := checkpoint.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, run.Key)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got == nil || got.Status != paper.StatusWaitingDecision || got.CollectionItemID != "item-9" {
		t.Fatalf("expected waiting run to survive restart, got %+v", got)
	}
}
