package daemon

import (
	"context"
	"testing"

	"paperflow/internal/logging"
	"paperflow/internal/stages"
	"paperflow/internal/testsupport"
	"paperflow/internal/workflow"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	engine := workflow.NewEngine(store, workflow.Handlers{
		Ingest:        stages.NewIngest(resolverStub{}, logger),
		Extract:       stages.NewExtract(logger),
		Triage:        stages.NewTriage(analyzerStub{}, logger),
		ArchiveBase:   stages.NewArchiveBase(archiveStub{}, logger),
		DeepRead:      stages.NewDeepRead(analyzerStub{}, archiveStub{}, logger),
		UpdateArchive: stages.NewUpdateArchive(archiveStub{}, logger),
	}, cfg, logger)

	d, err := New(cfg, store, engine, nil, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)

	if d.Addr() == "" {
		t.Fatal("expected listen address after start")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.LockFilePath == "" || status.DatabasePath == "" {
		t.Fatal("expected lock and database paths")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected stopped status")
	}
}
