package stages_test

import (
	"context"
	"errors"
	"testing"

	"paperflow/internal/logging"
	"paperflow/internal/paper"
	"paperflow/internal/services"
	"paperflow/internal/services/arxiv"
	"paperflow/internal/services/craft"
	"paperflow/internal/services/llm"
	"paperflow/internal/stages"
)

type fakeResolver struct {
	meta arxiv.Metadata
	err  error
}

func (f *fakeResolver) Resolve(context.Context, string, paper.SourceKind) (arxiv.Metadata, error) {
	return f.meta, f.err
}

type fakeAnalyzer struct {
	triage     llm.TriageResult
	triageErr  error
	deep       llm.DeepResult
	deepErr    error
	deepCalls  int
	triageCall int
}

func (f *fakeAnalyzer) Triage(context.Context, llm.TriageRequest) (llm.TriageResult, error) {
	f.triageCall++
	return f.triage, f.triageErr
}

func (f *fakeAnalyzer) DeepAnalyze(context.Context, llm.DeepRequest) (llm.DeepResult, error) {
	f.deepCalls++
	return f.deep, f.deepErr
}

type fakeArchive struct {
	entryID     string
	docID       string
	createErr   error
	updateErr   error
	docErr      error
	creates     int
	updates     int
	docCreates  int
	lastUpdate  craft.EntryUpdate
	lastUpdated string
}

func (f *fakeArchive) CreateEntry(context.Context, craft.EntryDraft) (string, error) {
	f.creates++
	return f.entryID, f.createErr
}

func (f *fakeArchive) UpdateEntry(_ context.Context, entryID string, update craft.EntryUpdate) error {
	f.updates++
	f.lastUpdated = entryID
	f.lastUpdate = update
	return f.updateErr
}

func (f *fakeArchive) CreateDetailDocument(context.Context, craft.DetailDraft) (string, error) {
	f.docCreates++
	return f.docID, f.docErr
}

func newRun() *paper.Run {
	run := paper.NewRun("https://arxiv.org/abs/2401.12345", paper.SourceArxiv)
	run.Title = "Sparse Attention at Scale"
	run.Abstract = "We study sparse attention."
	run.PDFURL = "https://arxiv.org/pdf/2401.12345"
	return run
}

func TestIngestPopulatesMetadata(t *testing.T) {
	resolver := &fakeResolver{meta: arxiv.Metadata{
		Title:    "Sparse Attention at Scale",
		Authors:  []string{"Ada Lovelace"},
		Year:     2024,
		Abstract: "We study sparse attention.",
		PDFURL:   "https://arxiv.org/pdf/2401.12345",
	}}
	ingest := stages.NewIngest(resolver, logging.NewNop())

	run := paper.NewRun("https://arxiv.org/abs/2401.12345", paper.SourceArxiv)
	if err := ingest.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Title == "" || run.Year != 2024 || run.PDFURL == "" {
		t.Fatalf("metadata not populated: %+v", run)
	}
	if run.Status != paper.StatusExtracting {
		t.Fatalf("expected extracting, got %s", run.Status)
	}
}

func TestIngestResolverFailureIsExternal(t *testing.T) {
	ingest := stages.NewIngest(&fakeResolver{err: errors.New("boom")}, logging.NewNop())
	err := ingest.Execute(context.Background(), paper.NewRun("https://arxiv.org/abs/2401.12345", paper.SourceArxiv))
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
}

func TestExtractRequiresContentLocator(t *testing.T) {
	extract := stages.NewExtract(logging.NewNop())

	run := newRun()
	run.PDFURL = ""
	err := extract.Execute(context.Background(), run)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	run = newRun()
	if err := extract.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Status != paper.StatusTriaging {
		t.Fatalf("expected triaging, got %s", run.Status)
	}
}

func TestTriageCoercesMalformedAction(t *testing.T) {
	analyzer := &fakeAnalyzer{triage: llm.TriageResult{
		Summary:         "short",
		Relevance:       3,
		SuggestedAction: "unknown_value",
		SuggestedTags:   []string{"ml"},
	}}
	triage := stages.NewTriage(analyzer, logging.NewNop())

	run := newRun()
	if err := triage.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.TriageAction != string(paper.DecisionSkim) {
		t.Fatalf("expected skim fallback, got %q", run.TriageAction)
	}
	if run.TriageSummary != "short" || run.TriageRelevance != 3 {
		t.Fatalf("triage fields not populated: %+v", run)
	}
}

func TestArchiveBaseCreatesOnce(t *testing.T) {
	archive := &fakeArchive{entryID: "item-1"}
	base := stages.NewArchiveBase(archive, logging.NewNop())

	run := newRun()
	run.TriageSummary = "short"
	if err := base.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.CollectionItemID != "item-1" {
		t.Fatalf("expected entry id stored, got %q", run.CollectionItemID)
	}
	if run.Status != paper.StatusWaitingDecision {
		t.Fatalf("expected waiting_decision, got %s", run.Status)
	}

	// Re-entry with the id already set must not create again.
	if err := base.Execute(context.Background(), run); err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if archive.creates != 1 {
		t.Fatalf("expected exactly one create, got %d", archive.creates)
	}
	if run.CollectionItemID != "item-1" {
		t.Fatalf("entry id changed: %q", run.CollectionItemID)
	}
}

func TestDeepReadGateSkipsWhenDocExists(t *testing.T) {
	analyzer := &fakeAnalyzer{deep: llm.DeepResult{Overview: "long"}}
	archive := &fakeArchive{docID: "doc-1"}
	deep := stages.NewDeepRead(analyzer, archive, logging.NewNop())

	run := newRun()
	run.DetailDocID = "doc-0"
	if err := deep.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if analyzer.deepCalls != 0 || archive.docCreates != 0 {
		t.Fatal("expected gate to skip all external calls")
	}
	if run.DetailDocID != "doc-0" {
		t.Fatalf("doc id changed: %q", run.DetailDocID)
	}
}

func TestDeepReadCreatesDocument(t *testing.T) {
	analyzer := &fakeAnalyzer{deep: llm.DeepResult{
		Overview:    "long overview",
		Innovations: []string{"sparsity"},
		Directions:  []string{"scale"},
	}}
	archive := &fakeArchive{docID: "doc-1"}
	deep := stages.NewDeepRead(analyzer, archive, logging.NewNop())

	run := newRun()
	if err := deep.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.DetailDocID != "doc-1" {
		t.Fatalf("expected doc id stored, got %q", run.DetailDocID)
	}
	if run.DeepReadOverview != "long overview" {
		t.Fatalf("overview not stored: %q", run.DeepReadOverview)
	}
	if run.Status != paper.StatusDeepReading {
		t.Fatalf("expected deep_reading, got %s", run.Status)
	}
}

func TestUpdateArchiveRequiresEntryID(t *testing.T) {
	update := stages.NewUpdateArchive(&fakeArchive{}, logging.NewNop())

	run := newRun()
	err := update.Execute(context.Background(), run)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateArchiveFinalizesEntry(t *testing.T) {
	archive := &fakeArchive{}
	update := stages.NewUpdateArchive(archive, logging.NewNop())

	run := newRun()
	run.CollectionItemID = "item-1"
	run.DetailDocID = "doc-1"
	run.HumanDecision = string(paper.DecisionDeepRead)
	run.HumanComment = "worth it"
	run.TriageTags = []string{"ml"}

	if err := update.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Status != paper.StatusCompleted {
		t.Fatalf("expected completed, got %s", run.Status)
	}
	if archive.lastUpdated != "item-1" {
		t.Fatalf("wrong entry updated: %q", archive.lastUpdated)
	}
	if !archive.lastUpdate.IsDeepRead || archive.lastUpdate.DetailDocID != "doc-1" {
		t.Fatalf("unexpected update payload: %+v", archive.lastUpdate)
	}
	if len(archive.lastUpdate.Tags) != 1 || archive.lastUpdate.Tags[0] != "ml" {
		t.Fatalf("expected triage tags fallback, got %v", archive.lastUpdate.Tags)
	}
}
