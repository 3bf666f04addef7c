package stages

import (
	"context"

	"paperflow/internal/paper"
	"paperflow/internal/services/arxiv"
	"paperflow/internal/services/craft"
	"paperflow/internal/services/llm"
)

// SourceResolver resolves a paper URL to bibliographic metadata.
type SourceResolver interface {
	Resolve(ctx context.Context, sourceURL string, kind paper.SourceKind) (arxiv.Metadata, error)
}

// Analyzer produces the triage assessment and the deep-read report.
type Analyzer interface {
	Triage(ctx context.Context, req llm.TriageRequest) (llm.TriageResult, error)
	DeepAnalyze(ctx context.Context, req llm.DeepRequest) (llm.DeepResult, error)
}

// Archive maintains the external paper archive. Create calls are not
// inherently idempotent; the stage gates exist because of that.
type Archive interface {
	CreateEntry(ctx context.Context, draft craft.EntryDraft) (string, error)
	UpdateEntry(ctx context.Context, entryID string, update craft.EntryUpdate) error
	CreateDetailDocument(ctx context.Context, draft craft.DetailDraft) (string, error)
}
