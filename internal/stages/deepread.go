package stages

import (
	"context"
	"log/slog"

	"paperflow/internal/logging"
	"paperflow/internal/paper"
	"paperflow/internal/services"
	"paperflow/internal/services/craft"
	"paperflow/internal/services/llm"
	"paperflow/internal/stage"
)

// DeepRead produces the detailed report and materializes it as an archive
// document. The document identifier is the idempotency witness for the
// create call.
type DeepRead struct {
	analyzer Analyzer
	archive  Archive
	logger   *slog.Logger
}

// NewDeepRead constructs the deep-read stage.
func NewDeepRead(analyzer Analyzer, archive Archive, logger *slog.Logger) *DeepRead {
	return &DeepRead{
		analyzer: analyzer,
		archive:  archive,
		logger:   logging.NewComponentLogger(logger, "deep-read"),
	}
}

func (d *DeepRead) Name() string { return "deep-read" }

func (d *DeepRead) Execute(ctx context.Context, run *paper.Run) error {
	run.Status = paper.StatusDeepReading
	if run.DetailDocID != "" {
		logging.WithContext(ctx, d.logger).Debug("detail document already exists, skipping",
			logging.String("detail_doc_id", run.DetailDocID))
		return nil
	}

	result, err := d.analyzer.DeepAnalyze(ctx, llm.DeepRequest{
		Title:         run.Title,
		Abstract:      run.Abstract,
		TriageSummary: run.TriageSummary,
		ContentURL:    run.PDFURL,
	})
	if err != nil {
		return services.Wrap(services.ErrExternal, d.Name(), "analyze", "deep-read analysis", err)
	}

	run.DeepReadOverview = result.Overview
	run.DeepReadInnovations = result.Innovations
	run.DeepReadDirections = result.Directions

	docID, err := d.archive.CreateDetailDocument(ctx, craft.DetailDraft{
		Title:       run.Title,
		Overview:    result.Overview,
		Innovations: result.Innovations,
		Directions:  result.Directions,
	})
	if err != nil {
		return services.Wrap(services.ErrExternal, d.Name(), "create document", "create detail document", err)
	}
	run.DetailDocID = docID

	logging.WithContext(ctx, d.logger).Info("detail document created",
		logging.String("detail_doc_id", docID))
	return nil
}

func (d *DeepRead) HealthCheck(ctx context.Context) stage.Health {
	return archiveHealth(ctx, d.archive, d.Name())
}
