package stages

import (
	"context"
	"log/slog"
	"strings"

	"paperflow/internal/logging"
	"paperflow/internal/paper"
	"paperflow/internal/services"
	"paperflow/internal/stage"
)

// Extract validates that the run carries a content locator. Retrieval of
// the content itself is deferred to the analysis calls that consume the
// locator directly.
type Extract struct {
	logger *slog.Logger
}

// NewExtract constructs the extract stage.
func NewExtract(logger *slog.Logger) *Extract {
	return &Extract{logger: logging.NewComponentLogger(logger, "extract")}
}

func (e *Extract) Name() string { return "extract" }

func (e *Extract) Execute(ctx context.Context, run *paper.Run) error {
	if strings.TrimSpace(run.PDFURL) == "" {
		return services.Wrap(services.ErrValidation, e.Name(), "validate", "run has no content locator", nil)
	}
	if strings.TrimSpace(run.Title) == "" {
		return services.Wrap(services.ErrValidation, e.Name(), "validate", "run has no title", nil)
	}
	run.Status = paper.StatusTriaging
	logging.WithContext(ctx, e.logger).Debug("content locator present",
		logging.String("pdf_url", run.PDFURL))
	return nil
}

func (e *Extract) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(e.Name())
}
