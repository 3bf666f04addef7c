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

// Ingest resolves the source URL to paper metadata.
type Ingest struct {
	resolver SourceResolver
	logger   *slog.Logger
}

// NewIngest constructs the ingest stage.
func NewIngest(resolver SourceResolver, logger *slog.Logger) *Ingest {
	return &Ingest{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "ingest"),
	}
}

func (i *Ingest) Name() string { return "ingest" }

func (i *Ingest) Execute(ctx context.Context, run *paper.Run) error {
	if strings.TrimSpace(run.SourceURL) == "" {
		return services.Wrap(services.ErrValidation, i.Name(), "resolve", "source url is empty", nil)
	}

	meta, err := i.resolver.Resolve(ctx, run.SourceURL, run.SourceKind)
	if err != nil {
		return services.Wrap(services.ErrExternal, i.Name(), "resolve", "resolve source metadata", err)
	}

	run.Title = meta.Title
	run.Authors = meta.Authors
	run.Year = meta.Year
	run.Abstract = meta.Abstract
	run.PDFURL = meta.PDFURL
	run.Status = paper.StatusExtracting

	logging.WithContext(ctx, i.logger).Info("resolved source metadata",
		logging.String("title", run.Title),
		logging.Int("authors", len(run.Authors)))
	return nil
}

func (i *Ingest) HealthCheck(ctx context.Context) stage.Health {
	type checker interface {
		HealthCheck(context.Context) error
	}
	if hc, ok := i.resolver.(checker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return stage.Unhealthy(i.Name(), err.Error())
		}
	}
	return stage.Healthy(i.Name())
}
