package stages

import (
	"context"
	"log/slog"
	"strings"

	"paperflow/internal/logging"
	"paperflow/internal/paper"
	"paperflow/internal/services"
	"paperflow/internal/services/llm"
	"paperflow/internal/stage"
)

// Triage asks the analyzer for the first-pass assessment of the paper.
type Triage struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// NewTriage constructs the triage stage.
func NewTriage(analyzer Analyzer, logger *slog.Logger) *Triage {
	return &Triage{
		analyzer: analyzer,
		logger:   logging.NewComponentLogger(logger, "triage"),
	}
}

func (t *Triage) Name() string { return "triage" }

func (t *Triage) Execute(ctx context.Context, run *paper.Run) error {
	if strings.TrimSpace(run.Title) == "" {
		return services.Wrap(services.ErrValidation, t.Name(), "analyze", "run has no title", nil)
	}

	result, err := t.analyzer.Triage(ctx, llm.TriageRequest{
		Title:      run.Title,
		Abstract:   run.Abstract,
		ContentURL: run.PDFURL,
	})
	if err != nil {
		return services.Wrap(services.ErrExternal, t.Name(), "analyze", "triage analysis", err)
	}

	run.TriageSummary = result.Summary
	run.TriageContributions = result.Contributions
	run.TriageLimitations = result.Limitations
	run.TriageRelevance = result.Relevance
	run.TriageTags = result.SuggestedTags
	// A malformed suggested action degrades to the light pass instead of
	// failing the run.
	run.TriageAction = string(paper.CoerceDecision(result.SuggestedAction))

	logging.WithContext(ctx, t.logger).Info("triage complete",
		logging.Int("relevance", run.TriageRelevance),
		logging.String("suggested_action", run.TriageAction))
	return nil
}

func (t *Triage) HealthCheck(ctx context.Context) stage.Health {
	type checker interface {
		HealthCheck(context.Context) error
	}
	if hc, ok := t.analyzer.(checker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return stage.Unhealthy(t.Name(), err.Error())
		}
	}
	return stage.Healthy(t.Name())
}
