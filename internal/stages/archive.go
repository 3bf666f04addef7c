package stages

import (
	"context"
	"log/slog"

	"paperflow/internal/logging"
	"paperflow/internal/paper"
	"paperflow/internal/services"
	"paperflow/internal/services/craft"
	"paperflow/internal/stage"
)

// ArchiveBase creates the collection entry for a triaged paper. The entry
// identifier is the idempotency witness: when it is already present the
// stage only advances status, so a duplicate trigger or a crash-retry
// never creates a second entry.
type ArchiveBase struct {
	archive Archive
	logger  *slog.Logger
}

// NewArchiveBase constructs the archive-base stage.
func NewArchiveBase(archive Archive, logger *slog.Logger) *ArchiveBase {
	return &ArchiveBase{
		archive: archive,
		logger:  logging.NewComponentLogger(logger, "archive-base"),
	}
}

func (a *ArchiveBase) Name() string { return "archive-base" }

func (a *ArchiveBase) Execute(ctx context.Context, run *paper.Run) error {
	if run.CollectionItemID != "" {
		run.Status = paper.StatusWaitingDecision
		logging.WithContext(ctx, a.logger).Debug("entry already archived, skipping create",
			logging.String("collection_item_id", run.CollectionItemID))
		return nil
	}

	entryID, err := a.archive.CreateEntry(ctx, craft.EntryDraft{
		Title:   run.Title,
		Link:    run.SourceURL,
		Summary: run.TriageSummary,
		Tags:    run.TriageTags,
	})
	if err != nil {
		return services.Wrap(services.ErrExternal, a.Name(), "create entry", "create archive entry", err)
	}

	// The id and the status advance land in the same checkpoint write, so
	// a retry can never create two entries for one run.
	run.CollectionItemID = entryID
	run.Status = paper.StatusWaitingDecision

	logging.WithContext(ctx, a.logger).Info("archive entry created",
		logging.String("collection_item_id", entryID))
	return nil
}

func (a *ArchiveBase) HealthCheck(ctx context.Context) stage.Health {
	return archiveHealth(ctx, a.archive, a.Name())
}

// UpdateArchive writes the final decision back onto the collection entry.
type UpdateArchive struct {
	archive Archive
	logger  *slog.Logger
}

// NewUpdateArchive constructs the update-archive stage.
func NewUpdateArchive(archive Archive, logger *slog.Logger) *UpdateArchive {
	return &UpdateArchive{
		archive: archive,
		logger:  logging.NewComponentLogger(logger, "update-archive"),
	}
}

func (u *UpdateArchive) Name() string { return "update-archive" }

func (u *UpdateArchive) Execute(ctx context.Context, run *paper.Run) error {
	if run.CollectionItemID == "" {
		// Reaching this stage without an entry id means the earlier
		// checkpoint was lost; treat it as state corruption.
		return services.Wrap(services.ErrValidation, u.Name(), "update entry", "run has no collection entry id", nil)
	}

	tags := run.HumanTags
	if len(tags) == 0 {
		tags = run.TriageTags
	}

	err := u.archive.UpdateEntry(ctx, run.CollectionItemID, craft.EntryUpdate{
		IsDeepRead:  run.HumanDecision == string(paper.DecisionDeepRead),
		DetailDocID: run.DetailDocID,
		Comment:     run.HumanComment,
		Tags:        tags,
		Title:       run.Title,
	})
	if err != nil {
		return services.Wrap(services.ErrExternal, u.Name(), "update entry", "update archive entry", err)
	}

	run.Status = paper.StatusCompleted
	logging.WithContext(ctx, u.logger).Info("archive entry finalized",
		logging.String("collection_item_id", run.CollectionItemID),
		logging.String("decision", run.HumanDecision))
	return nil
}

func (u *UpdateArchive) HealthCheck(ctx context.Context) stage.Health {
	return archiveHealth(ctx, u.archive, u.Name())
}

func archiveHealth(ctx context.Context, archive Archive, name string) stage.Health {
	type checker interface {
		HealthCheck(context.Context) error
	}
	if hc, ok := archive.(checker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return stage.Unhealthy(name, err.Error())
		}
	}
	return stage.Healthy(name)
}
