package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"paperflow/internal/checkpoint"
	"paperflow/internal/config"
	"paperflow/internal/logging"
	"paperflow/internal/paper"
	"paperflow/internal/services"
	"paperflow/internal/stage"
)

// Handlers bundles the stage executors the engine dispatches to.
type Handlers struct {
	Ingest        stage.Handler
	Extract       stage.Handler
	Triage        stage.Handler
	ArchiveBase   stage.Handler
	DeepRead      stage.Handler
	UpdateArchive stage.Handler
}

// Engine advances runs through the stage graph with per-key locking and a
// checkpoint write after every stage.
type Engine struct {
	store    *checkpoint.Store
	handlers Handlers
	locks    *lockRegistry
	logger   *slog.Logger

	advanceTimeout time.Duration
	resumeTimeout  time.Duration
}

// NewEngine constructs an Engine.
func NewEngine(store *checkpoint.Store, handlers Handlers, cfg *config.Config, logger *slog.Logger) *Engine {
	advance := time.Duration(cfg.Workflow.AdvanceTimeoutSeconds) * time.Second
	resume := time.Duration(cfg.Workflow.ResumeTimeoutSeconds) * time.Second
	return &Engine{
		store:          store,
		handlers:       handlers,
		locks:          newLockRegistry(),
		logger:         logging.NewComponentLogger(logger, "workflow"),
		advanceTimeout: advance,
		resumeTimeout:  resume,
	}
}

// Trigger starts or re-enters the run for a source URL and advances it to
// its next suspension or terminal point. Duplicate triggers for an
// existing run are harmless: the caller observes the run's current
// position instead of restarting it.
func (e *Engine) Trigger(ctx context.Context, sourceURL string, kind paper.SourceKind) (Outcome, error) {
	key := paper.RunKey(sourceURL)
	ctx = services.WithRunKey(services.WithRequestID(ctx, uuid.NewString()), key)
	logger := logging.WithContext(ctx, e.logger)

	// Fast path: a run already parked or finished needs no lock to answer.
	if existing, err := e.store.Get(ctx, key); err != nil {
		return Outcome{}, fmt.Errorf("load run: %w", err)
	} else if existing != nil && (existing.Status.IsTerminal() || awaitingDecision(existing)) {
		logger.Debug("duplicate trigger observed existing run",
			logging.String(logging.FieldStatus, string(existing.Status)))
		return outcomeFor(existing), nil
	}

	lock := e.locks.forKey(key)
	lock.Lock()
	defer lock.Unlock()

	// Status may have moved between the unlocked check and lock
	// acquisition, so decide again while holding the lock.
	run, err := e.store.Get(ctx, key)
	if err != nil {
		return Outcome{}, fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		run = paper.NewRun(sourceURL, kind)
		if err := e.store.Put(ctx, run); err != nil {
			return Outcome{}, fmt.Errorf("persist new run: %w", err)
		}
		logger.Info("run created", logging.String("source_url", sourceURL))
	} else if run.Status.IsTerminal() || awaitingDecision(run) {
		return outcomeFor(run), nil
	} else {
		logger.Info("re-entering run",
			logging.String(logging.FieldStatus, string(run.Status)))
	}

	advanceCtx, cancel := context.WithTimeout(ctx, e.advanceTimeout)
	defer cancel()
	return e.advance(advanceCtx, logger, run)
}

// Resume injects a human decision into a suspended run and advances it to
// completion or failure.
func (e *Engine) Resume(ctx context.Context, runKey string, input stage.ResumeInput) (Outcome, error) {
	ctx = services.WithRunKey(services.WithRequestID(ctx, uuid.NewString()), runKey)
	logger := logging.WithContext(ctx, e.logger)

	// Fast path rejection without the lock.
	if existing, err := e.store.Get(ctx, runKey); err != nil {
		return Outcome{}, fmt.Errorf("load run: %w", err)
	} else if existing == nil {
		return Outcome{}, ErrRunNotFound
	} else if !awaitingDecision(existing) {
		return Outcome{}, fmt.Errorf("%w: status is %s", ErrNotAwaitingDecision, existing.Status)
	}

	lock := e.locks.forKey(runKey)
	lock.Lock()
	defer lock.Unlock()

	run, err := e.store.Get(ctx, runKey)
	if err != nil {
		return Outcome{}, fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		return Outcome{}, ErrRunNotFound
	}
	if !awaitingDecision(run) {
		return Outcome{}, fmt.Errorf("%w: status is %s", ErrNotAwaitingDecision, run.Status)
	}

	run.HumanDecision = string(paper.CoerceDecision(input.Decision))
	run.HumanTags = append([]string(nil), input.Tags...)
	run.HumanComment = input.Comment
	if err := e.store.Put(ctx, run); err != nil {
		return Outcome{}, fmt.Errorf("persist decision: %w", err)
	}
	logger.Info("decision recorded",
		logging.String("decision", run.HumanDecision))

	advanceCtx, cancel := context.WithTimeout(ctx, e.resumeTimeout)
	defer cancel()
	return e.advance(advanceCtx, logger, run)
}

// Status returns a snapshot of a run without advancing it.
func (e *Engine) Status(ctx context.Context, runKey string) (*paper.Run, error) {
	run, err := e.store.Get(ctx, runKey)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// advance repeatedly dispatches the next stage for the run's status,
// persisting after every stage, until a terminal or suspension point. The
// caller must hold the run's lock.
func (e *Engine) advance(ctx context.Context, logger *slog.Logger, run *paper.Run) (Outcome, error) {
	for {
		if run.Status.IsTerminal() {
			return outcomeFor(run), nil
		}
		if awaitingDecision(run) {
			logger.Info("run suspended for decision")
			return outcomeFor(run), nil
		}

		handler, err := e.nextStage(run)
		if err != nil {
			return Outcome{}, err
		}

		stageCtx := services.WithStage(ctx, handler.Name())
		started := time.Now()
		execErr := handler.Execute(stageCtx, run)
		if execErr != nil {
			if ctxErr := contextFailure(ctx, execErr); ctxErr != nil {
				// The run stays at its last checkpoint; a timeout is not
				// a run failure.
				logger.Warn("stage interrupted",
					logging.String(logging.FieldStage, handler.Name()),
					logging.Error(ctxErr))
				return Outcome{}, ctxErr
			}
			if !services.IsAnticipated(execErr) {
				return Outcome{}, fmt.Errorf("stage %s: %w", handler.Name(), execErr)
			}
			run.SetFailed(execErr.Error())
			logger.Error("stage failed",
				logging.String(logging.FieldStage, handler.Name()),
				logging.Error(execErr))
		} else {
			logger.Info("stage complete",
				logging.String(logging.FieldStage, handler.Name()),
				logging.String(logging.FieldStatus, string(run.Status)),
				logging.Duration("elapsed", time.Since(started)))
		}

		// Checkpoint failures propagate: an external side effect may have
		// happened and must not be silently forgotten.
		if err := e.store.Put(ctx, run); err != nil {
			return Outcome{}, fmt.Errorf("persist checkpoint after %s: %w", handler.Name(), err)
		}
	}
}

// nextStage is the dispatch table mapping (status, predicate) to the next
// stage executor.
func (e *Engine) nextStage(run *paper.Run) (stage.Handler, error) {
	switch run.Status {
	case paper.StatusIngesting:
		return e.handlers.Ingest, nil
	case paper.StatusExtracting:
		return e.handlers.Extract, nil
	case paper.StatusTriaging:
		if !run.Triaged() {
			return e.handlers.Triage, nil
		}
		return e.handlers.ArchiveBase, nil
	case paper.StatusWaitingDecision:
		// Only reached once the decision is injected.
		if run.HumanDecision == string(paper.DecisionDeepRead) {
			return e.handlers.DeepRead, nil
		}
		return e.handlers.UpdateArchive, nil
	case paper.StatusDeepReading:
		if run.DetailDocID == "" {
			return e.handlers.DeepRead, nil
		}
		return e.handlers.UpdateArchive, nil
	default:
		return nil, fmt.Errorf("no stage for status %q", run.Status)
	}
}

// awaitingDecision reports whether the run is parked at the suspension
// point with no decision injected yet.
func awaitingDecision(run *paper.Run) bool {
	return run.Status == paper.StatusWaitingDecision && run.HumanDecision == ""
}

func contextFailure(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Health aggregates stage readiness for the diagnostics endpoint.
func (e *Engine) Health(ctx context.Context) []stage.Health {
	handlers := []stage.Handler{
		e.handlers.Ingest,
		e.handlers.Extract,
		e.handlers.Triage,
		e.handlers.ArchiveBase,
		e.handlers.DeepRead,
		e.handlers.UpdateArchive,
	}
	health := make([]stage.Health, 0, len(handlers))
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		health = append(health, handler.HealthCheck(ctx))
	}
	return health
}
