package workflow

import (
	"errors"

	"paperflow/internal/paper"
	"paperflow/internal/stage"
)

// Named errors for caller-visible rejections. The run's persisted state is
// untouched when any of these is returned.
var (
	ErrRunNotFound         = errors.New("run not found")
	ErrNotAwaitingDecision = errors.New("run is not awaiting a decision")
)

// State classifies where an advance left the run.
type State string

const (
	// StateSuspended means the run is parked waiting for a human decision.
	StateSuspended State = "suspended"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Outcome reports the result of a trigger or resume call. Run is a
// snapshot; Payload is set only when State is StateSuspended.
type Outcome struct {
	State   State
	Run     *paper.Run
	Payload *stage.DecisionPayload
}

func outcomeFor(run *paper.Run) Outcome {
	out := Outcome{Run: run.Clone()}
	switch {
	case run.Status == paper.StatusCompleted:
		out.State = StateCompleted
	case run.Status == paper.StatusFailed:
		out.State = StateFailed
	default:
		out.State = StateSuspended
		payload := decisionPayload(run)
		out.Payload = &payload
	}
	return out
}

func decisionPayload(run *paper.Run) stage.DecisionPayload {
	return stage.DecisionPayload{
		RunKey:        run.Key,
		Title:         run.Title,
		SourceURL:     run.SourceURL,
		Summary:       run.TriageSummary,
		Contributions: append([]string(nil), run.TriageContributions...),
		Limitations:   append([]string(nil), run.TriageLimitations...),
		Relevance:     run.TriageRelevance,
		SuggestedTags: append([]string(nil), run.TriageTags...),
		Suggested:     run.TriageAction,
	}
}
