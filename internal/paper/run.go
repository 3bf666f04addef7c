package paper

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Status identifies a run's position in the pipeline.
type Status string

const (
	StatusIngesting       Status = "ingesting"
	StatusExtracting      Status = "extracting"
	StatusTriaging        Status = "triaging"
	StatusWaitingDecision Status = "waiting_decision"
	StatusDeepReading     Status = "deep_reading"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// AllStatuses returns every status in pipeline order.
func AllStatuses() []Status {
	return []Status{
		StatusIngesting,
		StatusExtracting,
		StatusTriaging,
		StatusWaitingDecision,
		StatusDeepReading,
		StatusCompleted,
		StatusFailed,
	}
}

// ParseStatus validates a raw status string.
func ParseStatus(value string) (Status, error) {
	for _, status := range AllStatuses() {
		if string(status) == value {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// IsTerminal reports whether the status ends the run.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SourceKind classifies where a paper came from.
type SourceKind string

const (
	SourceArxiv SourceKind = "arxiv"
	SourcePDF   SourceKind = "pdf"
	SourceURL   SourceKind = "url"
)

// ParseSourceKind validates a raw source kind string, defaulting to url.
func ParseSourceKind(value string) SourceKind {
	switch SourceKind(value) {
	case SourceArxiv, SourcePDF:
		return SourceKind(value)
	default:
		return SourceURL
	}
}

// RunKey derives the stable run identifier for a source URL. Re-submitting
// the same URL always maps to the same run.
func RunKey(sourceURL string) string {
	sum := md5.Sum([]byte(sourceURL))
	return hex.EncodeToString(sum[:])[:16]
}

// Run tracks one paper through the pipeline. Fields are populated
// incrementally; only Key, SourceURL, and Status are set at creation.
type Run struct {
	Key        string
	SourceURL  string
	SourceKind SourceKind

	// Metadata resolved during ingest.
	Title    string
	Authors  []string
	Year     int
	Abstract string
	PDFURL   string

	// Triage outputs.
	TriageSummary       string
	TriageContributions []string
	TriageLimitations   []string
	TriageRelevance     int
	TriageAction        string
	TriageTags          []string

	// Archive linkage. Once set these are never cleared; their presence
	// means the corresponding external side effect already happened.
	CollectionItemID string
	DetailDocID      string

	// Human decision captured on resume.
	HumanDecision string
	HumanTags     []string
	HumanComment  string

	// Deep-read outputs.
	DeepReadOverview    string
	DeepReadInnovations []string
	DeepReadDirections  []string

	Status       Status
	ErrorMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRun creates the initial run record for a source URL.
func NewRun(sourceURL string, kind SourceKind) *Run {
	now := time.Now().UTC()
	return &Run{
		Key:        RunKey(sourceURL),
		SourceURL:  sourceURL,
		SourceKind: kind,
		Status:     StatusIngesting,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetFailed marks the run failed with the supplied message.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
}

// Triaged reports whether the triage stage already produced an action.
func (r *Run) Triaged() bool {
	return r.TriageAction != ""
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the engine's working copy.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Authors = append([]string(nil), r.Authors...)
	clone.TriageContributions = append([]string(nil), r.TriageContributions...)
	clone.TriageLimitations = append([]string(nil), r.TriageLimitations...)
	clone.TriageTags = append([]string(nil), r.TriageTags...)
	clone.HumanTags = append([]string(nil), r.HumanTags...)
	clone.DeepReadInnovations = append([]string(nil), r.DeepReadInnovations...)
	clone.DeepReadDirections = append([]string(nil), r.DeepReadDirections...)
	return &clone
}
