package api

import (
	"time"

	"paperflow/internal/paper"
	"paperflow/internal/stage"
	"paperflow/internal/workflow"
)

// TriggerRequest starts or re-enters a run for a paper source.
type TriggerRequest struct {
	SourceURL string `json:"source_url"`
	Kind      string `json:"kind,omitempty"`
}

// ResumeRequest injects a human decision into a suspended run.
type ResumeRequest struct {
	RunKey   string   `json:"run_key"`
	Decision string   `json:"decision"`
	Tags     []string `json:"tags,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}

// RunSummary is the wire view of a run record.
type RunSummary struct {
	Key              string    `json:"key"`
	SourceURL        string    `json:"source_url"`
	SourceKind       string    `json:"source_kind"`
	Title            string    `json:"title,omitempty"`
	Authors          []string  `json:"authors,omitempty"`
	Year             int       `json:"year,omitempty"`
	Abstract         string    `json:"abstract,omitempty"`
	PDFURL           string    `json:"pdf_url,omitempty"`
	TriageSummary    string    `json:"triage_summary,omitempty"`
	TriageRelevance  int       `json:"triage_relevance,omitempty"`
	TriageAction     string    `json:"triage_action,omitempty"`
	TriageTags       []string  `json:"triage_tags,omitempty"`
	CollectionItemID string    `json:"collection_item_id,omitempty"`
	DetailDocID      string    `json:"detail_doc_id,omitempty"`
	HumanDecision    string    `json:"human_decision,omitempty"`
	HumanTags        []string  `json:"human_tags,omitempty"`
	HumanComment     string    `json:"human_comment,omitempty"`
	Status           string    `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FromRun converts a run record into its wire view.
func FromRun(run *paper.Run) RunSummary {
	if run == nil {
		return RunSummary{}
	}
	return RunSummary{
		Key:              run.Key,
		SourceURL:        run.SourceURL,
		SourceKind:       string(run.SourceKind),
		Title:            run.Title,
		Authors:          append([]string(nil), run.Authors...),
		Year:             run.Year,
		Abstract:         run.Abstract,
		PDFURL:           run.PDFURL,
		TriageSummary:    run.TriageSummary,
		TriageRelevance:  run.TriageRelevance,
		TriageAction:     run.TriageAction,
		TriageTags:       append([]string(nil), run.TriageTags...),
		CollectionItemID: run.CollectionItemID,
		DetailDocID:      run.DetailDocID,
		HumanDecision:    run.HumanDecision,
		HumanTags:        append([]string(nil), run.HumanTags...),
		HumanComment:     run.HumanComment,
		Status:           string(run.Status),
		ErrorMessage:     run.ErrorMessage,
		CreatedAt:        run.CreatedAt,
		UpdatedAt:        run.UpdatedAt,
	}
}

// OutcomeResponse reports where a trigger or resume left the run.
type OutcomeResponse struct {
	State   string                 `json:"state"`
	Run     RunSummary             `json:"run"`
	Payload *stage.DecisionPayload `json:"decision_payload,omitempty"`
}

// FromOutcome converts an engine outcome into its wire view.
func FromOutcome(outcome workflow.Outcome) OutcomeResponse {
	return OutcomeResponse{
		State:   string(outcome.State),
		Run:     FromRun(outcome.Run),
		Payload: outcome.Payload,
	}
}

// RunListResponse wraps the run listing endpoint payload.
type RunListResponse struct {
	Runs []RunSummary `json:"runs"`
}

// ClearResponse reports how many finished runs were removed.
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// StageHealth is the wire view of a single collaborator check.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// StoreHealth is the wire view of run-store counters.
type StoreHealth struct {
	Total     int `json:"total"`
	InFlight  int `json:"in_flight"`
	Waiting   int `json:"waiting"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// HealthResponse is the daemon health endpoint payload. StatusCounts
// breaks the store totals down by exact run status.
type HealthResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"database_path"`
	LockFilePath string         `json:"lock_file_path"`
	Store        StoreHealth    `json:"store"`
	StatusCounts map[string]int `json:"status_counts,omitempty"`
	Stages       []StageHealth  `json:"stages"`
}

// Ready reports whether every stage check passed.
func (h HealthResponse) Ready() bool {
	for _, st := range h.Stages {
		if !st.Ready {
			return false
		}
	}
	return true
}

// ErrorResponse carries a failure message for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
