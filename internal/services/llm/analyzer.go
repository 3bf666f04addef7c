package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TriageRequest carries the paper fields the triage call needs.
type TriageRequest struct {
	Title      string
	Abstract   string
	ContentURL string
}

// TriageResult is the model's first-pass assessment of a paper.
type TriageResult struct {
	Summary         string   `json:"summary"`
	Contributions   []string `json:"contributions"`
	Limitations     []string `json:"limitations"`
	Relevance       int      `json:"relevance"`
	SuggestedAction string   `json:"suggested_action"`
	SuggestedTags   []string `json:"suggested_tags"`
}

// DeepRequest carries the paper fields the deep-read call needs.
type DeepRequest struct {
	Title         string
	Abstract      string
	TriageSummary string
	ContentURL    string
}

// DeepResult is the model's detailed reading report.
type DeepResult struct {
	Overview    string   `json:"overview"`
	Innovations []string `json:"innovations"`
	Directions  []string `json:"directions"`
}

// Triage produces the first-pass assessment for a paper. The relevance
// score is clamped to 1..5; a malformed action string is preserved as-is
// since the caller owns coercion into the decision set.
func (c *Client) Triage(ctx context.Context, req TriageRequest) (TriageResult, error) {
	var empty TriageResult
	if strings.TrimSpace(req.Title) == "" {
		return empty, errors.New("llm triage: title required")
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Title: %s\n", req.Title)
	if req.Abstract != "" {
		fmt.Fprintf(&prompt, "Abstract: %s\n", req.Abstract)
	}
	if req.ContentURL != "" {
		fmt.Fprintf(&prompt, "Link: %s\n", req.ContentURL)
	}

	content, err := c.CompleteJSON(ctx, TriagePrompt, prompt.String())
	if err != nil {
		return empty, err
	}
	var parsed TriageResult
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return empty, fmt.Errorf("llm triage: parse payload: %w", err)
	}
	parsed.Summary = strings.TrimSpace(parsed.Summary)
	parsed.SuggestedAction = strings.TrimSpace(parsed.SuggestedAction)
	if parsed.Relevance < 1 {
		parsed.Relevance = 1
	}
	if parsed.Relevance > 5 {
		parsed.Relevance = 5
	}
	return parsed, nil
}

// DeepAnalyze produces the detailed reading report for a paper.
func (c *Client) DeepAnalyze(ctx context.Context, req DeepRequest) (DeepResult, error) {
	var empty DeepResult
	if strings.TrimSpace(req.Title) == "" {
		return empty, errors.New("llm deep read: title required")
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Title: %s\n", req.Title)
	if req.Abstract != "" {
		fmt.Fprintf(&prompt, "Abstract: %s\n", req.Abstract)
	}
	if req.TriageSummary != "" {
		fmt.Fprintf(&prompt, "Triage summary: %s\n", req.TriageSummary)
	}
	if req.ContentURL != "" {
		fmt.Fprintf(&prompt, "Link: %s\n", req.ContentURL)
	}

	content, err := c.CompleteJSON(ctx, DeepReadPrompt, prompt.String())
	if err != nil {
		return empty, err
	}
	var parsed DeepResult
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return empty, fmt.Errorf("llm deep read: parse payload: %w", err)
	}
	parsed.Overview = strings.TrimSpace(parsed.Overview)
	if parsed.Overview == "" {
		return empty, errors.New("llm deep read: empty overview")
	}
	return parsed, nil
}
