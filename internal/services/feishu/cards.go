package feishu

import (
	"context"
	"fmt"
	"strings"

	"paperflow/internal/paper"
	"paperflow/internal/stage"
)

// SendDecisionCard posts the triage summary with deep_read/skim/drop
// buttons. The card action value round-trips the run key so the callback
// can resume the right run.
func (c *Client) SendDecisionCard(ctx context.Context, receiveID string, payload stage.DecisionPayload) error {
	var lines []string
	lines = append(lines, fmt.Sprintf("**%s**", payload.Title))
	if payload.Summary != "" {
		lines = append(lines, payload.Summary)
	}
	if len(payload.Contributions) > 0 {
		lines = append(lines, "**Contributions**")
		for _, item := range payload.Contributions {
			lines = append(lines, "- "+item)
		}
	}
	if len(payload.Limitations) > 0 {
		lines = append(lines, "**Limitations**")
		for _, item := range payload.Limitations {
			lines = append(lines, "- "+item)
		}
	}
	lines = append(lines, fmt.Sprintf("Relevance: %d/5 | Suggested: %s", payload.Relevance, payload.Suggested))
	if len(payload.SuggestedTags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(payload.SuggestedTags, ", "))
	}

	card := map[string]any{
		"config": map[string]any{"wide_screen_mode": true},
		"header": map[string]any{
			"title": map[string]any{"tag": "plain_text", "content": "Paper triage"},
		},
		"elements": []any{
			map[string]any{
				"tag":  "div",
				"text": map[string]any{"tag": "lark_md", "content": strings.Join(lines, "\n")},
			},
			map[string]any{
				"tag": "action",
				"actions": []any{
					decisionButton("Deep read", payload.RunKey, string(paper.DecisionDeepRead), "primary"),
					decisionButton("Skim", payload.RunKey, string(paper.DecisionSkim), "default"),
					decisionButton("Drop", payload.RunKey, string(paper.DecisionDrop), "danger"),
				},
			},
		},
	}
	return c.SendCard(ctx, receiveID, card)
}

func decisionButton(label, runKey, decision, kind string) map[string]any {
	return map[string]any{
		"tag":  "button",
		"text": map[string]any{"tag": "plain_text", "content": label},
		"type": kind,
		"value": map[string]any{
			"run_key":  runKey,
			"decision": decision,
		},
	}
}

// SendCompletion posts the final outcome for a run.
func (c *Client) SendCompletion(ctx context.Context, receiveID string, run *paper.Run) error {
	if run == nil {
		return nil
	}
	var text string
	switch run.Status {
	case paper.StatusCompleted:
		text = fmt.Sprintf("Done: %s (%s)", run.Title, run.HumanDecision)
		if run.DetailDocID != "" {
			text += "\nDeep-read notes archived."
		}
	case paper.StatusFailed:
		text = fmt.Sprintf("Failed: %s\n%s", run.Title, run.ErrorMessage)
	default:
		text = fmt.Sprintf("%s: %s", run.Status, run.Title)
	}
	return c.SendText(ctx, receiveID, text)
}
