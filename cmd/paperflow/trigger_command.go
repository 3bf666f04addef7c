package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperflow/internal/api"
	"paperflow/internal/workflow"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "trigger <source-url>",
		Short: "Submit a paper and advance it until it needs a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			outcome, err := client.Trigger(cmd.Context(), strings.TrimSpace(args[0]), kind)
			if err != nil {
				return err
			}
			printOutcome(cmd, outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Source kind: arxiv, pdf, or url (detected when omitted)")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome api.OutcomeResponse) {
	out := cmd.OutOrStdout()
	switch outcome.State {
	case string(workflow.StateSuspended):
		payload := outcome.Payload
		fmt.Fprintf(out, "Run %s is waiting for your decision.\n\n", outcome.Run.Key)
		if payload != nil {
			fmt.Fprintf(out, "  Title:     %s\n", payload.Title)
			fmt.Fprintf(out, "  Summary:   %s\n", payload.Summary)
			fmt.Fprintf(out, "  Relevance: %d/5\n", payload.Relevance)
			if payload.Suggested != "" {
				fmt.Fprintf(out, "  Suggested: %s\n", payload.Suggested)
			}
			if len(payload.SuggestedTags) > 0 {
				fmt.Fprintf(out, "  Tags:      %s\n", strings.Join(payload.SuggestedTags, ", "))
			}
		}
		fmt.Fprintf(out, "\nAnswer with: paperflow resume %s --decision deep_read|skim|drop\n", outcome.Run.Key)
	case string(workflow.StateCompleted):
		fmt.Fprintf(out, "Run %s completed.\n", outcome.Run.Key)
		if outcome.Run.DetailDocID != "" {
			fmt.Fprintf(out, "  Detail document: %s\n", outcome.Run.DetailDocID)
		}
	case string(workflow.StateFailed):
		fmt.Fprintf(out, "Run %s failed: %s\n", outcome.Run.Key, outcome.Run.ErrorMessage)
	default:
		fmt.Fprintf(out, "Run %s: %s\n", outcome.Run.Key, outcome.State)
	}
}
