package main

import (
	"strings"

	"github.com/spf13/cobra"

	"paperflow/internal/api"
)

func newResumeCommand(ctx *commandContext) *cobra.Command {
	var decision string
	var tags []string
	var comment string

	cmd := &cobra.Command{
		Use:   "resume <run-key>",
		Short: "Answer a pending decision for a suspended run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			outcome, err := client.Resume(cmd.Context(), api.ResumeRequest{
				RunKey:   strings.TrimSpace(args[0]),
				Decision: decision,
				Tags:     tags,
				Comment:  comment,
			})
			if err != nil {
				return err
			}
			printOutcome(cmd, outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&decision, "decision", "d", "", "Decision: deep_read, skim, or drop")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach to the archive entry (repeatable)")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment to attach to the archive entry")
	_ = cmd.MarkFlagRequired("decision")
	return cmd
}
