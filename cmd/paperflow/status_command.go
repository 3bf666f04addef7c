package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"paperflow/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-key>",
		Short: "Show the current state of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			run, err := client.Status(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			printRun(cmd, run)
			return nil
		},
	}
}

func sortedStatuses(counts map[string]int) []string {
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	return statuses
}

func printRun(cmd *cobra.Command, run api.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:     %s\n", run.Key)
	fmt.Fprintf(out, "Source:  %s (%s)\n", run.SourceURL, run.SourceKind)
	fmt.Fprintf(out, "Status:  %s\n", run.Status)
	if run.Title != "" {
		fmt.Fprintf(out, "Title:   %s\n", run.Title)
	}
	if len(run.Authors) > 0 {
		fmt.Fprintf(out, "Authors: %s\n", strings.Join(run.Authors, ", "))
	}
	if run.TriageSummary != "" {
		fmt.Fprintf(out, "Triage:  %s (relevance %d/5, suggested %s)\n",
			run.TriageSummary, run.TriageRelevance, run.TriageAction)
	}
	if run.HumanDecision != "" {
		fmt.Fprintf(out, "Decision: %s\n", run.HumanDecision)
	}
	if run.CollectionItemID != "" {
		fmt.Fprintf(out, "Archive entry: %s\n", run.CollectionItemID)
	}
	if run.DetailDocID != "" {
		fmt.Fprintf(out, "Detail document: %s\n", run.DetailDocID)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:   %s\n", run.ErrorMessage)
	}
	fmt.Fprintf(out, "Updated: %s\n", run.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show daemon and collaborator health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if wait > 0 {
				if err := client.WaitReady(cmd.Context(), wait); err != nil {
					return err
				}
			}
			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:   running (pid %d)\n", health.PID)
			fmt.Fprintf(out, "Database: %s\n", health.DatabasePath)
			fmt.Fprintf(out, "Runs:     %d total, %d in flight, %d waiting, %d completed, %d failed\n",
				health.Store.Total, health.Store.InFlight, health.Store.Waiting,
				health.Store.Completed, health.Store.Failed)
			for _, status := range sortedStatuses(health.StatusCounts) {
				fmt.Fprintf(out, "  %-15s %d\n", status, health.StatusCounts[status])
			}
			for _, st := range health.Stages {
				state := "ok"
				if !st.Ready {
					state = "unavailable"
				}
				if st.Detail != "" {
					fmt.Fprintf(out, "  %-15s %s (%s)\n", st.Name, state, st.Detail)
				} else {
					fmt.Fprintf(out, "  %-15s %s\n", st.Name, state)
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Poll until the daemon answers, up to this long")
	return cmd
}
