package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"paperflow/internal/api"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and maintain the run store",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, optionally filtered by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			runs, err := client.Runs(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs.")
				return nil
			}
			printRunsTable(cmd, runs)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Status filter (repeatable)")
	return cmd
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed and failed runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			removed, err := client.ClearRuns(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d finished run(s).\n", removed)
			return nil
		},
	}
}

func printRunsTable(cmd *cobra.Command, runs []api.RunSummary) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, runRow(run))
	}

	out := cmd.OutOrStdout()
	if !stdoutIsTerminal() {
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
		return
	}
	fmt.Fprintln(out, renderRunsTable(rows))
}

func runRow(run api.RunSummary) []string {
	relevance := ""
	if run.TriageRelevance > 0 {
		relevance = strconv.Itoa(run.TriageRelevance)
	}
	return []string{
		run.Key,
		run.Status,
		truncate(run.Title, 48),
		relevance,
		run.HumanDecision,
		run.UpdatedAt.Format("2006-01-02 15:04"),
	}
}

func renderRunsTable(rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"KEY", "STATUS", "TITLE", "RELEVANCE", "DECISION", "UPDATED"})
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
