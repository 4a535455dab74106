// Package history implements the history command for inspecting past
// reconciliation runs.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dialoggauge/catalogsync/internal/store"
)

// AppContext defines what the history commands need from the app.
type AppContext interface {
	Logger() *zerolog.Logger
}

// NewCommand creates the history command with app dependencies. Called
// bare it lists recent runs; `show` prints one run's full report.
func NewCommand(app AppContext, historyPath string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past reconciliation runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listRuns(cmd, historyPath, limit)
		},
	}

	cmd.PersistentFlags().StringVar(&historyPath, "history", historyPath, "run history database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list (0 for all)")

	cmd.AddCommand(newShowCommand(&historyPath))

	return cmd
}

func listRuns(cmd *cobra.Command, historyPath string, limit int) error {
	s, err := store.Open(historyPath)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-38s %-10s %-20s %-8s %8s %8s %8s %7s\n",
		"RUN", "STATUS", "STARTED", "TRIGGER", "CREATED", "UPDATED", "ARCHIVED", "ERRORS")
	for _, run := range runs {
		fmt.Fprintf(out, "%-38s %-10s %-20s %-8s %8d %8d %8d %7d\n",
			run.RunID,
			run.Status,
			run.StartedAt.Local().Format(time.DateTime),
			run.TriggeredBy,
			run.TotalCreated,
			run.TotalUpdated,
			run.TotalArchived,
			run.TotalErrors,
		)
	}
	return nil
}

func newShowCommand(historyPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run's full report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(*historyPath)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
