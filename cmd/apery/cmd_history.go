package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/apery/internal/report"
)

var historyLimit int

// historyCmd lists stored runs or shows one run's outcomes
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List saved runs, or show the outcomes of one run",
	Long: `Without arguments, lists the most recent runs saved with "report --save"
or the API. With a run id, prints that run's stored outcomes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		runs, err := db.RecentRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "no saved runs")
			return nil
		}
		fmt.Fprintln(out, report.Runs(runs, time.Now()))
		return nil
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	run, err := db.GetRun(id)
	if err != nil {
		return err
	}
	rows, err := db.RunOutcomes(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run %s at %s digits, %s\n", run.ID, humanize.Comma(int64(run.Digits)), run.StartedAt.Format(time.RFC3339))
	fmt.Fprintln(out, report.RunDetail(rows, report.DefaultDisplay))
	return nil
}
