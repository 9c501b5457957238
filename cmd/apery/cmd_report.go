package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/apery/internal/catalog"
	"github.com/talgya/apery/internal/persistence"
	"github.com/talgya/apery/internal/report"
)

var (
	display    int
	saveRun    bool
	failOnMiss bool
)

// reportCmd evaluates a catalog and prints the comparison table
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Evaluate a catalog and compare each entry with its reference",
	Long: `Evaluates every entry of the catalog at the configured precision and
prints predicted values, relative errors and verdicts.

Examples:
  apery report
  apery report --digits 200 --save
  apery report --catalog formulas.yaml --display 20`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&display, "display", report.DefaultDisplay, "Significant digits shown per value")
	reportCmd.Flags().BoolVar(&saveRun, "save", false, "Store the run in the history database")
	reportCmd.Flags().BoolVar(&failOnMiss, "fail-on-miss", false, "Exit non-zero if an entry misses or fails")
}

func runReport(cmd *cobra.Command, args []string) error {
	c, source, err := loadCatalog()
	if err != nil {
		return err
	}
	eval, err := newEvaluator()
	if err != nil {
		return err
	}

	start := time.Now()
	outs, err := catalog.NewRunner(eval, cfg.Workers).Run(cmd.Context(), c)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Outcomes(outs, display))
	fmt.Fprintln(out, report.Summary(outs, cfg.Digits, elapsed))

	if saveRun {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		run, err := db.SaveRun(cfg.Digits, source, outs)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		if err := db.SaveMeta("last_run", run.ID.String()); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
		fmt.Fprintln(out, "saved run", run.ID)
	}

	if failOnMiss {
		t := report.Tally(outs)
		if n := t["miss"] + t["error"]; n > 0 {
			return fmt.Errorf("%d entries missed or failed", n)
		}
	}
	return nil
}

// openDB opens the history database, creating its directory.
func openDB() (*persistence.DB, error) {
	if err := ensureDir(cfg.DBPath); err != nil {
		return nil, err
	}
	return persistence.Open(cfg.DBPath)
}
