// Command apery evaluates closed-form constant formulas at arbitrary
// precision and compares them with measured reference values.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/apery/internal/catalog"
	"github.com/talgya/apery/internal/config"
	"github.com/talgya/apery/internal/constants"
	"github.com/talgya/apery/internal/formula"
	"github.com/talgya/apery/internal/precision"
)

var (
	// Global flags
	digits      int
	catalogPath string
	verbose     bool

	cfg config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "apery",
	Short: "Arbitrary-precision constant evaluation and comparison",
	Long: `apery evaluates formulas built from π, φ and ζ(n) at a chosen number of
significant digits and compares the results with reference values.

Settings come from APERY_* environment variables; flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("digits") {
			cfg.Digits = digits
		}
		if cmd.Flags().Changed("catalog") {
			cfg.Catalog = catalogPath
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.Level(),
		}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&digits, "digits", "d", 50, "Significant decimal digits (or set APERY_DIGITS)")
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "YAML catalog file (default: built-in catalog)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(constantCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// newEvaluator builds an evaluator at the configured precision.
func newEvaluator() (*formula.Evaluator, error) {
	pc, err := precision.New(cfg.Digits)
	if err != nil {
		return nil, err
	}
	if pc.Degraded() {
		slog.Warn("precision below practical floor", "digits", cfg.Digits, "floor", precision.PracticalFloor)
	}
	return formula.NewEvaluator(constants.NewProvider(pc)), nil
}

// loadCatalog returns the configured catalog file or the built-in one.
func loadCatalog() (catalog.Catalog, string, error) {
	if cfg.Catalog == "" {
		return catalog.Builtin(), "builtin", nil
	}
	c, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, "", err
	}
	return c, cfg.Catalog, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
