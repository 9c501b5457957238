package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/apery/internal/api"
)

var evalPerHour int

// serveCmd runs the HTTP API until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve constants, catalog evaluations and run history over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&evalPerHour, "eval-per-hour", 60, "Evaluating requests (catalog, constant) allowed per client per hour")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	c, source, err := loadCatalog()
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return fmt.Errorf("APERY_PORT: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if cfg.AdminKey == "" {
		slog.Warn("APERY_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	limiter := api.NewRateLimiter(evalPerHour, time.Hour)
	defer limiter.Stop()

	server := &api.Server{
		DB:          db,
		Catalog:     c,
		Digits:      cfg.Digits,
		MaxDigits:   cfg.MaxDigits,
		Workers:     cfg.Workers,
		Port:        port,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
		Evaluate:    limiter,
	}
	srv := server.Start()
	slog.Info("serving catalog", "source", source, "entries", len(c), "digits", cfg.Digits)
	fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost:%d/api/v1/status\n", port)

	<-cmd.Context().Done()
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
