// Command syncer executes one Run of the incremental sync pipeline and
// exits. Scheduling (when to run, one run at a time) belongs to the external
// scheduler invoking this binary.
//
// Exit codes: 0 = Run completed (individual symbols may still have failed,
// see the summary), 1 = Run-level failure.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rgaleev/stocksync/internal/config"
	"github.com/rgaleev/stocksync/internal/database"
	"github.com/rgaleev/stocksync/internal/model"
	"github.com/rgaleev/stocksync/internal/pipeline"
	"github.com/rgaleev/stocksync/internal/source"
	"github.com/rgaleev/stocksync/internal/version"
	"github.com/rgaleev/stocksync/internal/watermark"
	"github.com/rgaleev/stocksync/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/syncer.yaml", "path to config file")
	asOfFlag := flag.String("as-of", "", "reference run date (YYYY-MM-DD, default today)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting syncer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Optional .env for local runs; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	asOf, err := resolveAsOf(*asOfFlag, cfg.Sync.AsOf)
	if err != nil {
		logger.Error("invalid as-of date", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	client := source.NewClient(
		cfg.Source.BaseURL,
		source.WithTimeout(cfg.Source.Timeout()),
		source.WithLogger(logger),
	)

	orch := pipeline.New(
		pipeline.Config{
			AsOf:        asOf,
			FetchDelay:  cfg.Sync.FetchDelay(),
			Concurrency: cfg.Sync.Concurrency,
		},
		client,
		watermark.NewTracker(pool),
		writer.NewBarWriter(pool, logger),
		logger,
	)

	summary, err := orch.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	for _, r := range summary.Results {
		if r.State == model.StateFailed {
			logger.Warn("symbol did not sync", "symbol", r.Symbol, "error", r.Err)
		}
	}

	logger.Info("syncer finished",
		"run_id", summary.RunID,
		"done", summary.Done,
		"failed", summary.Failed,
		"rows_written", summary.RowsWritten,
		"rows_failed", summary.RowsFailed,
		"rows_rejected", summary.RowsRejected,
	)
}

// resolveAsOf picks the run's reference date: flag over config over today.
func resolveAsOf(flagVal, cfgVal string) (time.Time, error) {
	raw := flagVal
	if raw == "" {
		raw = cfgVal
	}
	if raw == "" {
		return pipeline.Today(), nil
	}
	return time.Parse(time.DateOnly, raw)
}
