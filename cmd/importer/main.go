// Command importer loads bulk historical CSV exports into the bar table.
// One-shot: it walks the configured directory once, imports every
// <SYMBOL>_historical.csv through the per-row upsert writer, and exits.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rgaleev/stocksync/internal/config"
	"github.com/rgaleev/stocksync/internal/csvload"
	"github.com/rgaleev/stocksync/internal/database"
	"github.com/rgaleev/stocksync/internal/version"
	"github.com/rgaleev/stocksync/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/syncer.yaml", "path to config file")
	dirFlag := flag.String("dir", "", "directory of *_historical.csv files (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting importer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dir := cfg.Importer.Dir
	if *dirFlag != "" {
		dir = *dirFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	loader := csvload.New(writer.NewBarWriter(pool, logger), logger)
	results, err := loader.LoadDir(ctx, dir)
	if err != nil {
		logger.Error("import failed", "dir", dir, "error", err)
		os.Exit(1)
	}

	var files, failed, rows int
	for _, r := range results {
		files++
		rows += r.RowsWritten
		if r.Err != nil {
			failed++
		}
	}

	logger.Info("importer finished",
		"dir", dir,
		"files", files,
		"files_failed", failed,
		"rows_written", rows,
	)
}
