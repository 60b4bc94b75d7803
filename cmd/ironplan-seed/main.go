package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mfalmeida/ironplan/internal/catalog"
	"github.com/mfalmeida/ironplan/internal/config"
	"github.com/mfalmeida/ironplan/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	seedPath := flag.String("seed", "", "path to exercise catalog export (SQLite, required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *seedPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironplan-seed -config config.yaml -seed /path/to/catalog.db [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if info, err := os.Stat(*seedPath); err != nil || info.IsDir() {
		log.Error("seed path does not exist or is a directory", "path", *seedPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Run import
	imp := catalog.New(db, log, *dryRun)
	stats, err := imp.Import(ctx, *seedPath)
	if err != nil {
		log.Error("seed import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("seed import complete")
}

func printStats(log *slog.Logger, stats *catalog.Stats) {
	log.Info("seed import stats",
		"rows_read", stats.RowsRead,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
	)
	if len(stats.UnknownGroups) > 0 {
		log.Warn("unknown muscle groups in export", "groups", stats.UnknownGroups)
	}
}
