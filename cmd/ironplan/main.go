package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"
	"tailscale.com/tsnet"

	"github.com/mfalmeida/ironplan/internal/config"
	"github.com/mfalmeida/ironplan/internal/engine"
	"github.com/mfalmeida/ironplan/internal/mcp"
	"github.com/mfalmeida/ironplan/internal/server"
	"github.com/mfalmeida/ironplan/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("IronPlan starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Seed the cardio pool and stretch entry (idempotent — ON CONFLICT DO NOTHING)
	if err := db.EnsureAuxiliaryExercises(ctx); err != nil {
		log.Warn("auxiliary catalog seed failed", "error", err)
	}

	// Create planner
	gen := engine.NewGenerator(db, engineConfig(cfg), log)

	if *mcpMode {
		mcpSrv := mcp.New(db, gen, Version, log)
		log.Info("mcp server starting", "transport", "stdio")
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	// Nightly horizon refresh
	if cfg.Scheduler.Enabled {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Scheduler.Cron, func() {
			refreshHorizons(db, gen, cfg.Engine.HorizonDays, log)
		}); err != nil {
			log.Error("invalid scheduler cron expression", "cron", cfg.Scheduler.Cron, "error", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		log.Info("scheduler started", "cron", cfg.Scheduler.Cron)
	}

	// Create server
	srv := server.New(db, gen, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		HorizonDays:         cfg.Engine.HorizonDays,
		AvailableMinutes:    cfg.Engine.AvailableMinutes,
		DefaultIncrementKg:  cfg.Engine.DefaultIncrementKg,
		FirstWeekWindowDays: cfg.Engine.FirstWeekWindowDays,
		FirstWeekLoadFactor: cfg.Engine.FirstWeekLoadFactor,
		RedundancyLimit:     cfg.Engine.RedundancyLimit,
		RedundancyWarn:      cfg.Engine.RedundancyWarn,
	}
}

// refreshHorizons extends every user's plan window. Per-user failures are
// logged and skipped so one broken profile cannot stall the nightly run.
func refreshHorizons(db *storage.DB, gen *engine.Generator, days int, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	userIDs, err := db.ListUserIDs(ctx)
	if err != nil {
		log.Error("horizon refresh: listing users failed", "error", err)
		return
	}

	start := time.Now()
	for _, uid := range userIDs {
		result, err := gen.GenerateHorizon(ctx, uid, start, days)
		if err != nil {
			log.Error("horizon refresh failed", "user", uid, "error", err)
			continue
		}
		log.Info("horizon refreshed",
			"user", uid,
			"kept", result.Kept,
			"generated", result.Generated,
			"warnings", len(result.Warnings),
		)
	}
	log.Info("horizon refresh complete", "users", len(userIDs), "duration", time.Since(start).String())
}
