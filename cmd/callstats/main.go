package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aevon-lab/callstats/internal/aggregation"
	corecfg "github.com/aevon-lab/callstats/internal/core/config"
	"github.com/aevon-lab/callstats/internal/core/storage/postgres"
	"github.com/aevon-lab/callstats/internal/core/storage/sqlite"
	"github.com/aevon-lab/callstats/internal/enrichment"
	"github.com/aevon-lab/callstats/internal/ingestion"
	"github.com/aevon-lab/callstats/internal/migrations"
	"github.com/aevon-lab/callstats/internal/projection"
	"github.com/aevon-lab/callstats/internal/server"
	"github.com/aevon-lab/callstats/internal/syncdelta"
)

func main() {
	configPath := flag.String("config", "callstats.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Optional dotenv file loaded before the environment")
	flag.Parse()

	// 0. Load Configuration
	path := *configPath
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	cfg, err := corecfg.Load(path, *envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 1. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)
	slog.Info("Loaded config",
		"config_file", path,
		"local_path", cfg.Local.Path,
		"remote_enabled", cfg.Remote.Enabled,
		"sync_interval", cfg.SyncInterval(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Local Storage (SQLite)
	local, err := sqlite.Open(cfg.Local.Path)
	if err != nil {
		slog.Error("Failed to open local store", "error", err)
		os.Exit(1)
	}
	defer local.Close()

	identityID := cfg.Sync.IdentityID
	if identityID == "" {
		identityID, err = local.InstallationID(ctx)
		if err != nil {
			slog.Error("Failed to resolve installation id", "error", err)
			os.Exit(1)
		}
	}

	// 3. Initialize Remote Counters (PostgreSQL), optional
	var (
		remoteDB *sql.DB
		counters syncdelta.CounterStore
	)
	if cfg.Remote.Enabled {
		remoteDB, err = postgres.Open(cfg.Remote.DSN, cfg.Remote.MaxOpenConns, cfg.Remote.MaxIdleConns)
		if err != nil {
			slog.Error("Failed to connect to remote store", "error", err)
			os.Exit(1)
		}
		defer remoteDB.Close()

		if err := migrations.RunMigrations(remoteDB, cfg.Remote.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		if err := postgres.ValidateSchema(ctx, remoteDB); err != nil {
			slog.Error("Remote schema is not ready", "error", err)
			os.Exit(1)
		}
		counters = postgres.NewCounterAdapter(remoteDB, cfg.Remote.DocumentID, cfg.Remote.MaxAttempts)
	} else {
		slog.Info("Remote sync disabled by config, running local-only")
	}

	engine := syncdelta.NewEngine(counters, local, syncdelta.Options{
		Enabled:    cfg.Remote.Enabled,
		IdentityID: identityID,
		Timeout:    cfg.RemoteTimeout(),
	})

	// 4. Initialize Enrichment
	var lookup enrichment.IdentityLookup
	if cfg.Enrichment.ContactsFile != "" {
		contacts, err := enrichment.WatchContacts(ctx, cfg.Enrichment.ContactsFile)
		if err != nil {
			slog.Error("Failed to load contacts", "error", err)
			os.Exit(1)
		}
		lookup = contacts
	}
	enricher := enrichment.NewEnricher(lookup, enrichment.Options{
		Workers:       cfg.Enrichment.Workers,
		LookupTimeout: cfg.LookupTimeout(),
	})

	// 5. Initialize Ingestion
	ingestionSvc := ingestion.NewService(local, cfg.Server.MaxBodySizeMB, cfg.Ingestion.MaxBatch)
	if cfg.Ingestion.ImportFile != "" {
		result, err := ingestionSvc.ImportFile(ctx, cfg.Ingestion.ImportFile)
		if err != nil {
			slog.Error("Failed to import call log file", "path", cfg.Ingestion.ImportFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Call log file imported",
			"path", cfg.Ingestion.ImportFile,
			"read", result.Read,
			"stored", result.Stored,
			"duplicates", result.Duplicates,
			"invalid", result.Invalid,
		)
	}

	// 6. Initialize Projection and Refresh
	projectionSvc := projection.NewService(local, enricher, cfg.Aggregation.Workers)
	refreshJob := aggregation.NewRefreshJob(projectionSvc, local, engine)
	scheduler := aggregation.NewScheduler(cfg.SyncInterval(), refreshJob)

	// 7. Initialize Server
	checks := map[string]server.HealthChecker{"local": local}
	if remoteDB != nil {
		checks["remote"] = remoteDB
	}
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, checks)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)
	refreshJob.RegisterRoutes(srv.Engine)
	engine.RegisterRoutes(srv.Engine)

	// 8. Start Services
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		if err := scheduler.Start(ctx); err != nil {
			slog.Error("Scheduler stopped with error", "error", err)
		}
	}()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		cancel()
	}

	// The scheduler runs one last refresh before returning.
	<-schedulerDone
	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
