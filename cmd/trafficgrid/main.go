// trafficgrid - Traffic Simulation Control Plane
//
// This is the main entry point for the trafficgrid service. It exposes an
// HTTP control API for a Unity traffic-light simulation and talks to the
// simulation host exclusively through the file system:
//   - commands go out as write-once JSON files in a mailbox directory
//   - state comes back by re-reading a status snapshot the host overwrites
//   - host liveness is probed via the process table (pgrep)
//
// There is no socket between the two sides; the shared directory is the
// whole integration surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "trafficgrid/migrations"

	"trafficgrid/internal/api"
	"trafficgrid/internal/control"
	"trafficgrid/internal/infrastructure/config"
	"trafficgrid/internal/infrastructure/database"
	"trafficgrid/internal/infrastructure/logging"
	"trafficgrid/internal/journal"
	"trafficgrid/internal/mailbox"
	"trafficgrid/internal/probe"
	"trafficgrid/internal/snapshot"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting trafficgrid",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database for the command journal
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	journalRepo := journal.NewSQLiteRepository(db.DB)

	// Mailbox writer (creates the commands directory if missing)
	writer, err := mailbox.NewWriter(cfg.Simulation.CommandsDir, log)
	if err != nil {
		return fmt.Errorf("initialising mailbox: %w", err)
	}
	log.Info("mailbox ready", "dir", cfg.Simulation.CommandsDir)

	// Snapshot reader and liveness probe
	reader := snapshot.NewReader(cfg.Simulation.StatusFile, log)
	prober := probe.New(cfg.Simulation.ProcessName, cfg.Simulation.ProbeTimeout(), log)
	if snap, ok := reader.Read(); ok {
		log.Info("simulation snapshot found",
			"lights", snap.TotalLights,
			"system_active", snap.SystemActive,
		)
	} else {
		log.Info("simulation snapshot not present yet",
			"expected_file", cfg.Simulation.StatusFile,
		)
	}

	// Orchestrator ties the mailbox, snapshot, and journal together
	orchestrator := control.New(writer, reader, journalRepo, log)

	// HTTP API server
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Sim:          cfg.Simulation,
		Logger:       log,
		Orchestrator: orchestrator,
		Snapshot:     reader,
		Prober:       prober,
		Journal:      journalRepo,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("trafficgrid ready",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"dashboard", "/dashboard",
	)

	// Block until shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Give in-flight work a moment to settle before the defer chain runs
	time.Sleep(100 * time.Millisecond)

	return nil
}

// getConfigPath returns the configuration file path.
// Uses TRAFFICGRID_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TRAFFICGRID_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
