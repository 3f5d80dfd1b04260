// Package main is the entry point for the estate simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbellver/estatesim/internal/config"
	"github.com/mbellver/estatesim/internal/engine"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/infra/storage"
	"github.com/mbellver/estatesim/internal/network"
	"github.com/mbellver/estatesim/internal/platform/logger"
	"github.com/mbellver/estatesim/internal/platform/metrics"
)

var (
	flagConfig      string
	flagAddr        string
	flagDB          string
	flagPostgresDSN string
	flagSeed        int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "estate-server",
		Short: "Authoritative server for the real-estate investment simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPostgresDSN, "postgres-dsn", "", "PostgreSQL DSN for the audit trail (takes precedence over SQLite)")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "simulation seed, 0 for random (overrides config)")

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Replay the persisted ledger and cross-check it against the last snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit()
		},
	}
	rootCmd.AddCommand(auditCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAudit() error {
	appLogger := logger.NewLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDB != "" {
		cfg.Server.DatabasePath = flagDB
	}

	var ledgerRepo storage.LedgerRepository
	var snapRepo storage.SnapshotRepository
	switch {
	case flagPostgresDSN != "":
		db, err := storage.InitPostgres(flagPostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		ledgerRepo = storage.NewPostgresLedgerRepository(db)
		snapRepo = noSnapshots{}
	case cfg.Server.DatabasePath != "":
		db, err := storage.InitSQLite(cfg.Server.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		ledgerRepo = storage.NewSQLiteLedgerRepository(db)
		snapRepo = storage.NewSQLiteSnapshotRepository(db)
	default:
		return fmt.Errorf("audit needs a database: set --db or --postgres-dsn")
	}

	auditor := storage.NewAuditor(ledgerRepo, snapRepo)
	report, err := auditor.Audit(context.Background(), cfg.Simulation.StartingCash, 1.0)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if report.SnapshotFound && !report.WithinTolerance {
		appLogger.Error("Ledger does not reconcile with last snapshot: drift $%.2f", report.CashDrift)
		return fmt.Errorf("ledger drift exceeds tolerance")
	}
	appLogger.Info("Ledger audit complete: %d entries.", report.TotalEntries)
	return nil
}

// noSnapshots is used when the backend stores the ledger only.
type noSnapshots struct{}

func (noSnapshots) Save(context.Context, storage.WorldSnapshot) error { return nil }
func (noSnapshots) Latest(context.Context) (*storage.WorldSnapshot, error) {
	return nil, nil
}

func run() error {
	appLogger := logger.NewLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagDB != "" {
		cfg.Server.DatabasePath = flagDB
	}
	if flagSeed != 0 {
		cfg.Simulation.Seed = flagSeed
	}

	var ledger *events.Ledger
	var snapRepo *storage.SQLiteSnapshotRepository
	switch {
	case flagPostgresDSN != "":
		appLogger.Info("Initializing PostgreSQL audit database...")
		db, err := storage.InitPostgres(flagPostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		ledger = events.NewLedger(storage.NewLedgerPersister(storage.NewPostgresLedgerRepository(db)))
	case cfg.Server.DatabasePath == "":
		appLogger.Warn("No database path configured; audit trail is memory-only.")
		ledger = events.NewLedger(nil)
	default:
		appLogger.Info("Initializing SQLite database %q...", cfg.Server.DatabasePath)
		db, err := storage.InitSQLite(cfg.Server.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		ledger = events.NewLedger(storage.NewLedgerPersister(storage.NewSQLiteLedgerRepository(db)))
		snapRepo = storage.NewSQLiteSnapshotRepository(db)
	}

	appLogger.Info("Bootstrapping world...")
	world, err := engine.NewWorld(cfg, ledger, appLogger)
	if err != nil {
		return err
	}
	clock := engine.NewClock(world)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go clock.Start(ctx)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(world, clock, appLogger)
	go hub.Run(ctx)
	hub.StartSnapshotPusher(ctx, time.Second)
	hub.StartLedgerPoller(ctx, ledger)

	// Automated state backup routine
	if snapRepo != nil {
		go func() {
			backupTicker := time.NewTicker(30 * time.Second)
			defer backupTicker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-backupTicker.C:
					snap := world.Snapshot()
					stateJSON, err := json.Marshal(snap)
					if err != nil {
						appLogger.Error("Failed to serialize world snapshot: %v", err)
						continue
					}
					err = snapRepo.Save(ctx, storage.WorldSnapshot{
						SimDate:      snap.Date.Format("2006-01-02"),
						TickCount:    snap.TickCount,
						Cash:         snap.Cash,
						TotalDebt:    snap.Debt.TotalDebt,
						CreditScore:  snap.Debt.BankCreditScore,
						InterestRate: snap.Debt.BaseInterestRate,
						StateJSON:    string(stateJSON),
					})
					if err != nil {
						appLogger.Error("Failed to persist world snapshot: %v", err)
					}
				}
			}
		}()
	}

	// Setup API routes
	mux := http.NewServeMux()
	network.NewAPIBridge(world, clock, hub, appLogger).RegisterRoutes(mux)
	network.NewLedgerReplayHandler(ledger, appLogger).RegisterRoutes(mux)
	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		appLogger.Info("HTTP API & WS server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed: %v", err)
			cancel()
		}
	}()

	appLogger.Info("Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down...")
	clock.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
