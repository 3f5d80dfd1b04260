package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/mbellver/estatesim/internal/platform/optimization"
)

// InitSQLite initializes the local SQLite database and creates the necessary
// schemas for persisting the ledger and periodic world snapshots.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	tuning := optimization.DefaultConfig()
	db.SetMaxOpenConns(tuning.DBMaxOpenConns)
	db.SetMaxIdleConns(tuning.DBMaxIdleConns)

	// Create tables
	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			sim_date TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			property_id INTEGER NOT NULL DEFAULT -1,
			amount REAL NOT NULL DEFAULT 0,
			detail TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '{}'
		);`,
		`CREATE TABLE IF NOT EXISTS world_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at DATETIME NOT NULL,
			sim_date TEXT NOT NULL,
			tick_count INTEGER NOT NULL,
			cash REAL NOT NULL,
			total_debt REAL NOT NULL,
			credit_score INTEGER NOT NULL,
			interest_rate REAL NOT NULL,
			state_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_property_id ON ledger_entries(property_id);`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entry_type ON ledger_entries(entry_type);`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_sim_date ON ledger_entries(sim_date);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
