// Package storage - postgres.go
// PostgreSQL implementation of LedgerRepository, for deployments where the
// audit trail outlives the host running the simulation.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/platform/optimization"
)

// InitPostgres opens a connection pool and ensures the ledger schema exists.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	tuning := optimization.DefaultConfig()
	db.SetMaxOpenConns(tuning.DBMaxOpenConns)
	db.SetMaxIdleConns(tuning.DBMaxIdleConns)

	schema := `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			sim_date DATE NOT NULL,
			entry_type TEXT NOT NULL,
			property_id INTEGER NOT NULL DEFAULT -1,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			detail TEXT NOT NULL DEFAULT '',
			payload JSONB NOT NULL DEFAULT '{}'
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_property_id ON ledger_entries(property_id);
		CREATE INDEX IF NOT EXISTS idx_ledger_entry_type ON ledger_entries(entry_type);
		CREATE INDEX IF NOT EXISTS idx_ledger_sim_date ON ledger_entries(sim_date);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

// PostgresLedgerRepository implements LedgerRepository using PostgreSQL.
type PostgresLedgerRepository struct {
	db *sql.DB
}

// NewPostgresLedgerRepository creates a new PostgreSQL ledger repository.
func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// Append inserts a new entry into the immutable ledger.
func (r *PostgresLedgerRepository) Append(ctx context.Context, entry events.Entry) error {
	payloadJSON, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (id, timestamp, sim_date, entry_type, property_id, amount, detail, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.SimDate,
		string(entry.Type),
		entry.PropertyID,
		entry.Amount,
		entry.Detail,
		payloadJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// GetByProperty retrieves all entries touching a specific property.
func (r *PostgresLedgerRepository) GetByProperty(ctx context.Context, propertyID int) ([]events.Entry, error) {
	query := `
		SELECT id, timestamp, sim_date, entry_type, property_id, amount, detail, payload
		FROM ledger_entries
		WHERE property_id = $1
		ORDER BY timestamp ASC
	`

	return r.queryEntries(ctx, query, propertyID)
}

// GetByType retrieves all entries of a specific type.
func (r *PostgresLedgerRepository) GetByType(ctx context.Context, entryType events.EntryType) ([]events.Entry, error) {
	query := `
		SELECT id, timestamp, sim_date, entry_type, property_id, amount, detail, payload
		FROM ledger_entries
		WHERE entry_type = $1
		ORDER BY timestamp ASC
	`

	return r.queryEntries(ctx, query, string(entryType))
}

// GetAll retrieves the full ledger in insertion order.
func (r *PostgresLedgerRepository) GetAll(ctx context.Context) ([]events.Entry, error) {
	query := `
		SELECT id, timestamp, sim_date, entry_type, property_id, amount, detail, payload
		FROM ledger_entries
		ORDER BY timestamp ASC
	`

	return r.queryEntries(ctx, query)
}

// queryEntries is a helper to execute queries and scan results.
func (r *PostgresLedgerRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]events.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []events.Entry
	for rows.Next() {
		var e events.Entry
		var entryType string
		var simDate time.Time
		var payloadJSON []byte

		err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&simDate,
			&entryType,
			&e.PropertyID,
			&e.Amount,
			&e.Detail,
			&payloadJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		e.Type = events.EntryType(entryType)
		e.SimDate = simDate

		if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Ensure PostgresLedgerRepository implements LedgerRepository
var _ LedgerRepository = (*PostgresLedgerRepository)(nil)
