package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/platform/metrics"
)

const simDateLayout = "2006-01-02"

// SQLiteLedgerRepository implements LedgerRepository for SQLite.
type SQLiteLedgerRepository struct {
	db *sql.DB
}

func NewSQLiteLedgerRepository(db *sql.DB) *SQLiteLedgerRepository {
	return &SQLiteLedgerRepository{db: db}
}

func (r *SQLiteLedgerRepository) Append(ctx context.Context, entry events.Entry) error {
	payloadBytes, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (id, timestamp, sim_date, entry_type, property_id, amount, detail, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.Timestamp, entry.SimDate.Format(simDateLayout),
		string(entry.Type), entry.PropertyID, entry.Amount, entry.Detail,
		string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *SQLiteLedgerRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]events.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []events.Entry
	for rows.Next() {
		var e events.Entry
		var simDate, entryType, payloadStr string
		err := rows.Scan(
			&e.ID, &e.Timestamp, &simDate, &entryType, &e.PropertyID,
			&e.Amount, &e.Detail, &payloadStr,
		)
		if err != nil {
			return nil, err
		}
		e.Type = events.EntryType(entryType)
		if e.SimDate, err = time.Parse(simDateLayout, simDate); err != nil {
			return nil, fmt.Errorf("bad sim_date %q: %w", simDate, err)
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteLedgerRepository) GetByProperty(ctx context.Context, propertyID int) ([]events.Entry, error) {
	query := `SELECT id, timestamp, sim_date, entry_type, property_id, amount, detail, payload FROM ledger_entries WHERE property_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, propertyID)
}

func (r *SQLiteLedgerRepository) GetByType(ctx context.Context, entryType events.EntryType) ([]events.Entry, error) {
	query := `SELECT id, timestamp, sim_date, entry_type, property_id, amount, detail, payload FROM ledger_entries WHERE entry_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, string(entryType))
}

func (r *SQLiteLedgerRepository) GetAll(ctx context.Context) ([]events.Entry, error) {
	query := `SELECT id, timestamp, sim_date, entry_type, property_id, amount, detail, payload FROM ledger_entries ORDER BY timestamp ASC`
	return r.getMany(ctx, query)
}

// ---------------------------------------------------------
// LedgerPersister
// ---------------------------------------------------------

// LedgerPersister adapts a LedgerRepository to the in-memory ledger's
// write-through hook. Writes are timed for the metrics collector.
type LedgerPersister struct {
	repo    LedgerRepository
	timeout time.Duration
}

func NewLedgerPersister(repo LedgerRepository) *LedgerPersister {
	return &LedgerPersister{repo: repo, timeout: 5 * time.Second}
}

func (p *LedgerPersister) Append(entry events.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	err := p.repo.Append(ctx, entry)
	metrics.Get().RecordLedgerWrite(time.Since(start), err)
	return err
}

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Save(ctx context.Context, snapshot WorldSnapshot) error {
	query := `
		INSERT INTO world_snapshots (taken_at, sim_date, tick_count, cash, total_debt, credit_score, interest_rate, state_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		time.Now().UTC().Format(time.RFC3339), snapshot.SimDate, snapshot.TickCount,
		snapshot.Cash, snapshot.TotalDebt, snapshot.CreditScore, snapshot.InterestRate,
		snapshot.StateJSON,
	)
	return err
}

func (r *SQLiteSnapshotRepository) Latest(ctx context.Context) (*WorldSnapshot, error) {
	query := `SELECT id, taken_at, sim_date, tick_count, cash, total_debt, credit_score, interest_rate, state_json FROM world_snapshots ORDER BY id DESC LIMIT 1`
	var s WorldSnapshot
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ID, &s.TakenAt, &s.SimDate, &s.TickCount, &s.Cash,
		&s.TotalDebt, &s.CreditScore, &s.InterestRate, &s.StateJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
