// Package storage provides the persistence layer for the simulation server.
// This package implements the repository pattern to keep the domain pure:
// the engine only ever writes here, nothing is read back into a running world.
package storage

import (
	"context"

	"github.com/mbellver/estatesim/internal/events"
)

// LedgerRepository defines the interface for ledger persistence.
// The engine uses this interface; the implementation is in infra.
type LedgerRepository interface {
	// Append adds a new entry to the immutable ledger.
	Append(ctx context.Context, entry events.Entry) error

	// GetByProperty retrieves all entries touching a specific property.
	GetByProperty(ctx context.Context, propertyID int) ([]events.Entry, error)

	// GetByType retrieves all entries of a specific type.
	GetByType(ctx context.Context, entryType events.EntryType) ([]events.Entry, error)

	// GetAll retrieves the full ledger in insertion order (for audit export).
	GetAll(ctx context.Context) ([]events.Entry, error)
}

// WorldSnapshot is the persisted summary of a world at a point in time.
// The full state travels as JSON; the scalar columns exist so runs can be
// inspected with plain SQL without unmarshalling.
type WorldSnapshot struct {
	ID           int64   `json:"id" db:"id"`
	TakenAt      string  `json:"taken_at" db:"taken_at"`
	SimDate      string  `json:"sim_date" db:"sim_date"`
	TickCount    int64   `json:"tick_count" db:"tick_count"`
	Cash         float64 `json:"cash" db:"cash"`
	TotalDebt    float64 `json:"total_debt" db:"total_debt"`
	CreditScore  int     `json:"credit_score" db:"credit_score"`
	InterestRate float64 `json:"interest_rate" db:"interest_rate"`
	StateJSON    string  `json:"state_json" db:"state_json"`
}

// SnapshotRepository defines the interface for world snapshots.
type SnapshotRepository interface {
	// Save appends a snapshot row.
	Save(ctx context.Context, snapshot WorldSnapshot) error

	// Latest retrieves the most recent snapshot, or nil when none exist.
	Latest(ctx context.Context) (*WorldSnapshot, error)
}
