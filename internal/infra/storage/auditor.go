// Package storage - auditor.go
// Offline audit of a persisted run: the ledger is the source of truth for
// cash flow, so replaying it must reproduce the cash movement the snapshots
// claim happened. Used by the audit subcommand and debugging.
package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/mbellver/estatesim/internal/events"
)

// Auditor replays the persisted ledger and cross-checks it against the
// latest world snapshot.
type Auditor struct {
	ledgerRepo LedgerRepository
	snapRepo   SnapshotRepository
}

// NewAuditor creates a new ledger auditor.
func NewAuditor(ledgerRepo LedgerRepository, snapRepo SnapshotRepository) *Auditor {
	return &Auditor{ledgerRepo: ledgerRepo, snapRepo: snapRepo}
}

// AuditReport summarizes a replayed run.
type AuditReport struct {
	TotalEntries  int            `json:"total_entries"`
	TotalInflow   float64        `json:"total_inflow"`
	TotalOutflow  float64        `json:"total_outflow"`
	NetCashFlow   float64        `json:"net_cash_flow"`
	EntriesByType map[string]int `json:"entries_by_type"`

	// Snapshot cross-check, populated when a snapshot exists.
	SnapshotFound   bool    `json:"snapshot_found"`
	SnapshotCash    float64 `json:"snapshot_cash,omitempty"`
	StartingCash    float64 `json:"starting_cash,omitempty"`
	CashDrift       float64 `json:"cash_drift,omitempty"`
	DriftTolerance  float64 `json:"drift_tolerance,omitempty"`
	WithinTolerance bool    `json:"within_tolerance"`
}

// Replay walks the full ledger and accumulates the cash movement.
func (a *Auditor) Replay(ctx context.Context) (*AuditReport, error) {
	entries, err := a.ledgerRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	report := &AuditReport{
		TotalEntries:  len(entries),
		EntriesByType: make(map[string]int),
	}

	for _, e := range entries {
		report.EntriesByType[string(e.Type)]++
		if e.Amount > 0 {
			report.TotalInflow += e.Amount
		} else {
			report.TotalOutflow += -e.Amount
		}
	}
	report.NetCashFlow = report.TotalInflow - report.TotalOutflow

	return report, nil
}

// Audit replays the ledger and compares the net cash flow against the last
// persisted snapshot. startingCash is the cash the run began with; drift
// within tolerance covers entries written after the snapshot was taken.
func (a *Auditor) Audit(ctx context.Context, startingCash, tolerance float64) (*AuditReport, error) {
	report, err := a.Replay(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := a.snapRepo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot == nil {
		return report, nil
	}

	report.SnapshotFound = true
	report.SnapshotCash = snapshot.Cash
	report.StartingCash = startingCash
	report.CashDrift = math.Abs((startingCash + report.NetCashFlow) - snapshot.Cash)
	report.DriftTolerance = tolerance
	report.WithinTolerance = report.CashDrift <= tolerance

	return report, nil
}

// PropertyHistory returns the ledger trail for one property, in order.
func (a *Auditor) PropertyHistory(ctx context.Context, propertyID int) ([]events.Entry, error) {
	return a.ledgerRepo.GetByProperty(ctx, propertyID)
}
