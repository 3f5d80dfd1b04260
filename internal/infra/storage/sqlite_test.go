package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mbellver/estatesim/internal/events"
)

func openTestDB(t *testing.T) *SQLiteLedgerRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteLedgerRepository(db)
}

func testEntry(entryType events.EntryType, propertyID int, amount float64) events.Entry {
	return events.Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		SimDate:    time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC),
		Type:       entryType,
		PropertyID: propertyID,
		Amount:     amount,
		Detail:     "test entry",
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	original := testEntry(events.EntryPropertyPurchased, 3, -200000)
	original.Payload = map[string]interface{}{"address": "3 Maple St"}
	if err := repo.Append(ctx, original); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.GetByProperty(ctx, 3)
	if err != nil {
		t.Fatalf("get by property: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}

	e := got[0]
	if e.ID != original.ID {
		t.Errorf("ID = %q, want %q", e.ID, original.ID)
	}
	if e.Type != events.EntryPropertyPurchased {
		t.Errorf("type = %q", e.Type)
	}
	if e.Amount != -200000 {
		t.Errorf("amount = %v, want -200000", e.Amount)
	}
	if !e.SimDate.Equal(original.SimDate) {
		t.Errorf("sim date = %v, want %v", e.SimDate, original.SimDate)
	}
	payload, ok := e.Payload.(map[string]interface{})
	if !ok || payload["address"] != "3 Maple St" {
		t.Errorf("payload = %#v", e.Payload)
	}
}

func TestLedgerFilters(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	for _, e := range []events.Entry{
		testEntry(events.EntryPropertyPurchased, 1, -200000),
		testEntry(events.EntryRentCollected, 1, 1500),
		testEntry(events.EntryRentCollected, 2, 900),
		testEntry(events.EntryLoanTaken, -1, 50000),
	} {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byProp, err := repo.GetByProperty(ctx, 1)
	if err != nil {
		t.Fatalf("get by property: %v", err)
	}
	if len(byProp) != 2 {
		t.Errorf("GetByProperty(1) returned %d entries, want 2", len(byProp))
	}

	byType, err := repo.GetByType(ctx, events.EntryRentCollected)
	if err != nil {
		t.Fatalf("get by type: %v", err)
	}
	if len(byType) != 2 {
		t.Errorf("GetByType returned %d entries, want 2", len(byType))
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("GetAll returned %d entries, want 4", len(all))
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewSQLiteSnapshotRepository(db)
	ctx := context.Background()

	// An empty table reports no snapshot rather than an error.
	latest, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest on empty table: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil snapshot, got %+v", latest)
	}

	first := WorldSnapshot{SimDate: "2024-02-01", TickCount: 17, Cash: 240000, TotalDebt: 50000, CreditScore: 605, InterestRate: 0.05, StateJSON: `{"tick":17}`}
	second := WorldSnapshot{SimDate: "2024-03-01", TickCount: 46, Cash: 255000, TotalDebt: 40000, CreditScore: 610, InterestRate: 0.048, StateJSON: `{"tick":46}`}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	latest, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a snapshot")
	}
	if latest.TickCount != 46 {
		t.Errorf("tick count = %d, want the most recent 46", latest.TickCount)
	}
	if latest.Cash != 255000 {
		t.Errorf("cash = %v, want 255000", latest.Cash)
	}
	if latest.CreditScore != 610 {
		t.Errorf("credit score = %d, want 610", latest.CreditScore)
	}
}

func TestLedgerPersisterWritesThrough(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewSQLiteLedgerRepository(db)
	persister := NewLedgerPersister(repo)

	if err := persister.Append(testEntry(events.EntryRentCollected, 5, 1800)); err != nil {
		t.Fatalf("persister append: %v", err)
	}

	got, err := repo.GetByProperty(context.Background(), 5)
	if err != nil {
		t.Fatalf("get by property: %v", err)
	}
	if len(got) != 1 || got[0].Amount != 1800 {
		t.Errorf("write-through entry missing or wrong: %+v", got)
	}
}
