package events

import (
	"sync"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestAppendFillsDefaults(t *testing.T) {
	l := NewLedger(nil)

	l.Append(Entry{Type: EntryRentCollected, PropertyID: 3, Amount: 1200, SimDate: day(1)})

	all := l.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(all))
	}
	if all[0].ID == "" {
		t.Error("entry ID not assigned")
	}
	if all[0].Timestamp.IsZero() {
		t.Error("timestamp not assigned")
	}
}

func TestFilters(t *testing.T) {
	l := NewLedger(nil)
	l.Append(Entry{Type: EntryPropertyPurchased, PropertyID: 1, Amount: -200000, SimDate: day(1)})
	l.Append(Entry{Type: EntryRentCollected, PropertyID: 1, Amount: 1500, SimDate: day(5)})
	l.Append(Entry{Type: EntryRentCollected, PropertyID: 2, Amount: 900, SimDate: day(10)})
	l.Append(Entry{Type: EntryRateChanged, PropertyID: -1, SimDate: day(12)})

	if got := l.ByProperty(1); len(got) != 2 {
		t.Errorf("ByProperty(1) returned %d entries, want 2", len(got))
	}
	if got := l.ByProperty(-1); len(got) != 1 {
		t.Errorf("ByProperty(-1) returned %d entries, want 1", len(got))
	}
	if got := l.ByType(EntryRentCollected); len(got) != 2 {
		t.Errorf("ByType(RENT_COLLECTED) returned %d entries, want 2", len(got))
	}
	if got := l.Since(day(5)); len(got) != 3 {
		t.Errorf("Since(day 5) returned %d entries, want 3 (cutoff inclusive)", len(got))
	}
	if l.Len() != 4 {
		t.Errorf("Len = %d, want 4", l.Len())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	l := NewLedger(nil)
	l.Append(Entry{Type: EntryLoanTaken, PropertyID: -1, Amount: 50000, SimDate: day(1)})

	snapshot := l.All()
	snapshot[0].Amount = 0

	if l.All()[0].Amount != 50000 {
		t.Error("mutating the returned slice altered the ledger")
	}
}

// countingPersister records appends and signals when the expected number of
// background writes has landed.
type countingPersister struct {
	mu      sync.Mutex
	entries []Entry
	done    chan struct{}
	want    int
}

func (p *countingPersister) Append(e Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	if len(p.entries) == p.want {
		close(p.done)
	}
	return nil
}

func TestWriteThroughPersister(t *testing.T) {
	p := &countingPersister{done: make(chan struct{}), want: 3}
	l := NewLedger(p)

	l.Append(Entry{Type: EntryPropertyPurchased, PropertyID: 1, Amount: -200000, SimDate: day(1)})
	l.Append(Entry{Type: EntryRentCollected, PropertyID: 1, Amount: 1500, SimDate: day(2)})
	l.Append(Entry{Type: EntryPropertySold, PropertyID: 1, Amount: 210000, SimDate: day(3)})

	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("persister did not receive all writes in time")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.ID == "" {
			t.Error("persisted entry missing ID")
		}
	}
}

func TestConcurrentAppends(t *testing.T) {
	l := NewLedger(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Append(Entry{Type: EntryTimeTick, PropertyID: -1, SimDate: day(1 + n%27)})
			}
		}(i)
	}
	wg.Wait()

	if l.Len() != 1000 {
		t.Errorf("Len = %d after concurrent appends, want 1000", l.Len())
	}
}
