// Package events provides the append-only ledger of everything that happens
// in a simulation run: purchases, rent rolls, tax bills, loan movements and
// world events. The ledger is the audit trail; the engine never reads state
// back out of it.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntryType defines the category of a ledger entry.
type EntryType string

const (
	EntryPropertyPurchased  EntryType = "PROPERTY_PURCHASED"
	EntryPropertySold       EntryType = "PROPERTY_SOLD"
	EntryPropertyRenovated  EntryType = "PROPERTY_RENOVATED"
	EntryRentCollected      EntryType = "RENT_COLLECTED"
	EntryRentMissed         EntryType = "RENT_MISSED"
	EntryTenantMovedIn      EntryType = "TENANT_MOVED_IN"
	EntryTenantMovedOut     EntryType = "TENANT_MOVED_OUT"
	EntryTenantEvicted      EntryType = "TENANT_EVICTED"
	EntryTenantIncident     EntryType = "TENANT_INCIDENT"
	EntryPropertyTaxCharged EntryType = "PROPERTY_TAX_CHARGED"
	EntryIncomeTaxCharged   EntryType = "INCOME_TAX_CHARGED"
	EntryCapitalGainsTax    EntryType = "CAPITAL_GAINS_TAX"
	EntryLoanTaken          EntryType = "LOAN_TAKEN"
	EntryLoanRepaid         EntryType = "LOAN_REPAID"
	EntryLoanRejected       EntryType = "LOAN_REJECTED"
	EntryMortgagePaid       EntryType = "MORTGAGE_PAID"
	EntryMortgageMissed     EntryType = "MORTGAGE_MISSED"
	EntryRateChanged        EntryType = "RATE_CHANGED"
	EntryProtectionBilled   EntryType = "PROTECTION_BILLED"
	EntryWorldEventStarted  EntryType = "WORLD_EVENT_STARTED"
	EntryWorldEventEnded    EntryType = "WORLD_EVENT_ENDED"
	EntryEventChoiceMade    EntryType = "EVENT_CHOICE_MADE"
	EntryManagerFeeCharged  EntryType = "MANAGER_FEE_CHARGED"
	EntryTimeTick           EntryType = "TIME_TICK"
)

// Entry is one immutable ledger record. PropertyID is -1 for entries not
// tied to a property. Amount is the cash delta in dollars, negative for
// outflows.
type Entry struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`  // wall clock
	SimDate    time.Time   `json:"sim_date"`   // in-simulation date
	Type       EntryType   `json:"type"`
	PropertyID int         `json:"property_id"`
	Amount     float64     `json:"amount"`
	Detail     string      `json:"detail"`
	Payload    interface{} `json:"payload,omitempty"` // entry-specific data
}

// Persister defines how an entry is durably stored.
type Persister interface {
	Append(entry Entry) error
}

// Ledger is the in-memory append-only record of a run, optionally backed by
// a persister for audit.
type Ledger struct {
	mu        sync.RWMutex
	entries   []Entry
	persister Persister
}

// NewLedger creates a ledger with an optional persister; pass nil to keep
// the run in memory only.
func NewLedger(persister Persister) *Ledger {
	return &Ledger{
		entries:   make([]Entry, 0),
		persister: persister,
	}
}

// Append adds an entry to the ledger. Entries are immutable once appended.
func (l *Ledger) Append(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)

	if l.persister != nil {
		// Write through in the background; the audit copy may lag the
		// in-memory log but never blocks the tick.
		go func(e Entry) {
			_ = l.persister.Append(e)
		}(entry)
	}
}

// ByProperty returns every entry recorded against the given property.
func (l *Ledger) ByProperty(propertyID int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Entry
	for _, e := range l.entries {
		if e.PropertyID == propertyID {
			result = append(result, e)
		}
	}
	return result
}

// ByType returns every entry of the given type.
func (l *Ledger) ByType(t EntryType) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Entry
	for _, e := range l.entries {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Since returns entries whose simulation date is on or after the cutoff.
func (l *Ledger) Since(cutoff time.Time) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Entry
	for _, e := range l.entries {
		if !e.SimDate.Before(cutoff) {
			result = append(result, e)
		}
	}
	return result
}

// All returns a copy of the full history in append order.
func (l *Ledger) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of entries recorded so far.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
