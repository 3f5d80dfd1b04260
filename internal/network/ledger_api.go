// Package network - ledger_api.go
// JSON export of the run's financial history. Lets dashboards and
// moderation tooling replay the immutable ledger without touching SQLite.
package network

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/format"
	"github.com/mbellver/estatesim/internal/platform/logger"
)

// LedgerReplayHandler provides the ledger replay API.
type LedgerReplayHandler struct {
	ledger *events.Ledger
	logger *logger.Logger
}

// NewLedgerReplayHandler creates a new ledger replay handler.
func NewLedgerReplayHandler(l *events.Ledger, log *logger.Logger) *LedgerReplayHandler {
	return &LedgerReplayHandler{
		ledger: l,
		logger: log,
	}
}

// ReplayEntry is a formatted ledger entry for public viewing.
type ReplayEntry struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	SimDate    string `json:"sim_date"`
	Type       string `json:"type"`
	PropertyID int    `json:"property_id"`
	Amount     string `json:"amount"`
	Direction  string `json:"direction"` // INFLOW, OUTFLOW, NEUTRAL
	Detail     string `json:"detail"`
}

// ReplayResponse is the API response for a ledger replay.
type ReplayResponse struct {
	TotalEntries int           `json:"total_entries"`
	FilteredBy   string        `json:"filtered_by,omitempty"`
	GeneratedAt  string        `json:"generated_at"`
	Entries      []ReplayEntry `json:"entries"`
}

// HandleReplay returns the ledger history, optionally filtered.
// GET /api/ledger/replay?property_id=N&type=RENT_COLLECTED&since=2024-01-01
func (lh *LedgerReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		lh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	propertyStr := r.URL.Query().Get("property_id")
	entryType := r.URL.Query().Get("type")
	sinceStr := r.URL.Query().Get("since")

	var entries []events.Entry
	filterDesc := ""

	switch {
	case propertyStr != "":
		propertyID, err := strconv.Atoi(propertyStr)
		if err != nil {
			lh.jsonError(w, "Bad property_id", http.StatusBadRequest)
			return
		}
		entries = lh.ledger.ByProperty(propertyID)
		filterDesc = "Property " + propertyStr
	case entryType != "":
		entries = lh.ledger.ByType(events.EntryType(entryType))
		filterDesc = "Type " + entryType
	case sinceStr != "":
		cutoff, err := time.Parse("2006-01-02", sinceStr)
		if err != nil {
			lh.jsonError(w, "Bad since date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		entries = lh.ledger.Since(cutoff)
		filterDesc = "Since " + sinceStr
	default:
		entries = lh.ledger.All()
	}

	replay := make([]ReplayEntry, 0, len(entries))
	for _, e := range entries {
		replay = append(replay, convertToReplayEntry(e))
	}

	response := ReplayResponse{
		TotalEntries: len(replay),
		FilteredBy:   filterDesc,
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Entries:      replay,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleEntryDetail returns a single ledger entry with its payload.
// GET /api/ledger/entry?entry_id=XXX
func (lh *LedgerReplayHandler) HandleEntryDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		lh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entryID := r.URL.Query().Get("entry_id")
	if entryID == "" {
		lh.jsonError(w, "Missing entry_id", http.StatusBadRequest)
		return
	}

	for _, e := range lh.ledger.All() {
		if e.ID == entryID {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"entry":   convertToReplayEntry(e),
				"payload": e.Payload,
			})
			return
		}
	}

	lh.jsonError(w, "Entry not found", http.StatusNotFound)
}

// HandleStats returns aggregate cash-flow statistics.
// GET /api/ledger/stats
func (lh *LedgerReplayHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		lh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all := lh.ledger.All()

	var inflow, outflow float64
	byType := map[string]int{}
	for _, e := range all {
		byType[string(e.Type)]++
		if e.Amount > 0 {
			inflow += e.Amount
		} else {
			outflow += -e.Amount
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at":  time.Now().Format(time.RFC3339),
		"total_entries": len(all),
		"total_inflow":  format.Currency(inflow),
		"total_outflow": format.Currency(outflow),
		"by_type":       byType,
	})
}

// RegisterRoutes sets up the ledger API routes.
func (lh *LedgerReplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/ledger/replay", lh.HandleReplay)
	mux.HandleFunc("/api/ledger/entry", lh.HandleEntryDetail)
	mux.HandleFunc("/api/ledger/stats", lh.HandleStats)
}

// convertToReplayEntry transforms an internal entry to the public format.
func convertToReplayEntry(e events.Entry) ReplayEntry {
	direction := "NEUTRAL"
	if e.Amount > 0 {
		direction = "INFLOW"
	} else if e.Amount < 0 {
		direction = "OUTFLOW"
	}

	return ReplayEntry{
		ID:         e.ID,
		Timestamp:  e.Timestamp.Format(time.RFC3339),
		SimDate:    format.Date(e.SimDate),
		Type:       string(e.Type),
		PropertyID: e.PropertyID,
		Amount:     format.Currency(math.Abs(e.Amount)),
		Direction:  direction,
		Detail:     e.Detail,
	}
}

// jsonError sends an error response.
func (lh *LedgerReplayHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
