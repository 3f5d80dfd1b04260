package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mbellver/estatesim/internal/config"
	"github.com/mbellver/estatesim/internal/engine"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/platform/logger"
)

func newTestBridge(t *testing.T) (*APIBridge, *events.Ledger) {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.Seed = 7
	cfg.Simulation.StartDate = "2024-01-01"
	cfg.Simulation.InitialProperties = 3

	log := logger.NewLogger()
	ledger := events.NewLedger(nil)
	world, err := engine.NewWorld(cfg, ledger, log)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	clock := engine.NewClock(world)
	hub := NewHub(world, clock, log)
	return NewAPIBridge(world, clock, hub, log), ledger
}

func TestHandleState(t *testing.T) {
	bridge, _ := newTestBridge(t)

	rec := httptest.NewRecorder()
	bridge.HandleState(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap engine.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Cash != 250000 {
		t.Errorf("cash = %v, want 250000", snap.Cash)
	}
	if len(snap.Properties) != 3 {
		t.Errorf("properties = %d, want 3", len(snap.Properties))
	}
}

func TestHandleStateRejectsPost(t *testing.T) {
	bridge, _ := newTestBridge(t)

	rec := httptest.NewRecorder()
	bridge.HandleState(rec, httptest.NewRequest(http.MethodPost, "/api/state", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHandleControl(t *testing.T) {
	bridge, _ := newTestBridge(t)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/control", strings.NewReader(body))
		bridge.HandleControl(rec, req)
		return rec
	}

	rec := post(`{"action":"pause"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d", rec.Code)
	}
	if !bridge.clock.Paused() {
		t.Error("clock not paused")
	}

	rec = post(`{"action":"resume"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d", rec.Code)
	}
	if bridge.clock.Paused() {
		t.Error("clock still paused")
	}

	if rec := post(`{"action":"speed","speed":"fast"}`); rec.Code != http.StatusOK {
		t.Errorf("speed status = %d", rec.Code)
	}
	if rec := post(`{"action":"speed","speed":"ludicrous"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad speed status = %d, want 400", rec.Code)
	}
	if rec := post(`{"action":"explode"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad action status = %d, want 400", rec.Code)
	}
	if rec := post(`not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", rec.Code)
	}
}

func TestHandleReplayFilters(t *testing.T) {
	bridge, ledger := newTestBridge(t)
	handler := NewLedgerReplayHandler(ledger, bridge.logger)

	simDate := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	ledger.Append(events.Entry{Type: events.EntryPropertyPurchased, PropertyID: 1, Amount: -200000, SimDate: simDate})
	ledger.Append(events.Entry{Type: events.EntryRentCollected, PropertyID: 1, Amount: 1500, SimDate: simDate.AddDate(0, 1, 0)})
	ledger.Append(events.Entry{Type: events.EntryRentCollected, PropertyID: 2, Amount: 900, SimDate: simDate.AddDate(0, 1, 0)})

	get := func(url string) ReplayResponse {
		rec := httptest.NewRecorder()
		handler.HandleReplay(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", url, rec.Code)
		}
		var resp ReplayResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp
	}

	if resp := get("/api/ledger/replay"); resp.TotalEntries != 3 {
		t.Errorf("unfiltered total = %d, want 3", resp.TotalEntries)
	}

	resp := get("/api/ledger/replay?property_id=1")
	if resp.TotalEntries != 2 || resp.FilteredBy != "Property 1" {
		t.Errorf("property filter: %+v", resp)
	}

	resp = get("/api/ledger/replay?type=RENT_COLLECTED")
	if resp.TotalEntries != 2 || resp.FilteredBy != "Type RENT_COLLECTED" {
		t.Errorf("type filter: %+v", resp)
	}

	resp = get("/api/ledger/replay?since=2024-02-01")
	if resp.TotalEntries != 2 {
		t.Errorf("since filter total = %d, want 2", resp.TotalEntries)
	}

	// Formatting: outflow entries carry an absolute dollar amount.
	full := get("/api/ledger/replay?property_id=1")
	if full.Entries[0].Direction != "OUTFLOW" || full.Entries[0].Amount != "$200,000" {
		t.Errorf("entry formatting: %+v", full.Entries[0])
	}

	rec := httptest.NewRecorder()
	handler.HandleReplay(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/replay?property_id=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad property_id status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleReplay(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/replay?since=notadate", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad since status = %d, want 400", rec.Code)
	}
}

func TestHandleEntryDetail(t *testing.T) {
	bridge, ledger := newTestBridge(t)
	handler := NewLedgerReplayHandler(ledger, bridge.logger)

	ledger.Append(events.Entry{ID: "e-1", Type: events.EntryLoanTaken, PropertyID: -1, Amount: 50000, SimDate: time.Now()})

	rec := httptest.NewRecorder()
	handler.HandleEntryDetail(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/entry?entry_id=e-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleEntryDetail(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/entry?entry_id=missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing entry status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleEntryDetail(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/entry", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing entry_id status = %d, want 400", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	bridge, ledger := newTestBridge(t)
	handler := NewLedgerReplayHandler(ledger, bridge.logger)

	ledger.Append(events.Entry{Type: events.EntryRentCollected, PropertyID: 1, Amount: 1500, SimDate: time.Now()})
	ledger.Append(events.Entry{Type: events.EntryPropertyTaxCharged, PropertyID: -1, Amount: -350, SimDate: time.Now()})

	rec := httptest.NewRecorder()
	handler.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stats map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["total_inflow"] != "$1,500" {
		t.Errorf("inflow = %v", stats["total_inflow"])
	}
	if stats["total_outflow"] != "$350" {
		t.Errorf("outflow = %v", stats["total_outflow"])
	}
	if stats["total_entries"] != float64(2) {
		t.Errorf("total entries = %v", stats["total_entries"])
	}
}
