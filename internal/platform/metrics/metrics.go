// Package metrics provides observability for the simulation server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Ledger metrics
	LedgerWritten    int64
	LedgerWriteLatSum int64
	LedgerWriteLatMax int64
	LedgerWriteErrors int64

	// Command metrics
	CommandsAccepted int64
	CommandsRejected int64

	// World event metrics
	WorldEventsSpawned int64
	WorldEventsExpired int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordLedgerWrite records a ledger entry write to the database.
func (c *Collector) RecordLedgerWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.LedgerWritten, 1)
	atomic.AddInt64(&c.LedgerWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.LedgerWriteLatMax) {
		atomic.StoreInt64(&c.LedgerWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.LedgerWriteErrors, 1)
	}
}

// RecordCommand records a player command outcome.
func (c *Collector) RecordCommand(accepted bool) {
	if accepted {
		atomic.AddInt64(&c.CommandsAccepted, 1)
	} else {
		atomic.AddInt64(&c.CommandsRejected, 1)
	}
}

// RecordWorldEvent records a world event lifecycle change.
func (c *Collector) RecordWorldEvent(spawned bool) {
	if spawned {
		atomic.AddInt64(&c.WorldEventsSpawned, 1)
	} else {
		atomic.AddInt64(&c.WorldEventsExpired, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	ledgerWritten := atomic.LoadInt64(&c.LedgerWritten)

	// Calculate averages
	var tickAvg, ledgerAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if ledgerWritten > 0 {
		ledgerAvg = float64(atomic.LoadInt64(&c.LedgerWriteLatSum)) / float64(ledgerWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"ledger": map[string]interface{}{
			"written":          ledgerWritten,
			"avg_write_lat_ms": ledgerAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.LedgerWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.LedgerWriteErrors),
		},

		"commands": map[string]interface{}{
			"accepted": atomic.LoadInt64(&c.CommandsAccepted),
			"rejected": atomic.LoadInt64(&c.CommandsRejected),
		},

		"world_events": map[string]interface{}{
			"spawned": atomic.LoadInt64(&c.WorldEventsSpawned),
			"expired": atomic.LoadInt64(&c.WorldEventsExpired),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		// Tick metrics
		fmt.Fprintf(w, "# HELP estatesim_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE estatesim_tick_count counter\n")
		fmt.Fprintf(w, "estatesim_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP estatesim_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE estatesim_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "estatesim_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		// Ledger metrics
		fmt.Fprintf(w, "# HELP estatesim_ledger_written Total ledger entries written\n")
		fmt.Fprintf(w, "# TYPE estatesim_ledger_written counter\n")
		fmt.Fprintf(w, "estatesim_ledger_written %d\n\n", atomic.LoadInt64(&c.LedgerWritten))

		fmt.Fprintf(w, "# HELP estatesim_ledger_write_errors Total ledger write errors\n")
		fmt.Fprintf(w, "# TYPE estatesim_ledger_write_errors counter\n")
		fmt.Fprintf(w, "estatesim_ledger_write_errors %d\n\n", atomic.LoadInt64(&c.LedgerWriteErrors))

		// Command metrics
		fmt.Fprintf(w, "# HELP estatesim_commands_total Total player commands\n")
		fmt.Fprintf(w, "# TYPE estatesim_commands_total counter\n")
		fmt.Fprintf(w, "estatesim_commands_total{outcome=\"accepted\"} %d\n", atomic.LoadInt64(&c.CommandsAccepted))
		fmt.Fprintf(w, "estatesim_commands_total{outcome=\"rejected\"} %d\n\n", atomic.LoadInt64(&c.CommandsRejected))

		// World event metrics
		fmt.Fprintf(w, "# HELP estatesim_world_events_total World event lifecycle transitions\n")
		fmt.Fprintf(w, "# TYPE estatesim_world_events_total counter\n")
		fmt.Fprintf(w, "estatesim_world_events_total{phase=\"spawned\"} %d\n", atomic.LoadInt64(&c.WorldEventsSpawned))
		fmt.Fprintf(w, "estatesim_world_events_total{phase=\"expired\"} %d\n\n", atomic.LoadInt64(&c.WorldEventsExpired))

		// WebSocket metrics
		fmt.Fprintf(w, "# HELP estatesim_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE estatesim_ws_connections gauge\n")
		fmt.Fprintf(w, "estatesim_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP estatesim_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE estatesim_ws_messages_total counter\n")
		fmt.Fprintf(w, "estatesim_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "estatesim_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
