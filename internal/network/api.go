// Package network - api.go
// REST API for dashboards and tooling that don't hold a WebSocket open.
package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mbellver/estatesim/internal/engine"
	"github.com/mbellver/estatesim/internal/platform/logger"
	"github.com/mbellver/estatesim/internal/platform/metrics"
	"github.com/mbellver/estatesim/internal/platform/optimization"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The sim serves its own frontend; cross-origin tooling is fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// APIBridge exposes the simulation over plain HTTP.
type APIBridge struct {
	world  *engine.World
	clock  *engine.Clock
	hub    *Hub
	logger *logger.Logger
}

// NewAPIBridge creates the HTTP handler set for a running world.
func NewAPIBridge(world *engine.World, clock *engine.Clock, hub *Hub, log *logger.Logger) *APIBridge {
	return &APIBridge{
		world:  world,
		clock:  clock,
		hub:    hub,
		logger: log,
	}
}

// ControlRequest is the payload for clock control.
type ControlRequest struct {
	Action string `json:"action"` // "pause", "resume", "speed"
	Speed  string `json:"speed"`  // "slow", "normal", "fast" (for "speed")
}

// HandleState returns the full world snapshot.
// GET /api/state
func (ab *APIBridge) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ab.jsonSuccess(w, ab.world.Snapshot())
}

// HandleProperties returns the property list only.
// GET /api/properties
func (ab *APIBridge) HandleProperties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := ab.world.Snapshot()
	ab.jsonSuccess(w, map[string]interface{}{
		"sim_date":   snap.Date,
		"properties": snap.Properties,
		"timestamp":  time.Now().Unix(),
	})
}

// HandleControl pauses, resumes, or changes the tick rate.
// POST /api/control
func (ab *APIBridge) HandleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var result engine.CommandResult
	switch req.Action {
	case "pause":
		result = ab.clock.SetPaused(true)
	case "resume":
		result = ab.clock.SetPaused(false)
	case "speed":
		switch req.Speed {
		case "slow":
			result = ab.clock.SetTickRate(engine.SpeedSlow)
		case "normal":
			result = ab.clock.SetTickRate(engine.SpeedNormal)
		case "fast":
			result = ab.clock.SetTickRate(engine.SpeedFast)
		default:
			ab.jsonError(w, "Unknown speed: "+req.Speed, http.StatusBadRequest)
			return
		}
	default:
		ab.jsonError(w, "Unknown action: "+req.Action, http.StatusBadRequest)
		return
	}

	ab.logger.Info("Clock control via REST: %s %s", req.Action, req.Speed)
	ab.jsonSuccess(w, map[string]interface{}{
		"ok":      result.OK,
		"message": result.Message,
		"paused":  ab.clock.Paused(),
	})
}

// HandleTuning reports concurrency tuning recommendations derived from the
// live metrics.
// GET /api/tuning
func (ab *APIBridge) HandleTuning(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ab.jsonSuccess(w, optimization.Analyze(metrics.Get().Snapshot()))
}

// HandleWS upgrades the connection and attaches a client to the hub.
// GET /ws
func (ab *APIBridge) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ab.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	client := NewClient(ab.hub, conn)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}

// RegisterRoutes sets up the REST API routes.
func (ab *APIBridge) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", ab.HandleState)
	mux.HandleFunc("/api/properties", ab.HandleProperties)
	mux.HandleFunc("/api/control", ab.HandleControl)
	mux.HandleFunc("/api/tuning", ab.HandleTuning)
	mux.HandleFunc("/ws", ab.HandleWS)
}

// jsonError sends an error response.
func (ab *APIBridge) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (ab *APIBridge) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
