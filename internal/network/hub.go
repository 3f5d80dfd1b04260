package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mbellver/estatesim/internal/engine"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/platform/logger"
	"github.com/mbellver/estatesim/internal/platform/metrics"
	"github.com/mbellver/estatesim/internal/platform/optimization"
)

// Message is the envelope for everything the server pushes to clients.
type Message struct {
	Type string      `json:"type"` // "snapshot", "ledger", "result"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	tuning     *optimization.Config

	world *engine.World
	clock *engine.Clock
}

// NewHub initializes a new WebSocket Hub bound to a running world.
func NewHub(world *engine.World, clock *engine.Clock, log *logger.Logger) *Hub {
	tuning := optimization.DefaultConfig()
	return &Hub{
		broadcast:  make(chan []byte, tuning.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		tuning:     tuning,
		world:      world,
		clock:      clock,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes a message and sends it to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to serialize message for WebSocket broadcast: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// StartSnapshotPusher spawns a goroutine that periodically broadcasts the
// current world snapshot. The push rate is independent of the tick rate so
// a fast simulation does not flood slow clients.
func (h *Hub) StartSnapshotPusher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Broadcast(Message{Type: "snapshot", Data: h.world.Snapshot()})
			}
		}
	}()
}

// StartLedgerPoller spawns a goroutine to poll the ledger and push new
// entries to the Hub. This lets the Hub run independently from the tick loop
// while picking up the same entries.
func (h *Hub) StartLedgerPoller(ctx context.Context, ledger *events.Ledger) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessed := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				if ledger.Len() <= lastProcessed {
					continue
				}
				all := ledger.All()
				for _, entry := range all[lastProcessed:] {
					h.Broadcast(Message{Type: "ledger", Data: entry})
				}
				lastProcessed = len(all)
			}
		}
	}()
}
