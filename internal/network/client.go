package network

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mbellver/estatesim/internal/engine"
	"github.com/mbellver/estatesim/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Client represents an active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.tuning.ClientSendBuffer),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// Command represents an incoming player command from the frontend.
type Command struct {
	Type    string          `json:"type"`    // "buy_or_sell", "take_loan", etc.
	Payload json.RawMessage `json:"payload"` // Command-specific data
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read error: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			// Malformed input is logged and dropped, never fatal.
			c.hub.logger.Warn("Failed to parse command from WebSocket: %v", err)
			continue
		}

		c.handleCommand(cmd)
	}
}

// payload shapes for the commands that carry arguments.
type propertyPayload struct {
	PropertyID int `json:"property_id"`
}

type amountPayload struct {
	Amount float64 `json:"amount"`
}

type applicationPayload struct {
	PropertyID int    `json:"property_id"`
	TenantID   string `json:"tenant_id"`
}

type choicePayload struct {
	EventID  string `json:"event_id"`
	ChoiceID string `json:"choice_id"`
}

type protectionPayload struct {
	CapRate float64 `json:"cap_rate"`
}

type speedPayload struct {
	Speed string `json:"speed"` // "slow", "normal", "fast"
}

type pausePayload struct {
	Paused bool `json:"paused"`
}

type datePayload struct {
	Date string `json:"date"` // "2006-01-02"
}

func (c *Client) handleCommand(cmd Command) {
	var result engine.CommandResult

	switch cmd.Type {
	case "buy_or_sell":
		var p propertyPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.BuyOrSell(p.PropertyID)
	case "take_loan":
		var p amountPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.TakeLoan(p.Amount)
	case "repay_loan":
		var p amountPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.RepayLoan(p.Amount)
	case "renovate":
		var p propertyPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.Renovate(p.PropertyID)
	case "find_tenants":
		var p propertyPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.FindTenants(p.PropertyID)
	case "end_lease":
		var p propertyPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.EndLease(p.PropertyID)
	case "accept_application":
		var p applicationPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.AcceptApplication(p.PropertyID, p.TenantID)
	case "evict_tenant":
		var p propertyPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.EvictTenant(p.PropertyID)
	case "toggle_outsource":
		var p propertyPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.ToggleOutsource(p.PropertyID)
	case "toggle_manager":
		result = c.hub.world.ToggleManager()
	case "select_event_choice":
		var p choicePayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.SelectEventChoice(p.EventID, p.ChoiceID)
	case "purchase_rate_protection":
		var p protectionPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.world.PurchaseRateProtection(p.CapRate)
	case "cancel_rate_protection":
		result = c.hub.world.CancelRateProtection()
	case "set_speed":
		var p speedPayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.setSpeed(p.Speed)
	case "set_paused":
		var p pausePayload
		if !c.parse(cmd, &p) {
			return
		}
		result = c.hub.clock.SetPaused(p.Paused)
	case "override_date":
		var p datePayload
		if !c.parse(cmd, &p) {
			return
		}
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			c.hub.logger.Warn("Bad date in override_date command: %v", err)
			return
		}
		c.hub.world.OverrideDate(date)
		result = engine.CommandResult{OK: true, Message: "Date set to " + p.Date}
	default:
		c.hub.logger.Warn("Unknown command type: %s", cmd.Type)
		return
	}

	c.sendResult(cmd.Type, result)
}

func (c *Client) setSpeed(speed string) engine.CommandResult {
	switch speed {
	case "slow":
		return c.hub.clock.SetTickRate(engine.SpeedSlow)
	case "normal":
		return c.hub.clock.SetTickRate(engine.SpeedNormal)
	case "fast":
		return c.hub.clock.SetTickRate(engine.SpeedFast)
	default:
		return engine.CommandResult{OK: false, Message: "Unknown speed: " + speed}
	}
}

func (c *Client) parse(cmd Command, out interface{}) bool {
	if err := json.Unmarshal(cmd.Payload, out); err != nil {
		c.hub.logger.Warn("Failed to parse %s payload: %v", cmd.Type, err)
		return false
	}
	return true
}

// sendResult delivers a command outcome back to the issuing client only.
func (c *Client) sendResult(cmdType string, result engine.CommandResult) {
	payload, err := json.Marshal(Message{
		Type: "result",
		Data: map[string]interface{}{
			"command": cmdType,
			"ok":      result.OK,
			"message": result.Message,
		},
	})
	if err != nil {
		metrics.Get().RecordWSError()
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
