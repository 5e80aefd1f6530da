package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4 * 1024

	// Send buffer size per client.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dashboards connect cross-origin
}

// clientRequest is an inbound control message.
type clientRequest struct {
	Type   string `json:"type"`
	Ticker string `json:"ticker,omitempty"`
}

// serverMessage is an outbound control or data message.
type serverMessage struct {
	Type    string      `json:"type"`
	Ticker  string      `json:"ticker,omitempty"`
	ConnID  string      `json:"conn_id,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a WebSocket client connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	connID  string
	tickers map[string]bool
	allowed map[string]bool // nil allows any ticker
	logger  *zap.Logger
}

// HandleWS upgrades an HTTP request and runs the client pumps. The allowed
// set restricts subscriptions to the configured board; nil allows anything.
func (h *Hub) HandleWS(allowed map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			hub:     h,
			conn:    conn,
			send:    make(chan []byte, sendBufferSize),
			connID:  uuid.New().String(),
			tickers: make(map[string]bool),
			allowed: allowed,
			logger:  h.logger,
		}

		h.register <- client

		client.send <- mustMarshal(serverMessage{Type: "connected", ConnID: client.connID})

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump() {
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
				c.logger.Debug("websocket read error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
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
				// Channel closed, send close message
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
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

// handleMessage processes one inbound control message.
func (c *Client) handleMessage(data []byte) {
	var req clientRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.logger.Debug("failed to parse client message",
			zap.String("connID", c.connID),
			zap.Error(err),
		)
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))

	switch req.Type {
	case "subscribe":
		if !c.tickerAllowed(ticker) {
			c.logger.Debug("rejected subscription",
				zap.String("connID", c.connID),
				zap.String("ticker", ticker),
			)
			c.send <- mustMarshal(serverMessage{Type: "error", Ticker: ticker, Message: "unknown ticker"})
			return
		}
		c.hub.Subscribe(c, ticker)
		c.send <- mustMarshal(serverMessage{Type: "subscribed", Ticker: ticker})

	case "unsubscribe":
		c.hub.Unsubscribe(c, ticker)
		c.send <- mustMarshal(serverMessage{Type: "unsubscribed", Ticker: ticker})

	case "ping":
		c.send <- mustMarshal(serverMessage{Type: "pong"})
	}
}

func (c *Client) tickerAllowed(ticker string) bool {
	if ticker == "" {
		return false
	}
	return c.allowed == nil || c.allowed[ticker]
}

func mustMarshal(msg serverMessage) []byte {
	b, _ := json.Marshal(msg)
	return b
}
