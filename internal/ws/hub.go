package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub manages WebSocket connections and per-ticker subscriptions.
type Hub struct {
	clients    map[*Client]bool
	groups     map[string]map[*Client]bool // ticker -> clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan *GroupMessage
	mu         sync.RWMutex
	logger     *zap.Logger
}

// GroupMessage represents a message to broadcast to a ticker's subscribers.
type GroupMessage struct {
	Ticker  string
	Payload []byte
}

// NewHub creates a new Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *GroupMessage, 256),
		logger:     logger,
	}
}

// Run processes hub events. Call this in a goroutine.
// Returns when context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub shutting down")
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("connID", client.connID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for ticker := range client.tickers {
					if clients, ok := h.groups[ticker]; ok {
						delete(clients, client)
						if len(clients) == 0 {
							delete(h.groups, ticker)
						}
					}
				}
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", zap.String("connID", client.connID))

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.groups[msg.Ticker]; ok {
				for client := range clients {
					select {
					case client.send <- msg.Payload:
					default:
						// Buffer full, schedule disconnect
						go func(c *Client) {
							h.unregister <- c
						}(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// shutdown gracefully closes all client connections.
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.groups = make(map[string]map[*Client]bool)
}

// Subscribe adds a client to a ticker's group.
func (h *Hub) Subscribe(client *Client, ticker string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groups[ticker] == nil {
		h.groups[ticker] = make(map[*Client]bool)
	}
	h.groups[ticker][client] = true
	client.tickers[ticker] = true

	h.logger.Debug("client subscribed",
		zap.String("connID", client.connID),
		zap.String("ticker", ticker),
	)
}

// Unsubscribe removes a client from a ticker's group.
func (h *Hub) Unsubscribe(client *Client, ticker string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.groups[ticker]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.groups, ticker)
		}
	}
	delete(client.tickers, ticker)

	h.logger.Debug("client unsubscribed",
		zap.String("connID", client.connID),
		zap.String("ticker", ticker),
	)
}

// ActiveTickers returns all tickers with at least one subscriber.
func (h *Hub) ActiveTickers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var tickers []string
	for ticker, clients := range h.groups {
		if len(clients) > 0 {
			tickers = append(tickers, ticker)
		}
	}
	return tickers
}

// Broadcast sends a payload to all of a ticker's subscribers.
func (h *Hub) Broadcast(ticker string, payload []byte) {
	h.broadcast <- &GroupMessage{Ticker: ticker, Payload: payload}
}
