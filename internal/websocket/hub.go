// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"leadscope-service/internal/service/pipeline"

	"go.uber.org/zap"
)

// Hub fans refreshed customer insight out to connected agents. Agents may
// watch specific customers; unfiltered clients get the whole feed.
type Hub struct {
	// Registered clients by agent ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client

	broadcast chan *insightBroadcast

	logger *zap.Logger
}

type insightBroadcast struct {
	customerID int64
	msg        *WSMessage
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *insightBroadcast, 256),
		logger:     logger,
	}
}

// PublishInsight queues an insight event for delivery. Drops the event when
// the hub is saturated; the UI refetches on next load.
func (h *Hub) PublishInsight(event pipeline.InsightEvent) {
	msg := NewMessage(EventTypeInsightUpdated, event)
	select {
	case h.broadcast <- &insightBroadcast{customerID: event.CustomerID, msg: msg}:
	default:
		h.logger.Warn("insight broadcast queue full, dropping event",
			zap.Int64("customer_id", event.CustomerID),
		)
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case b := <-h.broadcast:
			h.deliver(b)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.agentID] == nil {
		h.clients[client.agentID] = make(map[*Client]bool)
	}
	h.clients[client.agentID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("agent_id", client.agentID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(NewMessage(EventTypeConnected, map[string]interface{}{
		"agent_id": client.agentID,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.agentID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.agentID)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("agent_id", client.agentID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) deliver(b *insightBroadcast) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for client := range clients {
			if client.WantsCustomer(b.customerID) {
				client.SendMessage(b.msg)
			}
		}
	}
}

// ConnectedAgents counts agents with at least one live connection.
func (h *Hub) ConnectedAgents() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
