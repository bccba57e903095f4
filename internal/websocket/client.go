// internal/websocket/client.go
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	agentID int64

	// Watched customer IDs; empty means the full insight feed.
	watches  map[int64]bool
	watchMux sync.RWMutex

	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewClient(hub *Hub, conn *websocket.Conn, agentID int64) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		agentID: agentID,
		watches: make(map[int64]bool),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Client) AgentID() int64 {
	return c.agentID
}

func (c *Client) Watch(customerID int64) {
	c.watchMux.Lock()
	defer c.watchMux.Unlock()
	c.watches[customerID] = true
}

func (c *Client) Unwatch(customerID int64) {
	c.watchMux.Lock()
	defer c.watchMux.Unlock()
	delete(c.watches, customerID)
}

// WantsCustomer reports whether an event for the given customer should reach
// this client.
func (c *Client) WantsCustomer(customerID int64) bool {
	c.watchMux.RLock()
	defer c.watchMux.RUnlock()
	if len(c.watches) == 0 {
		return true
	}
	return c.watches[customerID]
}

// ReadPump handles incoming messages from the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			_, message, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.hub.logger.Warn("websocket read failed", zap.Error(err))
				}
				return
			}
			c.handleMessage(message)
		}
	}
}

// WritePump handles outgoing messages to the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func (c *Client) handleMessage(data []byte) {
	msg, err := ParseMessage(data)
	if err != nil {
		c.SendError("invalid_message", "Failed to parse message", err.Error())
		return
	}

	switch msg.Type {
	case EventTypePing:
		c.SendMessage(NewMessage(EventTypePong, nil))

	case EventTypeWatch:
		var req WatchRequest
		if err := mapToStruct(msg.Data, &req); err != nil {
			c.SendError("invalid_watch", "Invalid watch request", err.Error())
			return
		}
		for _, id := range req.CustomerIDs {
			c.Watch(id)
		}
		c.SendMessage(NewMessage(EventTypeWatch, map[string]interface{}{
			"customer_ids": req.CustomerIDs,
			"status":       "watching",
		}))

	case EventTypeUnwatch:
		var req WatchRequest
		if err := mapToStruct(msg.Data, &req); err != nil {
			c.SendError("invalid_unwatch", "Invalid unwatch request", err.Error())
			return
		}
		for _, id := range req.CustomerIDs {
			c.Unwatch(id)
		}
		c.SendMessage(NewMessage(EventTypeUnwatch, map[string]interface{}{
			"customer_ids": req.CustomerIDs,
			"status":       "unwatched",
		}))
	}
}

// SendMessage queues a message for the client. A full buffer means the
// client stopped draining, so the connection is cancelled; the pumps notice
// and unregister it. Never blocks, so it is safe to call from the hub's own
// run loop.
func (c *Client) SendMessage(msg *WSMessage) {
	select {
	case <-c.ctx.Done():
		return
	default:
	}

	data, err := msg.ToJSON()
	if err != nil {
		c.hub.logger.Warn("failed to marshal websocket message", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		c.hub.logger.Warn("websocket send buffer full, dropping client",
			zap.Int64("agent_id", c.agentID),
		)
		c.Close()
	}
}

func (c *Client) SendError(code, message, details string) {
	c.SendMessage(NewMessage(EventTypeError, ErrorData{
		Code:    code,
		Message: message,
		Details: details,
	}))
}

// Close cancels the client. The send channel is never closed; the pumps
// exit on the cancelled context and tear down the connection. Safe to call
// more than once and from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(c.cancel)
}
