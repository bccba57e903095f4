// internal/websocket/message.go
package websocket

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventTypeConnected      EventType = "connected"
	EventTypeError          EventType = "error"
	EventTypePing           EventType = "ping"
	EventTypePong           EventType = "pong"
	EventTypeWatch          EventType = "watch"
	EventTypeUnwatch        EventType = "unwatch"
	EventTypeInsightUpdated EventType = "insight.updated"
)

type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// WatchRequest narrows a client's feed to specific customers. A client with
// no watches receives every insight event.
type WatchRequest struct {
	CustomerIDs []int64 `json:"customer_ids"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func mapToStruct(data interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
