// internal/session/store.go
package session

import (
	"context"
	"time"

	"leadscope-service/internal/domain/insight"
)

// CallSession tracks one in-flight call. The store owns the lifecycle:
// populated on call start, refreshed on activity, removed on completion,
// and swept by age when a call is abandoned without a completion event.
type CallSession struct {
	ID           string          `json:"id"`
	AgentID      int64           `json:"agent_id"`
	CustomerID   int64           `json:"customer_id"`
	Channel      insight.Channel `json:"channel"`
	StartedAt    time.Time       `json:"started_at"`
	LastActivity time.Time       `json:"last_activity"`
}

// Store is the explicit session-store surface. The inference pipeline only
// ever receives sessions as read-only context; it never holds the store.
type Store interface {
	Get(ctx context.Context, id string) (*CallSession, error)
	Put(ctx context.Context, s *CallSession) error
	Delete(ctx context.Context, id string) error

	// Sweep removes sessions whose last activity is older than maxAge and
	// returns how many were evicted.
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}
