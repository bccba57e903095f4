// internal/service/calls/service.go
package calls

import (
	"context"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"
	"leadscope-service/internal/session"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Ingester turns a completed call into a stored interaction with refreshed
// insight. Satisfied by the pipeline service.
type Ingester interface {
	RecordCallSummary(ctx context.Context, sum *interaction.CallSummary, agentID int64) (*customer.Customer, *interaction.Interaction, error)
}

// Service tracks in-flight calls in the session store and hands completed
// ones to the pipeline. Abandoned sessions age out via the sweeper.
type Service struct {
	sessions   session.Store
	pipeline   Ingester
	ttl        time.Duration
	sweepEvery time.Duration
	logger     *zap.Logger
}

func NewService(sessions session.Store, pipeline Ingester, ttl, sweepEvery time.Duration, logger *zap.Logger) *Service {
	return &Service{
		sessions:   sessions,
		pipeline:   pipeline,
		ttl:        ttl,
		sweepEvery: sweepEvery,
		logger:     logger,
	}
}

// Start opens a call session for an agent working a customer.
func (s *Service) Start(ctx context.Context, agentID, customerID int64) (*session.CallSession, error) {
	now := time.Now()
	sess := &session.CallSession{
		ID:           ulid.Make().String(),
		AgentID:      agentID,
		CustomerID:   customerID,
		Channel:      insight.ChannelPhone,
		StartedAt:    now,
		LastActivity: now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("call session started",
		zap.String("session_id", sess.ID),
		zap.Int64("agent_id", agentID),
		zap.Int64("customer_id", customerID),
	)
	return sess, nil
}

// Heartbeat refreshes the session's activity timestamp so the sweeper does
// not evict a call that is still going.
func (s *Service) Heartbeat(ctx context.Context, id string) (*session.CallSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.LastActivity = time.Now()
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the in-flight session.
func (s *Service) Get(ctx context.Context, id string) (*session.CallSession, error) {
	return s.sessions.Get(ctx, id)
}

// Complete closes the session and ingests the post-call summary through the
// pipeline. The session is removed first so a retried completion maps to a
// plain summary ingest rather than a double close.
func (s *Service) Complete(ctx context.Context, id string, sum *interaction.CallSummary) (*customer.Customer, *interaction.Interaction, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return nil, nil, err
	}
	if sum.CallDurationSec == 0 {
		sum.CallDurationSec = int(time.Since(sess.StartedAt).Seconds())
	}
	cust, rec, err := s.pipeline.RecordCallSummary(ctx, sum, sess.AgentID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("call session completed",
		zap.String("session_id", id),
		zap.Int64("customer_id", cust.ID),
		zap.Int64("interaction_id", rec.ID),
	)
	return cust, rec, nil
}

// RunSweeper evicts abandoned sessions until the context is cancelled.
// Intended to run as a goroutine from app startup.
func (s *Service) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sessions.Sweep(ctx, s.ttl)
			if err != nil {
				s.logger.Warn("call session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("swept abandoned call sessions", zap.Int("count", n))
			}
		}
	}
}
