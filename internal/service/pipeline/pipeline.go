// internal/service/pipeline/pipeline.go
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"
	"leadscope-service/internal/service/assist"
	"leadscope-service/internal/service/intent"
	"leadscope-service/internal/service/keypoints"
	"leadscope-service/internal/service/recommend"
	"leadscope-service/internal/service/scoring"

	"go.uber.org/zap"
)

// CustomerStore is the persistence slice the pipeline writes through.
type CustomerStore interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	Update(ctx context.Context, c *customer.Customer) error
}

// InteractionStore records exchanges and serves recent history newest-first.
type InteractionStore interface {
	Create(ctx context.Context, rec *interaction.Interaction) error
	ListRecentByCustomer(ctx context.Context, customerID int64, limit int) ([]*interaction.Interaction, error)
}

// Resolver is the identity resolution step.
type Resolver interface {
	Resolve(ctx context.Context, email, phone, name string, updateIfFound bool) (*customer.Customer, bool, error)
}

// Publisher pushes refreshed insight to the delivery layer (websocket).
// A nil publisher is valid; delivery is a collaborator, not a dependency.
type Publisher interface {
	PublishInsight(event InsightEvent)
}

// InsightEvent is what agents receive after the pipeline re-scores a
// customer.
type InsightEvent struct {
	Type          string                 `json:"type"`
	CustomerID    int64                  `json:"customer_id"`
	Reference     string                 `json:"reference"`
	Intent        insight.Intent         `json:"intent"`
	Confidence    int                    `json:"confidence"`
	Score         int                    `json:"score"`
	Level         insight.PotentialLevel `json:"level"`
	InteractionID int64                  `json:"interaction_id,omitempty"`
}

// Service runs the per-interaction inference flow: resolve identity,
// extract key points, classify intent behind the update gate, re-score,
// persist, publish. Recomputation for one customer is serialized with a
// per-customer lock so concurrent events cannot lose updates.
type Service struct {
	resolver     Resolver
	customers    CustomerStore
	interactions InteractionStore

	classifier  *intent.Classifier
	scorer      *scoring.Scorer
	assister    *assist.Generator
	recommender *recommend.Engine

	publisher   Publisher
	recentLimit int
	logger      *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewService(
	resolver Resolver,
	customers CustomerStore,
	interactions InteractionStore,
	classifier *intent.Classifier,
	scorer *scoring.Scorer,
	assister *assist.Generator,
	recommender *recommend.Engine,
	publisher Publisher,
	recentLimit int,
	logger *zap.Logger,
) *Service {
	return &Service{
		resolver:     resolver,
		customers:    customers,
		interactions: interactions,
		classifier:   classifier,
		scorer:       scorer,
		assister:     assister,
		recommender:  recommender,
		publisher:    publisher,
		recentLimit:  recentLimit,
		logger:       logger,
		locks:        make(map[int64]*sync.Mutex),
	}
}

// RecordInteraction ingests one exchange end to end and returns the
// refreshed customer together with the stored interaction.
func (s *Service) RecordInteraction(ctx context.Context, req *interaction.CreateRequest, agentID int64) (*customer.Customer, *interaction.Interaction, error) {
	cust, _, err := s.resolver.Resolve(ctx, req.Email, req.Phone, req.Name, true)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.lockCustomer(cust.ID)
	defer unlock()

	kp := keypoints.Extract(req.Subject, req.Content)

	rec := &interaction.Interaction{
		CustomerID: cust.ID,
		Channel:    insight.Channel(req.Channel),
		Direction:  insight.Direction(req.Direction),
		Subject:    req.Subject,
		Content:    req.Content,
		Summary:    kp.Summary,
		Outcome:    interaction.OutcomeUnknown,
		Intent:     insight.IntentUnknown,
		Keywords:   normalizeKeywords(req.Keywords),
		Objections: req.Objections,
		OccurredAt: time.Now(),
	}
	if agentID != 0 {
		rec.AgentID = sql.NullInt64{Int64: agentID, Valid: true}
	}
	if req.FollowUpRequired {
		rec.FollowUpRequired = true
		if req.FollowUpDate != "" {
			if d, err := time.Parse("2006-01-02", req.FollowUpDate); err == nil {
				rec.FollowUpDate = sql.NullTime{Time: d, Valid: true}
			}
		}
	}

	// Free-text evidence supplements any explicitly tagged keywords.
	if len(rec.Keywords) == 0 && kp.Intent != insight.IntentGeneral {
		rec.Keywords = append(rec.Keywords, string(kp.Intent))
	}

	if err := s.interactions.Create(ctx, rec); err != nil {
		return nil, nil, err
	}

	s.applyInteraction(cust, rec, agentID)

	if err := s.refreshLocked(ctx, cust, rec.ID); err != nil {
		return nil, nil, err
	}
	return cust, rec, nil
}

// RecordCallSummary ingests the structured post-call form as a phone
// interaction and runs the same inference flow.
func (s *Service) RecordCallSummary(ctx context.Context, sum *interaction.CallSummary, agentID int64) (*customer.Customer, *interaction.Interaction, error) {
	cust, _, err := s.resolver.Resolve(ctx, sum.Email, sum.Phone, sum.Name, true)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.lockCustomer(cust.ID)
	defer unlock()

	rec := &interaction.Interaction{
		CustomerID:       cust.ID,
		Channel:          insight.ChannelPhone,
		Direction:        insight.DirectionInbound,
		Content:          sum.Summary,
		Summary:          sum.Summary,
		CallDurationSec:  sum.CallDurationSec,
		Outcome:          interaction.OutcomeUnknown,
		Intent:           insight.IntentUnknown,
		Keywords:         normalizeKeywords(sum.Keywords),
		Objections:       sum.Objections,
		PointsToRemember: sum.PointsToRemember,
		DoNotRepeat:      sum.DoNotRepeat,
		OccurredAt:       time.Now(),
	}
	if agentID != 0 {
		rec.AgentID = sql.NullInt64{Int64: agentID, Valid: true}
	}
	if sum.Outcome != "" {
		rec.Outcome = interaction.Outcome(sum.Outcome)
	}
	if sum.Intent != "" {
		rec.Intent = insight.Intent(sum.Intent)
	}
	for _, seg := range sum.Transcript {
		rec.Transcript = append(rec.Transcript, interaction.TranscriptSegment{
			Speaker:   seg.Speaker,
			Text:      seg.Text,
			OffsetSec: seg.OffsetSec,
		})
	}
	if sum.FollowUpRequired {
		rec.FollowUpRequired = true
		if sum.FollowUpDate != "" {
			if d, err := time.Parse("2006-01-02", sum.FollowUpDate); err == nil {
				rec.FollowUpDate = sql.NullTime{Time: d, Valid: true}
			}
		}
	}

	if err := s.interactions.Create(ctx, rec); err != nil {
		return nil, nil, err
	}

	s.applyInteraction(cust, rec, agentID)

	if err := s.refreshLocked(ctx, cust, rec.ID); err != nil {
		return nil, nil, err
	}
	return cust, rec, nil
}

// Refresh recomputes intent and score for a customer without a new
// interaction, e.g. after agent feedback or keyword changes.
func (s *Service) Refresh(ctx context.Context, customerID int64) (*customer.Customer, error) {
	unlock := s.lockCustomer(customerID)
	defer unlock()

	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshLocked(ctx, cust, 0); err != nil {
		return nil, err
	}
	return cust, nil
}

// Assist builds the channel-specific suggestion bundle for a customer.
func (s *Service) Assist(ctx context.Context, customerID int64, channel insight.Channel) (*insight.AssistBundle, error) {
	cust, recent, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	bundle := s.assister.Build(cust, recent, channel)
	return &bundle, nil
}

// Recommendations derives the prioritized next-action list for a customer.
func (s *Service) Recommendations(ctx context.Context, customerID int64) ([]insight.Recommendation, error) {
	cust, recent, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.recommender.Recommend(cust, recent), nil
}

// refreshLocked runs classification and scoring against current state and
// persists the result. Callers must hold the customer lock.
func (s *Service) refreshLocked(ctx context.Context, cust *customer.Customer, interactionID int64) error {
	recent, err := s.interactions.ListRecentByCustomer(ctx, cust.ID, s.recentLimit)
	if err != nil {
		return err
	}

	intentResult := s.classifier.Detect(cust, recent)
	if intent.ShouldUpdateIntent(cust.CurrentIntent, intentResult) {
		cust.CurrentIntent = intentResult.Intent
		cust.IntentConfidence = intentResult.Confidence
		cust.IntentExplanation = intentResult.Explanation
	}

	scoreResult := s.scorer.Calculate(cust, recent)
	cust.PotentialScore = scoreResult.Score
	cust.PotentialLevel = scoreResult.Level
	cust.ScoreBreakdown = scoreResult.Breakdown

	if err := s.customers.Update(ctx, cust); err != nil {
		return fmt.Errorf("failed to persist refreshed insight: %w", err)
	}

	s.logger.Info("customer insight refreshed",
		zap.Int64("customer_id", cust.ID),
		zap.String("intent", string(cust.CurrentIntent)),
		zap.Int("score", cust.PotentialScore),
		zap.String("level", string(cust.PotentialLevel)),
	)

	if s.publisher != nil {
		s.publisher.PublishInsight(InsightEvent{
			Type:          "insight.updated",
			CustomerID:    cust.ID,
			Reference:     cust.Reference,
			Intent:        cust.CurrentIntent,
			Confidence:    cust.IntentConfidence,
			Score:         cust.PotentialScore,
			Level:         cust.PotentialLevel,
			InteractionID: interactionID,
		})
	}
	return nil
}

// applyInteraction folds a freshly stored interaction into the customer's
// counters and keyword log.
func (s *Service) applyInteraction(cust *customer.Customer, rec *interaction.Interaction, agentID int64) {
	cust.InteractionCount++
	if !cust.FirstInteraction.Valid {
		cust.FirstInteraction = sql.NullTime{Time: rec.OccurredAt, Valid: true}
	}
	cust.LastInteraction = sql.NullTime{Time: rec.OccurredAt, Valid: true}
	if cust.ChannelCounts == nil {
		cust.ChannelCounts = map[string]int{}
	}
	cust.ChannelCounts[string(rec.Channel)]++

	for _, kw := range rec.Keywords {
		if cust.HasKeyword(kw) {
			continue
		}
		cust.Keywords = append(cust.Keywords, customer.TaggedKeyword{
			Keyword:           kw,
			AddedBy:           agentID,
			AddedAt:           rec.OccurredAt,
			ConfirmedRelevant: customer.RelevanceUnknown,
		})
	}
}

func (s *Service) load(ctx context.Context, customerID int64) (*customer.Customer, []*interaction.Interaction, error) {
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	recent, err := s.interactions.ListRecentByCustomer(ctx, customerID, s.recentLimit)
	if err != nil {
		return nil, nil, err
	}
	return cust, recent, nil
}

func (s *Service) lockCustomer(id int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
