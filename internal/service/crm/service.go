// internal/service/crm/service.go
package crm

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	xerrors "leadscope-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Store is the customer persistence surface the profile service needs.
type Store interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByReference(ctx context.Context, reference string) (*customer.Customer, error)
	List(ctx context.Context, f *customer.ListFilters) ([]customer.Customer, int64, error)
	Update(ctx context.Context, c *customer.Customer) error
}

// Resolver creates-or-finds a customer from contact info and merges
// duplicates.
type Resolver interface {
	Resolve(ctx context.Context, email, phone, name string, updateIfFound bool) (*customer.Customer, bool, error)
	Merge(ctx context.Context, primaryID, duplicateID int64) (*customer.Customer, error)
}

// Refresher re-runs classification and scoring after profile inputs change.
type Refresher interface {
	Refresh(ctx context.Context, customerID int64) (*customer.Customer, error)
}

// Service covers the profile side of customer management: signup, lookup,
// preferences, the keyword log, agent feedback and duplicate merges. The
// interaction side lives in the pipeline.
type Service struct {
	store    Store
	resolver Resolver
	pipeline Refresher
	logger   *zap.Logger
}

func NewService(store Store, resolver Resolver, pipeline Refresher, logger *zap.Logger) *Service {
	return &Service{store: store, resolver: resolver, pipeline: pipeline, logger: logger}
}

// Signup registers a customer proactively, before any interaction exists.
func (s *Service) Signup(ctx context.Context, req *customer.SignupRequest) (*customer.Customer, error) {
	cust, created, err := s.resolver.Resolve(ctx, req.Email, req.Phone, req.Name, true)
	if err != nil {
		return nil, err
	}
	if req.Company != "" && !cust.Company.Valid {
		cust.Company = sql.NullString{String: req.Company, Valid: true}
		if err := s.store.Update(ctx, cust); err != nil {
			return nil, err
		}
	}
	s.logger.Info("customer signup",
		zap.Int64("customer_id", cust.ID),
		zap.Bool("created", created),
	)
	return cust, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*customer.Customer, error) {
	return s.store.FindByReference(ctx, reference)
}

func (s *Service) List(ctx context.Context, f *customer.ListFilters) (*customer.ListResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	customers, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &customer.ListResponse{
		Customers:  customers,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdatePreferences applies the provided fields and re-scores, since budget
// and urgency feed the score directly.
func (s *Service) UpdatePreferences(ctx context.Context, id int64, req *customer.UpdatePreferencesRequest) (*customer.Customer, error) {
	cust, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.BudgetTier != nil {
		cust.Preferences.BudgetTier = customer.BudgetTier(*req.BudgetTier)
	}
	if req.ProductInterests != nil {
		cust.Preferences.ProductInterests = req.ProductInterests
	}
	if req.Urgency != nil {
		cust.Preferences.Urgency = *req.Urgency
	}
	if req.PreferredChannel != nil {
		cust.Preferences.PreferredChannel = insight.Channel(*req.PreferredChannel)
	}
	if err := s.store.Update(ctx, cust); err != nil {
		return nil, err
	}
	return s.pipeline.Refresh(ctx, id)
}

// AddKeyword appends to the keyword log and re-runs inference. Duplicate
// keys are accepted silently; the log dedups at read time.
func (s *Service) AddKeyword(ctx context.Context, id, agentID int64, req *customer.AddKeywordRequest) (*customer.Customer, error) {
	keyword := strings.ToLower(strings.TrimSpace(req.Keyword))
	if keyword == "" {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "keyword must not be blank")
	}
	cust, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cust.HasKeyword(keyword) {
		cust.Keywords = append(cust.Keywords, customer.TaggedKeyword{
			Keyword:           keyword,
			AddedBy:           agentID,
			AddedAt:           time.Now(),
			ConfirmedRelevant: customer.RelevanceUnknown,
		})
		if err := s.store.Update(ctx, cust); err != nil {
			return nil, err
		}
	}
	return s.pipeline.Refresh(ctx, id)
}

// ConfirmKeyword settles the relevance tri-state on every log entry with the
// given key. Rejected keywords stop feeding classification, so re-score.
func (s *Service) ConfirmKeyword(ctx context.Context, id, agentID int64, req *customer.ConfirmKeywordRequest) (*customer.Customer, error) {
	cust, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(req.Keyword))
	relevance := customer.RelevanceFalse
	if req.Relevant {
		relevance = customer.RelevanceTrue
	}
	found := false
	for i := range cust.Keywords {
		if strings.ToLower(strings.TrimSpace(cust.Keywords[i].Keyword)) == key {
			cust.Keywords[i].ConfirmedRelevant = relevance
			found = true
		}
	}
	if !found {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, "keyword not found on customer")
	}
	cust.FeedbackHistory = append(cust.FeedbackHistory, customer.FeedbackEntry{
		Field:       "keyword_relevance",
		OldValue:    key,
		NewValue:    string(relevance),
		CorrectedBy: agentID,
		CorrectedAt: time.Now(),
	})
	if err := s.store.Update(ctx, cust); err != nil {
		return nil, err
	}
	return s.pipeline.Refresh(ctx, id)
}

// ApplyFeedback records an agent correction. Corrections to derived fields
// override them in place; corrections to inputs trigger a recompute.
func (s *Service) ApplyFeedback(ctx context.Context, id, agentID int64, req *customer.FeedbackRequest) (*customer.Customer, error) {
	cust, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := customer.FeedbackEntry{
		Field:       req.Field,
		NewValue:    req.NewValue,
		CorrectedBy: agentID,
		CorrectedAt: time.Now(),
		Reason:      req.Reason,
	}

	recompute := false
	switch req.Field {
	case "intent":
		entry.OldValue = string(cust.CurrentIntent)
		cust.CurrentIntent = insight.Intent(req.NewValue)
		cust.IntentConfidence = agentCorrectionConfidence
		cust.IntentExplanation = "corrected by agent"
	case "potential_level":
		entry.OldValue = string(cust.PotentialLevel)
		cust.PotentialLevel = insight.PotentialLevel(req.NewValue)
		cust.PotentialScore = clampScoreToLevel(cust.PotentialScore, cust.PotentialLevel)
	case "budget_tier":
		entry.OldValue = string(cust.Preferences.BudgetTier)
		cust.Preferences.BudgetTier = customer.BudgetTier(req.NewValue)
		recompute = true
	case "keyword_relevance":
		key, val, ok := strings.Cut(req.NewValue, ":")
		if !ok {
			return nil, xerrors.Wrap(xerrors.ErrValidation, "keyword_relevance value must be keyword:true or keyword:false")
		}
		// ConfirmKeyword writes its own audit entry.
		return s.ConfirmKeyword(ctx, id, agentID, &customer.ConfirmKeywordRequest{
			Keyword:  key,
			Relevant: val == "true",
		})
	default:
		return nil, xerrors.Wrap(xerrors.ErrValidation, "unsupported feedback field")
	}

	cust.FeedbackHistory = append(cust.FeedbackHistory, entry)
	if err := s.store.Update(ctx, cust); err != nil {
		return nil, err
	}

	s.logger.Info("agent feedback applied",
		zap.Int64("customer_id", id),
		zap.Int64("agent_id", agentID),
		zap.String("field", req.Field),
	)

	if recompute {
		return s.pipeline.Refresh(ctx, id)
	}
	return cust, nil
}

// Merge folds the duplicate into the primary and re-scores the survivor.
func (s *Service) Merge(ctx context.Context, req *customer.MergeRequest) (*customer.Customer, error) {
	if req.PrimaryID == req.DuplicateID {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "cannot merge a customer into itself")
	}
	if _, err := s.resolver.Merge(ctx, req.PrimaryID, req.DuplicateID); err != nil {
		return nil, err
	}
	return s.pipeline.Refresh(ctx, req.PrimaryID)
}

// Confidence assigned to an intent an agent set by hand; above the update
// threshold so a later automatic pass must strongly disagree to change it.
const agentCorrectionConfidence = 95

// clampScoreToLevel moves the score to the nearest value inside the band of
// an agent-overridden level, keeping the score-to-level mapping consistent.
func clampScoreToLevel(score int, level insight.PotentialLevel) int {
	lo, hi := levelBand(level)
	if score < lo {
		return lo
	}
	if score > hi {
		return hi
	}
	return score
}

func levelBand(level insight.PotentialLevel) (int, int) {
	switch level {
	case insight.PotentialHigh:
		return 70, 100
	case insight.PotentialMedium:
		return 40, 69
	case insight.PotentialLow:
		return 20, 39
	default:
		return 0, 19
	}
}
