// internal/service/crm/service_test.go
package crm_test

import (
	"context"
	"testing"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	xerrors "leadscope-service/internal/pkg/errors"
	"leadscope-service/internal/service/crm"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	cust    *customer.Customer
	updates int
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	if f.cust == nil || f.cust.ID != id {
		return nil, xerrors.ErrNotFound
	}
	return f.cust, nil
}

func (f *fakeStore) FindByReference(_ context.Context, reference string) (*customer.Customer, error) {
	if f.cust == nil || f.cust.Reference != reference {
		return nil, xerrors.ErrNotFound
	}
	return f.cust, nil
}

func (f *fakeStore) List(_ context.Context, _ *customer.ListFilters) ([]customer.Customer, int64, error) {
	return []customer.Customer{*f.cust}, 41, nil
}

func (f *fakeStore) Update(_ context.Context, _ *customer.Customer) error {
	f.updates++
	return nil
}

type fakeResolver struct {
	cust    *customer.Customer
	created bool
	merges  [][2]int64
}

func (f *fakeResolver) Resolve(_ context.Context, _, _, _ string, _ bool) (*customer.Customer, bool, error) {
	return f.cust, f.created, nil
}

func (f *fakeResolver) Merge(_ context.Context, primaryID, duplicateID int64) (*customer.Customer, error) {
	f.merges = append(f.merges, [2]int64{primaryID, duplicateID})
	return f.cust, nil
}

type fakeRefresher struct {
	cust      *customer.Customer
	refreshes []int64
}

func (f *fakeRefresher) Refresh(_ context.Context, customerID int64) (*customer.Customer, error) {
	f.refreshes = append(f.refreshes, customerID)
	return f.cust, nil
}

type crmFixture struct {
	svc       *crm.Service
	cust      *customer.Customer
	store     *fakeStore
	resolver  *fakeResolver
	refresher *fakeRefresher
}

func newFixture(t *testing.T) *crmFixture {
	t.Helper()
	cust := &customer.Customer{
		ID:        1,
		Reference: "01CUST",
		Name:      "Ada Lovelace",
		Phone:     "0700123456",
		Status:    customer.StatusActive,
	}
	store := &fakeStore{cust: cust}
	resolver := &fakeResolver{cust: cust, created: true}
	refresher := &fakeRefresher{cust: cust}
	svc := crm.NewService(store, resolver, refresher, zap.NewNop())
	return &crmFixture{svc: svc, cust: cust, store: store, resolver: resolver, refresher: refresher}
}

func TestSignupBackfillsCompany(t *testing.T) {
	f := newFixture(t)

	cust, err := f.svc.Signup(context.Background(), &customer.SignupRequest{
		Email:   "ada@example.com",
		Name:    "Ada Lovelace",
		Company: "Analytical Engines Ltd",
	})
	require.NoError(t, err)
	require.Equal(t, "Analytical Engines Ltd", cust.Company.String)
	require.Equal(t, 1, f.store.updates)
}

func TestListDefaultsAndTotalPages(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.List(context.Background(), &customer.ListFilters{})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Page)
	require.Equal(t, 20, resp.PageSize)
	require.Equal(t, int64(41), resp.Total)
	require.Equal(t, 3, resp.TotalPages)
}

func TestUpdatePreferencesTriggersRefresh(t *testing.T) {
	f := newFixture(t)
	budget := "high"
	urgency := "high"

	_, err := f.svc.UpdatePreferences(context.Background(), 1, &customer.UpdatePreferencesRequest{
		BudgetTier: &budget,
		Urgency:    &urgency,
	})
	require.NoError(t, err)
	require.Equal(t, customer.BudgetHigh, f.cust.Preferences.BudgetTier)
	require.Equal(t, "high", f.cust.Preferences.Urgency)
	require.Equal(t, []int64{1}, f.refresher.refreshes)
}

func TestAddKeywordNormalizesAndRefreshes(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddKeyword(context.Background(), 1, 7, &customer.AddKeywordRequest{Keyword: "  Pricing "})
	require.NoError(t, err)
	require.Len(t, f.cust.Keywords, 1)
	require.Equal(t, "pricing", f.cust.Keywords[0].Keyword)
	require.Equal(t, int64(7), f.cust.Keywords[0].AddedBy)
	require.Equal(t, customer.RelevanceUnknown, f.cust.Keywords[0].ConfirmedRelevant)

	// Re-adding the same keyword does not duplicate the log entry.
	_, err = f.svc.AddKeyword(context.Background(), 1, 7, &customer.AddKeywordRequest{Keyword: "PRICING"})
	require.NoError(t, err)
	require.Len(t, f.cust.Keywords, 1)
	require.Equal(t, []int64{1, 1}, f.refresher.refreshes)
}

func TestAddKeywordRejectsBlank(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddKeyword(context.Background(), 1, 7, &customer.AddKeywordRequest{Keyword: "   "})
	require.ErrorIs(t, err, xerrors.ErrValidation)
}

func TestConfirmKeywordSettlesAllEntries(t *testing.T) {
	f := newFixture(t)
	f.cust.Keywords = []customer.TaggedKeyword{
		{Keyword: "pricing", ConfirmedRelevant: customer.RelevanceUnknown},
		{Keyword: "pricing", ConfirmedRelevant: customer.RelevanceUnknown},
		{Keyword: "demo", ConfirmedRelevant: customer.RelevanceUnknown},
	}

	_, err := f.svc.ConfirmKeyword(context.Background(), 1, 7, &customer.ConfirmKeywordRequest{
		Keyword:  "Pricing",
		Relevant: false,
	})
	require.NoError(t, err)
	require.Equal(t, customer.RelevanceFalse, f.cust.Keywords[0].ConfirmedRelevant)
	require.Equal(t, customer.RelevanceFalse, f.cust.Keywords[1].ConfirmedRelevant)
	require.Equal(t, customer.RelevanceUnknown, f.cust.Keywords[2].ConfirmedRelevant)

	require.Len(t, f.cust.FeedbackHistory, 1)
	require.Equal(t, "keyword_relevance", f.cust.FeedbackHistory[0].Field)
}

func TestConfirmKeywordUnknownKeyword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ConfirmKeyword(context.Background(), 1, 7, &customer.ConfirmKeywordRequest{
		Keyword:  "nonexistent",
		Relevant: true,
	})
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestApplyFeedbackIntentOverridesInPlace(t *testing.T) {
	f := newFixture(t)
	f.cust.CurrentIntent = insight.IntentInquiry
	f.cust.IntentConfidence = 55

	cust, err := f.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "intent",
		NewValue: "purchase",
		Reason:   "customer asked for a contract on the call",
	})
	require.NoError(t, err)
	require.Equal(t, insight.IntentPurchase, cust.CurrentIntent)
	require.Equal(t, 95, cust.IntentConfidence)
	require.Equal(t, "corrected by agent", cust.IntentExplanation)

	require.Len(t, cust.FeedbackHistory, 1)
	require.Equal(t, "inquiry", cust.FeedbackHistory[0].OldValue)
	require.Equal(t, "purchase", cust.FeedbackHistory[0].NewValue)

	// Derived-field override, no recompute.
	require.Empty(t, f.refresher.refreshes)
}

func TestApplyFeedbackBudgetTriggersRecompute(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "budget_tier",
		NewValue: "premium",
	})
	require.NoError(t, err)
	require.Equal(t, customer.BudgetPremium, f.cust.Preferences.BudgetTier)
	require.Equal(t, []int64{1}, f.refresher.refreshes)
}

func TestApplyFeedbackKeywordRelevanceDelegates(t *testing.T) {
	f := newFixture(t)
	f.cust.Keywords = []customer.TaggedKeyword{{Keyword: "pricing"}}

	_, err := f.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "keyword_relevance",
		NewValue: "pricing:false",
	})
	require.NoError(t, err)
	require.Equal(t, customer.RelevanceFalse, f.cust.Keywords[0].ConfirmedRelevant)
	require.Equal(t, []int64{1}, f.refresher.refreshes)

	// One correction, one audit row.
	require.Len(t, f.cust.FeedbackHistory, 1)
	require.Equal(t, "keyword_relevance", f.cust.FeedbackHistory[0].Field)
}

func TestApplyFeedbackPotentialLevelKeepsScoreConsistent(t *testing.T) {
	f := newFixture(t)
	f.cust.PotentialScore = 85
	f.cust.PotentialLevel = insight.PotentialHigh

	cust, err := f.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "potential_level",
		NewValue: "low",
	})
	require.NoError(t, err)
	require.Equal(t, insight.PotentialLow, cust.PotentialLevel)
	require.Equal(t, 39, cust.PotentialScore)
	require.Equal(t, cust.PotentialLevel, insight.LevelForScore(cust.PotentialScore))

	// A score already inside the overridden band is left alone.
	f2 := newFixture(t)
	f2.cust.PotentialScore = 45
	f2.cust.PotentialLevel = insight.PotentialMedium

	cust, err = f2.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "potential_level",
		NewValue: "medium",
	})
	require.NoError(t, err)
	require.Equal(t, 45, cust.PotentialScore)

	// Upgrades clamp from below.
	f3 := newFixture(t)
	f3.cust.PotentialScore = 30
	f3.cust.PotentialLevel = insight.PotentialLow

	cust, err = f3.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "potential_level",
		NewValue: "high",
	})
	require.NoError(t, err)
	require.Equal(t, 70, cust.PotentialScore)
	require.Equal(t, insight.PotentialHigh, insight.LevelForScore(cust.PotentialScore))
}

func TestApplyFeedbackRejectsMalformedKeywordValue(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "keyword_relevance",
		NewValue: "pricing",
	})
	require.ErrorIs(t, err, xerrors.ErrValidation)
}

func TestApplyFeedbackUnknownField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ApplyFeedback(context.Background(), 1, 7, &customer.FeedbackRequest{
		Field:    "name",
		NewValue: "Someone Else",
	})
	require.ErrorIs(t, err, xerrors.ErrValidation)
}

func TestMergeRefreshesPrimary(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Merge(context.Background(), &customer.MergeRequest{PrimaryID: 1, DuplicateID: 2})
	require.NoError(t, err)
	require.Equal(t, [][2]int64{{1, 2}}, f.resolver.merges)
	require.Equal(t, []int64{1}, f.refresher.refreshes)
}

func TestMergeRejectsSelf(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Merge(context.Background(), &customer.MergeRequest{PrimaryID: 1, DuplicateID: 1})
	require.ErrorIs(t, err, xerrors.ErrValidation)
	require.Empty(t, f.resolver.merges)
}
