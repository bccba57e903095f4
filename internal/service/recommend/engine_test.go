// internal/service/recommend/engine_test.go
package recommend_test

import (
	"database/sql"
	"testing"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"
	"leadscope-service/internal/service/recommend"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine(now time.Time) *recommend.Engine {
	e := recommend.NewEngine(zap.NewNop())
	e.Now = func() time.Time { return now }
	return e
}

func actions(recs []insight.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Action
	}
	return out
}

func TestRecommendEmptyForQuietCustomer(t *testing.T) {
	e := newEngine(time.Now())

	recs := e.Recommend(&customer.Customer{Name: "Ada"}, nil)
	require.Empty(t, recs)
}

func TestRecommendOverdueFollowUpIsHighPriority(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	e := newEngine(now)

	recent := []*interaction.Interaction{
		{
			Channel:          insight.ChannelEmail,
			FollowUpRequired: true,
			FollowUpDate:     sql.NullTime{Time: now.AddDate(0, 0, -2), Valid: true},
		},
	}

	recs := e.Recommend(&customer.Customer{Name: "Ada"}, recent)

	require.NotEmpty(t, recs)
	require.Equal(t, "complete_follow_up", recs[0].Action)
	require.Equal(t, insight.PriorityHigh, recs[0].Priority)
	require.Equal(t, "Overdue follow-up", recs[0].Title)
	require.Equal(t, "2026-05-30", recs[0].SuggestedDate)
}

func TestRecommendCompletedFollowUpIsSkipped(t *testing.T) {
	e := newEngine(time.Now())

	recent := []*interaction.Interaction{
		{FollowUpRequired: true, FollowUpCompleted: true},
	}

	recs := e.Recommend(&customer.Customer{Name: "Ada"}, recent)
	require.NotContains(t, actions(recs), "complete_follow_up")
}

func TestRecommendDormantHighPotential(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := newEngine(now)

	c := &customer.Customer{
		Name:            "Ada",
		PotentialLevel:  insight.PotentialHigh,
		LastInteraction: sql.NullTime{Time: now.AddDate(0, 0, -15), Valid: true},
	}

	recs := e.Recommend(c, nil)
	require.Contains(t, actions(recs), "re_engage")
}

func TestRecommendPriorityOrderingIsStable(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := newEngine(now)

	// Triggers: complaint escalation (high), nurture (medium), long
	// silence (low). Sorting must put them in exactly that order.
	c := &customer.Customer{
		Name:            "Ada",
		CurrentIntent:   insight.IntentComplaint,
		PotentialLevel:  insight.PotentialMedium,
		LastInteraction: sql.NullTime{Time: now.AddDate(0, 0, -45), Valid: true},
	}

	recs := e.Recommend(c, nil)

	require.Equal(t, []string{"escalate_complaint", "nurture", "contact_reminder"}, actions(recs))
}

func TestRecommendCapsAtFive(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := newEngine(now)

	// Trigger five rules at once: pending follow-up, dormant high
	// potential, complaint, open objection, long silence. Highs come
	// first in rule order, then mediums, then low.
	c := &customer.Customer{
		Name:            "Ada",
		CurrentIntent:   insight.IntentComplaint,
		PotentialLevel:  insight.PotentialHigh,
		LastInteraction: sql.NullTime{Time: now.AddDate(0, 0, -45), Valid: true},
	}
	recent := []*interaction.Interaction{
		{
			FollowUpRequired: true,
			Objections:       []string{"pricing is too high"},
			Outcome:          interaction.OutcomeNotInterested,
		},
	}

	recs := e.Recommend(c, recent)
	require.Len(t, recs, 5)
	require.Equal(t, []string{
		"re_engage",
		"escalate_complaint",
		"complete_follow_up",
		"resolve_objection",
		"contact_reminder",
	}, actions(recs))
}

func TestRecommendCloseDisqualifiedNeedsBothConditions(t *testing.T) {
	e := newEngine(time.Now())

	// Disinterest signal but medium potential: rule stays silent.
	c := &customer.Customer{
		Name:           "Ada",
		PotentialLevel: insight.PotentialMedium,
		Keywords:       []customer.TaggedKeyword{{Keyword: "not interested"}},
	}
	recs := e.Recommend(c, nil)
	require.NotContains(t, actions(recs), "close_disqualify")

	// Low potential plus the signal: rule fires.
	c.PotentialLevel = insight.PotentialLow
	recs = e.Recommend(c, nil)
	require.Contains(t, actions(recs), "close_disqualify")
}

func TestRecommendUsesPreferredChannel(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	e := newEngine(now)

	c := &customer.Customer{
		Name:            "Ada",
		PotentialLevel:  insight.PotentialHigh,
		LastInteraction: sql.NullTime{Time: now.AddDate(0, 0, -20), Valid: true},
		Preferences:     customer.Preferences{PreferredChannel: insight.ChannelChat},
	}

	recs := e.Recommend(c, nil)
	require.NotEmpty(t, recs)
	require.Equal(t, insight.ChannelChat, recs[0].SuggestedChannel)
}

func TestRecommendObjectionSkippedWhenResolved(t *testing.T) {
	e := newEngine(time.Now())

	recent := []*interaction.Interaction{
		{Outcome: interaction.OutcomeResolved, Objections: []string{"delivery took too long"}},
	}

	recs := e.Recommend(&customer.Customer{Name: "Ada"}, recent)
	require.NotContains(t, actions(recs), "resolve_objection")
}
