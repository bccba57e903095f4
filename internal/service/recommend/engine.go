// internal/service/recommend/engine.go
package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"

	"go.uber.org/zap"
)

const maxRecommendations = 5

const (
	dormantAfterDays = 14
	silentAfterDays  = 30
)

var disinterestSignals = []string{
	"not interested", "unsubscribe", "stop calling", "wrong number", "do not contact",
}

type Engine struct {
	logger *zap.Logger

	Now func() time.Time
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger, Now: time.Now}
}

// rule evaluates one candidate next-best-action; nil means no
// recommendation from this rule.
type rule func(e *Engine, c *customer.Customer, recent []*interaction.Interaction) *insight.Recommendation

// rules are evaluated in order; same-priority recommendations keep this
// order in the final list.
var rules = []rule{
	(*Engine).pendingFollowUp,
	(*Engine).dormantHighPotential,
	(*Engine).complaintEscalation,
	(*Engine).conversionPush,
	(*Engine).nurtureMediumPotential,
	(*Engine).longSilenceReminder,
	(*Engine).closeDisqualified,
	(*Engine).openObjection,
}

// Recommend derives a prioritized list of at most five next actions for
// the agent. Sorting by priority is stable, preserving rule order inside
// each tier.
func (e *Engine) Recommend(c *customer.Customer, recent []*interaction.Interaction) []insight.Recommendation {
	var out []insight.Recommendation
	for _, r := range rules {
		if rec := r(e, c, recent); rec != nil {
			out = append(out, *rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return insight.PriorityRank(out[i].Priority) < insight.PriorityRank(out[j].Priority)
	})
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}

	e.logger.Debug("recommendations derived",
		zap.Int64("customer_id", c.ID),
		zap.Int("count", len(out)),
	)
	return out
}

func (e *Engine) pendingFollowUp(c *customer.Customer, recent []*interaction.Interaction) *insight.Recommendation {
	for _, rec := range recent {
		if !rec.FollowUpRequired || rec.FollowUpCompleted {
			continue
		}

		overdue := rec.FollowUpDate.Valid && rec.FollowUpDate.Time.Before(e.Now())
		priority := insight.PriorityMedium
		title := "Upcoming follow-up"
		reason := "an open follow-up was promised on a prior interaction"
		if overdue {
			priority = insight.PriorityHigh
			title = "Overdue follow-up"
			reason = fmt.Sprintf("the follow-up promised for %s has passed", rec.FollowUpDate.Time.Format("2006-01-02"))
		}

		out := &insight.Recommendation{
			Action:           "complete_follow_up",
			Priority:         priority,
			Title:            title,
			Description:      fmt.Sprintf("Complete the follow-up promised to %s.", c.Name),
			Reason:           reason,
			SuggestedChannel: preferredOr(c, rec.Channel),
			ActionButton:     "Complete follow-up",
		}
		if rec.FollowUpDate.Valid {
			out.SuggestedDate = rec.FollowUpDate.Time.Format("2006-01-02")
		}
		return out
	}
	return nil
}

func (e *Engine) dormantHighPotential(c *customer.Customer, _ []*interaction.Interaction) *insight.Recommendation {
	if c.PotentialLevel != insight.PotentialHigh {
		return nil
	}
	days := e.daysSinceLast(c)
	if days < dormantAfterDays {
		return nil
	}
	return &insight.Recommendation{
		Action:           "re_engage",
		Priority:         insight.PriorityHigh,
		Title:            "Re-engage high-potential customer",
		Description:      fmt.Sprintf("%s is high potential but has had no contact for %d days.", c.Name, days),
		Reason:           "high potential combined with a long silence risks losing the opportunity",
		SuggestedChannel: preferredOr(c, insight.ChannelEmail),
		ActionButton:     "Reach out",
	}
}

func (e *Engine) complaintEscalation(c *customer.Customer, _ []*interaction.Interaction) *insight.Recommendation {
	if c.CurrentIntent != insight.IntentComplaint {
		return nil
	}
	return &insight.Recommendation{
		Action:           "escalate_complaint",
		Priority:         insight.PriorityHigh,
		Title:            "Escalate open complaint",
		Description:      fmt.Sprintf("%s has an active complaint that needs an owner.", c.Name),
		Reason:           "current intent is classified as a complaint",
		SuggestedChannel: insight.ChannelPhone,
		ActionButton:     "Escalate",
	}
}

func (e *Engine) conversionPush(c *customer.Customer, _ []*interaction.Interaction) *insight.Recommendation {
	if c.CurrentIntent != insight.IntentPurchase || c.PotentialLevel != insight.PotentialHigh {
		return nil
	}
	return &insight.Recommendation{
		Action:           "push_conversion",
		Priority:         insight.PriorityHigh,
		Title:            "Push for conversion",
		Description:      fmt.Sprintf("%s shows purchase intent at high potential - move to close.", c.Name),
		Reason:           "purchase intent and high potential rarely stay aligned for long",
		SuggestedChannel: preferredOr(c, insight.ChannelPhone),
		ActionButton:     "Start conversion",
	}
}

func (e *Engine) nurtureMediumPotential(c *customer.Customer, _ []*interaction.Interaction) *insight.Recommendation {
	if c.PotentialLevel != insight.PotentialMedium {
		return nil
	}
	return &insight.Recommendation{
		Action:           "nurture",
		Priority:         insight.PriorityMedium,
		Title:            "Nurture lukewarm lead",
		Description:      fmt.Sprintf("Keep %s warm with relevant, low-pressure touchpoints.", c.Name),
		Reason:           "medium potential responds well to steady nurturing",
		SuggestedChannel: preferredOr(c, insight.ChannelEmail),
		ActionButton:     "Plan touchpoint",
	}
}

func (e *Engine) longSilenceReminder(c *customer.Customer, _ []*interaction.Interaction) *insight.Recommendation {
	days := e.daysSinceLast(c)
	if days < silentAfterDays {
		return nil
	}
	return &insight.Recommendation{
		Action:           "contact_reminder",
		Priority:         insight.PriorityLow,
		Title:            "No contact in over a month",
		Description:      fmt.Sprintf("%s has not been contacted in %d days.", c.Name, days),
		Reason:           "long silences erode whatever relationship was built",
		SuggestedChannel: preferredOr(c, insight.ChannelEmail),
		ActionButton:     "Schedule contact",
	}
}

func (e *Engine) closeDisqualified(c *customer.Customer, recent []*interaction.Interaction) *insight.Recommendation {
	if c.PotentialLevel != insight.PotentialLow && c.PotentialLevel != insight.PotentialSpam {
		return nil
	}
	if !hasDisinterestSignal(c, recent) {
		return nil
	}
	return &insight.Recommendation{
		Action:       "close_disqualify",
		Priority:     insight.PriorityLow,
		Title:        "Close or disqualify",
		Description:  fmt.Sprintf("%s has signaled disinterest; consider closing the record.", c.Name),
		Reason:       "low potential with an explicit disinterest signal",
		ActionButton: "Close record",
	}
}

func (e *Engine) openObjection(c *customer.Customer, recent []*interaction.Interaction) *insight.Recommendation {
	for _, rec := range recent {
		if rec.Outcome == interaction.OutcomeResolved || len(rec.Objections) == 0 {
			continue
		}
		return &insight.Recommendation{
			Action:           "resolve_objection",
			Priority:         insight.PriorityMedium,
			Title:            "Resolve open objection",
			Description:      fmt.Sprintf("Address the objection %q raised by %s.", rec.Objections[0], c.Name),
			Reason:           "an unresolved objection blocks any further progress",
			SuggestedChannel: preferredOr(c, rec.Channel),
			ActionButton:     "Prepare response",
		}
	}
	return nil
}

func (e *Engine) daysSinceLast(c *customer.Customer) int {
	if !c.LastInteraction.Valid {
		return 0
	}
	return int(e.Now().Sub(c.LastInteraction.Time).Hours() / 24)
}

func hasDisinterestSignal(c *customer.Customer, recent []*interaction.Interaction) bool {
	for _, kw := range c.ActiveKeywords() {
		if matchesAny(kw, disinterestSignals) {
			return true
		}
	}
	for _, rec := range recent {
		if rec.Outcome == interaction.OutcomeNotInterested {
			return true
		}
		for _, obj := range rec.Objections {
			if matchesAny(strings.ToLower(obj), disinterestSignals) {
				return true
			}
		}
	}
	return false
}

func matchesAny(s string, signals []string) bool {
	for _, sig := range signals {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}

func preferredOr(c *customer.Customer, fallback insight.Channel) insight.Channel {
	if c.Preferences.PreferredChannel != "" {
		return c.Preferences.PreferredChannel
	}
	return fallback
}
