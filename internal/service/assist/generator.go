// internal/service/assist/generator.go
package assist

import (
	"fmt"
	"strings"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"

	"go.uber.org/zap"
)

const (
	maxQuickReplies = 3
	maxCallPoints   = 5
)

var greetingWords = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"}

// Generator builds channel-specific suggestion bundles. Every output is
// editable draft material for a human agent; nothing here sends anything.
type Generator struct {
	logger *zap.Logger

	Now func() time.Time
}

func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger, Now: time.Now}
}

// Build returns the bundle for the requested channel. An unrecognized
// channel yields a neutral placeholder with no payload.
func (g *Generator) Build(c *customer.Customer, recent []*interaction.Interaction, channel insight.Channel) insight.AssistBundle {
	switch channel {
	case insight.ChannelEmail:
		return insight.AssistBundle{Channel: channel, Email: g.buildEmail(c, recent)}
	case insight.ChannelChat:
		return insight.AssistBundle{Channel: channel, Chat: g.buildChat(c, recent)}
	case insight.ChannelPhone:
		return insight.AssistBundle{Channel: channel, Phone: g.buildPhone(c, recent)}
	default:
		g.logger.Warn("assist requested for unknown channel", zap.String("channel", string(channel)))
		return insight.AssistBundle{Channel: channel}
	}
}

func (g *Generator) buildEmail(c *customer.Customer, recent []*interaction.Interaction) *insight.EmailAssist {
	days := g.daysSinceLastContact(c)

	var opening string
	switch {
	case days < 0:
		opening = fmt.Sprintf("Hi %s, thank you for your interest in us.", c.Name)
	case days <= 1:
		opening = fmt.Sprintf("Hi %s, thank you for getting in touch today.", c.Name)
	case days <= 7:
		opening = fmt.Sprintf("Hi %s, following up on our conversation earlier this week.", c.Name)
	default:
		opening = fmt.Sprintf("Hi %s, it has been a while since we last spoke and I wanted to reconnect.", c.Name)
	}

	followUp := emailFollowUpLines[c.CurrentIntent]
	if followUp == "" {
		followUp = "I wanted to check whether there is anything we can help you with at the moment."
	}

	cta := emailCallsToAction[c.PotentialLevel]
	if cta == "" {
		cta = "Feel free to reply whenever it suits you."
	}

	return &insight.EmailAssist{
		OpeningSentence: opening,
		FollowUpLine:    followUp,
		CallToAction:    cta,
		Warnings:        objectionWarnings(recent),
	}
}

func (g *Generator) buildChat(c *customer.Customer, recent []*interaction.Interaction) *insight.ChatAssist {
	replies := chatQuickReplies[c.CurrentIntent]
	if len(replies) == 0 {
		replies = chatQuickReplies[insight.IntentUnknown]
	}
	if len(replies) > maxQuickReplies {
		replies = replies[:maxQuickReplies]
	}

	out := &insight.ChatAssist{QuickReplies: append([]string(nil), replies...)}

	if len(recent) == 0 || looksLikeGreeting(latestInboundText(recent)) {
		out.Greeting = fmt.Sprintf("Hello %s! How can I help you today?", c.Name)
	}
	return out
}

func (g *Generator) buildPhone(c *customer.Customer, recent []*interaction.Interaction) *insight.PhoneAssist {
	summary := fmt.Sprintf("%s - %s potential, current intent %s, %d interaction(s) on record",
		c.Name, displayLevel(c.PotentialLevel), displayIntent(c.CurrentIntent), c.InteractionCount)
	if tier := c.Preferences.BudgetTier; tier != "" && tier != customer.BudgetUnspecified {
		summary += fmt.Sprintf(", budget %s", tier)
	}

	remember := make([]string, 0, maxCallPoints)
	avoid := make([]string, 0, maxCallPoints)
	for _, rec := range recent {
		remember = appendDeduped(remember, rec.PointsToRemember, maxCallPoints)
		avoid = appendDeduped(avoid, rec.DoNotRepeat, maxCallPoints)
	}

	objective, points := callPlanFor(c.CurrentIntent, c.PotentialLevel)

	return &insight.PhoneAssist{
		CustomerSummary:  summary,
		PointsToRemember: remember,
		DoNotRepeat:      avoid,
		CallObjective:    objective,
		TalkingPoints:    points,
		Warnings:         phoneWarnings(c, recent),
	}
}

// daysSinceLastContact returns -1 when no interaction is on record.
func (g *Generator) daysSinceLastContact(c *customer.Customer) int {
	if !c.LastInteraction.Valid {
		return -1
	}
	return int(g.Now().Sub(c.LastInteraction.Time).Hours() / 24)
}

// objectionWarnings surfaces objections raised in recent interactions that
// were never resolved, so an agent does not walk into them blind.
func objectionWarnings(recent []*interaction.Interaction) []string {
	var warnings []string
	seen := make(map[string]bool)
	for _, rec := range recent {
		if rec.Outcome == interaction.OutcomeResolved {
			continue
		}
		for _, obj := range rec.Objections {
			key := strings.ToLower(strings.TrimSpace(obj))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			warnings = append(warnings, fmt.Sprintf("Unresolved objection from a prior exchange: %s", obj))
		}
	}
	return warnings
}

func phoneWarnings(c *customer.Customer, recent []*interaction.Interaction) []string {
	var warnings []string

	switch c.PotentialLevel {
	case insight.PotentialLow:
		warnings = append(warnings, "Low potential; keep the call short and qualify before investing time")
	case insight.PotentialSpam:
		warnings = append(warnings, "Flagged as spam-level potential; verify this is a genuine prospect")
	}

	for _, rec := range recent {
		if mentionsCompetitor(rec) {
			warnings = append(warnings, "Customer has mentioned a competitor before")
			break
		}
	}

	for _, rec := range recent {
		if rec.Outcome == interaction.OutcomeNotInterested || rec.Outcome == interaction.OutcomeEscalated {
			warnings = append(warnings, fmt.Sprintf("A prior call ended with outcome %q", rec.Outcome))
			break
		}
	}

	return warnings
}

func mentionsCompetitor(rec *interaction.Interaction) bool {
	for _, obj := range rec.Objections {
		if strings.Contains(strings.ToLower(obj), "competitor") {
			return true
		}
	}
	for _, kw := range rec.Keywords {
		if strings.Contains(strings.ToLower(kw), "competitor") {
			return true
		}
	}
	return false
}

func latestInboundText(recent []*interaction.Interaction) string {
	for _, rec := range recent {
		if rec.Direction == insight.DirectionInbound {
			return rec.Content
		}
	}
	return ""
}

func looksLikeGreeting(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, g := range greetingWords {
		if strings.HasPrefix(text, g) {
			return true
		}
	}
	return false
}

func appendDeduped(dst []string, src []string, limit int) []string {
	for _, s := range src {
		if len(dst) >= limit {
			return dst
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if strings.EqualFold(existing, s) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}

func displayLevel(l insight.PotentialLevel) string {
	if l == "" {
		return "unscored"
	}
	return string(l)
}

func displayIntent(i insight.Intent) string {
	if i == "" {
		return string(insight.IntentUnknown)
	}
	return string(i)
}
