// internal/service/scoring/scorer.go
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"

	"go.uber.org/zap"
)

// Factor weights; they always sum to 1.
const (
	weightIntent     = 0.30
	weightEngagement = 0.25
	weightBudget     = 0.20
	weightKeywords   = 0.15
	weightRecency    = 0.10
)

// intentStrength is the base value per confirmed intent before confidence
// scaling.
var intentStrength = map[insight.Intent]int{
	insight.IntentPurchase:  100,
	insight.IntentFollowUp:  70,
	insight.IntentInquiry:   50,
	insight.IntentSupport:   40,
	insight.IntentComplaint: 30,
	insight.IntentUnknown:   25,
}

var budgetClarity = map[customer.BudgetTier]int{
	customer.BudgetPremium:     100,
	customer.BudgetHigh:        85,
	customer.BudgetMedium:      60,
	customer.BudgetLow:         40,
	customer.BudgetUnspecified: 25,
}

var positiveSignals = []string{
	"ready to buy", "urgent", "budget approved", "decision maker",
	"asap", "demo", "trial", "renewal", "expansion", "approved",
}

var negativeSignals = []string{
	"not interested", "unsubscribe", "stop calling", "spam",
	"wrong number", "too expensive", "went with competitor",
}

type Scorer struct {
	logger *zap.Logger

	// Now is swappable for deterministic recency tests.
	Now func() time.Time
}

func NewScorer(logger *zap.Logger) *Scorer {
	return &Scorer{logger: logger, Now: time.Now}
}

// Calculate combines five weighted factors into a 0-100 score, its level
// and a per-factor breakdown. Pure with respect to its inputs; callers
// persist the result.
func (s *Scorer) Calculate(c *customer.Customer, recent []*interaction.Interaction) insight.ScoreResult {
	breakdown := []insight.ScoreFactor{
		s.intentFactor(c),
		s.engagementFactor(c),
		s.budgetFactor(c),
		s.keywordFactor(c),
		s.recencyFactor(c),
	}

	weighted := 0.0
	for _, f := range breakdown {
		weighted += float64(f.Score) * f.Weight
	}
	score := int(math.Round(weighted))

	top := breakdown[0]
	for _, f := range breakdown[1:] {
		if float64(f.Score)*f.Weight > float64(top.Score)*top.Weight {
			top = f
		}
	}

	result := insight.ScoreResult{
		Score:       score,
		Level:       insight.LevelForScore(score),
		Breakdown:   breakdown,
		Explanation: fmt.Sprintf("driven by %s: %s", top.Name, top.Reason),
	}

	s.logger.Debug("potential calculated",
		zap.Int64("customer_id", c.ID),
		zap.Int("score", score),
		zap.String("level", string(result.Level)),
	)
	return result
}

func (s *Scorer) intentFactor(c *customer.Customer) insight.ScoreFactor {
	base, ok := intentStrength[c.CurrentIntent]
	if !ok {
		base = intentStrength[insight.IntentUnknown]
	}
	scale := 0.7 + 0.3*float64(c.IntentConfidence)/100
	score := int(math.Round(float64(base) * scale))

	intent := c.CurrentIntent
	if intent == "" {
		intent = insight.IntentUnknown
	}
	return insight.ScoreFactor{
		Name:   "intent strength",
		Score:  score,
		Weight: weightIntent,
		Reason: fmt.Sprintf("current intent %q at %d%% confidence", intent, c.IntentConfidence),
	}
}

func (s *Scorer) engagementFactor(c *customer.Customer) insight.ScoreFactor {
	count := c.InteractionCount
	var score int
	switch {
	case count >= 10:
		score = 100
	case count >= 5:
		score = 80
	case count >= 3:
		score = 60
	case count >= 1:
		score = 40
	default:
		score = 20
	}

	reason := fmt.Sprintf("%d interaction(s) on record", count)
	if c.DistinctChannels() >= 2 {
		score += 10
		if score > 100 {
			score = 100
		}
		reason += " across multiple channels"
	}

	return insight.ScoreFactor{
		Name:   "engagement",
		Score:  score,
		Weight: weightEngagement,
		Reason: reason,
	}
}

func (s *Scorer) budgetFactor(c *customer.Customer) insight.ScoreFactor {
	tier := c.Preferences.BudgetTier
	if tier == "" {
		tier = customer.BudgetUnspecified
	}
	score := budgetClarity[tier]

	reason := fmt.Sprintf("declared budget tier %q", tier)
	if c.Preferences.Urgency == "high" {
		score += 15
		if score > 100 {
			score = 100
		}
		reason += " with high urgency"
	}

	return insight.ScoreFactor{
		Name:   "budget clarity",
		Score:  score,
		Weight: weightBudget,
		Reason: reason,
	}
}

// keywordFactor starts neutral at 50; every matched positive signal adds
// 15, every negative one subtracts 20, clamped to [0,100].
func (s *Scorer) keywordFactor(c *customer.Customer) insight.ScoreFactor {
	score := 50
	positives, negatives := 0, 0

	for _, kw := range c.ActiveKeywords() {
		norm := strings.ReplaceAll(kw, "-", " ")
		if matchesAny(norm, positiveSignals) {
			score += 15
			positives++
			continue
		}
		if matchesAny(norm, negativeSignals) {
			score -= 20
			negatives++
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	reason := "no scoring keywords tagged"
	if positives+negatives > 0 {
		reason = fmt.Sprintf("%d positive and %d negative keyword signal(s)", positives, negatives)
	}

	return insight.ScoreFactor{
		Name:   "keyword signals",
		Score:  score,
		Weight: weightKeywords,
		Reason: reason,
	}
}

func (s *Scorer) recencyFactor(c *customer.Customer) insight.ScoreFactor {
	if !c.LastInteraction.Valid {
		return insight.ScoreFactor{
			Name:   "recency",
			Score:  20,
			Weight: weightRecency,
			Reason: "no interaction on record",
		}
	}

	days := int(s.Now().Sub(c.LastInteraction.Time).Hours() / 24)
	var score int
	switch {
	case days <= 1:
		score = 100
	case days <= 3:
		score = 90
	case days <= 7:
		score = 75
	case days <= 14:
		score = 55
	case days <= 30:
		score = 35
	default:
		score = 15
	}

	return insight.ScoreFactor{
		Name:   "recency",
		Score:  score,
		Weight: weightRecency,
		Reason: fmt.Sprintf("last interaction %d day(s) ago", days),
	}
}

func matchesAny(keyword string, signals []string) bool {
	for _, sig := range signals {
		if strings.Contains(keyword, sig) || strings.Contains(sig, keyword) {
			return true
		}
	}
	return false
}
