// internal/service/intent/classifier.go
package intent

import (
	"fmt"
	"math"
	"strings"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"

	"go.uber.org/zap"
)

const (
	// confirmedBoost multiplies the category score when the most recent
	// interaction already carries a confirmed intent.
	confirmedBoost = 1.5

	// maxConfidence is a deliberate ceiling; anything above is reserved
	// for human-confirmed intent.
	maxConfidence = 85

	// updateThreshold gates overwriting a previously stored intent.
	updateThreshold = 60

	noEvidenceExplanation = "no keyword evidence available to classify intent"
)

type Classifier struct {
	logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Detect scores the customer's evidence pool against every category and
// returns the winning intent with an explainable confidence. It never
// mutates the customer; callers apply ShouldUpdateIntent before persisting.
func (cl *Classifier) Detect(c *customer.Customer, recent []*interaction.Interaction) insight.IntentResult {
	pool := buildEvidencePool(c, recent)

	var confirmed insight.Intent
	if len(recent) > 0 && recent[0].HasConfirmedIntent() {
		confirmed = recent[0].Intent
	}

	breakdown := make([]insight.CategoryScore, 0, len(insight.ClassifiedIntents))
	for _, cat := range insight.ClassifiedIntents {
		score, matches := scoreCategory(cat, pool)
		boosted := false
		if cat == confirmed && score > 0 {
			score *= confirmedBoost
			boosted = true
		}
		breakdown = append(breakdown, insight.CategoryScore{
			Intent:  cat,
			Score:   score,
			Matches: matches,
			Boosted: boosted,
		})
	}

	// Argmax over the declared category order; strict greater-than keeps
	// the first-declared category on ties.
	winner := breakdown[0]
	runnerUp := 0.0
	for _, cs := range breakdown[1:] {
		if cs.Score > winner.Score {
			if winner.Score > runnerUp {
				runnerUp = winner.Score
			}
			winner = cs
		} else if cs.Score > runnerUp {
			runnerUp = cs.Score
		}
	}

	if winner.Score == 0 {
		return insight.IntentResult{
			Intent:       insight.IntentUnknown,
			Confidence:   0,
			Explanation:  noEvidenceExplanation,
			Breakdown:    breakdown,
			KeywordCount: len(pool),
		}
	}

	margin := winner.Score - runnerUp
	confidence := int(math.Round(winner.Score*20 + margin*15))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	explanation := fmt.Sprintf(
		"%d keyword signal(s) point to %s (score %.1f, leading the runner-up by %.1f)",
		winner.Matches, winner.Intent, winner.Score, margin,
	)
	if winner.Boosted {
		explanation += "; boosted by a confirmed intent on the latest interaction"
	}

	cl.logger.Debug("intent detected",
		zap.String("intent", string(winner.Intent)),
		zap.Int("confidence", confidence),
		zap.Int("evidence_size", len(pool)),
	)

	return insight.IntentResult{
		Intent:       winner.Intent,
		Confidence:   confidence,
		Explanation:  explanation,
		Breakdown:    breakdown,
		KeywordCount: len(pool),
	}
}

// ShouldUpdateIntent reports whether a caller may overwrite the stored
// intent: always when nothing is stored yet, otherwise only for a
// sufficiently confident, different answer.
func ShouldUpdateIntent(current insight.Intent, result insight.IntentResult) bool {
	if current == "" || current == insight.IntentUnknown {
		return true
	}
	return result.Confidence >= updateThreshold && result.Intent != current
}

// buildEvidencePool collects the customer's tagged keywords once each,
// plus every keyword of interaction i (newest first) repeated max(1, 3-i)
// times. Recency weighting is this duplication, not a decay curve.
func buildEvidencePool(c *customer.Customer, recent []*interaction.Interaction) []string {
	pool := append([]string(nil), c.ActiveKeywords()...)

	for i, rec := range recent {
		copies := 3 - i
		if copies < 1 {
			copies = 1
		}
		for _, kw := range rec.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			for n := 0; n < copies; n++ {
				pool = append(pool, kw)
			}
		}
	}
	return pool
}

// scoreCategory sums tier weights over the evidence pool. Every copy of a
// keyword counts; a single keyword scores at the strongest tier it matches.
func scoreCategory(cat insight.Intent, pool []string) (float64, int) {
	tiers := categoryPhrases[cat]
	score := 0.0
	matches := 0
	for _, kw := range pool {
		switch {
		case matchesAny(kw, tiers.strong):
			score += strongWeight
			matches++
		case matchesAny(kw, tiers.moderate):
			score += moderateWeight
			matches++
		case matchesAny(kw, tiers.weak):
			score += weakWeight
			matches++
		}
	}
	return score, matches
}

// matchesAny does bidirectional substring matching so that both a tagged
// phrase containing a table entry and a table entry containing a short
// keyword register as hits.
func matchesAny(keyword string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(keyword, p) || strings.Contains(p, keyword) {
			return true
		}
	}
	return false
}
