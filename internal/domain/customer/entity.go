// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"strings"
	"time"

	"leadscope-service/internal/domain/insight"

	"github.com/lib/pq"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusConverted Status = "converted"
	StatusClosed    Status = "closed"
	StatusDormant   Status = "dormant"
)

type BudgetTier string

const (
	BudgetPremium     BudgetTier = "premium"
	BudgetHigh        BudgetTier = "high"
	BudgetMedium      BudgetTier = "medium"
	BudgetLow         BudgetTier = "low"
	BudgetUnspecified BudgetTier = "unspecified"
)

// Preferences holds what the customer has told us about how they buy.
type Preferences struct {
	BudgetTier       BudgetTier      `json:"budget_tier"`
	ProductInterests []string        `json:"product_interests,omitempty"`
	Urgency          string          `json:"urgency,omitempty"`
	PreferredChannel insight.Channel `json:"preferred_channel,omitempty"`
}

// Relevance is the tri-state an agent sets on a tagged keyword; unconfirmed
// keywords still feed classification, rejected ones do not.
type Relevance string

const (
	RelevanceUnknown Relevance = "unknown"
	RelevanceTrue    Relevance = "true"
	RelevanceFalse   Relevance = "false"
)

// TaggedKeyword is one append-only keyword log entry. Dedup by normalized
// key happens at read time, not write time.
type TaggedKeyword struct {
	Keyword           string    `json:"keyword"`
	AddedBy           int64     `json:"added_by"`
	AddedAt           time.Time `json:"added_at"`
	ConfirmedRelevant Relevance `json:"confirmed_relevant"`
}

// FeedbackEntry records one agent correction. The history is append-only.
type FeedbackEntry struct {
	Field       string    `json:"field"`
	OldValue    string    `json:"old_value"`
	NewValue    string    `json:"new_value"`
	CorrectedBy int64     `json:"corrected_by"`
	CorrectedAt time.Time `json:"corrected_at"`
	Reason      string    `json:"reason,omitempty"`
}

type Customer struct {
	ID        int64  `json:"id" db:"id"`
	Reference string `json:"reference" db:"reference"`

	// Identity
	Name    string         `json:"name" db:"name"`
	Phone   string         `json:"phone" db:"phone"`
	Email   sql.NullString `json:"email,omitempty" db:"email"`
	Company sql.NullString `json:"company,omitempty" db:"company"`

	Preferences Preferences     `json:"preferences" db:"preferences"`
	Keywords    []TaggedKeyword `json:"keywords" db:"keywords"`

	// Inference state, recomputed by the pipeline
	CurrentIntent     insight.Intent         `json:"current_intent" db:"current_intent"`
	IntentConfidence  int                    `json:"intent_confidence" db:"intent_confidence"`
	IntentExplanation string                 `json:"intent_explanation" db:"intent_explanation"`
	PotentialLevel    insight.PotentialLevel `json:"potential_level" db:"potential_level"`
	PotentialScore    int                    `json:"potential_score" db:"potential_score"`
	ScoreBreakdown    []insight.ScoreFactor  `json:"score_breakdown" db:"score_breakdown"`

	// Interaction counters
	InteractionCount int            `json:"interaction_count" db:"interaction_count"`
	FirstInteraction sql.NullTime   `json:"first_interaction,omitempty" db:"first_interaction"`
	LastInteraction  sql.NullTime   `json:"last_interaction,omitempty" db:"last_interaction"`
	ChannelCounts    map[string]int `json:"channel_counts" db:"channel_counts"`

	FeedbackHistory []FeedbackEntry `json:"feedback_history" db:"feedback_history"`
	Tags            pq.StringArray  `json:"tags,omitempty" db:"tags"`
	Status          Status          `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ActiveKeywords returns the keyword log deduplicated by lowercase key,
// first occurrence wins, entries marked not-relevant excluded.
func (c *Customer) ActiveKeywords() []string {
	seen := make(map[string]bool, len(c.Keywords))
	out := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		key := strings.ToLower(strings.TrimSpace(k.Keyword))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if k.ConfirmedRelevant == RelevanceFalse {
			continue
		}
		out = append(out, key)
	}
	return out
}

// HasKeyword reports whether the log already carries the keyword,
// case-insensitively.
func (c *Customer) HasKeyword(keyword string) bool {
	key := strings.ToLower(strings.TrimSpace(keyword))
	for _, k := range c.Keywords {
		if strings.ToLower(strings.TrimSpace(k.Keyword)) == key {
			return true
		}
	}
	return false
}

// DistinctChannels counts channels with at least one recorded interaction.
func (c *Customer) DistinctChannels() int {
	n := 0
	for _, count := range c.ChannelCounts {
		if count > 0 {
			n++
		}
	}
	return n
}
