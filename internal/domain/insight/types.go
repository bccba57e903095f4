// internal/domain/insight/types.go
package insight

// Intent is the fixed taxonomy the classifier scores against.
type Intent string

const (
	IntentPurchase  Intent = "purchase"
	IntentInquiry   Intent = "inquiry"
	IntentSupport   Intent = "support"
	IntentComplaint Intent = "complaint"
	IntentFollowUp  Intent = "follow_up"
	IntentUnknown   Intent = "unknown"

	// Extraction-only categories. Free-text extraction can land here, but
	// the classifier never scores them.
	IntentAppreciation Intent = "appreciation"
	IntentGeneral      Intent = "general"
)

// ClassifiedIntents is the declared category order. Ties on score are broken
// by position in this slice, never by map iteration.
var ClassifiedIntents = []Intent{
	IntentPurchase,
	IntentInquiry,
	IntentSupport,
	IntentComplaint,
	IntentFollowUp,
}

// PotentialLevel is the four-tier bucket derived from the 0-100 score.
type PotentialLevel string

const (
	PotentialHigh   PotentialLevel = "high"
	PotentialMedium PotentialLevel = "medium"
	PotentialLow    PotentialLevel = "low"
	PotentialSpam   PotentialLevel = "spam"
)

// LevelForScore maps an integer score to its level. The partition is total
// and non-overlapping: >=70 high, >=40 medium, >=20 low, else spam.
func LevelForScore(score int) PotentialLevel {
	switch {
	case score >= 70:
		return PotentialHigh
	case score >= 40:
		return PotentialMedium
	case score >= 20:
		return PotentialLow
	default:
		return PotentialSpam
	}
}

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
	ChannelChat  Channel = "chat"
)

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyHigh   Urgency = "high"
	UrgencyNormal Urgency = "normal"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// KeyPoints is the extractor's output over one piece of free text.
type KeyPoints struct {
	Intent         Intent    `json:"intent"`
	Urgency        Urgency   `json:"urgency"`
	Sentiment      Sentiment `json:"sentiment"`
	KeyPhrases     []string  `json:"key_phrases"`
	ActionRequired bool      `json:"action_required"`
	Summary        string    `json:"summary"`
}

// CategoryScore is one row of the classifier's breakdown.
type CategoryScore struct {
	Intent  Intent  `json:"intent"`
	Score   float64 `json:"score"`
	Matches int     `json:"matches"`
	Boosted bool    `json:"boosted"`
}

// IntentResult is the classifier's full answer for one customer.
type IntentResult struct {
	Intent       Intent          `json:"intent"`
	Confidence   int             `json:"confidence"`
	Explanation  string          `json:"explanation"`
	Breakdown    []CategoryScore `json:"breakdown"`
	KeywordCount int             `json:"keyword_count"`
}

// ScoreFactor is one weighted component of the potential score.
type ScoreFactor struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
	Reason string  `json:"reason"`
}

// ScoreResult is the scorer's full answer for one customer.
type ScoreResult struct {
	Score       int            `json:"score"`
	Level       PotentialLevel `json:"level"`
	Breakdown   []ScoreFactor  `json:"breakdown"`
	Explanation string         `json:"explanation"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityRank orders priorities for sorting; lower sorts first.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Recommendation is one rule-derived next-best-action. Everything here is a
// suggestion for a human agent; nothing is executed by the system.
type Recommendation struct {
	Action           string   `json:"action"`
	Priority         Priority `json:"priority"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Reason           string   `json:"reason"`
	SuggestedChannel Channel  `json:"suggested_channel,omitempty"`
	SuggestedDate    string   `json:"suggested_date,omitempty"`
	ActionButton     string   `json:"action_button"`
}

// EmailAssist is the email-channel suggestion bundle.
type EmailAssist struct {
	OpeningSentence string   `json:"opening_sentence"`
	FollowUpLine    string   `json:"follow_up_line"`
	CallToAction    string   `json:"call_to_action"`
	Warnings        []string `json:"warnings"`
}

// ChatAssist is the chat-channel suggestion bundle.
type ChatAssist struct {
	QuickReplies []string `json:"quick_replies"`
	Greeting     string   `json:"greeting,omitempty"`
}

// PhoneAssist is the structured pre-call briefing bundle.
type PhoneAssist struct {
	CustomerSummary  string   `json:"customer_summary"`
	PointsToRemember []string `json:"points_to_remember"`
	DoNotRepeat      []string `json:"do_not_repeat"`
	CallObjective    string   `json:"call_objective"`
	TalkingPoints    []string `json:"talking_points"`
	Warnings         []string `json:"warnings"`
}

// AssistBundle tags exactly one channel payload. All content is editable
// suggestion text; there is no auto-send path anywhere in the system.
type AssistBundle struct {
	Channel Channel      `json:"channel"`
	Email   *EmailAssist `json:"email,omitempty"`
	Chat    *ChatAssist  `json:"chat,omitempty"`
	Phone   *PhoneAssist `json:"phone,omitempty"`
}
