// internal/service/intent/tables.go
package intent

import "leadscope-service/internal/domain/insight"

// Tier weights for phrase matches.
const (
	strongWeight   = 1.0
	moderateWeight = 0.6
	weakWeight     = 0.3
)

// phraseTiers holds the category-specific phrases per tier. A keyword is
// scored at the strongest tier it matches.
type phraseTiers struct {
	strong   []string
	moderate []string
	weak     []string
}

// categoryPhrases is keyed by intent; iteration always goes through
// insight.ClassifiedIntents so scoring and tie-breaking are deterministic.
var categoryPhrases = map[insight.Intent]phraseTiers{
	insight.IntentPurchase: {
		strong: []string{
			"buy", "purchase", "buy now", "ready to buy", "order",
			"pricing", "quote", "sign up", "payment",
		},
		moderate: []string{
			"price", "cost", "discount", "demo", "trial", "upgrade",
			"package", "plan",
		},
		weak: []string{
			"interested", "features", "compare", "budget", "offer",
		},
	},
	insight.IntentInquiry: {
		strong: []string{
			"inquiry", "information", "tell me more", "how does",
			"more details",
		},
		moderate: []string{
			"question", "wondering", "learn more", "curious", "explain",
		},
		weak: []string{
			"availability", "options", "catalog", "brochure",
		},
	},
	insight.IntentSupport: {
		strong: []string{
			"help", "support", "issue", "problem", "not working",
			"error", "broken",
		},
		moderate: []string{
			"assistance", "trouble", "fix", "how to", "stopped",
		},
		weak: []string{
			"guide", "setup", "configure", "install",
		},
	},
	insight.IntentComplaint: {
		strong: []string{
			"complaint", "unacceptable", "terrible", "refund",
			"disappointed", "angry",
		},
		moderate: []string{
			"unhappy", "frustrated", "dissatisfied", "poor service",
		},
		weak: []string{
			"delay", "waiting", "slow", "late",
		},
	},
	insight.IntentFollowUp: {
		strong: []string{
			"follow up", "follow-up", "as discussed",
			"per our conversation", "checking in",
		},
		moderate: []string{
			"callback", "call back", "reminder", "schedule", "reschedule",
		},
		weak: []string{
			"again", "update", "status",
		},
	},
}
