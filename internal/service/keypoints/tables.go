// internal/service/keypoints/tables.go
package keypoints

import "leadscope-service/internal/domain/insight"

// intentRule couples an extraction category with its trigger keywords.
// Rules are evaluated in declared order and the first hit wins, so the
// order of this slice is the tie-break.
type intentRule struct {
	intent   insight.Intent
	keywords []string
}

var intentRules = []intentRule{
	{insight.IntentComplaint, []string{
		"complaint", "complain", "unacceptable", "terrible", "awful",
		"refund", "disappointed", "angry", "worst", "never again",
	}},
	{insight.IntentInquiry, []string{
		"inquiry", "interested in", "tell me more", "more information",
		"how much", "what is the price", "pricing", "quote", "availability",
	}},
	{insight.IntentSupport, []string{
		"help", "support", "not working", "issue", "problem", "error",
		"broken", "can't access", "cannot access", "stopped working",
	}},
	{insight.IntentPurchase, []string{
		"buy", "purchase", "order", "ready to proceed", "sign up",
		"payment", "invoice", "checkout", "subscribe",
	}},
	{insight.IntentFollowUp, []string{
		"follow up", "follow-up", "following up", "as discussed",
		"per our conversation", "checking in", "any update",
	}},
	{insight.IntentAppreciation, []string{
		"thank you", "thanks", "appreciate", "grateful", "great service",
		"well done", "excellent work",
	}},
}

var urgentKeywords = []string{
	"urgent", "asap", "immediately", "emergency", "right away",
	"critical", "right now",
}

var highUrgencyKeywords = []string{
	"soon", "quickly", "today", "this week", "time sensitive", "deadline",
	"by tomorrow",
}

var positiveKeywords = []string{
	"thank", "thanks", "great", "excellent", "happy", "appreciate",
	"love", "perfect", "wonderful", "pleased", "awesome",
}

var negativeKeywords = []string{
	"angry", "terrible", "awful", "disappointed", "frustrated", "hate",
	"worst", "unacceptable", "poor", "bad", "upset", "annoyed",
}

var requestPhrases = []string{
	"please", "can you", "could you", "would you", "need you to",
	"let me know", "get back to me", "call me", "send me", "waiting for",
}
