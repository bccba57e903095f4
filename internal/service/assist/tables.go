// internal/service/assist/tables.go
package assist

import (
	"leadscope-service/internal/domain/insight"
)

var emailFollowUpLines = map[insight.Intent]string{
	insight.IntentPurchase:  "You mentioned you were looking to move forward, so I have attached the details we discussed to make that as easy as possible.",
	insight.IntentInquiry:   "You had some questions about our offering; I am happy to walk you through anything that is still unclear.",
	insight.IntentSupport:   "I wanted to make sure the issue you raised has been fully resolved on your side.",
	insight.IntentComplaint: "I want to personally make sure we put right what went wrong for you.",
	insight.IntentFollowUp:  "As promised, here is the update from our last conversation.",
}

var emailCallsToAction = map[insight.PotentialLevel]string{
	insight.PotentialHigh:   "Would you have 15 minutes this week for a quick call to finalize the details?",
	insight.PotentialMedium: "Would it be helpful if I sent over a short comparison of the options we discussed?",
	insight.PotentialLow:    "No pressure at all - just reply if and when this becomes relevant for you.",
	insight.PotentialSpam:   "If this reached you in error, let me know and I will close the file.",
}

var chatQuickReplies = map[insight.Intent][]string{
	insight.IntentPurchase: {
		"Great - I can get a quote over to you right now. Which package were you leaning towards?",
		"Happy to help you get set up today. Do you have any final questions before we proceed?",
		"I can apply the current promotion to your order if you would like to go ahead.",
	},
	insight.IntentInquiry: {
		"Good question - let me pull up the details for you.",
		"I can send you a short overview, or walk you through it here. Which do you prefer?",
		"Is there a specific use case you have in mind? That helps me point you at the right option.",
	},
	insight.IntentSupport: {
		"Sorry you're running into that - let me take a look right away.",
		"Could you share what you see on your screen? A screenshot works too.",
		"I have a couple of quick fixes we can try together right now.",
	},
	insight.IntentComplaint: {
		"I'm really sorry about this experience. Let me see what went wrong.",
		"You're absolutely right to raise this. I am escalating it now.",
		"Thank you for your patience - here is what I can do for you immediately.",
	},
	insight.IntentFollowUp: {
		"Thanks for checking back in! Here is where things stand.",
		"I was just about to reach out - we have an update for you.",
		"Let me pull up the notes from last time so we can pick up where we left off.",
	},
	insight.IntentUnknown: {
		"Thanks for reaching out! What can I help you with today?",
		"Happy to help - could you tell me a bit more about what you're looking for?",
	},
}

type callPlan struct {
	objective string
	points    []string
}

// callPlans is keyed by intent x potential level. Missing combinations fall
// back to the intent default, then to a generic discovery plan.
var callPlans = map[insight.Intent]map[insight.PotentialLevel]callPlan{
	insight.IntentPurchase: {
		insight.PotentialHigh: {
			objective: "Close the sale or agree concrete next steps towards signing",
			points: []string{
				"Confirm the package and pricing discussed previously",
				"Address any remaining objections directly",
				"Propose a specific start date and ask for the commitment",
			},
		},
		insight.PotentialMedium: {
			objective: "Strengthen buying intent and remove the main blocker",
			points: []string{
				"Revisit what attracted them to the offering",
				"Identify the one thing holding the decision back",
				"Offer a demo or trial to reduce the perceived risk",
			},
		},
	},
	insight.IntentComplaint: {
		insight.PotentialHigh: {
			objective: "Repair the relationship before discussing anything else",
			points: []string{
				"Acknowledge the complaint and apologize without qualification",
				"Explain concretely what has been fixed or will be",
				"Only then explore whether they are open to continuing",
			},
		},
	},
	insight.IntentSupport: {
		insight.PotentialHigh: {
			objective: "Resolve the open issue and protect the expansion opportunity",
			points: []string{
				"Verify the reported issue is fully resolved",
				"Check for any other friction they have not reported",
				"Mention relevant improvements since their last interaction",
			},
		},
	},
	insight.IntentFollowUp: {
		insight.PotentialHigh: {
			objective: "Deliver the promised follow-up and advance the deal",
			points: []string{
				"Open with the specific item promised last time",
				"Confirm their situation has not changed",
				"Agree the next step with a date attached",
			},
		},
	},
}

var intentDefaultPlans = map[insight.Intent]callPlan{
	insight.IntentPurchase: {
		objective: "Understand their buying timeline and move the deal forward",
		points: []string{
			"Confirm budget and decision process",
			"Summarize the proposal in their words",
			"Agree a concrete next step",
		},
	},
	insight.IntentInquiry: {
		objective: "Answer their questions and qualify the opportunity",
		points: []string{
			"Let them lead with their questions first",
			"Map their needs onto specific offerings",
			"Gauge timeline and budget without pushing",
		},
	},
	insight.IntentSupport: {
		objective: "Resolve the outstanding issue end to end",
		points: []string{
			"Reconfirm the exact symptom before troubleshooting",
			"Walk through the fix together rather than describing it",
			"Confirm resolution explicitly before closing",
		},
	},
	insight.IntentComplaint: {
		objective: "De-escalate and agree a remediation",
		points: []string{
			"Listen fully before responding",
			"State plainly what went wrong and what happens next",
			"Agree a remedy and a date to confirm it happened",
		},
	},
	insight.IntentFollowUp: {
		objective: "Honor the promised follow-up",
		points: []string{
			"Reference the prior conversation specifically",
			"Deliver the promised item or update",
			"Set the next checkpoint",
		},
	},
}

var genericPlan = callPlan{
	objective: "Learn where this customer stands and what they need",
	points: []string{
		"Open with a genuine discovery question",
		"Listen for intent signals worth tagging",
		"Close with a clear, low-pressure next step",
	},
}

func callPlanFor(intent insight.Intent, level insight.PotentialLevel) (string, []string) {
	if byLevel, ok := callPlans[intent]; ok {
		if plan, ok := byLevel[level]; ok {
			return plan.objective, append([]string(nil), plan.points...)
		}
	}
	if plan, ok := intentDefaultPlans[intent]; ok {
		return plan.objective, append([]string(nil), plan.points...)
	}
	return genericPlan.objective, append([]string(nil), genericPlan.points...)
}
