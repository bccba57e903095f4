// internal/service/keypoints/extractor.go
package keypoints

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"leadscope-service/internal/domain/insight"
)

const (
	maxKeyPhrases   = 3
	minPhraseLen    = 10
	maxPhraseLen    = 100
	maxSummaryLen   = 200
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	bulletRe     = regexp.MustCompile(`^[\s]*[-*•]+\s*`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)
)

// Extract derives intent, urgency, sentiment, key phrases, an
// action-required flag and a short summary from one piece of free text.
// It is a pure function: no side effects, total over its inputs, missing
// text degrades to neutral output.
func Extract(subject, body string) insight.KeyPoints {
	text := strings.ToLower(subject + " " + body)
	cleaned := cleanText(body)
	if cleaned == "" {
		cleaned = cleanText(subject)
	}

	return insight.KeyPoints{
		Intent:         detectIntent(text),
		Urgency:        detectUrgency(text),
		Sentiment:      detectSentiment(text),
		KeyPhrases:     extractKeyPhrases(cleaned),
		ActionRequired: detectActionRequired(text),
		Summary:        summarize(cleaned),
	}
}

// detectIntent walks the ordered rule table; the first category with any
// keyword hit wins and table order is the tie-break.
func detectIntent(text string) insight.Intent {
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.intent
			}
		}
	}
	return insight.IntentGeneral
}

func detectUrgency(text string) insight.Urgency {
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return insight.UrgencyUrgent
		}
	}
	for _, kw := range highUrgencyKeywords {
		if strings.Contains(text, kw) {
			return insight.UrgencyHigh
		}
	}
	return insight.UrgencyNormal
}

// detectSentiment compares positive and negative hit counts; ties resolve
// to neutral.
func detectSentiment(text string) insight.Sentiment {
	positive := 0
	for _, kw := range positiveKeywords {
		if strings.Contains(text, kw) {
			positive++
		}
	}
	negative := 0
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return insight.SentimentPositive
	case negative > positive:
		return insight.SentimentNegative
	default:
		return insight.SentimentNeutral
	}
}

// extractKeyPhrases returns the first three sentences longer than 10
// characters, each truncated to 100 characters.
func extractKeyPhrases(cleaned string) []string {
	sentences := sentenceRe.Split(cleaned, -1)
	phrases := make([]string, 0, maxKeyPhrases)
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) <= minPhraseLen {
			continue
		}
		if len(s) > maxPhraseLen {
			s = truncate(s, maxPhraseLen)
		}
		phrases = append(phrases, s)
		if len(phrases) == maxKeyPhrases {
			break
		}
	}
	return phrases
}

func detectActionRequired(text string) bool {
	for _, phrase := range requestPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func summarize(cleaned string) string {
	if len(cleaned) <= maxSummaryLen {
		return cleaned
	}
	return truncate(cleaned, maxSummaryLen) + "..."
}

// truncate cuts to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// cleanText strips HTML tags, leading bullet markers and collapses
// whitespace.
func cleanText(text string) string {
	text = htmlTagRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = bulletRe.ReplaceAllString(line, "")
	}
	text = strings.Join(lines, " ")

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
