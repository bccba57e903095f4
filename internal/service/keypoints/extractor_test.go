// internal/service/keypoints/extractor_test.go
package keypoints_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/service/keypoints"

	"github.com/stretchr/testify/require"
)

func TestExtractPurchaseEmail(t *testing.T) {
	kp := keypoints.Extract(
		"Ready to order",
		"We would like to purchase 20 licenses. Please send me an invoice today.",
	)

	require.Equal(t, insight.IntentPurchase, kp.Intent)
	require.Equal(t, insight.UrgencyHigh, kp.Urgency) // "today"
	require.True(t, kp.ActionRequired)                // "please", "send me"
	require.NotEmpty(t, kp.KeyPhrases)
}

func TestExtractComplaintWinsOverSupport(t *testing.T) {
	// Both complaint and support keywords present; complaint is evaluated
	// first and wins.
	kp := keypoints.Extract("", "This is unacceptable, the product is broken and I want a refund")

	require.Equal(t, insight.IntentComplaint, kp.Intent)
	require.Equal(t, insight.SentimentNegative, kp.Sentiment)
}

func TestExtractUrgencyTiers(t *testing.T) {
	urgent := keypoints.Extract("", "We need this fixed immediately")
	require.Equal(t, insight.UrgencyUrgent, urgent.Urgency)

	high := keypoints.Extract("", "Can we sort this out this week")
	require.Equal(t, insight.UrgencyHigh, high.Urgency)

	normal := keypoints.Extract("", "No rush at all on my side")
	require.Equal(t, insight.UrgencyNormal, normal.Urgency)
}

func TestExtractSentimentTieIsNeutral(t *testing.T) {
	// One positive hit ("great") and one negative hit ("bad").
	kp := keypoints.Extract("", "The demo was great but the pricing page is bad")
	require.Equal(t, insight.SentimentNeutral, kp.Sentiment)
}

func TestExtractEmptyInputDegradesToNeutral(t *testing.T) {
	kp := keypoints.Extract("", "")

	require.Equal(t, insight.IntentGeneral, kp.Intent)
	require.Equal(t, insight.UrgencyNormal, kp.Urgency)
	require.Equal(t, insight.SentimentNeutral, kp.Sentiment)
	require.Empty(t, kp.KeyPhrases)
	require.False(t, kp.ActionRequired)
	require.Empty(t, kp.Summary)
}

func TestExtractStripsHTMLAndBullets(t *testing.T) {
	body := "<p>Hello team</p>\n- first point about the renewal process\n* second point about onboarding"
	kp := keypoints.Extract("", body)

	require.NotContains(t, kp.Summary, "<p>")
	require.NotContains(t, kp.Summary, "- first")
	require.Contains(t, kp.Summary, "first point about the renewal process")
}

func TestExtractKeyPhraseLimits(t *testing.T) {
	body := "Short. This sentence is long enough to qualify as a phrase. " +
		"Here is another sufficiently long sentence for the list. " +
		"And a third one that also clears the minimum length. " +
		"A fourth long sentence that should be cut off by the cap."
	kp := keypoints.Extract("", body)

	require.Len(t, kp.KeyPhrases, 3)
	for _, p := range kp.KeyPhrases {
		require.Greater(t, len(p), 10)
		require.LessOrEqual(t, len(p), 100)
	}
	require.NotContains(t, kp.KeyPhrases, "Short")
}

func TestExtractSummaryTruncation(t *testing.T) {
	body := strings.Repeat("a", 250)
	kp := keypoints.Extract("", body)

	require.Len(t, kp.Summary, 203)
	require.True(t, strings.HasSuffix(kp.Summary, "..."))
}

func TestExtractFallsBackToSubject(t *testing.T) {
	kp := keypoints.Extract("Question about enterprise pricing plans", "")
	require.Equal(t, "Question about enterprise pricing plans", kp.Summary)
}

func TestExtractTruncatesOnRuneBoundary(t *testing.T) {
	// The multibyte rune straddles the summary cut point; truncation must
	// back off rather than emit a split rune.
	body := strings.Repeat("a", 199) + "é and some trailing text to force truncation"
	kp := keypoints.Extract("", body)

	require.True(t, utf8.ValidString(kp.Summary))
	require.True(t, strings.HasSuffix(kp.Summary, "a..."))

	phrase := strings.Repeat("b", 99) + "é plus enough tail to exceed the phrase cap"
	kp = keypoints.Extract("", phrase)

	require.Len(t, kp.KeyPhrases, 1)
	require.True(t, utf8.ValidString(kp.KeyPhrases[0]))
	require.Equal(t, strings.Repeat("b", 99), kp.KeyPhrases[0])
}
