// internal/service/intent/classifier_test.go
package intent_test

import (
	"testing"
	"time"

	"leadscope-service/internal/domain/customer"
	"leadscope-service/internal/domain/insight"
	"leadscope-service/internal/domain/interaction"
	"leadscope-service/internal/service/intent"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClassifier() *intent.Classifier {
	return intent.NewClassifier(zap.NewNop())
}

func custWithKeywords(keywords ...string) *customer.Customer {
	c := &customer.Customer{}
	for _, kw := range keywords {
		c.Keywords = append(c.Keywords, customer.TaggedKeyword{
			Keyword: kw,
			AddedAt: time.Now(),
		})
	}
	return c
}

func TestDetectNoEvidence(t *testing.T) {
	cl := newClassifier()

	result := cl.Detect(&customer.Customer{}, nil)

	require.Equal(t, insight.IntentUnknown, result.Intent)
	require.Equal(t, 0, result.Confidence)
	require.Equal(t, 0, result.KeywordCount)
	require.NotEmpty(t, result.Explanation)
}

func TestDetectStrongPurchaseSignals(t *testing.T) {
	cl := newClassifier()
	c := custWithKeywords("buy now", "purchase", "pricing")

	result := cl.Detect(c, nil)

	require.Equal(t, insight.IntentPurchase, result.Intent)
	// Three strong hits: score 3.0, margin 3.0, raw 3.0*20 + 3.0*15 = 105,
	// clamped to the ceiling.
	require.Equal(t, 85, result.Confidence)
	require.Equal(t, 3, result.KeywordCount)
}

func TestDetectConfidenceNeverExceedsCeiling(t *testing.T) {
	cl := newClassifier()
	c := custWithKeywords(
		"buy", "purchase", "order", "pricing", "quote",
		"payment", "sign up", "demo", "discount",
	)

	result := cl.Detect(c, nil)
	require.LessOrEqual(t, result.Confidence, 85)
}

func TestDetectRecencyDuplication(t *testing.T) {
	cl := newClassifier()

	// One support keyword on the newest interaction (3 copies) versus one
	// purchase keyword on the third interaction (1 copy). Support must win.
	recent := []*interaction.Interaction{
		{Keywords: []string{"broken"}, Intent: insight.IntentUnknown},
		{Keywords: nil, Intent: insight.IntentUnknown},
		{Keywords: []string{"buy"}, Intent: insight.IntentUnknown},
	}

	result := cl.Detect(&customer.Customer{}, recent)

	require.Equal(t, insight.IntentSupport, result.Intent)
	require.Equal(t, 4, result.KeywordCount) // 3 copies + 1 copy
}

func TestDetectConfirmedIntentBoost(t *testing.T) {
	cl := newClassifier()

	// Evidence is an exact tie between purchase ("pricing") and support
	// ("help"), both on the same interaction. The confirmed intent on the
	// latest interaction breaks it via the boost.
	recent := []*interaction.Interaction{
		{Keywords: []string{"pricing", "help"}, Intent: insight.IntentSupport},
	}

	result := cl.Detect(&customer.Customer{}, recent)

	require.Equal(t, insight.IntentSupport, result.Intent)
	for _, cs := range result.Breakdown {
		if cs.Intent == insight.IntentSupport {
			require.True(t, cs.Boosted)
			require.InDelta(t, 4.5, cs.Score, 0.001) // 3 hits * 1.0 * 1.5
		}
	}
}

func TestDetectTieKeepsFirstDeclaredCategory(t *testing.T) {
	cl := newClassifier()

	// "update" is weak follow-up evidence, "interested" weak purchase;
	// the declared order puts purchase first, so purchase wins the tie.
	c := custWithKeywords("interested", "update")

	result := cl.Detect(c, nil)
	require.Equal(t, insight.IntentPurchase, result.Intent)
}

func TestDetectRejectedKeywordsExcluded(t *testing.T) {
	cl := newClassifier()
	c := &customer.Customer{
		Keywords: []customer.TaggedKeyword{
			{Keyword: "buy now", ConfirmedRelevant: customer.RelevanceFalse},
		},
	}

	result := cl.Detect(c, nil)
	require.Equal(t, insight.IntentUnknown, result.Intent)
}

func TestDetectBidirectionalMatching(t *testing.T) {
	cl := newClassifier()

	// Tagged phrase contains the table entry.
	result := cl.Detect(custWithKeywords("ready to purchase soon"), nil)
	require.Equal(t, insight.IntentPurchase, result.Intent)
}

func TestShouldUpdateIntent(t *testing.T) {
	confident := insight.IntentResult{Intent: insight.IntentSupport, Confidence: 75}
	weak := insight.IntentResult{Intent: insight.IntentSupport, Confidence: 40}
	same := insight.IntentResult{Intent: insight.IntentPurchase, Confidence: 80}

	// Nothing stored yet: always update.
	require.True(t, intent.ShouldUpdateIntent("", weak))
	require.True(t, intent.ShouldUpdateIntent(insight.IntentUnknown, weak))

	// Stored intent only moves for a confident, different answer.
	require.True(t, intent.ShouldUpdateIntent(insight.IntentPurchase, confident))
	require.False(t, intent.ShouldUpdateIntent(insight.IntentPurchase, weak))
	require.False(t, intent.ShouldUpdateIntent(insight.IntentPurchase, same))
}
