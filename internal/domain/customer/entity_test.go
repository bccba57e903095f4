// internal/domain/customer/entity_test.go
package customer_test

import (
	"testing"

	"leadscope-service/internal/domain/customer"

	"github.com/stretchr/testify/require"
)

func TestActiveKeywords(t *testing.T) {
	c := &customer.Customer{Keywords: []customer.TaggedKeyword{
		{Keyword: "Pricing", ConfirmedRelevant: customer.RelevanceUnknown},
		{Keyword: "pricing ", ConfirmedRelevant: customer.RelevanceTrue},
		{Keyword: "competitor", ConfirmedRelevant: customer.RelevanceFalse},
		{Keyword: "demo", ConfirmedRelevant: customer.RelevanceTrue},
		{Keyword: "  ", ConfirmedRelevant: customer.RelevanceTrue},
	}}

	// First occurrence wins, so the later RelevanceTrue duplicate of
	// "pricing" does not resurrect anything; rejected keys drop out.
	require.Equal(t, []string{"pricing", "demo"}, c.ActiveKeywords())
}

func TestActiveKeywordsFirstEntryRejected(t *testing.T) {
	c := &customer.Customer{Keywords: []customer.TaggedKeyword{
		{Keyword: "spam", ConfirmedRelevant: customer.RelevanceFalse},
		{Keyword: "spam", ConfirmedRelevant: customer.RelevanceTrue},
	}}

	require.Empty(t, c.ActiveKeywords())
}

func TestHasKeyword(t *testing.T) {
	c := &customer.Customer{Keywords: []customer.TaggedKeyword{
		{Keyword: "Pricing"},
	}}

	require.True(t, c.HasKeyword("pricing"))
	require.True(t, c.HasKeyword(" PRICING "))
	require.False(t, c.HasKeyword("demo"))
}

func TestDistinctChannels(t *testing.T) {
	c := &customer.Customer{ChannelCounts: map[string]int{
		"email": 3,
		"phone": 1,
		"chat":  0,
	}}

	require.Equal(t, 2, c.DistinctChannels())

	empty := &customer.Customer{}
	require.Zero(t, empty.DistinctChannels())
}
