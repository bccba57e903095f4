// internal/websocket/message_test.go
package websocket_test

import (
	"testing"

	ws "leadscope-service/internal/websocket"

	"github.com/stretchr/testify/require"
)

func TestParseMessageRoundTrip(t *testing.T) {
	msg := ws.NewMessage(ws.EventTypeWatch, map[string]interface{}{
		"customer_ids": []int64{1, 2},
	})
	raw, err := msg.ToJSON()
	require.NoError(t, err)

	parsed, err := ws.ParseMessage(raw)
	require.NoError(t, err)
	require.Equal(t, ws.EventTypeWatch, parsed.Type)
	require.NotNil(t, parsed.Data)
}

func TestParseMessageRejectsGarbage(t *testing.T) {
	_, err := ws.ParseMessage([]byte("{not json"))
	require.Error(t, err)
}

func TestClientWatchFiltering(t *testing.T) {
	c := ws.NewClient(nil, nil, 7)

	// No watches means the full feed.
	require.True(t, c.WantsCustomer(1))
	require.True(t, c.WantsCustomer(2))

	c.Watch(1)
	require.True(t, c.WantsCustomer(1))
	require.False(t, c.WantsCustomer(2))

	c.Watch(2)
	require.True(t, c.WantsCustomer(2))

	c.Unwatch(1)
	require.False(t, c.WantsCustomer(1))
	require.True(t, c.WantsCustomer(2))

	// Dropping the last watch reopens the full feed.
	c.Unwatch(2)
	require.True(t, c.WantsCustomer(99))
}
