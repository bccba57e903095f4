// internal/websocket/hub_test.go
package websocket_test

import (
	"context"
	"testing"
	"time"

	"leadscope-service/internal/service/pipeline"
	ws "leadscope-service/internal/websocket"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *ws.Hub {
	t.Helper()
	hub := ws.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func register(t *testing.T, hub *ws.Hub, c *ws.Client, want int) {
	t.Helper()
	select {
	case hub.Register <- c:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not accept registration")
	}
	require.Eventually(t, func() bool {
		return hub.TotalClients() == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubSurvivesSaturatedClient(t *testing.T) {
	hub := startHub(t)

	stalled := ws.NewClient(hub, nil, 7)
	register(t, hub, stalled, 1)

	// Nothing drains the send buffer. The welcome message holds one slot,
	// so 255 more fill it exactly without tripping the drop path yet.
	for i := 0; i < 255; i++ {
		stalled.SendMessage(ws.NewMessage(ws.EventTypePong, nil))
	}

	// Delivery to the saturated client drops it from inside the run loop,
	// which must stay responsive afterwards.
	hub.PublishInsight(pipeline.InsightEvent{CustomerID: 1})

	healthy := ws.NewClient(hub, nil, 8)
	register(t, hub, healthy, 2)

	// A dropped client tolerates further sends and publishes without
	// panicking.
	for i := 0; i < 300; i++ {
		stalled.SendMessage(ws.NewMessage(ws.EventTypePong, nil))
	}
	hub.PublishInsight(pipeline.InsightEvent{CustomerID: 2})

	require.Eventually(t, func() bool {
		return hub.TotalClients() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientCloseIsIdempotent(t *testing.T) {
	hub := startHub(t)
	c := ws.NewClient(hub, nil, 7)

	c.Close()
	c.Close()
	c.SendMessage(ws.NewMessage(ws.EventTypePong, nil))
}
