// internal/session/memory_store_test.go
package session_test

import (
	"context"
	"testing"
	"time"

	"leadscope-service/internal/domain/insight"
	xerrors "leadscope-service/internal/pkg/errors"
	"leadscope-service/internal/session"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	sess := &session.CallSession{
		ID:           "01SESSION",
		AgentID:      7,
		CustomerID:   42,
		Channel:      insight.ChannelPhone,
		StartedAt:    time.Now(),
		LastActivity: time.Now(),
	}
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, "01SESSION")
	require.NoError(t, err)
	require.Equal(t, int64(42), got.CustomerID)

	// Get returns a copy; mutating it must not touch the stored session.
	got.CustomerID = 99
	again, err := store.Get(ctx, "01SESSION")
	require.NoError(t, err)
	require.Equal(t, int64(42), again.CustomerID)

	require.NoError(t, store.Delete(ctx, "01SESSION"))
	_, err = store.Get(ctx, "01SESSION")
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := session.NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestMemoryStoreSweepEvictsStale(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	stale := &session.CallSession{ID: "stale", LastActivity: now.Add(-2 * time.Hour)}
	fresh := &session.CallSession{ID: "fresh", LastActivity: now}
	require.NoError(t, store.Put(ctx, stale))
	require.NoError(t, store.Put(ctx, fresh))

	evicted, err := store.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, evicted)

	_, err = store.Get(ctx, "stale")
	require.ErrorIs(t, err, xerrors.ErrNotFound)
	_, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
}
