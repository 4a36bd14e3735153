package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"relay/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	client, err := hub.Register(userID, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(userID))
	assert.Equal(t, 1, hub.ConnectionCount())

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(userID))
	assert.Equal(t, 0, hub.ConnectionCount())

	// Unregistering twice must not corrupt the count.
	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(userID, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(userID, nil)
	assert.Error(t, err)

	// Other users are unaffected.
	_, err = hub.Register(uuid.New(), nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastReachesAllUserConnections(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	clientA, err := hub.Register(userID, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(userID, nil)
	require.NoError(t, err)
	other, err := hub.Register(uuid.New(), nil)
	require.NoError(t, err)

	hub.Broadcast(userID, `{"message":"hello"}`)

	assert.Len(t, clientA.Send, 1)
	assert.Len(t, clientB.Send, 1)
	assert.Len(t, other.Send, 0)
}

func TestHub_StartWiringRoutesUserChannel(t *testing.T) {
	rdb := setupRedis(t)
	hub := NewHub()
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	userID := uuid.New()
	client, err := hub.Register(userID, nil)
	require.NoError(t, err)
	stranger, err := hub.Register(uuid.New(), nil)
	require.NoError(t, err)

	require.NoError(t, n.Publish(context.Background(), &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Message: "targeted",
	}))

	assert.Eventually(t, func() bool {
		return len(client.Send) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Len(t, stranger.Send, 0)
}

func TestHub_StartWiringRoutesBroadcastChannel(t *testing.T) {
	rdb := setupRedis(t)
	hub := NewHub()
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	var clients []*Client
	for i := 0; i < 3; i++ {
		client, err := hub.Register(uuid.New(), nil)
		require.NoError(t, err)
		clients = append(clients, client)
	}

	require.NoError(t, n.PublishBroadcast(context.Background(), `{"type":"SYSTEM"}`))

	assert.Eventually(t, func() bool {
		var delivered int32
		for _, c := range clients {
			if len(c.Send) == 1 {
				atomic.AddInt32(&delivered, 1)
			}
		}
		return delivered == 3
	}, time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClearsConnections(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 3; i++ {
		_, err := hub.Register(uuid.New(), nil)
		require.NoError(t, err)
	}

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.ConnectionCount())
}
