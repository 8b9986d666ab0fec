package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zaptest.NewLogger(t))
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func register(t *testing.T, hub *Hub, userID uuid.UUID) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID, zaptest.NewLogger(t))
	hub.Register(client)
	return client
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case event := <-c.send:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSendToUser_FansOutToAllConnections(t *testing.T) {
	hub := newRunningHub(t)
	userID := uuid.New()

	c1 := register(t, hub, userID)
	c2 := register(t, hub, userID)
	other := register(t, hub, uuid.New())

	// Registration goes through a channel; give the hub loop a beat.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[userID]) == 2
	}, time.Second, time.Millisecond)

	hub.SendToUser(userID, []byte("hello"))

	assert.Equal(t, []byte("hello"), receive(t, c1))
	assert.Equal(t, []byte("hello"), receive(t, c2))
	assert.Empty(t, other.send)
}

func TestSendToUser_NoConnectionsIsNoop(t *testing.T) {
	hub := newRunningHub(t)
	hub.SendToUser(uuid.New(), []byte("into the void"))
}

func TestUnregister_RemovesConnection(t *testing.T) {
	hub := newRunningHub(t)
	userID := uuid.New()

	client := register(t, hub, userID)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[userID]) == 1
	}, time.Second, time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[userID]) == 0
	}, time.Second, time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	go hub.Run()

	hub.Stop()
	hub.Stop()
}
