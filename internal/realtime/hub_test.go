package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(buffer int) *Client {
	return &Client{send: make(chan []byte, buffer)}
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	default:
		t.Fatal("expected a payload in the send buffer")
		return nil
	}
}

func TestHubBroadcastReachesSubscribersOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := newTestClient(4)
	b := newTestClient(4)
	outsider := newTestClient(4)

	hub.Subscribe("channel:1", a)
	hub.Subscribe("channel:1", b)
	hub.Subscribe("channel:2", outsider)

	hub.Broadcast("channel:1", []byte("hello"))

	assert.Equal(t, []byte("hello"), recv(t, a))
	assert.Equal(t, []byte("hello"), recv(t, b))
	assert.Empty(t, outsider.send)
}

func TestHubSubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient(4)

	hub.Subscribe("channel:1", c)
	hub.Subscribe("channel:1", c)
	require.Equal(t, 1, hub.RoomSize("channel:1"))

	hub.Broadcast("channel:1", []byte("once"))
	recv(t, c)
	assert.Empty(t, c.send)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient(4)

	hub.Subscribe("channel:1", c)
	hub.Unsubscribe("channel:1", c)
	assert.Equal(t, 0, hub.RoomSize("channel:1"))

	hub.Broadcast("channel:1", []byte("gone"))
	assert.Empty(t, c.send)

	// Unsubscribing a client that was never there is harmless.
	hub.Unsubscribe("channel:1", c)
	hub.Unsubscribe("no-such-room", c)
}

func TestHubDropClientLeavesEveryRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient(4)
	other := newTestClient(4)

	hub.Subscribe("channel:1", c)
	hub.Subscribe("channel:2", c)
	hub.Subscribe("channel:1", other)

	hub.DropClient(c)

	assert.Equal(t, 1, hub.RoomSize("channel:1"))
	assert.Equal(t, 0, hub.RoomSize("channel:2"))

	hub.Broadcast("channel:1", []byte("still here"))
	recv(t, other)
	assert.Empty(t, c.send)
}

func TestHubBroadcastSkipsFullClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := newTestClient(1)
	fast := newTestClient(4)

	hub.Subscribe("channel:1", slow)
	hub.Subscribe("channel:1", fast)

	hub.Broadcast("channel:1", []byte("first"))
	hub.Broadcast("channel:1", []byte("second"))

	// The slow client's buffer held one event; the second was dropped
	// for it without stalling the fast one.
	assert.Equal(t, []byte("first"), recv(t, slow))
	assert.Empty(t, slow.send)

	assert.Equal(t, []byte("first"), recv(t, fast))
	assert.Equal(t, []byte("second"), recv(t, fast))
}
