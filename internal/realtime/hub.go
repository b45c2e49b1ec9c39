package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Hub tracks which connected clients are subscribed to which rooms and
// fans payloads out to them. It only knows about clients on THIS
// process — cross-instance delivery is the Bus's job, which feeds every
// instance's hub from Redis.
//
// An RWMutex over a rooms map, not a channel loop: Broadcast is the hot
// path and is read-mostly, subscriptions change rarely by comparison.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

// Subscribe adds the client to a room. Subscribing twice is a no-op.
func (h *Hub) Subscribe(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// Unsubscribe removes the client from a room, dropping the room's set
// once empty so idle rooms don't accumulate.
func (h *Hub) Unsubscribe(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set := h.rooms[room]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
}

// DropClient removes the client from every room. Called once from the
// read pump's deferred cleanup when the connection dies.
func (h *Hub) DropClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, set := range h.rooms {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast hands the payload to every subscriber of the room.
//
// Sends are non-blocking: a client whose send buffer is full (slow
// reader, dead network) loses this event instead of stalling the whole
// room. That's within contract — delivery to connected subscribers is
// best-effort, and clients reconcile through message history anyway.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("dropping event for slow realtime client",
				zap.String("room", room),
			)
		}
	}
}

// RoomSize reports the current number of local subscribers of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
