package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// channelPrefix namespaces room traffic inside Redis so the pattern
// subscription doesn't pick up unrelated keyspace chatter.
const channelPrefix = "room:"

// Event is the wire shape of a realtime push: the event name, the room
// it belongs to, and the full message payload so clients can merge
// without a second round trip.
type Event struct {
	Event   string          `json:"event"`
	Room    string          `json:"room"`
	Message *models.Message `json:"message"`
}

// Bus is the fan-out pipe between the stores and connected clients.
// Publishes go through Redis pub/sub; every instance runs a Bus that
// forwards whatever arrives to its local Hub. That's what makes
// delivery work when the poster and the subscriber sit on different
// instances.
//
// Redis pub/sub keeps nothing: a message published while a client is
// offline is gone for that client, which is exactly the contract —
// history catch-up happens through ListMessages on reconnect.
type Bus struct {
	rdb    *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewBus(rdb *redis.Client, hub *Hub, logger *zap.Logger) *Bus {
	return &Bus{rdb: rdb, hub: hub, logger: logger}
}

// Publish implements forum.Publisher.
func (b *Bus) Publish(ctx context.Context, room, event string, msg *models.Message) error {
	payload, err := json.Marshal(Event{Event: event, Room: room, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, channelPrefix+room, payload).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

// Run subscribes to all room traffic and pumps it into the local hub.
// Blocks until ctx is cancelled; run it in its own goroutine. go-redis
// reconnects the pub/sub connection internally, so transient Redis
// hiccups cost dropped events (contractually fine), not a dead bus.
func (b *Bus) Run(ctx context.Context) error {
	pubsub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	b.logger.Info("realtime bus subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis pubsub channel closed")
			}
			room := strings.TrimPrefix(m.Channel, channelPrefix)
			b.hub.Broadcast(room, []byte(m.Payload))
		}
	}
}
