package forum

import (
	"context"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/google/uuid"
)

// Realtime event names. There is deliberately no "messageDeleted":
// tombstones go out as messageUpdated so clients reconcile the row in
// place — the message stays at its position in the scrollback with
// placeholder content instead of vanishing.
const (
	EventMessageCreated = "messageCreated"
	EventMessageUpdated = "messageUpdated"
)

// ChannelRoom and ConversationRoom build the room keys clients
// subscribe to. One room per channel, one per conversation.
func ChannelRoom(channelID uuid.UUID) string {
	return string(models.ParentChannel) + ":" + channelID.String()
}

func ConversationRoom(conversationID uuid.UUID) string {
	return string(models.ParentConversation) + ":" + conversationID.String()
}

// Publisher is the realtime transport boundary: fire-and-forget fan-out
// of the full message payload to whoever is subscribed to the room
// right now. Delivery is at-least-once and ordering is best-effort —
// ListMessages remains the source of truth, events only announce that
// something changed and carry the payload to spare a round trip.
//
// Implemented by realtime.Bus; services never learn how the event
// reaches a browser.
type Publisher interface {
	Publish(ctx context.Context, room, event string, msg *models.Message) error
}
