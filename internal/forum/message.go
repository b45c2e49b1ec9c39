package forum

import (
	"context"
	"fmt"
	"strings"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/GodwinAdu/campus-forum/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize applies when the caller doesn't ask for a size;
	// MaxPageSize caps what they can ask for.
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// MessageService implements the message store contract: posting,
// editing, tombstoning, and cursor pagination over both channel and
// direct messages, plus the room access check the realtime layer uses.
type MessageService struct {
	messages      repository.MessageRepository
	channels      repository.ChannelRepository
	conversations repository.ConversationRepository
	members       repository.MemberRepository
	publisher     Publisher
	logger        *zap.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	channels repository.ChannelRepository,
	conversations repository.ConversationRepository,
	members repository.MemberRepository,
	publisher Publisher,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messages:      messages,
		channels:      channels,
		conversations: conversations,
		members:       members,
		publisher:     publisher,
		logger:        logger,
	}
}

// MessagePage is one page of history, newest first. NextCursor is the
// id of the oldest item returned, or nil when the page came back short
// — the end of history.
type MessagePage struct {
	Items      []models.Message `json:"items"`
	NextCursor *int64           `json:"next_cursor"`
}

// Post appends a message to a channel or conversation. At least one of
// content/fileURL is required (both together is a captioned
// attachment). The author must be a live member of the channel's server
// or a participant of the conversation. On success the full message
// fans out to the parent's room as messageCreated.
func (s *MessageService) Post(ctx context.Context, userID uuid.UUID, parent models.MessageParent, parentID uuid.UUID, content, fileURL string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" && fileURL == "" {
		return nil, fmt.Errorf("message needs content or a file: %w", ErrInvalidInput)
	}

	member, err := s.resolveMember(ctx, userID, parent, parentID)
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.Create(ctx, parent, parentID, member.ID, content, fileURL)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventMessageCreated, msg)
	return msg, nil
}

// Edit replaces a message's content. Author only — not even the owner
// may rewrite someone else's words. A tombstoned message is NotFound:
// the tombstone is terminal.
func (s *MessageService) Edit(ctx context.Context, userID uuid.UUID, parent models.MessageParent, parentID uuid.UUID, messageID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is required: %w", ErrInvalidInput)
	}

	msg, member, err := s.lookup(ctx, userID, parent, parentID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Deleted {
		return nil, fmt.Errorf("message is deleted: %w", ErrNotFound)
	}
	if msg.AuthorMemberID == nil || *msg.AuthorMemberID != member.ID {
		return nil, fmt.Errorf("only the author may edit: %w", ErrForbidden)
	}

	updated, err := s.messages.UpdateContent(ctx, parent, messageID, content)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Tombstoned between our read and the guarded update.
		return nil, fmt.Errorf("message is deleted: %w", ErrNotFound)
	}

	s.publish(ctx, EventMessageUpdated, updated)
	return updated, nil
}

// Delete tombstones a message: content becomes the placeholder, the
// attachment is cleared, authorship and position stay. The author may
// delete their own; ADMIN and OWNER may moderate anyone's. Deleting an
// already-tombstoned message is an idempotent no-op, and the event goes
// out as messageUpdated so clients reconcile the row in place.
func (s *MessageService) Delete(ctx context.Context, userID uuid.UUID, parent models.MessageParent, parentID uuid.UUID, messageID int64) (*models.Message, error) {
	msg, member, err := s.lookup(ctx, userID, parent, parentID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Deleted {
		return msg, nil
	}

	isAuthor := msg.AuthorMemberID != nil && *msg.AuthorMemberID == member.ID
	if !isAuthor && !member.Role.AtLeast(models.RoleAdmin) {
		return nil, fmt.Errorf("only the author or a moderator may delete: %w", ErrForbidden)
	}

	deleted, err := s.messages.Tombstone(ctx, parent, messageID, DeletedPlaceholder)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		// A concurrent delete beat us to it; fetch the terminal state.
		deleted, err = s.messages.GetByID(ctx, parent, parentID, messageID)
		if err != nil {
			return nil, err
		}
		if deleted == nil {
			return nil, fmt.Errorf("message: %w", ErrNotFound)
		}
		return deleted, nil
	}

	s.publish(ctx, EventMessageUpdated, deleted)
	return deleted, nil
}

// List returns a page of history, strictly newest first. A nil cursor
// starts from the most recent message; otherwise only messages older
// than the cursor (exclusive) return. Within a room this order is
// authoritative — realtime events are merely hints to merge on top.
func (s *MessageService) List(ctx context.Context, userID uuid.UUID, parent models.MessageParent, parentID uuid.UUID, cursor *int64, pageSize int) (*MessagePage, error) {
	if _, err := s.resolveMember(ctx, userID, parent, parentID); err != nil {
		return nil, err
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var before int64
	if cursor != nil {
		if *cursor <= 0 {
			return nil, fmt.Errorf("cursor must be a positive message id: %w", ErrInvalidInput)
		}
		before = *cursor
	}

	items, err := s.messages.ListByParent(ctx, parent, parentID, before, pageSize)
	if err != nil {
		return nil, err
	}

	page := &MessagePage{Items: items}
	// A full page may have more history behind it; a short page is the
	// end. (A full page that happens to end exactly at the oldest
	// message costs one extra empty fetch — acceptable.)
	if len(items) == pageSize {
		last := items[len(items)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// AuthorizeRoom checks that the user may subscribe to a realtime room.
// Same gate as reading history: membership for channel rooms,
// participation for conversation rooms.
func (s *MessageService) AuthorizeRoom(ctx context.Context, userID uuid.UUID, room string) error {
	kind, rawID, ok := strings.Cut(room, ":")
	if !ok {
		return fmt.Errorf("malformed room key %q: %w", room, ErrInvalidInput)
	}
	parentID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("malformed room key %q: %w", room, ErrInvalidInput)
	}

	switch models.MessageParent(kind) {
	case models.ParentChannel, models.ParentConversation:
		_, err := s.resolveMember(ctx, userID, models.MessageParent(kind), parentID)
		return err
	default:
		return fmt.Errorf("unknown room kind %q: %w", kind, ErrInvalidInput)
	}
}

// lookup fetches the message and the requester's member row for its
// parent in one step, for edit/delete.
func (s *MessageService) lookup(ctx context.Context, userID uuid.UUID, parent models.MessageParent, parentID uuid.UUID, messageID int64) (*models.Message, *models.Member, error) {
	member, err := s.resolveMember(ctx, userID, parent, parentID)
	if err != nil {
		return nil, nil, err
	}

	msg, err := s.messages.GetByID(ctx, parent, parentID, messageID)
	if err != nil {
		return nil, nil, err
	}
	if msg == nil {
		return nil, nil, fmt.Errorf("message: %w", ErrNotFound)
	}
	return msg, member, nil
}

// resolveMember is the access gate for a parent: for a channel, the
// caller's member row on the owning server; for a conversation, the
// caller's side of the pair. A missing parent is NotFound; a caller
// with no standing is Forbidden and learns nothing about the contents.
func (s *MessageService) resolveMember(ctx context.Context, userID uuid.UUID, parent models.MessageParent, parentID uuid.UUID) (*models.Member, error) {
	switch parent {
	case models.ParentChannel:
		ch, err := s.channels.GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return nil, fmt.Errorf("channel: %w", ErrNotFound)
		}
		member, err := s.members.GetByUserAndServer(ctx, userID, ch.ServerID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, fmt.Errorf("not a member of the channel's server: %w", ErrForbidden)
		}
		return member, nil

	case models.ParentConversation:
		conv, err := s.conversations.GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, fmt.Errorf("conversation: %w", ErrNotFound)
		}
		// The caller participates if one of the two (still live) member
		// slots resolves to a member row bearing their user id. A slot
		// nulled by member removal simply never matches.
		for _, slot := range []*uuid.UUID{conv.MemberOneID, conv.MemberTwoID} {
			if slot == nil {
				continue
			}
			member, err := s.members.GetByID(ctx, *slot)
			if err != nil {
				return nil, err
			}
			if member != nil && member.UserID == userID {
				return member, nil
			}
		}
		return nil, fmt.Errorf("not a participant of the conversation: %w", ErrForbidden)

	default:
		return nil, fmt.Errorf("unknown message parent %q: %w", parent, ErrInvalidInput)
	}
}

// publish fans the event out to the parent's room. Fire-and-forget:
// delivery to currently-connected subscribers only, so a publish
// failure degrades to "clients catch up via List" and must not fail the
// write that already committed.
func (s *MessageService) publish(ctx context.Context, event string, msg *models.Message) {
	var room string
	if msg.Parent == models.ParentConversation {
		room = ConversationRoom(msg.ParentID)
	} else {
		room = ChannelRoom(msg.ParentID)
	}

	if err := s.publisher.Publish(ctx, room, event, msg); err != nil {
		s.logger.Warn("realtime publish failed",
			zap.String("room", room),
			zap.String("event", event),
			zap.Int64("message_id", msg.ID),
			zap.Error(err),
		)
	}
}
