package forum

import (
	"context"
	"fmt"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/GodwinAdu/campus-forum/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversationService resolves DM conversations between two members of
// the same server.
type ConversationService struct {
	conversations repository.ConversationRepository
	members       repository.MemberRepository
	logger        *zap.Logger
}

func NewConversationService(
	conversations repository.ConversationRepository,
	members repository.MemberRepository,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		members:       members,
		logger:        logger,
	}
}

// GetOrCreate returns the unique conversation between the caller and
// another member, creating it lazily on first contact.
//
// DMs are member-to-member, not user-to-user: the caller must hold a
// live member row in the target's server. That is also why a removed
// member silently orphans their conversations — the member row is gone,
// so this check fails closed with Forbidden.
//
// Concurrency: two simultaneous first-contact calls for the same pair
// race on the storage-level unique index. The loser's insert comes back
// empty and we retry as a lookup, so both callers land on the same
// conversation id and the caller never sees the conflict.
func (s *ConversationService) GetOrCreate(ctx context.Context, userID, otherMemberID uuid.UUID) (*models.Conversation, error) {
	other, err := s.members.GetByID(ctx, otherMemberID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, fmt.Errorf("member: %w", ErrNotFound)
	}

	requester, err := s.members.GetByUserAndServer(ctx, userID, other.ServerID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, fmt.Errorf("not a member of the same server: %w", ErrForbidden)
	}
	if requester.ID == other.ID {
		return nil, fmt.Errorf("cannot start a conversation with yourself: %w", ErrInvalidInput)
	}

	conv, err := s.conversations.GetByMembers(ctx, requester.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	conv, err = s.conversations.Create(ctx, requester.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		s.logger.Info("conversation created",
			zap.String("conversation_id", conv.ID.String()),
			zap.String("member_one", requester.ID.String()),
			zap.String("member_two", other.ID.String()),
		)
		return conv, nil
	}

	// Lost the first-contact race; the winner's row is there now.
	conv, err = s.conversations.GetByMembers(ctx, requester.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		// Insert skipped AND lookup empty: the competing conversation
		// vanished between the two calls. Surface it rather than loop.
		return nil, fmt.Errorf("conversation create/lookup race: %w", ErrConflict)
	}
	return conv, nil
}
