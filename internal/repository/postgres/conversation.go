package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationStore struct {
	pool *pgxpool.Pool
}

func NewConversationStore(pool *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{pool: pool}
}

const conversationColumns = "id, member_one_id, member_two_id, created_at"

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(
		&c.ID,
		&c.MemberOneID,
		&c.MemberTwoID,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ConversationStore) GetByID(ctx context.Context, conversationID uuid.UUID) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	c, err := scanConversation(s.pool.QueryRow(ctx, query, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (s *ConversationStore) GetByMembers(ctx context.Context, memberA, memberB uuid.UUID) (*models.Conversation, error) {
	// The pair is unordered but stored in two fixed slots, so the
	// lookup has to match (A,B) and (B,A). One OR query instead of two
	// round trips.
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE (member_one_id = $1 AND member_two_id = $2)
		   OR (member_one_id = $2 AND member_two_id = $1)`

	c, err := scanConversation(s.pool.QueryRow(ctx, query, memberA, memberB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation by members: %w", err)
	}
	return c, nil
}

func (s *ConversationStore) Create(ctx context.Context, memberA, memberB uuid.UUID) (*models.Conversation, error) {
	// Postgres has no native unordered-pair uniqueness, so the schema
	// carries a unique index on (least(member_one_id, member_two_id),
	// greatest(member_one_id, member_two_id)). Two simultaneous
	// first-contact creates for the same pair race on that index; the
	// loser's insert hits ON CONFLICT DO NOTHING, returns no row, and
	// the service refetches. Exactly one conversation per pair, ever.
	query := `
		INSERT INTO conversations (id, member_one_id, member_two_id, created_at)
		VALUES (uuid_generate_v4(), $1, $2, now())
		ON CONFLICT DO NOTHING
		RETURNING ` + conversationColumns

	c, err := scanConversation(s.pool.QueryRow(ctx, query, memberA, memberB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return c, nil
}
