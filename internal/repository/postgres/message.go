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

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// Channel and direct messages are two physical tables with one shape.
// The parent kind selects the table and its FK column; both values come
// from our own constants, never from user input, so interpolating them
// into SQL is safe.
func messageTable(parent models.MessageParent) (table, fkColumn string) {
	if parent == models.ParentConversation {
		return "direct_messages", "conversation_id"
	}
	return "channel_messages", "channel_id"
}

func scanMessage(row pgx.Row, parent models.MessageParent) (*models.Message, error) {
	var msg models.Message
	msg.Parent = parent
	err := row.Scan(
		&msg.ID,
		&msg.ParentID,
		&msg.AuthorMemberID,
		&msg.Content,
		&msg.FileURL,
		&msg.Deleted,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MessageStore) Create(ctx context.Context, parent models.MessageParent, parentID, authorMemberID uuid.UUID, content, fileURL string) (*models.Message, error) {
	table, fk := messageTable(parent)

	// Messages use bigserial, so Postgres generates the id — and with
	// it the authoritative within-room ordering that pagination cursors
	// rely on.
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, author_member_id, content, file_url, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, now(), now())
		RETURNING id, %s, author_member_id, content, file_url, deleted, created_at, updated_at`,
		table, fk, fk)

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, parentID, authorMemberID, content, fileURL), parent)
	if err != nil {
		return nil, fmt.Errorf("insert %s message: %w", parent, err)
	}
	return msg, nil
}

func (s *MessageStore) GetByID(ctx context.Context, parent models.MessageParent, parentID uuid.UUID, messageID int64) (*models.Message, error) {
	table, fk := messageTable(parent)

	// Scoped by parent so a message can only be addressed through the
	// room that owns it.
	query := fmt.Sprintf(`
		SELECT id, %s, author_member_id, content, file_url, deleted, created_at, updated_at
		FROM %s
		WHERE id = $1 AND %s = $2`,
		fk, table, fk)

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, messageID, parentID), parent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s message: %w", parent, err)
	}
	return msg, nil
}

func (s *MessageStore) UpdateContent(ctx context.Context, parent models.MessageParent, messageID int64, content string) (*models.Message, error) {
	table, fk := messageTable(parent)

	// Edits touch content and updated_at only — author, parent and
	// created_at are immutable for the life of the row. The deleted
	// guard makes a tombstone terminal even under racing edits.
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $2, updated_at = now()
		WHERE id = $1 AND NOT deleted
		RETURNING id, %s, author_member_id, content, file_url, deleted, created_at, updated_at`,
		table, fk)

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, messageID, content), parent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update %s message: %w", parent, err)
	}
	return msg, nil
}

func (s *MessageStore) Tombstone(ctx context.Context, parent models.MessageParent, messageID int64, placeholder string) (*models.Message, error) {
	table, fk := messageTable(parent)

	// Soft delete: the row survives with placeholder content and no
	// attachment, keeping its id — and therefore its position in
	// paginated history. The NOT deleted guard means a second tombstone
	// of the same row updates nothing (nil, nil to the caller).
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted = true, content = $2, file_url = '', updated_at = now()
		WHERE id = $1 AND NOT deleted
		RETURNING id, %s, author_member_id, content, file_url, deleted, created_at, updated_at`,
		table, fk)

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, messageID, placeholder), parent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("tombstone %s message: %w", parent, err)
	}
	return msg, nil
}

func (s *MessageStore) ListByParent(ctx context.Context, parent models.MessageParent, parentID uuid.UUID, before int64, limit int) ([]models.Message, error) {
	table, fk := messageTable(parent)

	// Cursor-based pagination:
	//
	// before=0  → first page (newest messages), no id bound.
	// before=42 → "messages older than id 42", WHERE id < 42.
	//
	// Why a cursor and not OFFSET?
	//   - New messages arrive while the user scrolls. With OFFSET, every
	//     insert shifts the window: rows get double-fetched or skipped.
	//   - id < cursor pins the page to a fixed point in history, so a
	//     page fetched twice with no intervening writes is identical.
	var query string
	var args []any

	if before > 0 {
		query = fmt.Sprintf(`
			SELECT id, %s, author_member_id, content, file_url, deleted, created_at, updated_at
			FROM %s
			WHERE %s = $1 AND id < $2
			ORDER BY id DESC
			LIMIT $3`, fk, table, fk)
		args = []any{parentID, before, limit}
	} else {
		query = fmt.Sprintf(`
			SELECT id, %s, author_member_id, content, file_url, deleted, created_at, updated_at
			FROM %s
			WHERE %s = $1
			ORDER BY id DESC
			LIMIT $2`, fk, table, fk)
		args = []any{parentID, limit}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s messages: %w", parent, err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		msg.Parent = parent
		if err := rows.Scan(
			&msg.ID,
			&msg.ParentID,
			&msg.AuthorMemberID,
			&msg.Content,
			&msg.FileURL,
			&msg.Deleted,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
