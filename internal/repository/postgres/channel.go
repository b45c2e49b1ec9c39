package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/GodwinAdu/campus-forum/internal/forum"
	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChannelStore struct {
	pool *pgxpool.Pool
}

func NewChannelStore(pool *pgxpool.Pool) *ChannelStore {
	return &ChannelStore{pool: pool}
}

const channelColumns = "id, server_id, name, type, is_default, created_at, updated_at"

func scanChannel(row pgx.Row) (*models.Channel, error) {
	var ch models.Channel
	err := row.Scan(
		&ch.ID,
		&ch.ServerID,
		&ch.Name,
		&ch.Type,
		&ch.IsDefault,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// Create inserts a non-default channel. The default channel only comes
// into existence through ServerStore.CreateGraph.
func (s *ChannelStore) Create(ctx context.Context, serverID uuid.UUID, name string, chType models.ChannelType) (*models.Channel, error) {
	query := `
		INSERT INTO channels (id, server_id, name, type, is_default, created_at, updated_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, false, now(), now())
		RETURNING ` + channelColumns

	ch, err := scanChannel(s.pool.QueryRow(ctx, query, serverID, name, chType))
	if err != nil {
		if isUniqueViolation(err) {
			// Channel names are unique per server.
			return nil, fmt.Errorf("insert channel: %w", forum.ErrConflict)
		}
		return nil, fmt.Errorf("insert channel: %w", err)
	}
	return ch, nil
}

func (s *ChannelStore) GetByID(ctx context.Context, channelID uuid.UUID) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE id = $1`

	ch, err := scanChannel(s.pool.QueryRow(ctx, query, channelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return ch, nil
}

// GetDefault returns the server's landing channel. Every server has
// exactly one (created atomically with the server), so this is the
// fallback destination when a visitor opens a server — keyed by the
// is_default flag, not by the literal name "general".
func (s *ChannelStore) GetDefault(ctx context.Context, serverID uuid.UUID) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE server_id = $1 AND is_default`

	ch, err := scanChannel(s.pool.QueryRow(ctx, query, serverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default channel: %w", err)
	}
	return ch, nil
}

func (s *ChannelStore) ListByServer(ctx context.Context, serverID uuid.UUID) ([]models.Channel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM channels
		WHERE server_id = $1
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	channels := make([]models.Channel, 0)
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(
			&ch.ID,
			&ch.ServerID,
			&ch.Name,
			&ch.Type,
			&ch.IsDefault,
			&ch.CreatedAt,
			&ch.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}

func (s *ChannelStore) Rename(ctx context.Context, channelID uuid.UUID, name string) (*models.Channel, error) {
	query := `
		UPDATE channels
		SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + channelColumns

	ch, err := scanChannel(s.pool.QueryRow(ctx, query, channelID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("rename channel: %w", forum.ErrConflict)
		}
		return nil, fmt.Errorf("rename channel: %w", err)
	}
	return ch, nil
}

func (s *ChannelStore) Delete(ctx context.Context, channelID uuid.UUID) error {
	query := `DELETE FROM channels WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, channelID); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}
