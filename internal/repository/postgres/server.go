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

type ServerStore struct {
	pool *pgxpool.Pool
}

func NewServerStore(pool *pgxpool.Pool) *ServerStore {
	return &ServerStore{pool: pool}
}

const serverColumns = "id, tenant_id, name, image_url, invite_code, created_at, updated_at"

func scanServer(row pgx.Row) (*models.Server, error) {
	var s models.Server
	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.ImageURL,
		&s.InviteCode,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateGraph inserts server + owner member + default channel in one
// transaction. A server is never visible without its "general" channel
// and its OWNER — if any insert fails, the whole group rolls back and
// no partial server leaks out.
func (s *ServerStore) CreateGraph(ctx context.Context, tenantID uuid.UUID, name, imageURL, inviteCode string, ownerUserID uuid.UUID, defaultChannel string) (*models.Server, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create server: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so deferring it
	// unconditionally covers every early return.
	defer tx.Rollback(ctx)

	srvQuery := `
		INSERT INTO servers (id, tenant_id, name, image_url, invite_code, created_at, updated_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, $4, now(), now())
		RETURNING ` + serverColumns

	srv, err := scanServer(tx.QueryRow(ctx, srvQuery, tenantID, name, imageURL, inviteCode))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert server: %w", forum.ErrConflict)
		}
		return nil, fmt.Errorf("insert server: %w", err)
	}

	memberQuery := `
		INSERT INTO members (id, user_id, server_id, role, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, now())`
	if _, err := tx.Exec(ctx, memberQuery, ownerUserID, srv.ID, models.RoleOwner); err != nil {
		return nil, fmt.Errorf("insert owner member: %w", err)
	}

	channelQuery := `
		INSERT INTO channels (id, server_id, name, type, is_default, created_at, updated_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, true, now(), now())`
	if _, err := tx.Exec(ctx, channelQuery, srv.ID, defaultChannel, models.ChannelText); err != nil {
		return nil, fmt.Errorf("insert default channel: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create server: %w", err)
	}
	return srv, nil
}

func (s *ServerStore) GetByID(ctx context.Context, serverID uuid.UUID) (*models.Server, error) {
	query := `SELECT ` + serverColumns + ` FROM servers WHERE id = $1`

	srv, err := scanServer(s.pool.QueryRow(ctx, query, serverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get server: %w", err)
	}
	return srv, nil
}

func (s *ServerStore) GetByInviteCode(ctx context.Context, code string) (*models.Server, error) {
	// invite_code carries a unique index, so at most one server ever
	// resolves from a given code. A reset replaces the code in place:
	// stale links stop matching the instant the new code commits.
	query := `SELECT ` + serverColumns + ` FROM servers WHERE invite_code = $1`

	srv, err := scanServer(s.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get server by invite code: %w", err)
	}
	return srv, nil
}

func (s *ServerStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Server, error) {
	query := `
		SELECT s.id, s.tenant_id, s.name, s.image_url, s.invite_code, s.created_at, s.updated_at
		FROM servers s
		JOIN members m ON m.server_id = s.id
		WHERE m.user_id = $1
		ORDER BY s.created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	servers := make([]models.Server, 0)
	for rows.Next() {
		var srv models.Server
		if err := rows.Scan(
			&srv.ID,
			&srv.TenantID,
			&srv.Name,
			&srv.ImageURL,
			&srv.InviteCode,
			&srv.CreatedAt,
			&srv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan server: %w", err)
		}
		servers = append(servers, srv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate servers: %w", err)
	}

	return servers, nil
}

func (s *ServerStore) Update(ctx context.Context, serverID uuid.UUID, name, imageURL string) (*models.Server, error) {
	query := `
		UPDATE servers
		SET name = $2, image_url = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + serverColumns

	srv, err := scanServer(s.pool.QueryRow(ctx, query, serverID, name, imageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update server: %w", err)
	}
	return srv, nil
}

func (s *ServerStore) UpdateInviteCode(ctx context.Context, serverID uuid.UUID, code string) (*models.Server, error) {
	query := `
		UPDATE servers
		SET invite_code = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + serverColumns

	srv, err := scanServer(s.pool.QueryRow(ctx, query, serverID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			// Two concurrent resets landed on colliding codes — the
			// unique index, not app-level locking, is the arbiter.
			return nil, fmt.Errorf("update invite code: %w", forum.ErrConflict)
		}
		return nil, fmt.Errorf("update invite code: %w", err)
	}
	return srv, nil
}

func (s *ServerStore) Delete(ctx context.Context, serverID uuid.UUID) error {
	// Channels, members and their messages go with the server via
	// ON DELETE CASCADE — the server owns them.
	query := `DELETE FROM servers WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, serverID); err != nil {
		return fmt.Errorf("delete server: %w", err)
	}
	return nil
}
