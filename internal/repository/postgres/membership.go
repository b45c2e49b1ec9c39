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

type MemberStore struct {
	pool *pgxpool.Pool
}

func NewMemberStore(pool *pgxpool.Pool) *MemberStore {
	return &MemberStore{pool: pool}
}

const memberColumns = "id, user_id, server_id, role, created_at"

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.ServerID,
		&m.Role,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MemberStore) Create(ctx context.Context, serverID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	// ON CONFLICT DO NOTHING: the (user_id, server_id) pair is unique.
	// If the user already has a member row — including one created by a
	// concurrent join on the same invite link — the insert returns no
	// row and the caller refetches. Joining is idempotent, never an
	// error.
	query := `
		INSERT INTO members (id, user_id, server_id, role, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, now())
		ON CONFLICT (user_id, server_id) DO NOTHING
		RETURNING ` + memberColumns

	m, err := scanMember(s.pool.QueryRow(ctx, query, userID, serverID, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) GetByID(ctx context.Context, memberID uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	m, err := scanMember(s.pool.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) GetByUserAndServer(ctx context.Context, userID, serverID uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE user_id = $1 AND server_id = $2`

	m, err := scanMember(s.pool.QueryRow(ctx, query, userID, serverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by user and server: %w", err)
	}
	return m, nil
}

func (s *MemberStore) ListByServer(ctx context.Context, serverID uuid.UUID) ([]models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE server_id = $1
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]models.Member, 0)
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.ServerID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

func (s *MemberStore) UpdateRole(ctx context.Context, memberID uuid.UUID, role models.Role) (*models.Member, error) {
	query := `
		UPDATE members
		SET role = $2
		WHERE id = $1
		RETURNING ` + memberColumns

	m, err := scanMember(s.pool.QueryRow(ctx, query, memberID, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update member role: %w", err)
	}
	return m, nil
}

func (s *MemberStore) Delete(ctx context.Context, memberID uuid.UUID) error {
	// DELETE is naturally idempotent: zero rows deleted is not an error,
	// so leaving twice (or a kick racing a leave) is fine. Conversation
	// slots and message author references go NULL via the FK — history
	// outlives the membership.
	query := `DELETE FROM members WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, memberID); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}
