package repository

import (
	"context"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/google/uuid"
)

// Every method takes context.Context first: each call is asynchronous
// I/O against Postgres, and the context carries the request deadline —
// if the client disconnects, the query is cancelled with it.
//
// Not-found is nil, nil everywhere. The service layer owns the decision
// of whether a missing row is ErrNotFound, ErrForbidden, or fine; the
// store just reports what the table holds.

// ServerRepository persists discussion spaces.
type ServerRepository interface {
	// CreateGraph inserts the server, its OWNER member for ownerUserID,
	// and the default TEXT channel in a single transaction. Either all
	// three rows exist afterwards or none do. A duplicate invite code
	// surfaces as forum.ErrConflict so the caller can regenerate.
	CreateGraph(ctx context.Context, tenantID uuid.UUID, name, imageURL, inviteCode string, ownerUserID uuid.UUID, defaultChannel string) (*models.Server, error)

	// GetByID returns a single server. Returns nil, nil if not found.
	GetByID(ctx context.Context, serverID uuid.UUID) (*models.Server, error)

	// GetByInviteCode resolves a server from its current invite code.
	// Stale codes resolve nothing — at most one server ever matches.
	GetByInviteCode(ctx context.Context, code string) (*models.Server, error)

	// ListByUser returns every server the user holds a member row in,
	// newest first. Empty slice (not nil) so JSON serializes to [].
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Server, error)

	// Update changes name and image. Returns nil, nil if not found.
	Update(ctx context.Context, serverID uuid.UUID, name, imageURL string) (*models.Server, error)

	// UpdateInviteCode swaps in a fresh code, invalidating the old one
	// in the same write. Duplicate codes surface as forum.ErrConflict.
	UpdateInviteCode(ctx context.Context, serverID uuid.UUID, code string) (*models.Server, error)

	// Delete removes the server; channels, members and messages cascade.
	Delete(ctx context.Context, serverID uuid.UUID) error
}

// MemberRepository persists per-server participation records.
type MemberRepository interface {
	// Create inserts a member row. If the (user, server) pair already
	// exists it returns nil, nil — callers refetch, which makes joining
	// idempotent under concurrent requests.
	Create(ctx context.Context, serverID, userID uuid.UUID, role models.Role) (*models.Member, error)

	GetByID(ctx context.Context, memberID uuid.UUID) (*models.Member, error)

	// GetByUserAndServer is the hot-path authorization lookup: it runs
	// before every post, read, and subscribe.
	GetByUserAndServer(ctx context.Context, userID, serverID uuid.UUID) (*models.Member, error)

	ListByServer(ctx context.Context, serverID uuid.UUID) ([]models.Member, error)

	UpdateRole(ctx context.Context, memberID uuid.UUID, role models.Role) (*models.Member, error)

	// Delete removes a membership. Conversations and messages authored
	// by the member survive with their reference nulled out.
	Delete(ctx context.Context, memberID uuid.UUID) error
}

// ChannelRepository persists server sub-spaces.
type ChannelRepository interface {
	Create(ctx context.Context, serverID uuid.UUID, name string, chType models.ChannelType) (*models.Channel, error)

	GetByID(ctx context.Context, channelID uuid.UUID) (*models.Channel, error)

	// GetDefault returns the server's landing channel (is_default).
	GetDefault(ctx context.Context, serverID uuid.UUID) (*models.Channel, error)

	ListByServer(ctx context.Context, serverID uuid.UUID) ([]models.Channel, error)

	Rename(ctx context.Context, channelID uuid.UUID, name string) (*models.Channel, error)

	Delete(ctx context.Context, channelID uuid.UUID) error
}

// ConversationRepository persists DM pairs.
type ConversationRepository interface {
	GetByID(ctx context.Context, conversationID uuid.UUID) (*models.Conversation, error)

	// GetByMembers looks the pair up in both arrangements — the pair is
	// unordered but stored in two fixed slots.
	GetByMembers(ctx context.Context, memberA, memberB uuid.UUID) (*models.Conversation, error)

	// Create inserts the pair with memberOne=A, memberTwo=B. If another
	// request created the pair first (unique index on the normalized
	// pair), it returns nil, nil and the caller refetches. The loser of
	// a first-contact race retries as a lookup, never fails.
	Create(ctx context.Context, memberA, memberB uuid.UUID) (*models.Conversation, error)
}

// MessageRepository persists channel and direct messages. The parent
// kind selects the physical table; both tables share one shape.
type MessageRepository interface {
	Create(ctx context.Context, parent models.MessageParent, parentID, authorMemberID uuid.UUID, content, fileURL string) (*models.Message, error)

	// GetByID is scoped by parent so a message id from one room can't
	// be addressed through another.
	GetByID(ctx context.Context, parent models.MessageParent, parentID uuid.UUID, messageID int64) (*models.Message, error)

	// UpdateContent changes content and updated_at, nothing else.
	UpdateContent(ctx context.Context, parent models.MessageParent, messageID int64, content string) (*models.Message, error)

	// Tombstone soft-deletes: deleted=true, content replaced with the
	// placeholder, file_url cleared. The row keeps its id and position.
	Tombstone(ctx context.Context, parent models.MessageParent, messageID int64, placeholder string) (*models.Message, error)

	// ListByParent returns messages newest first. before=0 starts from
	// the latest; otherwise only ids strictly below the cursor return.
	ListByParent(ctx context.Context, parent models.MessageParent, parentID uuid.UUID, before int64, limit int) ([]models.Message, error)
}

// UserRepository handles identity principals.
type UserRepository interface {
	Create(ctx context.Context, tenantID uuid.UUID, email, displayName, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TenantRepository handles the isolation boundary above servers.
type TenantRepository interface {
	Create(ctx context.Context, name string) (*models.Tenant, error)
}
