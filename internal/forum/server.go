package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/GodwinAdu/campus-forum/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultChannelName is what the landing channel is called on creation.
// Protection and fallback routing key off Channel.IsDefault, not this
// name — but the name stays reserved so a second "general" can't be
// created to confuse clients.
const DefaultChannelName = "general"

// inviteCodeAttempts bounds the regenerate-on-collision loop. UUID
// collisions are astronomically unlikely; the bound exists so a broken
// generator can't spin forever.
const inviteCodeAttempts = 3

// ServerService implements membership and channel management: the
// server lifecycle, the invite/join flow, roles, and channel CRUD.
type ServerService struct {
	servers  repository.ServerRepository
	members  repository.MemberRepository
	channels repository.ChannelRepository
	logger   *zap.Logger
}

func NewServerService(
	servers repository.ServerRepository,
	members repository.MemberRepository,
	channels repository.ChannelRepository,
	logger *zap.Logger,
) *ServerService {
	return &ServerService{
		servers:  servers,
		members:  members,
		channels: channels,
		logger:   logger,
	}
}

// ServerDetail is the fully-resolved aggregate handlers render: the
// server with its channels and members in one shape, resolved here so
// nested fetches don't leak into the API layer.
type ServerDetail struct {
	Server   *models.Server   `json:"server"`
	Channels []models.Channel `json:"channels"`
	Members  []models.Member  `json:"members"`
}

func newInviteCode() string {
	return uuid.NewString()
}

// CreateServer provisions a discussion space: the server row, the
// creator's OWNER membership, and the default "general" TEXT channel,
// all-or-nothing. The invite code is generated here; if it collides
// (unique index), we regenerate and try again rather than failing the
// caller.
func (s *ServerService) CreateServer(ctx context.Context, userID, tenantID uuid.UUID, name, imageURL string) (*models.Server, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("server name is required: %w", ErrInvalidInput)
	}

	var lastErr error
	for i := 0; i < inviteCodeAttempts; i++ {
		srv, err := s.servers.CreateGraph(ctx, tenantID, name, imageURL, newInviteCode(), userID, DefaultChannelName)
		if err == nil {
			s.logger.Info("server created",
				zap.String("server_id", srv.ID.String()),
				zap.String("owner_user_id", userID.String()),
			)
			return srv, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create server: invite code kept colliding: %w", lastErr)
}

// JoinByInviteCode resolves the code to a server and adds the user as a
// GUEST member. An unknown code is NotFound. A user who is already a
// member gets the existing server back — joining is idempotent, never
// an error, including under two concurrent joins on the same link.
func (s *ServerService) JoinByInviteCode(ctx context.Context, userID uuid.UUID, code string) (*models.Server, error) {
	srv, err := s.servers.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if srv == nil {
		return nil, fmt.Errorf("invite code: %w", ErrNotFound)
	}

	member, err := s.members.Create(ctx, srv.ID, userID, models.RoleGuest)
	if err != nil {
		return nil, err
	}
	if member == nil {
		// Already a member (or a concurrent join won). Nothing to do.
		return srv, nil
	}

	s.logger.Info("member joined server",
		zap.String("server_id", srv.ID.String()),
		zap.String("member_id", member.ID.String()),
	)
	return srv, nil
}

// ResetInviteCode issues a fresh unique code, invalidating the old one
// in the same write — stale invite links fail closed immediately, no
// grace period. Requires ADMIN or above.
func (s *ServerService) ResetInviteCode(ctx context.Context, userID, serverID uuid.UUID) (*models.Server, error) {
	if _, err := s.requireRole(ctx, userID, serverID, models.RoleAdmin); err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < inviteCodeAttempts; i++ {
		srv, err := s.servers.UpdateInviteCode(ctx, serverID, newInviteCode())
		if err == nil {
			if srv == nil {
				return nil, fmt.Errorf("server: %w", ErrNotFound)
			}
			return srv, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("reset invite code: %w", lastErr)
}

// GetServer returns the server with its channels and members. Only
// members may look inside — membership, not tenant access, gates
// visibility, so a non-member gets Forbidden even for servers in their
// own tenant.
func (s *ServerService) GetServer(ctx context.Context, userID, serverID uuid.UUID) (*ServerDetail, error) {
	srv, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if srv == nil {
		return nil, fmt.Errorf("server: %w", ErrNotFound)
	}

	member, err := s.members.GetByUserAndServer(ctx, userID, serverID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("not a member of server: %w", ErrForbidden)
	}

	channels, err := s.channels.ListByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.ListByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	return &ServerDetail{Server: srv, Channels: channels, Members: members}, nil
}

// ListServers returns every server the user belongs to.
func (s *ServerService) ListServers(ctx context.Context, userID uuid.UUID) ([]models.Server, error) {
	return s.servers.ListByUser(ctx, userID)
}

// UpdateServer changes name/image. Requires ADMIN or above.
func (s *ServerService) UpdateServer(ctx context.Context, userID, serverID uuid.UUID, name, imageURL string) (*models.Server, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("server name is required: %w", ErrInvalidInput)
	}
	if _, err := s.requireRole(ctx, userID, serverID, models.RoleAdmin); err != nil {
		return nil, err
	}

	srv, err := s.servers.Update(ctx, serverID, name, imageURL)
	if err != nil {
		return nil, err
	}
	if srv == nil {
		return nil, fmt.Errorf("server: %w", ErrNotFound)
	}
	return srv, nil
}

// DeleteServer removes the space and everything it owns. OWNER only.
func (s *ServerService) DeleteServer(ctx context.Context, userID, serverID uuid.UUID) error {
	if _, err := s.requireRole(ctx, userID, serverID, models.RoleOwner); err != nil {
		return err
	}
	if err := s.servers.Delete(ctx, serverID); err != nil {
		return err
	}
	s.logger.Info("server deleted", zap.String("server_id", serverID.String()))
	return nil
}

// LeaveServer removes the caller's own membership. The owner cannot
// leave — they delete the server or transfer ownership first, otherwise
// the space would be left ownerless.
func (s *ServerService) LeaveServer(ctx context.Context, userID, serverID uuid.UUID) error {
	member, err := s.members.GetByUserAndServer(ctx, userID, serverID)
	if err != nil {
		return err
	}
	if member == nil {
		return fmt.Errorf("membership: %w", ErrNotFound)
	}
	if member.Role == models.RoleOwner {
		return fmt.Errorf("owner cannot leave their own server: %w", ErrInvalidInput)
	}
	return s.members.Delete(ctx, member.ID)
}

// KickMember removes another member. ADMIN or above; the owner can
// never be kicked, and removing a fellow ADMIN takes the OWNER.
// Authored messages stay in history with their author link nulled.
func (s *ServerService) KickMember(ctx context.Context, userID, serverID, memberID uuid.UUID) error {
	requester, err := s.requireRole(ctx, userID, serverID, models.RoleAdmin)
	if err != nil {
		return err
	}

	target, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if target == nil || target.ServerID != serverID {
		return fmt.Errorf("member: %w", ErrNotFound)
	}
	if target.ID == requester.ID {
		return fmt.Errorf("cannot kick yourself, leave instead: %w", ErrInvalidInput)
	}
	if target.Role == models.RoleOwner {
		return fmt.Errorf("owner cannot be kicked: %w", ErrForbidden)
	}
	if target.Role == models.RoleAdmin && requester.Role != models.RoleOwner {
		return fmt.Errorf("only the owner may kick an admin: %w", ErrForbidden)
	}

	return s.members.Delete(ctx, target.ID)
}

// UpdateMemberRole sets a member's role to ADMIN or GUEST. ADMIN or
// above; OWNER is not assignable here (ownership transfer is a
// different, owner-only operation) and the owner's own role is fixed.
func (s *ServerService) UpdateMemberRole(ctx context.Context, userID, serverID, memberID uuid.UUID, role models.Role) (*models.Member, error) {
	if !role.Valid() || role == models.RoleOwner {
		return nil, fmt.Errorf("role must be ADMIN or GUEST: %w", ErrInvalidInput)
	}
	if _, err := s.requireRole(ctx, userID, serverID, models.RoleAdmin); err != nil {
		return nil, err
	}

	target, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.ServerID != serverID {
		return nil, fmt.Errorf("member: %w", ErrNotFound)
	}
	if target.Role == models.RoleOwner {
		return nil, fmt.Errorf("owner role cannot be changed: %w", ErrForbidden)
	}

	return s.members.UpdateRole(ctx, target.ID, role)
}

// CreateChannel adds a channel to the server. ADMIN or above. The
// default channel's name stays reserved.
func (s *ServerService) CreateChannel(ctx context.Context, userID, serverID uuid.UUID, name string, chType models.ChannelType) (*models.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("channel name is required: %w", ErrInvalidInput)
	}
	if strings.EqualFold(name, DefaultChannelName) {
		return nil, fmt.Errorf("channel name %q is reserved: %w", DefaultChannelName, ErrInvalidInput)
	}
	if !chType.Valid() {
		return nil, fmt.Errorf("unknown channel type %q: %w", chType, ErrInvalidInput)
	}
	if _, err := s.requireRole(ctx, userID, serverID, models.RoleAdmin); err != nil {
		return nil, err
	}

	return s.channels.Create(ctx, serverID, name, chType)
}

// UpdateChannel renames a channel. ADMIN or above; the default channel
// cannot be renamed — the landing fallback depends on it staying put.
func (s *ServerService) UpdateChannel(ctx context.Context, userID, channelID uuid.UUID, name string) (*models.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("channel name is required: %w", ErrInvalidInput)
	}
	if strings.EqualFold(name, DefaultChannelName) {
		return nil, fmt.Errorf("channel name %q is reserved: %w", DefaultChannelName, ErrInvalidInput)
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, fmt.Errorf("channel: %w", ErrNotFound)
	}
	// Role before the default check: callers without standing learn
	// nothing about which channel is the protected one.
	if _, err := s.requireRole(ctx, userID, ch.ServerID, models.RoleAdmin); err != nil {
		return nil, err
	}
	if ch.IsDefault {
		return nil, fmt.Errorf("default channel cannot be renamed: %w", ErrInvalidInput)
	}

	return s.channels.Rename(ctx, channelID, name)
}

// DeleteChannel removes a channel and its messages. ADMIN or above; the
// default channel is structurally protected so every server keeps at
// least one channel.
func (s *ServerService) DeleteChannel(ctx context.Context, userID, channelID uuid.UUID) error {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return fmt.Errorf("channel: %w", ErrNotFound)
	}
	if _, err := s.requireRole(ctx, userID, ch.ServerID, models.RoleAdmin); err != nil {
		return err
	}
	if ch.IsDefault {
		return fmt.Errorf("default channel cannot be deleted: %w", ErrInvalidInput)
	}

	return s.channels.Delete(ctx, channelID)
}

// DefaultChannel returns the server's landing channel for members —
// where a visitor lands when they open the server without picking a
// channel.
func (s *ServerService) DefaultChannel(ctx context.Context, userID, serverID uuid.UUID) (*models.Channel, error) {
	member, err := s.members.GetByUserAndServer(ctx, userID, serverID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("not a member of server: %w", ErrForbidden)
	}

	ch, err := s.channels.GetDefault(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		// Every server is created with a default channel, so this is a
		// data consistency problem, not a user mistake.
		return nil, fmt.Errorf("server has no default channel: %w", ErrNotFound)
	}
	return ch, nil
}

// requireRole resolves the caller's member row on the server and checks
// it holds at least the given role. A missing member row and an
// insufficient role are both Forbidden — non-members learn nothing
// about what the server contains.
func (s *ServerService) requireRole(ctx context.Context, userID, serverID uuid.UUID, role models.Role) (*models.Member, error) {
	member, err := s.members.GetByUserAndServer(ctx, userID, serverID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("not a member of server: %w", ErrForbidden)
	}
	if !member.Role.AtLeast(role) {
		return nil, fmt.Errorf("requires %s role: %w", role, ErrForbidden)
	}
	return member, nil
}
