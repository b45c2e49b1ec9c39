package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the top-level isolation boundary (one school deployment).
// Every user and server belongs to exactly one tenant; school A never
// sees school B's data.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an identity principal within a tenant. The forum core never
// reads anything off this beyond ID and TenantID — users exist so the
// embedded identity provider (signup/login) has something to resolve.
type User struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role is a member's standing within one server, strictly ordered
// OWNER > ADMIN > GUEST.
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleGuest Role = "GUEST"
)

var roleRank = map[Role]int{
	RoleGuest: 1,
	RoleAdmin: 2,
	RoleOwner: 3,
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything other grants.
// Unknown roles rank below GUEST, so they never pass a check.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// Server is a discussion space: it owns channels and members, and is
// joinable through its invite code.
//
// Why no OwnerID column?
//   - Ownership already lives on the members table as role = OWNER.
//     A second copy on the server row would be one more thing to keep
//     in sync when ownership transfers.
type Server struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Member is one user's participation record in one server.
// At most one member row exists per (user_id, server_id) pair.
type Member struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ServerID  uuid.UUID `json:"server_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelType distinguishes what a channel carries. Only TEXT channels
// hold messages in this service; AUDIO and VIDEO are data-model types
// whose media transport lives outside the messaging core.
type ChannelType string

const (
	ChannelText  ChannelType = "TEXT"
	ChannelAudio ChannelType = "AUDIO"
	ChannelVideo ChannelType = "VIDEO"
)

// Valid reports whether t is a known channel type.
func (t ChannelType) Valid() bool {
	return t == ChannelText || t == ChannelAudio || t == ChannelVideo
}

// Channel is a named sub-space of a server.
//
// IsDefault marks the landing channel created with the server (named
// "general"). The flag — not the name — is what protects it from rename
// and deletion and what the landing fallback keys off.
type Channel struct {
	ID        uuid.UUID   `json:"id"`
	ServerID  uuid.UUID   `json:"server_id"`
	Name      string      `json:"name"`
	Type      ChannelType `json:"type"`
	IsDefault bool        `json:"is_default"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Conversation is the unique unordered pair of members that enables
// direct messaging. The two slots are fixed in storage but the pair is
// unordered: lookups must match either arrangement.
//
// Member references are pointers because a removed member orphans the
// conversation (SET NULL in storage) rather than destroying its history.
type Conversation struct {
	ID          uuid.UUID  `json:"id"`
	MemberOneID *uuid.UUID `json:"member_one_id"`
	MemberTwoID *uuid.UUID `json:"member_two_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MessageParent names which of the two physical message tables a
// message lives in. The value doubles as the realtime room key prefix.
type MessageParent string

const (
	ParentChannel      MessageParent = "channel"
	ParentConversation MessageParent = "conversation"
)

// Message is a single chat message, owned by a channel or a
// conversation (Parent + ParentID).
//
// Why int64 for ID (not UUID)?
//   - Messages are the highest-volume tables. bigserial (auto-incrementing
//     int64) is:
//     1. Smaller (8 bytes vs 16 bytes) — matters at millions of rows.
//     2. Naturally ordered — higher ID = newer message. This is the
//        pagination cursor.
//     3. Index-friendly — B-tree on int64 is faster than on UUID.
//
// AuthorMemberID is a weak reference: deleting the author member orphans
// the message (nil author) but never removes it from history.
//
// Deleted marks a tombstone. A tombstoned message keeps its row — and
// therefore its position in history — with placeholder content and no
// attachment. Tombstoning is terminal: no further edits are accepted.
type Message struct {
	ID             int64         `json:"id"`
	Parent         MessageParent `json:"parent"`
	ParentID       uuid.UUID     `json:"parent_id"`
	AuthorMemberID *uuid.UUID    `json:"author_member_id"`
	Content        string        `json:"content"`
	FileURL        string        `json:"file_url,omitempty"`
	Deleted        bool          `json:"deleted"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
