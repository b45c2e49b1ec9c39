package forum

import (
	"context"
	"testing"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// conversationFixture is a server with an owner and a guest, the
// smallest world in which a DM can exist.
type conversationFixture struct {
	fs          *fakeStore
	svc         *ConversationService
	server      *models.Server
	ownerUser   uuid.UUID
	ownerMember *models.Member
	guestUser   uuid.UUID
	guestMember *models.Member
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()
	ctx := context.Background()
	fs := newFakeStore()
	servers := newTestServerService(fs)

	ownerUser := uuid.New()
	srv, err := servers.CreateServer(ctx, ownerUser, uuid.New(), "Math Club", "")
	require.NoError(t, err)

	guestUser := uuid.New()
	_, err = servers.JoinByInviteCode(ctx, guestUser, srv.InviteCode)
	require.NoError(t, err)

	ownerMember, err := fakeMembers{fs}.GetByUserAndServer(ctx, ownerUser, srv.ID)
	require.NoError(t, err)
	guestMember, err := fakeMembers{fs}.GetByUserAndServer(ctx, guestUser, srv.ID)
	require.NoError(t, err)

	return &conversationFixture{
		fs:          fs,
		svc:         NewConversationService(fakeConversations{fs}, fakeMembers{fs}, zap.NewNop()),
		server:      srv,
		ownerUser:   ownerUser,
		ownerMember: ownerMember,
		guestUser:   guestUser,
		guestMember: guestMember,
	}
}

func TestGetOrCreateConversation(t *testing.T) {
	ctx := context.Background()
	fx := newConversationFixture(t)

	conv, err := fx.svc.GetOrCreate(ctx, fx.ownerUser, fx.guestMember.ID)
	require.NoError(t, err)
	require.NotNil(t, conv)

	// Same pair, approached from the other side, is the same conversation.
	same, err := fx.svc.GetOrCreate(ctx, fx.guestUser, fx.ownerMember.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, same.ID)

	// And so is asking again from the original side.
	again, err := fx.svc.GetOrCreate(ctx, fx.ownerUser, fx.guestMember.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
}

func TestGetOrCreateConversationRejectsSelf(t *testing.T) {
	fx := newConversationFixture(t)

	_, err := fx.svc.GetOrCreate(context.Background(), fx.ownerUser, fx.ownerMember.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetOrCreateConversationUnknownMember(t *testing.T) {
	fx := newConversationFixture(t)

	_, err := fx.svc.GetOrCreate(context.Background(), fx.ownerUser, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateConversationRequiresSharedServer(t *testing.T) {
	fx := newConversationFixture(t)

	// A user with no member row in the guest's server has no standing.
	_, err := fx.svc.GetOrCreate(context.Background(), uuid.New(), fx.guestMember.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConversationOrphanedByMemberRemoval(t *testing.T) {
	ctx := context.Background()
	fx := newConversationFixture(t)
	servers := newTestServerService(fx.fs)

	conv, err := fx.svc.GetOrCreate(ctx, fx.ownerUser, fx.guestMember.ID)
	require.NoError(t, err)

	// A second counterpart, so the owner holds two conversations whose
	// other sides will both be removed.
	secondUser := uuid.New()
	_, err = servers.JoinByInviteCode(ctx, secondUser, fx.server.InviteCode)
	require.NoError(t, err)
	secondMember, err := fakeMembers{fx.fs}.GetByUserAndServer(ctx, secondUser, fx.server.ID)
	require.NoError(t, err)
	secondConv, err := fx.svc.GetOrCreate(ctx, fx.ownerUser, secondMember.ID)
	require.NoError(t, err)

	// Both counterparts leave. Each removal nulls a slot; two orphans
	// sharing the same surviving member must coexist.
	require.NoError(t, servers.LeaveServer(ctx, fx.guestUser, fx.server.ID))
	require.NoError(t, servers.LeaveServer(ctx, secondUser, fx.server.ID))

	for _, id := range []uuid.UUID{conv.ID, secondConv.ID} {
		got, err := fakeConversations{fx.fs}.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.MemberOneID)
		assert.Equal(t, fx.ownerMember.ID, *got.MemberOneID)
		assert.Nil(t, got.MemberTwoID)
	}

	// The departed member's id resolves nothing anymore.
	_, err = fx.svc.GetOrCreate(ctx, fx.ownerUser, fx.guestMember.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Rejoining mints a fresh member row; first contact starts a new
	// conversation rather than resurrecting the orphan.
	_, err = servers.JoinByInviteCode(ctx, fx.guestUser, fx.server.InviteCode)
	require.NoError(t, err)
	rejoined, err := fakeMembers{fx.fs}.GetByUserAndServer(ctx, fx.guestUser, fx.server.ID)
	require.NoError(t, err)

	fresh, err := fx.svc.GetOrCreate(ctx, fx.ownerUser, rejoined.ID)
	require.NoError(t, err)
	assert.NotEqual(t, conv.ID, fresh.ID)
}

func TestGetOrCreateConversationLostRace(t *testing.T) {
	ctx := context.Background()
	fx := newConversationFixture(t)

	// The insert reports nothing because a concurrent first contact won;
	// the service must come back with the winner's conversation.
	fx.fs.loseConversationRace = true

	conv, err := fx.svc.GetOrCreate(ctx, fx.ownerUser, fx.guestMember.ID)
	require.NoError(t, err)
	require.NotNil(t, conv)

	same, err := fx.svc.GetOrCreate(ctx, fx.guestUser, fx.ownerMember.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, same.ID)
}
