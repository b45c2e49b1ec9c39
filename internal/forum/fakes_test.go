package forum

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the postgres stores. It mirrors
// their contracts exactly: nil, nil for not-found, nil, nil for inserts
// skipped by a conflict, ErrConflict for unique violations.
type fakeStore struct {
	mu            sync.Mutex
	servers       map[uuid.UUID]models.Server
	members       map[uuid.UUID]models.Member
	channels      map[uuid.UUID]models.Channel
	conversations map[uuid.UUID]models.Conversation
	messages      map[models.MessageParent][]models.Message
	nextMessageID int64

	// graphConflicts fails the next n CreateGraph calls with
	// ErrConflict, exercising the invite-code regenerate loop.
	graphConflicts int

	// loseConversationRace makes the next conversation Create insert
	// the row but report nil — what a lost first-contact race looks
	// like to the service.
	loseConversationRace bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		servers:       make(map[uuid.UUID]models.Server),
		members:       make(map[uuid.UUID]models.Member),
		channels:      make(map[uuid.UUID]models.Channel),
		conversations: make(map[uuid.UUID]models.Conversation),
		messages:      make(map[models.MessageParent][]models.Message),
	}
}

// --- ServerRepository ---

func (f *fakeStore) CreateGraph(_ context.Context, tenantID uuid.UUID, name, imageURL, inviteCode string, ownerUserID uuid.UUID, defaultChannel string) (*models.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.graphConflicts > 0 {
		f.graphConflicts--
		return nil, fmt.Errorf("insert server: %w", ErrConflict)
	}
	for _, s := range f.servers {
		if s.InviteCode == inviteCode {
			return nil, fmt.Errorf("insert server: %w", ErrConflict)
		}
	}

	now := time.Now()
	srv := models.Server{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Name:       name,
		ImageURL:   imageURL,
		InviteCode: inviteCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.servers[srv.ID] = srv

	owner := models.Member{
		ID:        uuid.New(),
		UserID:    ownerUserID,
		ServerID:  srv.ID,
		Role:      models.RoleOwner,
		CreatedAt: now,
	}
	f.members[owner.ID] = owner

	ch := models.Channel{
		ID:        uuid.New(),
		ServerID:  srv.ID,
		Name:      defaultChannel,
		Type:      models.ChannelText,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.channels[ch.ID] = ch

	return &srv, nil
}

func (f *fakeStore) GetByID(_ context.Context, serverID uuid.UUID) (*models.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.servers[serverID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeStore) GetByInviteCode(_ context.Context, code string) (*models.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.servers {
		if s.InviteCode == code {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Server, 0)
	for _, m := range f.members {
		if m.UserID == userID {
			if s, ok := f.servers[m.ServerID]; ok {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, serverID uuid.UUID, name, imageURL string) (*models.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servers[serverID]
	if !ok {
		return nil, nil
	}
	s.Name = name
	s.ImageURL = imageURL
	s.UpdatedAt = time.Now()
	f.servers[serverID] = s
	return &s, nil
}

func (f *fakeStore) UpdateInviteCode(_ context.Context, serverID uuid.UUID, code string) (*models.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servers[serverID]
	if !ok {
		return nil, nil
	}
	for id, other := range f.servers {
		if id != serverID && other.InviteCode == code {
			return nil, fmt.Errorf("update invite code: %w", ErrConflict)
		}
	}
	s.InviteCode = code
	s.UpdatedAt = time.Now()
	f.servers[serverID] = s
	return &s, nil
}

func (f *fakeStore) Delete(_ context.Context, serverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.servers, serverID)
	for id, m := range f.members {
		if m.ServerID == serverID {
			delete(f.members, id)
		}
	}
	for id, ch := range f.channels {
		if ch.ServerID == serverID {
			delete(f.channels, id)
		}
	}
	return nil
}

// --- MemberRepository ---

func (f *fakeStore) Create(_ context.Context, serverID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.UserID == userID && m.ServerID == serverID {
			return nil, nil
		}
	}
	m := models.Member{
		ID:        uuid.New(),
		UserID:    userID,
		ServerID:  serverID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	f.members[m.ID] = m
	return &m, nil
}

func (f *fakeStore) GetMemberByID(_ context.Context, memberID uuid.UUID) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[memberID]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeStore) GetByUserAndServer(_ context.Context, userID, serverID uuid.UUID) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.UserID == userID && m.ServerID == serverID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByServer(_ context.Context, serverID uuid.UUID) ([]models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Member, 0)
	for _, m := range f.members {
		if m.ServerID == serverID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdateRole(_ context.Context, memberID uuid.UUID, role models.Role) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[memberID]
	if !ok {
		return nil, nil
	}
	m.Role = role
	f.members[memberID] = m
	return &m, nil
}

// DeleteMember mirrors the SET NULL semantics: conversation slots and
// message authorship referencing the member are nulled, not removed.
func (f *fakeStore) DeleteMember(_ context.Context, memberID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members, memberID)
	for id, c := range f.conversations {
		if c.MemberOneID != nil && *c.MemberOneID == memberID {
			c.MemberOneID = nil
		}
		if c.MemberTwoID != nil && *c.MemberTwoID == memberID {
			c.MemberTwoID = nil
		}
		f.conversations[id] = c
	}
	for parent, msgs := range f.messages {
		for i := range msgs {
			if msgs[i].AuthorMemberID != nil && *msgs[i].AuthorMemberID == memberID {
				msgs[i].AuthorMemberID = nil
			}
		}
		f.messages[parent] = msgs
	}
	return nil
}

// --- ChannelRepository ---

func (f *fakeStore) CreateChannel(_ context.Context, serverID uuid.UUID, name string, chType models.ChannelType) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		if ch.ServerID == serverID && ch.Name == name {
			return nil, fmt.Errorf("insert channel: %w", ErrConflict)
		}
	}
	now := time.Now()
	ch := models.Channel{
		ID:        uuid.New(),
		ServerID:  serverID,
		Name:      name,
		Type:      chType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.channels[ch.ID] = ch
	return &ch, nil
}

func (f *fakeStore) GetChannelByID(_ context.Context, channelID uuid.UUID) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.channels[channelID]; ok {
		return &ch, nil
	}
	return nil, nil
}

func (f *fakeStore) GetDefault(_ context.Context, serverID uuid.UUID) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.channels {
		if ch.ServerID == serverID && ch.IsDefault {
			ch := ch
			return &ch, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListChannelsByServer(_ context.Context, serverID uuid.UUID) ([]models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Channel, 0)
	for _, ch := range f.channels {
		if ch.ServerID == serverID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) Rename(_ context.Context, channelID uuid.UUID, name string) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, nil
	}
	for id, other := range f.channels {
		if id != channelID && other.ServerID == ch.ServerID && other.Name == name {
			return nil, fmt.Errorf("rename channel: %w", ErrConflict)
		}
	}
	ch.Name = name
	ch.UpdatedAt = time.Now()
	f.channels[channelID] = ch
	return &ch, nil
}

func (f *fakeStore) DeleteChannel(_ context.Context, channelID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channelID)
	msgs := f.messages[models.ParentChannel][:0]
	for _, m := range f.messages[models.ParentChannel] {
		if m.ParentID != channelID {
			msgs = append(msgs, m)
		}
	}
	f.messages[models.ParentChannel] = msgs
	return nil
}

// --- ConversationRepository ---

func (f *fakeStore) GetConversationByID(_ context.Context, conversationID uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.conversations[conversationID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStore) GetByMembers(_ context.Context, memberA, memberB uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c := f.findPair(memberA, memberB); c != nil {
		return c, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateConversation(_ context.Context, memberA, memberB uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findPair(memberA, memberB) != nil {
		return nil, nil
	}
	a, b := memberA, memberB
	c := models.Conversation{
		ID:          uuid.New(),
		MemberOneID: &a,
		MemberTwoID: &b,
		CreatedAt:   time.Now(),
	}
	f.conversations[c.ID] = c
	if f.loseConversationRace {
		f.loseConversationRace = false
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) findPair(memberA, memberB uuid.UUID) *models.Conversation {
	for _, c := range f.conversations {
		if c.MemberOneID == nil || c.MemberTwoID == nil {
			continue
		}
		one, two := *c.MemberOneID, *c.MemberTwoID
		if (one == memberA && two == memberB) || (one == memberB && two == memberA) {
			c := c
			return &c
		}
	}
	return nil
}

// --- MessageRepository ---

func (f *fakeStore) CreateMessage(_ context.Context, parent models.MessageParent, parentID, authorMemberID uuid.UUID, content, fileURL string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMessageID++
	author := authorMemberID
	now := time.Now()
	msg := models.Message{
		ID:             f.nextMessageID,
		Parent:         parent,
		ParentID:       parentID,
		AuthorMemberID: &author,
		Content:        content,
		FileURL:        fileURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.messages[parent] = append(f.messages[parent], msg)
	return &msg, nil
}

func (f *fakeStore) GetMessageByID(_ context.Context, parent models.MessageParent, parentID uuid.UUID, messageID int64) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages[parent] {
		if m.ID == messageID && m.ParentID == parentID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateContent(_ context.Context, parent models.MessageParent, messageID int64, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[parent]
	for i := range msgs {
		if msgs[i].ID == messageID && !msgs[i].Deleted {
			msgs[i].Content = content
			msgs[i].UpdatedAt = time.Now()
			m := msgs[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Tombstone(_ context.Context, parent models.MessageParent, messageID int64, placeholder string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[parent]
	for i := range msgs {
		if msgs[i].ID == messageID && !msgs[i].Deleted {
			msgs[i].Deleted = true
			msgs[i].Content = placeholder
			msgs[i].FileURL = ""
			msgs[i].UpdatedAt = time.Now()
			m := msgs[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByParent(_ context.Context, parent models.MessageParent, parentID uuid.UUID, before int64, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Message, 0)
	for _, m := range f.messages[parent] {
		if m.ParentID != parentID {
			continue
		}
		if before > 0 && m.ID >= before {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Adapters: each repository interface gets its own view of the shared
// store, resolving the method-name overlaps between interfaces.

type fakeServers struct{ *fakeStore }

type fakeMembers struct{ *fakeStore }

func (f fakeMembers) GetByID(ctx context.Context, memberID uuid.UUID) (*models.Member, error) {
	return f.GetMemberByID(ctx, memberID)
}

func (f fakeMembers) Delete(ctx context.Context, memberID uuid.UUID) error {
	return f.DeleteMember(ctx, memberID)
}

type fakeChannels struct{ *fakeStore }

func (f fakeChannels) Create(ctx context.Context, serverID uuid.UUID, name string, chType models.ChannelType) (*models.Channel, error) {
	return f.CreateChannel(ctx, serverID, name, chType)
}

func (f fakeChannels) GetByID(ctx context.Context, channelID uuid.UUID) (*models.Channel, error) {
	return f.GetChannelByID(ctx, channelID)
}

func (f fakeChannels) ListByServer(ctx context.Context, serverID uuid.UUID) ([]models.Channel, error) {
	return f.ListChannelsByServer(ctx, serverID)
}

func (f fakeChannels) Delete(ctx context.Context, channelID uuid.UUID) error {
	return f.DeleteChannel(ctx, channelID)
}

type fakeConversations struct{ *fakeStore }

func (f fakeConversations) GetByID(ctx context.Context, conversationID uuid.UUID) (*models.Conversation, error) {
	return f.GetConversationByID(ctx, conversationID)
}

func (f fakeConversations) Create(ctx context.Context, memberA, memberB uuid.UUID) (*models.Conversation, error) {
	return f.CreateConversation(ctx, memberA, memberB)
}

type fakeMessages struct{ *fakeStore }

func (f fakeMessages) Create(ctx context.Context, parent models.MessageParent, parentID, authorMemberID uuid.UUID, content, fileURL string) (*models.Message, error) {
	return f.CreateMessage(ctx, parent, parentID, authorMemberID, content, fileURL)
}

func (f fakeMessages) GetByID(ctx context.Context, parent models.MessageParent, parentID uuid.UUID, messageID int64) (*models.Message, error) {
	return f.GetMessageByID(ctx, parent, parentID, messageID)
}

// publishedEvent is what fakePublisher records per Publish call.
type publishedEvent struct {
	Room    string
	Event   string
	Message *models.Message
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, room, event string, msg *models.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Room: room, Event: event, Message: msg})
	return nil
}

func (p *fakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}
