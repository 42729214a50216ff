package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ryanalexander/backend/internal/auth"
	"github.com/ryanalexander/backend/internal/cache"
	"github.com/ryanalexander/backend/internal/models"
	"github.com/ryanalexander/backend/internal/store"
	"github.com/ryanalexander/backend/internal/ulid"
)

// ---------------------------------------------------------------------------
// In-memory document store
//
// Behaves like the real store for the properties the engine relies on: each
// method is a single atomic operation, the members map enforces the unique
// composite key, and there are no transactions across maps. failOn lets a
// test fail exactly one step of a cascade and inspect the surviving state.
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	guilds   map[string]*models.Guild
	channels map[string]*models.Channel
	members  map[models.MemberID]*models.Member
	messages map[string]*models.Message
	users    map[string]*models.User
	failOn   map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		guilds:   make(map[string]*models.Guild),
		channels: make(map[string]*models.Channel),
		members:  make(map[models.MemberID]*models.Member),
		messages: make(map[string]*models.Message),
		users:    make(map[string]*models.User),
		failOn:   make(map[string]error),
	}
}

// fail makes the named method return an error until cleared.
func (m *memStore) fail(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[method] = fmt.Errorf("injected failure: %s", method)
}

func (m *memStore) clearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = make(map[string]error)
}

func (m *memStore) failure(method string) error {
	return m.failOn[method]
}

// --- ChannelRepository ---

type memChannels struct{ *memStore }

func (s memChannels) Create(ctx context.Context, ch *models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("channels.Create"); err != nil {
		return err
	}
	if _, ok := s.channels[ch.ID]; ok {
		return fmt.Errorf("%w: channel %s", store.ErrDuplicateKey, ch.ID)
	}
	s.channels[ch.ID] = ch.Clone()
	return nil
}

func (s memChannels) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("channels.GetByID"); err != nil {
		return nil, err
	}
	if ch, ok := s.channels[id]; ok {
		return ch.Clone(), nil
	}
	return nil, nil
}

func (s memChannels) GetByIDs(ctx context.Context, ids []string) ([]models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("channels.GetByIDs"); err != nil {
		return nil, err
	}
	var out []models.Channel
	for _, id := range ids {
		if ch, ok := s.channels[id]; ok {
			out = append(out, *ch.Clone())
		}
	}
	return out, nil
}

func (s memChannels) GetByNonce(ctx context.Context, nonce string) (*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("channels.GetByNonce"); err != nil {
		return nil, err
	}
	for _, ch := range s.channels {
		if ch.Nonce == nonce {
			return ch.Clone(), nil
		}
	}
	return nil, nil
}

func (s memChannels) IDsByGuild(ctx context.Context, guildID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("channels.IDsByGuild"); err != nil {
		return nil, err
	}
	var ids []string
	for id, ch := range s.channels {
		if ch.Kind == models.ChannelGuild && ch.GuildID == guildID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s memChannels) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("channels.Delete"); err != nil {
		return err
	}
	delete(s.channels, id)
	return nil
}

func (s memChannels) DeleteByGuild(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("channels.DeleteByGuild"); err != nil {
		return err
	}
	for id, ch := range s.channels {
		if ch.Kind == models.ChannelGuild && ch.GuildID == guildID {
			delete(s.channels, id)
		}
	}
	return nil
}

// --- GuildRepository ---

type memGuilds struct{ *memStore }

func (s memGuilds) Create(ctx context.Context, guild *models.Guild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.Create"); err != nil {
		return err
	}
	g := *guild
	s.guilds[guild.ID] = &g
	return nil
}

func (s memGuilds) GetByID(ctx context.Context, id string) (*models.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.GetByID"); err != nil {
		return nil, err
	}
	if g, ok := s.guilds[id]; ok {
		dup := *g
		dup.Channels = append([]string(nil), g.Channels...)
		dup.Invites = append([]models.Invite(nil), g.Invites...)
		dup.Bans = append([]models.Ban(nil), g.Bans...)
		return &dup, nil
	}
	return nil, nil
}

func (s memGuilds) GetByNonce(ctx context.Context, nonce string) (*models.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.GetByNonce"); err != nil {
		return nil, err
	}
	for _, g := range s.guilds {
		if g.Nonce == nonce {
			dup := *g
			return &dup, nil
		}
	}
	return nil, nil
}

func (s memGuilds) GetByInviteCode(ctx context.Context, code string) (*models.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.GetByInviteCode"); err != nil {
		return nil, err
	}
	for _, g := range s.guilds {
		for _, inv := range g.Invites {
			if inv.Code == code {
				dup := *g
				dup.Invites = append([]models.Invite(nil), g.Invites...)
				dup.Bans = append([]models.Ban(nil), g.Bans...)
				return &dup, nil
			}
		}
	}
	return nil, nil
}

func (s memGuilds) AddChannel(ctx context.Context, guildID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.AddChannel"); err != nil {
		return err
	}
	g, ok := s.guilds[guildID]
	if !ok {
		return nil
	}
	for _, id := range g.Channels {
		if id == channelID {
			return nil
		}
	}
	g.Channels = append(g.Channels, channelID)
	return nil
}

func (s memGuilds) PushInvite(ctx context.Context, guildID string, invite models.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.PushInvite"); err != nil {
		return err
	}
	if g, ok := s.guilds[guildID]; ok {
		g.Invites = append(g.Invites, invite)
	}
	return nil
}

func (s memGuilds) PullInvite(ctx context.Context, guildID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.PullInvite"); err != nil {
		return err
	}
	g, ok := s.guilds[guildID]
	if !ok {
		return nil
	}
	for i, inv := range g.Invites {
		if inv.Code == code {
			g.Invites = append(g.Invites[:i], g.Invites[i+1:]...)
			break
		}
	}
	return nil
}

func (s memGuilds) PushBan(ctx context.Context, guildID string, ban models.Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.PushBan"); err != nil {
		return err
	}
	if g, ok := s.guilds[guildID]; ok {
		g.Bans = append(g.Bans, ban)
	}
	return nil
}

func (s memGuilds) PullBan(ctx context.Context, guildID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.PullBan"); err != nil {
		return err
	}
	g, ok := s.guilds[guildID]
	if !ok {
		return nil
	}
	for i, b := range g.Bans {
		if b.UserID == userID {
			g.Bans = append(g.Bans[:i], g.Bans[i+1:]...)
			break
		}
	}
	return nil
}

func (s memGuilds) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("guilds.Delete"); err != nil {
		return err
	}
	delete(s.guilds, id)
	return nil
}

// --- MemberRepository ---

type memMembers struct{ *memStore }

func (s memMembers) Create(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("members.Create"); err != nil {
		return err
	}
	if _, ok := s.members[member.ID]; ok {
		return fmt.Errorf("%w: member %v", store.ErrDuplicateKey, member.ID)
	}
	m := *member
	s.members[member.ID] = &m
	return nil
}

func (s memMembers) GetByGuildAndUser(ctx context.Context, guildID, userID string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("members.GetByGuildAndUser"); err != nil {
		return nil, err
	}
	if m, ok := s.members[models.MemberID{GuildID: guildID, UserID: userID}]; ok {
		dup := *m
		return &dup, nil
	}
	return nil, nil
}

func (s memMembers) GetByGuildID(ctx context.Context, guildID string) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("members.GetByGuildID"); err != nil {
		return nil, err
	}
	var out []models.Member
	for id, m := range s.members {
		if id.GuildID == guildID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s memMembers) GuildIDsByUser(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("members.GuildIDsByUser"); err != nil {
		return nil, err
	}
	var ids []string
	for id := range s.members {
		if id.UserID == userID {
			ids = append(ids, id.GuildID)
		}
	}
	return ids, nil
}

func (s memMembers) Delete(ctx context.Context, guildID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("members.Delete"); err != nil {
		return err
	}
	delete(s.members, models.MemberID{GuildID: guildID, UserID: userID})
	return nil
}

func (s memMembers) DeleteByGuild(ctx context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("members.DeleteByGuild"); err != nil {
		return err
	}
	for id := range s.members {
		if id.GuildID == guildID {
			delete(s.members, id)
		}
	}
	return nil
}

// --- MessageRepository ---

type memMessages struct{ *memStore }

// seedMessage places a message directly in the store; the repository surface
// itself is delete-only.
func (s *memStore) seedMessage(msg *models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *msg
	s.messages[msg.ID] = &m
}

func (s memMessages) DeleteByChannelIDs(ctx context.Context, channelIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("messages.DeleteByChannelIDs"); err != nil {
		return err
	}
	for _, cid := range channelIDs {
		for id, msg := range s.messages {
			if msg.ChannelID == cid {
				delete(s.messages, id)
			}
		}
	}
	return nil
}

// --- UserRepository ---

type memUsers struct{ *memStore }

func (s memUsers) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.Create"); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username %s", store.ErrDuplicateKey, user.Username)
		}
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.GetByID"); err != nil {
		return nil, err
	}
	if u, ok := s.users[id]; ok {
		dup := *u
		return &dup, nil
	}
	return nil, nil
}

func (s memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.GetByUsername"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Username == username {
			dup := *u
			return &dup, nil
		}
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Mock gateway dispatcher
// ---------------------------------------------------------------------------

type dispatchedEvent struct {
	GuildID string
	UserID  string
	Event   string
	Data    any
}

type mockGateway struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (m *mockGateway) DispatchToGuild(guildID string, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{GuildID: guildID, Event: event, Data: data})
}

func (m *mockGateway) DispatchToUser(userID string, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockGateway) SubscribeToGuild(userID, guildID string)     {}
func (m *mockGateway) UnsubscribeFromGuild(userID, guildID string) {}

func (m *mockGateway) eventNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.events))
	for i, ev := range m.events {
		names[i] = ev.Event
	}
	return names
}

func authTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret")
}

// ---------------------------------------------------------------------------
// Fixture assembly
// ---------------------------------------------------------------------------

type fixture struct {
	store    *memStore
	guilds   memGuilds
	channels memChannels
	members  memMembers
	messages memMessages
	cache    *cache.ChannelCache
	gw       *mockGateway
	ids      *ulid.Generator

	guildSvc   *GuildService
	channelSvc *ChannelService
	inviteSvc  *InviteService
	memberSvc  *MemberService
}

func newFixture() *fixture {
	ms := newMemStore()
	f := &fixture{
		store:    ms,
		guilds:   memGuilds{ms},
		channels: memChannels{ms},
		members:  memMembers{ms},
		messages: memMessages{ms},
		gw:       &mockGateway{},
		ids:      ulid.NewGenerator(),
	}
	f.cache = cache.New(1024, f.channels)
	perms := NewPermissionChecker(f.guilds, f.members)
	f.guildSvc = NewGuildService(f.guilds, f.channels, f.members, f.messages, f.cache, f.ids, f.gw, perms)
	f.channelSvc = NewChannelService(f.channels, f.guilds, f.cache, f.ids, f.gw, perms)
	f.inviteSvc = NewInviteService(f.guilds, f.members, f.cache, f.gw, perms)
	f.memberSvc = NewMemberService(f.guilds, f.members, f.gw, perms)
	return f
}

// mustCreateGuild is the common fixture setup: owner creates a guild.
func (f *fixture) mustCreateGuild(t interface {
	Helper()
	Fatalf(string, ...any)
}, owner, name, nonce string) *models.Guild {
	t.Helper()
	guild, err := f.guildSvc.CreateGuild(context.Background(), owner, name, "", nonce)
	if err != nil {
		t.Fatalf("CreateGuild: %v", err)
	}
	return guild
}

// mustJoin adds a user as a plain member directly at the store level.
func (f *fixture) mustJoin(t interface {
	Helper()
	Fatalf(string, ...any)
}, guildID, userID string) {
	t.Helper()
	err := f.members.Create(context.Background(), &models.Member{ID: models.MemberID{GuildID: guildID, UserID: userID}})
	if err != nil {
		t.Fatalf("adding member: %v", err)
	}
}
