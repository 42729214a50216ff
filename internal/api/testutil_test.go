package api

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/ryanalexander/backend/internal/models"
	"github.com/ryanalexander/backend/internal/ulid"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID string) {
	c.Set("user_id", userID)
}

func testIDs() *ulid.Generator {
	return ulid.NewGenerator()
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

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockChannelRepo implements store.ChannelRepository.
type mockChannelRepo struct {
	CreateFn        func(ctx context.Context, ch *models.Channel) error
	GetByIDFn       func(ctx context.Context, id string) (*models.Channel, error)
	GetByIDsFn      func(ctx context.Context, ids []string) ([]models.Channel, error)
	GetByNonceFn    func(ctx context.Context, nonce string) (*models.Channel, error)
	IDsByGuildFn    func(ctx context.Context, guildID string) ([]string, error)
	DeleteFn        func(ctx context.Context, id string) error
	DeleteByGuildFn func(ctx context.Context, guildID string) error
}

func (m *mockChannelRepo) Create(ctx context.Context, ch *models.Channel) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepo) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockChannelRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Channel, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockChannelRepo) GetByNonce(ctx context.Context, nonce string) (*models.Channel, error) {
	if m.GetByNonceFn != nil {
		return m.GetByNonceFn(ctx, nonce)
	}
	return nil, nil
}

func (m *mockChannelRepo) IDsByGuild(ctx context.Context, guildID string) ([]string, error) {
	if m.IDsByGuildFn != nil {
		return m.IDsByGuildFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockChannelRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockChannelRepo) DeleteByGuild(ctx context.Context, guildID string) error {
	if m.DeleteByGuildFn != nil {
		return m.DeleteByGuildFn(ctx, guildID)
	}
	return nil
}

// mockGuildRepo implements store.GuildRepository.
type mockGuildRepo struct {
	CreateFn          func(ctx context.Context, guild *models.Guild) error
	GetByIDFn         func(ctx context.Context, id string) (*models.Guild, error)
	GetByNonceFn      func(ctx context.Context, nonce string) (*models.Guild, error)
	GetByInviteCodeFn func(ctx context.Context, code string) (*models.Guild, error)
	AddChannelFn      func(ctx context.Context, guildID, channelID string) error
	PushInviteFn      func(ctx context.Context, guildID string, invite models.Invite) error
	PullInviteFn      func(ctx context.Context, guildID, code string) error
	PushBanFn         func(ctx context.Context, guildID string, ban models.Ban) error
	PullBanFn         func(ctx context.Context, guildID, userID string) error
	DeleteFn          func(ctx context.Context, id string) error
}

func (m *mockGuildRepo) Create(ctx context.Context, guild *models.Guild) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, guild)
	}
	return nil
}

func (m *mockGuildRepo) GetByID(ctx context.Context, id string) (*models.Guild, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockGuildRepo) GetByNonce(ctx context.Context, nonce string) (*models.Guild, error) {
	if m.GetByNonceFn != nil {
		return m.GetByNonceFn(ctx, nonce)
	}
	return nil, nil
}

func (m *mockGuildRepo) GetByInviteCode(ctx context.Context, code string) (*models.Guild, error) {
	if m.GetByInviteCodeFn != nil {
		return m.GetByInviteCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockGuildRepo) AddChannel(ctx context.Context, guildID, channelID string) error {
	if m.AddChannelFn != nil {
		return m.AddChannelFn(ctx, guildID, channelID)
	}
	return nil
}

func (m *mockGuildRepo) PushInvite(ctx context.Context, guildID string, invite models.Invite) error {
	if m.PushInviteFn != nil {
		return m.PushInviteFn(ctx, guildID, invite)
	}
	return nil
}

func (m *mockGuildRepo) PullInvite(ctx context.Context, guildID, code string) error {
	if m.PullInviteFn != nil {
		return m.PullInviteFn(ctx, guildID, code)
	}
	return nil
}

func (m *mockGuildRepo) PushBan(ctx context.Context, guildID string, ban models.Ban) error {
	if m.PushBanFn != nil {
		return m.PushBanFn(ctx, guildID, ban)
	}
	return nil
}

func (m *mockGuildRepo) PullBan(ctx context.Context, guildID, userID string) error {
	if m.PullBanFn != nil {
		return m.PullBanFn(ctx, guildID, userID)
	}
	return nil
}

func (m *mockGuildRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockMemberRepo implements store.MemberRepository.
type mockMemberRepo struct {
	CreateFn            func(ctx context.Context, member *models.Member) error
	GetByGuildAndUserFn func(ctx context.Context, guildID, userID string) (*models.Member, error)
	GetByGuildIDFn      func(ctx context.Context, guildID string) ([]models.Member, error)
	GuildIDsByUserFn    func(ctx context.Context, userID string) ([]string, error)
	DeleteFn            func(ctx context.Context, guildID, userID string) error
	DeleteByGuildFn     func(ctx context.Context, guildID string) error
}

func (m *mockMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) GetByGuildAndUser(ctx context.Context, guildID, userID string) (*models.Member, error) {
	if m.GetByGuildAndUserFn != nil {
		return m.GetByGuildAndUserFn(ctx, guildID, userID)
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByGuildID(ctx context.Context, guildID string) ([]models.Member, error) {
	if m.GetByGuildIDFn != nil {
		return m.GetByGuildIDFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockMemberRepo) GuildIDsByUser(ctx context.Context, userID string) ([]string, error) {
	if m.GuildIDsByUserFn != nil {
		return m.GuildIDsByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMemberRepo) Delete(ctx context.Context, guildID, userID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, guildID, userID)
	}
	return nil
}

func (m *mockMemberRepo) DeleteByGuild(ctx context.Context, guildID string) error {
	if m.DeleteByGuildFn != nil {
		return m.DeleteByGuildFn(ctx, guildID)
	}
	return nil
}

// mockMessageRepo implements store.MessageRepository.
type mockMessageRepo struct {
	DeleteByChannelIDsFn func(ctx context.Context, channelIDs []string) error
}

func (m *mockMessageRepo) DeleteByChannelIDs(ctx context.Context, channelIDs []string) error {
	if m.DeleteByChannelIDsFn != nil {
		return m.DeleteByChannelIDsFn(ctx, channelIDs)
	}
	return nil
}

// mockUserRepo implements store.UserRepository.
type mockUserRepo struct {
	CreateFn        func(ctx context.Context, user *models.User) error
	GetByIDFn       func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, nil
}
