package service

import (
	"context"

	"github.com/ryanalexander/backend/internal/cache"
	"github.com/ryanalexander/backend/internal/gateway"
	"github.com/ryanalexander/backend/internal/models"
	"github.com/ryanalexander/backend/internal/permissions"
	"github.com/ryanalexander/backend/internal/store"
	"github.com/ryanalexander/backend/internal/ulid"
)

// GuildService owns the guild-level cascades: creation with its compensating
// action, and the ordered owner-delete cascade.
type GuildService struct {
	guilds   store.GuildRepository
	channels store.ChannelRepository
	members  store.MemberRepository
	messages store.MessageRepository
	cache    *cache.ChannelCache
	ids      *ulid.Generator
	gateway  gateway.Dispatcher
	perms    *PermissionChecker
}

// NewGuildService creates a GuildService.
func NewGuildService(
	guilds store.GuildRepository,
	channels store.ChannelRepository,
	members store.MemberRepository,
	messages store.MessageRepository,
	channelCache *cache.ChannelCache,
	ids *ulid.Generator,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *GuildService {
	return &GuildService{
		guilds:   guilds,
		channels: channels,
		members:  members,
		messages: messages,
		cache:    channelCache,
		ids:      ids,
		gateway:  gw,
		perms:    perms,
	}
}

// CreateGuild creates a guild with a default "general" channel and the
// creator's membership, in that order. There is no transaction across the
// three collections; the order is chosen so every partial state is inert:
//
//   - channel created, member insert fails: an unreferenced channel remains,
//     pointing at a guild id that never comes to exist. Nothing dangles.
//   - guild insert fails last: the just-created channel would be unreachable
//     garbage, so it is explicitly deleted before reporting the failure. This
//     is the single compensating action in the codebase.
//
// The nonce makes client retries idempotent: a second call with the same
// nonce is a conflict, not a second guild.
func (s *GuildService) CreateGuild(ctx context.Context, userID, name, description, nonce string) (*models.Guild, error) {
	name = truncate(name, 32)
	if name == "" {
		return nil, BadRequest("INVALID_NAME", "guild name must not be empty")
	}
	if description == "" {
		description = "No description."
	}
	description = truncate(description, 255)
	nonce = truncate(nonce, 32)
	if nonce == "" {
		return nil, BadRequest("INVALID_NONCE", "nonce must not be empty")
	}

	existing, err := s.guilds.GetByNonce(ctx, nonce)
	if err != nil {
		return nil, Internal("STORE", "failed to check guild nonce")
	}
	if existing != nil {
		return nil, Conflict("DUPLICATE_NONCE", "guild already created")
	}

	guildID := s.ids.Generate()
	channelID := s.ids.Generate()

	channel := &models.Channel{
		ID:      channelID,
		Kind:    models.ChannelGuild,
		GuildID: guildID,
		Name:    "general",
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, Cascade("create_guild", "channel_insert", err)
	}

	member := &models.Member{ID: models.MemberID{GuildID: guildID, UserID: userID}}
	if err := s.members.Create(ctx, member); err != nil {
		// The orphan channel is inert: no guild document references it.
		return nil, Cascade("create_guild", "member_insert", err)
	}

	guild := &models.Guild{
		ID:                 guildID,
		Nonce:              nonce,
		Name:               name,
		Description:        description,
		OwnerID:            userID,
		Channels:           []string{channelID},
		Invites:            []models.Invite{},
		Bans:               []models.Ban{},
		DefaultPermissions: int64(permissions.DefaultPermissions),
	}
	if err := s.guilds.Create(ctx, guild); err != nil {
		// Without its guild the channel is unreachable; compensate.
		if delErr := s.channels.Delete(ctx, channelID); delErr != nil {
			return nil, Cascade("create_guild", "channel_compensation", delErr)
		}
		return nil, Cascade("create_guild", "guild_insert", err)
	}

	s.cache.Put(channel)
	s.gateway.SubscribeToGuild(userID, guildID)
	s.gateway.DispatchToUser(userID, gateway.EventGuildCreate, guild)
	return guild, nil
}

// GetGuild returns the guild document to a member.
func (s *GuildService) GetGuild(ctx context.Context, guildID, userID string) (*models.Guild, error) {
	return s.perms.Require(ctx, guildID, userID, permissions.PermAccess)
}

// GuildView is a guild as listed for its own member: the channel id list
// replaced by the resolved channel documents.
type GuildView struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	OwnerID            string           `json:"owner"`
	Channels           []models.Channel `json:"channels"`
	DefaultPermissions int64            `json:"default_permissions"`
}

// ListMyGuilds returns every guild the user belongs to, channels resolved
// through the cache. A membership whose guild document is gone is skipped;
// that partial state is a documented outcome of an interrupted guild delete.
func (s *GuildService) ListMyGuilds(ctx context.Context, userID string) ([]GuildView, error) {
	guildIDs, err := s.members.GuildIDsByUser(ctx, userID)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch memberships")
	}

	views := make([]GuildView, 0, len(guildIDs))
	for _, id := range guildIDs {
		guild, err := s.guilds.GetByID(ctx, id)
		if err != nil {
			return nil, Internal("STORE", "failed to fetch guilds")
		}
		if guild == nil {
			continue
		}
		channels, err := s.cache.GetMany(ctx, guild.Channels)
		if err != nil {
			return nil, Internal("STORE", "failed to fetch guild channels")
		}
		views = append(views, GuildView{
			ID:                 guild.ID,
			Name:               guild.Name,
			Description:        guild.Description,
			OwnerID:            guild.OwnerID,
			Channels:           channels,
			DefaultPermissions: guild.DefaultPermissions,
		})
	}
	return views, nil
}

// DeleteOrLeaveGuild removes the acting user from the guild: the owner
// deletes the whole guild, anyone else just leaves.
//
// The owner branch deletes in a fixed order (messages, then guild channels,
// then members, then the guild document) so that an interruption at any
// point leaves orphans referencing a still-alive guild (recoverable) and
// never a live guild referencing deleted channels.
func (s *GuildService) DeleteOrLeaveGuild(ctx context.Context, guildID, userID string) error {
	guild, err := s.perms.Require(ctx, guildID, userID, permissions.PermAccess)
	if err != nil {
		return err
	}

	if guild.OwnerID != userID {
		if err := s.members.Delete(ctx, guildID, userID); err != nil {
			return Cascade("leave_guild", "member_delete", err)
		}
		s.gateway.DispatchToGuild(guildID, gateway.EventMemberLeave, gateway.MemberEvent{GuildID: guildID, UserID: userID})
		s.gateway.UnsubscribeFromGuild(userID, guildID)
		return nil
	}

	channelIDs, err := s.channels.IDsByGuild(ctx, guildID)
	if err != nil {
		return Internal("STORE", "failed to list guild channels")
	}

	if err := s.messages.DeleteByChannelIDs(ctx, channelIDs); err != nil {
		return Cascade("delete_guild", "messages_delete", err)
	}
	if err := s.channels.DeleteByGuild(ctx, guildID); err != nil {
		return Cascade("delete_guild", "channels_delete", err)
	}
	if err := s.members.DeleteByGuild(ctx, guildID); err != nil {
		return Cascade("delete_guild", "members_delete", err)
	}
	if err := s.guilds.Delete(ctx, guildID); err != nil {
		return Cascade("delete_guild", "guild_delete", err)
	}

	// The channels are hard-deleted; drop them from the cache so nothing
	// serves them past this point, and tell subscribers each one is gone
	// before the guild itself.
	for _, id := range channelIDs {
		s.cache.Invalidate(id)
		s.gateway.DispatchToGuild(guildID, gateway.EventChannelDelete, gateway.ChannelEvent{GuildID: guildID, ChannelID: id})
	}

	s.gateway.DispatchToGuild(guildID, gateway.EventGuildDelete, map[string]string{"id": guildID})
	return nil
}

// truncate clips s to at most n runes, mirroring the request limits applied
// at the edge.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
