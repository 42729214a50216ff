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

// ChannelService serves channel reads through the cache and owns the
// create-channel cascade.
type ChannelService struct {
	channels store.ChannelRepository
	guilds   store.GuildRepository
	cache    *cache.ChannelCache
	ids      *ulid.Generator
	gateway  gateway.Dispatcher
	perms    *PermissionChecker
}

// NewChannelService creates a ChannelService.
func NewChannelService(
	channels store.ChannelRepository,
	guilds store.GuildRepository,
	channelCache *cache.ChannelCache,
	ids *ulid.Generator,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *ChannelService {
	return &ChannelService{
		channels: channels,
		guilds:   guilds,
		cache:    channelCache,
		ids:      ids,
		gateway:  gw,
		perms:    perms,
	}
}

// FetchChannel returns one channel, served from the cache when possible.
func (s *ChannelService) FetchChannel(ctx context.Context, id string) (*models.Channel, error) {
	ch, err := s.cache.GetOne(ctx, id)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch channel")
	}
	if ch == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}
	return ch, nil
}

// FetchChannels returns the channels that exist among ids. The result is not
// ordered by the input; see cache.GetMany.
func (s *ChannelService) FetchChannels(ctx context.Context, ids []string) ([]models.Channel, error) {
	channels, err := s.cache.GetMany(ctx, ids)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch channels")
	}
	return channels, nil
}

// FetchGuildChannels returns the channels on the guild's channel list, for
// members only. The list on the guild document is the source of truth; an
// unlisted channel document is never served here.
func (s *ChannelService) FetchGuildChannels(ctx context.Context, guildID, userID string) ([]models.Channel, error) {
	guild, err := s.perms.Require(ctx, guildID, userID, permissions.PermAccess)
	if err != nil {
		return nil, err
	}
	channels, err := s.cache.GetMany(ctx, guild.Channels)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch channels")
	}
	return channels, nil
}

// CreateChannel creates a guild channel: insert the channel document, then
// append its id to the guild's channel list. A failure between the two
// leaves a channel that exists but is unlisted (detectable by scanning for
// guild-tagged channels missing from their guild's list) and is reported
// with the failing step rather than repaired here. The nonce makes retries
// idempotent.
func (s *ChannelService) CreateChannel(ctx context.Context, guildID, userID, name, description, nonce string) (*models.Channel, error) {
	if _, err := s.perms.Require(ctx, guildID, userID, permissions.PermManageChannels); err != nil {
		return nil, err
	}

	name = truncate(name, 32)
	if name == "" {
		return nil, BadRequest("INVALID_NAME", "channel name must not be empty")
	}
	description = truncate(description, 255)
	nonce = truncate(nonce, 32)
	if nonce == "" {
		return nil, BadRequest("INVALID_NONCE", "nonce must not be empty")
	}

	existing, err := s.channels.GetByNonce(ctx, nonce)
	if err != nil {
		return nil, Internal("STORE", "failed to check channel nonce")
	}
	if existing != nil {
		return nil, Conflict("DUPLICATE_NONCE", "channel already created")
	}

	channel := &models.Channel{
		ID:          s.ids.Generate(),
		Nonce:       nonce,
		Kind:        models.ChannelGuild,
		GuildID:     guildID,
		Name:        name,
		Description: description,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, Cascade("create_channel", "channel_insert", err)
	}

	if err := s.guilds.AddChannel(ctx, guildID, channel.ID); err != nil {
		return nil, Cascade("create_channel", "guild_list_append", err)
	}

	s.cache.Put(channel)
	s.gateway.DispatchToGuild(guildID, gateway.EventChannelCreate, gateway.ChannelEvent{
		GuildID:   guildID,
		ChannelID: channel.ID,
		Name:      channel.Name,
	})
	return channel, nil
}
