package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/ryanalexander/backend/internal/cache"
	"github.com/ryanalexander/backend/internal/gateway"
	"github.com/ryanalexander/backend/internal/models"
	"github.com/ryanalexander/backend/internal/permissions"
	"github.com/ryanalexander/backend/internal/store"
)

// InviteInfo is what a user resolving a code sees before joining. An invite
// code is itself the capability, so resolution is deliberately
// permission-light.
type InviteInfo struct {
	GuildID     string `json:"guild"`
	GuildName   string `json:"guild_name"`
	ChannelID   string `json:"channel"`
	ChannelName string `json:"channel_name"`
}

// JoinResult names where a freshly joined user should land.
type JoinResult struct {
	GuildID   string `json:"guild"`
	ChannelID string `json:"channel"`
}

// InviteService owns the invite lifecycle and the join-via-invite cascade.
type InviteService struct {
	guilds  store.GuildRepository
	members store.MemberRepository
	cache   *cache.ChannelCache
	gateway gateway.Dispatcher
	perms   *PermissionChecker
}

// NewInviteService creates an InviteService.
func NewInviteService(
	guilds store.GuildRepository,
	members store.MemberRepository,
	channelCache *cache.ChannelCache,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *InviteService {
	return &InviteService{
		guilds:  guilds,
		members: members,
		cache:   channelCache,
		gateway: gw,
		perms:   perms,
	}
}

// CreateInvite appends an invite to the guild's embedded invite list, pointing
// at one of the guild's channels. Codes must resolve globally, so a generated
// code that already exists anywhere is a conflict, never an overwrite.
func (s *InviteService) CreateInvite(ctx context.Context, guildID, channelID, userID string) (*models.Invite, error) {
	guild, err := s.perms.Require(ctx, guildID, userID, permissions.PermCreateInvite)
	if err != nil {
		return nil, err
	}

	listed := false
	for _, id := range guild.Channels {
		if id == channelID {
			listed = true
			break
		}
	}
	if !listed {
		return nil, NotFound("NOT_FOUND", "channel not found in this guild")
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, Internal("CODE_GEN", "failed to generate invite code")
	}

	// 8 random hex chars make a collision negligible, but never impossible.
	taken, err := s.guilds.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, Internal("STORE", "failed to check invite code")
	}
	if taken != nil {
		return nil, Conflict("CODE_COLLISION", "invite code collision, retry")
	}

	invite := models.Invite{Code: code, CreatorID: userID, ChannelID: channelID}
	if err := s.guilds.PushInvite(ctx, guildID, invite); err != nil {
		return nil, Cascade("create_invite", "invite_push", err)
	}
	return &invite, nil
}

// ListInvites returns the guild's embedded invite list.
func (s *InviteService) ListInvites(ctx context.Context, guildID, userID string) ([]models.Invite, error) {
	guild, err := s.perms.Require(ctx, guildID, userID, permissions.PermManageServer)
	if err != nil {
		return nil, err
	}
	if guild.Invites == nil {
		return []models.Invite{}, nil
	}
	return guild.Invites, nil
}

// ResolveInvite looks up a code and describes where it leads.
func (s *InviteService) ResolveInvite(ctx context.Context, code string) (*InviteInfo, error) {
	guild, invite, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	channel, err := s.cache.GetOne(ctx, invite.ChannelID)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch invite channel")
	}
	if channel == nil {
		return nil, NotFound("NOT_FOUND", "invite channel no longer exists")
	}

	return &InviteInfo{
		GuildID:     guild.ID,
		GuildName:   guild.Name,
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
	}, nil
}

// DeleteInvite pulls an invite by code. The creator can always revoke their
// own invite; anyone else needs MANAGE_SERVER.
func (s *InviteService) DeleteInvite(ctx context.Context, code, userID string) error {
	guild, invite, err := s.findByCode(ctx, code)
	if err != nil {
		return err
	}

	if invite.CreatorID != userID {
		if _, err := s.perms.Require(ctx, guild.ID, userID, permissions.PermManageServer); err != nil {
			return err
		}
	}

	if err := s.guilds.PullInvite(ctx, guild.ID, code); err != nil {
		return Cascade("delete_invite", "invite_pull", err)
	}
	return nil
}

// JoinViaInvite adds the user to the invite's guild. The existence check and
// the insert are two separate steps; the unique index on the composite member
// key is what actually decides a race between two concurrent joins, so a
// duplicate-key insert is reported as the same conflict as a failed check.
func (s *InviteService) JoinViaInvite(ctx context.Context, code, userID string) (*JoinResult, error) {
	guild, invite, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if guild.Banned(userID) {
		return nil, Forbidden("BANNED", "you are banned from this guild")
	}

	existing, err := s.members.GetByGuildAndUser(ctx, guild.ID, userID)
	if err != nil {
		return nil, Internal("STORE", "failed to check membership")
	}
	if existing != nil {
		return nil, Conflict("ALREADY_MEMBER", "already in the guild")
	}

	member := &models.Member{ID: models.MemberID{GuildID: guild.ID, UserID: userID}}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, Conflict("ALREADY_MEMBER", "already in the guild")
		}
		return nil, Cascade("join_guild", "member_insert", err)
	}

	s.gateway.SubscribeToGuild(userID, guild.ID)
	s.gateway.DispatchToGuild(guild.ID, gateway.EventMemberJoin, gateway.MemberEvent{GuildID: guild.ID, UserID: userID})

	return &JoinResult{GuildID: guild.ID, ChannelID: invite.ChannelID}, nil
}

func (s *InviteService) findByCode(ctx context.Context, code string) (*models.Guild, *models.Invite, error) {
	guild, err := s.guilds.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, nil, Internal("STORE", "failed to resolve invite")
	}
	if guild == nil {
		return nil, nil, NotFound("NOT_FOUND", "invite code is invalid")
	}
	invite := guild.FindInvite(code)
	if invite == nil {
		// The code matched the guild document but not an embedded entry;
		// treat as invalid rather than guessing.
		return nil, nil, NotFound("NOT_FOUND", "invite code is invalid")
	}
	return guild, invite, nil
}

// generateInviteCode returns 8 hex chars from crypto/rand.
func generateInviteCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
