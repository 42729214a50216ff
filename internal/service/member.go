package service

import (
	"context"

	"github.com/ryanalexander/backend/internal/gateway"
	"github.com/ryanalexander/backend/internal/models"
	"github.com/ryanalexander/backend/internal/permissions"
	"github.com/ryanalexander/backend/internal/store"
)

// MemberService owns member reads and the kick/ban/unban cascades.
type MemberService struct {
	guilds  store.GuildRepository
	members store.MemberRepository
	gateway gateway.Dispatcher
	perms   *PermissionChecker
}

// NewMemberService creates a MemberService.
func NewMemberService(
	guilds store.GuildRepository,
	members store.MemberRepository,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *MemberService {
	return &MemberService{guilds: guilds, members: members, gateway: gw, perms: perms}
}

// ListMembers returns every member of the guild.
func (s *MemberService) ListMembers(ctx context.Context, guildID, userID string) ([]models.Member, error) {
	if _, err := s.perms.Require(ctx, guildID, userID, permissions.PermAccess); err != nil {
		return nil, err
	}
	members, err := s.members.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch members")
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

// GetMember returns one member of the guild.
func (s *MemberService) GetMember(ctx context.Context, guildID, userID, targetID string) (*models.Member, error) {
	if _, err := s.perms.Require(ctx, guildID, userID, permissions.PermAccess); err != nil {
		return nil, err
	}
	member, err := s.members.GetByGuildAndUser(ctx, guildID, targetID)
	if err != nil {
		return nil, Internal("STORE", "failed to fetch member")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "member not found")
	}
	return member, nil
}

// KickMember removes the target's membership record. Self-targeting is
// rejected by policy; leaving is a different operation.
func (s *MemberService) KickMember(ctx context.Context, guildID, userID, targetID string) error {
	if userID == targetID {
		return BadRequest("SELF_TARGET", "cannot kick yourself")
	}
	if _, err := s.perms.Require(ctx, guildID, userID, permissions.PermKickMembers); err != nil {
		return err
	}

	member, err := s.members.GetByGuildAndUser(ctx, guildID, targetID)
	if err != nil {
		return Internal("STORE", "failed to fetch member")
	}
	if member == nil {
		return BadRequest("NOT_MEMBER", "user is not part of this guild")
	}

	if err := s.members.Delete(ctx, guildID, targetID); err != nil {
		return Cascade("kick_member", "member_delete", err)
	}

	s.gateway.DispatchToGuild(guildID, gateway.EventMemberLeave, gateway.MemberEvent{GuildID: guildID, UserID: targetID})
	s.gateway.UnsubscribeFromGuild(targetID, guildID)
	return nil
}

// BanMember records the ban on the guild document, then deletes the
// membership. These are two writes to two collections with no transaction:
// if the membership delete fails after the ban entry was pushed, the user is
// banned but still listed as a member. The returned CascadeError names the
// member_delete step precisely so that state is flagged, not silent.
func (s *MemberService) BanMember(ctx context.Context, guildID, userID, targetID, reason string) error {
	if userID == targetID {
		return BadRequest("SELF_TARGET", "cannot ban yourself")
	}
	if _, err := s.perms.Require(ctx, guildID, userID, permissions.PermBanMembers); err != nil {
		return err
	}

	if reason == "" {
		reason = "No reason specified."
	}
	reason = truncate(reason, 64)

	member, err := s.members.GetByGuildAndUser(ctx, guildID, targetID)
	if err != nil {
		return Internal("STORE", "failed to fetch member")
	}
	if member == nil {
		return BadRequest("NOT_MEMBER", "user is not part of this guild")
	}

	if err := s.guilds.PushBan(ctx, guildID, models.Ban{UserID: targetID, Reason: reason}); err != nil {
		return Cascade("ban_member", "ban_push", err)
	}
	if err := s.members.Delete(ctx, guildID, targetID); err != nil {
		// Ban recorded, membership still present. Retrying the whole ban is
		// safe: the duplicate ban entry check happens on join, not here.
		return Cascade("ban_member", "member_delete", err)
	}

	s.gateway.DispatchToGuild(guildID, gateway.EventBanAdd, gateway.MemberEvent{GuildID: guildID, UserID: targetID, Banned: true})
	s.gateway.DispatchToGuild(guildID, gateway.EventMemberLeave, gateway.MemberEvent{GuildID: guildID, UserID: targetID, Banned: true})
	s.gateway.UnsubscribeFromGuild(targetID, guildID)
	return nil
}

// UnbanMember pulls the target's ban entry. Unbanning a user who is not
// banned is a bad request, never a silent success.
func (s *MemberService) UnbanMember(ctx context.Context, guildID, userID, targetID string) error {
	if userID == targetID {
		return BadRequest("SELF_TARGET", "cannot unban yourself")
	}
	guild, err := s.perms.Require(ctx, guildID, userID, permissions.PermBanMembers)
	if err != nil {
		return err
	}

	if !guild.Banned(targetID) {
		return BadRequest("NOT_BANNED", "user is not banned")
	}

	if err := s.guilds.PullBan(ctx, guildID, targetID); err != nil {
		return Cascade("unban_member", "ban_pull", err)
	}

	s.gateway.DispatchToGuild(guildID, gateway.EventBanRemove, gateway.MemberEvent{GuildID: guildID, UserID: targetID})
	return nil
}
